package fs

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func zipBytes(t *testing.T, files map[string][]byte, dirs ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, d := range dirs {
		_, err := w.Create(d)
		require.NoError(t, err)
	}
	for name, data := range files {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func TestIsArchive(t *testing.T) {
	for _, name := range []string{"a.jar", "b.WAR", "lib/c.ear", "d.zip", "exploded.war/"} {
		assert.True(t, IsArchive(name), name)
	}
	for _, name := range []string{"a.class", "jar", "a.jar.txt", "README"} {
		assert.False(t, IsArchive(name), name)
	}
}

func TestExcluder(t *testing.T) {
	var none *Excluder
	assert.False(t, none.Excluded("anything"))
	assert.Nil(t, NewExcluder([]string{" ", ""}))

	e := NewExcluder([]string{"test/", "*-sources.jar", "**/generated/**"})
	assert.True(t, e.Excluded("test/a.jar"))
	assert.True(t, e.Excluded("lib/foo-sources.jar"))
	assert.True(t, e.Excluded("com/acme/generated/Stub.class"))
	assert.False(t, e.Excluded("lib/foo.jar"))
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "b.jar"), zipBytes(t, nil))
	writeFile(t, filepath.Join(root, "lib", "a.jar"), zipBytes(t, nil))
	writeFile(t, filepath.Join(root, "lib", "notes.txt"), []byte("x"))
	writeFile(t, filepath.Join(root, "skip", "c.jar"), zipBytes(t, nil))
	writeFile(t, filepath.Join(root, "app.war", "WEB-INF", "web.xml"), []byte("<web-app/>"))
	writeFile(t, filepath.Join(root, "app.war", "WEB-INF", "lib", "inner.jar"), zipBytes(t, nil))

	archives, err := Discover(root, NewExcluder([]string{"skip/"}))
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "app.war"),
		filepath.Join(root, "b.jar"),
		filepath.Join(root, "lib", "a.jar"),
	}, archives)

	single, err := Discover(filepath.Join(root, "b.jar"), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "b.jar")}, single)

	_, err = Discover(filepath.Join(root, "missing"), nil)
	assert.Error(t, err)
}

func TestWalkNested(t *testing.T) {
	inner := zipBytes(t, map[string][]byte{"com/acme/A.class": []byte("classdata")})
	ear := zipBytes(t, map[string][]byte{
		"lib/inner.jar":        inner,
		"lib/broken.jar":       []byte("not a zip"),
		"META-INF/MANIFEST.MF": []byte("Manifest-Version: 1.0\n"),
	}, "lib/")
	path := filepath.Join(t.TempDir(), "app.ear")
	writeFile(t, path, ear)

	seen := map[string]*Archive{}
	var order []string
	err := Walk(path, "app.ear", nil, func(a *Archive) error {
		seen[a.Name] = a
		order = append(order, a.Name)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, "app.ear", order[0])
	assert.ElementsMatch(t, []string{"app.ear", "app.ear!/lib/inner.jar", "app.ear!/lib/broken.jar"}, order)

	assert.Len(t, seen["app.ear"].Entries, 4)
	assert.Error(t, seen["app.ear!/lib/broken.jar"].Err)

	nested := seen["app.ear!/lib/inner.jar"]
	require.NoError(t, nested.Err)
	require.Len(t, nested.Entries, 1)
	entry := nested.Entries[0]
	assert.Equal(t, "com/acme/A.class", entry.Name())
	assert.False(t, entry.IsDirectory())

	rc, err := entry.Open()
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "classdata", string(data))
}

func TestWalkSkipsExcludedNestedArchives(t *testing.T) {
	inner := zipBytes(t, map[string][]byte{"com/x/Inner.class": []byte("classdata")})
	war := zipBytes(t, map[string][]byte{
		"WEB-INF/lib/vendor.jar": inner,
		"WEB-INF/lib/own.jar":    inner,
	})
	path := filepath.Join(t.TempDir(), "app.war")
	writeFile(t, path, war)

	var names []string
	err := Walk(path, "app.war", NewExcluder([]string{"WEB-INF/lib/vendor.jar"}), func(a *Archive) error {
		names = append(names, a.Name)
		return nil
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"app.war", "app.war!/WEB-INF/lib/own.jar"}, names)
}

func TestWalkRejectsOversizedNestedArchive(t *testing.T) {
	inner := zipBytes(t, map[string][]byte{"com/acme/A.class": bytes.Repeat([]byte("x"), 4096)})
	ear := zipBytes(t, map[string][]byte{"lib/big.jar": inner})
	path := filepath.Join(t.TempDir(), "app.ear")
	writeFile(t, path, ear)

	seen := map[string]*Archive{}
	walker := Walker{MaxNestedSize: int64(len(inner) - 1)}
	require.NoError(t, walker.Walk(path, "app.ear", func(a *Archive) error {
		seen[a.Name] = a
		return nil
	}))

	big := seen["app.ear!/lib/big.jar"]
	require.NotNil(t, big)
	assert.ErrorIs(t, big.Err, ErrNestedTooLarge)
	assert.Empty(t, big.Entries)

	seen = map[string]*Archive{}
	walker.MaxNestedSize = int64(len(inner))
	require.NoError(t, walker.Walk(path, "app.ear", func(a *Archive) error {
		seen[a.Name] = a
		return nil
	}))
	require.NoError(t, seen["app.ear!/lib/big.jar"].Err)
	assert.Len(t, seen["app.ear!/lib/big.jar"].Entries, 1)
}

func TestWalkDirectoryEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.jar")
	writeFile(t, path, zipBytes(t, map[string][]byte{"x/A.class": nil}, "x/"))

	var dirs []string
	require.NoError(t, Walk(path, "a.jar", nil, func(a *Archive) error {
		for _, e := range a.Entries {
			if e.IsDirectory() {
				dirs = append(dirs, e.Name())
			}
		}
		return nil
	}))
	assert.Equal(t, []string{"x/"}, dirs)
}

func TestWalkExploded(t *testing.T) {
	root := filepath.Join(t.TempDir(), "app.war")
	writeFile(t, filepath.Join(root, "WEB-INF", "web.xml"), []byte("<web-app/>"))
	writeFile(t, filepath.Join(root, "WEB-INF", "lib", "dep.jar"), zipBytes(t, map[string][]byte{"B.class": nil}))

	var names []string
	require.NoError(t, Walk(root, "app.war", nil, func(a *Archive) error {
		names = append(names, a.Name)
		return nil
	}))
	assert.Equal(t, []string{"app.war", "app.war!/WEB-INF/lib/dep.jar"}, names)
}

func TestWalkStopsOnCallbackError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.jar")
	writeFile(t, path, zipBytes(t, map[string][]byte{"lib/b.jar": zipBytes(t, nil)}))

	stop := io.ErrClosedPipe
	calls := 0
	err := Walk(path, "a.jar", nil, func(*Archive) error {
		calls++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}

func TestWalkRejectsNonArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.jar")
	writeFile(t, path, []byte("plain text"))
	err := Walk(path, "a.jar", nil, func(*Archive) error { return nil })
	assert.ErrorContains(t, err, "failed to open archive 'a.jar'")
}
