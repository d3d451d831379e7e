// Package manifest extracts facts from JAR manifests.
package manifest

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

const Path = "META-INF/MANIFEST.MF"

var ErrMalformed = errors.New("malformed manifest")

// Header is one main-section attribute.
type Header struct {
	Name  string
	Value string
}

/*
*	Parse reads the main section of a manifest
*
*	header:			name ":" SPACE value
*	continuation:	SPACE value		(appended to the previous header)
*
*	The main section ends at the first blank line. Lines may end in
*	CR LF, LF or CR.
 */
func Parse(r io.Reader) ([]Header, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var headers []Header
	for i, line := range strings.Split(text, "\n") {
		lineNo := i + 1
		if line == "" {
			break
		}
		if strings.HasPrefix(line, " ") {
			if len(headers) == 0 {
				return nil, fmt.Errorf("%w: line %d: continuation before any header", ErrMalformed, lineNo)
			}
			headers[len(headers)-1].Value += line[1:]
			continue
		}

		name, value, ok := strings.Cut(line, ":")
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: line %d: expected 'name: value'", ErrMalformed, lineNo)
		}
		headers = append(headers, Header{Name: name, Value: strings.TrimPrefix(value, " ")})
	}
	return headers, nil
}

// ClassPath splits a Class-Path value into its entries.
func ClassPath(value string) []string {
	return strings.Fields(value)
}
