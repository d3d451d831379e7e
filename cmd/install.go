package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/spf13/cobra"
)

func newInstallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "install",
		Short: "Install shell completions",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			if !isInPath() {
				printPathInstructions(out)
				return
			}

			if !isShellSupported() {
				fmt.Fprintf(out, "❌ Shell completion not supported for: %s\n", detectShell())
				fmt.Fprintln(out, "Supported shells: bash, zsh, fish, powershell")
				return
			}

			if completionsExist() {
				fmt.Fprintln(out, "✅ Already configured!")
				return
			}

			fmt.Fprintln(out, "📦 Installing completions...")
			if err := installCompletions(cmd.Root(), out); err != nil {
				fmt.Fprintf(out, "❌ Failed: %v\n", err)
			} else {
				fmt.Fprintln(out, "✅ Done! Restart your shell to enable tab completion.")
			}
		},
	}
}

type completionConfig struct {
	dir         string
	file        string
	genFunc     func(io.Writer) error
	activateCmd string
}

func completionConfigs(root *cobra.Command) map[string]completionConfig {
	home, _ := os.UserHomeDir()
	bashDir := filepath.Join(home, ".local/share/bash-completion/completions")
	zshDir := filepath.Join(home, ".zsh/completions")

	return map[string]completionConfig{
		"bash": {
			dir:         bashDir,
			file:        appName,
			genFunc:     root.GenBashCompletion,
			activateCmd: "source " + filepath.Join(bashDir, appName),
		},
		"zsh": {
			dir:         zshDir,
			file:        "_" + appName,
			genFunc:     root.GenZshCompletion,
			activateCmd: fmt.Sprintf("fpath=(%s $fpath) && autoload -U compinit && compinit", zshDir),
		},
		"fish": {
			dir:         filepath.Join(home, ".config/fish/completions"),
			file:        appName + ".fish",
			genFunc:     func(w io.Writer) error { return root.GenFishCompletion(w, true) },
			activateCmd: "complete --do-complete=" + appName,
		},
		"powershell": {
			dir:         home,
			file:        appName + "_completion.ps1",
			genFunc:     root.GenPowerShellCompletionWithDesc,
			activateCmd: ". " + filepath.Join(home, appName+"_completion.ps1"),
		},
	}
}

func completionsExist() bool {
	config, ok := completionConfigs(&cobra.Command{})[detectShell()]
	if !ok {
		return false
	}
	_, err := os.Stat(filepath.Join(config.dir, config.file))
	return err == nil
}

func isShellSupported() bool {
	_, ok := completionConfigs(&cobra.Command{})[detectShell()]
	return ok
}

func detectShell() string {
	if runtime.GOOS == "windows" {
		return "powershell"
	}

	shell := filepath.Base(os.Getenv("SHELL"))
	if shell == "" || shell == "." {
		return "bash"
	}
	return shell
}

func installCompletions(root *cobra.Command, out io.Writer) error {
	shell := detectShell()
	config, ok := completionConfigs(root)[shell]
	if !ok {
		return fmt.Errorf("unsupported shell: %s", shell)
	}

	if err := os.MkdirAll(config.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", config.dir, err)
	}

	if err := writeCompletion(filepath.Join(config.dir, config.file), config.genFunc); err != nil {
		return err
	}

	fmt.Fprintf(out, "🔄 Running this command to enable auto-completions:\n")
	fmt.Fprintf(out, "   %s\n", config.activateCmd)
	return nil
}

// writeCompletion writes a generated completion script to path. A failed
// close counts as a failed write.
func writeCompletion(path string, gen func(io.Writer) error) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to write %s: %w", path, cerr)
		}
	}()
	return gen(file)
}

func isInPath() bool {
	execPath, err := os.Executable()
	if err != nil {
		return false
	}
	paths := strings.Split(os.Getenv("PATH"), string(os.PathListSeparator))
	return slices.Contains(paths, filepath.Dir(execPath))
}

func printPathInstructions(out io.Writer) {
	execPath, _ := os.Executable()
	execDir := filepath.Dir(execPath)

	fmt.Fprintf(out, "❌ %s not in PATH. Binary location: %s\n\n", appName, execPath)

	if runtime.GOOS == "windows" {
		fmt.Fprintf(out, "Add to PATH: %s\n", execDir)
	} else {
		fmt.Fprintf(out, "Add to shell profile: export PATH=\"%s:$PATH\"\n", execDir)
		fmt.Fprintln(out, "Or copy to: /usr/local/bin")
	}
}
