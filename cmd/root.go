package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mabhi256/migration-analyzer/internal/fs"
	"github.com/mabhi256/migration-analyzer/utils"
)

const appName = "migration-analysis"

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

const inputPathHelp = "The input path may be either a single archive or a directory. In the case of a directory, " +
	"the entire directory structure is examined and all archives that are found are analyzed."

// usageError marks errors caused by how the command was invoked.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   appName + " <inputPath>",
		Short: "Inventory Java archives for migration assessment",
		Long: appName + " walks every entry of an archive, extracts facts relevant to a migration " +
			"(API usage, class hierarchy, annotations, manifests, deployment descriptors) and renders a report.",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return &usageError{fmt.Errorf("expected exactly one input path, got %d", len(args))}
			}
			return nil
		},
		ValidArgsFunction: utils.CompleteFilesByExtension(fs.ArchiveExtensions),
		SilenceUsage:      true,
		SilenceErrors:     true,

		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if cmd.Name() == "install" || cmd.Name() == "version" || cmd.Name() == "help" {
				return
			}
			if !utils.IsTerminal(os.Stdin) || !isShellSupported() || completionsExist() {
				return
			}

			out := cmd.ErrOrStderr()
			fmt.Fprintf(out, "🔧 First run detected, setting up %s...\n", appName)
			if installCompletions(cmd.Root(), out) == nil {
				fmt.Fprintln(out, "✅ Shell completions installed")
				fmt.Fprintln(out, "💡 Restart your shell to enable tab completion")
			} else {
				fmt.Fprintf(out, "⚠️  Auto-setup failed. Run '%s install' to try again.\n", appName)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalysis(cmd, opts, args[0])
		},
	}

	opts.register(root)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err}
	})
	root.SetUsageFunc(func(cmd *cobra.Command) error {
		writeUsage(cmd.OutOrStderr(), cmd)
		return nil
	})

	root.AddCommand(newInstallCmd(), newVersionCmd())
	return root
}

func writeUsage(w io.Writer, cmd *cobra.Command) {
	if cmd.HasParent() {
		fmt.Fprintf(w, "Usage: %s\n", cmd.UseLine())
	} else {
		fmt.Fprintf(w, "Usage: %s <inputPath> [OPTION]...\n\n%s\n", appName, inputPathHelp)
	}

	if cmd.HasAvailableLocalFlags() {
		fmt.Fprintf(w, "\nOptions:\n%s", cmd.LocalFlags().FlagUsages())
	}

	if cmd.HasAvailableSubCommands() {
		fmt.Fprintln(w, "\nCommands:")
		for _, sub := range cmd.Commands() {
			if sub.IsAvailableCommand() {
				fmt.Fprintf(w, "  %-*s %s\n", sub.NamePadding(), sub.Name(), sub.Short)
			}
		}
	}
}

// Run executes the command line and returns the process exit status:
// 0 on success, 2 for usage errors, 1 for any other failure.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}

	fmt.Fprintf(stderr, "Error: %v\n", err)

	var usage *usageError
	if errors.As(err, &usage) {
		fmt.Fprintln(stderr)
		writeUsage(stderr, root)
		return exitUsage
	}
	return exitFailure
}

func Execute() {
	os.Exit(Run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}
