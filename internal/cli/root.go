package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"kali-launcher/internal/app"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	DocumentPath string
	LogLevel     string
	Format       string // "json" | "text"
}

var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the kali-launcher command. Without a subcommand it
// opens the desktop window.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:     "kali-launcher",
		Short:   "Launch categorized shell commands",
		Long:    "Kali Launcher keeps categorized shell commands, URLs and paths and starts them in a terminal.",
		Version: app.AppVersion,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCore(opts, func(core *app.Core) error {
				app.NewApplication(core).Run()
				return nil
			})
		},
	}

	cmd.PersistentFlags().StringVar(&opts.DocumentPath, "config", "", "launcher document path")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewAddCommand(opts))
	cmd.AddCommand(NewRemoveCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewCopyCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewTUICommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// withCore bootstraps the shared core for the duration of fn.
func withCore(opts *RootOptions, fn func(core *app.Core) error) error {
	core, err := app.Bootstrap(app.Options{
		DocumentPath: opts.DocumentPath,
		LogLevel:     opts.LogLevel,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "startup failed", err)
	}
	defer core.Close()
	return fn(core)
}

func newPrinter(opts *RootOptions, cmd *cobra.Command) printer {
	return printer{format: opts.Format, w: cmd.OutOrStdout()}
}
