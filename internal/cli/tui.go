package cli

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"kali-launcher/internal/app"
	"kali-launcher/internal/tui"
)

func NewTUICommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Pick and launch items in the terminal",
		Long: `Browse categories as tabs and launch the selected item with enter.

Keys: tab / shift+tab switch category, / filters, enter launches, q quits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
				return NewExitError(ExitCommandError, "tui needs an interactive terminal")
			}
			return withCore(rootOpts, func(core *app.Core) error {
				return tui.Run(core.Service)
			})
		},
	}
}
