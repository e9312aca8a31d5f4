package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"kali-launcher/internal/app"
	"kali-launcher/internal/history"
	"kali-launcher/internal/models"
)

func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file>",
		Short: "Write the launcher document to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCore(rootOpts, func(core *app.Core) error {
				if err := core.Service.Export(args[0]); err != nil {
					return WrapExitError(ExitCommandError, "export failed", err)
				}
				return newPrinter(rootOpts, cmd).result(map[string]string{"path": args[0]}, func(w io.Writer) {
					fmt.Fprintf(w, "exported to %s\n", args[0])
				})
			})
		},
	}
}

func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the launcher document with a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCore(rootOpts, func(core *app.Core) error {
				report, err := core.Service.Import(args[0])
				if err != nil {
					return WrapExitError(ExitCommandError, "import failed", err)
				}
				doc := core.Service.Document()
				return newPrinter(rootOpts, cmd).result(report, func(w io.Writer) {
					fmt.Fprintf(w, "imported %d categories and %d items\n", len(doc.Categories), len(doc.Items))
					if report.Changed() {
						writeRepairs(w, report)
					}
				})
			})
		},
	}
}

func writeRepairs(w io.Writer, r models.NormalizeReport) {
	if r.AddedDefault {
		fmt.Fprintln(w, dimStyle.Render("  added the default category"))
	}
	for _, line := range []struct {
		n    int
		text string
	}{
		{r.DroppedCategories, "blank or duplicate categories dropped"},
		{r.ReassignedItems, "items moved to the default category"},
		{r.AssignedIDs, "items given a new id"},
		{r.DroppedItems, "incomplete items dropped"},
		{r.DefaultedKinds, "items with an unknown kind set to command"},
		{r.RenamedItems, "items renamed to keep names unique"},
	} {
		if line.n > 0 {
			fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("  %d %s", line.n, line.text)))
		}
	}
}

func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent launches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCore(rootOpts, func(core *app.Core) error {
				if !core.Service.HistoryEnabled() {
					return NewExitError(ExitCommandError, "launch history is disabled in settings")
				}
				ctx, cancel := contextWithTimeout(cmd, 5*time.Second)
				defer cancel()

				entries, err := core.Service.RecentLaunches(ctx, limit)
				if err != nil {
					return WrapExitError(ExitFailure, "read history", err)
				}
				return newPrinter(rootOpts, cmd).result(entries, func(w io.Writer) {
					writeHistory(w, entries)
				})
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of launches to show")
	return cmd
}

func writeHistory(w io.Writer, entries []history.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "no launches recorded yet")
		return
	}
	fmt.Fprintln(w, headingStyle.Render(fmt.Sprintf("%-15s %-24s %-9s %s", "WHEN", "ITEM", "MODE", "RESULT")))
	for _, e := range entries {
		outcome := e.Outcome()
		if outcome != "ok" && outcome != "running" {
			outcome = failStyle.Render(outcome)
		}
		fmt.Fprintf(w, "%-15s %-24s %-9s %s\n", e.StartedAt.Format("01-02 15:04:05"), e.ItemName, e.Mode, outcome)
	}
}

func contextWithTimeout(cmd *cobra.Command, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(commandContext(cmd), d)
}
