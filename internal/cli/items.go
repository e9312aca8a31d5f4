package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"kali-launcher/internal/app"
	"kali-launcher/internal/models"
)

// writeClipboard is replaced in tests.
var writeClipboard = clipboard.WriteAll

type categoryListing struct {
	Category string                `json:"category"`
	Items    []models.LauncherItem `json:"items"`
}

func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List categories and their items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCore(rootOpts, func(core *app.Core) error {
				categories := core.Service.Categories()
				if category != "" {
					if !core.Service.Repository().HasCategory(category) {
						return NewExitError(ExitCommandError, fmt.Sprintf("unknown category %q", category))
					}
					categories = []string{category}
				}

				listing := make([]categoryListing, 0, len(categories))
				for _, c := range categories {
					listing = append(listing, categoryListing{Category: c, Items: core.Service.Items(c, "")})
				}
				return newPrinter(rootOpts, cmd).result(listing, func(w io.Writer) {
					writeListing(w, listing)
				})
			})
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "only list this category")
	return cmd
}

func writeListing(w io.Writer, listing []categoryListing) {
	for i, entry := range listing {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, headingStyle.Render(fmt.Sprintf("%s (%d)", entry.Category, len(entry.Items))))
		for _, item := range entry.Items {
			fmt.Fprintf(w, "  %-24s %s %s\n", item.Name, dimStyle.Render("["+string(item.Kind)+"]"), item.Command)
		}
	}
}

func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		draft models.ItemDraft
		kind  string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a launcher item",
		Example: `  kali-launcher add --name nmap-scan --command "nmap -sV 192.168.1.1"
  kali-launcher add --name docs --kind url --command kali.org --category Links`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			draft.Kind = models.ItemKind(kind)
			return withCore(rootOpts, func(core *app.Core) error {
				if draft.Category == "" {
					draft.Category = models.DefaultCategory
				}
				item, err := core.Service.AddItem(draft)
				if err != nil {
					return mutationError("add item", err)
				}
				return newPrinter(rootOpts, cmd).result(item, func(w io.Writer) {
					fmt.Fprintf(w, "added %s to %s\n", item.Name, item.Category)
				})
			})
		},
	}

	cmd.Flags().StringVar(&draft.Name, "name", "", "item name (required)")
	cmd.Flags().StringVar(&draft.Command, "command", "", "command, URL or path (required)")
	cmd.Flags().StringVar(&draft.Category, "category", "", "category (default "+models.DefaultCategory+")")
	cmd.Flags().BoolVar(&draft.OpenTerminal, "terminal", true, "run in a terminal window")
	cmd.Flags().StringVar(&kind, "kind", string(models.KindCommand), "command|url|file|folder")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("command")

	return cmd
}

func NewRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <name>",
		Aliases: []string{"remove"},
		Short:   "Delete a launcher item by name",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCore(rootOpts, func(core *app.Core) error {
				item, err := findItem(core, args[0])
				if err != nil {
					return err
				}
				if _, err := core.Service.DeleteItem(item.ID); err != nil {
					return mutationError("delete item", err)
				}
				return newPrinter(rootOpts, cmd).result(item, func(w io.Writer) {
					fmt.Fprintf(w, "removed %s\n", item.Name)
				})
			})
		},
	}
}

func NewCopyCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "copy <name>",
		Short: "Copy an item's command to the clipboard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCore(rootOpts, func(core *app.Core) error {
				item, err := findItem(core, args[0])
				if err != nil {
					return err
				}
				if err := writeClipboard(item.Command); err != nil {
					return WrapExitError(ExitCommandError, "clipboard unavailable", err)
				}
				return newPrinter(rootOpts, cmd).result(item, func(w io.Writer) {
					fmt.Fprintf(w, "copied: %s\n", item.Command)
				})
			})
		},
	}
}

func findItem(core *app.Core, name string) (models.LauncherItem, error) {
	item, err := core.Service.FindByName(strings.TrimSpace(name))
	if err != nil {
		return models.LauncherItem{}, WrapExitError(ExitCommandError, "unknown item", err)
	}
	return item, nil
}

// mutationError maps invalid input to a command error; save failures keep
// the generic failure code.
func mutationError(op string, err error) error {
	if models.IsValidationError(err) || errors.Is(err, models.ErrNotFound) || errors.Is(err, models.ErrDefaultCategory) {
		return WrapExitError(ExitCommandError, op, err)
	}
	return WrapExitError(ExitFailure, op, err)
}
