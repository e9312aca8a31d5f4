package components

import (
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"

	"kali-launcher/internal/models"
)

// ItemForm holds the inputs of the new/edit item dialog.
type ItemForm struct {
	nameEntry      *widget.Entry
	categorySelect *widget.Select
	commandEntry   *widget.Entry
	kindSelect     *widget.Select
	terminalCheck  *widget.Check
}

func NewItemForm(draft models.ItemDraft, categories []string) *ItemForm {
	f := &ItemForm{}

	f.nameEntry = widget.NewEntry()
	f.nameEntry.SetPlaceHolder("letters, digits, space, - or _")
	f.nameEntry.SetText(draft.Name)
	f.nameEntry.Validator = func(s string) error {
		return models.ValidateItemName(strings.TrimSpace(s))
	}

	f.categorySelect = widget.NewSelect(categories, nil)
	if draft.Category != "" {
		f.categorySelect.SetSelected(draft.Category)
	} else if len(categories) > 0 {
		f.categorySelect.SetSelected(categories[0])
	}

	f.commandEntry = widget.NewMultiLineEntry()
	f.commandEntry.SetPlaceHolder("nmap -sV 192.168.1.1")
	f.commandEntry.SetMinRowsVisible(3)
	f.commandEntry.SetText(draft.Command)

	f.terminalCheck = widget.NewCheck("Run in terminal", nil)
	f.terminalCheck.SetChecked(draft.OpenTerminal)

	kinds := make([]string, 0, len(models.Kinds))
	for _, k := range models.Kinds {
		kinds = append(kinds, string(k))
	}
	f.kindSelect = widget.NewSelect(kinds, func(kind string) {
		if models.ItemKind(kind) == models.KindCommand {
			f.terminalCheck.Enable()
		} else {
			f.terminalCheck.Disable()
		}
	})
	kind := draft.Kind
	if kind == "" {
		kind = models.KindCommand
	}
	f.kindSelect.SetSelected(string(kind))

	return f
}

func (f *ItemForm) Items() []*widget.FormItem {
	return []*widget.FormItem{
		widget.NewFormItem("Name", f.nameEntry),
		widget.NewFormItem("Category", f.categorySelect),
		widget.NewFormItem("Type", f.kindSelect),
		{Text: "Command", Widget: f.commandEntry, HintText: "command, URL or path"},
		widget.NewFormItem("", f.terminalCheck),
	}
}

// Draft returns the current input.
func (f *ItemForm) Draft() models.ItemDraft {
	return models.ItemDraft{
		Name:         f.nameEntry.Text,
		Command:      f.commandEntry.Text,
		Category:     f.categorySelect.Selected,
		OpenTerminal: f.terminalCheck.Checked,
		Kind:         models.ItemKind(f.kindSelect.Selected),
	}
}

// NewCategoryEntry returns an entry validated as a category name.
func NewCategoryEntry(initial string) *widget.Entry {
	entry := widget.NewEntry()
	entry.SetText(initial)
	entry.SetPlaceHolder("category name")
	entry.Validator = func(s string) error {
		return models.ValidateCategoryName(strings.TrimSpace(s))
	}
	return entry
}

var (
	ItemFormSize     = fyne.NewSize(460, 380)
	CategoryFormSize = fyne.NewSize(360, 160)
)
