package components

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// Toolbar represents the main application toolbar
type Toolbar struct {
	container     *fyne.Container
	newItemButton *widget.Button
	newCatButton  *widget.Button
	importButton  *widget.Button
	exportButton  *widget.Button
	historyButton *widget.Button
	themeSelect   *widget.Select

	newItemHandler     func()
	newCategoryHandler func()
	importHandler      func()
	exportHandler      func()
	historyHandler     func()
	themeChangeHandler func(string)

	suppressTheme bool
}

func NewToolbar(themes []string) *Toolbar {
	toolbar := &Toolbar{}
	toolbar.createComponents(themes)
	toolbar.buildLayout()
	toolbar.setupEventHandlers()
	return toolbar
}

func (t *Toolbar) createComponents(themes []string) {
	t.newItemButton = widget.NewButtonWithIcon("New Item", theme.ContentAddIcon(), nil)
	t.newItemButton.Importance = widget.HighImportance

	t.newCatButton = widget.NewButtonWithIcon("New Category", theme.FolderNewIcon(), nil)

	t.importButton = widget.NewButtonWithIcon("Import", theme.DownloadIcon(), nil)
	t.exportButton = widget.NewButtonWithIcon("Export", theme.UploadIcon(), nil)
	t.historyButton = widget.NewButtonWithIcon("Recent", theme.HistoryIcon(), nil)

	t.themeSelect = widget.NewSelect(themes, nil)
}

func (t *Toolbar) buildLayout() {
	t.container = container.NewHBox(
		t.newItemButton,
		t.newCatButton,
		widget.NewSeparator(),
		t.importButton,
		t.exportButton,
		widget.NewSeparator(),
		t.historyButton,
		layout.NewSpacer(),
		widget.NewLabel("Theme"),
		t.themeSelect,
	)
}

func (t *Toolbar) setupEventHandlers() {
	t.newItemButton.OnTapped = func() {
		if t.newItemHandler != nil {
			t.newItemHandler()
		}
	}
	t.newCatButton.OnTapped = func() {
		if t.newCategoryHandler != nil {
			t.newCategoryHandler()
		}
	}
	t.importButton.OnTapped = func() {
		if t.importHandler != nil {
			t.importHandler()
		}
	}
	t.exportButton.OnTapped = func() {
		if t.exportHandler != nil {
			t.exportHandler()
		}
	}
	t.historyButton.OnTapped = func() {
		if t.historyHandler != nil {
			t.historyHandler()
		}
	}
	t.themeSelect.OnChanged = func(name string) {
		if t.suppressTheme {
			return
		}
		if t.themeChangeHandler != nil {
			t.themeChangeHandler(name)
		}
	}
}

func (t *Toolbar) SetNewItemHandler(handler func()) {
	t.newItemHandler = handler
}

func (t *Toolbar) SetNewCategoryHandler(handler func()) {
	t.newCategoryHandler = handler
}

func (t *Toolbar) SetImportHandler(handler func()) {
	t.importHandler = handler
}

func (t *Toolbar) SetExportHandler(handler func()) {
	t.exportHandler = handler
}

func (t *Toolbar) SetHistoryHandler(handler func()) {
	t.historyHandler = handler
}

func (t *Toolbar) SetThemeChangeHandler(handler func(string)) {
	t.themeChangeHandler = handler
}

// SetTheme shows name in the selector without firing the change handler.
func (t *Toolbar) SetTheme(name string) {
	t.suppressTheme = true
	t.themeSelect.SetSelected(name)
	t.suppressTheme = false
}

// EnableHistory toggles the Recent button.
func (t *Toolbar) EnableHistory(enabled bool) {
	if enabled {
		t.historyButton.Enable()
	} else {
		t.historyButton.Disable()
	}
}

func (t *Toolbar) GetContainer() *fyne.Container {
	return t.container
}
