package views

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	fynestorage "fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"kali-launcher/internal/gui/layout"
	"kali-launcher/internal/history"
	"kali-launcher/internal/models"
	"kali-launcher/internal/views/components"
)

const (
	cardGap         float32 = 20
	placeholderText         = "OPEN KALI LAUNCHER"
)

// ItemMenuAction identifies an entry of the item context menu.
type ItemMenuAction int

const (
	ItemEdit ItemMenuAction = iota
	ItemCopy
	ItemDelete
)

// MainView represents the launcher window using MVC pattern
type MainView struct {
	window        fyne.Window
	mainContainer *fyne.Container
	toolbar       *components.Toolbar
	sidebar       *components.Sidebar
	statusBar     *components.StatusBar
	titleLabel    *widget.Label
	searchEntry   *widget.Entry
	grid          *fyne.Container
	placeholder   *fyne.Container
	scroll        *container.Scroll
	categories    []string

	// Event handlers - connected to controller
	categorySelectedHandler func(string)
	searchChangedHandler    func(string)
	launchHandler           func(models.LauncherItem)
	itemActionHandler       func(ItemMenuAction, models.LauncherItem)
	moveItemHandler         func(models.LauncherItem, string)
	newItemHandler          func(category string)
	newCategoryHandler      func()
	renameCategoryHandler   func(string)
	deleteCategoryHandler   func(string)
	themeChangeHandler      func(string)
	importHandler           func()
	exportHandler           func()
	historyHandler          func()
}

func NewMainView(window fyne.Window) *MainView {
	view := &MainView{
		window: window,
	}

	view.initializeComponents()
	view.buildLayout()
	view.setupEventHandlers()

	return view
}

func (mv *MainView) initializeComponents() {
	mv.toolbar = components.NewToolbar(ThemeNames)
	mv.sidebar = components.NewSidebar()
	mv.statusBar = components.NewStatusBar()

	mv.titleLabel = widget.NewLabelWithStyle("", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	mv.titleLabel.SizeName = theme.SizeNameHeadingText

	mv.searchEntry = widget.NewEntry()
	mv.searchEntry.SetPlaceHolder("Search name or command")
	mv.searchEntry.ActionItem = widget.NewButton("Clear", func() {
		mv.searchEntry.SetText("")
	})

	mv.grid = container.New(layout.NewFlowLayout(cardGap, cardGap))
	mv.placeholder = container.NewCenter(
		widget.NewLabelWithStyle(placeholderText, fyne.TextAlignCenter, fyne.TextStyle{Bold: true}),
	)
	mv.placeholder.Hide()
}

func (mv *MainView) buildLayout() {
	header := container.NewVBox(mv.titleLabel, mv.searchEntry)
	content := container.NewStack(
		container.NewPadded(mv.grid),
		mv.placeholder,
	)
	mv.scroll = container.NewVScroll(content)

	right := container.NewBorder(header, nil, nil, nil, mv.scroll)

	split := container.NewHSplit(mv.sidebar.GetContainer(), right)
	split.SetOffset(0.18)

	mv.mainContainer = container.NewBorder(
		mv.toolbar.GetContainer(),
		mv.statusBar.GetContainer(),
		nil,
		nil,
		split,
	)

	mv.window.SetContent(mv.mainContainer)
}

func (mv *MainView) setupEventHandlers() {
	mv.sidebar.SetSelectHandler(func(category string) {
		if mv.categorySelectedHandler != nil {
			mv.categorySelectedHandler(category)
		}
	})
	mv.sidebar.SetMenuHandler(mv.showCategoryMenu)

	mv.searchEntry.OnChanged = func(term string) {
		if mv.searchChangedHandler != nil {
			mv.searchChangedHandler(term)
		}
	}

	mv.toolbar.SetNewItemHandler(func() {
		if mv.newItemHandler != nil {
			mv.newItemHandler("")
		}
	})
	mv.toolbar.SetNewCategoryHandler(func() {
		if mv.newCategoryHandler != nil {
			mv.newCategoryHandler()
		}
	})
	mv.toolbar.SetImportHandler(func() {
		if mv.importHandler != nil {
			mv.importHandler()
		}
	})
	mv.toolbar.SetExportHandler(func() {
		if mv.exportHandler != nil {
			mv.exportHandler()
		}
	})
	mv.toolbar.SetHistoryHandler(func() {
		if mv.historyHandler != nil {
			mv.historyHandler()
		}
	})
	mv.toolbar.SetThemeChangeHandler(func(name string) {
		if mv.themeChangeHandler != nil {
			mv.themeChangeHandler(name)
		}
	})
}

// Event handler setters - called by controller

func (mv *MainView) SetCategorySelectedHandler(handler func(string)) {
	mv.categorySelectedHandler = handler
}

func (mv *MainView) SetSearchChangedHandler(handler func(string)) {
	mv.searchChangedHandler = handler
}

func (mv *MainView) SetLaunchHandler(handler func(models.LauncherItem)) {
	mv.launchHandler = handler
}

func (mv *MainView) SetItemActionHandler(handler func(ItemMenuAction, models.LauncherItem)) {
	mv.itemActionHandler = handler
}

func (mv *MainView) SetMoveItemHandler(handler func(models.LauncherItem, string)) {
	mv.moveItemHandler = handler
}

// SetNewItemHandler receives the category to preselect, or "" for the
// current one.
func (mv *MainView) SetNewItemHandler(handler func(string)) {
	mv.newItemHandler = handler
}

func (mv *MainView) SetNewCategoryHandler(handler func()) {
	mv.newCategoryHandler = handler
}

func (mv *MainView) SetRenameCategoryHandler(handler func(string)) {
	mv.renameCategoryHandler = handler
}

func (mv *MainView) SetDeleteCategoryHandler(handler func(string)) {
	mv.deleteCategoryHandler = handler
}

func (mv *MainView) SetThemeChangeHandler(handler func(string)) {
	mv.themeChangeHandler = handler
}

func (mv *MainView) SetImportHandler(handler func()) {
	mv.importHandler = handler
}

func (mv *MainView) SetExportHandler(handler func()) {
	mv.exportHandler = handler
}

func (mv *MainView) SetHistoryHandler(handler func()) {
	mv.historyHandler = handler
}

// UI update methods - called by controller

// SetCategories refreshes the sidebar and marks selected.
func (mv *MainView) SetCategories(categories []string, selected string) {
	fyne.Do(func() {
		mv.categories = append([]string(nil), categories...)
		mv.sidebar.SetCategories(categories, selected)
	})
}

// ShowItems replaces the grid with cards for items. total is the number of
// items in the category before the search filter.
func (mv *MainView) ShowItems(category string, items []models.LauncherItem, total int) {
	fyne.Do(func() {
		mv.titleLabel.SetText(category)

		cards := make([]fyne.CanvasObject, 0, len(items))
		for _, item := range items {
			cards = append(cards, components.NewItemCard(item, mv.onCardTapped, mv.showItemMenu))
		}
		mv.grid.Objects = cards
		mv.grid.Refresh()

		if len(items) == 0 {
			mv.placeholder.Show()
		} else {
			mv.placeholder.Hide()
		}
		mv.statusBar.SetItemInfo(len(items), total)
		mv.scroll.Refresh()
	})
}

func (mv *MainView) onCardTapped(item models.LauncherItem) {
	if mv.launchHandler != nil {
		mv.launchHandler(item)
	}
}

func (mv *MainView) showItemMenu(item models.LauncherItem, pos fyne.Position) {
	action := func(a ItemMenuAction) func() {
		return func() {
			if mv.itemActionHandler != nil {
				mv.itemActionHandler(a, item)
			}
		}
	}

	moveItems := make([]*fyne.MenuItem, 0, len(mv.categories))
	for _, category := range mv.categories {
		if category == item.Category {
			continue
		}
		target := category
		moveItems = append(moveItems, fyne.NewMenuItem(target, func() {
			if mv.moveItemHandler != nil {
				mv.moveItemHandler(item, target)
			}
		}))
	}
	move := fyne.NewMenuItem("Move to", nil)
	if len(moveItems) == 0 {
		move.Disabled = true
	} else {
		move.ChildMenu = fyne.NewMenu("", moveItems...)
	}

	menu := fyne.NewMenu("",
		fyne.NewMenuItem("Edit", action(ItemEdit)),
		move,
		fyne.NewMenuItem("Copy command", action(ItemCopy)),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Delete", action(ItemDelete)),
	)
	widget.ShowPopUpMenuAtPosition(menu, mv.window.Canvas(), pos)
}

func (mv *MainView) showCategoryMenu(category string, pos fyne.Position) {
	rename := fyne.NewMenuItem("Rename", func() {
		if mv.renameCategoryHandler != nil {
			mv.renameCategoryHandler(category)
		}
	})
	remove := fyne.NewMenuItem("Delete", func() {
		if mv.deleteCategoryHandler != nil {
			mv.deleteCategoryHandler(category)
		}
	})
	if category == models.DefaultCategory {
		rename.Disabled = true
		remove.Disabled = true
	}

	menu := fyne.NewMenu("",
		fyne.NewMenuItem("Add item here", func() {
			if mv.newItemHandler != nil {
				mv.newItemHandler(category)
			}
		}),
		rename,
		fyne.NewMenuItem("New category", func() {
			if mv.newCategoryHandler != nil {
				mv.newCategoryHandler()
			}
		}),
		fyne.NewMenuItemSeparator(),
		remove,
	)
	widget.ShowPopUpMenuAtPosition(menu, mv.window.Canvas(), pos)
}

func (mv *MainView) UpdateStatus(status string) {
	fyne.Do(func() {
		mv.statusBar.SetStatus(status)
	})
}

// Status returns the text shown in the status bar.
func (mv *MainView) Status() string {
	return mv.statusBar.GetStatus()
}

func (mv *MainView) SetActiveLaunches(n int) {
	fyne.Do(func() {
		mv.statusBar.SetActive(n)
	})
}

func (mv *MainView) SetHistoryEnabled(enabled bool) {
	fyne.Do(func() {
		mv.toolbar.EnableHistory(enabled)
	})
}

// ApplyTheme switches the app theme and updates the selector.
func (mv *MainView) ApplyTheme(name string) {
	fyne.Do(func() {
		if name == "" {
			name = ThemeNames[0]
		}
		fyne.CurrentApp().Settings().SetTheme(ThemeFor(name))
		mv.toolbar.SetTheme(name)
	})
}

// ShowItemForm opens the item dialog prefilled with draft. onSubmit runs
// only when the user confirms.
func (mv *MainView) ShowItemForm(title string, draft models.ItemDraft, categories []string, onSubmit func(models.ItemDraft)) {
	fyne.Do(func() {
		form := components.NewItemForm(draft, categories)
		d := dialog.NewForm(title, "Save", "Cancel", form.Items(), func(ok bool) {
			if ok && onSubmit != nil {
				onSubmit(form.Draft())
			}
		}, mv.window)
		d.Resize(components.ItemFormSize)
		d.Show()
	})
}

// ShowCategoryForm asks for a category name.
func (mv *MainView) ShowCategoryForm(title, initial string, onSubmit func(string)) {
	fyne.Do(func() {
		entry := components.NewCategoryEntry(initial)
		d := dialog.NewForm(title, "Save", "Cancel",
			[]*widget.FormItem{widget.NewFormItem("Name", entry)},
			func(ok bool) {
				if ok && onSubmit != nil {
					onSubmit(entry.Text)
				}
			}, mv.window)
		d.Resize(components.CategoryFormSize)
		d.Show()
	})
}

func (mv *MainView) ShowHistory(entries []history.Entry) {
	fyne.Do(func() {
		d := dialog.NewCustom("Recent launches", "Close", components.NewHistoryTable(entries), mv.window)
		d.Resize(fyne.NewSize(680, 420))
		d.Show()
	})
}

// ShowOpenFile asks for a JSON file to read and passes its path to callback.
func (mv *MainView) ShowOpenFile(callback func(path string)) {
	fyne.Do(func() {
		d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
			if err != nil {
				mv.ShowError("Import", err)
				return
			}
			if reader == nil {
				return
			}
			path := reader.URI().Path()
			reader.Close()
			callback(path)
		}, mv.window)
		d.SetFilter(fynestorage.NewExtensionFileFilter([]string{".json"}))
		d.Show()
	})
}

// ShowSaveFile asks for a destination and passes its path to callback.
func (mv *MainView) ShowSaveFile(defaultName string, callback func(path string)) {
	fyne.Do(func() {
		d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
			if err != nil {
				mv.ShowError("Export", err)
				return
			}
			if writer == nil {
				return
			}
			path := writer.URI().Path()
			writer.Close()
			callback(path)
		}, mv.window)
		d.SetFileName(defaultName)
		d.SetFilter(fynestorage.NewExtensionFileFilter([]string{".json"}))
		d.Show()
	})
}

// OpenTerminal shows session in an embedded terminal window. The title is
// updated with exitCode once done is closed.
func (mv *MainView) OpenTerminal(title string, session components.TerminalSession, done <-chan struct{}, exitCode func() int) {
	fyne.Do(func() {
		tw := components.NewTerminalWindow(fyne.CurrentApp(), title, session)
		tw.Show()
		go func() {
			<-done
			tw.MarkExited(exitCode())
		}()
	})
}

func (mv *MainView) CopyToClipboard(text string) {
	fyne.Do(func() {
		fyne.CurrentApp().Clipboard().SetContent(text)
	})
}

func (mv *MainView) ShowError(title string, err error) {
	fyne.Do(func() {
		dialog.ShowError(fmt.Errorf("%s: %w", title, err), mv.window)
	})
}

func (mv *MainView) ShowInfo(title, message string) {
	fyne.Do(func() {
		dialog.ShowInformation(title, message, mv.window)
	})
}

func (mv *MainView) ShowConfirm(title, message string, callback func(bool)) {
	fyne.Do(func() {
		dialog.ShowConfirm(title, message, callback, mv.window)
	})
}

func (mv *MainView) GetWindow() fyne.Window {
	return mv.window
}

func (mv *MainView) GetContainer() *fyne.Container {
	return mv.mainContainer
}
