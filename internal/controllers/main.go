package controllers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"fyne.io/fyne/v2"

	"kali-launcher/internal/launcher"
	"kali-launcher/internal/logger"
	"kali-launcher/internal/models"
	"kali-launcher/internal/services"
	"kali-launcher/internal/views"
)

const (
	historyLimit  = 50
	exportName    = "kali_launcher.json"
	queryTimeout  = 3 * time.Second
	statusTrimLen = 120
)

// MainController wires the launcher service to the main view
type MainController struct {
	service *services.LauncherService
	logger  logger.Logger

	mainView *views.MainView

	mu               sync.RWMutex
	currentWindow    fyne.Window
	selectedCategory string
	searchTerm       string
	active           atomic.Int32
}

func NewMainController(service *services.LauncherService, log logger.Logger) *MainController {
	mc := &MainController{
		service:          service,
		logger:           log,
		selectedCategory: models.DefaultCategory,
	}
	service.OnLaunchFinished(mc.handleLaunchFinished)
	return mc
}

// SetMainView associates the main view with this controller
func (mc *MainController) SetMainView(view *views.MainView) {
	mc.mainView = view
	mc.setupViewEventHandlers()
}

func (mc *MainController) SetWindow(window fyne.Window) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.currentWindow = window
}

// Initialize pushes the loaded document into the view.
func (mc *MainController) Initialize() {
	mc.mainView.SetHistoryEnabled(mc.service.HistoryEnabled())
	mc.mainView.ApplyTheme(mc.service.Theme())

	categories := mc.service.Categories()
	if len(categories) > 0 {
		mc.setSelected(categories[0])
	}
	mc.refresh()
}

func (mc *MainController) setupViewEventHandlers() {
	mv := mc.mainView

	mv.SetCategorySelectedHandler(func(category string) {
		mc.setSelected(category)
		mc.refreshItems()
	})
	mv.SetSearchChangedHandler(func(term string) {
		mc.mu.Lock()
		mc.searchTerm = term
		mc.mu.Unlock()
		mc.refreshItems()
	})

	mv.SetLaunchHandler(func(item models.LauncherItem) {
		go mc.launch(item)
	})
	mv.SetItemActionHandler(mc.handleItemAction)
	mv.SetMoveItemHandler(mc.moveItem)

	mv.SetNewItemHandler(mc.newItem)
	mv.SetNewCategoryHandler(mc.newCategory)
	mv.SetRenameCategoryHandler(mc.renameCategory)
	mv.SetDeleteCategoryHandler(mc.deleteCategory)

	mv.SetThemeChangeHandler(mc.changeTheme)
	mv.SetImportHandler(mc.importDocument)
	mv.SetExportHandler(mc.exportDocument)
	mv.SetHistoryHandler(func() {
		go mc.showHistory()
	})
}

func (mc *MainController) selected() (string, string) {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return mc.selectedCategory, mc.searchTerm
}

func (mc *MainController) setSelected(category string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.selectedCategory = category
}

// refresh redraws the sidebar and the grid. A selection that no longer
// exists falls back to the default category.
func (mc *MainController) refresh() {
	categories := mc.service.Categories()
	selected, _ := mc.selected()

	found := false
	for _, c := range categories {
		if c == selected {
			found = true
			break
		}
	}
	if !found {
		selected = models.DefaultCategory
		mc.setSelected(selected)
	}

	mc.mainView.SetCategories(categories, selected)
	mc.refreshItems()
}

func (mc *MainController) refreshItems() {
	category, term := mc.selected()
	items := mc.service.Items(category, term)
	total := len(mc.service.Items(category, ""))
	mc.mainView.ShowItems(category, items, total)
}

// launch counts the launch as active before starting it, so a finish
// reported before Launch returns cannot be lost.
func (mc *MainController) launch(item models.LauncherItem) {
	mc.mainView.SetActiveLaunches(int(mc.active.Add(1)))

	l, err := mc.service.Launch(item.ID)
	if errors.Is(err, launcher.ErrNoTerminal) {
		mc.launchEmbedded(item)
		return
	}
	if err != nil {
		mc.launchAborted()
		mc.handleError("Launch failed", err)
		return
	}

	switch l.Mode {
	case launcher.ModeTerminal:
		mc.mainView.UpdateStatus(fmt.Sprintf("Launched %s in a terminal", item.Name))
	case launcher.ModeOpen:
		mc.mainView.UpdateStatus(fmt.Sprintf("Opened %s", item.Name))
	default:
		mc.mainView.UpdateStatus(fmt.Sprintf("Running %s", item.Name))
	}
}

func (mc *MainController) launchEmbedded(item models.LauncherItem) {
	session, err := mc.service.LaunchEmbedded(item.ID)
	if err != nil {
		mc.launchAborted()
		mc.handleError("Launch failed", fmt.Errorf("%w; built-in terminal: %v", launcher.ErrNoTerminal, err))
		return
	}

	mc.mainView.OpenTerminal(item.Name, session, session.Done(), func() int {
		return session.Result().ExitCode
	})
	mc.mainView.UpdateStatus(fmt.Sprintf("No terminal emulator found, running %s in the built-in terminal", item.Name))
}

func (mc *MainController) launchAborted() {
	mc.mainView.SetActiveLaunches(int(mc.active.Add(-1)))
}

// ActiveLaunches is the number of launches not yet reported as finished.
func (mc *MainController) ActiveLaunches() int {
	return int(mc.active.Load())
}

func (mc *MainController) handleLaunchFinished(res launcher.Result) {
	mc.mainView.SetActiveLaunches(int(mc.active.Add(-1)))

	if res.Success() {
		if res.Mode == launcher.ModeDirect {
			mc.mainView.UpdateStatus(fmt.Sprintf("%s finished in %s", res.ItemName, res.Duration.Round(time.Millisecond)))
		}
		return
	}

	msg := fmt.Sprintf("%s exited with code %d", res.ItemName, res.ExitCode)
	if res.Err != nil {
		msg = fmt.Sprintf("%s failed: %v", res.ItemName, res.Err)
	}
	if line := firstLine(res.Stderr); line != "" {
		msg += ": " + line
	}
	mc.mainView.UpdateStatus(msg)
}

func (mc *MainController) handleItemAction(action views.ItemMenuAction, item models.LauncherItem) {
	switch action {
	case views.ItemEdit:
		mc.editItem(item.ID, models.DraftFrom(item))
	case views.ItemCopy:
		mc.mainView.CopyToClipboard(item.Command)
		mc.mainView.UpdateStatus(fmt.Sprintf("Copied the command of %s", item.Name))
	case views.ItemDelete:
		mc.mainView.ShowConfirm("Delete item",
			fmt.Sprintf("Delete %q?", item.Name),
			func(ok bool) {
				if !ok {
					return
				}
				if _, err := mc.service.DeleteItem(item.ID); err != nil {
					mc.handleError("Delete failed", err)
				}
				mc.refreshItems()
			})
	}
}

func (mc *MainController) moveItem(item models.LauncherItem, category string) {
	if err := mc.service.MoveItem(item.ID, category); err != nil {
		mc.handleError("Move failed", err)
	}
	mc.refreshItems()
}

func (mc *MainController) newItem(category string) {
	if len(mc.service.Categories()) == 0 {
		mc.mainView.ShowInfo("New item", "Create a category first")
		return
	}
	if category == "" {
		category, _ = mc.selected()
	}
	mc.showAddItemForm(models.ItemDraft{
		Category:     category,
		OpenTerminal: true,
		Kind:         models.KindCommand,
	})
}

func (mc *MainController) showAddItemForm(draft models.ItemDraft) {
	mc.mainView.ShowItemForm("New item", draft, mc.service.Categories(), func(d models.ItemDraft) {
		item, err := mc.service.AddItem(d)
		if models.IsValidationError(err) {
			mc.mainView.ShowError("Invalid item", err)
			mc.showAddItemForm(d)
			return
		}
		if err != nil {
			mc.handleError("Save failed", err)
		}
		// A failed save keeps the item in memory.
		if item.Category != "" {
			mc.setSelected(item.Category)
		}
		mc.refresh()
	})
}

func (mc *MainController) editItem(id string, draft models.ItemDraft) {
	mc.mainView.ShowItemForm("Edit item", draft, mc.service.Categories(), func(d models.ItemDraft) {
		_, err := mc.service.UpdateItem(id, d)
		if models.IsValidationError(err) {
			mc.mainView.ShowError("Invalid item", err)
			mc.editItem(id, d)
			return
		}
		if err != nil {
			mc.handleError("Save failed", err)
		}
		mc.refreshItems()
	})
}

func (mc *MainController) newCategory() {
	mc.mainView.ShowCategoryForm("New category", "", func(name string) {
		name = strings.TrimSpace(name)
		err := mc.service.AddCategory(name)
		if models.IsValidationError(err) {
			mc.mainView.ShowError("Invalid category", err)
			return
		}
		if err != nil {
			mc.handleError("Save failed", err)
			mc.refresh()
			return
		}
		mc.setSelected(name)
		mc.refresh()
	})
}

func (mc *MainController) renameCategory(name string) {
	if name == models.DefaultCategory {
		mc.mainView.ShowError("Rename category", models.ErrDefaultCategory)
		return
	}
	mc.mainView.ShowCategoryForm("Rename category", name, func(newName string) {
		newName = strings.TrimSpace(newName)
		moved, err := mc.service.RenameCategory(name, newName)
		if err != nil && (models.IsValidationError(err) || errors.Is(err, models.ErrNotFound)) {
			mc.mainView.ShowError("Rename category", err)
			return
		}
		// Only save errors remain here; the rename is applied in memory.
		if selected, _ := mc.selected(); selected == name {
			mc.setSelected(newName)
		}
		if err != nil {
			mc.handleError("Save failed", err)
			mc.refresh()
			return
		}
		mc.mainView.UpdateStatus(fmt.Sprintf("Renamed %s to %s (%d items)", name, newName, moved))
		mc.refresh()
	})
}

func (mc *MainController) deleteCategory(name string) {
	if name == models.DefaultCategory {
		mc.mainView.ShowError("Delete category", models.ErrDefaultCategory)
		return
	}
	count := len(mc.service.Items(name, ""))
	msg := fmt.Sprintf("Delete category %q?", name)
	if count > 0 {
		msg = fmt.Sprintf("Delete category %q and the %d items in it?", name, count)
	}
	mc.mainView.ShowConfirm("Delete category", msg, func(ok bool) {
		if !ok {
			return
		}
		removed, err := mc.service.RemoveCategory(name)
		if err != nil {
			mc.handleError("Delete failed", err)
			mc.refresh()
			return
		}
		mc.mainView.UpdateStatus(fmt.Sprintf("Deleted %s and %d items", name, removed))
		mc.refresh()
	})
}

func (mc *MainController) changeTheme(name string) {
	if name == models.ThemeAuto {
		name = ""
	}
	if err := mc.service.SetTheme(name); err != nil {
		mc.handleError("Theme", err)
	}
	mc.mainView.ApplyTheme(name)
}

func (mc *MainController) importDocument() {
	mc.mainView.ShowOpenFile(func(path string) {
		report, err := mc.service.Import(path)
		mc.mainView.ApplyTheme(mc.service.Theme())
		mc.refresh()
		if err != nil {
			mc.handleError("Import failed", err)
			return
		}

		msg := fmt.Sprintf("Imported %d categories and %d items", len(mc.service.Categories()), len(mc.service.Items("", "")))
		if report.ReassignedItems > 0 {
			msg += fmt.Sprintf("; %d items moved to %s", report.ReassignedItems, models.DefaultCategory)
		}
		mc.mainView.UpdateStatus(msg)
	})
}

func (mc *MainController) exportDocument() {
	mc.mainView.ShowSaveFile(exportName, func(path string) {
		if err := mc.service.Export(path); err != nil {
			mc.handleError("Export failed", err)
			return
		}
		mc.mainView.UpdateStatus("Exported to " + path)
	})
}

func (mc *MainController) showHistory() {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	entries, err := mc.service.RecentLaunches(ctx, historyLimit)
	if err != nil {
		mc.handleError("History", err)
		return
	}
	mc.mainView.ShowHistory(entries)
}

// handleError logs err and reports it to the user.
func (mc *MainController) handleError(title string, err error) {
	mc.logger.Error("MainController", err, map[string]interface{}{
		"context": title,
	})
	if mc.mainView != nil {
		mc.mainView.ShowError(title, err)
		mc.mainView.UpdateStatus(title)
	}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > statusTrimLen {
		s = s[:statusTrimLen] + "..."
	}
	return s
}
