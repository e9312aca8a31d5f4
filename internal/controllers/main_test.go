package controllers

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/widget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kali-launcher/internal/launcher"
	"kali-launcher/internal/logger"
	"kali-launcher/internal/models"
	"kali-launcher/internal/services"
	"kali-launcher/internal/views"
)

// memoryStore keeps the document in memory and fails every save while fail
// is set.
type memoryStore struct {
	fail bool
}

func (m *memoryStore) Load() (*models.Document, error) { return models.NewDocument(), nil }
func (m *memoryStore) Save(*models.Document) error {
	if m.fail {
		return errors.New("disk full")
	}
	return nil
}
func (m *memoryStore) Export(*models.Document, string) error { return nil }

type fixture struct {
	mc       *MainController
	svc      *services.LauncherService
	view     *views.MainView
	window   fyne.Window
	store    *memoryStore
	finished chan launcher.Result
}

// newFixture builds a controller over a test window. No terminal emulator
// is installed, and the bash started for the built-in terminal exits at once.
func newFixture(t *testing.T) fixture {
	t.Helper()
	test.NewTempApp(t)
	log := logger.Nop()

	runner := launcher.NewRunner(log,
		launcher.WithGOOS("linux"),
		launcher.WithLookPath(func(string) (string, error) { return "", exec.ErrNotFound }),
		launcher.WithCommandFunc(func(name string, args ...string) *exec.Cmd {
			if name == "bash" {
				return exec.Command("sh", "-c", "exit 0")
			}
			return exec.Command(name, args...)
		}),
	)
	t.Cleanup(runner.Shutdown)

	store := &memoryStore{}
	svc := services.NewLauncherService(models.NewDocumentRepository(nil), store, runner, nil, log)
	require.NoError(t, svc.Load())

	w := test.NewTempWindow(t, nil)
	mc := NewMainController(svc, log)
	view := views.NewMainView(w)
	mc.SetMainView(view)
	mc.SetWindow(w)
	mc.Initialize()

	// Listeners run in registration order, so this fires after the
	// controller has handled the same result.
	finished := make(chan launcher.Result, 4)
	svc.OnLaunchFinished(func(res launcher.Result) { finished <- res })

	return fixture{mc: mc, svc: svc, view: view, window: w, store: store, finished: finished}
}

func (f fixture) waitFinished(t *testing.T) launcher.Result {
	t.Helper()
	select {
	case res := <-f.finished:
		return res
	case <-time.After(5 * time.Second):
		t.Fatal("launch did not finish")
		return launcher.Result{}
	}
}

// tapButton taps the button labelled text in the topmost dialog.
func (f fixture) tapButton(t *testing.T, text string) {
	t.Helper()
	top := f.window.Canvas().Overlays().Top()
	require.NotNil(t, top, "no dialog open")
	for _, o := range test.LaidOutObjects(top) {
		if b, ok := o.(*widget.Button); ok && b.Text == text {
			test.Tap(b)
			return
		}
	}
	t.Fatalf("no %q button in the open dialog", text)
}

// fillEntry replaces the text of the first entry in the topmost dialog.
func (f fixture) fillEntry(t *testing.T, text string) {
	t.Helper()
	top := f.window.Canvas().Overlays().Top()
	require.NotNil(t, top, "no dialog open")
	for _, o := range test.LaidOutObjects(top) {
		if e, ok := o.(*widget.Entry); ok {
			e.SetText(text)
			return
		}
	}
	t.Fatal("no entry in the open dialog")
}

func TestDeletingSelectedCategoryFallsBackToDefault(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.svc.AddCategory("Recon"))
	_, err := f.svc.AddItem(models.ItemDraft{Name: "nmap", Command: "nmap -sV", Category: "Recon"})
	require.NoError(t, err)

	f.mc.setSelected("Recon")
	f.mc.refresh()

	f.mc.deleteCategory("Recon")
	f.tapButton(t, "Yes")

	selected, _ := f.mc.selected()
	assert.Equal(t, models.DefaultCategory, selected)
	assert.Equal(t, []string{models.DefaultCategory}, f.svc.Categories())
	assert.Equal(t, "Deleted Recon and 1 items", f.view.Status())
}

func TestDeclinedDeleteKeepsCategory(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.svc.AddCategory("Recon"))
	f.mc.setSelected("Recon")

	f.mc.deleteCategory("Recon")
	f.tapButton(t, "No")

	selected, _ := f.mc.selected()
	assert.Equal(t, "Recon", selected)
	assert.Contains(t, f.svc.Categories(), "Recon")
}

func TestDeleteSaveErrorIsNotOverwritten(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.svc.AddCategory("Recon"))
	f.mc.setSelected("Recon")
	f.store.fail = true

	f.mc.deleteCategory("Recon")
	f.tapButton(t, "Yes")

	assert.Equal(t, "Delete failed", f.view.Status())
	selected, _ := f.mc.selected()
	assert.Equal(t, models.DefaultCategory, selected)
}

func TestRenameSaveErrorFollowsSelection(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.svc.AddCategory("Recon"))
	f.mc.setSelected("Recon")
	f.store.fail = true

	f.mc.renameCategory("Recon")
	f.fillEntry(t, "Scan")
	f.tapButton(t, "Save")

	selected, _ := f.mc.selected()
	assert.Equal(t, "Scan", selected)
	assert.Equal(t, "Save failed", f.view.Status())
}

func TestRenameReportsMovedItems(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.svc.AddCategory("Recon"))
	_, err := f.svc.AddItem(models.ItemDraft{Name: "nmap", Command: "nmap", Category: "Recon"})
	require.NoError(t, err)

	f.mc.renameCategory("Recon")
	f.fillEntry(t, "Scan")
	f.tapButton(t, "Save")

	assert.Equal(t, "Renamed Recon to Scan (1 items)", f.view.Status())
	assert.Equal(t, []string{models.DefaultCategory, "Scan"}, f.svc.Categories())
}

func TestNewCategorySaveErrorIsNotOverwritten(t *testing.T) {
	f := newFixture(t)
	f.store.fail = true

	f.mc.newCategory()
	f.fillEntry(t, "Web")
	f.tapButton(t, "Save")

	assert.Equal(t, "Save failed", f.view.Status())
	assert.Contains(t, f.svc.Categories(), "Web")
}

func TestLaunchStatusAndActiveCount(t *testing.T) {
	f := newFixture(t)
	gate := filepath.Join(t.TempDir(), "gate")
	item, err := f.svc.AddItem(models.ItemDraft{
		Name:     "tool",
		Command:  fmt.Sprintf("while [ ! -e %s ]; do sleep 0.05; done; echo denied >&2; exit 3", gate),
		Category: models.DefaultCategory,
	})
	require.NoError(t, err)

	f.mc.launch(item)
	assert.Equal(t, "Running tool", f.view.Status())
	assert.Equal(t, 1, f.mc.ActiveLaunches())

	require.NoError(t, os.WriteFile(gate, nil, 0o644))
	res := f.waitFinished(t)
	assert.Equal(t, 3, res.ExitCode)

	assert.Equal(t, 0, f.mc.ActiveLaunches())
	assert.Equal(t, "tool exited with code 3: denied", f.view.Status())
}

func TestSuccessfulLaunchReportsDuration(t *testing.T) {
	f := newFixture(t)
	item, err := f.svc.AddItem(models.ItemDraft{Name: "quick", Command: "exit 0", Category: models.DefaultCategory})
	require.NoError(t, err)

	f.mc.launch(item)
	f.waitFinished(t)

	assert.Equal(t, 0, f.mc.ActiveLaunches())
	assert.Contains(t, f.view.Status(), "quick finished in")
}

func TestFailedLaunchDoesNotLeakActiveCount(t *testing.T) {
	f := newFixture(t)

	f.mc.launch(models.LauncherItem{ID: "missing", Name: "ghost"})

	assert.Equal(t, 0, f.mc.ActiveLaunches())
	assert.Equal(t, "Launch failed", f.view.Status())
}

func TestNoTerminalFallsBackToEmbedded(t *testing.T) {
	f := newFixture(t)
	item, err := f.svc.AddItem(models.ItemDraft{
		Name:         "shell",
		Command:      "id",
		Category:     models.DefaultCategory,
		OpenTerminal: true,
	})
	require.NoError(t, err)

	_, err = f.svc.Launch(item.ID)
	require.ErrorIs(t, err, launcher.ErrNoTerminal)

	f.mc.launch(item)
	if f.view.Status() == "Launch failed" {
		t.Skip("pseudo terminals are not available")
	}
	assert.Equal(t, "No terminal emulator found, running shell in the built-in terminal", f.view.Status())
	assert.Len(t, fyne.CurrentApp().Driver().AllWindows(), 2)

	res := f.waitFinished(t)
	assert.Equal(t, launcher.ModeEmbedded, res.Mode)
	assert.Equal(t, 0, f.mc.ActiveLaunches())
}
