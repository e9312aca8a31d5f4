package services

import (
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kali-launcher/internal/history"
	"kali-launcher/internal/launcher"
	"kali-launcher/internal/logger"
	"kali-launcher/internal/models"
	"kali-launcher/internal/storage"
)

type failingStore struct {
	saves int
}

func (f *failingStore) Load() (*models.Document, error) { return models.NewDocument(), nil }
func (f *failingStore) Save(*models.Document) error {
	f.saves++
	return errors.New("disk full")
}
func (f *failingStore) Export(*models.Document, string) error { return errors.New("disk full") }

type fixture struct {
	svc   *LauncherService
	store *storage.FileStore
	hist  *history.Store
}

func newFixture(t *testing.T, withHistory bool) fixture {
	t.Helper()
	dir := t.TempDir()
	log := logger.Nop()

	store := storage.NewFileStore(filepath.Join(dir, ".kali_launcher.json"), log)
	runner := launcher.NewRunner(log,
		launcher.WithGOOS("linux"),
		launcher.WithLookPath(func(name string) (string, error) {
			if name == "x-terminal-emulator" {
				return "/usr/bin/" + name, nil
			}
			return "", exec.ErrNotFound
		}),
		launcher.WithCommandFunc(func(string, ...string) *exec.Cmd {
			return exec.Command("sh", "-c", "exit 0")
		}),
	)

	f := fixture{store: store}
	var hs HistoryStore
	if withHistory {
		h, err := history.Open(filepath.Join(dir, "history.db"), log)
		require.NoError(t, err)
		t.Cleanup(func() { _ = h.Close() })
		f.hist = h
		hs = h
	}

	f.svc = NewLauncherService(models.NewDocumentRepository(nil), store, runner, hs, log)
	require.NoError(t, f.svc.Load())
	return f
}

func (f fixture) onDisk(t *testing.T) *models.Document {
	t.Helper()
	doc, err := storage.ReadFile(f.store.Path())
	require.NoError(t, err)
	return doc
}

func TestMutationsArePersisted(t *testing.T) {
	f := newFixture(t, false)

	require.NoError(t, f.svc.AddCategory("Recon"))
	item, err := f.svc.AddItem(models.ItemDraft{Name: "nmap", Command: "nmap -sV", Category: "Recon", OpenTerminal: true})
	require.NoError(t, err)

	doc := f.onDisk(t)
	assert.Equal(t, []string{models.DefaultCategory, "Recon"}, doc.Categories)
	require.Len(t, doc.Items, 1)
	assert.Equal(t, item.ID, doc.Items[0].ID)

	moved, err := f.svc.RenameCategory("Recon", "Scan")
	require.NoError(t, err)
	assert.Equal(t, 1, moved)
	assert.Equal(t, "Scan", f.onDisk(t).Items[0].Category)

	_, err = f.svc.UpdateItem(item.ID, models.ItemDraft{Name: "nmap", Command: "nmap -A", Category: "Scan"})
	require.NoError(t, err)
	assert.Equal(t, "nmap -A", f.onDisk(t).Items[0].Command)

	require.NoError(t, f.svc.MoveItem(item.ID, models.DefaultCategory))
	assert.Equal(t, models.DefaultCategory, f.onDisk(t).Items[0].Category)

	require.NoError(t, f.svc.SetTheme(models.ThemeDark))
	assert.Equal(t, models.ThemeDark, f.onDisk(t).Theme)
	assert.True(t, models.IsValidationError(f.svc.SetTheme("neon")))

	_, err = f.svc.DeleteItem(item.ID)
	require.NoError(t, err)
	assert.Empty(t, f.onDisk(t).Items)
}

func TestRemoveCategoryPersistsItemDeletion(t *testing.T) {
	f := newFixture(t, false)
	require.NoError(t, f.svc.AddCategory("Web"))
	_, err := f.svc.AddItem(models.ItemDraft{Name: "nikto", Command: "nikto", Category: "Web"})
	require.NoError(t, err)

	removed, err := f.svc.RemoveCategory("Web")
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	doc := f.onDisk(t)
	assert.Equal(t, []string{models.DefaultCategory}, doc.Categories)
	assert.Empty(t, doc.Items)
}

func TestValidationErrorsDoNotSave(t *testing.T) {
	store := &failingStore{}
	svc := NewLauncherService(models.NewDocumentRepository(nil), store, launcher.NewRunner(logger.Nop()), nil, logger.Nop())

	_, err := svc.AddItem(models.ItemDraft{Name: "bad;name", Command: "ls"})
	assert.True(t, models.IsValidationError(err))
	assert.Zero(t, store.saves)
}

func TestSaveFailureIsReportedButStateKept(t *testing.T) {
	store := &failingStore{}
	svc := NewLauncherService(models.NewDocumentRepository(nil), store, launcher.NewRunner(logger.Nop()), nil, logger.Nop())

	err := svc.AddCategory("Recon")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, 1, store.saves)
	assert.Contains(t, svc.Categories(), "Recon")
}

func TestExportImport(t *testing.T) {
	src := newFixture(t, false)
	require.NoError(t, src.svc.AddCategory("Recon"))
	_, err := src.svc.AddItem(models.ItemDraft{Name: "nmap", Command: "nmap", Category: "Recon", OpenTerminal: true})
	require.NoError(t, err)

	exported := filepath.Join(t.TempDir(), "export.json")
	require.NoError(t, src.svc.Export(exported))

	dst := newFixture(t, false)
	report, err := dst.svc.Import(exported)
	require.NoError(t, err)
	assert.False(t, report.Changed())
	assert.Equal(t, src.svc.Document(), dst.svc.Document())
	assert.Equal(t, src.svc.Document(), dst.onDisk(t))

	_, err = dst.svc.Import(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Len(t, dst.svc.Items("", ""), 1, "failed import must keep the current document")
}

func TestLaunchRecordsHistoryAndNotifies(t *testing.T) {
	f := newFixture(t, true)
	item, err := f.svc.AddItem(models.ItemDraft{Name: "shell", Command: "bash", OpenTerminal: true})
	require.NoError(t, err)

	results := make(chan launcher.Result, 1)
	f.svc.OnLaunchFinished(func(res launcher.Result) { results <- res })

	l, err := f.svc.Launch(item.ID)
	require.NoError(t, err)
	assert.Equal(t, launcher.ModeTerminal, l.Mode)

	select {
	case res := <-results:
		assert.Equal(t, item.ID, res.ItemID)
		assert.True(t, res.Success())
	case <-time.After(5 * time.Second):
		t.Fatal("launch listener not called")
	}

	ctx := context.Background()
	entries, err := f.svc.RecentLaunches(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "shell", entries[0].ItemName)
	assert.True(t, entries[0].Finished)

	stats, err := f.svc.LaunchStats(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Count)
}

func TestLaunchUnknownItem(t *testing.T) {
	f := newFixture(t, false)
	_, err := f.svc.Launch("missing")
	assert.ErrorIs(t, err, models.ErrNotFound)

	entries, err := f.svc.RecentLaunches(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.False(t, f.svc.HistoryEnabled())
}
