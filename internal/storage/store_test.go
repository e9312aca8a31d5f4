package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kali-launcher/internal/logger"
	"kali-launcher/internal/models"
)

func sampleDocument() *models.Document {
	return &models.Document{
		Categories: []string{models.DefaultCategory, "Recon"},
		Items: []models.LauncherItem{
			{
				ID:           "item-1",
				Name:         "nmap",
				Command:      "nmap -sV 10.0.0.1 && echo done",
				Category:     "Recon",
				OpenTerminal: true,
				Kind:         models.KindCommand,
			},
			{
				ID:       "item-2",
				Name:     "Docs",
				Command:  "kali.org/docs",
				Category: models.DefaultCategory,
				Kind:     models.KindURL,
			},
		},
		Theme: "dark",
	}
}

func newStore(t *testing.T) *FileStore {
	t.Helper()
	return NewFileStore(filepath.Join(t.TempDir(), "kali_launcher", ".kali_launcher.json"), logger.Nop())
}

func TestEncodeGolden(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	data, err := Encode(sampleDocument())
	require.NoError(t, err)
	g.Assert(t, "document", data)

	data, err = Encode(models.NewDocument())
	require.NoError(t, err)
	g.Assert(t, "empty", data)
}

func TestLoadMissingWritesDefault(t *testing.T) {
	store := newStore(t)

	doc, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{models.DefaultCategory}, doc.Categories)
	assert.Empty(t, doc.Items)

	_, err = os.Stat(store.Path())
	assert.NoError(t, err, "default document should be written to disk")
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := newStore(t)
	want := sampleDocument()

	require.NoError(t, store.Save(want))
	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Save(sampleDocument()))
	require.NoError(t, store.Save(models.NewDocument()))

	entries, err := os.ReadDir(filepath.Dir(store.Path()))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ".kali_launcher.json", entries[0].Name())
}

func TestLoadCorruptKeepsBackup(t *testing.T) {
	store := newStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(store.Path()), 0o755))
	require.NoError(t, os.WriteFile(store.Path(), []byte(`{"categories": [`), 0o644))

	doc, err := store.Load()
	require.Error(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, []string{models.DefaultCategory}, doc.Categories)

	backup, readErr := os.ReadFile(store.Path() + ".corrupt")
	require.NoError(t, readErr)
	assert.Equal(t, `{"categories": [`, string(backup))
}

func TestLoadLegacyDocumentIsRepaired(t *testing.T) {
	store := newStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(store.Path()), 0o755))
	legacy := `{
  "categories": ["Recon"],
  "items": [
    {"id": "1", "name": "nmap", "command": "nmap", "category": "Recon"},
    {"id": "2", "name": "orphan", "command": "ls", "category": "Deleted"}
  ]
}`
	require.NoError(t, os.WriteFile(store.Path(), []byte(legacy), 0o644))

	doc, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{models.DefaultCategory, "Recon"}, doc.Categories)
	require.Len(t, doc.Items, 2)
	assert.True(t, doc.Items[0].OpenTerminal)
	assert.Equal(t, models.KindCommand, doc.Items[0].Kind)
	assert.Equal(t, models.DefaultCategory, doc.Items[1].Category)
}

func TestExportAndReadFile(t *testing.T) {
	store := newStore(t)
	target := filepath.Join(t.TempDir(), "backup", "launcher.json")

	require.NoError(t, store.Export(sampleDocument(), target))

	doc, err := ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, sampleDocument(), doc)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestDecodeFillsEmptyLists(t *testing.T) {
	doc, err := Decode([]byte(`{}`))
	require.NoError(t, err)
	assert.NotNil(t, doc.Categories)
	assert.NotNil(t, doc.Items)
}
