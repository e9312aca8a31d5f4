package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"kali-launcher/internal/logger"
	"kali-launcher/internal/models"
)

// FileStore reads and writes the launcher document as a JSON file.
type FileStore struct {
	path   string
	logger logger.Logger
	mu     sync.Mutex
}

func NewFileStore(path string, log logger.Logger) *FileStore {
	return &FileStore{
		path:   path,
		logger: log,
	}
}

func (s *FileStore) Path() string {
	return s.path
}

// Load returns the document on disk, normalized. The returned document is
// always usable: a missing file yields (and writes) the default document,
// and an unreadable or corrupt file yields the default document together
// with the error that caused it. Corrupt files are kept as <path>.corrupt.
func (s *FileStore) Load() (*models.Document, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		doc := models.NewDocument()
		s.logger.Info("Storage", "no document found, writing default", map[string]interface{}{
			"path": s.path,
		})
		if err := s.Save(doc); err != nil {
			return doc, err
		}
		return doc, nil
	}
	if err != nil {
		return models.NewDocument(), fmt.Errorf("read document: %w", err)
	}

	doc, err := Decode(data)
	if err != nil {
		backup := s.path + ".corrupt"
		if copyErr := os.WriteFile(backup, data, 0o600); copyErr != nil {
			s.logger.Error("Storage", copyErr, map[string]interface{}{"backup": backup})
		}
		return models.NewDocument(), fmt.Errorf("parse document %s: %w", s.path, err)
	}

	report := models.Normalize(doc)
	if report.Changed() {
		s.logger.Warning("Storage", "document repaired on load", map[string]interface{}{
			"added_default":      report.AddedDefault,
			"dropped_categories": report.DroppedCategories,
			"reassigned_items":   report.ReassignedItems,
			"assigned_ids":       report.AssignedIDs,
			"dropped_items":      report.DroppedItems,
			"renamed_items":      report.RenamedItems,
		})
	}
	return doc, nil
}

// Save rewrites the whole document. The data goes to a temporary file in
// the same directory which is then renamed over the target.
func (s *FileStore) Save(doc *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := writeAtomic(s.path, doc); err != nil {
		return err
	}
	s.logger.Debug("Storage", "document saved", map[string]interface{}{
		"path":       s.path,
		"categories": len(doc.Categories),
		"items":      len(doc.Items),
	})
	return nil
}

// Export writes doc to an arbitrary path in the document format.
func (s *FileStore) Export(doc *models.Document, path string) error {
	if err := writeAtomic(path, doc); err != nil {
		return fmt.Errorf("export to %s: %w", path, err)
	}
	s.logger.Info("Storage", "document exported", map[string]interface{}{"path": path})
	return nil
}

// ReadFile parses a document from path without touching the store. Unlike
// Load it fails on any error.
func ReadFile(path string) (*models.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}

// Decode parses a document. Missing lists decode as empty.
func Decode(data []byte) (*models.Document, error) {
	var doc models.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Categories == nil {
		doc.Categories = []string{}
	}
	if doc.Items == nil {
		doc.Items = []models.LauncherItem{}
	}
	return &doc, nil
}

// Encode renders doc with two-space indentation and without HTML escaping,
// so shell operators such as && stay readable.
func Encode(doc *models.Document) ([]byte, error) {
	out := doc.Clone()

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeAtomic(path string, doc *models.Document) error {
	data, err := Encode(doc)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
