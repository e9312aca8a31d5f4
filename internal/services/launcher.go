package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"kali-launcher/internal/history"
	"kali-launcher/internal/launcher"
	"kali-launcher/internal/logger"
	"kali-launcher/internal/models"
	"kali-launcher/internal/storage"
)

// DocumentStore persists the launcher document.
type DocumentStore interface {
	Load() (*models.Document, error)
	Save(doc *models.Document) error
	Export(doc *models.Document, path string) error
}

// HistoryStore records launches. It may be nil when history is disabled.
type HistoryStore interface {
	Record(ctx context.Context, itemID, itemName, command, mode string) (int64, error)
	Finish(ctx context.Context, id int64, out history.Outcome) error
	Recent(ctx context.Context, limit int) ([]history.Entry, error)
	Stats(ctx context.Context, itemID string) (history.Stats, error)
}

// LaunchListener receives the result of every launch started through the
// service. It is called from a background goroutine.
type LaunchListener func(launcher.Result)

// LauncherService applies document mutations, mirrors them to disk and starts
// launcher items.
type LauncherService struct {
	repo    *models.DocumentRepository
	store   DocumentStore
	runner  *launcher.Runner
	history HistoryStore
	logger  logger.Logger

	mu        sync.RWMutex
	listeners []LaunchListener
	closed    bool
}

func NewLauncherService(
	repo *models.DocumentRepository,
	store DocumentStore,
	runner *launcher.Runner,
	hist HistoryStore,
	log logger.Logger,
) *LauncherService {
	return &LauncherService{
		repo:    repo,
		store:   store,
		runner:  runner,
		history: hist,
		logger:  log,
	}
}

// Load reads the document from the store into the repository. The
// repository is always usable afterwards; a non-nil error means the defaults
// are in use.
func (s *LauncherService) Load() error {
	doc, err := s.store.Load()
	s.repo.Replace(doc)
	if err != nil {
		s.logger.Error("LauncherService", err, map[string]interface{}{"stage": "load"})
		return err
	}
	return nil
}

func (s *LauncherService) Repository() *models.DocumentRepository {
	return s.repo
}

func (s *LauncherService) Document() *models.Document {
	return s.repo.Snapshot()
}

func (s *LauncherService) Categories() []string {
	return s.repo.Categories()
}

// Items lists the items of category matching term. An empty category lists
// every item.
func (s *LauncherService) Items(category, term string) []models.LauncherItem {
	return s.repo.Search(category, term)
}

func (s *LauncherService) Item(id string) (models.LauncherItem, error) {
	return s.repo.Item(id)
}

func (s *LauncherService) FindByName(name string) (models.LauncherItem, error) {
	return s.repo.FindByName(name)
}

func (s *LauncherService) AddCategory(name string) error {
	if err := s.repo.AddCategory(name); err != nil {
		return err
	}
	return s.persist("add category")
}

func (s *LauncherService) RenameCategory(oldName, newName string) (int, error) {
	moved, err := s.repo.RenameCategory(oldName, newName)
	if err != nil {
		return 0, err
	}
	return moved, s.persist("rename category")
}

// RemoveCategory deletes a category and the items filed under it.
func (s *LauncherService) RemoveCategory(name string) (int, error) {
	removed, err := s.repo.RemoveCategory(name)
	if err != nil {
		return 0, err
	}
	return removed, s.persist("remove category")
}

func (s *LauncherService) AddItem(draft models.ItemDraft) (models.LauncherItem, error) {
	item, err := s.repo.AddItem(draft)
	if err != nil {
		return models.LauncherItem{}, err
	}
	return item, s.persist("add item")
}

func (s *LauncherService) UpdateItem(id string, draft models.ItemDraft) (models.LauncherItem, error) {
	item, err := s.repo.UpdateItem(id, draft)
	if err != nil {
		return models.LauncherItem{}, err
	}
	return item, s.persist("update item")
}

func (s *LauncherService) MoveItem(id, category string) error {
	if err := s.repo.MoveItem(id, category); err != nil {
		return err
	}
	return s.persist("move item")
}

func (s *LauncherService) DeleteItem(id string) (models.LauncherItem, error) {
	item, err := s.repo.DeleteItem(id)
	if err != nil {
		return models.LauncherItem{}, err
	}
	return item, s.persist("delete item")
}

func (s *LauncherService) Theme() string {
	return s.repo.Theme()
}

func (s *LauncherService) SetTheme(theme string) error {
	if !models.ValidTheme(theme) {
		return models.NewValidationError("theme", theme, "use light, dark or auto")
	}
	s.repo.SetTheme(theme)
	return s.persist("set theme")
}

// Export writes the current document to path.
func (s *LauncherService) Export(path string) error {
	return s.store.Export(s.repo.Snapshot(), path)
}

// Import replaces the document with the one at path and saves it. The
// current document is untouched when path cannot be read.
func (s *LauncherService) Import(path string) (models.NormalizeReport, error) {
	doc, err := storage.ReadFile(path)
	if err != nil {
		return models.NormalizeReport{}, fmt.Errorf("import %s: %w", path, err)
	}
	report := s.repo.Replace(doc)
	s.logger.Info("LauncherService", "document imported", map[string]interface{}{
		"path":       path,
		"categories": len(s.repo.Categories()),
		"repaired":   report.Changed(),
	})
	return report, s.persist("import")
}

func (s *LauncherService) persist(op string) error {
	if err := s.store.Save(s.repo.Snapshot()); err != nil {
		s.logger.Error("LauncherService", err, map[string]interface{}{"operation": op})
		return fmt.Errorf("%s: save document: %w", op, err)
	}
	return nil
}

// OnLaunchFinished registers fn for every future launch result.
func (s *LauncherService) OnLaunchFinished(fn LaunchListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Launch starts item id and returns without waiting for it to finish.
// launcher.ErrNoTerminal is returned unchanged so callers can fall back to
// LaunchEmbedded.
func (s *LauncherService) Launch(id string) (*launcher.Launch, error) {
	item, err := s.repo.Item(id)
	if err != nil {
		return nil, err
	}
	l, err := s.runner.Launch(item)
	if err != nil {
		s.logger.Warning("LauncherService", "launch failed", map[string]interface{}{
			"item":  item.Name,
			"error": err.Error(),
		})
		return nil, err
	}
	s.follow(l)
	return l, nil
}

// LaunchEmbedded runs item id inside a pseudo terminal owned by the caller.
func (s *LauncherService) LaunchEmbedded(id string) (*launcher.Session, error) {
	item, err := s.repo.Item(id)
	if err != nil {
		return nil, err
	}
	session, err := s.runner.LaunchEmbedded(item)
	if err != nil {
		return nil, err
	}
	s.follow(session.Launch)
	return session, nil
}

func (s *LauncherService) follow(l *launcher.Launch) {
	rowID := s.record(l)

	go func() {
		<-l.Done()
		res := l.Result()

		if rowID > 0 {
			s.finish(rowID, res)
		}

		s.mu.RLock()
		listeners := append([]LaunchListener(nil), s.listeners...)
		s.mu.RUnlock()
		for _, fn := range listeners {
			fn(res)
		}
	}()
}

func (s *LauncherService) record(l *launcher.Launch) int64 {
	if s.history == nil || s.isClosed() {
		return 0
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	id, err := s.history.Record(ctx, l.Item.ID, l.Item.Name, l.Item.Command, string(l.Mode))
	if err != nil {
		s.logger.Error("LauncherService", err, map[string]interface{}{"stage": "history record"})
		return 0
	}
	return id
}

func (s *LauncherService) finish(rowID int64, res launcher.Result) {
	if s.isClosed() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := s.history.Finish(ctx, rowID, history.Outcome{
		ExitCode: res.ExitCode,
		Duration: res.Duration,
		Err:      res.Err,
	})
	if err != nil {
		s.logger.Error("LauncherService", err, map[string]interface{}{"stage": "history finish"})
	}
}

// HistoryEnabled reports whether launches are being recorded.
func (s *LauncherService) HistoryEnabled() bool {
	return s.history != nil
}

func (s *LauncherService) RecentLaunches(ctx context.Context, limit int) ([]history.Entry, error) {
	if s.history == nil {
		return []history.Entry{}, nil
	}
	return s.history.Recent(ctx, limit)
}

func (s *LauncherService) LaunchStats(ctx context.Context, id string) (history.Stats, error) {
	if s.history == nil {
		return history.Stats{}, nil
	}
	return s.history.Stats(ctx, id)
}

// Shutdown stops history writes. It runs before the history store closes.
func (s *LauncherService) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func (s *LauncherService) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}
