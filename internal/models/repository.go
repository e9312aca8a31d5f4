package models

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// DocumentRepository guards the in-memory launcher document. Every method
// either reads a copy or applies one complete mutation; persisting the
// result is the caller's job.
type DocumentRepository struct {
	mu    sync.RWMutex
	doc   *Document
	newID func() string
}

// NewDocumentRepository takes ownership of doc. A nil doc starts empty.
func NewDocumentRepository(doc *Document) *DocumentRepository {
	if doc == nil {
		doc = NewDocument()
	}
	return &DocumentRepository{
		doc:   doc,
		newID: uuid.NewString,
	}
}

// Snapshot returns a deep copy of the document.
func (r *DocumentRepository) Snapshot() *Document {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.doc.Clone()
}

// Replace swaps in a normalized copy of doc, as done by import.
func (r *DocumentRepository) Replace(doc *Document) NormalizeReport {
	next := doc.Clone()
	report := Normalize(next)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.doc = next
	return report
}

func (r *DocumentRepository) Categories() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.doc.Categories...)
}

func (r *DocumentRepository) HasCategory(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.categoryIndex(name) >= 0
}

// AddCategory appends a new category.
func (r *DocumentRepository) AddCategory(name string) error {
	name = strings.TrimSpace(name)
	if err := ValidateCategoryName(name); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.categoryIndex(name) >= 0 {
		return NewValidationError("category", name, "already exists")
	}
	r.doc.Categories = append(r.doc.Categories, name)
	return nil
}

// RenameCategory renames oldName in place and moves its items along.
// It returns the number of items that were reassigned.
func (r *DocumentRepository) RenameCategory(oldName, newName string) (int, error) {
	newName = strings.TrimSpace(newName)
	if oldName == DefaultCategory {
		return 0, ErrDefaultCategory
	}
	if err := ValidateCategoryName(newName); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.categoryIndex(oldName)
	if idx < 0 {
		return 0, fmt.Errorf("category %q: %w", oldName, ErrNotFound)
	}
	if newName == oldName {
		return 0, nil
	}
	if r.categoryIndex(newName) >= 0 {
		return 0, NewValidationError("category", newName, "already exists")
	}

	r.doc.Categories[idx] = newName
	moved := 0
	for i := range r.doc.Items {
		if r.doc.Items[i].Category == oldName {
			r.doc.Items[i].Category = newName
			moved++
		}
	}
	return moved, nil
}

// RemoveCategory deletes name together with every item filed under it and
// returns the number of deleted items.
func (r *DocumentRepository) RemoveCategory(name string) (int, error) {
	if name == DefaultCategory {
		return 0, ErrDefaultCategory
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.categoryIndex(name)
	if idx < 0 {
		return 0, fmt.Errorf("category %q: %w", name, ErrNotFound)
	}
	r.doc.Categories = append(r.doc.Categories[:idx], r.doc.Categories[idx+1:]...)

	kept := r.doc.Items[:0]
	removed := 0
	for _, item := range r.doc.Items {
		if item.Category == name {
			removed++
			continue
		}
		kept = append(kept, item)
	}
	r.doc.Items = kept
	return removed, nil
}

func (r *DocumentRepository) Items() []LauncherItem {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]LauncherItem(nil), r.doc.Items...)
}

// ItemsIn returns the items of category in document order.
func (r *DocumentRepository) ItemsIn(category string) []LauncherItem {
	return r.Search(category, "")
}

// Search filters items by category (empty means all) and by a
// case-insensitive substring of the name or command.
func (r *DocumentRepository) Search(category, term string) []LauncherItem {
	term = strings.ToLower(strings.TrimSpace(term))

	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]LauncherItem, 0)
	for _, item := range r.doc.Items {
		if category != "" && item.Category != category {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(item.Name), term) &&
			!strings.Contains(strings.ToLower(item.Command), term) {
			continue
		}
		result = append(result, item)
	}
	return result
}

func (r *DocumentRepository) Item(id string) (LauncherItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx := r.itemIndex(id)
	if idx < 0 {
		return LauncherItem{}, fmt.Errorf("item %q: %w", id, ErrNotFound)
	}
	return r.doc.Items[idx], nil
}

func (r *DocumentRepository) FindByName(name string) (LauncherItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.doc.Items {
		if item.Name == name {
			return item, nil
		}
	}
	return LauncherItem{}, fmt.Errorf("item named %q: %w", name, ErrNotFound)
}

// AddItem validates draft and stores it under a fresh id. An empty category
// files the item under the default category.
func (r *DocumentRepository) AddItem(draft ItemDraft) (LauncherItem, error) {
	draft = draft.Clean()
	if err := validateDraft(draft); err != nil {
		return LauncherItem{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.doc.Categories) == 0 {
		return LauncherItem{}, NewValidationError("category", "", "create a category first")
	}
	category, err := r.resolveCategory(draft.Category)
	if err != nil {
		return LauncherItem{}, err
	}
	if r.nameTaken(draft.Name, "") {
		return LauncherItem{}, NewValidationError("name", draft.Name, "already exists")
	}

	item := LauncherItem{
		ID:           r.newID(),
		Name:         draft.Name,
		Command:      draft.Command,
		Category:     category,
		OpenTerminal: draft.OpenTerminal,
		Kind:         draft.Kind,
	}
	r.doc.Items = append(r.doc.Items, item)
	return item, nil
}

// UpdateItem replaces the editable fields of item id.
func (r *DocumentRepository) UpdateItem(id string, draft ItemDraft) (LauncherItem, error) {
	draft = draft.Clean()
	if err := validateDraft(draft); err != nil {
		return LauncherItem{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.itemIndex(id)
	if idx < 0 {
		return LauncherItem{}, fmt.Errorf("item %q: %w", id, ErrNotFound)
	}
	category, err := r.resolveCategory(draft.Category)
	if err != nil {
		return LauncherItem{}, err
	}
	if r.nameTaken(draft.Name, id) {
		return LauncherItem{}, NewValidationError("name", draft.Name, "already exists")
	}

	item := &r.doc.Items[idx]
	item.Name = draft.Name
	item.Command = draft.Command
	item.Category = category
	item.OpenTerminal = draft.OpenTerminal
	item.Kind = draft.Kind
	return *item, nil
}

func (r *DocumentRepository) MoveItem(id, category string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.itemIndex(id)
	if idx < 0 {
		return fmt.Errorf("item %q: %w", id, ErrNotFound)
	}
	if r.categoryIndex(category) < 0 {
		return NewValidationError("category", category, "does not exist")
	}
	r.doc.Items[idx].Category = category
	return nil
}

func (r *DocumentRepository) DeleteItem(id string) (LauncherItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.itemIndex(id)
	if idx < 0 {
		return LauncherItem{}, fmt.Errorf("item %q: %w", id, ErrNotFound)
	}
	item := r.doc.Items[idx]
	r.doc.Items = append(r.doc.Items[:idx], r.doc.Items[idx+1:]...)
	return item, nil
}

func (r *DocumentRepository) Theme() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.doc.Theme
}

func (r *DocumentRepository) SetTheme(theme string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.doc.Theme = theme
}

func (r *DocumentRepository) resolveCategory(name string) (string, error) {
	if name == "" {
		name = DefaultCategory
	}
	if r.categoryIndex(name) < 0 {
		return "", NewValidationError("category", name, "does not exist")
	}
	return name, nil
}

func (r *DocumentRepository) nameTaken(name, exceptID string) bool {
	for _, item := range r.doc.Items {
		if item.Name == name && item.ID != exceptID {
			return true
		}
	}
	return false
}

func (r *DocumentRepository) categoryIndex(name string) int {
	for i, c := range r.doc.Categories {
		if c == name {
			return i
		}
	}
	return -1
}

func (r *DocumentRepository) itemIndex(id string) int {
	for i, item := range r.doc.Items {
		if item.ID == id {
			return i
		}
	}
	return -1
}
