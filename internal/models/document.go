package models

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// DefaultCategory always exists and can be neither renamed nor removed.
const DefaultCategory = "工作区"

// ItemKind selects how a launcher item is executed.
type ItemKind string

const (
	KindCommand ItemKind = "command"
	KindURL     ItemKind = "url"
	KindFile    ItemKind = "file"
	KindFolder  ItemKind = "folder"
)

// Kinds lists every supported kind in display order.
var Kinds = []ItemKind{KindCommand, KindURL, KindFile, KindFolder}

func (k ItemKind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// LauncherItem is a named shortcut to a command, URL or path. Category
// references a category by name.
type LauncherItem struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Command      string   `json:"command"`
	Category     string   `json:"category"`
	OpenTerminal bool     `json:"open_terminal"`
	Kind         ItemKind `json:"kind"`
}

// UnmarshalJSON treats a missing open_terminal as true and a missing kind as
// a command, matching documents written by older launcher versions.
func (i *LauncherItem) UnmarshalJSON(data []byte) error {
	type plain LauncherItem
	aux := struct {
		*plain
		OpenTerminal *bool `json:"open_terminal"`
	}{plain: (*plain)(i)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	i.OpenTerminal = aux.OpenTerminal == nil || *aux.OpenTerminal
	if i.Kind == "" {
		i.Kind = KindCommand
	}
	return nil
}

// Document is the whole persisted launcher state.
type Document struct {
	Categories []string       `json:"categories"`
	Items      []LauncherItem `json:"items"`
	Theme      string         `json:"theme,omitempty"`
}

// NewDocument returns the document used when nothing is on disk.
func NewDocument() *Document {
	return &Document{
		Categories: []string{DefaultCategory},
		Items:      []LauncherItem{},
	}
}

func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	clone := &Document{
		Categories: append([]string(nil), d.Categories...),
		Items:      append([]LauncherItem(nil), d.Items...),
		Theme:      d.Theme,
	}
	if clone.Categories == nil {
		clone.Categories = []string{}
	}
	if clone.Items == nil {
		clone.Items = []LauncherItem{}
	}
	return clone
}

// NormalizeReport counts the repairs Normalize made.
type NormalizeReport struct {
	AddedDefault      bool
	DroppedCategories int
	ReassignedItems   int
	AssignedIDs       int
	DroppedItems      int
	DefaultedKinds    int
	RenamedItems      int
}

func (r NormalizeReport) Changed() bool {
	return r.AddedDefault || r.DroppedCategories > 0 || r.ReassignedItems > 0 ||
		r.AssignedIDs > 0 || r.DroppedItems > 0 || r.DefaultedKinds > 0 || r.RenamedItems > 0
}

// Normalize repairs doc in place so that the default category exists,
// category names are unique and non-blank, every item has a unique id and a
// known kind, every item name is unique, and every item references an
// existing category. Items without a name and a command are dropped; later
// items with a taken name get a numeric suffix.
func Normalize(doc *Document) NormalizeReport {
	var report NormalizeReport

	seen := make(map[string]bool, len(doc.Categories)+1)
	categories := make([]string, 0, len(doc.Categories)+1)
	for _, name := range doc.Categories {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			report.DroppedCategories++
			continue
		}
		seen[name] = true
		categories = append(categories, name)
	}
	if !seen[DefaultCategory] {
		categories = append([]string{DefaultCategory}, categories...)
		seen[DefaultCategory] = true
		report.AddedDefault = true
	}
	doc.Categories = categories

	original := make(map[string]bool, len(doc.Items))
	for _, item := range doc.Items {
		original[item.Name] = true
	}
	names := make(map[string]bool, len(doc.Items))

	ids := make(map[string]bool, len(doc.Items))
	items := make([]LauncherItem, 0, len(doc.Items))
	for _, item := range doc.Items {
		if strings.TrimSpace(item.Name) == "" && strings.TrimSpace(item.Command) == "" {
			report.DroppedItems++
			continue
		}
		if names[item.Name] {
			item.Name = uniqueName(item.Name, names, original)
			report.RenamedItems++
		}
		names[item.Name] = true
		if item.ID == "" || ids[item.ID] {
			item.ID = uuid.NewString()
			report.AssignedIDs++
		}
		ids[item.ID] = true

		if !item.Kind.Valid() {
			item.Kind = KindCommand
			report.DefaultedKinds++
		}
		if !seen[item.Category] {
			item.Category = DefaultCategory
			report.ReassignedItems++
		}
		items = append(items, item)
	}
	doc.Items = items

	return report
}

// uniqueName returns name with the lowest " N" suffix (N >= 2) that is
// neither taken nor used by any item of the document, shortening name so the
// result stays within MaxItemNameLength.
func uniqueName(name string, taken, original map[string]bool) string {
	base := []rune(strings.TrimSpace(name))
	for n := 2; ; n++ {
		suffix := " " + strconv.Itoa(n)
		b := base
		if limit := MaxItemNameLength - len(suffix); len(b) > limit {
			b = b[:limit]
		}
		candidate := string(b) + suffix
		if !taken[candidate] && !original[candidate] {
			return candidate
		}
	}
}

// Theme values stored in Document.Theme. An empty theme follows the system.
const (
	ThemeAuto  = "auto"
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// ValidTheme reports whether theme is one of the known theme values or empty.
func ValidTheme(theme string) bool {
	switch theme {
	case "", ThemeAuto, ThemeLight, ThemeDark:
		return true
	}
	return false
}
