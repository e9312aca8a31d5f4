package models

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrDefaultCategory = errors.New("the default category cannot be renamed or removed")
)

const (
	MaxItemNameLength     = 30
	MaxCategoryNameLength = 20
)

var (
	itemNamePattern     = regexp.MustCompile(`^[a-zA-Z0-9_\- ]{1,30}$`)
	// Category names also allow any letter so the default category validates.
	categoryNamePattern = regexp.MustCompile(`^[\p{L}\p{N}_\- ]{1,20}$`)
)

// ValidationError describes invalid user input for a single field.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

func (ve *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s '%v': %s", ve.Field, ve.Value, ve.Message)
}

// IsValidationError reports whether err carries a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ItemDraft is the editable part of a LauncherItem.
type ItemDraft struct {
	Name         string
	Command      string
	Category     string
	OpenTerminal bool
	Kind         ItemKind
}

// DraftFrom copies the editable fields out of item.
func DraftFrom(item LauncherItem) ItemDraft {
	return ItemDraft{
		Name:         item.Name,
		Command:      item.Command,
		Category:     item.Category,
		OpenTerminal: item.OpenTerminal,
		Kind:         item.Kind,
	}
}

// Clean trims surrounding whitespace and fills the default kind.
func (d ItemDraft) Clean() ItemDraft {
	d.Name = strings.TrimSpace(d.Name)
	d.Command = strings.TrimSpace(d.Command)
	d.Category = strings.TrimSpace(d.Category)
	if d.Kind == "" {
		d.Kind = KindCommand
	}
	return d
}

func ValidateItemName(name string) error {
	if strings.TrimSpace(name) == "" {
		return NewValidationError("name", name, "must not be empty")
	}
	if !itemNamePattern.MatchString(name) {
		return NewValidationError("name", name,
			fmt.Sprintf("use letters, digits, space, '-' or '_' (at most %d)", MaxItemNameLength))
	}
	return nil
}

func ValidateCategoryName(name string) error {
	if strings.TrimSpace(name) == "" {
		return NewValidationError("category", name, "must not be empty")
	}
	if !categoryNamePattern.MatchString(name) {
		return NewValidationError("category", name,
			fmt.Sprintf("use letters, digits, space, '-' or '_' (at most %d)", MaxCategoryNameLength))
	}
	return nil
}

func validateDraft(d ItemDraft) error {
	if err := ValidateItemName(d.Name); err != nil {
		return err
	}
	if d.Command == "" {
		return NewValidationError("command", d.Command, "must not be empty")
	}
	if !d.Kind.Valid() {
		return NewValidationError("kind", d.Kind, "unknown item kind")
	}
	return nil
}
