package item

import (
	"fmt"
	"strconv"
	"strings"

	apperrors "github.com/louisbranch/ffa-arena/internal/platform/errors"
)

// NoSlot marks a ValidationError that is not tied to a slot index.
const NoSlot = -1

// ErrInvalidEntry is matched by every ValidationError through errors.Is.
var ErrInvalidEntry = apperrors.New(apperrors.CodeKitInvalidEntry, "invalid kit entry")

// ValidationError reports a malformed or unresolvable kit entry.
type ValidationError struct {
	Category string
	Slot     int
	Field    string
	Reason   string
}

func invalidField(field, reason string) *ValidationError {
	return &ValidationError{Slot: NoSlot, Field: field, Reason: reason}
}

// Path joins the category, slot and field into a dotted location.
func (e *ValidationError) Path() string {
	parts := make([]string, 0, 3)
	if e.Category != "" {
		parts = append(parts, e.Category)
	}
	if e.Slot != NoSlot {
		parts = append(parts, strconv.Itoa(e.Slot))
	}
	if e.Field != "" {
		parts = append(parts, e.Field)
	}
	return strings.Join(parts, ".")
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("value of %q %s", e.Path(), e.Reason)
}

// Unwrap exposes ErrInvalidEntry so callers can match on the domain code.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidEntry
}

// At returns a copy of the error located at the given category and slot.
func (e *ValidationError) At(category string, slot int) *ValidationError {
	out := *e
	out.Category = category
	out.Slot = slot
	return &out
}
