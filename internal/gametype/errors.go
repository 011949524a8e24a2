package gametype

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrNotFound is returned (wrapped) when a lookup by id, shortId or url matches nothing.
	ErrNotFound = errors.New("game type not found")

	// ErrConflict is the sentinel wrapped by every *ConflictError.
	ErrConflict = errors.New("game type conflict")
)

// Violation names one field that broke one constraint.
type Violation struct {
	Field      string `json:"field"`
	Constraint string `json:"constraint"`
	Message    string `json:"message"`
}

// ValidationError reports every violated field and cross-field invariant of a candidate record.
// A store operation that returns it has written nothing.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.Message)
	}
	return "invalid game type: " + strings.Join(msgs, "; ")
}

// Fields returns the offending field names in report order.
func (e *ValidationError) Fields() []string {
	out := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		out = append(out, v.Field)
	}
	return out
}

// ConflictError is a uniqueness violation on shortId or url, or an update based on a revision
// that is no longer current (Field "revision").
type ConflictError struct {
	Field string
	Value string
}

func (e *ConflictError) Error() string {
	if e.Field == "revision" {
		return fmt.Sprintf("game type changed since revision %s was read", e.Value)
	}
	return fmt.Sprintf("game type with %s %q already exists", e.Field, e.Value)
}

// StaleRevision is returned by repositories when an update's expected revision is not the stored one.
func StaleRevision(expected int64) error {
	return &ConflictError{Field: "revision", Value: strconv.FormatInt(expected, 10)}
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}

func notFound(key, value string) error {
	return fmt.Errorf("%w: %s %q", ErrNotFound, key, value)
}

// NotFoundByID is used by repositories so every backend reports misses the same way.
func NotFoundByID(id string) error {
	return notFound("id", id)
}

func NotFoundByShortID(shortID string) error {
	return notFound("shortId", shortID)
}

func NotFoundByURL(url string) error {
	return notFound("url", url)
}
