// Package surface abstracts the browser-control capability set the form
// automation depends on. Implementations exist for a live Chrome session
// (surface/chrome) and for a static in-memory HTML document
// (surface/statichtml). Everything above this package speaks XPath and the
// fault taxonomy below; nothing above it imports an automation library.
package surface

import (
	"context"
	"errors"
	"time"
)

// Fault taxonomy. Every error returned by an implementation either wraps one
// of these sentinels or is a context error.
var (
	// ErrNotFound means a probe looked and found nothing. Always benign.
	ErrNotFound = errors.New("surface: target not found")
	// ErrStale means the page mutated underneath a held element handle.
	ErrStale = errors.New("surface: target stale")
	// ErrNotInteractable means the element exists but cannot currently be
	// acted on (hidden, disabled, obscured).
	ErrNotInteractable = errors.New("surface: target not interactable")
	// ErrTimeout means a bounded wait exceeded its budget. Callers treat the
	// target as absent.
	ErrTimeout = errors.New("surface: operation timed out")
	// ErrSurfaceMissing means the primary form container itself could not be
	// located. Aborts the current fill pass, never the whole run.
	ErrSurfaceMissing = errors.New("surface: form surface missing")
)

// Benign reports whether err is a routine per-field fault that the caller
// should swallow, log, and skip past.
func Benign(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrStale) ||
		errors.Is(err, ErrNotInteractable) ||
		errors.Is(err, ErrTimeout)
}

// Element is a handle to one node on the live page. Handles are only valid
// for the page state they were enumerated from; implementations return
// ErrStale once the underlying node is gone.
type Element interface {
	// Visible reports whether the element is rendered. Read-only probe.
	Visible(ctx context.Context) bool
	// Enabled reports whether the element accepts interaction.
	Enabled(ctx context.Context) bool
	// Selected reports the checked/selected state of radios, checkboxes and
	// options.
	Selected(ctx context.Context) bool
	// Attr returns the value of the named attribute, or "" when the
	// attribute is absent. Absence is not an error.
	Attr(ctx context.Context, name string) (string, error)
	// Text returns the trimmed visible text content.
	Text(ctx context.Context) (string, error)

	// FindOne resolves an XPath relative to this element. Returns
	// ErrNotFound when nothing matches.
	FindOne(ctx context.Context, xpath string) (Element, error)
	// FindAll resolves an XPath relative to this element. An empty result is
	// not an error.
	FindAll(ctx context.Context, xpath string) ([]Element, error)

	// Clear empties a text control.
	Clear(ctx context.Context) error
	// Type writes the value into a text control.
	Type(ctx context.Context, value string) error
	// Click activates the element.
	Click(ctx context.Context) error
	// SelectOption picks the option of a select control whose visible text
	// matches exactly.
	SelectOption(ctx context.Context, text string) error
	// SetFile submits a local file path to a file input.
	SetFile(ctx context.Context, path string) error
}

// Surface is the document-level view handed to the form core.
type Surface interface {
	// FindOne resolves an XPath against the document. Returns ErrNotFound
	// when nothing matches.
	FindOne(ctx context.Context, xpath string) (Element, error)
	// FindAll resolves an XPath against the document.
	FindAll(ctx context.Context, xpath string) ([]Element, error)
	// WaitFor blocks until the XPath matches or the timeout elapses, in
	// which case it returns ErrTimeout.
	WaitFor(ctx context.Context, xpath string, timeout time.Duration) (Element, error)
}

// Navigator is the wider contract the session orchestration needs on top of
// Surface. The form core itself never navigates.
type Navigator interface {
	Surface
	Navigate(ctx context.Context, url string) error
}
