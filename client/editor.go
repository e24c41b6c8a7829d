package client

import (
	"context"
	"errors"
	"sync"
	"time"
	"unicode/utf8"
)

// successCloseDelay is how long the success state shows before the form
// closes and the list refreshes.
const successCloseDelay = 1000 * time.Millisecond

// EditorState is the record form's save lifecycle state.
type EditorState int

const (
	StateIdle EditorState = iota
	StateSaving
	StateSuccess
	StateError
)

func (s EditorState) String() string {
	switch s {
	case StateSaving:
		return "saving"
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	}
	return "idle"
}

// LimitText applies a max-length bound to a text field write: a proposed
// value that fits replaces the current one, a value past the bound is
// rejected outright and the current value stays. The 51st rune of a 50-char
// field is never silently truncated into a 50-char value the user did not
// type. Lengths are in runes, not bytes.
func LimitText(current, proposed string, maxRunes int) string {
	if utf8.RuneCountInString(proposed) > maxRunes {
		return current
	}
	return proposed
}

// EditorConfig instantiates the record editor for one record type.
type EditorConfig[D any] struct {
	// NewDraft returns an empty draft for the create form.
	NewDraft func() D
	// Validate checks a draft synchronously, returning field -> message.
	// An empty map (or nil) means the draft is valid.
	Validate func(D) map[string]string
	// Save persists the draft.
	Save func(ctx context.Context, draft D) error
	// Refresh re-fetches the list after a successful save.
	Refresh func()
	// After schedules the success auto-close; nil uses time.AfterFunc.
	// Tests inject a manual trigger here.
	After func(d time.Duration, fn func())
}

// Editor runs the record form's draft lifecycle: idle while editing,
// saving during the network call, then success (auto-closes, resets the
// draft, and triggers exactly one list re-fetch) or error (form stays
// open, draft intact, for a manual retry).
type Editor[D any] struct {
	mu  sync.Mutex
	cfg EditorConfig[D]

	open      bool
	state     EditorState
	draft     D
	fieldErrs map[string]string
	saveErr   error
}

// NewEditor creates a closed, idle editor.
func NewEditor[D any](cfg EditorConfig[D]) *Editor[D] {
	if cfg.After == nil {
		cfg.After = func(d time.Duration, fn func()) { time.AfterFunc(d, fn) }
	}
	return &Editor[D]{cfg: cfg, draft: cfg.NewDraft()}
}

// OpenNew opens the form with an empty draft.
func (e *Editor[D]) OpenNew() {
	e.Open(e.cfg.NewDraft())
}

// Open opens the form editing the given record.
func (e *Editor[D]) Open(draft D) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.open = true
	e.state = StateIdle
	e.draft = draft
	e.fieldErrs = nil
	e.saveErr = nil
}

// Close abandons the draft and closes the form without saving.
func (e *Editor[D]) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reset()
}

func (e *Editor[D]) reset() {
	e.open = false
	e.state = StateIdle
	e.draft = e.cfg.NewDraft()
	e.fieldErrs = nil
	e.saveErr = nil
}

// IsOpen reports whether the form is showing.
func (e *Editor[D]) IsOpen() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.open
}

// State returns the current lifecycle state.
func (e *Editor[D]) State() EditorState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Draft returns a copy of the current draft.
func (e *Editor[D]) Draft() D {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draft
}

// UpdateDraft mutates the draft in place. Ignored while a save is in
// flight.
func (e *Editor[D]) UpdateDraft(mutate func(*D)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateSaving {
		return
	}
	mutate(&e.draft)
}

// FieldErrors returns the validation messages from the last Save attempt.
func (e *Editor[D]) FieldErrors() map[string]string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fieldErrs
}

// SaveErr returns the error from the last failed save.
func (e *Editor[D]) SaveErr() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.saveErr
}

// Save validates the draft and persists it. Validation failures set field
// errors and stop before any network call. On success the editor enters
// success, and after the close delay it closes the form, resets the draft,
// and triggers exactly one list re-fetch. On error the form stays open
// with the draft intact.
func (e *Editor[D]) Save(ctx context.Context) {
	e.mu.Lock()
	if !e.open || e.state == StateSaving {
		e.mu.Unlock()
		return
	}
	if errs := e.cfg.Validate(e.draft); len(errs) > 0 {
		e.fieldErrs = errs
		e.mu.Unlock()
		return
	}
	e.fieldErrs = nil
	e.state = StateSaving
	draft := e.draft
	e.mu.Unlock()

	err := e.cfg.Save(ctx, draft)

	e.mu.Lock()
	if err != nil {
		e.state = StateError
		e.saveErr = err
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.IsValidation() {
			e.fieldErrs = apiErr.Fields
		}
		e.mu.Unlock()
		return
	}
	e.state = StateSuccess
	e.saveErr = nil
	after := e.cfg.After
	e.mu.Unlock()

	// Scheduled outside the lock: an After that runs its callback inline
	// would otherwise re-enter the mutex.
	after(successCloseDelay, func() {
		e.mu.Lock()
		if e.state != StateSuccess {
			e.mu.Unlock()
			return
		}
		e.reset()
		refresh := e.cfg.Refresh
		e.mu.Unlock()
		if refresh != nil {
			refresh()
		}
	})
}
