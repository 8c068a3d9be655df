// Package form manages one editor's working copy of a setup item's fields.
//
// A form session tracks a working copy against the last-saved copy, derives
// an unsaved-changes signal from their structural inequality, and serializes
// saves through an injected collaborator. It is generic over the item shape
// and enforces no domain rules itself; validation belongs to callers.
package form

import (
	"context"
	"errors"
	"reflect"
)

var (
	// ErrSaveInFlight indicates a save is already running for this session.
	// Concurrent save attempts are rejected, never queued.
	ErrSaveInFlight = errors.New("save already in flight")
	// ErrSessionClosed indicates the session was torn down.
	ErrSessionClosed = errors.New("form session is closed")
	// ErrSaveFnRequired indicates no save collaborator was supplied.
	ErrSaveFnRequired = errors.New("save function is required")
)

// SaveFn persists one working copy. Implementations must be idempotent with
// respect to being called again after a failure; the session retries only on
// explicit caller action.
type SaveFn[T any] func(ctx context.Context, data T) error

// Option configures a session at construction.
type Option[T any] func(*Session[T])

// WithEqual injects the structural comparison used for dirty tracking,
// e.g. an order-independent comparison for host id lists. The default is
// reflect.DeepEqual.
func WithEqual[T any](equal func(a, b T) bool) Option[T] {
	return func(s *Session[T]) {
		if equal != nil {
			s.equal = equal
		}
	}
}

// Session tracks one editable working copy with dirty tracking and a single
// in-flight save. Sessions are owned by one editor and are not shared.
type Session[T any] struct {
	working   T
	lastSaved T
	saving    bool
	closed    bool
	equal     func(a, b T) bool
}

// New creates a session with working and last-saved set to the seed.
func New[T any](seed T, opts ...Option[T]) *Session[T] {
	session := &Session[T]{
		working:   seed,
		lastSaved: seed,
		equal: func(a, b T) bool {
			return reflect.DeepEqual(a, b)
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(session)
		}
	}
	return session
}

// Init reseeds both copies, discarding any unsaved edits from a previous
// open/close cycle. Editors call it every time they become visible.
func (s *Session[T]) Init(seed T) {
	if s == nil || s.closed {
		return
	}
	s.working = seed
	s.lastSaved = seed
}

// Update applies one mutation to the working copy only.
func (s *Session[T]) Update(mutate func(*T)) {
	if s == nil || s.closed || mutate == nil {
		return
	}
	mutate(&s.working)
}

// Working returns the current working copy.
func (s *Session[T]) Working() T {
	if s == nil {
		var zero T
		return zero
	}
	return s.working
}

// LastSaved returns the last successfully saved copy.
func (s *Session[T]) LastSaved() T {
	if s == nil {
		var zero T
		return zero
	}
	return s.lastSaved
}

// Dirty reports whether the working copy differs structurally from the
// last-saved copy.
func (s *Session[T]) Dirty() bool {
	if s == nil {
		return false
	}
	return !s.equal(s.working, s.lastSaved)
}

// Saving reports whether a save is currently in flight.
func (s *Session[T]) Saving() bool {
	if s == nil {
		return false
	}
	return s.saving
}

// Save persists the working copy through saveFn.
//
// A clean session saves nothing and returns nil. A second save while one is
// in flight returns ErrSaveInFlight. On success the last-saved copy advances
// to the working copy. On failure the working copy is left untouched and the
// error is returned for the caller to surface; the session never retries. A
// save that resolves after Close does not advance the last-saved copy.
func (s *Session[T]) Save(ctx context.Context, saveFn SaveFn[T]) error {
	if s == nil || s.closed {
		return ErrSessionClosed
	}
	if saveFn == nil {
		return ErrSaveFnRequired
	}
	if !s.Dirty() {
		return nil
	}
	if s.saving {
		return ErrSaveInFlight
	}

	s.saving = true
	data := s.working
	err := saveFn(ctx, data)
	s.saving = false
	if err != nil {
		return err
	}
	if s.closed {
		return nil
	}
	s.lastSaved = data
	return nil
}

// Discard resets the working copy to the last-saved copy.
func (s *Session[T]) Discard() {
	if s == nil || s.closed {
		return
	}
	s.working = s.lastSaved
}

// Close tears the session down. Subsequent mutations are ignored and a save
// resolving afterward leaves the saved state alone.
func (s *Session[T]) Close() {
	if s == nil {
		return
	}
	s.closed = true
}
