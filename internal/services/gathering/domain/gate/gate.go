// Package gate decides what happens when a user tries to close an editor
// that may hold unsaved changes.
package gate

import "errors"

// State identifies the gate's position in its close flow.
type State string

const (
	// StateIdle means no close attempt is pending.
	StateIdle State = "idle"
	// StatePrompting means a close attempt found unsaved changes and the user
	// is being asked to save, discard, or stay.
	StatePrompting State = "prompting"
	// StateClosed means the editor may be dismissed.
	StateClosed State = "closed"
)

var (
	// ErrNotPrompting indicates a choice arrived while no prompt was showing.
	ErrNotPrompting = errors.New("gate is not prompting")
	// ErrAlreadyClosed indicates a transition was requested after close.
	ErrAlreadyClosed = errors.New("gate is already closed")
)

// Hooks carries the session actions a choice triggers. Save runs for the
// "save" choice, Discard for the "discard" choice; either may be nil when the
// owning editor has nothing to do.
type Hooks struct {
	Save    func() error
	Discard func()
}

// Gate is the close-confirmation state machine for one editor. It is owned
// by a single editor and is not safe for concurrent use.
type Gate struct {
	state State
	hooks Hooks
}

// New creates an idle gate with the given choice hooks.
func New(hooks Hooks) *Gate {
	return &Gate{state: StateIdle, hooks: hooks}
}

// State returns the gate's current state.
func (g *Gate) State() State {
	if g == nil {
		return StateIdle
	}
	return g.state
}

// RequestClose evaluates one close attempt.
//
// A save in flight blocks the attempt entirely: the gate stays idle and the
// caller re-requests once the save resolves. A clean session closes with no
// prompt. A dirty session moves to prompting.
func (g *Gate) RequestClose(dirty, saving bool) (State, error) {
	if g == nil {
		return StateIdle, errors.New("gate is required")
	}
	if g.state == StateClosed {
		return g.state, ErrAlreadyClosed
	}
	if saving {
		g.state = StateIdle
		return g.state, nil
	}
	if !dirty {
		g.state = StateClosed
		return g.state, nil
	}
	g.state = StatePrompting
	return g.state, nil
}

// ChooseSave resolves the prompt by saving. The gate closes only when the
// save hook succeeds; on failure it returns to idle so the editor stays open
// for a retry.
func (g *Gate) ChooseSave() (State, error) {
	if g == nil {
		return StateIdle, errors.New("gate is required")
	}
	if g.state != StatePrompting {
		return g.state, ErrNotPrompting
	}
	if g.hooks.Save != nil {
		if err := g.hooks.Save(); err != nil {
			g.state = StateIdle
			return g.state, err
		}
	}
	g.state = StateClosed
	return g.state, nil
}

// ChooseDiscard resolves the prompt by dropping unsaved edits and closing.
func (g *Gate) ChooseDiscard() (State, error) {
	if g == nil {
		return StateIdle, errors.New("gate is required")
	}
	if g.state != StatePrompting {
		return g.state, ErrNotPrompting
	}
	if g.hooks.Discard != nil {
		g.hooks.Discard()
	}
	g.state = StateClosed
	return g.state, nil
}

// DismissPrompt resolves the prompt by staying in the editor.
func (g *Gate) DismissPrompt() (State, error) {
	if g == nil {
		return StateIdle, errors.New("gate is required")
	}
	if g.state != StatePrompting {
		return g.state, ErrNotPrompting
	}
	g.state = StateIdle
	return g.state, nil
}
