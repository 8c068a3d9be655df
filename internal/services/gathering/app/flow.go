package app

import (
	"context"
	"fmt"
	"time"

	"github.com/mirefield/gatherspace/internal/services/gathering/domain/form"
	"github.com/mirefield/gatherspace/internal/services/gathering/domain/gate"
	"github.com/mirefield/gatherspace/internal/services/gathering/domain/setup"
)

// SetupItemFlow drives one editing pass over a single setup item.
//
// It composes a form session for the working copy, the item's bound save
// collaborator, and a close-confirmation gate so unsaved edits are never
// dropped silently. A flow is owned by one editor and is not safe for
// concurrent use.
type SetupItemFlow struct {
	item     setup.ItemKey
	form     *form.Session[SetupItemInput]
	gate     *gate.Gate
	saveFn   form.SaveFn[SetupItemInput]
	closeCtx context.Context
}

// NewSetupItemFlow opens an editing flow for one setup item seeded with the
// item's current field values.
func NewSetupItemFlow(item setup.ItemKey, seed SetupItemInput, saver *ItemSaver) (*SetupItemFlow, error) {
	key, ok := setup.NormalizeItemKey(string(item))
	if !ok {
		return nil, fmt.Errorf("unknown setup item %q", item)
	}
	if saver == nil {
		return nil, fmt.Errorf("item saver is required")
	}

	flow := &SetupItemFlow{
		item:     key,
		form:     form.New(seed, form.WithEqual(SetupItemInputEqual)),
		saveFn:   saver.SaveFn(key),
		closeCtx: context.Background(),
	}
	flow.gate = gate.New(gate.Hooks{
		Save:    func() error { return flow.form.Save(flow.closeCtx, flow.saveFn) },
		Discard: func() { flow.form.Discard() },
	})
	return flow, nil
}

// Item returns the setup item this flow edits.
func (f *SetupItemFlow) Item() setup.ItemKey {
	if f == nil {
		return ""
	}
	return f.item
}

// Edit applies one mutation to the working copy.
func (f *SetupItemFlow) Edit(mutate func(*SetupItemInput)) {
	if f == nil {
		return
	}
	f.form.Update(mutate)
}

// Working returns the current working copy.
func (f *SetupItemFlow) Working() SetupItemInput {
	if f == nil {
		return SetupItemInput{}
	}
	return f.form.Working()
}

// Dirty reports whether unsaved edits exist.
func (f *SetupItemFlow) Dirty() bool {
	if f == nil {
		return false
	}
	return f.form.Dirty()
}

// Save persists the working copy through the bound collaborator.
func (f *SetupItemFlow) Save(ctx context.Context) error {
	if f == nil {
		return fmt.Errorf("flow is required")
	}
	return f.form.Save(ctx, f.saveFn)
}

// Discard drops unsaved edits.
func (f *SetupItemFlow) Discard() {
	if f == nil {
		return
	}
	f.form.Discard()
}

// RequestClose runs one close attempt through the gate. The context is held
// for a save triggered by a subsequent ChooseSave.
func (f *SetupItemFlow) RequestClose(ctx context.Context) (gate.State, error) {
	if f == nil {
		return gate.StateIdle, fmt.Errorf("flow is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	f.closeCtx = ctx
	state, err := f.gate.RequestClose(f.form.Dirty(), f.form.Saving())
	if state == gate.StateClosed {
		f.form.Close()
	}
	return state, err
}

// ChooseSave resolves a pending prompt by saving, then closes on success.
func (f *SetupItemFlow) ChooseSave() (gate.State, error) {
	if f == nil {
		return gate.StateIdle, fmt.Errorf("flow is required")
	}
	state, err := f.gate.ChooseSave()
	if state == gate.StateClosed {
		f.form.Close()
	}
	return state, err
}

// ChooseDiscard resolves a pending prompt by dropping edits and closing.
func (f *SetupItemFlow) ChooseDiscard() (gate.State, error) {
	if f == nil {
		return gate.StateIdle, fmt.Errorf("flow is required")
	}
	state, err := f.gate.ChooseDiscard()
	if state == gate.StateClosed {
		f.form.Close()
	}
	return state, err
}

// DismissPrompt resolves a pending prompt by staying in the editor.
func (f *SetupItemFlow) DismissPrompt() (gate.State, error) {
	if f == nil {
		return gate.StateIdle, fmt.Errorf("flow is required")
	}
	return f.gate.DismissPrompt()
}

// GateState returns the gate's current position.
func (f *SetupItemFlow) GateState() gate.State {
	if f == nil {
		return gate.StateIdle
	}
	return f.gate.State()
}

// SetupItemInputEqual compares two item inputs structurally, treating host
// and mentor lists as sets so a reordering alone is not an unsaved change.
func SetupItemInputEqual(a, b SetupItemInput) bool {
	if !form.IDSetEqual(a.HostIDs, b.HostIDs) {
		return false
	}
	if !form.IDSetEqual(a.MentorIDs, b.MentorIDs) {
		return false
	}
	if !stringPtrEqual(a.ExperienceTypeLabel, b.ExperienceTypeLabel) {
		return false
	}
	if !stringPtrEqual(a.Title, b.Title) {
		return false
	}
	if !stringPtrEqual(a.ScribeID, b.ScribeID) {
		return false
	}
	if !stringPtrEqual(a.Address, b.Address) {
		return false
	}
	if !stringPtrEqual(a.MeetingLink, b.MeetingLink) {
		return false
	}
	if !stringPtrEqual(a.Description, b.Description) {
		return false
	}
	if !boolPtrEqual(a.Remote, b.Remote) {
		return false
	}
	if !boolPtrEqual(a.LocationTBD, b.LocationTBD) {
		return false
	}
	if !timePtrEqual(a.StartTime, b.StartTime) {
		return false
	}
	return timePtrEqual(a.EndTime, b.EndTime)
}

func stringPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func boolPtrEqual(a, b *bool) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func timePtrEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
