package transfer

import (
	"fmt"

	"github.com/google/uuid"
)

// Flow is the state of one user-initiated send. It is not safe for
// concurrent use; the UI event loop owns it.
type Flow struct {
	ID     string
	State  State
	Query  string
	Items  []NFTReference
	Target *Target
	Result *Result
}

// NewFlow starts a flow for the selected items
func NewFlow(items []NFTReference) *Flow {
	return &Flow{
		ID:    uuid.NewString(),
		State: CollectingRecipient,
		Items: items,
	}
}

func (f *Flow) expect(want State, intent string) error {
	if f.State != want {
		return fmt.Errorf("%w: %s while %s", ErrInvalidTransition, intent, f.State)
	}
	return nil
}

// SetQuery records the recipient text as typed
func (f *Flow) SetQuery(q string) error {
	if err := f.expect(CollectingRecipient, "edit recipient"); err != nil {
		return err
	}
	f.Query = q
	return nil
}

// ChooseTarget moves to confirmation once a valid recipient is picked
func (f *Flow) ChooseTarget(t Target) error {
	if err := f.expect(CollectingRecipient, "choose recipient"); err != nil {
		return err
	}
	if err := t.Validate(); err != nil {
		return err
	}
	f.Target = &t
	f.State = ConfirmingSend
	return nil
}

// Back returns from confirmation to recipient entry, keeping the query
func (f *Flow) Back() error {
	if err := f.expect(ConfirmingSend, "go back"); err != nil {
		return err
	}
	f.Target = nil
	f.State = CollectingRecipient
	return nil
}

// Confirm starts sending and returns the target to submit to
func (f *Flow) Confirm() (Target, error) {
	if err := f.expect(ConfirmingSend, "confirm"); err != nil {
		return Target{}, err
	}
	if len(f.Items) == 0 {
		return Target{}, fmt.Errorf("%w: nothing selected to send", ErrInvalidTransition)
	}
	f.State = Sending
	return *f.Target, nil
}

// Finish applies the submitter's result
func (f *Flow) Finish(r Result) error {
	if err := f.expect(Sending, "finish"); err != nil {
		return err
	}
	f.Result = &r
	if r.Err != nil || r.State == Failed {
		f.State = Failed
	} else {
		f.State = Complete
	}
	return nil
}

// Close resets the flow to an empty recipient step under a new id, so a
// result still in flight for the old id can be recognised and dropped.
func (f *Flow) Close() {
	f.ID = uuid.NewString()
	f.State = CollectingRecipient
	f.Query = ""
	f.Target = nil
	f.Result = nil
}
