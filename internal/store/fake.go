package store

import "github.com/sweeney/garden-mister/internal/logic"

// Fake is an in-memory Store that records writes for test assertions.
type Fake struct {
	// State is what Load returns and Save overwrites.
	State logic.Persisted

	// Saves records every successful Save in order.
	Saves []logic.Persisted

	// SaveCalls counts Save invocations, including failed ones.
	SaveCalls int

	// LoadError, if set, makes Load return the defaults and this error.
	LoadError error

	// SaveError, if set, is returned by Save and nothing is written.
	SaveError error
}

// NewFake creates a Fake holding the default state.
func NewFake() *Fake {
	return &Fake{State: logic.DefaultPersisted()}
}

// Load returns State.
func (f *Fake) Load() (logic.Persisted, error) {
	if f.LoadError != nil {
		return logic.DefaultPersisted(), f.LoadError
	}
	return f.State, nil
}

// Save records p.
func (f *Fake) Save(p logic.Persisted) error {
	f.SaveCalls++
	if f.SaveError != nil {
		return f.SaveError
	}
	f.State = p
	f.Saves = append(f.Saves, p)
	return nil
}
