package gpio

// FakeRelay is a test double that records relay commands.
type FakeRelay struct {
	// On is the current relay output.
	On bool

	// OnCount counts off→on edges.
	OnCount int

	// OffCount counts on→off edges.
	OffCount int

	// Calls records every SetState argument in order.
	Calls []bool

	// Closed tracks if Close was called.
	Closed bool

	// SetError, if set, is returned by SetState. The output still changes,
	// mimicking a driver that reports an error after the write.
	SetError error
}

// NewFakeRelay creates a FakeRelay in the off state.
func NewFakeRelay() *FakeRelay {
	return &FakeRelay{}
}

// SetState records the command.
func (f *FakeRelay) SetState(on bool) error {
	f.Calls = append(f.Calls, on)
	if on && !f.On {
		f.OnCount++
	}
	if !on && f.On {
		f.OffCount++
	}
	f.On = on
	return f.SetError
}

// Close switches the relay off and marks it closed.
func (f *FakeRelay) Close() error {
	if f.On {
		f.OffCount++
	}
	f.On = false
	f.Closed = true
	return nil
}

// Reset clears recorded commands.
func (f *FakeRelay) Reset() {
	f.On = false
	f.OnCount = 0
	f.OffCount = 0
	f.Calls = nil
	f.Closed = false
	f.SetError = nil
}
