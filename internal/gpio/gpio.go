// Package gpio provides relay output control with hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

// Relay drives the misting relay.
type Relay interface {
	// SetState switches the relay on or off. It is idempotent.
	SetState(on bool) error

	// Close switches the relay off and releases GPIO resources.
	Close() error
}

// DefaultPinRelay is the BCM pin the relay board is wired to.
const DefaultPinRelay = 13
