// Package store persists the scheduler's history across reboots.
package store

import (
	"errors"

	"github.com/sweeney/garden-mister/internal/logic"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("store: closed")

// Store loads and saves the persisted scheduler state.
type Store interface {
	// Load returns the saved state. Keys never written take their defaults
	// (0, false, true). On error the returned value is the default state.
	Load() (logic.Persisted, error)

	// Save writes all three fields together.
	Save(p logic.Persisted) error
}

// Keys under which each field is stored.
const (
	KeyLastMistEpoch = "lastMist"
	KeyHasEverMisted = "hasEverMist"
	KeyEnabled       = "enabled"
)
