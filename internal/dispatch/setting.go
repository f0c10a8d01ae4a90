package dispatch

import (
	"sync/atomic"

	"github.com/pedrodeoliamarante/shorts-blocker-app/internal/model"
)

// ActionSetting holds the configured block action. The engine reads it on
// every detection; the HTTP API writes it. Reads and writes cross
// goroutines, hence the atomic holder.
type ActionSetting struct {
	value atomic.Value
}

// NewActionSetting creates a setting initialized to kind, falling back to
// the default action when kind is invalid.
func NewActionSetting(kind model.ActionKind) *ActionSetting {
	s := &ActionSetting{}
	if !kind.Valid() {
		kind = model.DefaultAction
	}
	s.value.Store(kind)
	return s
}

// Get returns the configured action.
func (s *ActionSetting) Get() model.ActionKind {
	return s.value.Load().(model.ActionKind)
}

// Set updates the configured action. Invalid kinds are rejected.
func (s *ActionSetting) Set(kind model.ActionKind) bool {
	if !kind.Valid() {
		return false
	}
	s.value.Store(kind)
	return true
}
