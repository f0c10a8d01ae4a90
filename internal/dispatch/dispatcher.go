// Package dispatch performs the navigation action that backs a detection.
package dispatch

import (
	"log"
	"time"

	"github.com/pedrodeoliamarante/shorts-blocker-app/internal/model"
)

// Clock returns the current time; injected for cooldown tests.
type Clock func() time.Time

// Dispatcher gates navigation actions behind a cooldown so a burst of
// content-change events for one logical screen triggers a single action.
// It is mutated only from the engine's event path and needs no locking.
type Dispatcher struct {
	clock      Clock
	nav        Navigator
	cooldown   time.Duration
	lastAction time.Time
}

// NewDispatcher creates a dispatcher. A non-positive cooldown falls back to
// the shared default.
func NewDispatcher(clock Clock, nav Navigator, cooldown time.Duration) *Dispatcher {
	if clock == nil {
		clock = time.Now
	}
	if cooldown <= 0 {
		cooldown = model.DefaultCooldown
	}
	return &Dispatcher{
		clock:    clock,
		nav:      nav,
		cooldown: cooldown,
	}
}

// Attempt performs the action unless the cooldown since the previous
// performed action has not elapsed yet. Suppression is a normal outcome,
// not an error. Navigator failures are logged and do not re-open the
// window: the timestamp is taken before the action so a flapping adb
// connection cannot turn into a navigation loop.
func (d *Dispatcher) Attempt(kind model.ActionKind) model.Outcome {
	now := d.clock()
	if !d.lastAction.IsZero() && now.Sub(d.lastAction) < d.cooldown {
		log.Printf("dispatch: suppressed %s, cooldown active (%s remaining)",
			kind, d.cooldown-now.Sub(d.lastAction))
		return model.OutcomeSuppressed
	}

	d.lastAction = now
	if err := d.nav.Navigate(kind); err != nil {
		log.Printf("dispatch: %s action failed: %v", kind, err)
	} else {
		log.Printf("dispatch: performed %s", kind)
	}
	return model.OutcomePerformed
}
