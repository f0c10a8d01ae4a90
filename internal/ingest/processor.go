// Package ingest turns raw event lines into engine invocations.
package ingest

import (
	"encoding/json"
	"log"
	"time"

	"github.com/pedrodeoliamarante/shorts-blocker-app/internal/model"
)

// EventHandler consumes parsed accessibility events. Implemented by the
// detection engine; handlers are invoked strictly sequentially.
type EventHandler interface {
	HandleEvent(ev *model.AccessibilityEvent, source string) *model.Decision
}

// Processor parses source-tagged event lines and feeds them to the handler.
// Malformed lines are counted and dropped: a garbled event must never stop
// the stream, the system fails open.
type Processor struct {
	handler   EventHandler
	malformed int64
	lastWarn  time.Time
}

// NewProcessor creates an event processor.
func NewProcessor(handler EventHandler) *Processor {
	return &Processor{handler: handler}
}

// ProcessEnvelope parses one event line and routes it. Returns the routing
// decision, or nil when the line was malformed or the event was ignored.
func (p *Processor) ProcessEnvelope(env model.EventEnvelope) *model.Decision {
	if env.Line == "" {
		return nil
	}

	var ev model.AccessibilityEvent
	if err := json.Unmarshal([]byte(env.Line), &ev); err != nil {
		p.dropMalformed(err)
		return nil
	}
	if ev.App == "" || ev.Kind == "" {
		p.dropMalformed(nil)
		return nil
	}

	return p.handler.HandleEvent(&ev, env.Source)
}

// MalformedCount returns the number of dropped lines so far.
func (p *Processor) MalformedCount() int64 {
	return p.malformed
}

// dropMalformed counts a bad line and warns at most once per 10 seconds so
// a broken agent cannot flood the runtime log.
func (p *Processor) dropMalformed(err error) {
	p.malformed++
	now := time.Now()
	if now.Sub(p.lastWarn) < 10*time.Second {
		return
	}
	p.lastWarn = now
	if err != nil {
		log.Printf("ingest: dropped malformed event line (%d total): %v", p.malformed, err)
	} else {
		log.Printf("ingest: dropped event line missing app or kind (%d total)", p.malformed)
	}
}
