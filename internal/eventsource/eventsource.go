// Package eventsource abstracts where accessibility events come from.
package eventsource

import "github.com/pedrodeoliamarante/shorts-blocker-app/internal/model"

// EventSource is a unified interface for all event inputs (TCP, stdin).
type EventSource interface {
	Lines() <-chan model.EventEnvelope // read-only channel of event lines
	Stop()                             // graceful shutdown
	Name() string                      // "tcp", "stdin"
}
