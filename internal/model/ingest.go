package model

// EventEnvelope carries one raw event line with source metadata.
// It is the transport contract between input sources and the engine loop.
type EventEnvelope struct {
	Source string
	Line   string
}
