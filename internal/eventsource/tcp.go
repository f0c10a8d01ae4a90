package eventsource

import (
	"github.com/pedrodeoliamarante/shorts-blocker-app/internal/model"
	"github.com/pedrodeoliamarante/shorts-blocker-app/internal/tcpserver"
)

// TCPSource wraps a tcpserver.Server as an EventSource.
type TCPSource struct {
	server *tcpserver.Server
}

// NewTCPSource creates a TCPSource from an already-started TCP server.
func NewTCPSource(server *tcpserver.Server) *TCPSource {
	return &TCPSource{server: server}
}

func (t *TCPSource) Lines() <-chan model.EventEnvelope { return t.server.Lines() }
func (t *TCPSource) Stop()                             { _ = t.server.Stop() }
func (t *TCPSource) Name() string                      { return "tcp" }
