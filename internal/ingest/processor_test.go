package ingest

import (
	"testing"

	"github.com/pedrodeoliamarante/shorts-blocker-app/internal/model"
)

type recordingHandler struct {
	events  []*model.AccessibilityEvent
	sources []string
}

func (h *recordingHandler) HandleEvent(ev *model.AccessibilityEvent, source string) *model.Decision {
	h.events = append(h.events, ev)
	h.sources = append(h.sources, source)
	return &model.Decision{App: ev.App, Event: ev.Kind}
}

func TestProcessor_ParsesEventWithTree(t *testing.T) {
	t.Parallel()

	handler := &recordingHandler{}
	p := NewProcessor(handler)

	line := `{"app":"com.instagram.android","event":"window_content_changed",` +
		`"viewType":"android.widget.FrameLayout",` +
		`"tree":{"children":[{"text":"Reel by jane"},{"desc":"Like number is 5"}]}}`

	decision := p.ProcessEnvelope(model.EventEnvelope{Source: "tcp", Line: line})
	if decision == nil {
		t.Fatal("decision = nil, want routed event")
	}
	if len(handler.events) != 1 {
		t.Fatalf("handler received %d events, want 1", len(handler.events))
	}

	ev := handler.events[0]
	if ev.App != "com.instagram.android" || ev.Kind != model.EventWindowContentChanged {
		t.Fatalf("parsed event = %+v", ev)
	}
	if ev.Tree == nil || len(ev.Tree.Children) != 2 {
		t.Fatalf("parsed tree = %+v, want 2 children", ev.Tree)
	}
	if handler.sources[0] != "tcp" {
		t.Fatalf("source = %q, want tcp", handler.sources[0])
	}
}

func TestProcessor_DropsMalformedLines(t *testing.T) {
	t.Parallel()

	handler := &recordingHandler{}
	p := NewProcessor(handler)

	lines := []string{
		"",
		"not json",
		`{"event":"click"}`,
		`{"app":"com.instagram.android"}`,
	}
	for _, line := range lines {
		if d := p.ProcessEnvelope(model.EventEnvelope{Source: "stdin", Line: line}); d != nil {
			t.Errorf("line %q produced decision %+v, want nil", line, d)
		}
	}

	if len(handler.events) != 0 {
		t.Fatalf("handler received %d events, want 0", len(handler.events))
	}
	// Empty lines are skipped silently, the other three count as malformed.
	if got := p.MalformedCount(); got != 3 {
		t.Fatalf("MalformedCount = %d, want 3", got)
	}
}
