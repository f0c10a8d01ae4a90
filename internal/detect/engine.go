package detect

import (
	"log"
	"sort"
	"strings"
	"time"

	"github.com/pedrodeoliamarante/shorts-blocker-app/internal/axtree"
	"github.com/pedrodeoliamarante/shorts-blocker-app/internal/model"
)

// ActionDispatcher triggers the configured navigation action on a positive
// detection. Attempt returns OutcomePerformed or OutcomeSuppressed.
type ActionDispatcher interface {
	Attempt(kind model.ActionKind) model.Outcome
}

// DecisionSink receives every routed window decision for journaling.
type DecisionSink interface {
	Add(decision *model.Decision)
}

// EngineConfig wires the engine's collaborators.
type EngineConfig struct {
	Clock      Clock
	Clicks     *ClickContext
	Dispatcher ActionDispatcher
	// Action reads the currently configured block action. The settings
	// surface owns writes; the engine only reads.
	Action func() model.ActionKind
	Sink   DecisionSink
}

// Engine routes accessibility events to the app-specific classifiers and
// dispatches blocking actions. All state it touches (click context,
// dispatch cooldown) is owned by this single call path; HandleEvent must
// not be invoked concurrently.
type Engine struct {
	clock      Clock
	clicks     *ClickContext
	dispatcher ActionDispatcher
	action     func() model.ActionKind
	sink       DecisionSink
}

// NewEngine creates a detection engine.
func NewEngine(cfg EngineConfig) *Engine {
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	clicks := cfg.Clicks
	if clicks == nil {
		clicks = NewClickContext(clock, 0, 0)
	}
	action := cfg.Action
	if action == nil {
		action = func() model.ActionKind { return model.DefaultAction }
	}
	return &Engine{
		clock:      clock,
		clicks:     clicks,
		dispatcher: cfg.Dispatcher,
		action:     action,
		sink:       cfg.Sink,
	}
}

// HandleEvent routes one inbound event. Click events only update the click
// context; window events are classified and may dispatch an action. Events
// from unknown apps are ignored. The returned decision is nil whenever no
// classification happened.
func (e *Engine) HandleEvent(ev *model.AccessibilityEvent, source string) *model.Decision {
	if ev == nil {
		return nil
	}

	switch ev.App {
	case PackageYouTube, PackageInstagram:
	default:
		return nil
	}

	if ev.Kind == model.EventClicked {
		// The Shorts pipeline carries no click state.
		if ev.App == PackageInstagram {
			e.clicks.Observe(ev)
		}
		return nil
	}
	if !ev.Kind.IsWindowEvent() {
		return nil
	}

	texts := axtree.CollectText(ev.Tree)

	var (
		blocked bool
		signals map[string]bool
	)
	switch ev.App {
	case PackageYouTube:
		s := ClassifyShorts(texts)
		blocked, signals = s.Viewer, s.Map()
	case PackageInstagram:
		s := ClassifyReels(texts, ev.ViewType, e.clicks.RecentReelClick())
		blocked, signals = s.Viewer, s.Map()
	}

	decision := &model.Decision{
		Timestamp:  e.clock(),
		App:        ev.App,
		Event:      ev.Kind,
		Blocked:    blocked,
		Outcome:    model.OutcomeAllowed,
		Signals:    signals,
		ScreenText: strings.Join(texts, " | "),
		Source:     source,
	}

	if blocked {
		kind := e.action()
		if !kind.Valid() {
			kind = model.DefaultAction
		}
		decision.Action = kind
		decision.Outcome = e.dispatcher.Attempt(kind)
	}

	log.Printf("detect: app=%s event=%s blocked=%v outcome=%s signals=%v",
		ev.App, ev.Kind, decision.Blocked, decision.Outcome, formatSignals(signals))

	if e.sink != nil {
		e.sink.Add(decision)
	}
	return decision
}

// formatSignals renders signals in a stable order for the runtime log.
func formatSignals(signals map[string]bool) string {
	if len(signals) == 0 {
		return "{}"
	}
	keys := make([]string, 0, len(signals))
	for k := range signals {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(k)
		b.WriteByte('=')
		if signals[k] {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	b.WriteByte('}')
	return b.String()
}
