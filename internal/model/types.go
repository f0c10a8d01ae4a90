package model

import "time"

// EventKind identifies the accessibility event type reported by the
// on-device agent.
type EventKind string

const (
	EventWindowStateChanged   EventKind = "window_state_changed"
	EventWindowContentChanged EventKind = "window_content_changed"
	EventClicked              EventKind = "click"
)

// IsWindowEvent reports whether the kind represents a screen or content
// transition that should trigger classification.
func (k EventKind) IsWindowEvent() bool {
	return k == EventWindowStateChanged || k == EventWindowContentChanged
}

// SnapshotNode is one node of an accessibility snapshot tree. Only the
// text, content description, and child order survive the wire format; the
// detector never needs bounds or class metadata from inner nodes.
type SnapshotNode struct {
	Text     string          `json:"text,omitempty"`
	Desc     string          `json:"desc,omitempty"`
	Children []*SnapshotNode `json:"children,omitempty"`
}

// AccessibilityEvent is one event delivered by the device agent.
// It is the canonical input of the detection engine.
type AccessibilityEvent struct {
	App      string       `json:"app"`
	Kind     EventKind    `json:"event"`
	ViewType string       `json:"viewType,omitempty"` // class name of the originating view
	ViewID   string       `json:"viewId,omitempty"`   // stable resource identifier, may be empty
	Text     string       `json:"text,omitempty"`
	Desc     string       `json:"desc,omitempty"`
	Tree     *SnapshotNode `json:"tree,omitempty"` // nil for click events and stripped snapshots
}

// ActionKind is the navigation action performed when a viewer is detected.
type ActionKind string

const (
	ActionBack    ActionKind = "back"
	ActionHome    ActionKind = "home"
	ActionRecents ActionKind = "recents"
)

// Valid reports whether the kind is one of the supported actions.
func (a ActionKind) Valid() bool {
	switch a {
	case ActionBack, ActionHome, ActionRecents:
		return true
	}
	return false
}

// Outcome is the result of routing one window event through the engine.
type Outcome string

const (
	// OutcomeAllowed means the screen did not classify as a viewer.
	OutcomeAllowed Outcome = "allowed"
	// OutcomePerformed means a navigation action was dispatched.
	OutcomePerformed Outcome = "performed"
	// OutcomeSuppressed means a viewer was detected but the dispatch
	// cooldown swallowed the action. Normal during event bursts.
	OutcomeSuppressed Outcome = "suppressed"
)

// Decision records one classification outcome together with every
// intermediate predicate value, for offline heuristic tuning.
type Decision struct {
	Timestamp  time.Time         `json:"timestamp"`
	App        string            `json:"app"`
	Event      EventKind         `json:"event"`
	Blocked    bool              `json:"blocked"`
	Outcome    Outcome           `json:"outcome"`
	Action     ActionKind        `json:"action,omitempty"` // set when blocked
	Signals    map[string]bool   `json:"signals"`
	ScreenText string            `json:"screen_text"` // joined snapshot text
	Source     string            `json:"source"`      // "tcp", "stdin"
}

// OutcomeCount is a grouped decision count by outcome.
type OutcomeCount struct {
	Outcome Outcome
	Count   int64
}

// AppCount is a grouped decision count by originating app.
type AppCount struct {
	App     string
	Blocked int64
	Total   int64
}

// MinuteCounts represents blocked/allowed decision counts for one minute.
type MinuteCounts struct {
	Minute  time.Time
	Blocked int64
	Allowed int64
	Total   int64
}
