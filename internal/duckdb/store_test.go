package duckdb

import (
	"strings"
	"testing"
	"time"

	"github.com/pedrodeoliamarante/shorts-blocker-app/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore("")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testDecision(ts time.Time, app string, blocked bool) *model.Decision {
	outcome := model.OutcomeAllowed
	var action model.ActionKind
	if blocked {
		outcome = model.OutcomePerformed
		action = model.ActionBack
	}
	return &model.Decision{
		Timestamp:  ts,
		App:        app,
		Event:      model.EventWindowStateChanged,
		Blocked:    blocked,
		Outcome:    outcome,
		Action:     action,
		Signals:    map[string]bool{"channel_nav": blocked, "subscribe": blocked},
		ScreenText: "Go to channel | Subscribe",
		Source:     "tcp",
	}
}

func TestInsertAndQueryDecisions(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	now := time.Now().UTC().Truncate(time.Millisecond)

	batch := []*model.Decision{
		testDecision(now.Add(-2*time.Minute), "com.google.android.youtube", true),
		testDecision(now.Add(-1*time.Minute), "com.google.android.youtube", false),
		testDecision(now, "com.instagram.android", true),
	}
	if err := store.InsertDecisionBatch(batch); err != nil {
		t.Fatalf("InsertDecisionBatch: %v", err)
	}

	total, err := store.TotalDecisionCount(model.QueryOpts{})
	if err != nil {
		t.Fatalf("TotalDecisionCount: %v", err)
	}
	if total != 3 {
		t.Fatalf("total = %d, want 3", total)
	}

	ytTotal, err := store.TotalDecisionCount(model.QueryOpts{App: "com.google.android.youtube"})
	if err != nil {
		t.Fatalf("TotalDecisionCount(app): %v", err)
	}
	if ytTotal != 2 {
		t.Fatalf("youtube total = %d, want 2", ytTotal)
	}
}

func TestRecentDecisions_ChronologicalAndSignals(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	now := time.Now().UTC().Truncate(time.Millisecond)

	batch := []*model.Decision{
		testDecision(now.Add(-3*time.Minute), "com.instagram.android", false),
		testDecision(now.Add(-2*time.Minute), "com.instagram.android", true),
		testDecision(now.Add(-1*time.Minute), "com.instagram.android", true),
	}
	if err := store.InsertDecisionBatch(batch); err != nil {
		t.Fatalf("InsertDecisionBatch: %v", err)
	}

	recent, err := store.RecentDecisions(2, model.QueryOpts{})
	if err != nil {
		t.Fatalf("RecentDecisions: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("len = %d, want 2", len(recent))
	}
	if !recent[0].Timestamp.Before(recent[1].Timestamp) {
		t.Fatalf("results not in chronological order: %v >= %v", recent[0].Timestamp, recent[1].Timestamp)
	}
	if !recent[1].Blocked || recent[1].Outcome != model.OutcomePerformed {
		t.Fatalf("latest decision = %+v, want blocked/performed", recent[1])
	}
	if !recent[1].Signals["channel_nav"] {
		t.Fatalf("signals did not round-trip: %v", recent[1].Signals)
	}
	if recent[1].Action != model.ActionBack {
		t.Fatalf("action = %q, want back", recent[1].Action)
	}
}

func TestCountsByOutcomeAndApp(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	now := time.Now().UTC()

	batch := []*model.Decision{
		testDecision(now, "com.google.android.youtube", true),
		testDecision(now, "com.google.android.youtube", false),
		testDecision(now, "com.google.android.youtube", false),
		testDecision(now, "com.instagram.android", true),
	}
	if err := store.InsertDecisionBatch(batch); err != nil {
		t.Fatalf("InsertDecisionBatch: %v", err)
	}

	outcomes, err := store.CountsByOutcome(model.QueryOpts{})
	if err != nil {
		t.Fatalf("CountsByOutcome: %v", err)
	}
	byOutcome := make(map[model.Outcome]int64)
	for _, oc := range outcomes {
		byOutcome[oc.Outcome] = oc.Count
	}
	if byOutcome[model.OutcomeAllowed] != 2 || byOutcome[model.OutcomePerformed] != 2 {
		t.Fatalf("outcome counts = %v, want allowed=2 performed=2", byOutcome)
	}

	apps, err := store.CountsByApp()
	if err != nil {
		t.Fatalf("CountsByApp: %v", err)
	}
	if len(apps) != 2 {
		t.Fatalf("len(apps) = %d, want 2", len(apps))
	}
	// Sorted by total descending, youtube first.
	if apps[0].App != "com.google.android.youtube" || apps[0].Total != 3 || apps[0].Blocked != 1 {
		t.Fatalf("apps[0] = %+v, want youtube total=3 blocked=1", apps[0])
	}
	if apps[1].App != "com.instagram.android" || apps[1].Blocked != 1 {
		t.Fatalf("apps[1] = %+v, want instagram blocked=1", apps[1])
	}
}

func TestCountsByMinute(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	now := time.Now().UTC()

	batch := []*model.Decision{
		testDecision(now.Add(-30*time.Second), "com.instagram.android", true),
		testDecision(now.Add(-20*time.Second), "com.instagram.android", false),
		// Outside the one hour stats window, must not appear.
		testDecision(now.Add(-2*time.Hour), "com.instagram.android", true),
	}
	if err := store.InsertDecisionBatch(batch); err != nil {
		t.Fatalf("InsertDecisionBatch: %v", err)
	}

	minutes, err := store.CountsByMinute(model.QueryOpts{})
	if err != nil {
		t.Fatalf("CountsByMinute: %v", err)
	}

	var blocked, allowed, total int64
	for _, mc := range minutes {
		blocked += mc.Blocked
		allowed += mc.Allowed
		total += mc.Total
	}
	if total != 2 || blocked != 1 || allowed != 1 {
		t.Fatalf("window totals = blocked=%d allowed=%d total=%d, want 1/1/2", blocked, allowed, total)
	}
}

func TestDeleteBefore(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	now := time.Now().UTC()

	batch := []*model.Decision{
		testDecision(now.Add(-48*time.Hour), "com.instagram.android", true),
		testDecision(now, "com.instagram.android", false),
	}
	if err := store.InsertDecisionBatch(batch); err != nil {
		t.Fatalf("InsertDecisionBatch: %v", err)
	}

	deleted, err := store.DeleteBefore(now.Add(-24 * time.Hour))
	if err != nil {
		t.Fatalf("DeleteBefore: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("deleted = %d, want 1", deleted)
	}

	total, err := store.TotalDecisionCount(model.QueryOpts{})
	if err != nil {
		t.Fatalf("TotalDecisionCount: %v", err)
	}
	if total != 1 {
		t.Fatalf("remaining = %d, want 1", total)
	}
}

func TestExecuteQuery_Guards(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	cases := []struct {
		name  string
		query string
		deny  string
	}{
		{"delete statement", "DELETE FROM decisions", "only SELECT/WITH"},
		{"chained statement", "SELECT 1; DROP TABLE decisions", "semicolons"},
		{"keyword in body", "SELECT * FROM decisions WHERE app = 'x' UNION SELECT 1 FROM (INSERT INTO decisions VALUES (1))", "disallowed keyword"},
		{"keyword hidden in comment", "SELECT 1 /* harmless */ UNION SELECT 2 -- DROP\nFROM (DROP TABLE decisions)", "disallowed keyword"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := store.ExecuteQuery(tc.query)
			if err == nil {
				t.Fatalf("ExecuteQuery(%q) succeeded, want error", tc.query)
			}
			if !strings.Contains(err.Error(), tc.deny) {
				t.Fatalf("error = %v, want mention of %q", err, tc.deny)
			}
		})
	}
}

func TestExecuteQuery_SelectWorks(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	if err := store.InsertDecisionBatch([]*model.Decision{
		testDecision(time.Now().UTC(), "com.instagram.android", true),
	}); err != nil {
		t.Fatalf("InsertDecisionBatch: %v", err)
	}

	rows, err := store.ExecuteQuery("SELECT app, blocked FROM decisions")
	if err != nil {
		t.Fatalf("ExecuteQuery: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1", len(rows))
	}
	if rows[0]["app"] != "com.instagram.android" {
		t.Fatalf("app = %v, want com.instagram.android", rows[0]["app"])
	}
}

func TestTableRowCounts(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	counts, err := store.TableRowCounts()
	if err != nil {
		t.Fatalf("TableRowCounts: %v", err)
	}
	if _, ok := counts["decisions"]; !ok {
		t.Fatalf("counts missing decisions table: %v", counts)
	}
}
