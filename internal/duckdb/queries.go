package duckdb

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/pedrodeoliamarante/shorts-blocker-app/internal/model"
)

// minuteStatsWindow bounds CountsByMinute to the recent past so the
// stats endpoint stays cheap on long-lived journals.
const minuteStatsWindow = time.Hour

// dangerousKeywordPattern matches dangerous SQL keywords at word boundaries.
// This avoids false positives like "RESET" matching "SET".
// Used as defense-in-depth after comment stripping and semicolon rejection.
var dangerousKeywordPattern = regexp.MustCompile(
	`(?i)\b(INSERT|UPDATE|DELETE|DROP|CREATE|ALTER|TRUNCATE|COPY|ATTACH|LOAD|EXPORT|IMPORT|INSTALL|CALL|EXECUTE|PRAGMA|SET)\b`,
)

// blockCommentPattern matches C-style block comments (/* ... */).
var blockCommentPattern = regexp.MustCompile(`/\*[\s\S]*?\*/`)

// stripSQLComments removes -- line comments and /* */ block comments from a query.
func stripSQLComments(query string) string {
	cleaned := blockCommentPattern.ReplaceAllString(query, " ")
	var result strings.Builder
	for _, line := range strings.Split(cleaned, "\n") {
		if idx := strings.Index(line, "--"); idx >= 0 {
			line = line[:idx]
		}
		result.WriteString(line)
		result.WriteByte('\n')
	}
	return result.String()
}

// queryCtx returns a context with the store's configured query timeout.
func (s *Store) queryCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.QueryTimeout)
}

// appFilter returns a WHERE clause and args when opts.App is non-empty.
func appFilter(opts model.QueryOpts) (clause string, args []interface{}) {
	if opts.App != "" {
		return "WHERE app = ?", []interface{}{opts.App}
	}
	return "", nil
}

// appAnd returns an "AND app = ?" fragment and args when opts.App is non-empty.
// Use this when there is already a WHERE clause.
func appAnd(opts model.QueryOpts) (clause string, args []interface{}) {
	if opts.App != "" {
		return " AND app = ?", []interface{}{opts.App}
	}
	return "", nil
}

// TotalDecisionCount returns the total number of journaled decisions.
func (s *Store) TotalDecisionCount(opts model.QueryOpts) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx()
	defer cancel()

	where, wArgs := appFilter(opts)
	query := fmt.Sprintf(`SELECT COUNT(*) FROM decisions %s`, where)

	var count int64
	err := s.db.QueryRowContext(ctx, query, wArgs...).Scan(&count)
	return count, err
}

// RecentDecisions returns the most recent decisions in chronological order.
func (s *Store) RecentDecisions(limit int, opts model.QueryOpts) ([]model.Decision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx()
	defer cancel()

	where, wArgs := appFilter(opts)
	inner := fmt.Sprintf(`
		SELECT ts, app, event, blocked, outcome, action, signals, screen_text, source
		FROM decisions %s
		ORDER BY ts DESC LIMIT ?`, where)
	args := append(wArgs, limit)

	// Wrap so final results come back in chronological (ASC) order.
	query := "SELECT * FROM (" + inner + ") ORDER BY ts ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.Decision
	for rows.Next() {
		var d model.Decision
		var event, outcome, action, signalsJSON string
		if err := rows.Scan(&d.Timestamp, &d.App, &event, &d.Blocked, &outcome, &action, &signalsJSON, &d.ScreenText, &d.Source); err != nil {
			log.Printf("duckdb scan error (RecentDecisions): %v", err)
			continue
		}
		d.Event = model.EventKind(event)
		d.Outcome = model.Outcome(outcome)
		d.Action = model.ActionKind(action)
		d.Signals = make(map[string]bool)
		if signalsJSON != "" && signalsJSON != "{}" {
			if err := json.Unmarshal([]byte(signalsJSON), &d.Signals); err != nil {
				log.Printf("duckdb: bad signals json in journal: %v", err)
			}
		}
		results = append(results, d)
	}
	return results, rows.Err()
}

// CountsByOutcome returns the decision count grouped by outcome.
func (s *Store) CountsByOutcome(opts model.QueryOpts) ([]model.OutcomeCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx()
	defer cancel()

	where, wArgs := appFilter(opts)
	query := fmt.Sprintf(`
		SELECT outcome, COUNT(*) AS count
		FROM decisions %s
		GROUP BY outcome
		ORDER BY count DESC, outcome ASC`, where)

	rows, err := s.db.QueryContext(ctx, query, wArgs...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.OutcomeCount
	for rows.Next() {
		var oc model.OutcomeCount
		var outcome string
		if err := rows.Scan(&outcome, &oc.Count); err != nil {
			log.Printf("duckdb scan error (CountsByOutcome): %v", err)
			continue
		}
		oc.Outcome = model.Outcome(outcome)
		results = append(results, oc)
	}
	return results, rows.Err()
}

// CountsByApp returns per-app decision totals with the blocked share broken out.
func (s *Store) CountsByApp() ([]model.AppCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx()
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT app,
			SUM(CASE WHEN blocked THEN 1 ELSE 0 END) AS blocked,
			COUNT(*) AS total
		FROM decisions
		GROUP BY app
		ORDER BY total DESC, app ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.AppCount
	for rows.Next() {
		var ac model.AppCount
		if err := rows.Scan(&ac.App, &ac.Blocked, &ac.Total); err != nil {
			log.Printf("duckdb scan error (CountsByApp): %v", err)
			continue
		}
		results = append(results, ac)
	}
	return results, rows.Err()
}

// CountsByMinute returns per-minute blocked/allowed breakdowns for the last hour.
func (s *Store) CountsByMinute(opts model.QueryOpts) ([]model.MinuteCounts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx()
	defer cancel()
	cutoff := time.Now().Add(-minuteStatsWindow)

	andApp, aArgs := appAnd(opts)
	query := fmt.Sprintf(`
		SELECT date_trunc('minute', ts) AS minute,
			SUM(CASE WHEN blocked THEN 1 ELSE 0 END) AS blocked,
			SUM(CASE WHEN blocked THEN 0 ELSE 1 END) AS allowed,
			COUNT(*) AS total
		FROM decisions
		WHERE ts >= ?%s
		GROUP BY minute ORDER BY minute`, andApp)

	args := append([]interface{}{cutoff}, aArgs...)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.MinuteCounts
	for rows.Next() {
		var mc model.MinuteCounts
		if err := rows.Scan(&mc.Minute, &mc.Blocked, &mc.Allowed, &mc.Total); err != nil {
			log.Printf("duckdb scan error (CountsByMinute): %v", err)
			continue
		}
		results = append(results, mc)
	}
	return results, rows.Err()
}

// DeleteBefore removes decisions with a timestamp before the cutoff.
// Returns the number of rows deleted.
func (s *Store) DeleteBefore(cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := s.queryCtx()
	defer cancel()

	res, err := s.db.ExecContext(ctx, `DELETE FROM decisions WHERE ts < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ExecuteQuery runs a read-only SQL query and returns results as maps.
// Only SELECT/WITH read queries are allowed; DDL/DML is rejected.
func (s *Store) ExecuteQuery(query string) ([]map[string]interface{}, error) {
	trimmed := strings.TrimSpace(query)

	// Reject semicolons to prevent statement chaining.
	if strings.Contains(trimmed, ";") {
		return nil, fmt.Errorf("query must not contain semicolons")
	}

	// Strip SQL comments so keywords hidden in comments are still caught.
	stripped := strings.TrimSpace(stripSQLComments(trimmed))
	upper := strings.ToUpper(stripped)

	if !strings.HasPrefix(upper, "SELECT") && !strings.HasPrefix(upper, "WITH") {
		return nil, fmt.Errorf("only SELECT/WITH queries are allowed")
	}

	// Defense-in-depth: reject dangerous keywords after comment stripping.
	if match := dangerousKeywordPattern.FindString(stripped); match != "" {
		return nil, fmt.Errorf("query contains disallowed keyword: %s", strings.ToUpper(match))
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx()
	defer cancel()
	rows, err := s.db.QueryContext(ctx, trimmed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var results []map[string]interface{}
	maxRows := 1000

	for rows.Next() && len(results) < maxRows {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			log.Printf("duckdb scan error (ExecuteQuery): %v", err)
			continue
		}

		row := make(map[string]interface{})
		for i, col := range columns {
			row[col] = values[i]
		}
		results = append(results, row)
	}

	return results, rows.Err()
}

// GetSchemaDescription returns a human-readable description of the journal schema.
func (s *Store) GetSchemaDescription() string {
	return `Table 'decisions': ts (TIMESTAMP), app (VARCHAR package name), ` +
		`event (VARCHAR: window_state_changed/window_content_changed/click), ` +
		`blocked (BOOLEAN), outcome (VARCHAR: allowed/performed/suppressed), ` +
		`action (VARCHAR: back/home/recents), signals (VARCHAR json map of predicate booleans), ` +
		`screen_text (VARCHAR joined snapshot labels), source (VARCHAR: tcp/stdin).`
}

// TableRowCounts returns the row count for each known table using a hardcoded allowlist.
func (s *Store) TableRowCounts() (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx()
	defer cancel()

	allowedTables := []string{"decisions"}
	counts := make(map[string]int64, len(allowedTables))

	for _, table := range allowedTables {
		var count int64
		// Table names are hardcoded constants, not user input.
		err := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&count)
		if err != nil {
			continue
		}
		counts[table] = count
	}
	return counts, nil
}
