package model

// QueryOpts holds optional filters applied to most queries.
type QueryOpts struct {
	App string // empty = all apps
}

// DecisionQuerier provides read-only queries on journaled decisions.
type DecisionQuerier interface {
	TotalDecisionCount(opts QueryOpts) (int64, error)
	RecentDecisions(limit int, opts QueryOpts) ([]Decision, error)
	CountsByOutcome(opts QueryOpts) ([]OutcomeCount, error)
	CountsByApp() ([]AppCount, error)
	CountsByMinute(opts QueryOpts) ([]MinuteCounts, error)
}

// SchemaQuerier provides schema introspection and arbitrary read-only queries.
type SchemaQuerier interface {
	ExecuteQuery(query string) ([]map[string]interface{}, error)
	GetSchemaDescription() string
	TableRowCounts() (map[string]int64, error)
}

// DecisionWriter provides append-oriented write operations for decisions.
type DecisionWriter interface {
	InsertDecisionBatch(decisions []*Decision) error
}

// DecisionReader is the unified read contract for the HTTP API.
type DecisionReader interface {
	DecisionQuerier
	SchemaQuerier
}
