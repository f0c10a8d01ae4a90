package duckdb

import "github.com/pedrodeoliamarante/shorts-blocker-app/internal/model"

// Type aliases re-export model interfaces and types so consumers that
// import duckdb for these continue to compile without reaching into model.
type QueryOpts = model.QueryOpts
type DecisionQuerier = model.DecisionQuerier
type SchemaQuerier = model.SchemaQuerier
type DecisionWriter = model.DecisionWriter
type DecisionReader = model.DecisionReader

type Decision = model.Decision
type OutcomeCount = model.OutcomeCount
type AppCount = model.AppCount
type MinuteCounts = model.MinuteCounts
