// Package gateway implements the statement-classification and policy
// boundary between callers and a tenant-scoped database connection.
//
// Raw SQL text is split into statements, each statement is assigned a
// category from its leading keyword, and the whole batch is validated
// against the requested execution mode before anything touches the
// database. Allowed batches run inside a single transaction that is
// committed or rolled back according to the caller's commit flag.
package gateway

import (
	"context"
	"time"
)

// Request describes one execute call against a session.
type Request struct {
	// SQL may contain multiple semicolon-separated statements.
	SQL string
	// Commit selects committing mode. When false the session runs in
	// read-only mode: only DML is permitted and the transaction is
	// always rolled back, so no side effect persists.
	Commit bool
	// AsDict selects column-name keyed rows instead of positional rows.
	AsDict bool
}

// RowGroup holds the shaped result of one executed statement.
type RowGroup struct {
	Category Category
	Columns  []string
	// Rows is populated for AsDict=false, Records for AsDict=true.
	// Non-row-returning statements leave both empty.
	Rows    [][]any
	Records []map[string]any
	// RowCount is the number of returned rows for row-returning
	// statements, or the engine-reported affected-row count otherwise.
	RowCount int64
}

// Result aggregates the row groups of a batch in source order.
type Result struct {
	Groups   []RowGroup
	Duration time.Duration
}

// Executor is the capability the HTTP layer and the exporter depend on.
// A pooled implementation can replace the single-connection Session
// without changing this contract.
type Executor interface {
	Execute(ctx context.Context, request Request) (Result, error)
	Close() error
}
