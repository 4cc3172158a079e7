package gateway

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// ClassificationError reports a statement that could not be categorized.
// Split drops empty statements, so callers normally only see this when
// handing a statement to Classify directly.
type ClassificationError struct {
	Text string
}

func (e *ClassificationError) Error() string {
	return "statement is empty after trimming, cannot classify"
}

// PolicyReason identifies which rule rejected a statement.
type PolicyReason string

const (
	ReasonDDLInReadOnlyMode PolicyReason = "ddl_in_read_only_mode"
	ReasonDCLDisallowed     PolicyReason = "dcl_disallowed"
	ReasonTCLDisallowed     PolicyReason = "tcl_disallowed"
)

// PolicyError rejects a batch before any statement reaches the database.
type PolicyError struct {
	Reason   PolicyReason
	Category Category
	// Index is the zero-based position of the offending statement.
	Index int
}

func (e *PolicyError) Error() string {
	switch e.Reason {
	case ReasonDDLInReadOnlyMode:
		return "Provided DDL query is not allowed in read only mode"
	case ReasonDCLDisallowed:
		return "DCL query is not allowed to execute"
	case ReasonTCLDisallowed:
		return "TCL query is not allowed to execute"
	default:
		return fmt.Sprintf("%s query rejected by policy", e.Category)
	}
}

// ExecutionError wraps an engine failure for one statement. The engine's
// message text is preserved verbatim through the wrapped error.
type ExecutionError struct {
	Index    int
	Category Category
	// Authorization marks permission failures (insufficient grants on
	// the target database) so callers can distinguish them from syntax
	// or constraint errors. Neither kind is retried.
	Authorization bool
	Err           error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("execute statement %d: %v", e.Index+1, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// ConnectionError reports a failure to establish or keep the session.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connect to database: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// isAuthorizationError inspects the SQLSTATE reported by the engine.
// Class 28 covers authentication, 42501 insufficient privilege, 3D000
// and 3F000 undefined database/schema access.
func isAuthorizationError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	if strings.HasPrefix(pgErr.Code, "28") {
		return true
	}
	switch pgErr.Code {
	case "42501", "3D000", "3F000":
		return true
	}
	return false
}
