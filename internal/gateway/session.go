package gateway

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Opener produces the database handle a session executes against. The
// default opener dials the profile's DSN; tests substitute a mock.
type Opener func(ctx context.Context, profile Profile) (*sql.DB, error)

// Session is a query gateway bound to one connection profile. It owns
// exactly one underlying connection, opened lazily on first use and held
// until Close. A session is not safe for concurrent use; callers needing
// concurrency open one session per logical caller.
type Session struct {
	profile  Profile
	opener   Opener
	deadline time.Duration

	db   *sql.DB
	conn *sql.Conn
}

type SessionOption func(*Session)

// WithBatchDeadline bounds the execution time of each batch. Zero means
// batches run to completion or fail outright.
func WithBatchDeadline(deadline time.Duration) SessionOption {
	return func(s *Session) { s.deadline = deadline }
}

// WithOpener replaces how the session obtains its database handle.
func WithOpener(opener Opener) SessionOption {
	return func(s *Session) { s.opener = opener }
}

func NewSession(profile Profile, opts ...SessionOption) *Session {
	session := &Session{profile: profile, opener: openDatabase}
	for _, opt := range opts {
		opt(session)
	}
	return session
}

func openDatabase(_ context.Context, profile Profile) (*sql.DB, error) {
	dsn, err := profile.DSN()
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(profile.driverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", profile.driverName(), err)
	}
	// the session owns exactly one connection, no pooling
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	return db, nil
}

// Execute runs a batch through the classification and policy boundary and
// then against the database inside a single transaction. Every statement
// is validated before any executes; a rejected batch never touches the
// connection. Commit=true commits after the last statement, commit=false
// always rolls back. A mid-batch failure rolls back the whole batch in
// both modes.
func (s *Session) Execute(ctx context.Context, request Request) (Result, error) {
	texts := Split(request.SQL)
	if len(texts) == 0 {
		return Result{}, &ClassificationError{Text: request.SQL}
	}
	statements, err := ClassifyAll(texts)
	if err != nil {
		return Result{}, err
	}
	if err := CheckPolicy(statements, request.Commit); err != nil {
		var policyErr *PolicyError
		if errors.As(err, &policyErr) {
			policyRejectionsTotal.WithLabelValues(string(policyErr.Reason)).Inc()
		}
		return Result{}, err
	}
	for _, statement := range statements {
		statementsTotal.WithLabelValues(string(statement.Category)).Inc()
	}

	conn, err := s.acquire(ctx)
	if err != nil {
		batchesTotal.WithLabelValues("connection_error").Inc()
		return Result{}, err
	}

	if s.deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.deadline)
		defer cancel()
	}

	start := time.Now()
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		batchesTotal.WithLabelValues("connection_error").Inc()
		return Result{}, &ConnectionError{Err: err}
	}

	groups := make([]RowGroup, 0, len(statements))
	for i, statement := range statements {
		group, err := runStatement(ctx, tx, statement, request.AsDict)
		if err != nil {
			_ = tx.Rollback()
			batchesTotal.WithLabelValues("execution_error").Inc()
			return Result{}, &ExecutionError{
				Index:         i,
				Category:      statement.Category,
				Authorization: isAuthorizationError(err),
				Err:           err,
			}
		}
		groups = append(groups, group)
	}

	if request.Commit {
		if err := tx.Commit(); err != nil {
			batchesTotal.WithLabelValues("execution_error").Inc()
			return Result{}, &ExecutionError{
				Index:    len(statements) - 1,
				Category: statements[len(statements)-1].Category,
				Err:      fmt.Errorf("commit transaction: %w", err),
			}
		}
	} else {
		// read-only intent: discard every effect, including from
		// statements that theoretically had one
		if err := tx.Rollback(); err != nil {
			batchesTotal.WithLabelValues("connection_error").Inc()
			return Result{}, &ConnectionError{Err: fmt.Errorf("rollback transaction: %w", err)}
		}
	}

	elapsed := time.Since(start)
	batchDurationSeconds.Observe(elapsed.Seconds())
	batchesTotal.WithLabelValues("ok").Inc()
	return Result{Groups: groups, Duration: elapsed}, nil
}

func (s *Session) acquire(ctx context.Context) (*sql.Conn, error) {
	if s.conn != nil {
		return s.conn, nil
	}
	if s.db == nil {
		db, err := s.opener(ctx, s.profile)
		if err != nil {
			return nil, &ConnectionError{Err: err}
		}
		s.db = db
	}
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, &ConnectionError{Err: err}
	}
	s.conn = conn
	sessionsActive.Inc()
	return conn, nil
}

// Close releases the session's connection. Safe to call when the session
// never reached the database, including after a policy rejection.
func (s *Session) Close() error {
	var firstErr error
	if s.conn != nil {
		if err := s.conn.Close(); err != nil {
			firstErr = err
		}
		s.conn = nil
		sessionsActive.Dec()
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		s.db = nil
	}
	return firstErr
}

func runStatement(ctx context.Context, tx *sql.Tx, statement Statement, asDict bool) (RowGroup, error) {
	if statement.ReturnsRows {
		rows, err := tx.QueryContext(ctx, statement.Text)
		if err != nil {
			return RowGroup{}, err
		}
		return collectRows(rows, statement.Category, asDict)
	}

	result, err := tx.ExecContext(ctx, statement.Text)
	if err != nil {
		return RowGroup{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		// some engines do not report affected rows for schema changes
		affected = 0
	}
	return RowGroup{Category: statement.Category, RowCount: affected}, nil
}
