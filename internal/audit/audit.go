// Package audit records every batch that passes through the gateway,
// whether it executed, was rejected by policy, or failed in the engine.
package audit

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("audit: not found")

const (
	ModeReadOnly   = "read_only"
	ModeCommitting = "committing"

	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

type BatchRecordInput struct {
	TenantID       string
	Mode           string
	StatementCount int
	DMLCount       int
	DDLCount       int
	Outcome        string
	// ErrorText carries the surfaced error for rejected/failed batches.
	ErrorText  string
	DurationMs int64
}

type BatchRecord struct {
	RecordID       int64
	TenantID       string
	Mode           string
	StatementCount int
	DMLCount       int
	DDLCount       int
	Outcome        string
	ErrorText      string
	DurationMs     int64
	RecordedAt     time.Time
}

type Recorder interface {
	RecordBatch(ctx context.Context, in BatchRecordInput) (BatchRecord, error)
	ListRecent(ctx context.Context, tenantID string, limit int) ([]BatchRecord, error)
}

// NopRecorder is used when auditing is not configured.
type NopRecorder struct{}

func (NopRecorder) RecordBatch(context.Context, BatchRecordInput) (BatchRecord, error) {
	return BatchRecord{}, nil
}

func (NopRecorder) ListRecent(context.Context, string, int) ([]BatchRecord, error) {
	return nil, nil
}
