package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sqlgate/sqlgate/internal/export"
	"github.com/sqlgate/sqlgate/internal/gateway"
)

type fakeExporter struct {
	upload     export.Upload
	err        error
	lastTenant string
	lastResult gateway.Result
}

func (f *fakeExporter) Export(_ context.Context, tenantID string, result gateway.Result) (export.Upload, error) {
	f.lastTenant = tenantID
	f.lastResult = result
	return f.upload, f.err
}

func TestExportRunsReadOnlyAndUploads(t *testing.T) {
	executor := &fakeExecutor{result: gateway.Result{
		Groups: []gateway.RowGroup{{
			Category: gateway.CategoryDML,
			Records:  []map[string]any{{"id": float64(1)}},
			RowCount: 1,
		}},
	}}
	exporter := &fakeExporter{upload: export.Upload{
		Key:      "exports/db1/date=2025-06-03/batch-1.parquet",
		Size:     512,
		ETag:     "etag-1",
		RowCount: 1,
	}}

	h := NewHandler(newTestConfig(t, nil), Dependencies{
		Sessions: SessionOpenerFunc(func(string) (gateway.Executor, error) { return executor, nil }),
		Exporter: exporter,
	})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, authedRequest(http.MethodPost, "/v1/export", executeBody(t, exportRequest{SQL: "SELECT * FROM person"})))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	if executor.lastReq.Commit {
		t.Fatal("export batch must run read-only")
	}
	if !executor.lastReq.AsDict {
		t.Fatal("export batch must request dict rows")
	}
	if exporter.lastTenant != "db1" {
		t.Fatalf("tenant = %q", exporter.lastTenant)
	}

	var response exportResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if response.Key != exporter.upload.Key || response.RowCount != 1 {
		t.Fatalf("response = %+v", response)
	}
}

func TestExportMapsUploadFailure(t *testing.T) {
	executor := &fakeExecutor{result: gateway.Result{
		Groups: []gateway.RowGroup{{Category: gateway.CategoryDML, RowCount: 0}},
	}}
	exporter := &fakeExporter{err: errors.New("bucket unreachable")}

	h := NewHandler(newTestConfig(t, nil), Dependencies{
		Sessions: SessionOpenerFunc(func(string) (gateway.Executor, error) { return executor, nil }),
		Exporter: exporter,
	})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, authedRequest(http.MethodPost, "/v1/export", executeBody(t, exportRequest{SQL: "SELECT 1"})))

	if rr.Code != http.StatusBadGateway {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestExportNotConfigured(t *testing.T) {
	h := NewHandler(newTestConfig(t, nil), Dependencies{})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, authedRequest(http.MethodPost, "/v1/export", executeBody(t, exportRequest{SQL: "SELECT 1"})))

	if rr.Code != http.StatusNotImplemented {
		t.Fatalf("status = %d", rr.Code)
	}
}
