package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/sqlgate/sqlgate/internal/auth"
	"github.com/sqlgate/sqlgate/internal/gateway"
)

type exportRequest struct {
	SQL string `json:"sql"`
}

type exportResponse struct {
	Key      string `json:"key"`
	Size     int64  `json:"size"`
	ETag     string `json:"etag"`
	RowCount int64  `json:"row_count"`
}

// handleExport runs a batch read-only and uploads the result set as a
// Parquet object. The batch is always rolled back.
func handleExport(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Sessions == nil || deps.Exporter == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "EXPORT_NOT_CONFIGURED", "export dependencies are not configured", false, nil)
		return
	}

	tenantID, err := tenantFromRequest(r)
	if err != nil {
		writeError(r.Context(), w, http.StatusUnauthorized, "TENANT_REQUIRED", err.Error(), false, nil)
		return
	}
	if err := requireRole(r, auth.RoleReader); err != nil {
		writeError(r.Context(), w, http.StatusForbidden, "FORBIDDEN", err.Error(), false, nil)
		return
	}

	var request exportRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&request); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_JSON", "invalid export request body", false, map[string]any{"details": err.Error()})
		return
	}
	if strings.TrimSpace(request.SQL) == "" {
		writeError(r.Context(), w, http.StatusBadRequest, "SQL_REQUIRED", "sql is required", false, nil)
		return
	}

	result, err := runBatch(deps, r, tenantID, gateway.Request{
		SQL:    request.SQL,
		Commit: false,
		AsDict: true,
	})
	if err != nil {
		writeBatchError(deps, w, r, err)
		return
	}

	upload, err := deps.Exporter.Export(r.Context(), tenantID, result)
	if err != nil {
		writeError(r.Context(), w, http.StatusBadGateway, "EXPORT_FAILED", err.Error(), true, nil)
		return
	}

	writeJSON(w, http.StatusOK, exportResponse{
		Key:      upload.Key,
		Size:     upload.Size,
		ETag:     upload.ETag,
		RowCount: upload.RowCount,
	})
}
