package api

import (
	"net/http"
	"strconv"

	"github.com/sqlgate/sqlgate/internal/audit"
	"github.com/sqlgate/sqlgate/internal/auth"
)

type auditListResponse struct {
	Records []auditRecord `json:"records"`
}

type auditRecord struct {
	RecordID       int64  `json:"record_id"`
	TenantID       string `json:"tenant_id"`
	Mode           string `json:"mode"`
	StatementCount int    `json:"statement_count"`
	DMLCount       int    `json:"dml_count"`
	DDLCount       int    `json:"ddl_count"`
	Outcome        string `json:"outcome"`
	ErrorText      string `json:"error_text,omitempty"`
	DurationMs     int64  `json:"duration_ms"`
	RecordedAt     string `json:"recorded_at"`
}

func handleAuditList(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Audit == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "AUDIT_NOT_CONFIGURED", "audit storage is not configured", false, nil)
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

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(r.Context(), w, http.StatusBadRequest, "INVALID_LIMIT", "limit must be a non-negative integer", false, nil)
			return
		}
		limit = parsed
	}

	records, err := deps.Audit.ListRecent(r.Context(), tenantID, limit)
	if err != nil {
		writeError(r.Context(), w, http.StatusInternalServerError, "AUDIT_QUERY_FAILED", "failed to list audit records", true, map[string]any{"details": err.Error()})
		return
	}

	response := auditListResponse{Records: make([]auditRecord, 0, len(records))}
	for _, record := range records {
		response.Records = append(response.Records, toAuditRecord(record))
	}
	writeJSON(w, http.StatusOK, response)
}

func toAuditRecord(record audit.BatchRecord) auditRecord {
	return auditRecord{
		RecordID:       record.RecordID,
		TenantID:       record.TenantID,
		Mode:           record.Mode,
		StatementCount: record.StatementCount,
		DMLCount:       record.DMLCount,
		DDLCount:       record.DDLCount,
		Outcome:        record.Outcome,
		ErrorText:      record.ErrorText,
		DurationMs:     record.DurationMs,
		RecordedAt:     record.RecordedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}
}
