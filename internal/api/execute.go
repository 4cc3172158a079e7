package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sqlgate/sqlgate/internal/audit"
	"github.com/sqlgate/sqlgate/internal/auth"
	"github.com/sqlgate/sqlgate/internal/gateway"
	"github.com/sqlgate/sqlgate/internal/tenant"
)

type executeRequest struct {
	SQL    string `json:"sql"`
	Commit bool   `json:"commit"`
	AsDict bool   `json:"as_dict"`
}

type statementResult struct {
	Category string           `json:"category"`
	Columns  []string         `json:"columns,omitempty"`
	Rows     [][]any          `json:"rows,omitempty"`
	Records  []map[string]any `json:"records,omitempty"`
	RowCount int64            `json:"row_count"`
}

type executeResponse struct {
	Mode    string            `json:"mode"`
	Results []statementResult `json:"results"`
	Stats   map[string]any    `json:"stats"`
}

func handleExecute(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Sessions == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "EXECUTE_NOT_CONFIGURED", "session dependencies are not configured", false, nil)
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

	var request executeRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&request); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_JSON", "invalid execute request body", false, map[string]any{"details": err.Error()})
		return
	}
	if strings.TrimSpace(request.SQL) == "" {
		writeError(r.Context(), w, http.StatusBadRequest, "SQL_REQUIRED", "sql is required", false, nil)
		return
	}
	if request.Commit {
		if err := requireRole(r, auth.RoleWriter); err != nil {
			writeError(r.Context(), w, http.StatusForbidden, "FORBIDDEN", err.Error(), false, nil)
			return
		}
	}

	result, err := runBatch(deps, r, tenantID, gateway.Request{
		SQL:    request.SQL,
		Commit: request.Commit,
		AsDict: request.AsDict,
	})
	if err != nil {
		writeBatchError(deps, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, executeResponse{
		Mode:    batchMode(request.Commit),
		Results: buildStatementResults(result),
		Stats: map[string]any{
			"duration_ms":     result.Duration.Milliseconds(),
			"statement_count": len(result.Groups),
		},
	})
}

// runBatch opens a fresh session, runs the batch, records the audit
// entry, and closes the session.
func runBatch(deps Dependencies, r *http.Request, tenantID string, request gateway.Request) (gateway.Result, error) {
	session, err := deps.Sessions.Open(tenantID)
	if err != nil {
		return gateway.Result{}, err
	}
	defer func() { _ = session.Close() }()

	result, execErr := session.Execute(r.Context(), request)
	recordAudit(deps, r, tenantID, request, result, execErr)
	return result, execErr
}

func recordAudit(deps Dependencies, r *http.Request, tenantID string, request gateway.Request, result gateway.Result, execErr error) {
	if deps.Audit == nil {
		return
	}

	input := audit.BatchRecordInput{
		TenantID:   tenantID,
		Mode:       batchMode(request.Commit),
		Outcome:    audit.OutcomeOK,
		DurationMs: result.Duration.Milliseconds(),
	}
	for _, group := range result.Groups {
		input.StatementCount++
		switch group.Category {
		case gateway.CategoryDDL:
			input.DDLCount++
		default:
			input.DMLCount++
		}
	}
	if execErr != nil {
		input.ErrorText = execErr.Error()
		input.Outcome = audit.OutcomeFailed
		var policyErr *gateway.PolicyError
		if errors.As(execErr, &policyErr) {
			input.Outcome = audit.OutcomeRejected
		}
		// Counts for rejected batches come from a best-effort dry
		// classification since execution never produced groups.
		if len(result.Groups) == 0 {
			if statements, err := gateway.ClassifyAll(gateway.Split(request.SQL)); err == nil {
				input.StatementCount = len(statements)
				for _, statement := range statements {
					if statement.Category == gateway.CategoryDDL {
						input.DDLCount++
					} else if statement.Category == gateway.CategoryDML {
						input.DMLCount++
					}
				}
			}
		}
	}

	if _, err := deps.Audit.RecordBatch(r.Context(), input); err != nil && deps.Logger != nil {
		deps.Logger.Error("record batch audit entry", "error", err, "tenant_id", tenantID)
	}
}

func buildStatementResults(result gateway.Result) []statementResult {
	results := make([]statementResult, 0, len(result.Groups))
	for _, group := range result.Groups {
		results = append(results, statementResult{
			Category: string(group.Category),
			Columns:  group.Columns,
			Rows:     group.Rows,
			Records:  group.Records,
			RowCount: group.RowCount,
		})
	}
	return results
}

func writeBatchError(deps Dependencies, w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, tenant.ErrUnknownTenant) {
		writeError(r.Context(), w, http.StatusNotFound, "UNKNOWN_TENANT", err.Error(), false, nil)
		return
	}

	var classificationErr *gateway.ClassificationError
	if errors.As(err, &classificationErr) {
		writeError(r.Context(), w, http.StatusBadRequest, "CLASSIFICATION_ERROR", classificationErr.Error(), false, nil)
		return
	}

	var policyErr *gateway.PolicyError
	if errors.As(err, &policyErr) {
		writeError(r.Context(), w, http.StatusForbidden, "POLICY_VIOLATION", policyErr.Error(), false, map[string]any{
			"statement_index": policyErr.Index,
			"category":        string(policyErr.Category),
			"reason":          string(policyErr.Reason),
		})
		return
	}

	var executionErr *gateway.ExecutionError
	if errors.As(err, &executionErr) {
		code := "EXECUTION_FAILED"
		status := http.StatusBadRequest
		if executionErr.Authorization {
			code = "AUTHORIZATION_FAILED"
			status = http.StatusForbidden
		}
		writeError(r.Context(), w, status, code, executionErr.Error(), false, map[string]any{
			"statement_index": executionErr.Index,
			"category":        string(executionErr.Category),
		})
		return
	}

	var connectionErr *gateway.ConnectionError
	if errors.As(err, &connectionErr) {
		writeError(r.Context(), w, http.StatusServiceUnavailable, "CONNECTION_FAILED", connectionErr.Error(), true, nil)
		return
	}

	if deps.Logger != nil {
		deps.Logger.Error("batch execution failed", "error", err)
	}
	writeError(r.Context(), w, http.StatusInternalServerError, "INTERNAL_ERROR", "batch execution failed", true, nil)
}

func batchMode(commit bool) string {
	if commit {
		return audit.ModeCommitting
	}
	return audit.ModeReadOnly
}

func tenantFromRequest(r *http.Request) (string, error) {
	if identity, ok := auth.IdentityFromContext(r.Context()); ok {
		if strings.TrimSpace(identity.TenantID) != "" {
			return identity.TenantID, nil
		}
	}
	tenantID := strings.TrimSpace(r.Header.Get("X-Tenant-ID"))
	if tenantID == "" {
		return "", fmt.Errorf("tenant context is required")
	}
	return tenantID, nil
}

func requireRole(r *http.Request, role string) error {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		return nil
	}
	if identity.HasRole(role) {
		return nil
	}
	return fmt.Errorf("missing required role %q", role)
}
