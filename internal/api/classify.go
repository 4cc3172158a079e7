package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/sqlgate/sqlgate/internal/auth"
	"github.com/sqlgate/sqlgate/internal/gateway"
)

type classifyRequest struct {
	SQL    string `json:"sql"`
	Commit bool   `json:"commit"`
}

type classifiedStatement struct {
	Index       int    `json:"index"`
	Text        string `json:"text"`
	Category    string `json:"category"`
	ReturnsRows bool   `json:"returns_rows"`
}

type classifyResponse struct {
	Statements []classifiedStatement `json:"statements"`
	Allowed    bool                  `json:"allowed"`
	Rejection  map[string]any        `json:"rejection,omitempty"`
}

// handleClassify dry-runs the split, classification, and policy check
// without touching any tenant database.
func handleClassify(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if err := requireRole(r, auth.RoleReader); err != nil {
		writeError(r.Context(), w, http.StatusForbidden, "FORBIDDEN", err.Error(), false, nil)
		return
	}

	var request classifyRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&request); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_JSON", "invalid classify request body", false, map[string]any{"details": err.Error()})
		return
	}
	if strings.TrimSpace(request.SQL) == "" {
		writeError(r.Context(), w, http.StatusBadRequest, "SQL_REQUIRED", "sql is required", false, nil)
		return
	}

	texts := gateway.Split(request.SQL)
	if len(texts) == 0 {
		writeError(r.Context(), w, http.StatusBadRequest, "CLASSIFICATION_ERROR", (&gateway.ClassificationError{Text: request.SQL}).Error(), false, nil)
		return
	}
	statements, err := gateway.ClassifyAll(texts)
	if err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "CLASSIFICATION_ERROR", err.Error(), false, nil)
		return
	}

	response := classifyResponse{
		Statements: make([]classifiedStatement, 0, len(statements)),
		Allowed:    true,
	}
	for index, statement := range statements {
		response.Statements = append(response.Statements, classifiedStatement{
			Index:       index,
			Text:        statement.Text,
			Category:    string(statement.Category),
			ReturnsRows: statement.ReturnsRows,
		})
	}

	if err := gateway.CheckPolicy(statements, request.Commit); err != nil {
		response.Allowed = false
		var policyErr *gateway.PolicyError
		if errors.As(err, &policyErr) {
			response.Rejection = map[string]any{
				"statement_index": policyErr.Index,
				"category":        string(policyErr.Category),
				"reason":          string(policyErr.Reason),
				"message":         policyErr.Error(),
			}
		}
	}

	writeJSON(w, http.StatusOK, response)
}
