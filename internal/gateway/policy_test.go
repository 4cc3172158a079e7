package gateway

import (
	"errors"
	"strings"
	"testing"
)

func mustClassifyAll(t *testing.T, texts ...string) []Statement {
	t.Helper()
	statements, err := ClassifyAll(texts)
	if err != nil {
		t.Fatalf("ClassifyAll() error = %v", err)
	}
	return statements
}

func TestCheckPolicyReadOnlyAllowsDML(t *testing.T) {
	statements := mustClassifyAll(t,
		"SELECT * FROM Person",
		"INSERT INTO Person (id) VALUES (1)",
		"UPDATE Person SET name = 'x'",
	)
	if err := CheckPolicy(statements, false); err != nil {
		t.Fatalf("CheckPolicy() error = %v", err)
	}
}

func TestCheckPolicyReadOnlyRejectsDDL(t *testing.T) {
	statements := mustClassifyAll(t, "CREATE TABLE Person2 (id int)")
	err := CheckPolicy(statements, false)
	if err == nil {
		t.Fatal("expected DDL rejection in read-only mode")
	}
	var policyErr *PolicyError
	if !errors.As(err, &policyErr) {
		t.Fatalf("error = %T, want *PolicyError", err)
	}
	if policyErr.Reason != ReasonDDLInReadOnlyMode {
		t.Fatalf("Reason = %q", policyErr.Reason)
	}
	if !strings.Contains(err.Error(), "Provided DDL query is not allowed in read only mode") {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestCheckPolicyCommittingAllowsDDL(t *testing.T) {
	statements := mustClassifyAll(t, "CREATE TABLE Person2 (id int)", "INSERT INTO Person2 (id) VALUES (1)")
	if err := CheckPolicy(statements, true); err != nil {
		t.Fatalf("CheckPolicy() error = %v", err)
	}
}

func TestCheckPolicyAlwaysRejectsDCLAndTCL(t *testing.T) {
	cases := []struct {
		text    string
		reason  PolicyReason
		message string
	}{
		{"REVOKE ALL PRIVILEGES ON *.* FROM 'user1'@'%'", ReasonDCLDisallowed, "DCL query is not allowed to execute"},
		{"GRANT ALL ON db1.* TO 'user1'@'%'", ReasonDCLDisallowed, "DCL query is not allowed to execute"},
		{"COMMIT", ReasonTCLDisallowed, "TCL query is not allowed to execute"},
		{"ROLLBACK", ReasonTCLDisallowed, "TCL query is not allowed to execute"},
		{"START TRANSACTION", ReasonTCLDisallowed, "TCL query is not allowed to execute"},
	}
	for _, tc := range cases {
		for _, commit := range []bool{false, true} {
			err := CheckPolicy(mustClassifyAll(t, tc.text), commit)
			if err == nil {
				t.Fatalf("CheckPolicy(%q, commit=%v) expected rejection", tc.text, commit)
			}
			var policyErr *PolicyError
			if !errors.As(err, &policyErr) {
				t.Fatalf("error = %T, want *PolicyError", err)
			}
			if policyErr.Reason != tc.reason {
				t.Fatalf("CheckPolicy(%q) reason = %q, want %q", tc.text, policyErr.Reason, tc.reason)
			}
			if !strings.Contains(err.Error(), tc.message) {
				t.Fatalf("unexpected message: %v", err)
			}
		}
	}
}

func TestCheckPolicyRejectsMixedBatchBeforeExecution(t *testing.T) {
	statements := mustClassifyAll(t,
		"SELECT 1",
		"INSERT INTO t VALUES (1)",
		"DROP TABLE t",
	)
	err := CheckPolicy(statements, false)
	var policyErr *PolicyError
	if !errors.As(err, &policyErr) {
		t.Fatalf("error = %T, want *PolicyError", err)
	}
	if policyErr.Index != 2 {
		t.Fatalf("Index = %d, want 2", policyErr.Index)
	}
}
