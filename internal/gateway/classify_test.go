package gateway

import (
	"errors"
	"testing"
)

func TestClassifyCategories(t *testing.T) {
	cases := []struct {
		text     string
		category Category
	}{
		{"SELECT * FROM Person", CategoryDML},
		{"select 1", CategoryDML},
		{"INSERT INTO Person (id) VALUES (1)", CategoryDML},
		{"UPDATE Person SET name = 'x'", CategoryDML},
		{"DELETE FROM Person", CategoryDML},
		{"WITH x AS (SELECT 1) SELECT * FROM x", CategoryDML},
		{"  \n\tCREATE TABLE t (id int)", CategoryDDL},
		{"alter table t add column v int", CategoryDDL},
		{"DROP TABLE t", CategoryDDL},
		{"TRUNCATE TABLE t", CategoryDDL},
		{"GRANT ALL ON t TO role_a", CategoryDCL},
		{"REVOKE ALL PRIVILEGES ON *.* FROM 'user1'@'%'", CategoryDCL},
		{"COMMIT", CategoryTCL},
		{"ROLLBACK", CategoryTCL},
		{"SAVEPOINT sp1", CategoryTCL},
		{"START TRANSACTION", CategoryTCL},
		{"BEGIN", CategoryTCL},
	}
	for _, tc := range cases {
		statement, err := Classify(tc.text)
		if err != nil {
			t.Fatalf("Classify(%q) error = %v", tc.text, err)
		}
		if statement.Category != tc.category {
			t.Fatalf("Classify(%q) category = %s, want %s", tc.text, statement.Category, tc.category)
		}
	}
}

func TestClassifyReturnsRows(t *testing.T) {
	cases := []struct {
		text string
		want bool
	}{
		{"SELECT 1", true},
		{"WITH x AS (SELECT 1) SELECT * FROM x", true},
		{"EXPLAIN SELECT 1", true},
		{"SHOW TABLES", true},
		{"VALUES (1), (2)", true},
		{"(SELECT 1)", true},
		{"INSERT INTO t VALUES (1)", false},
		{"UPDATE t SET a = 1", false},
		{"CREATE TABLE t (id int)", false},
	}
	for _, tc := range cases {
		statement, err := Classify(tc.text)
		if err != nil {
			t.Fatalf("Classify(%q) error = %v", tc.text, err)
		}
		if statement.ReturnsRows != tc.want {
			t.Fatalf("Classify(%q) ReturnsRows = %v, want %v", tc.text, statement.ReturnsRows, tc.want)
		}
	}
}

func TestClassifyEmptyStatement(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t", "123"} {
		_, err := Classify(text)
		if err == nil {
			t.Fatalf("Classify(%q) expected error", text)
		}
		var classErr *ClassificationError
		if !errors.As(err, &classErr) {
			t.Fatalf("Classify(%q) error = %T, want *ClassificationError", text, err)
		}
	}
}
