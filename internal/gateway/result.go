package gateway

import (
	"database/sql"
	"fmt"
)

// collectRows drains one result set into a row group. With asDict the
// rows become column-name keyed records, otherwise positional slices.
func collectRows(rows *sql.Rows, category Category, asDict bool) (RowGroup, error) {
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return RowGroup{}, fmt.Errorf("read result columns: %w", err)
	}

	group := RowGroup{Category: category, Columns: columns}
	for rows.Next() {
		values := make([]any, len(columns))
		scanTargets := make([]any, len(columns))
		for i := range values {
			scanTargets[i] = &values[i]
		}
		if err := rows.Scan(scanTargets...); err != nil {
			return RowGroup{}, fmt.Errorf("scan row: %w", err)
		}
		values = normalizeValues(values)

		if asDict {
			record := make(map[string]any, len(columns))
			for i, column := range columns {
				record[column] = values[i]
			}
			group.Records = append(group.Records, record)
		} else {
			group.Rows = append(group.Rows, values)
		}
		group.RowCount++
	}
	if err := rows.Err(); err != nil {
		return RowGroup{}, fmt.Errorf("iterate rows: %w", err)
	}
	return group, nil
}

func normalizeValues(values []any) []any {
	normalized := make([]any, len(values))
	for i, value := range values {
		switch typed := value.(type) {
		case []byte:
			normalized[i] = string(typed)
		default:
			normalized[i] = typed
		}
	}
	return normalized
}
