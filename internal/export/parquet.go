// Package export encodes executed batch results as Parquet and uploads
// them to the configured object store.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/parquet-go/parquet-go"

	"github.com/sqlgate/sqlgate/internal/gateway"
)

type ParquetEncodeResult struct {
	Data     []byte
	RowCount int64
}

// parquetResultRow flattens one result row. Row values are kept as a
// JSON document so one schema fits every statement in the batch.
type parquetResultRow struct {
	StatementIndex int32  `parquet:"statement_index"`
	Category       string `parquet:"category"`
	RowNumber      int64  `parquet:"row_number"`
	RowJSON        string `parquet:"row_json"`
}

func EncodeResultToParquet(result gateway.Result) (ParquetEncodeResult, error) {
	if len(result.Groups) == 0 {
		return ParquetEncodeResult{}, fmt.Errorf("result has no row groups")
	}

	var rows []parquetResultRow
	for groupIndex, group := range result.Groups {
		if group.Records != nil {
			for rowIndex, record := range group.Records {
				doc, err := json.Marshal(record)
				if err != nil {
					return ParquetEncodeResult{}, fmt.Errorf("encode row %d of statement %d: %w", rowIndex, groupIndex, err)
				}
				rows = append(rows, parquetResultRow{
					StatementIndex: int32(groupIndex),
					Category:       string(group.Category),
					RowNumber:      int64(rowIndex),
					RowJSON:        string(doc),
				})
			}
			continue
		}
		for rowIndex, values := range group.Rows {
			doc, err := json.Marshal(values)
			if err != nil {
				return ParquetEncodeResult{}, fmt.Errorf("encode row %d of statement %d: %w", rowIndex, groupIndex, err)
			}
			rows = append(rows, parquetResultRow{
				StatementIndex: int32(groupIndex),
				Category:       string(group.Category),
				RowNumber:      int64(rowIndex),
				RowJSON:        string(doc),
			})
		}
	}

	buf := bytes.NewBuffer(nil)
	writer := parquet.NewGenericWriter[parquetResultRow](buf)
	if len(rows) > 0 {
		if _, err := writer.Write(rows); err != nil {
			return ParquetEncodeResult{}, fmt.Errorf("write parquet rows: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return ParquetEncodeResult{}, fmt.Errorf("close parquet writer: %w", err)
	}

	return ParquetEncodeResult{Data: buf.Bytes(), RowCount: int64(len(rows))}, nil
}
