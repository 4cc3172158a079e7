package export

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/sqlgate/sqlgate/internal/gateway"
	"github.com/sqlgate/sqlgate/internal/storage"
)

const parquetContentType = "application/vnd.apache.parquet"

// Upload describes where an exported batch landed.
type Upload struct {
	Key      string
	Size     int64
	ETag     string
	RowCount int64
}

// Service uploads encoded batch results to the object store.
type Service struct {
	store   storage.ObjectStore
	maxRows int64
	now     func() time.Time
}

type ServiceOption func(*Service)

// WithClock overrides the export timestamp source.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

func NewService(store storage.ObjectStore, maxRows int64, opts ...ServiceOption) *Service {
	s := &Service{store: store, maxRows: maxRows, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Export(ctx context.Context, tenantID string, result gateway.Result) (Upload, error) {
	encoded, err := EncodeResultToParquet(result)
	if err != nil {
		return Upload{}, err
	}
	if s.maxRows > 0 && encoded.RowCount > s.maxRows {
		return Upload{}, fmt.Errorf("export of %d rows exceeds limit of %d", encoded.RowCount, s.maxRows)
	}

	key, err := storage.BuildExportPath(tenantID, s.now())
	if err != nil {
		return Upload{}, err
	}

	info, err := s.store.Put(ctx, key, bytes.NewReader(encoded.Data), int64(len(encoded.Data)), storage.PutOptions{ContentType: parquetContentType})
	if err != nil {
		return Upload{}, fmt.Errorf("upload export: %w", err)
	}
	exportBytesTotal.Add(float64(len(encoded.Data)))

	return Upload{Key: info.Key, Size: info.Size, ETag: info.ETag, RowCount: encoded.RowCount}, nil
}
