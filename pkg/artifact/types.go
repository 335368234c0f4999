// Package artifact stores generated files (SQL scripts, CSV intermediates,
// workbooks, plans) behind a small driver-neutral interface.
package artifact

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

type Driver string

const (
	DriverFilesystem Driver = "fs"
	DriverS3         Driver = "s3"
	DriverMemory     Driver = "memory"
)

type PutOptions struct {
	ContentType string
	Metadata    map[string]string
}

// Info describes a stored artifact. Location is a path for the fs driver and
// an s3:// URL for the s3 driver.
type Info struct {
	Key          string            `json:"key"`
	Size         int64             `json:"size_bytes"`
	ContentType  string            `json:"content_type,omitempty"`
	ETag         string            `json:"etag,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	LastModified time.Time         `json:"last_modified"`
	Location     string            `json:"location"`
}

// Store writes whole artifacts. Put replaces any existing artifact under the
// same key; readers never observe a partially written artifact.
type Store interface {
	Put(ctx context.Context, key string, data []byte, opts PutOptions) (Info, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) (bool, error)
	List(ctx context.Context, prefix string) ([]Info, error)
	Driver() Driver
}

var ErrNotFound = errors.New("artifact: not found")

// Content types used by the generators.
const (
	ContentTypeSQL  = "application/sql"
	ContentTypeCSV  = "text/csv; charset=utf-8"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

func cloneMetadata(m map[string]string) map[string]string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
