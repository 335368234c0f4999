package artifact

import (
	"context"

	"github.com/go-faster/errors"
)

type Options struct {
	Driver Driver
	Root   string
	S3     S3Config
}

// Open selects a Store implementation for the configured driver; the empty
// driver means fs.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Driver {
	case "", DriverFilesystem:
		return NewFilesystem(opts.Root)
	case DriverS3:
		return NewS3(ctx, opts.S3)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, errors.Errorf("unknown artifact driver %q", opts.Driver)
	}
}
