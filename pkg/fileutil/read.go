package fileutil

import (
	"io"
	"os"

	"github.com/fmfix/fmfix/internal/errors"
)

// DefaultMaxFileSize is the default cap on document reads (1MB).
// This prevents memory exhaustion from maliciously large files.
const DefaultMaxFileSize = 1024 * 1024 // 1MB

// ErrFileTooLarge indicates that a file exceeded the read limit.
var ErrFileTooLarge = errors.New("file exceeds maximum size")

// ReadFileWithLimit reads a file of at most limit bytes. A limit of zero or
// less applies DefaultMaxFileSize.
func ReadFileWithLimit(path string, limit int64) ([]byte, error) {
	if limit <= 0 {
		limit = DefaultMaxFileSize
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening file")
	}
	defer f.Close()

	// Fail fast when the size is already known to be too large
	info, err := f.Stat()
	if err == nil {
		if info.Size() > limit {
			return nil, errors.Wrapf(ErrFileTooLarge, "%s is %d bytes, limit %d", path, info.Size(), limit)
		}
	}

	r := io.LimitReader(f, limit+1)
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading file")
	}

	if int64(len(data)) > limit {
		return nil, errors.Wrapf(ErrFileTooLarge, "%s exceeds %d bytes", path, limit)
	}

	return data, nil
}
