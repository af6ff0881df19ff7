package htspack

import (
	"github.com/pkg/errors"

	"github.com/ieee0824/htspack/feature"
)

// Error types returned by the packer. They are defined in package feature and
// re-exported here so callers only need this package for errors.As.
type (
	FormatError = feature.FormatError
	DataError   = feature.DataError
	IOError     = feature.IOError
)

var (
	// ErrStreamCount is returned when the number of input files differs from
	// the number of configured streams.
	ErrStreamCount = errors.New("input count does not match stream count")

	// ErrNoStreams is returned when a packer is built without streams.
	ErrNoStreams = errors.New("no streams configured")
)
