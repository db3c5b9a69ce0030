package export

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrExportInProgress rejects a Start while another job is still active.
	ErrExportInProgress = errors.New("an export is already in progress")
	// ErrCanceled is the failure cause of a canceled job.
	ErrCanceled = errors.New("export canceled")

	ErrMediaAccess        = errors.New("media access failed")
	ErrEncoderUnsupported = errors.New("encoder unsupported")
)

// MediaAccessError reports a source that could not be opened or probed.
type MediaAccessError struct {
	Path string
	Err  error
}

func (e *MediaAccessError) Error() string {
	return fmt.Sprintf("cannot read media %s: %v", e.Path, e.Err)
}

func (e *MediaAccessError) Unwrap() error { return e.Err }

func (e *MediaAccessError) Is(target error) bool { return target == ErrMediaAccess }

// EncoderUnsupportedError reports an encoder that could not be started for
// the requested container.
type EncoderUnsupportedError struct {
	Container string
	Err       error
}

func (e *EncoderUnsupportedError) Error() string {
	return fmt.Sprintf("cannot encode %s: %v", e.Container, e.Err)
}

func (e *EncoderUnsupportedError) Unwrap() error { return e.Err }

func (e *EncoderUnsupportedError) Is(target error) bool { return target == ErrEncoderUnsupported }
