package cvmat

import (
	"fmt"

	"github.com/gear6io/plvclient/pkg/errors"
)

// Matrix decoding error codes
var (
	ErrMalformed     = errors.MustNewCode("cvmat.malformed")
	ErrShapeMismatch = errors.MustNewCode("cvmat.shape_mismatch")
)

// ShapeError reports a well-formed matrix that cannot become an image. The
// bytes were fully consumed, so the caller may carry on with the next value.
type ShapeError struct {
	Diagnostic
	Reason string
}

func newShapeError(m Matrix, reason string) *ShapeError {
	return &ShapeError{Diagnostic: m.Diagnose(), Reason: reason}
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("cvmat: %s (depth=%s width=%d height=%d channels=%d bytes=%d)",
		e.Reason, e.DepthName, e.Width, e.Height, e.Channels, e.ByteLength)
}

// Transform implements errors.InternalError
func (e *ShapeError) Transform() *errors.Error {
	return errors.New(ErrShapeMismatch, e.Reason, nil).
		AddContext("depth", e.DepthName).
		AddContextf("width", "%d", e.Width).
		AddContextf("height", "%d", e.Height).
		AddContextf("channels", "%d", e.Channels).
		AddContextf("byte_length", "%d", e.ByteLength)
}
