package variant

import (
	"fmt"

	"github.com/gear6io/plvclient/pkg/errors"
	"github.com/gear6io/plvclient/pkg/protocol"
)

// Variant decoding error codes. Every error returned by Decoder.Decode
// carries ErrCorrupt: the argument boundaries of the frame are lost.
var (
	ErrCorrupt           = errors.MustNewCode("variant.corrupt")
	ErrUnsupportedTag    = errors.MustNewCode("variant.unsupported_tag")
	ErrUnknownUserType   = errors.MustNewCode("variant.unknown_user_type")
	ErrInvalidImage      = errors.MustNewCode("variant.invalid_image")
	ErrDuplicateUserType = errors.MustNewCode("variant.duplicate_user_type")
)

// UnsupportedTagError is returned for tags the decoder cannot size: legacy
// GUI types such as Bitmap and anything outside the Qt 4 table.
type UnsupportedTagError struct {
	Tag protocol.VariantTag
}

func (e *UnsupportedTagError) Error() string {
	return fmt.Sprintf("unsupported variant tag %d (%s)", int32(e.Tag), e.Tag)
}

// Transform implements errors.InternalError
func (e *UnsupportedTagError) Transform() *errors.Error {
	return errors.New(ErrUnsupportedTag, e.Error(), nil).
		AddContextf("tag", "%d", int32(e.Tag))
}
