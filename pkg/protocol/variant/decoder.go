package variant

import (
	"bytes"
	"sync"

	"github.com/gear6io/plvclient/pkg/errors"
	"github.com/gear6io/plvclient/pkg/protocol"
	"github.com/gear6io/plvclient/pkg/protocol/cvmat"
)

// UserTypeFunc decodes the payload of a registered user type. It must consume
// exactly the bytes that belong to the value.
type UserTypeFunc func(r *protocol.Reader) (Value, error)

// Decoder reads one variant at a time from a frame body. Decoding is
// synchronous and holds no per-frame state, only the user type registry.
type Decoder struct {
	mu        sync.RWMutex
	userTypes map[string]UserTypeFunc
}

// NewDecoder creates a decoder with plv::CvMatData registered
func NewDecoder() *Decoder {
	d := &Decoder{userTypes: make(map[string]UserTypeFunc)}
	_ = d.RegisterUserType(protocol.MatrixTypeName, decodeMatrix)
	return d
}

// RegisterUserType adds a decoder for a QMetaType user type name
func (d *Decoder) RegisterUserType(name string, fn UserTypeFunc) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.userTypes[name]; exists {
		return errors.Newf(ErrDuplicateUserType, "user type %q already registered", name)
	}
	d.userTypes[name] = fn
	return nil
}

func (d *Decoder) userType(name string) (UserTypeFunc, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	fn, ok := d.userTypes[name]
	return fn, ok
}

// Decode reads one variant: an int32 tag, the is-null marker byte and the
// tag's payload. Any error means the stream position is no longer trustworthy
// and the rest of the frame must be abandoned; all errors carry ErrCorrupt.
func (d *Decoder) Decode(r *protocol.Reader) (Value, error) {
	start := r.Offset()

	raw, err := r.ReadInt32()
	if err != nil {
		return nil, corrupt(err, "read variant tag", start)
	}
	tag := protocol.VariantTag(raw)

	// is-null marker, present in every supported stream version
	if _, err := r.ReadUint8(); err != nil {
		return nil, corrupt(err, "read null marker", start)
	}

	v, err := d.decodePayload(tag, r)
	if err != nil {
		return nil, corrupt(err, "decode "+tag.String()+" payload", start).
			AddContextf("tag", "%d", raw)
	}
	return v, nil
}

func (d *Decoder) decodePayload(tag protocol.VariantTag, r *protocol.Reader) (Value, error) {
	switch tag {
	case protocol.TagImage:
		present, err := r.ReadInt32()
		if err != nil {
			return nil, err
		}
		if present == 0 {
			return Discarded{Tag: tag}, nil
		}
		img, err := readImage(r)
		if err != nil {
			return nil, err
		}
		return Image{Image: img, Source: SourceImage}, nil

	case protocol.TagInt:
		v, err := r.ReadInt32()
		if err != nil {
			return nil, err
		}
		return Int{Value: v}, nil

	case protocol.TagUInt:
		if _, err := r.ReadUint32(); err != nil {
			return nil, err
		}
		return Discarded{Tag: tag}, nil

	case protocol.TagString:
		s, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		return Text{Value: s}, nil

	case protocol.TagUserType:
		name, err := r.ReadByteArray()
		if err != nil {
			return nil, err
		}
		typeName := string(bytes.TrimRight(name, "\x00"))
		fn, ok := d.userType(typeName)
		if !ok {
			return nil, errors.Newf(ErrUnknownUserType, "unknown user type %q", typeName).
				AddContext("user_type", typeName)
		}
		return fn(r)

	case protocol.TagBitArray:
		n, err := r.ReadUint32()
		if err != nil {
			return nil, err
		}
		data, err := r.ReadBytes(int((uint64(n) + 7) / 8))
		if err != nil {
			return nil, err
		}
		return Bits{Len: int(n), Data: append([]byte(nil), data...)}, nil

	case protocol.TagByteArray:
		b, err := r.ReadByteArray()
		if err != nil {
			return nil, err
		}
		return Bytes{Value: b}, nil

	case protocol.TagBool:
		b, err := r.ReadBool()
		if err != nil {
			return nil, err
		}
		return Bool{Value: b}, nil

	case protocol.TagDouble:
		f, err := r.ReadFloat64()
		if err != nil {
			return nil, err
		}
		return Double{Value: f}, nil

	default:
		return nil, &UnsupportedTagError{Tag: tag}
	}
}

func decodeMatrix(r *protocol.Reader) (Value, error) {
	m, err := cvmat.ReadFrom(r)
	if err != nil {
		return nil, err
	}
	img, err := cvmat.Decode(m)
	if err != nil {
		var shapeErr *cvmat.ShapeError
		if errors.As(err, &shapeErr) {
			return Rejected{Diagnostic: shapeErr.Diagnostic, Reason: shapeErr.Reason}, nil
		}
		return nil, err
	}
	return Image{Image: img, Source: SourceMatrix}, nil
}

func corrupt(cause error, message string, offset int) *errors.Error {
	return errors.Wrap(ErrCorrupt, cause, message).
		AddContextf("offset", "%d", offset)
}
