// Package variant decodes the self-describing QVariant values carried as
// frame arguments into a closed set of Go values.
package variant

import (
	"github.com/gear6io/plvclient/pkg/pixmap"
	"github.com/gear6io/plvclient/pkg/protocol"
	"github.com/gear6io/plvclient/pkg/protocol/cvmat"
)

// Kind identifies the concrete type behind a Value
type Kind int

const (
	KindImage Kind = iota
	KindText
	KindInt
	KindBool
	KindDouble
	KindBytes
	KindBits
	KindDiscarded
	KindRejected
)

var kindNames = map[Kind]string{
	KindImage:     "image",
	KindText:      "text",
	KindInt:       "int",
	KindBool:      "bool",
	KindDouble:    "double",
	KindBytes:     "bytes",
	KindBits:      "bits",
	KindDiscarded: "discarded",
	KindRejected:  "rejected",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Value is one decoded argument. The set of implementations is closed.
type Value interface {
	Kind() Kind
	sealed()
}

// Source tells where an Image value came from
type Source int

const (
	// SourceImage is a QImage argument
	SourceImage Source = iota
	// SourceMatrix is a plv::CvMatData argument
	SourceMatrix
)

func (s Source) String() string {
	if s == SourceMatrix {
		return "matrix"
	}
	return "image"
}

type Image struct {
	Image  *pixmap.Image
	Source Source
}

type Text struct {
	Value string
}

type Int struct {
	Value int32
}

type Bool struct {
	Value bool
}

type Double struct {
	Value float64
}

// Bytes is a QByteArray. A null array has a nil Value.
type Bytes struct {
	Value []byte
}

// Bits is a QBitArray of Len bits packed LSB first.
type Bits struct {
	Len  int
	Data []byte
}

// Bit reports bit i
func (b Bits) Bit(i int) bool {
	if i < 0 || i >= b.Len {
		return false
	}
	return b.Data[i/8]&(1<<(uint(i)%8)) != 0
}

// Discarded is a value whose bytes were consumed but that is not surfaced,
// such as an unsigned int or an empty image.
type Discarded struct {
	Tag protocol.VariantTag
}

// Rejected is a matrix that was read completely but could not be converted
// into an image.
type Rejected struct {
	Diagnostic cvmat.Diagnostic
	Reason     string
}

func (Image) Kind() Kind     { return KindImage }
func (Text) Kind() Kind      { return KindText }
func (Int) Kind() Kind       { return KindInt }
func (Bool) Kind() Kind      { return KindBool }
func (Double) Kind() Kind    { return KindDouble }
func (Bytes) Kind() Kind     { return KindBytes }
func (Bits) Kind() Kind      { return KindBits }
func (Discarded) Kind() Kind { return KindDiscarded }
func (Rejected) Kind() Kind  { return KindRejected }

func (Image) sealed()     {}
func (Text) sealed()      {}
func (Int) sealed()       {}
func (Bool) sealed()      {}
func (Double) sealed()    {}
func (Bytes) sealed()     {}
func (Bits) sealed()      {}
func (Discarded) sealed() {}
func (Rejected) sealed()  {}
