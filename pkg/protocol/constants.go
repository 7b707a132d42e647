package protocol

// MessageType is the first int32 of every frame body.
type MessageType int32

const (
	MessageFrame MessageType = 0
	MessageInit  MessageType = 1
	// 2 is reserved
	MessageAck MessageType = 3
)

// Framing sizes
const (
	// LengthPrefixSize is the u32 that precedes every frame body.
	LengthPrefixSize = 4
	// HeaderSize covers type and serial, the part every message carries.
	HeaderSize = 8
	// FrameHeaderSize adds the argument count carried by FRAME messages.
	FrameHeaderSize = 12
	// AckSize is the full ack on the wire, prefix included.
	AckSize = LengthPrefixSize + HeaderSize

	// DefaultMaxFrameSize caps the declared length of a single frame.
	DefaultMaxFrameSize = 16 << 20
)

// MatrixTypeName is the user type carrying an OpenCV matrix. Qt writes the
// name with a trailing NUL, which readers strip before comparing.
const MatrixTypeName = "plv::CvMatData"

// MessageTypeNames for debugging and logging
var MessageTypeNames = map[MessageType]string{
	MessageFrame: "FRAME",
	MessageInit:  "INIT",
	MessageAck:   "ACK",
}

// GetMessageTypeName returns the human-readable name for a message type
func GetMessageTypeName(t MessageType) string {
	if name, exists := MessageTypeNames[t]; exists {
		return name
	}
	return "UNKNOWN"
}

func (t MessageType) String() string {
	return GetMessageTypeName(t)
}

// VariantTag is the QVariant type id preceding each encoded value (Qt 4 table).
type VariantTag int32

const (
	TagInvalid    VariantTag = 0
	TagBool       VariantTag = 1
	TagInt        VariantTag = 2
	TagUInt       VariantTag = 3
	TagLongLong   VariantTag = 4
	TagULongLong  VariantTag = 5
	TagDouble     VariantTag = 6
	TagChar       VariantTag = 7
	TagMap        VariantTag = 8
	TagList       VariantTag = 9
	TagString     VariantTag = 10
	TagStringList VariantTag = 11
	TagByteArray  VariantTag = 12
	TagBitArray   VariantTag = 13
	TagDate       VariantTag = 14
	TagTime       VariantTag = 15
	TagDateTime   VariantTag = 16
	TagUrl        VariantTag = 17
	TagLocale     VariantTag = 18
	TagRect       VariantTag = 19
	TagRectF      VariantTag = 20
	TagSize       VariantTag = 21
	TagSizeF      VariantTag = 22
	TagLine       VariantTag = 23
	TagLineF      VariantTag = 24
	TagPoint      VariantTag = 25
	TagPointF     VariantTag = 26
	TagRegExp     VariantTag = 27
	TagHash       VariantTag = 28

	TagFont        VariantTag = 64
	TagPixmap      VariantTag = 65
	TagBrush       VariantTag = 66
	TagColor       VariantTag = 67
	TagPalette     VariantTag = 68
	TagIcon        VariantTag = 69
	TagImage       VariantTag = 70
	TagPolygon     VariantTag = 71
	TagRegion      VariantTag = 72
	TagBitmap      VariantTag = 73
	TagCursor      VariantTag = 74
	TagSizePolicy  VariantTag = 75
	TagKeySequence VariantTag = 76
	TagPen         VariantTag = 77
	TagTextLength  VariantTag = 78
	TagTextFormat  VariantTag = 79

	TagUserType VariantTag = 127
)

// VariantTagNames for debugging and logging
var VariantTagNames = map[VariantTag]string{
	TagInvalid:     "Invalid",
	TagBool:        "Bool",
	TagInt:         "Int",
	TagUInt:        "UInt",
	TagLongLong:    "LongLong",
	TagULongLong:   "ULongLong",
	TagDouble:      "Double",
	TagChar:        "Char",
	TagMap:         "Map",
	TagList:        "List",
	TagString:      "String",
	TagStringList:  "StringList",
	TagByteArray:   "ByteArray",
	TagBitArray:    "BitArray",
	TagDate:        "Date",
	TagTime:        "Time",
	TagDateTime:    "DateTime",
	TagUrl:         "Url",
	TagLocale:      "Locale",
	TagRect:        "Rect",
	TagRectF:       "RectF",
	TagSize:        "Size",
	TagSizeF:       "SizeF",
	TagLine:        "Line",
	TagLineF:       "LineF",
	TagPoint:       "Point",
	TagPointF:      "PointF",
	TagRegExp:      "RegExp",
	TagHash:        "Hash",
	TagFont:        "Font",
	TagPixmap:      "Pixmap",
	TagBrush:       "Brush",
	TagColor:       "Color",
	TagPalette:     "Palette",
	TagIcon:        "Icon",
	TagImage:       "Image",
	TagPolygon:     "Polygon",
	TagRegion:      "Region",
	TagBitmap:      "Bitmap",
	TagCursor:      "Cursor",
	TagSizePolicy:  "SizePolicy",
	TagKeySequence: "KeySequence",
	TagPen:         "Pen",
	TagTextLength:  "TextLength",
	TagTextFormat:  "TextFormat",
	TagUserType:    "UserType",
}

// GetVariantTagName returns the human-readable name for a variant tag
func GetVariantTagName(tag VariantTag) string {
	if name, exists := VariantTagNames[tag]; exists {
		return name
	}
	return "Unknown"
}

func (t VariantTag) String() string {
	return GetVariantTagName(t)
}
