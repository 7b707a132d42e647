// Package protocol implements the wire layer spoken by a plv pipeline server:
// length-prefixed frames, the big-endian cursor used to walk a frame body and
// the 12-byte acknowledgement the client returns for every frame.
//
// The body encoding follows Qt 4's QDataStream. Strings are UTF-16BE with a
// u32 byte length, byte arrays carry a u32 length, and 0xFFFFFFFF marks null
// for both.
package protocol
