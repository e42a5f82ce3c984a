// Package wire implements the little-endian cursor reader/writer shared by
// the tx, appendage, and txtype packages, so every consumer shares one
// parse-error shape instead of each package inventing its own.
package wire

import (
	"encoding/binary"
	"fmt"
)

// ErrTruncated is wrapped into every short-read error so callers can test
// for truncation specifically (e.g. to distinguish "too short" from "bad
// value") with errors.Is.
var ErrTruncated = fmt.Errorf("wire: unexpected end of buffer")

// Cursor is a forward-only little-endian byte reader.
type Cursor struct {
	b   []byte
	pos int
}

// NewCursor creates a Cursor reading from b starting at offset 0.
func NewCursor(b []byte) *Cursor {
	return &Cursor{b: b}
}

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int {
	if c.pos >= len(c.b) {
		return 0
	}
	return len(c.b) - c.pos
}

// Pos returns the current read offset.
func (c *Cursor) Pos() int { return c.pos }

// ReadExact reads exactly n bytes and advances the cursor. The returned
// slice aliases the underlying buffer; callers that retain it must copy.
func (c *Cursor) ReadExact(n int) ([]byte, error) {
	if n < 0 || c.Remaining() < n {
		return nil, ErrTruncated
	}
	start := c.pos
	c.pos += n
	return c.b[start:c.pos], nil
}

// ReadU8 reads one byte.
func (c *Cursor) ReadU8() (uint8, error) {
	b, err := c.ReadExact(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadI16LE reads a little-endian signed 16-bit integer.
func (c *Cursor) ReadI16LE() (int16, error) {
	b, err := c.ReadExact(2)
	if err != nil {
		return 0, err
	}
	return int16(binary.LittleEndian.Uint16(b)), nil
}

// ReadI32LE reads a little-endian signed 32-bit integer.
func (c *Cursor) ReadI32LE() (int32, error) {
	b, err := c.ReadExact(4)
	if err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(b)), nil
}

// ReadU32LE reads a little-endian unsigned 32-bit integer.
func (c *Cursor) ReadU32LE() (uint32, error) {
	b, err := c.ReadExact(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadI64LE reads a little-endian signed 64-bit integer.
func (c *Cursor) ReadI64LE() (int64, error) {
	b, err := c.ReadExact(8)
	if err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(b)), nil
}

// ReadU64LE reads a little-endian unsigned 64-bit integer.
func (c *Cursor) ReadU64LE() (uint64, error) {
	b, err := c.ReadExact(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// ReadU16LE reads a little-endian unsigned 16-bit integer, used by
// appendages for their own length-prefixed sub-fields (e.g. message text).
func (c *Cursor) ReadU16LE() (uint16, error) {
	b, err := c.ReadExact(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// AppendU16LE appends v as a 2-byte little-endian value to dst.
func AppendU16LE(dst []byte, v uint16) []byte {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	return append(dst, buf[:]...)
}

// AppendI32LE appends v as a 4-byte little-endian value to dst.
func AppendI32LE(dst []byte, v int32) []byte {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(v))
	return append(dst, buf[:]...)
}

// AppendU32LE appends v as a 4-byte little-endian value to dst.
func AppendU32LE(dst []byte, v uint32) []byte {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	return append(dst, buf[:]...)
}

// AppendI64LE appends v as an 8-byte little-endian value to dst.
func AppendI64LE(dst []byte, v int64) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(v))
	return append(dst, buf[:]...)
}

// AppendU64LE appends v as an 8-byte little-endian value to dst.
func AppendU64LE(dst []byte, v uint64) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	return append(dst, buf[:]...)
}
