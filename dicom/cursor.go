package dicom

import (
	"encoding/binary"
	"math"

	"github.com/caio-sobreiro/dicomfile/errors"
	"github.com/caio-sobreiro/dicomfile/types"
)

// Cursor is a bounded, endian-aware reader over an immutable byte buffer.
// Every read either consumes exactly the requested bytes or fails with
// errors.ErrOutOfData and leaves the offset unchanged.
type Cursor struct {
	buf   []byte
	off   int
	order binary.ByteOrder
}

// NewCursor returns a cursor at offset 0 reading with the given byte order.
func NewCursor(buf []byte, order binary.ByteOrder) *Cursor {
	if order == nil {
		order = binary.LittleEndian
	}
	return &Cursor{buf: buf, order: order}
}

// ByteOrder returns the byte order used for multi-byte reads.
func (c *Cursor) ByteOrder() binary.ByteOrder {
	return c.order
}

// SetByteOrder switches the byte order for subsequent reads.
func (c *Cursor) SetByteOrder(order binary.ByteOrder) {
	c.order = order
}

// Offset returns the current read position.
func (c *Cursor) Offset() int {
	return c.off
}

// Len returns the size of the underlying buffer.
func (c *Cursor) Len() int {
	return len(c.buf)
}

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int {
	return len(c.buf) - c.off
}

func (c *Cursor) take(n int) ([]byte, error) {
	if n < 0 || n > c.Remaining() {
		return nil, errors.ErrOutOfData
	}
	b := c.buf[c.off : c.off+n : c.off+n]
	c.off += n
	return b, nil
}

// Peek returns the next n bytes without consuming them.
func (c *Cursor) Peek(n int) ([]byte, error) {
	if n < 0 || n > c.Remaining() {
		return nil, errors.ErrOutOfData
	}
	return c.buf[c.off : c.off+n : c.off+n], nil
}

// Bytes returns the next n bytes as a sub-slice of the buffer. The result
// aliases the buffer and must not be modified.
func (c *Cursor) Bytes(n int) ([]byte, error) {
	return c.take(n)
}

// Skip advances the offset by n bytes.
func (c *Cursor) Skip(n int) error {
	_, err := c.take(n)
	return err
}

func (c *Cursor) Uint8() (uint8, error) {
	b, err := c.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *Cursor) Uint16() (uint16, error) {
	b, err := c.take(2)
	if err != nil {
		return 0, err
	}
	return c.order.Uint16(b), nil
}

func (c *Cursor) Uint32() (uint32, error) {
	b, err := c.take(4)
	if err != nil {
		return 0, err
	}
	return c.order.Uint32(b), nil
}

func (c *Cursor) Uint64() (uint64, error) {
	b, err := c.take(8)
	if err != nil {
		return 0, err
	}
	return c.order.Uint64(b), nil
}

func (c *Cursor) Int16() (int16, error) {
	v, err := c.Uint16()
	return int16(v), err
}

func (c *Cursor) Int32() (int32, error) {
	v, err := c.Uint32()
	return int32(v), err
}

func (c *Cursor) Int64() (int64, error) {
	v, err := c.Uint64()
	return int64(v), err
}

func (c *Cursor) Float32() (float32, error) {
	v, err := c.Uint32()
	return math.Float32frombits(v), err
}

func (c *Cursor) Float64() (float64, error) {
	v, err := c.Uint64()
	return math.Float64frombits(v), err
}

// Tag reads a group and element pair.
func (c *Cursor) Tag() (types.Tag, error) {
	b, err := c.take(4)
	if err != nil {
		return types.Tag{}, err
	}
	return types.Tag{Group: c.order.Uint16(b[0:2]), Element: c.order.Uint16(b[2:4])}, nil
}
