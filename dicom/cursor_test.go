package dicom

import (
	"encoding/binary"
	stderrors "errors"
	"testing"

	"github.com/caio-sobreiro/dicomfile/errors"
	"github.com/caio-sobreiro/dicomfile/types"
)

func TestCursor_Reads(t *testing.T) {
	buf := []byte{
		0x10, 0x00, 0x20, 0x00, // tag (0010,0020)
		0x34, 0x12, // uint16
		0xFE, 0xFF, 0xFF, 0xFF, // int32 -2
		0x00, 0x00, 0xC0, 0x3F, // float32 1.5
	}
	c := NewCursor(buf, binary.LittleEndian)

	tag, err := c.Tag()
	if err != nil || tag != (types.Tag{Group: 0x0010, Element: 0x0020}) {
		t.Fatalf("Tag() = %s, %v", tag, err)
	}
	if v, err := c.Uint16(); err != nil || v != 0x1234 {
		t.Errorf("Uint16() = %#x, %v", v, err)
	}
	if v, err := c.Int32(); err != nil || v != -2 {
		t.Errorf("Int32() = %d, %v", v, err)
	}
	if v, err := c.Float32(); err != nil || v != 1.5 {
		t.Errorf("Float32() = %v, %v", v, err)
	}
	if c.Remaining() != 0 || c.Offset() != len(buf) {
		t.Errorf("Offset() = %d, Remaining() = %d", c.Offset(), c.Remaining())
	}
}

func TestCursor_BigEndian(t *testing.T) {
	c := NewCursor([]byte{0x12, 0x34, 0x00, 0x00, 0x00, 0x01}, binary.BigEndian)
	if v, _ := c.Uint16(); v != 0x1234 {
		t.Errorf("Uint16() = %#x", v)
	}
	if v, _ := c.Uint32(); v != 1 {
		t.Errorf("Uint32() = %d", v)
	}

	c = NewCursor([]byte{0x01, 0x00}, binary.BigEndian)
	c.SetByteOrder(binary.LittleEndian)
	if v, _ := c.Uint16(); v != 1 {
		t.Errorf("Uint16() after SetByteOrder = %d", v)
	}
}

func TestCursor_OutOfData(t *testing.T) {
	c := NewCursor([]byte{1, 2, 3}, nil)

	if _, err := c.Uint32(); !stderrors.Is(err, errors.ErrOutOfData) {
		t.Errorf("Uint32() error = %v, want ErrOutOfData", err)
	}
	if c.Offset() != 0 {
		t.Errorf("failed read moved the offset to %d", c.Offset())
	}
	if err := c.Skip(-1); !stderrors.Is(err, errors.ErrOutOfData) || c.Offset() != 0 {
		t.Errorf("Skip(-1) = %v at offset %d", err, c.Offset())
	}

	p, err := c.Peek(2)
	if err != nil || p[0] != 1 || c.Offset() != 0 {
		t.Errorf("Peek(2) = %v, %v at offset %d", p, err, c.Offset())
	}
	b, err := c.Bytes(3)
	if err != nil || len(b) != 3 {
		t.Fatalf("Bytes(3) = %v, %v", b, err)
	}
	if _, err := c.Uint8(); !stderrors.Is(err, errors.ErrOutOfData) {
		t.Errorf("Uint8() at end error = %v", err)
	}
}

func TestCursor_BytesAliasBuffer(t *testing.T) {
	buf := []byte{1, 2, 3, 4}
	c := NewCursor(buf, binary.LittleEndian)
	_ = c.Skip(1)
	b, _ := c.Bytes(2)
	if &b[0] != &buf[1] {
		t.Error("Bytes() copied instead of slicing")
	}
	if cap(b) != 2 {
		t.Errorf("cap = %d, want 2", cap(b))
	}
}
