package dicom

import (
	"fmt"
	"strings"

	"github.com/caio-sobreiro/dicomfile/types"
)

// UndefinedLength marks a sequence, item or pixel data value terminated by a
// delimiter instead of a byte count.
const UndefinedLength uint32 = 0xFFFFFFFF

// Element represents a DICOM data element.
//
// Value holds, by VR category:
//   - numeric: a scalar (uint16, int16, uint32, int32, uint64, int64,
//     float32, float64) when one value is present, a slice of it otherwise
//   - text, date/time, UID: []string, one entry per value
//   - AT: types.Tag, or []types.Tag
//   - binary: []byte
//   - SQ (and UN of undefined length): *Sequence
//   - encapsulated pixel data: *EncapsulatedPixelData
type Element struct {
	Tag types.Tag
	VR  types.VR
	// Length is the value length declared in the stream.
	Length uint32
	Value  any
	// Offset is the position of the element's tag in the parsed buffer.
	Offset int64
	// VRMismatch is set when an explicit VR disagrees with the dictionary.
	VRMismatch bool
}

// Sequence is the value of an SQ element.
type Sequence struct {
	Items []*Dataset
}

// EncapsulatedPixelData holds pixel data stored as fragments (PS3.5 A.4).
type EncapsulatedPixelData struct {
	// Offsets is the basic offset table; empty when the table is empty.
	Offsets []uint32
	// Fragments are the item values following the offset table.
	Fragments [][]byte
}

// IsUndefinedLength reports whether the value was delimiter-terminated.
func (e *Element) IsUndefinedLength() bool {
	return e.Length == UndefinedLength
}

// Strings returns text values, or nil for non-text elements.
func (e *Element) Strings() []string {
	if v, ok := e.Value.([]string); ok {
		return v
	}
	return nil
}

// Sequence returns the sequence value, or nil.
func (e *Element) Sequence() *Sequence {
	if v, ok := e.Value.(*Sequence); ok {
		return v
	}
	return nil
}

// Bytes returns the raw value of binary elements, or nil.
func (e *Element) Bytes() []byte {
	if v, ok := e.Value.([]byte); ok {
		return v
	}
	return nil
}

// ValueString renders the value for display.
func (e *Element) ValueString() string {
	switch v := e.Value.(type) {
	case nil:
		return ""
	case []string:
		return strings.Join(v, `\`)
	case []byte:
		if len(v) > 16 {
			return fmt.Sprintf("% x ... (%d bytes)", v[:16], len(v))
		}
		return fmt.Sprintf("% x", v)
	case *Sequence:
		return fmt.Sprintf("%d items", len(v.Items))
	case *EncapsulatedPixelData:
		return fmt.Sprintf("%d fragments, %d offsets", len(v.Fragments), len(v.Offsets))
	default:
		return fmt.Sprintf("%v", v)
	}
}

func (e *Element) String() string {
	return fmt.Sprintf("%s %s %s", e.Tag, e.VR, e.ValueString())
}
