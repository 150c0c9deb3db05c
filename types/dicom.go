// Package types contains the DICOM value types shared by every other package:
// tags, value representations, transfer syntax and SOP class registries.
package types

import (
	"fmt"
	"strconv"
	"strings"
)

// VR is a two-character Value Representation code (PS3.5 6.2).
type VR string

// VR (Value Representation) constants for DICOM data elements
const (
	VR_AE VR = "AE" // Application Entity
	VR_AS VR = "AS" // Age String
	VR_AT VR = "AT" // Attribute Tag
	VR_CS VR = "CS" // Code String
	VR_DA VR = "DA" // Date
	VR_DS VR = "DS" // Decimal String
	VR_DT VR = "DT" // Date Time
	VR_FL VR = "FL" // Floating Point Single
	VR_FD VR = "FD" // Floating Point Double
	VR_IS VR = "IS" // Integer String
	VR_LO VR = "LO" // Long String
	VR_LT VR = "LT" // Long Text
	VR_OB VR = "OB" // Other Byte
	VR_OD VR = "OD" // Other Double
	VR_OF VR = "OF" // Other Float
	VR_OL VR = "OL" // Other Long
	VR_OV VR = "OV" // Other Very Long
	VR_OW VR = "OW" // Other Word
	VR_PN VR = "PN" // Person Name
	VR_SH VR = "SH" // Short String
	VR_SL VR = "SL" // Signed Long
	VR_SQ VR = "SQ" // Sequence of Items
	VR_SS VR = "SS" // Signed Short
	VR_ST VR = "ST" // Short Text
	VR_SV VR = "SV" // Signed Very Long
	VR_TM VR = "TM" // Time
	VR_UC VR = "UC" // Unlimited Characters
	VR_UI VR = "UI" // Unique Identifier
	VR_UL VR = "UL" // Unsigned Long
	VR_UN VR = "UN" // Unknown
	VR_UR VR = "UR" // Universal Resource
	VR_US VR = "US" // Unsigned Short
	VR_UT VR = "UT" // Unlimited Text
	VR_UV VR = "UV" // Unsigned Very Long
)

// Category is the value shape a VR decodes to.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryNumeric
	CategoryText
	CategoryDateTime
	CategoryUID
	CategoryTagList
	CategoryBinary
	CategorySequence
)

func (c Category) String() string {
	switch c {
	case CategoryNumeric:
		return "numeric"
	case CategoryText:
		return "text"
	case CategoryDateTime:
		return "date-time"
	case CategoryUID:
		return "uid"
	case CategoryTagList:
		return "tag-list"
	case CategoryBinary:
		return "binary"
	case CategorySequence:
		return "sequence"
	default:
		return "unknown"
	}
}

type vrInfo struct {
	category    Category
	longLength  bool
	elementSize int
	multiValued bool
}

var vrTable = map[VR]vrInfo{
	VR_AE: {CategoryText, false, 0, true},
	VR_AS: {CategoryText, false, 0, true},
	VR_CS: {CategoryText, false, 0, true},
	VR_DS: {CategoryText, false, 0, true},
	VR_IS: {CategoryText, false, 0, true},
	VR_LO: {CategoryText, false, 0, true},
	VR_LT: {CategoryText, false, 0, false},
	VR_PN: {CategoryText, false, 0, true},
	VR_SH: {CategoryText, false, 0, true},
	VR_ST: {CategoryText, false, 0, false},
	VR_UC: {CategoryText, true, 0, true},
	VR_UR: {CategoryText, true, 0, false},
	VR_UT: {CategoryText, true, 0, false},
	VR_DA: {CategoryDateTime, false, 0, true},
	VR_DT: {CategoryDateTime, false, 0, true},
	VR_TM: {CategoryDateTime, false, 0, true},
	VR_UI: {CategoryUID, false, 0, true},
	VR_AT: {CategoryTagList, false, 4, true},
	VR_SS: {CategoryNumeric, false, 2, true},
	VR_US: {CategoryNumeric, false, 2, true},
	VR_SL: {CategoryNumeric, false, 4, true},
	VR_UL: {CategoryNumeric, false, 4, true},
	VR_FL: {CategoryNumeric, false, 4, true},
	VR_FD: {CategoryNumeric, false, 8, true},
	VR_SV: {CategoryNumeric, true, 8, true},
	VR_UV: {CategoryNumeric, true, 8, true},
	VR_OB: {CategoryBinary, true, 1, false},
	VR_OD: {CategoryBinary, true, 8, false},
	VR_OF: {CategoryBinary, true, 4, false},
	VR_OL: {CategoryBinary, true, 4, false},
	VR_OV: {CategoryBinary, true, 8, false},
	VR_OW: {CategoryBinary, true, 2, false},
	VR_UN: {CategoryBinary, true, 1, false},
	VR_SQ: {CategorySequence, true, 0, false},
}

// ParseVR validates a two-byte code read from an explicit VR stream.
func ParseVR(code string) (VR, bool) {
	vr := VR(code)
	_, ok := vrTable[vr]
	return vr, ok
}

// Category returns the value shape of the VR.
func (vr VR) Category() Category {
	return vrTable[vr].category
}

// HasLongLength reports whether the explicit VR encoding uses two reserved
// bytes followed by a 32-bit length (PS3.5 7.1.2).
func (vr VR) HasLongLength() bool {
	return vrTable[vr].longLength
}

// ElementSize is the byte width of one value for fixed-width VRs, 0 otherwise.
func (vr VR) ElementSize() int {
	return vrTable[vr].elementSize
}

// IsMultiValued reports whether backslash separates values of this VR.
func (vr VR) IsMultiValued() bool {
	return vrTable[vr].multiValued
}

// PadByte returns the byte used to pad odd-length values.
func (vr VR) PadByte() byte {
	switch vr.Category() {
	case CategoryUID, CategoryBinary:
		return 0x00
	default:
		return ' '
	}
}

func (vr VR) String() string {
	return string(vr)
}

// Tag represents a DICOM tag (group, element)
type Tag struct {
	Group   uint16
	Element uint16
}

// Reserved and frequently used tags
var (
	ItemTag                 = Tag{0xFFFE, 0xE000}
	ItemDelimitationTag     = Tag{0xFFFE, 0xE00D}
	SequenceDelimitationTag = Tag{0xFFFE, 0xE0DD}

	FileMetaInformationGroupLengthTag = Tag{0x0002, 0x0000}
	MediaStorageSOPClassUIDTag        = Tag{0x0002, 0x0002}
	MediaStorageSOPInstanceUIDTag     = Tag{0x0002, 0x0003}
	TransferSyntaxUIDTag              = Tag{0x0002, 0x0010}

	SpecificCharacterSetTag = Tag{0x0008, 0x0005}
	SOPClassUIDTag          = Tag{0x0008, 0x0016}
	SOPInstanceUIDTag       = Tag{0x0008, 0x0018}

	SamplesPerPixelTag           = Tag{0x0028, 0x0002}
	PhotometricInterpretationTag = Tag{0x0028, 0x0004}
	PlanarConfigurationTag       = Tag{0x0028, 0x0006}
	NumberOfFramesTag            = Tag{0x0028, 0x0008}
	RowsTag                      = Tag{0x0028, 0x0010}
	ColumnsTag                   = Tag{0x0028, 0x0011}
	BitsAllocatedTag             = Tag{0x0028, 0x0100}
	BitsStoredTag                = Tag{0x0028, 0x0101}
	HighBitTag                   = Tag{0x0028, 0x0102}
	PixelRepresentationTag       = Tag{0x0028, 0x0103}
	WindowCenterTag              = Tag{0x0028, 0x1050}
	WindowWidthTag               = Tag{0x0028, 0x1051}
	RescaleInterceptTag          = Tag{0x0028, 0x1052}
	RescaleSlopeTag              = Tag{0x0028, 0x1053}

	PixelDataTag = Tag{0x7FE0, 0x0010}
)

// String returns the tag as a string in (GGGG,EEEE) format
func (t Tag) String() string {
	return fmt.Sprintf("(%04x,%04x)", t.Group, t.Element)
}

// Uint32 packs the tag as group<<16 | element.
func (t Tag) Uint32() uint32 {
	return uint32(t.Group)<<16 | uint32(t.Element)
}

// TagFromUint32 is the inverse of Tag.Uint32.
func TagFromUint32(v uint32) Tag {
	return Tag{Group: uint16(v >> 16), Element: uint16(v)}
}

// Compare orders tags by group, then element.
func (t Tag) Compare(o Tag) int {
	switch a, b := t.Uint32(), o.Uint32(); {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Less reports whether t sorts before o.
func (t Tag) Less(o Tag) bool {
	return t.Compare(o) < 0
}

// IsPrivate reports whether the tag belongs to an odd (vendor) group.
func (t Tag) IsPrivate() bool {
	return t.Group%2 == 1
}

// IsMetaElement reports whether the tag is part of the file meta group.
func (t Tag) IsMetaElement() bool {
	return t.Group == 0x0002
}

// IsStructural reports whether the tag is an item or delimiter (group FFFE).
func (t Tag) IsStructural() bool {
	return t.Group == 0xFFFE
}

// ParseTag accepts "(gggg,eeee)", "gggg,eeee" or "ggggeeee".
func ParseTag(s string) (Tag, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
	var g, e string
	if i := strings.IndexByte(s, ','); i >= 0 {
		g, e = s[:i], s[i+1:]
	} else if len(s) == 8 {
		g, e = s[:4], s[4:]
	} else {
		return Tag{}, fmt.Errorf("malformed tag %q", s)
	}
	group, err := strconv.ParseUint(strings.TrimSpace(g), 16, 16)
	if err != nil {
		return Tag{}, fmt.Errorf("malformed tag group %q: %w", g, err)
	}
	element, err := strconv.ParseUint(strings.TrimSpace(e), 16, 16)
	if err != nil {
		return Tag{}, fmt.Errorf("malformed tag element %q: %w", e, err)
	}
	return Tag{Group: uint16(group), Element: uint16(element)}, nil
}
