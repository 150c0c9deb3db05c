package dicom

import (
	"encoding/binary"
	"strings"

	"github.com/caio-sobreiro/dicomfile/types"
)

// Common transfer syntax UIDs
const (
	TransferSyntaxImplicitVRLittleEndian = types.ImplicitVRLittleEndian
	TransferSyntaxExplicitVRLittleEndian = types.ExplicitVRLittleEndian
)

// Syntax is the resolved encoding context of a dataset body.
type Syntax struct {
	UID          string
	ByteOrder    binary.ByteOrder
	ExplicitVR   bool
	Deflated     bool
	Encapsulated bool
	// Known is false when UID is not in the registry. Element structure is
	// then parsed as little endian, explicit VR unless the first element
	// header carries no valid VR code. Pixel decoding is refused.
	Known bool
}

var (
	// MetaSyntax is the encoding of the file meta group, whatever the body uses.
	MetaSyntax = Syntax{UID: types.ExplicitVRLittleEndian, ByteOrder: binary.LittleEndian, ExplicitVR: true, Known: true}

	// ImplicitLittleEndian is the default syntax, also used inside UN
	// values of undefined length.
	ImplicitLittleEndian = Syntax{UID: types.ImplicitVRLittleEndian, ByteOrder: binary.LittleEndian, Known: true}
)

// ResolveSyntax maps a transfer syntax UID to the context used to parse the
// dataset body. An empty UID resolves to implicit VR little endian.
func ResolveSyntax(uid string) Syntax {
	uid = strings.TrimRight(uid, "\x00 ")
	if uid == "" {
		return ImplicitLittleEndian
	}

	info, ok := types.LookupTransferSyntax(uid)
	if !ok {
		return Syntax{UID: uid, ByteOrder: binary.LittleEndian, ExplicitVR: true}
	}

	s := Syntax{
		UID:          uid,
		ByteOrder:    binary.LittleEndian,
		ExplicitVR:   info.ExplicitVR,
		Deflated:     info.Deflated,
		Encapsulated: info.Encapsulated,
		Known:        true,
	}
	if info.BigEndian {
		s.ByteOrder = binary.BigEndian
	}
	return s
}

// sniffVR settles the VR mode of an unregistered syntax from the first
// element header of body.
func (s Syntax) sniffVR(body []byte) Syntax {
	if s.Known || len(body) < 6 {
		return s
	}
	_, ok := types.ParseVR(string(body[4:6]))
	s.ExplicitVR = ok
	return s
}

func (s Syntax) String() string {
	if info, ok := types.LookupTransferSyntax(s.UID); ok {
		return info.Name
	}
	return s.UID
}
