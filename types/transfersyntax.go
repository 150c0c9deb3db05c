package types

// DICOM Transfer Syntax UIDs as defined in DICOM Part 5, Section 8 and Part 6, Annex A.4
// https://dicom.nema.org/medical/dicom/current/output/chtml/part05/chapter_8.html

// Native (uncompressed) pixel data
const (
	// ImplicitVRLittleEndian is the default transfer syntax; VRs come from the dictionary.
	ImplicitVRLittleEndian = "1.2.840.10008.1.2"
	ExplicitVRLittleEndian = "1.2.840.10008.1.2.1"
	// ExplicitVRBigEndian is retired but still found in archives.
	ExplicitVRBigEndian = "1.2.840.10008.1.2.2"
	// DeflatedExplicitVRLittleEndian deflates everything after the file meta group.
	DeflatedExplicitVRLittleEndian = "1.2.840.10008.1.2.1.99"
)

// JPEG family
const (
	JPEGBaseline8Bit                = "1.2.840.10008.1.2.4.50"
	JPEGExtended12Bit               = "1.2.840.10008.1.2.4.51"
	JPEGLossless                    = "1.2.840.10008.1.2.4.57"
	JPEGLosslessSV1                 = "1.2.840.10008.1.2.4.70"
	JPEGLSLossless                  = "1.2.840.10008.1.2.4.80"
	JPEGLSNearLossless              = "1.2.840.10008.1.2.4.81"
	JPEG2000Lossless                = "1.2.840.10008.1.2.4.90"
	JPEG2000                        = "1.2.840.10008.1.2.4.91"
	JPEG2000Part2MultiComponentLoss = "1.2.840.10008.1.2.4.92"
	JPEG2000Part2MultiComponent     = "1.2.840.10008.1.2.4.93"
	HTJ2KLossless                   = "1.2.840.10008.1.2.4.201"
	HTJ2KLosslessRPCL               = "1.2.840.10008.1.2.4.202"
	HTJ2K                           = "1.2.840.10008.1.2.4.203"
)

// Video
const (
	MPEG2MainProfile           = "1.2.840.10008.1.2.4.100"
	MPEG2MainProfileHighLevel  = "1.2.840.10008.1.2.4.101"
	MPEG4AVCH264HighProfile    = "1.2.840.10008.1.2.4.102"
	HEVCH265MainProfileLevel51 = "1.2.840.10008.1.2.4.107"
)

// RLELossless stores each frame as PackBits-compressed byte planes (PS3.5 Annex G).
const RLELossless = "1.2.840.10008.1.2.5"

// TransferSyntaxInfo provides metadata about a transfer syntax
type TransferSyntaxInfo struct {
	UID          string
	Name         string
	ExplicitVR   bool
	BigEndian    bool
	Deflated     bool
	Encapsulated bool
	IsLossless   bool
	IsRetired    bool
}

// IsCompressed returns true if pixel data or the whole body is compressed.
func (i TransferSyntaxInfo) IsCompressed() bool {
	return i.Encapsulated || i.Deflated
}

// LookupTransferSyntax returns registry information for uid.
func LookupTransferSyntax(uid string) (TransferSyntaxInfo, bool) {
	info, ok := transferSyntaxRegistry[uid]
	return info, ok
}

// GetTransferSyntaxInfo returns information about a transfer syntax UID.
// Unknown UIDs are reported as explicit VR little endian, encapsulated, per PS3.5 A.4.
func GetTransferSyntaxInfo(uid string) *TransferSyntaxInfo {
	info, ok := transferSyntaxRegistry[uid]
	if !ok {
		return &TransferSyntaxInfo{
			UID:          uid,
			Name:         "Unknown",
			ExplicitVR:   true,
			Encapsulated: true,
		}
	}
	return &info
}

// IsCompressed returns true if the transfer syntax uses compression
func IsCompressed(uid string) bool {
	return GetTransferSyntaxInfo(uid).IsCompressed()
}

// IsRetired returns true if the transfer syntax is retired
func IsRetired(uid string) bool {
	return GetTransferSyntaxInfo(uid).IsRetired
}

func encapsulated(uid, name string, lossless bool) TransferSyntaxInfo {
	return TransferSyntaxInfo{UID: uid, Name: name, ExplicitVR: true, Encapsulated: true, IsLossless: lossless}
}

// transferSyntaxRegistry maps transfer syntax UIDs to their information
var transferSyntaxRegistry = map[string]TransferSyntaxInfo{
	ImplicitVRLittleEndian: {
		UID:        ImplicitVRLittleEndian,
		Name:       "Implicit VR Little Endian",
		IsLossless: true,
	},
	ExplicitVRLittleEndian: {
		UID:        ExplicitVRLittleEndian,
		Name:       "Explicit VR Little Endian",
		ExplicitVR: true,
		IsLossless: true,
	},
	ExplicitVRBigEndian: {
		UID:        ExplicitVRBigEndian,
		Name:       "Explicit VR Big Endian",
		ExplicitVR: true,
		BigEndian:  true,
		IsLossless: true,
		IsRetired:  true,
	},
	DeflatedExplicitVRLittleEndian: {
		UID:        DeflatedExplicitVRLittleEndian,
		Name:       "Deflated Explicit VR Little Endian",
		ExplicitVR: true,
		Deflated:   true,
		IsLossless: true,
	},

	JPEGBaseline8Bit:                encapsulated(JPEGBaseline8Bit, "JPEG Baseline (Process 1)", false),
	JPEGExtended12Bit:               encapsulated(JPEGExtended12Bit, "JPEG Extended (Process 2 & 4)", false),
	JPEGLossless:                    encapsulated(JPEGLossless, "JPEG Lossless (Process 14)", true),
	JPEGLosslessSV1:                 encapsulated(JPEGLosslessSV1, "JPEG Lossless, Non-Hierarchical, First-Order Prediction", true),
	JPEGLSLossless:                  encapsulated(JPEGLSLossless, "JPEG-LS Lossless", true),
	JPEGLSNearLossless:              encapsulated(JPEGLSNearLossless, "JPEG-LS Near-Lossless", false),
	JPEG2000Lossless:                encapsulated(JPEG2000Lossless, "JPEG 2000 Lossless Only", true),
	JPEG2000:                        encapsulated(JPEG2000, "JPEG 2000", false),
	JPEG2000Part2MultiComponentLoss: encapsulated(JPEG2000Part2MultiComponentLoss, "JPEG 2000 Part 2 Multi-component Lossless Only", true),
	JPEG2000Part2MultiComponent:     encapsulated(JPEG2000Part2MultiComponent, "JPEG 2000 Part 2 Multi-component", false),
	HTJ2KLossless:                   encapsulated(HTJ2KLossless, "High-Throughput JPEG 2000 Lossless", true),
	HTJ2KLosslessRPCL:               encapsulated(HTJ2KLosslessRPCL, "High-Throughput JPEG 2000 with RPCL Options Lossless", true),
	HTJ2K:                           encapsulated(HTJ2K, "High-Throughput JPEG 2000", false),
	MPEG2MainProfile:                encapsulated(MPEG2MainProfile, "MPEG2 Main Profile @ Main Level", false),
	MPEG2MainProfileHighLevel:       encapsulated(MPEG2MainProfileHighLevel, "MPEG2 Main Profile @ High Level", false),
	MPEG4AVCH264HighProfile:         encapsulated(MPEG4AVCH264HighProfile, "MPEG-4 AVC/H.264 High Profile", false),
	HEVCH265MainProfileLevel51:      encapsulated(HEVCH265MainProfileLevel51, "HEVC/H.265 Main Profile", false),
	RLELossless:                     encapsulated(RLELossless, "RLE Lossless", true),
}
