package dicom

import (
	"encoding/binary"
	stderrors "errors"
	"reflect"
	"testing"

	"github.com/caio-sobreiro/dicomfile/dictionary"
	"github.com/caio-sobreiro/dicomfile/errors"
	"github.com/caio-sobreiro/dicomfile/types"
)

var (
	patientNameTag   = types.Tag{Group: 0x0010, Element: 0x0010}
	patientIDTag     = types.Tag{Group: 0x0010, Element: 0x0020}
	refImageSeqTag   = types.Tag{Group: 0x0008, Element: 0x1140}
	refSOPInstTag    = types.Tag{Group: 0x0008, Element: 0x1155}
	imageTypeTag     = types.Tag{Group: 0x0008, Element: 0x0008}
	imageCommentsTag = types.Tag{Group: 0x0020, Element: 0x4000}
)

func TestParseDataset_ImplicitPatientName(t *testing.T) {
	body := implicitLE(0x0010, 0x0010, []byte("Test^Patient"))

	ds, err := ParseDataset(body, "")
	if err != nil {
		t.Fatalf("ParseDataset() error = %v", err)
	}
	if ds.Len() != 1 {
		t.Errorf("Len() = %d, want 1", ds.Len())
	}
	e, ok := ds.GetByName("PatientName")
	if !ok {
		t.Fatal("PatientName not found")
	}
	if e.VR != types.VR_PN {
		t.Errorf("VR = %s, want PN from dictionary", e.VR)
	}
	if got := e.Strings(); !reflect.DeepEqual(got, []string{"Test^Patient"}) {
		t.Errorf("value = %q", got)
	}
	if e.Offset != 0 || e.Length != 12 {
		t.Errorf("Offset, Length = %d, %d", e.Offset, e.Length)
	}
}

func TestParseDataset_TextValues(t *testing.T) {
	tests := []struct {
		name string
		elem []byte
		tag  types.Tag
		want []string
	}{
		{"space pad removed", explicitLE(0x0010, 0x0020, "LO", []byte("ABC ")), patientIDTag, []string{"ABC"}},
		{"nul pad removed from UI", explicitLE(0x0008, 0x1155, "UI", []byte("1.2.3\x00")), refSOPInstTag, []string{"1.2.3"}},
		{"only one pad byte removed", explicitLE(0x0010, 0x0020, "LO", []byte("AB  ")), patientIDTag, []string{"AB "}},
		{"leading spaces kept", explicitLE(0x0010, 0x0020, "LO", []byte("  AB")), patientIDTag, []string{"  AB"}},
		{"multi-valued split", explicitLE(0x0008, 0x0008, "CS", []byte(`ORIGINAL\PRIMARY`)), imageTypeTag, []string{"ORIGINAL", "PRIMARY"}},
		{"empty value kept", explicitLE(0x0008, 0x0008, "CS", []byte(`A\\B `)), imageTypeTag, []string{"A", "", "B"}},
		{"LT never split", explicitLE(0x0020, 0x4000, "LT", []byte(`a\b`+" ")), imageCommentsTag, []string{`a\b`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := ParseDataset(tt.elem, types.ExplicitVRLittleEndian)
			if err != nil {
				t.Fatalf("ParseDataset() error = %v", err)
			}
			if got := ds.Strings(tt.tag); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Strings() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseDataset_NumericValues(t *testing.T) {
	us := binary.LittleEndian.AppendUint16(nil, 512)
	usMulti := binary.LittleEndian.AppendUint16(binary.LittleEndian.AppendUint16(nil, 1), 2)
	fd := binary.LittleEndian.AppendUint64(nil, 0x3FF8000000000000) // 1.5
	at := []byte{0x10, 0x00, 0x20, 0x00}

	tests := []struct {
		name string
		elem []byte
		tag  types.Tag
		want any
	}{
		{"US scalar", explicitLE(0x0028, 0x0010, "US", us), types.RowsTag, uint16(512)},
		{"US multiple", explicitLE(0x0028, 0x0010, "US", usMulti), types.RowsTag, []uint16{1, 2}},
		{"FD scalar", explicitLE(0x0018, 0x9087, "FD", fd), types.Tag{Group: 0x0018, Element: 0x9087}, 1.5},
		{"AT", explicitLE(0x0020, 0x5000, "AT", at), types.Tag{Group: 0x0020, Element: 0x5000}, types.Tag{Group: 0x0010, Element: 0x0020}},
		{"empty US", explicitLE(0x0028, 0x0010, "US", nil), types.RowsTag, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := ParseDataset(tt.elem, types.ExplicitVRLittleEndian)
			if err != nil {
				t.Fatalf("ParseDataset() error = %v", err)
			}
			e, _ := ds.Get(tt.tag)
			if !reflect.DeepEqual(e.Value, tt.want) {
				t.Errorf("Value = %#v, want %#v", e.Value, tt.want)
			}
		})
	}

	_, err := ParseDataset(explicitLE(0x0028, 0x0010, "US", []byte{1, 2, 3, 4, 5, 6, 7}), types.ExplicitVRLittleEndian)
	if !stderrors.Is(err, errors.ErrMalformedElement) {
		t.Errorf("odd US length: error = %v, want ErrMalformedElement", err)
	}
}

func TestParseDataset_Sequences(t *testing.T) {
	uid := []byte("1.2.3.4\x00")
	inner := explicitLE(0x0008, 0x1155, "UI", uid)

	defined := concat(
		explicitLE(0x0008, 0x1140, "SQ", nil)[:8],
		binary.LittleEndian.AppendUint32(nil, uint32(2*(8+len(inner)))),
		itemLE(types.ItemTag, uint32(len(inner))), inner,
		itemLE(types.ItemTag, uint32(len(inner))), inner,
		explicitLE(0x0010, 0x0020, "LO", []byte("AFTER ")),
	)
	// SQ has a long length: tag(4) VR(2) reserved(2) then the uint32 appended above
	undefined := concat(
		explicitLE(0x0008, 0x1140, "SQ", nil)[:8],
		binary.LittleEndian.AppendUint32(nil, UndefinedLength),
		itemLE(types.ItemTag, UndefinedLength), inner, itemLE(types.ItemDelimitationTag, 0),
		itemLE(types.ItemTag, uint32(len(inner))), inner,
		itemLE(types.SequenceDelimitationTag, 0),
		explicitLE(0x0010, 0x0020, "LO", []byte("AFTER ")),
	)

	for name, body := range map[string][]byte{"defined": defined, "undefined": undefined} {
		t.Run(name, func(t *testing.T) {
			ds, err := ParseDataset(body, types.ExplicitVRLittleEndian)
			if err != nil {
				t.Fatalf("ParseDataset() error = %v", err)
			}
			items, ok := ds.Sequence(refImageSeqTag)
			if !ok || len(items) != 2 {
				t.Fatalf("Sequence() = %d items, %v; want 2", len(items), ok)
			}
			for i, item := range items {
				if got := item.String(refSOPInstTag); got != "1.2.3.4" {
					t.Errorf("item %d ReferencedSOPInstanceUID = %q", i, got)
				}
			}
			if got := ds.String(patientIDTag); got != "AFTER" {
				t.Errorf("element after sequence = %q", got)
			}
		})
	}
}

func TestParseDataset_ImplicitSequence(t *testing.T) {
	inner := implicitLE(0x0008, 0x1155, []byte("1.2\x00"))
	body := concat(
		implicitLE(0x0008, 0x1140, nil)[:4],
		binary.LittleEndian.AppendUint32(nil, UndefinedLength),
		itemLE(types.ItemTag, uint32(len(inner))), inner,
		itemLE(types.SequenceDelimitationTag, 0),
	)
	ds, err := ParseDataset(body, "")
	if err != nil {
		t.Fatalf("ParseDataset() error = %v", err)
	}
	items, ok := ds.Sequence(refImageSeqTag)
	if !ok || len(items) != 1 || items[0].String(refSOPInstTag) != "1.2" {
		t.Errorf("Sequence() = %v, %v", items, ok)
	}
}

func TestParseDataset_ImplicitFunctionalGroups(t *testing.T) {
	pixelSpacing := implicitLE(0x0028, 0x0030, []byte("0.5\\0.5 "))
	pixelMeasures := implicitLE(0x0028, 0x9110, concat(itemLE(types.ItemTag, uint32(len(pixelSpacing))), pixelSpacing))
	frameContent := func(n byte) []byte {
		inner := implicitLE(0x0020, 0x9157, []byte{n, 0, 0, 0})
		seq := implicitLE(0x0020, 0x9111, concat(itemLE(types.ItemTag, uint32(len(inner))), inner))
		return concat(itemLE(types.ItemTag, uint32(len(seq))), seq)
	}
	body := concat(
		implicitLE(0x0028, 0x0008, []byte("2 ")),
		implicitLE(0x5200, 0x9229, concat(itemLE(types.ItemTag, uint32(len(pixelMeasures))), pixelMeasures)),
		implicitLE(0x5200, 0x9230, concat(frameContent(1), frameContent(2))),
		implicitLE(0x7FE0, 0x0010, []byte{1, 2}),
	)

	ds, err := ParseDataset(body, "")
	if err != nil {
		t.Fatalf("ParseDataset() error = %v", err)
	}

	shared, ok := ds.GetByName("SharedFunctionalGroupsSequence")
	if !ok {
		t.Fatal("SharedFunctionalGroupsSequence not found")
	}
	if shared.VR != types.VR_SQ || shared.Sequence() == nil {
		t.Fatalf("shared groups = %s %T, want SQ sequence", shared.VR, shared.Value)
	}
	items := shared.Sequence().Items
	if len(items) != 1 {
		t.Fatalf("shared groups hold %d items, want 1", len(items))
	}
	measures, ok := items[0].Sequence(types.Tag{Group: 0x0028, Element: 0x9110})
	if !ok || len(measures) != 1 {
		t.Fatalf("PixelMeasuresSequence = %v, %v", measures, ok)
	}
	spacing, _ := measures[0].GetByName("PixelSpacing")
	if spacing == nil || !reflect.DeepEqual(spacing.Strings(), []string{"0.5", "0.5"}) {
		t.Errorf("PixelSpacing = %v", spacing)
	}

	perFrame, ok := ds.GetByName("PerFrameFunctionalGroupsSequence")
	if !ok || perFrame.Sequence() == nil || len(perFrame.Sequence().Items) != 2 {
		t.Fatalf("PerFrameFunctionalGroupsSequence = %v, %v", perFrame, ok)
	}
	for i, item := range perFrame.Sequence().Items {
		content, ok := item.Sequence(types.Tag{Group: 0x0020, Element: 0x9111})
		if !ok || len(content) != 1 {
			t.Fatalf("frame %d FrameContentSequence = %v, %v", i, content, ok)
		}
		idx, _ := content[0].GetByName("DimensionIndexValues")
		if idx == nil || idx.Value != uint32(i+1) {
			t.Errorf("frame %d DimensionIndexValues = %v", i, idx)
		}
	}

	if e, ok := ds.Get(types.PixelDataTag); !ok || !reflect.DeepEqual(e.Bytes(), []byte{1, 2}) {
		t.Errorf("element after functional groups = %v, %v", e, ok)
	}
}

func TestParseDataset_UNUndefinedLength(t *testing.T) {
	// private UN with undefined length holds an implicit VR sequence
	inner := implicitLE(0x0010, 0x0020, []byte("PRIV"))
	body := concat(
		explicitLE(0x0009, 0x1001, "UN", nil)[:8],
		binary.LittleEndian.AppendUint32(nil, UndefinedLength),
		itemLE(types.ItemTag, UndefinedLength), inner, itemLE(types.ItemDelimitationTag, 0),
		itemLE(types.SequenceDelimitationTag, 0),
		explicitLE(0x0010, 0x0010, "PN", []byte("X^Y ")),
	)
	ds, err := ParseDataset(body, types.ExplicitVRLittleEndian)
	if err != nil {
		t.Fatalf("ParseDataset() error = %v", err)
	}
	items, ok := ds.Sequence(types.Tag{Group: 0x0009, Element: 0x1001})
	if !ok || len(items) != 1 {
		t.Fatalf("Sequence() = %v, %v", items, ok)
	}
	if got := items[0].String(patientIDTag); got != "PRIV" {
		t.Errorf("nested PatientID = %q", got)
	}
	if got := ds.String(patientNameTag); got != "X^Y" {
		t.Errorf("PatientName = %q", got)
	}
}

func TestParseDataset_EncapsulatedPixelData(t *testing.T) {
	frag := []byte{0xFF, 0xD8, 0xFF, 0xD9}
	body := concat(
		explicitLE(0x0010, 0x0010, "PN", []byte("Meta^Only ")),
		explicitLE(0x0028, 0x0010, "US", binary.LittleEndian.AppendUint16(nil, 1)),
		explicitLE(0x0028, 0x0011, "US", binary.LittleEndian.AppendUint16(nil, 2)),
		explicitLE(0x0028, 0x0100, "US", binary.LittleEndian.AppendUint16(nil, 8)),
		explicitLE(0x7FE0, 0x0010, "OB", nil)[:8],
		binary.LittleEndian.AppendUint32(nil, UndefinedLength),
		itemLE(types.ItemTag, 4), binary.LittleEndian.AppendUint32(nil, 0),
		itemLE(types.ItemTag, uint32(len(frag))), frag,
		itemLE(types.SequenceDelimitationTag, 0),
	)

	ds, err := ParseDataset(body, types.JPEGBaseline8Bit)
	if err != nil {
		t.Fatalf("ParseDataset() error = %v", err)
	}
	e, ok := ds.Get(types.PixelDataTag)
	if !ok {
		t.Fatal("PixelData missing")
	}
	px, ok := e.Value.(*EncapsulatedPixelData)
	if !ok {
		t.Fatalf("Value = %T, want *EncapsulatedPixelData", e.Value)
	}
	if !reflect.DeepEqual(px.Offsets, []uint32{0}) || !reflect.DeepEqual(px.Fragments, [][]byte{frag}) {
		t.Errorf("pixel data = %+v", px)
	}

	buf, err := ds.PixelData()
	if !stderrors.Is(err, errors.ErrExternalCodecRequired) {
		t.Fatalf("PixelData() error = %v, want ErrExternalCodecRequired", err)
	}
	if buf == nil || buf.Encoded == nil || len(buf.Encoded.Frames) != 1 {
		t.Fatalf("PixelData() buffer = %+v", buf)
	}
	// metadata stays usable
	if got := ds.String(patientNameTag); got != "Meta^Only" {
		t.Errorf("PatientName = %q", got)
	}
}

func TestParseDataset_VRMismatch(t *testing.T) {
	// Rows is US in the dictionary
	body := explicitLE(0x0028, 0x0010, "SS", binary.LittleEndian.AppendUint16(nil, 0xFFFF))
	ds, err := ParseDataset(body, types.ExplicitVRLittleEndian)
	if err != nil {
		t.Fatalf("ParseDataset() error = %v", err)
	}
	e, _ := ds.Get(types.RowsTag)
	if !e.VRMismatch {
		t.Error("VRMismatch = false")
	}
	if e.VR != types.VR_SS || e.Value != int16(-1) {
		t.Errorf("element = %s %v, want explicit SS -1", e.VR, e.Value)
	}

	// OW for Pixel Data is an accepted alternative
	ds, err = ParseDataset(explicitLE(0x7FE0, 0x0010, "OW", []byte{1, 2}), types.ExplicitVRLittleEndian)
	if err != nil {
		t.Fatal(err)
	}
	if e, _ := ds.Get(types.PixelDataTag); e.VRMismatch {
		t.Error("OW pixel data flagged as mismatch")
	}
}

func TestParseDataset_UnknownImplicitTag(t *testing.T) {
	body := implicitLE(0x0009, 0x1010, []byte{1, 2, 3, 4})

	ds, err := ParseDataset(body, "")
	if err != nil {
		t.Fatalf("ParseDataset() error = %v", err)
	}
	e, _ := ds.Get(types.Tag{Group: 0x0009, Element: 0x1010})
	if e.VR != types.VR_UN || !reflect.DeepEqual(e.Bytes(), []byte{1, 2, 3, 4}) {
		t.Errorf("element = %v", e)
	}

	_, err = ParseDataset(body, "", WithUnknownVRPolicy(UnknownVRError))
	if !stderrors.Is(err, errors.ErrMalformedElement) {
		t.Errorf("error = %v, want ErrMalformedElement", err)
	}

	dict := dictionary.New(map[types.Tag]dictionary.Entry{
		{Group: 0x0009, Element: 0x1010}: {VR: types.VR_UL, Name: "VendorCounter", VM: "1"},
	})
	ds, err = ParseDataset(body, "", WithDictionary(dict))
	if err != nil {
		t.Fatalf("ParseDataset() with dictionary error = %v", err)
	}
	if e, ok := ds.GetByName("VendorCounter"); !ok || e.Value != uint32(0x04030201) {
		t.Errorf("VendorCounter = %v, %v", e, ok)
	}
}

func TestParseDataset_Errors(t *testing.T) {
	name := explicitLE(0x0010, 0x0010, "PN", []byte("Truncated^Name"))
	inner := explicitLE(0x0010, 0x0020, "LO", []byte("ABCD"))
	rows := explicitLE(0x0028, 0x0010, "US", binary.LittleEndian.AppendUint16(nil, 512))

	tests := []struct {
		name string
		body []byte
		kind error
		tag  types.Tag
	}{
		{
			name: "value past end of buffer",
			body: name[:len(name)-4],
			kind: errors.ErrOutOfData,
			tag:  patientNameTag,
		},
		{
			name: "header past end of buffer",
			body: name[:6],
			kind: errors.ErrOutOfData,
			tag:  patientNameTag,
		},
		{
			name: "US length field cut short",
			body: rows[:len(rows)-3],
			kind: errors.ErrOutOfData,
			tag:  types.RowsTag,
		},
		{
			name: "US value cut short",
			body: rows[:len(rows)-1],
			kind: errors.ErrOutOfData,
			tag:  types.RowsTag,
		},
		{
			name: "US after complete element",
			body: concat(name, rows[:len(rows)-3]),
			kind: errors.ErrOutOfData,
			tag:  types.RowsTag,
		},
		{
			name: "invalid VR",
			body: explicitLE(0x0010, 0x0010, "ZZ", []byte("AB")),
			kind: errors.ErrMalformedElement,
			tag:  patientNameTag,
		},
		{
			name: "element overruns item",
			body: concat(
				explicitLE(0x0008, 0x1140, "SQ", nil)[:8],
				binary.LittleEndian.AppendUint32(nil, UndefinedLength),
				itemLE(types.ItemTag, uint32(len(inner)-2)), inner,
				itemLE(types.SequenceDelimitationTag, 0),
			),
			kind: errors.ErrMalformedElement,
			tag:  patientIDTag,
		},
		{
			name: "missing sequence delimiter",
			body: concat(
				explicitLE(0x0008, 0x1140, "SQ", nil)[:8],
				binary.LittleEndian.AppendUint32(nil, UndefinedLength),
				itemLE(types.ItemTag, uint32(len(inner))), inner,
			),
			kind: errors.ErrOutOfData,
			tag:  refImageSeqTag,
		},
		{
			name: "stray item delimiter",
			body: itemLE(types.ItemDelimitationTag, 0),
			kind: errors.ErrMalformedElement,
			tag:  types.ItemDelimitationTag,
		},
		{
			name: "undefined length on text",
			body: concat(explicitLE(0x0010, 0x0020, "UT", nil)[:8], binary.LittleEndian.AppendUint32(nil, UndefinedLength)),
			kind: errors.ErrMalformedElement,
			tag:  patientIDTag,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := ParseDataset(tt.body, types.ExplicitVRLittleEndian)
			if ds != nil {
				t.Error("partial dataset returned")
			}
			if !stderrors.Is(err, tt.kind) {
				t.Fatalf("error = %v, want %v", err, tt.kind)
			}
			var elemErr *errors.ElementError
			if !stderrors.As(err, &elemErr) {
				t.Fatalf("error %T is not an ElementError", err)
			}
			if elemErr.Tag != tt.tag {
				t.Errorf("error tag = %s, want %s", elemErr.Tag, tt.tag)
			}
		})
	}
}

func TestParseDataset_Limits(t *testing.T) {
	t.Run("element length", func(t *testing.T) {
		body := explicitLE(0x0010, 0x0010, "PN", []byte("LONGER^THAN^EIGHT"))
		_, err := ParseDataset(body, types.ExplicitVRLittleEndian, WithLimits(Limits{MaxElementLength: 8}))
		if !stderrors.Is(err, errors.ErrLimitExceeded) {
			t.Errorf("error = %v, want ErrLimitExceeded", err)
		}
	})

	t.Run("nesting depth", func(t *testing.T) {
		// three nested undefined-length sequences
		open := concat(explicitLE(0x0008, 0x1140, "SQ", nil)[:8], binary.LittleEndian.AppendUint32(nil, UndefinedLength), itemLE(types.ItemTag, UndefinedLength))
		closing := concat(itemLE(types.ItemDelimitationTag, 0), itemLE(types.SequenceDelimitationTag, 0))
		body := concat(open, open, open, closing, closing, closing)

		if _, err := ParseDataset(body, types.ExplicitVRLittleEndian); err != nil {
			t.Fatalf("default limits: error = %v", err)
		}
		_, err := ParseDataset(body, types.ExplicitVRLittleEndian, WithLimits(Limits{MaxDepth: 2}))
		if !stderrors.Is(err, errors.ErrLimitExceeded) {
			t.Errorf("error = %v, want ErrLimitExceeded", err)
		}
	})
}

func TestParseDataset_CharacterSet(t *testing.T) {
	// "Müller" in ISO 8859-1
	latin1 := []byte{'M', 0xFC, 'l', 'l', 'e', 'r'}
	body := concat(
		explicitLE(0x0008, 0x0005, "CS", []byte("ISO_IR 100")),
		explicitLE(0x0010, 0x0010, "PN", latin1),
	)

	ds, err := ParseDataset(body, types.ExplicitVRLittleEndian)
	if err != nil {
		t.Fatalf("ParseDataset() error = %v", err)
	}
	if got := ds.String(patientNameTag); got != "Müller" {
		t.Errorf("PatientName = %q, want Müller", got)
	}

	ds, err = ParseDataset(body, types.ExplicitVRLittleEndian, WithCharacterSet(false))
	if err != nil {
		t.Fatal(err)
	}
	if got := ds.String(patientNameTag); got != string(latin1) {
		t.Errorf("PatientName without decoding = %q", got)
	}
}

func TestParseDataset_MultibyteBackslash(t *testing.T) {
	// 乗 is 0x81 0x5C in both GBK and GB18030; 王 is 0xCD 0xF5
	value := []byte{0x81, 0x5C, '\\', 0xCD, 0xF5, ' '}

	for _, term := range []string{"GBK", "GB18030"} {
		t.Run(term, func(t *testing.T) {
			body := concat(
				explicitLE(0x0008, 0x0005, "CS", []byte(term+" ")),
				explicitLE(0x0010, 0x0010, "PN", value),
			)
			ds, err := ParseDataset(body, types.ExplicitVRLittleEndian)
			if err != nil {
				t.Fatalf("ParseDataset() error = %v", err)
			}
			if got := ds.Strings(patientNameTag); !reflect.DeepEqual(got, []string{"乗", "王"}) {
				t.Errorf("PatientName = %q, want [乗 王]", got)
			}
		})
	}
}

func TestLookupEncoding(t *testing.T) {
	tests := []struct {
		terms   []string
		wantNil bool
		wantErr bool
	}{
		{nil, true, false},
		{[]string{"ISO_IR 192"}, true, false},
		{[]string{"", "ISO 2022 IR 100"}, false, false},
		{[]string{"ISO_IR 144"}, false, false},
		{[]string{"NOT A CHARSET"}, true, true},
	}
	for _, tt := range tests {
		enc, err := lookupEncoding(tt.terms)
		if (err != nil) != tt.wantErr {
			t.Errorf("lookupEncoding(%q) error = %v", tt.terms, err)
		}
		if (enc == nil) != tt.wantNil {
			t.Errorf("lookupEncoding(%q) = %v", tt.terms, enc)
		}
	}
}
