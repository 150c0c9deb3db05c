package dicom

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/encoding"

	"github.com/caio-sobreiro/dicomfile/types"
)

type encoder struct {
	syntax Syntax
	enc    encoding.Encoding
}

// EncodeElement encodes a single element, header included, with the given syntax.
func EncodeElement(e *Element, syntax Syntax) ([]byte, error) {
	en := &encoder{syntax: syntax}
	return en.element(nil, e)
}

// EncodeDataset encodes a dataset to bytes with the given syntax, elements
// in ascending tag order. Text is re-encoded with the dataset's Specific
// Character Set. The deflate step of the deflated syntax is not applied
// here; see EncodeFile.
func EncodeDataset(ds *Dataset, syntax Syntax) ([]byte, error) {
	if ds == nil {
		return nil, nil
	}
	en := &encoder{syntax: syntax}
	if terms := ds.Strings(types.SpecificCharacterSetTag); len(terms) > 0 {
		enc, err := lookupEncoding(terms)
		if err == nil {
			en.enc = enc
		}
	}
	return en.dataset(nil, ds, func(types.Tag) bool { return true })
}

// EncodeFile encodes ds as a Part 10 file: zero preamble, magic marker,
// file meta group with a recomputed group length, then the body in the
// syntax named by (0002,0010).
func EncodeFile(ds *Dataset) ([]byte, error) {
	uid := ds.String(types.TransferSyntaxUIDTag)
	if uid == "" {
		return nil, fmt.Errorf("encode file: missing transfer syntax UID %s", types.TransferSyntaxUIDTag)
	}
	syntax := ResolveSyntax(uid)

	meta := &encoder{syntax: MetaSyntax}
	metaBytes, err := meta.dataset(nil, ds, func(t types.Tag) bool {
		return t.IsMetaElement() && t != types.FileMetaInformationGroupLengthTag
	})
	if err != nil {
		return nil, fmt.Errorf("encode file meta information: %w", err)
	}

	body := &encoder{syntax: syntax}
	if terms := ds.Strings(types.SpecificCharacterSetTag); len(terms) > 0 {
		if enc, err := lookupEncoding(terms); err == nil {
			body.enc = enc
		}
	}
	bodyBytes, err := body.dataset(nil, ds, func(t types.Tag) bool { return !t.IsMetaElement() })
	if err != nil {
		return nil, fmt.Errorf("encode dataset body: %w", err)
	}
	if syntax.Deflated {
		if bodyBytes, err = deflate(bodyBytes); err != nil {
			return nil, fmt.Errorf("deflate dataset body: %w", err)
		}
	}

	out := make([]byte, preambleLength, headerLength+12+len(metaBytes)+len(bodyBytes))
	out = append(out, magic...)
	out, err = meta.element(out, &Element{
		Tag:   types.FileMetaInformationGroupLengthTag,
		VR:    types.VR_UL,
		Value: uint32(len(metaBytes)),
	})
	if err != nil {
		return nil, err
	}
	out = append(out, metaBytes...)
	return append(out, bodyBytes...), nil
}

// WriteFile encodes ds with EncodeFile and writes it to path.
func WriteFile(path string, ds *Dataset) error {
	data, err := EncodeFile(ds)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (en *encoder) dataset(out []byte, ds *Dataset, include func(types.Tag) bool) ([]byte, error) {
	elems := ds.Elements()
	slices.SortStableFunc(elems, func(a, b *Element) int { return a.Tag.Compare(b.Tag) })

	var err error
	for _, e := range elems {
		if !include(e.Tag) {
			continue
		}
		if out, err = en.element(out, e); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (en *encoder) order() binary.AppendByteOrder {
	if en.syntax.ByteOrder == binary.BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

func (en *encoder) element(out []byte, e *Element) ([]byte, error) {
	switch v := e.Value.(type) {
	case *Sequence:
		return en.sequence(out, e, v)
	case *EncapsulatedPixelData:
		return en.encapsulated(out, e, v)
	}

	value, err := en.value(e)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", e.Tag, err)
	}
	if len(value)%2 == 1 {
		value = append(value, e.VR.PadByte())
	}
	if out, err = en.header(out, e.Tag, e.VR, uint32(len(value))); err != nil {
		return nil, err
	}
	return append(out, value...), nil
}

func (en *encoder) header(out []byte, tag types.Tag, vr types.VR, length uint32) ([]byte, error) {
	o := en.order()
	out = o.AppendUint16(out, tag.Group)
	out = o.AppendUint16(out, tag.Element)

	if !en.syntax.ExplicitVR {
		return o.AppendUint32(out, length), nil
	}
	out = append(out, vr...)
	if vr.HasLongLength() {
		out = append(out, 0, 0)
		return o.AppendUint32(out, length), nil
	}
	if length > math.MaxUint16 {
		return nil, fmt.Errorf("encode %s: value length %d too long for VR %s", tag, length, vr)
	}
	return o.AppendUint16(out, uint16(length)), nil
}

func (en *encoder) item(out []byte, tag types.Tag, length uint32) []byte {
	o := en.order()
	out = o.AppendUint16(out, tag.Group)
	out = o.AppendUint16(out, tag.Element)
	return o.AppendUint32(out, length)
}

func (en *encoder) sequence(out []byte, e *Element, seq *Sequence) ([]byte, error) {
	inner := en
	if e.VR == types.VR_UN {
		inner = &encoder{syntax: ImplicitLittleEndian, enc: en.enc}
	}

	var items []byte
	for _, item := range seq.Items {
		body, err := inner.dataset(nil, item, func(types.Tag) bool { return true })
		if err != nil {
			return nil, err
		}
		if item.delimited {
			items = inner.item(items, types.ItemTag, UndefinedLength)
			items = append(items, body...)
			items = inner.item(items, types.ItemDelimitationTag, 0)
		} else {
			items = inner.item(items, types.ItemTag, uint32(len(body)))
			items = append(items, body...)
		}
	}

	if e.Length == UndefinedLength || e.VR == types.VR_UN {
		out, err := en.header(out, e.Tag, e.VR, UndefinedLength)
		if err != nil {
			return nil, err
		}
		out = append(out, items...)
		return inner.item(out, types.SequenceDelimitationTag, 0), nil
	}
	out, err := en.header(out, e.Tag, e.VR, uint32(len(items)))
	if err != nil {
		return nil, err
	}
	return append(out, items...), nil
}

func (en *encoder) encapsulated(out []byte, e *Element, px *EncapsulatedPixelData) ([]byte, error) {
	vr := e.VR
	if vr == "" {
		vr = types.VR_OB
	}
	out, err := en.header(out, e.Tag, vr, UndefinedLength)
	if err != nil {
		return nil, err
	}
	out = en.item(out, types.ItemTag, uint32(4*len(px.Offsets)))
	for _, off := range px.Offsets {
		out = en.order().AppendUint32(out, off)
	}
	for _, frag := range px.Fragments {
		n := len(frag)
		out = en.item(out, types.ItemTag, uint32(n+n%2))
		out = append(out, frag...)
		if n%2 == 1 {
			out = append(out, 0)
		}
	}
	return en.item(out, types.SequenceDelimitationTag, 0), nil
}

func (en *encoder) value(e *Element) ([]byte, error) {
	o := en.order()
	switch v := e.Value.(type) {
	case nil:
		return nil, nil
	case []byte:
		return slices.Clone(v), nil
	case string:
		return en.text(e.VR, []string{v}), nil
	case []string:
		return en.text(e.VR, v), nil
	case int:
		return []byte(strconv.Itoa(v)), nil
	case types.Tag:
		return appendTags(nil, o, []types.Tag{v}), nil
	case []types.Tag:
		return appendTags(nil, o, v), nil
	case uint16:
		return o.AppendUint16(nil, v), nil
	case []uint16:
		return appendEach(v, func(b []byte, x uint16) []byte { return o.AppendUint16(b, x) }), nil
	case int16:
		return o.AppendUint16(nil, uint16(v)), nil
	case []int16:
		return appendEach(v, func(b []byte, x int16) []byte { return o.AppendUint16(b, uint16(x)) }), nil
	case uint32:
		return o.AppendUint32(nil, v), nil
	case []uint32:
		return appendEach(v, func(b []byte, x uint32) []byte { return o.AppendUint32(b, x) }), nil
	case int32:
		return o.AppendUint32(nil, uint32(v)), nil
	case []int32:
		return appendEach(v, func(b []byte, x int32) []byte { return o.AppendUint32(b, uint32(x)) }), nil
	case uint64:
		return o.AppendUint64(nil, v), nil
	case []uint64:
		return appendEach(v, func(b []byte, x uint64) []byte { return o.AppendUint64(b, x) }), nil
	case int64:
		return o.AppendUint64(nil, uint64(v)), nil
	case []int64:
		return appendEach(v, func(b []byte, x int64) []byte { return o.AppendUint64(b, uint64(x)) }), nil
	case float32:
		return o.AppendUint32(nil, math.Float32bits(v)), nil
	case []float32:
		return appendEach(v, func(b []byte, x float32) []byte { return o.AppendUint32(b, math.Float32bits(x)) }), nil
	case float64:
		return o.AppendUint64(nil, math.Float64bits(v)), nil
	case []float64:
		return appendEach(v, func(b []byte, x float64) []byte { return o.AppendUint64(b, math.Float64bits(x)) }), nil
	}
	return nil, fmt.Errorf("unsupported value type %T for VR %s", e.Value, e.VR)
}

func (en *encoder) text(vr types.VR, values []string) []byte {
	enc := en.enc
	if !usesCharacterSet(vr) {
		enc = nil
	}
	return encodeString(enc, strings.Join(values, `\`))
}

func appendEach[T any](v []T, put func([]byte, T) []byte) []byte {
	var out []byte
	for _, x := range v {
		out = put(out, x)
	}
	return out
}

func appendTags(out []byte, o binary.AppendByteOrder, tags []types.Tag) []byte {
	for _, t := range tags {
		out = o.AppendUint16(out, t.Group)
		out = o.AppendUint16(out, t.Element)
	}
	return out
}
