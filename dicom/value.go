package dicom

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/encoding"

	"github.com/caio-sobreiro/dicomfile/types"
)

// decodeValue interprets a defined-length value according to its VR
// category. Sequences and encapsulated pixel data never reach here.
func decodeValue(vr types.VR, raw []byte, order binary.ByteOrder, enc encoding.Encoding) (any, error) {
	switch vr.Category() {
	case types.CategoryNumeric:
		return decodeNumbers(vr, raw, order)
	case types.CategoryTagList:
		return decodeTags(raw, order)
	case types.CategoryText:
		if !usesCharacterSet(vr) {
			enc = nil
		}
		return decodeText(vr, raw, enc), nil
	case types.CategoryDateTime, types.CategoryUID:
		return decodeText(vr, raw, nil), nil
	default:
		return raw, nil
	}
}

// usesCharacterSet reports whether Specific Character Set applies to the VR.
// Other text VRs are restricted to the default repertoire.
func usesCharacterSet(vr types.VR) bool {
	switch vr {
	case types.VR_SH, types.VR_LO, types.VR_ST, types.VR_LT, types.VR_PN, types.VR_UC, types.VR_UT:
		return true
	}
	return false
}

// decodeText removes one trailing pad byte and splits multi-valued VRs on
// backslash. Leading and embedded spaces are significant and kept.
// Values are decoded before splitting: in GBK and GB18030 the byte 0x5C
// also occurs as the trail byte of a two-byte character.
func decodeText(vr types.VR, raw []byte, enc encoding.Encoding) []string {
	if len(raw) == 0 {
		return nil
	}
	if last := raw[len(raw)-1]; last == ' ' || last == 0x00 {
		raw = raw[:len(raw)-1]
	}
	text := decodeString(enc, raw)
	if !vr.IsMultiValued() {
		return []string{text}
	}
	return strings.Split(text, `\`)
}

func decodeNumbers(vr types.VR, raw []byte, order binary.ByteOrder) (any, error) {
	size := vr.ElementSize()
	if len(raw)%size != 0 {
		return nil, fmt.Errorf("length %d is not a multiple of %d for VR %s", len(raw), size, vr)
	}
	n := len(raw) / size
	if n == 0 {
		return nil, nil
	}

	switch vr {
	case types.VR_US:
		out := make([]uint16, n)
		for i := range out {
			out[i] = order.Uint16(raw[i*2:])
		}
		return scalarOrSlice(out), nil
	case types.VR_SS:
		out := make([]int16, n)
		for i := range out {
			out[i] = int16(order.Uint16(raw[i*2:]))
		}
		return scalarOrSlice(out), nil
	case types.VR_UL:
		out := make([]uint32, n)
		for i := range out {
			out[i] = order.Uint32(raw[i*4:])
		}
		return scalarOrSlice(out), nil
	case types.VR_SL:
		out := make([]int32, n)
		for i := range out {
			out[i] = int32(order.Uint32(raw[i*4:]))
		}
		return scalarOrSlice(out), nil
	case types.VR_UV:
		out := make([]uint64, n)
		for i := range out {
			out[i] = order.Uint64(raw[i*8:])
		}
		return scalarOrSlice(out), nil
	case types.VR_SV:
		out := make([]int64, n)
		for i := range out {
			out[i] = int64(order.Uint64(raw[i*8:]))
		}
		return scalarOrSlice(out), nil
	case types.VR_FL:
		out := make([]float32, n)
		for i := range out {
			out[i] = math.Float32frombits(order.Uint32(raw[i*4:]))
		}
		return scalarOrSlice(out), nil
	case types.VR_FD:
		out := make([]float64, n)
		for i := range out {
			out[i] = math.Float64frombits(order.Uint64(raw[i*8:]))
		}
		return scalarOrSlice(out), nil
	}
	return nil, fmt.Errorf("VR %s is not numeric", vr)
}

func scalarOrSlice[T any](v []T) any {
	if len(v) == 1 {
		return v[0]
	}
	return v
}

func decodeTags(raw []byte, order binary.ByteOrder) (any, error) {
	if len(raw)%4 != 0 {
		return nil, fmt.Errorf("length %d is not a multiple of 4 for VR AT", len(raw))
	}
	if len(raw) == 0 {
		return nil, nil
	}
	out := make([]types.Tag, len(raw)/4)
	for i := range out {
		out[i] = types.Tag{Group: order.Uint16(raw[i*4:]), Element: order.Uint16(raw[i*4+2:])}
	}
	return scalarOrSlice(out), nil
}

// toFloats flattens any numeric value, or decimal/integer strings, to float64.
func toFloats(v any) ([]float64, bool) {
	switch x := v.(type) {
	case uint16:
		return []float64{float64(x)}, true
	case int16:
		return []float64{float64(x)}, true
	case uint32:
		return []float64{float64(x)}, true
	case int32:
		return []float64{float64(x)}, true
	case uint64:
		return []float64{float64(x)}, true
	case int64:
		return []float64{float64(x)}, true
	case float32:
		return []float64{float64(x)}, true
	case float64:
		return []float64{x}, true
	case []uint16:
		return convertFloats(x), true
	case []int16:
		return convertFloats(x), true
	case []uint32:
		return convertFloats(x), true
	case []int32:
		return convertFloats(x), true
	case []uint64:
		return convertFloats(x), true
	case []int64:
		return convertFloats(x), true
	case []float32:
		return convertFloats(x), true
	case []float64:
		return x, true
	case []string:
		out := make([]float64, 0, len(x))
		for _, s := range x {
			f, err := parseDecimal(s)
			if err != nil {
				return nil, false
			}
			out = append(out, f)
		}
		return out, true
	}
	return nil, false
}

type number interface {
	~uint16 | ~int16 | ~uint32 | ~int32 | ~uint64 | ~int64 | ~float32 | ~float64
}

func convertFloats[T number](v []T) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}
