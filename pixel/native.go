package pixel

import (
	"encoding/binary"

	"github.com/caio-sobreiro/dicomfile/errors"
)

// decodeNative reinterprets uncompressed pixel bytes as samples. With
// swapWords set, 8-bit samples are read from byte-swapped 16-bit words.
func decodeNative(shape Shape, data []byte, order binary.ByteOrder, swapWords bool) (*Buffer, error) {
	want := shape.Frames * shape.FrameBytes()
	// an odd total is padded with one byte to keep the element even
	if len(data) != want && !(want%2 == 1 && len(data) == want+1) {
		return nil, errors.NewPixelLengthError(want, len(data))
	}
	step := shape.BitsAllocated / 8
	if swapWords && step == 1 && len(data)%2 == 1 {
		return nil, errors.NewPixelLengthError(want+1, len(data))
	}

	n := shape.Frames * shape.FrameSamples()
	samples := make([]int64, n)
	for i := range samples {
		raw := data[i*step : i*step+step]
		var v uint32
		switch step {
		case 1:
			if swapWords {
				v = uint32(data[i^1])
			} else {
				v = uint32(raw[0])
			}
		case 2:
			v = uint32(order.Uint16(raw))
		case 4:
			v = order.Uint32(raw)
		}
		samples[i] = storedValue(shape, v)
	}

	if shape.SamplesPerPixel > 1 && shape.PlanarConfiguration == 1 {
		interleave(shape, samples)
	}
	return &Buffer{Shape: shape, Samples: samples}, nil
}

// storedValue extracts the BitsStored bits ending at HighBit and sign
// extends them for signed data.
func storedValue(shape Shape, v uint32) int64 {
	shift := shape.HighBit + 1 - shape.BitsStored
	bits := uint(shape.BitsStored)
	v >>= uint(shift)
	if bits < 32 {
		v &= 1<<bits - 1
	}
	if shape.Signed() && v&(1<<(bits-1)) != 0 {
		return int64(v) - int64(1)<<bits
	}
	return int64(v)
}

// interleave converts each frame from planar (all of sample 0, then all of
// sample 1, ...) to pixel-major order in place.
func interleave(shape Shape, samples []int64) {
	pixels := shape.FramePixels()
	spp := shape.SamplesPerPixel
	frame := make([]int64, shape.FrameSamples())
	for f := 0; f < shape.Frames; f++ {
		src := samples[f*len(frame) : (f+1)*len(frame)]
		for s := 0; s < spp; s++ {
			for p := 0; p < pixels; p++ {
				frame[p*spp+s] = src[s*pixels+p]
			}
		}
		copy(src, frame)
	}
}
