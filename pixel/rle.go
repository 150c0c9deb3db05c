package pixel

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/caio-sobreiro/dicomfile/errors"
	"github.com/caio-sobreiro/dicomfile/types"
)

// RLE Lossless (PS3.5 Annex G): each frame starts with a 64-byte header
// holding the segment count and up to 15 segment offsets, all little endian.
const (
	rleHeaderLength = 64
	rleMaxSegments  = 15
)

func decodeRLE(shape Shape, frames [][]byte) (*Buffer, error) {
	if len(frames) != shape.Frames {
		return nil, errors.NewPixelLengthError(shape.Frames, len(frames))
	}
	var samples []int64
	for i, frame := range frames {
		decoded, err := decodeRLEFrame(shape, frame)
		if err != nil {
			return nil, fmt.Errorf("rle frame %d: %w", i, err)
		}
		samples = append(samples, decoded...)
	}
	return &Buffer{Shape: shape, Samples: samples}, nil
}

// decodeRLEFrame decodes one frame into pixel-major samples.
func decodeRLEFrame(shape Shape, frame []byte) ([]int64, error) {
	segments, err := rleSegments(shape, frame)
	if err != nil {
		return nil, err
	}

	pixels := shape.FramePixels()
	bytesPerSample := shape.BitsAllocated / 8
	planes := make([][]byte, len(segments))
	for i, seg := range segments {
		plane, err := decodePackBits(seg, pixels)
		if err != nil {
			return nil, fmt.Errorf("segment %d: %w", i, err)
		}
		if len(plane) != pixels {
			return nil, fmt.Errorf("segment %d: %w", i, errors.NewPixelLengthError(pixels, len(plane)))
		}
		planes[i] = plane
	}

	// segment order is sample by sample, most significant byte first
	out := make([]int64, shape.FrameSamples())
	for s := 0; s < shape.SamplesPerPixel; s++ {
		for p := 0; p < pixels; p++ {
			var v uint32
			for b := 0; b < bytesPerSample; b++ {
				v = v<<8 | uint32(planes[s*bytesPerSample+b][p])
			}
			out[p*shape.SamplesPerPixel+s] = storedValue(shape, v)
		}
	}
	return out, nil
}

// rleSegments splits a frame into its segments using the header offsets.
func rleSegments(shape Shape, frame []byte) ([][]byte, error) {
	if len(frame) < rleHeaderLength {
		return nil, errors.NewMalformedError(types.PixelDataTag, 0, "rle frame of %d bytes is shorter than its header", len(frame))
	}
	count := int(binary.LittleEndian.Uint32(frame))
	want := shape.SamplesPerPixel * shape.BitsAllocated / 8
	if count > rleMaxSegments || count != want {
		return nil, errors.NewMalformedError(types.PixelDataTag, 0, "rle header declares %d segments, shape requires %d", count, want)
	}

	offsets := make([]int, count+1)
	for i := 0; i < count; i++ {
		offsets[i] = int(binary.LittleEndian.Uint32(frame[4+4*i:]))
	}
	offsets[count] = len(frame)

	segments := make([][]byte, count)
	for i := 0; i < count; i++ {
		start, end := offsets[i], offsets[i+1]
		if start < rleHeaderLength || start > end || end > len(frame) {
			return nil, errors.NewMalformedError(types.PixelDataTag, 0, "rle segment %d has bad bounds [%d,%d) in %d bytes", i, start, end, len(frame))
		}
		segments[i] = frame[start:end]
	}
	return segments, nil
}

// decodePackBits expands one segment. Decoding stops once want bytes have
// been produced; segments may carry a trailing pad byte.
func decodePackBits(data []byte, want int) ([]byte, error) {
	// a two-byte replicate run yields at most 128 bytes
	out := make([]byte, 0, min(want, len(data)*64))
	i := 0
	for i < len(data) && len(out) < want {
		n := int8(data[i])
		i++

		switch {
		case n == -128:
			// no-op
		case n >= 0:
			count := int(n) + 1
			if i+count > len(data) {
				return nil, fmt.Errorf("literal run of %d bytes truncated at offset %d", count, i)
			}
			out = append(out, data[i:i+count]...)
			i += count
		default:
			count := 1 - int(n)
			if i >= len(data) {
				return nil, fmt.Errorf("replicate run truncated at offset %d", i)
			}
			out = append(out, bytes.Repeat(data[i:i+1], count)...)
			i++
		}
	}
	if len(out) > want {
		out = out[:want]
	}
	return out, nil
}

// EncodeRLEFrame encodes one frame of pixel-major samples as RLE Lossless.
func EncodeRLEFrame(shape Shape, samples []int64) ([]byte, error) {
	if len(samples) != shape.FrameSamples() {
		return nil, errors.NewPixelLengthError(shape.FrameSamples(), len(samples))
	}
	bytesPerSample := shape.BitsAllocated / 8
	count := shape.SamplesPerPixel * bytesPerSample
	if count > rleMaxSegments {
		return nil, fmt.Errorf("rle: %d segments exceed the maximum of %d", count, rleMaxSegments)
	}

	pixels := shape.FramePixels()
	header := make([]byte, rleHeaderLength)
	binary.LittleEndian.PutUint32(header, uint32(count))
	body := make([]byte, 0, len(samples)*bytesPerSample)

	plane := make([]byte, pixels)
	for s := 0; s < shape.SamplesPerPixel; s++ {
		for b := 0; b < bytesPerSample; b++ {
			shift := uint(8 * (bytesPerSample - 1 - b))
			for p := 0; p < pixels; p++ {
				plane[p] = byte(uint64(samples[p*shape.SamplesPerPixel+s]) >> shift)
			}
			binary.LittleEndian.PutUint32(header[4+4*(s*bytesPerSample+b):], uint32(rleHeaderLength+len(body)))
			body = append(body, encodePackBits(plane)...)
			if len(body)%2 == 1 {
				body = append(body, 0)
			}
		}
	}
	return append(header, body...), nil
}

// encodePackBits compresses data with runs of two or more identical bytes
// written as replicate runs.
func encodePackBits(data []byte) []byte {
	var buf bytes.Buffer
	i := 0
	for i < len(data) {
		run := 1
		for i+run < len(data) && run < 128 && data[i+run] == data[i] {
			run++
		}
		if run > 1 {
			buf.WriteByte(byte(int8(1 - run)))
			buf.WriteByte(data[i])
			i += run
			continue
		}

		lit := 1
		for i+lit < len(data) && lit < 128 {
			if i+lit+1 < len(data) && data[i+lit] == data[i+lit+1] {
				break
			}
			lit++
		}
		buf.WriteByte(byte(lit - 1))
		buf.Write(data[i : i+lit])
		i += lit
	}
	return buf.Bytes()
}
