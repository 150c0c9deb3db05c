// Package pixel turns the value of a Pixel Data element into a flat buffer
// of samples. Native and RLE Lossless data are decoded here; other
// encapsulated syntaxes are handed to a caller supplied Codec, or returned
// undecoded together with an ExternalCodecError.
package pixel

import (
	"encoding/binary"
	"fmt"

	"github.com/caio-sobreiro/dicomfile/errors"
	"github.com/caio-sobreiro/dicomfile/types"
)

// DefaultMaxSamples caps Frames × Rows × Columns × SamplesPerPixel when
// Input.MaxSamples is zero. Decoded, that is 8 GiB of int64 samples.
const DefaultMaxSamples = 1 << 30

// Shape describes the layout of the image pixel module (PS3.3 C.7.6.3).
type Shape struct {
	Frames                    int
	Rows                      int
	Columns                   int
	SamplesPerPixel           int
	BitsAllocated             int
	BitsStored                int
	HighBit                   int
	PixelRepresentation       int
	PlanarConfiguration       int
	PhotometricInterpretation string
}

// Signed reports whether samples are two's complement.
func (s Shape) Signed() bool {
	return s.PixelRepresentation == 1
}

// Validate checks the attributes a decoder depends on.
func (s Shape) Validate() error {
	switch {
	case s.Rows <= 0:
		return errors.NewPixelAttributeError("Rows", s.Rows)
	case s.Columns <= 0:
		return errors.NewPixelAttributeError("Columns", s.Columns)
	case s.Frames <= 0:
		return errors.NewPixelAttributeError("NumberOfFrames", s.Frames)
	case s.SamplesPerPixel <= 0:
		return errors.NewPixelAttributeError("SamplesPerPixel", s.SamplesPerPixel)
	case s.BitsAllocated != 8 && s.BitsAllocated != 16 && s.BitsAllocated != 32:
		return errors.NewPixelAttributeError("BitsAllocated", s.BitsAllocated)
	case s.BitsStored <= 0 || s.BitsStored > s.BitsAllocated:
		return errors.NewPixelAttributeError("BitsStored", s.BitsStored)
	case s.HighBit < s.BitsStored-1 || s.HighBit >= s.BitsAllocated:
		return errors.NewPixelAttributeError("HighBit", s.HighBit)
	case s.PixelRepresentation != 0 && s.PixelRepresentation != 1:
		return errors.NewPixelAttributeError("PixelRepresentation", s.PixelRepresentation)
	case s.PlanarConfiguration != 0 && s.PlanarConfiguration != 1:
		return errors.NewPixelAttributeError("PlanarConfiguration", s.PlanarConfiguration)
	}
	return nil
}

// FramePixels is rows × columns.
func (s Shape) FramePixels() int {
	return s.Rows * s.Columns
}

// FrameSamples is the number of samples in one frame.
func (s Shape) FrameSamples() int {
	return s.FramePixels() * s.SamplesPerPixel
}

// FrameBytes is the size of one native frame.
func (s Shape) FrameBytes() int {
	return s.FrameSamples() * s.BitsAllocated / 8
}

// samplesWithin reports whether the sample count of all frames is at most
// limit. The shape must be valid.
func (s Shape) samplesWithin(limit int64) bool {
	n := int64(1)
	for _, dim := range []int{s.Frames, s.Rows, s.Columns, s.SamplesPerPixel} {
		if int64(dim) > limit/n {
			return false
		}
		n *= int64(dim)
	}
	return true
}

// Input is everything Decode needs from a dataset.
type Input struct {
	Shape             Shape
	TransferSyntaxUID string
	// ByteOrder of native data; nil means little endian.
	ByteOrder binary.ByteOrder
	// VR of a native Pixel Data element. Under big endian, OW data is
	// stored as 16-bit words, so 8-bit samples come in swapped pairs.
	VR types.VR
	// MaxSamples caps the decoded sample count; zero means DefaultMaxSamples.
	MaxSamples int64
	// Native holds the value of a defined-length Pixel Data element.
	Native []byte
	// Fragments and Offsets hold encapsulated pixel data.
	Fragments [][]byte
	Offsets   []uint32
}

// Encapsulated holds compressed frames that were not decoded.
type Encapsulated struct {
	TransferSyntaxUID string
	Frames            [][]byte
}

// Buffer is a decoded multi-frame sample buffer. Samples are stored frame
// by frame, pixel-major: the samples of one pixel are adjacent.
type Buffer struct {
	Shape   Shape
	Samples []int64
	// Encoded is set instead of Samples when an external codec is required.
	Encoded *Encapsulated
}

// Frame returns the samples of frame i.
func (b *Buffer) Frame(i int) []int64 {
	n := b.Shape.FrameSamples()
	if i < 0 || (i+1)*n > len(b.Samples) {
		return nil
	}
	return b.Samples[i*n : (i+1)*n]
}

// Sample returns one sample value.
func (b *Buffer) Sample(frame, row, col, sample int) int64 {
	s := b.Shape
	idx := frame*s.FrameSamples() + (row*s.Columns+col)*s.SamplesPerPixel + sample
	return b.Samples[idx]
}

// Decode produces the sample buffer for in. For encapsulated syntaxes other
// than RLE it delegates to codec; when codec is nil it returns a Buffer with
// Encoded set and an error wrapping errors.ErrExternalCodecRequired.
func Decode(in Input, codec Codec) (*Buffer, error) {
	if err := in.Shape.Validate(); err != nil {
		return nil, err
	}
	limit := in.MaxSamples
	if limit <= 0 {
		limit = DefaultMaxSamples
	}
	if !in.Shape.samplesWithin(limit) {
		s := in.Shape
		return nil, errors.NewElementError(errors.ErrLimitExceeded, types.PixelDataTag, 0,
			fmt.Sprintf("%d frames of %dx%d with %d samples per pixel exceed %d samples", s.Frames, s.Rows, s.Columns, s.SamplesPerPixel, limit))
	}
	info, ok := types.LookupTransferSyntax(in.TransferSyntaxUID)
	if !ok {
		return nil, errors.NewTransferSyntaxError(in.TransferSyntaxUID)
	}

	if !info.Encapsulated {
		order := in.ByteOrder
		if order == nil {
			order = binary.LittleEndian
		}
		swap := in.VR == types.VR_OW && order == binary.BigEndian
		return decodeNative(in.Shape, in.Native, order, swap)
	}

	frames, err := splitFrames(in)
	if err != nil {
		return nil, err
	}

	if in.TransferSyntaxUID == types.RLELossless {
		return decodeRLE(in.Shape, frames)
	}

	if codec == nil {
		return &Buffer{
			Shape:   in.Shape,
			Encoded: &Encapsulated{TransferSyntaxUID: in.TransferSyntaxUID, Frames: frames},
		}, errors.NewExternalCodecError(in.TransferSyntaxUID, len(frames))
	}
	return decodeWithCodec(in.Shape, in.TransferSyntaxUID, frames, codec)
}

func decodeWithCodec(shape Shape, uid string, frames [][]byte, codec Codec) (*Buffer, error) {
	if len(frames) != shape.Frames {
		return nil, errors.NewPixelLengthError(shape.Frames, len(frames))
	}
	n := shape.FrameSamples()
	var out []int64
	for i, frame := range frames {
		samples, err := codec.Decode(uid, frame, shape)
		if err != nil {
			return nil, fmt.Errorf("decode frame %d: %w", i, err)
		}
		if len(samples) != n {
			return nil, fmt.Errorf("decode frame %d: %w", i, errors.NewPixelLengthError(n, len(samples)))
		}
		out = append(out, samples...)
	}
	return &Buffer{Shape: shape, Samples: out}, nil
}
