package pixel

import (
	"bytes"

	"github.com/caio-sobreiro/dicomfile/errors"
	"github.com/caio-sobreiro/dicomfile/types"
)

// itemHeaderLength is the tag and length preceding every fragment.
const itemHeaderLength = 8

// splitFrames groups the fragments of encapsulated pixel data into frames.
// Basic offset table entries are byte positions of a frame's first fragment
// item, measured from the first fragment item. Without a table each fragment
// is a frame when the counts match; otherwise all fragments form one frame.
func splitFrames(in Input) ([][]byte, error) {
	frags := in.Fragments
	if len(frags) == 0 {
		return nil, errors.NewMalformedError(types.PixelDataTag, 0, "encapsulated pixel data has no fragments")
	}

	if len(in.Offsets) > 0 {
		return framesFromOffsets(frags, in.Offsets)
	}
	if len(frags) == in.Shape.Frames {
		return frags, nil
	}
	return [][]byte{bytes.Join(frags, nil)}, nil
}

func framesFromOffsets(frags [][]byte, offsets []uint32) ([][]byte, error) {
	index := make(map[uint32]int, len(frags))
	pos := uint32(0)
	for i, f := range frags {
		index[pos] = i
		pos += itemHeaderLength + uint32(len(f))
	}

	starts := make([]int, len(offsets)+1)
	for i, off := range offsets {
		idx, ok := index[off]
		if !ok {
			return nil, errors.NewMalformedError(types.PixelDataTag, 0, "offset table entry %d (%d) does not start a fragment", i, off)
		}
		if i > 0 && idx <= starts[i-1] {
			return nil, errors.NewMalformedError(types.PixelDataTag, 0, "offset table entry %d (%d) is not increasing", i, off)
		}
		starts[i] = idx
	}
	starts[len(offsets)] = len(frags)

	frames := make([][]byte, len(offsets))
	for i := range offsets {
		group := frags[starts[i]:starts[i+1]]
		if len(group) == 1 {
			frames[i] = group[0]
			continue
		}
		frames[i] = bytes.Join(group, nil)
	}
	return frames, nil
}
