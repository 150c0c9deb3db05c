package dicom

import (
	"fmt"

	"github.com/caio-sobreiro/dicomfile/errors"
	"github.com/caio-sobreiro/dicomfile/pixel"
	"github.com/caio-sobreiro/dicomfile/types"
)

// Shape reads the image pixel module attributes. NumberOfFrames defaults
// to 1, SamplesPerPixel to 1, BitsStored to BitsAllocated and HighBit to
// BitsStored-1.
func (d *Dataset) Shape() pixel.Shape {
	get := func(tag types.Tag, def int) int {
		if v, ok := d.Int(tag); ok {
			return v
		}
		return def
	}

	s := pixel.Shape{
		Frames:                    get(types.NumberOfFramesTag, 1),
		Rows:                      get(types.RowsTag, 0),
		Columns:                   get(types.ColumnsTag, 0),
		SamplesPerPixel:           get(types.SamplesPerPixelTag, 1),
		BitsAllocated:             get(types.BitsAllocatedTag, 0),
		PixelRepresentation:       get(types.PixelRepresentationTag, 0),
		PlanarConfiguration:       get(types.PlanarConfigurationTag, 0),
		PhotometricInterpretation: d.String(types.PhotometricInterpretationTag),
	}
	s.BitsStored = get(types.BitsStoredTag, s.BitsAllocated)
	s.HighBit = get(types.HighBitTag, s.BitsStored-1)
	return s
}

// PixelData decodes the Pixel Data element on demand. A failure here never
// affects the rest of the dataset. For encapsulated syntaxes with no codec
// configured (see WithCodec) the returned buffer holds the undecoded frames
// and the error wraps errors.ErrExternalCodecRequired.
func (d *Dataset) PixelData() (*pixel.Buffer, error) {
	e, ok := d.Get(types.PixelDataTag)
	if !ok {
		return nil, fmt.Errorf("no pixel data element %s", types.PixelDataTag)
	}
	if !d.syntax.Known {
		return nil, errors.NewTransferSyntaxError(d.syntax.UID)
	}

	in := pixel.Input{
		Shape:             d.Shape(),
		TransferSyntaxUID: d.syntax.UID,
		ByteOrder:         d.syntax.ByteOrder,
		VR:                e.VR,
		MaxSamples:        d.maxPixelSamples,
	}
	switch v := e.Value.(type) {
	case *EncapsulatedPixelData:
		if !d.syntax.Encapsulated {
			return nil, errors.NewMalformedError(e.Tag, e.Offset, "encapsulated pixel data under native transfer syntax %s", d.syntax.UID)
		}
		in.Offsets, in.Fragments = v.Offsets, v.Fragments
	case []byte:
		if d.syntax.Encapsulated {
			return nil, errors.NewMalformedError(e.Tag, e.Offset, "native pixel data under encapsulated transfer syntax %s", d.syntax.UID)
		}
		in.Native = v
	default:
		return nil, errors.NewMalformedError(e.Tag, e.Offset, "unexpected pixel data value %T", e.Value)
	}

	buf, err := pixel.Decode(in, d.codec)
	if err != nil && !errors.IsDeferral(err) {
		d.logger.Debug("Pixel data decode failed", "transfer_syntax", d.syntax.UID, "error", err)
	}
	return buf, err
}
