// Package interfaces holds the narrow, read-only surfaces that collaborators
// (viewers, exporters, metadata extractors) use to consume parsed datasets.
package interfaces

import (
	"github.com/caio-sobreiro/dicomfile/dicom"
	"github.com/caio-sobreiro/dicomfile/pixel"
	"github.com/caio-sobreiro/dicomfile/types"
)

// DatasetReader is the query surface of a parsed dataset.
type DatasetReader interface {
	Len() int
	Range(fn func(*dicom.Element) bool)
	Get(tag types.Tag) (*dicom.Element, bool)
	GetByName(name string) (*dicom.Element, bool)

	String(tag types.Tag) string
	Strings(tag types.Tag) []string
	Float(tag types.Tag) (float64, bool)
	Floats(tag types.Tag) ([]float64, bool)
	Int(tag types.Tag) (int, bool)
	Sequence(tag types.Tag) ([]*dicom.Dataset, bool)

	// PixelData decodes the pixel data on demand.
	PixelData() (*pixel.Buffer, error)
}

// DatasetCodec parses and re-encodes bare datasets.
type DatasetCodec interface {
	EncodeDataset(ds *dicom.Dataset) ([]byte, error)
	ParseDataset(data []byte) (*dicom.Dataset, error)
}

var _ DatasetReader = (*dicom.Dataset)(nil)

// SyntaxCodec is a DatasetCodec bound to one transfer syntax.
type SyntaxCodec struct {
	TransferSyntaxUID string
	Options           []dicom.Option
}

// EncodeDataset encodes ds with the codec's transfer syntax.
func (c SyntaxCodec) EncodeDataset(ds *dicom.Dataset) ([]byte, error) {
	return dicom.EncodeDataset(ds, dicom.ResolveSyntax(c.TransferSyntaxUID))
}

// ParseDataset parses data with the codec's transfer syntax.
func (c SyntaxCodec) ParseDataset(data []byte) (*dicom.Dataset, error) {
	return dicom.ParseDataset(data, c.TransferSyntaxUID, c.Options...)
}

var _ DatasetCodec = SyntaxCodec{}
