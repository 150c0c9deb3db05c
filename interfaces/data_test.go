package interfaces

import (
	"testing"

	"github.com/caio-sobreiro/dicomfile/dicom"
	"github.com/caio-sobreiro/dicomfile/types"
)

func TestSyntaxCodec_RoundTrip(t *testing.T) {
	for _, uid := range []string{types.ImplicitVRLittleEndian, types.ExplicitVRLittleEndian, types.ExplicitVRBigEndian} {
		t.Run(uid, func(t *testing.T) {
			ds := dicom.NewDataset()
			ds.AddElement(types.Tag{Group: 0x0010, Element: 0x0010}, types.VR_PN, "DOE^JOHN")
			ds.AddElement(types.RowsTag, types.VR_US, uint16(256))

			var codec DatasetCodec = SyntaxCodec{TransferSyntaxUID: uid}
			data, err := codec.EncodeDataset(ds)
			if err != nil {
				t.Fatalf("EncodeDataset() error = %v", err)
			}
			back, err := codec.ParseDataset(data)
			if err != nil {
				t.Fatalf("ParseDataset() error = %v", err)
			}

			var r DatasetReader = back
			if r.Len() != 2 {
				t.Errorf("Len() = %d, want 2", r.Len())
			}
			if got := r.String(types.Tag{Group: 0x0010, Element: 0x0010}); got != "DOE^JOHN" {
				t.Errorf("PatientName = %q", got)
			}
			if n, ok := r.Int(types.RowsTag); !ok || n != 256 {
				t.Errorf("Rows = %d, %v", n, ok)
			}
		})
	}
}
