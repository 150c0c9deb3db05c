package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/caio-sobreiro/dicomfile/dicom"
)

// dumpDataset writes one line per element, indenting the items of
// sequences below their parent.
func dumpDataset(w io.Writer, ds *dicom.Dataset, depth int) {
	indent := strings.Repeat("  ", depth)
	dict := ds.Dictionary()
	ds.Range(func(e *dicom.Element) bool {
		name := "Unknown"
		if entry, ok := dict.Lookup(e.Tag); ok {
			name = entry.Name
		}
		fmt.Fprintf(w, "%s%s %s %-32s %s\n", indent, e.Tag, e.VR, name, e.ValueString())

		if seq := e.Sequence(); seq != nil {
			for i, item := range seq.Items {
				fmt.Fprintf(w, "%s  > Item %d\n", indent, i+1)
				dumpDataset(w, item, depth+2)
			}
		}
		return true
	})
}
