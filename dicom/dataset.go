package dicom

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/elliotchance/orderedmap/v3"

	"github.com/caio-sobreiro/dicomfile/dictionary"
	"github.com/caio-sobreiro/dicomfile/pixel"
	"github.com/caio-sobreiro/dicomfile/types"
)

// Dataset is an ordered collection of DICOM elements keyed by tag. Datasets
// returned by the parse functions are not modified afterwards and may be
// read from several goroutines.
type Dataset struct {
	elements *orderedmap.OrderedMap[types.Tag, *Element]
	dict     *dictionary.Dictionary
	syntax   Syntax
	codec    pixel.Codec
	logger   *slog.Logger
	// maxPixelSamples of zero leaves the pixel package default in force.
	maxPixelSamples int64

	// delimited is set on items that were encoded with undefined length.
	delimited bool
}

// NewDataset creates a new empty dataset
func NewDataset() *Dataset {
	return &Dataset{
		elements: orderedmap.NewOrderedMap[types.Tag, *Element](),
		dict:     dictionary.Default(),
		syntax:   ResolveSyntax(types.ExplicitVRLittleEndian),
		logger:   slog.Default(),
	}
}

func newDatasetFrom(cfg *config, syntax Syntax) *Dataset {
	return &Dataset{
		elements: orderedmap.NewOrderedMap[types.Tag, *Element](),
		dict:     cfg.dict,
		syntax:   syntax,
		codec:    cfg.codec,
		logger:   cfg.logger,

		maxPixelSamples: cfg.limits.MaxPixelSamples,
	}
}

// set inserts or replaces the element for e.Tag.
func (d *Dataset) set(e *Element) {
	d.elements.Set(e.Tag, e)
}

// AddElement adds an element to the dataset, replacing any element with the same tag.
func (d *Dataset) AddElement(tag types.Tag, vr types.VR, value any) *Element {
	e := &Element{Tag: tag, VR: vr, Value: value}
	d.set(e)
	return e
}

// Delete removes the element for tag.
func (d *Dataset) Delete(tag types.Tag) bool {
	return d.elements.Delete(tag)
}

// Len returns the number of top-level elements.
func (d *Dataset) Len() int {
	return d.elements.Len()
}

// Range calls fn for each element in stream order until fn returns false.
func (d *Dataset) Range(fn func(*Element) bool) {
	for el := d.elements.Front(); el != nil; el = el.Next() {
		if !fn(el.Value) {
			return
		}
	}
}

// Elements returns the top-level elements in stream order.
func (d *Dataset) Elements() []*Element {
	out := make([]*Element, 0, d.elements.Len())
	d.Range(func(e *Element) bool {
		out = append(out, e)
		return true
	})
	return out
}

// Get returns an element by tag.
func (d *Dataset) Get(tag types.Tag) (*Element, bool) {
	return d.elements.Get(tag)
}

// GetByName returns an element by dictionary keyword, e.g. "PatientName".
func (d *Dataset) GetByName(name string) (*Element, bool) {
	entry, ok := d.dict.LookupName(name)
	if !ok {
		return nil, false
	}
	return d.Get(entry.Tag)
}

// Dictionary returns the dictionary the dataset was parsed with.
func (d *Dataset) Dictionary() *dictionary.Dictionary {
	return d.dict
}

// TransferSyntax returns the syntax the dataset body was encoded with.
func (d *Dataset) TransferSyntax() Syntax {
	return d.syntax
}

// String returns the first text value for a tag, or "".
func (d *Dataset) String(tag types.Tag) string {
	if v := d.Strings(tag); len(v) > 0 {
		return v[0]
	}
	return ""
}

// Strings returns all text values for a tag.
func (d *Dataset) Strings(tag types.Tag) []string {
	if e, ok := d.Get(tag); ok {
		return e.Strings()
	}
	return nil
}

// Floats returns the values of a numeric, DS or IS element as float64.
func (d *Dataset) Floats(tag types.Tag) ([]float64, bool) {
	e, ok := d.Get(tag)
	if !ok {
		return nil, false
	}
	v, ok := toFloats(e.Value)
	if !ok || len(v) == 0 {
		return nil, false
	}
	return v, true
}

// Float returns the first value of a numeric, DS or IS element.
func (d *Dataset) Float(tag types.Tag) (float64, bool) {
	v, ok := d.Floats(tag)
	if !ok {
		return 0, false
	}
	return v[0], true
}

// Int returns the first value of a numeric or IS element as an int.
func (d *Dataset) Int(tag types.Tag) (int, bool) {
	e, ok := d.Get(tag)
	if !ok {
		return 0, false
	}
	if s := e.Strings(); len(s) > 0 {
		n, err := strconv.Atoi(strings.TrimSpace(s[0]))
		if err == nil {
			return n, true
		}
	}
	f, ok := d.Float(tag)
	if !ok {
		return 0, false
	}
	return int(f), true
}

// Sequence returns the items of an SQ element.
func (d *Dataset) Sequence(tag types.Tag) ([]*Dataset, bool) {
	e, ok := d.Get(tag)
	if !ok {
		return nil, false
	}
	seq := e.Sequence()
	if seq == nil {
		return nil, false
	}
	return seq.Items, true
}

// Clone returns a deep copy of the element structure. Binary values still
// share the parsed buffer, which is never written to.
func (d *Dataset) Clone() *Dataset {
	out := &Dataset{
		elements:  orderedmap.NewOrderedMapWithCapacity[types.Tag, *Element](d.elements.Len()),
		dict:      d.dict,
		syntax:    d.syntax,
		codec:     d.codec,
		logger:    d.logger,
		delimited: d.delimited,

		maxPixelSamples: d.maxPixelSamples,
	}
	d.Range(func(e *Element) bool {
		c := *e
		switch v := e.Value.(type) {
		case *Sequence:
			seq := &Sequence{Items: make([]*Dataset, len(v.Items))}
			for i, item := range v.Items {
				seq.Items[i] = item.Clone()
			}
			c.Value = seq
		case []string:
			c.Value = append([]string(nil), v...)
		case *EncapsulatedPixelData:
			c.Value = &EncapsulatedPixelData{
				Offsets:   append([]uint32(nil), v.Offsets...),
				Fragments: append([][]byte(nil), v.Fragments...),
			}
		}
		out.set(&c)
		return true
	})
	return out
}

func parseDecimal(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}
