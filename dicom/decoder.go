package dicom

import (
	"fmt"
	"log/slog"

	"golang.org/x/text/encoding"

	"github.com/caio-sobreiro/dicomfile/errors"
	"github.com/caio-sobreiro/dicomfile/types"
)

type frameKind int

const (
	frameDataset frameKind = iota
	frameSequence
)

// frame is one level of the parse stack: either a dataset (the root or an
// item) collecting elements, or a sequence collecting items.
type frame struct {
	kind   frameKind
	ds     *Dataset
	seq    *Sequence
	syntax Syntax
	// owner is the tag that opened the frame, used for error context.
	owner types.Tag
	// end is the absolute offset the frame ends at, or -1 when it is
	// terminated by a delimiter.
	end   int
	item  bool
	depth int
}

func (f *frame) delimited() bool {
	return f.end < 0
}

// decoder turns the bytes under a cursor into datasets. Nesting is handled
// with an explicit stack so hostile input cannot exhaust the goroutine stack.
type decoder struct {
	cfg *config
	cur *Cursor
	enc encoding.Encoding
	log *slog.Logger
}

func newDecoder(cfg *config, cur *Cursor) *decoder {
	return &decoder{cfg: cfg, cur: cur, log: cfg.logger}
}

// decode fills root with elements read until the cursor reaches end.
func (d *decoder) decode(root *Dataset, syntax Syntax, end int) error {
	stack := []*frame{{kind: frameDataset, ds: root, syntax: syntax, end: end}}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		d.cur.SetByteOrder(top.syntax.ByteOrder)
		off := d.cur.Offset()

		if !top.delimited() {
			if off == top.end {
				stack = stack[:len(stack)-1]
				continue
			}
			if off > top.end {
				return errors.NewMalformedError(top.owner, int64(off), "read %d bytes past end of enclosing value", off-top.end)
			}
		} else if d.cur.Remaining() == 0 {
			return errors.NewElementError(errors.ErrOutOfData, top.owner, int64(off), "missing delimiter")
		}

		var (
			next *frame
			pop  bool
			err  error
		)
		if top.kind == frameSequence {
			next, pop, err = d.stepSequence(top)
		} else {
			next, pop, err = d.stepDataset(top)
		}
		if err != nil {
			return err
		}
		switch {
		case pop:
			stack = stack[:len(stack)-1]
		case next != nil:
			if next.depth > d.cfg.limits.MaxDepth {
				return errors.NewElementError(errors.ErrLimitExceeded, next.owner, int64(off),
					fmt.Sprintf("sequence nesting deeper than %d", d.cfg.limits.MaxDepth))
			}
			stack = append(stack, next)
		}
	}
	return nil
}

// stepSequence reads one item header, or the sequence delimiter.
func (d *decoder) stepSequence(top *frame) (*frame, bool, error) {
	start := d.cur.Offset()
	tag, length, err := d.readItemHeader(top.owner)
	if err != nil {
		return nil, false, err
	}

	switch tag {
	case types.SequenceDelimitationTag:
		if !top.delimited() {
			return nil, false, errors.NewMalformedError(tag, int64(start), "sequence delimiter inside defined-length sequence %s", top.owner)
		}
		if length != 0 {
			d.log.Debug("Sequence delimiter with non-zero length", "tag", top.owner, "length", length)
		}
		return nil, true, nil
	case types.ItemTag:
	default:
		return nil, false, errors.NewMalformedError(tag, int64(start), "expected item in sequence %s", top.owner)
	}

	item := newDatasetFrom(d.cfg, top.syntax)
	top.seq.Items = append(top.seq.Items, item)

	f := &frame{kind: frameDataset, ds: item, syntax: top.syntax, owner: top.owner, end: -1, item: true, depth: top.depth}
	if length == UndefinedLength {
		item.delimited = true
		return f, false, nil
	}
	if err := d.checkValue(top, types.ItemTag, start, length); err != nil {
		return nil, false, err
	}
	f.end = d.cur.Offset() + int(length)
	return f, false, nil
}

// stepDataset reads one element into top.ds. It returns a new frame when
// the element opens a sequence.
func (d *decoder) stepDataset(top *frame) (*frame, bool, error) {
	start := d.cur.Offset()
	tag, err := d.cur.Tag()
	if err != nil {
		return nil, false, errors.NewOutOfDataError(top.owner, int64(start), 4, d.cur.Remaining())
	}

	if tag.IsStructural() {
		length, err := d.cur.Uint32()
		if err != nil {
			return nil, false, errors.NewOutOfDataError(tag, int64(start), 4, d.cur.Remaining())
		}
		if tag == types.ItemDelimitationTag && top.item && top.delimited() {
			if length != 0 {
				d.log.Debug("Item delimiter with non-zero length", "sequence", top.owner, "length", length)
			}
			return nil, true, nil
		}
		return nil, false, errors.NewMalformedError(tag, int64(start), "unexpected %s in dataset", tag)
	}

	vr, length, mismatch, err := d.readHeader(top.syntax, tag, start)
	if err != nil {
		return nil, false, err
	}
	if length != UndefinedLength && length > d.cfg.limits.MaxElementLength {
		return nil, false, errors.NewElementError(errors.ErrLimitExceeded, tag, int64(start),
			fmt.Sprintf("value length %d over limit %d", length, d.cfg.limits.MaxElementLength))
	}

	elem := &Element{Tag: tag, VR: vr, Length: length, Offset: int64(start), VRMismatch: mismatch}

	switch {
	case vr == types.VR_SQ || (vr == types.VR_UN && length == UndefinedLength):
		seq := &Sequence{}
		elem.Value = seq
		top.ds.set(elem)

		syntax := top.syntax
		if vr == types.VR_UN {
			// UN content is always implicit VR little endian (PS3.5 6.2.2)
			syntax = ImplicitLittleEndian
		}
		f := &frame{kind: frameSequence, seq: seq, syntax: syntax, owner: tag, end: -1, depth: top.depth + 1}
		if length != UndefinedLength {
			if err := d.checkValue(top, tag, start, length); err != nil {
				return nil, false, err
			}
			f.end = d.cur.Offset() + int(length)
		}
		return f, false, nil

	case length == UndefinedLength:
		if tag != types.PixelDataTag {
			return nil, false, errors.NewMalformedError(tag, int64(start), "undefined length not allowed for VR %s", vr)
		}
		px, err := d.readFragments(top, tag)
		if err != nil {
			return nil, false, err
		}
		elem.Value = px
		top.ds.set(elem)
		return nil, false, nil
	}

	if err := d.checkValue(top, tag, start, length); err != nil {
		return nil, false, err
	}
	raw, _ := d.cur.Bytes(int(length))
	if length%2 == 1 {
		d.log.Debug("Odd value length", "tag", tag, "vr", vr, "length", length)
	}

	value, err := decodeValue(vr, raw, top.syntax.ByteOrder, d.enc)
	if err != nil {
		return nil, false, errors.NewMalformedError(tag, int64(start), "%v", err)
	}
	elem.Value = value
	top.ds.set(elem)

	if tag == types.SpecificCharacterSetTag && d.cfg.characterSet {
		d.useCharacterSet(elem.Strings())
	}
	return nil, false, nil
}

// readHeader reads the VR and length that follow a tag.
func (d *decoder) readHeader(syntax Syntax, tag types.Tag, start int) (types.VR, uint32, bool, error) {
	entry, known := d.cfg.dict.Lookup(tag)

	if !syntax.ExplicitVR {
		length, err := d.cur.Uint32()
		if err != nil {
			return "", 0, false, errors.NewOutOfDataError(tag, int64(start), 4, d.cur.Remaining())
		}
		if !known || entry.VR == "" {
			if d.cfg.unknownVR == UnknownVRError {
				return "", 0, false, errors.NewMalformedError(tag, int64(start), "no dictionary VR for tag under implicit VR")
			}
			return types.VR_UN, length, false, nil
		}
		return entry.VR, length, false, nil
	}

	code, err := d.cur.Bytes(2)
	if err != nil {
		return "", 0, false, errors.NewOutOfDataError(tag, int64(start), 2, d.cur.Remaining())
	}
	vr, ok := types.ParseVR(string(code))
	if !ok {
		return "", 0, false, errors.NewMalformedError(tag, int64(start), "invalid VR %q", code)
	}

	var length uint32
	if vr.HasLongLength() {
		if err := d.cur.Skip(2); err != nil {
			return "", 0, false, errors.NewOutOfDataError(tag, int64(start), 2, d.cur.Remaining())
		}
		if length, err = d.cur.Uint32(); err != nil {
			return "", 0, false, errors.NewOutOfDataError(tag, int64(start), 4, d.cur.Remaining())
		}
	} else {
		short, err := d.cur.Uint16()
		if err != nil {
			return "", 0, false, errors.NewOutOfDataError(tag, int64(start), 2, d.cur.Remaining())
		}
		length = uint32(short)
	}

	mismatch := known && entry.VR != "" && vr != entry.VR && vr != entry.AltVR
	if mismatch {
		d.log.Debug("Explicit VR differs from dictionary",
			"tag", tag,
			"explicit_vr", vr,
			"dictionary_vr", entry.VR,
			"name", entry.Name)
	}
	return vr, length, mismatch, nil
}

// readItemHeader reads an item or delimiter tag and its 32-bit length.
func (d *decoder) readItemHeader(owner types.Tag) (types.Tag, uint32, error) {
	start := d.cur.Offset()
	tag, err := d.cur.Tag()
	if err != nil {
		return types.Tag{}, 0, errors.NewOutOfDataError(owner, int64(start), 4, d.cur.Remaining())
	}
	length, err := d.cur.Uint32()
	if err != nil {
		return types.Tag{}, 0, errors.NewOutOfDataError(tag, int64(start), 4, d.cur.Remaining())
	}
	return tag, length, nil
}

// readFragments reads the basic offset table and fragments of encapsulated
// pixel data up to the sequence delimiter.
func (d *decoder) readFragments(top *frame, tag types.Tag) (*EncapsulatedPixelData, error) {
	px := &EncapsulatedPixelData{}
	first := true
	for {
		start := d.cur.Offset()
		itemTag, length, err := d.readItemHeader(tag)
		if err != nil {
			return nil, err
		}
		if itemTag == types.SequenceDelimitationTag {
			if first {
				return nil, errors.NewMalformedError(tag, int64(start), "encapsulated pixel data without basic offset table")
			}
			return px, nil
		}
		if itemTag != types.ItemTag {
			return nil, errors.NewMalformedError(itemTag, int64(start), "expected fragment item in pixel data")
		}
		if length == UndefinedLength {
			return nil, errors.NewMalformedError(itemTag, int64(start), "fragment with undefined length")
		}
		if err := d.checkValue(top, tag, start, length); err != nil {
			return nil, err
		}
		b, _ := d.cur.Bytes(int(length))

		if !first {
			px.Fragments = append(px.Fragments, b)
			continue
		}
		first = false
		if len(b)%4 != 0 {
			return nil, errors.NewMalformedError(tag, int64(start), "basic offset table length %d not a multiple of 4", len(b))
		}
		table := NewCursor(b, d.cur.ByteOrder())
		for table.Remaining() > 0 {
			v, _ := table.Uint32()
			px.Offsets = append(px.Offsets, v)
		}
	}
}

// checkValue verifies that length bytes starting at the cursor lie inside
// both the buffer and the enclosing frame.
func (d *decoder) checkValue(top *frame, tag types.Tag, start int, length uint32) error {
	if uint64(length) > uint64(d.cur.Remaining()) {
		return errors.NewOutOfDataError(tag, int64(start), int(length), d.cur.Remaining())
	}
	if !top.delimited() && d.cur.Offset()+int(length) > top.end {
		return errors.NewMalformedError(tag, int64(start), "length %d overruns enclosing %s ending at offset %d", length, top.owner, top.end)
	}
	return nil
}

func (d *decoder) useCharacterSet(terms []string) {
	enc, err := lookupEncoding(terms)
	if err != nil {
		d.log.Debug("Ignoring specific character set", "terms", terms, "error", err)
		return
	}
	d.enc = enc
}
