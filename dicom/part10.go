package dicom

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/flate"

	"github.com/caio-sobreiro/dicomfile/errors"
	"github.com/caio-sobreiro/dicomfile/types"
)

const (
	preambleLength = 128
	magic          = "DICM"
	headerLength   = preambleLength + len(magic)
)

// HasPart10Header checks if the data starts with a DICOM Part 10 header.
//
// Returns true if the data contains the 128-byte preamble followed by "DICM".
func HasPart10Header(data []byte) bool {
	if len(data) < headerLength {
		return false
	}
	return string(data[preambleLength:headerLength]) == magic
}

// StripPart10Header removes the DICOM Part 10 preamble and File Meta Information
// to extract just the dataset.
//
// DICOM Part 10 files contain:
//   - 128 byte preamble
//   - 4 byte "DICM" prefix
//   - File Meta Information elements (group 0x0002)
//   - Dataset (the actual DICOM data)
//
// The body is returned exactly as stored; a deflated body stays deflated.
// The second result is the transfer syntax UID declared in the meta group.
func StripPart10Header(data []byte) ([]byte, string, error) {
	if !HasPart10Header(data) {
		return nil, "", fmt.Errorf("%w (need %d bytes ending in %q, got %d bytes)", errors.ErrNotAContainerFile, headerLength, magic, len(data))
	}
	cfg := newConfig(nil)
	meta, end, err := parseMeta(cfg, data)
	if err != nil {
		return nil, "", err
	}
	return data[end:], meta.String(types.TransferSyntaxUIDTag), nil
}

// Parse parses a complete Part 10 file held in memory. The returned dataset
// holds the file meta elements followed by the body elements.
func Parse(data []byte, opts ...Option) (*Dataset, error) {
	if !HasPart10Header(data) {
		return nil, fmt.Errorf("%w (need %d bytes ending in %q, got %d bytes)", errors.ErrNotAContainerFile, headerLength, magic, len(data))
	}
	cfg := newConfig(opts)

	ds, metaEnd, err := parseMeta(cfg, data)
	if err != nil {
		return nil, fmt.Errorf("parse file meta information: %w", err)
	}

	uid := ds.String(types.TransferSyntaxUIDTag)
	syntax := ResolveSyntax(uid)
	cfg.logger.Debug("Resolved transfer syntax",
		"transfer_syntax", uid,
		"name", syntax.String(),
		"known", syntax.Known,
		"dataset_start_offset", metaEnd)
	if uid == "" {
		cfg.logger.Debug("No transfer syntax in file meta information, assuming implicit VR little endian")
	}

	if err := parseBody(cfg, ds, data, metaEnd, syntax); err != nil {
		return nil, err
	}
	return ds, nil
}

// ParseReader reads r to the end and parses it as a Part 10 file.
func ParseReader(r io.Reader, opts ...Option) (*Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read dicom stream: %w", err)
	}
	return Parse(data, opts...)
}

// ParseFile reads and parses the Part 10 file at path.
func ParseFile(path string, opts ...Option) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	ds, err := Parse(data, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ds, nil
}

// ParseDataset parses a bare dataset (no preamble, no meta group) encoded
// with the given transfer syntax. An empty UID means implicit VR little endian.
func ParseDataset(body []byte, transferSyntaxUID string, opts ...Option) (*Dataset, error) {
	cfg := newConfig(opts)
	syntax := ResolveSyntax(transferSyntaxUID)
	ds := newDatasetFrom(cfg, syntax)
	if err := parseBody(cfg, ds, body, 0, syntax); err != nil {
		return nil, err
	}
	return ds, nil
}

// parseBody decodes data[start:] into ds.
func parseBody(cfg *config, ds *Dataset, data []byte, start int, syntax Syntax) error {
	ds.syntax = syntax
	if syntax.Deflated {
		inflated, err := inflate(data[start:], cfg.limits.MaxInflatedSize)
		if err != nil {
			return err
		}
		cfg.logger.Debug("Inflated dataset body", "compressed", len(data)-start, "inflated", len(inflated))
		// offsets of body elements are relative to the inflated stream
		data, start = inflated, 0
	}

	cur := NewCursor(data, syntax.ByteOrder)
	if err := cur.Skip(start); err != nil {
		return errors.NewOutOfDataError(types.Tag{}, int64(start), start, len(data))
	}
	if !syntax.Known {
		syntax = syntax.sniffVR(data[start:])
		ds.syntax = syntax
		cfg.logger.Debug("Sniffed VR mode of unknown transfer syntax", "transfer_syntax", syntax.UID, "explicit_vr", syntax.ExplicitVR)
	}
	return newDecoder(cfg, cur).decode(ds, syntax, len(data))
}

// parseMeta decodes the file meta group that follows the preamble. It
// returns the dataset holding the meta elements and the offset of the body.
func parseMeta(cfg *config, data []byte) (*Dataset, int, error) {
	end, err := metaGroupEnd(data)
	if err != nil {
		return nil, 0, err
	}
	ds := newDatasetFrom(cfg, MetaSyntax)
	cur := NewCursor(data, binary.LittleEndian)
	_ = cur.Skip(headerLength)
	if err := newDecoder(cfg, cur).decode(ds, MetaSyntax, end); err != nil {
		return nil, 0, err
	}
	return ds, end, nil
}

// metaGroupEnd walks the explicit VR little endian element headers after the
// magic marker and returns the offset of the first element outside group 0002.
func metaGroupEnd(data []byte) (int, error) {
	cur := NewCursor(data, binary.LittleEndian)
	_ = cur.Skip(headerLength)

	for cur.Remaining() >= 4 {
		start := cur.Offset()
		peek, _ := cur.Peek(4)
		tag := types.Tag{Group: binary.LittleEndian.Uint16(peek), Element: binary.LittleEndian.Uint16(peek[2:])}
		if !tag.IsMetaElement() {
			return start, nil
		}
		_ = cur.Skip(4)

		code, err := cur.Bytes(2)
		if err != nil {
			return 0, errors.NewOutOfDataError(tag, int64(start), 2, cur.Remaining())
		}
		vr, ok := types.ParseVR(string(code))
		if !ok {
			return 0, errors.NewMalformedError(tag, int64(start), "invalid VR %q in file meta information", code)
		}

		var length uint32
		if vr.HasLongLength() {
			if err = cur.Skip(2); err == nil {
				length, err = cur.Uint32()
			}
		} else {
			var short uint16
			short, err = cur.Uint16()
			length = uint32(short)
		}
		if err != nil {
			return 0, errors.NewOutOfDataError(tag, int64(start), 4, cur.Remaining())
		}
		if length == UndefinedLength {
			return 0, errors.NewMalformedError(tag, int64(start), "undefined length in file meta information")
		}
		if err := cur.Skip(int(length)); err != nil {
			return 0, errors.NewOutOfDataError(tag, int64(start), int(length), cur.Remaining())
		}
	}
	return cur.Offset(), nil
}

// inflate decompresses a raw deflate stream (RFC 1951, no zlib header).
func inflate(body []byte, limit int64) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(body))
	defer r.Close()

	out, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("inflate dataset body: %w", err)
	}
	if int64(len(out)) > limit {
		return nil, fmt.Errorf("%w: inflated body larger than %d bytes", errors.ErrLimitExceeded, limit)
	}
	return out, nil
}

// deflate compresses a dataset body for the deflated transfer syntax.
func deflate(body []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.DefaultCompression)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(body); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
