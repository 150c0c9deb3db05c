package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// newCompressor wraps w for the named compression and returns the file
// extension to append. Closing the result flushes the stream but does not
// close w.
func newCompressor(kind string, w io.Writer) (io.WriteCloser, string, error) {
	switch kind {
	case "", "none":
		return nopWriteCloser{w}, "", nil
	case "zstd":
		enc, err := zstd.NewWriter(w)
		if err != nil {
			return nil, "", err
		}
		return enc, ".zst", nil
	case "lz4":
		return lz4.NewWriter(w), ".lz4", nil
	case "brotli":
		return brotli.NewWriter(w), ".br", nil
	}
	return nil, "", fmt.Errorf("unknown compression %q", kind)
}

// writeFrames writes each frame to dir as <base>_NNNN.raw plus the
// compression extension and returns the paths written.
func writeFrames(dir, base string, frames [][]uint8, kind string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(frames))
	for i, frame := range frames {
		path, err := writeFrame(dir, fmt.Sprintf("%s_%04d.raw", base, i), frame, kind)
		if err != nil {
			return paths, fmt.Errorf("frame %d: %w", i, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFrame(dir, name string, frame []uint8, kind string) (path string, err error) {
	f, err := os.CreateTemp(dir, name+".tmp*")
	if err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(f.Name())
		}
	}()

	w, ext, err := newCompressor(kind, f)
	if err != nil {
		return "", err
	}
	if _, err = w.Write(frame); err != nil {
		return "", err
	}
	if err = w.Close(); err != nil {
		return "", err
	}
	if err = f.Close(); err != nil {
		return "", err
	}
	path = filepath.Join(dir, name+ext)
	if err = os.Rename(f.Name(), path); err != nil {
		return "", err
	}
	return path, nil
}
