// Command dcmdump prints the contents of DICOM files and optionally exports
// their pixel data as windowed 8-bit frames.
package main

import (
	"bytes"
	"context"
	stderrors "errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"syscall"

	"github.com/caio-sobreiro/dicomfile/dicom"
	"github.com/caio-sobreiro/dicomfile/dictionary"
	"github.com/caio-sobreiro/dicomfile/errors"
	"github.com/caio-sobreiro/dicomfile/radiometric"
	"github.com/caio-sobreiro/dicomfile/summary"
)

type options struct {
	summary  bool
	pixels   bool
	window   *window
	outDir   string
	compress string
	parse    []dicom.Option
}

type window struct {
	center, width float64
}

func main() {
	showSummary := flag.Bool("summary", false, "Print patient, study, series and image summary instead of the element tree")
	exportPixels := flag.Bool("pixels", false, "Decode pixel data and write one 8-bit .raw file per frame")
	windowFlag := flag.String("window", "", "Window as center,width (default: from the file, else min/max)")
	outDir := flag.String("out", ".", "Directory for exported frames")
	compress := flag.String("compress", "none", "Frame compression: none, zstd, lz4 or brotli")
	workers := flag.Int("workers", runtime.GOMAXPROCS(0), "Number of files parsed concurrently")
	dictFile := flag.String("dict", "", "TSV file with additional dictionary entries")
	verbose := flag.Bool("v", false, "Enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if flag.NArg() == 0 {
		logger.Error("Usage: dcmdump [flags] file...")
		os.Exit(2)
	}

	opts := options{
		summary:  *showSummary,
		pixels:   *exportPixels,
		outDir:   *outDir,
		compress: *compress,
		parse:    []dicom.Option{dicom.WithLogger(logger)},
	}
	check, _, err := newCompressor(opts.compress, io.Discard)
	if err != nil {
		logger.Error("Invalid -compress", "error", err)
		os.Exit(2)
	}
	check.Close()
	if *windowFlag != "" {
		w, err := parseWindow(*windowFlag)
		if err != nil {
			logger.Error("Invalid -window", "error", err)
			os.Exit(2)
		}
		opts.window = &w
	}
	if *dictFile != "" {
		dict, err := loadDictionary(*dictFile)
		if err != nil {
			logger.Error("Failed to load dictionary", "error", err, "file", *dictFile)
			os.Exit(1)
		}
		opts.parse = append(opts.parse, dicom.WithDictionary(dict))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	results := runAll(ctx, flag.Args(), *workers, func(ctx context.Context, path string) ([]byte, error) {
		return processFile(ctx, logger, path, opts)
	})

	failed := 0
	for i, res := range results {
		path := flag.Arg(i)
		switch {
		case res.err == nil:
			os.Stdout.Write(res.output)
		case stderrors.Is(res.err, context.Canceled):
			logger.Info("Skipped", "file", path, "reason", res.err.Error())
			failed++
		default:
			logger.Error("Failed to process file", "file", path, "error", res.err)
			failed++
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
}

// processFile renders the report for one file.
func processFile(ctx context.Context, logger *slog.Logger, path string, opts options) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ds, err := dicom.ParseFile(path, opts.parse...)
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	fmt.Fprintf(&out, "# %s (%s)\n", path, ds.TransferSyntax())
	if opts.summary {
		out.WriteString(summary.Format(summary.All(ds)))
	} else {
		dumpDataset(&out, ds, 0)
	}

	if opts.pixels {
		frames, err := renderFrames(ds, opts.window)
		switch {
		case stderrors.Is(err, errors.ErrExternalCodecRequired):
			logger.Warn("Pixel data needs an external codec, not exported", "file", path, "error", err)
		case err != nil:
			return nil, fmt.Errorf("pixel data: %w", err)
		default:
			base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			written, err := writeFrames(opts.outDir, base, frames, opts.compress)
			if err != nil {
				return nil, err
			}
			for _, name := range written {
				fmt.Fprintf(&out, "wrote %s\n", name)
			}
			logger.Debug("Exported frames", "file", path, "frames", len(written))
		}
	}
	return out.Bytes(), nil
}

// renderFrames windows every frame of ds, with w when set and otherwise
// with the dataset's own window.
func renderFrames(ds *dicom.Dataset, w *window) ([][]uint8, error) {
	if w == nil {
		return radiometric.Display(ds)
	}
	buf, err := ds.PixelData()
	if err != nil {
		return nil, err
	}
	p := radiometric.ParamsFromDataset(ds)
	img := radiometric.Rescale(buf, p.Slope, p.Intercept)
	frames := make([][]uint8, buf.Shape.Frames)
	for i := range frames {
		if frames[i], err = radiometric.WindowLevel(img.Frame(i), w.center, w.width); err != nil {
			return nil, err
		}
	}
	return frames, nil
}

func parseWindow(s string) (window, error) {
	c, wd, ok := strings.Cut(s, ",")
	if !ok {
		return window{}, fmt.Errorf("window %q: want center,width", s)
	}
	center, err := strconv.ParseFloat(strings.TrimSpace(c), 64)
	if err != nil {
		return window{}, fmt.Errorf("window center: %w", err)
	}
	width, err := strconv.ParseFloat(strings.TrimSpace(wd), 64)
	if err != nil {
		return window{}, fmt.Errorf("window width: %w", err)
	}
	if !(width > 0) {
		return window{}, fmt.Errorf("window width %v must be positive", width)
	}
	return window{center: center, width: width}, nil
}

func loadDictionary(path string) (*dictionary.Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	entries, err := dictionary.LoadTSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return dictionary.New(entries), nil
}
