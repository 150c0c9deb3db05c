package dicom

import (
	"log/slog"

	"github.com/caio-sobreiro/dicomfile/dictionary"
	"github.com/caio-sobreiro/dicomfile/pixel"
)

// UnknownVRPolicy decides what implicit VR parsing does with a tag the
// dictionary does not know.
type UnknownVRPolicy int

const (
	// UnknownVRAsUN keeps the value as opaque UN bytes.
	UnknownVRAsUN UnknownVRPolicy = iota
	// UnknownVRError fails the parse with a malformed element error.
	UnknownVRError
)

// Limits bounds the resources a single parse may consume. Zero fields take
// the defaults.
type Limits struct {
	// MaxElementLength caps the declared length of one value.
	MaxElementLength uint32
	// MaxDepth caps sequence nesting.
	MaxDepth int
	// MaxInflatedSize caps the size of a deflated body after inflation.
	MaxInflatedSize int64
	// MaxPixelSamples caps Frames × Rows × Columns × SamplesPerPixel before
	// pixel data is decoded.
	MaxPixelSamples int64
}

func defaultLimits() Limits {
	return Limits{
		MaxElementLength: 1 << 31, // 2 GiB
		MaxDepth:         64,
		MaxInflatedSize:  1 << 30, // 1 GiB
		MaxPixelSamples:  pixel.DefaultMaxSamples,
	}
}

func (l Limits) withDefaults() Limits {
	d := defaultLimits()
	if l.MaxElementLength == 0 {
		l.MaxElementLength = d.MaxElementLength
	}
	if l.MaxDepth == 0 {
		l.MaxDepth = d.MaxDepth
	}
	if l.MaxInflatedSize == 0 {
		l.MaxInflatedSize = d.MaxInflatedSize
	}
	if l.MaxPixelSamples == 0 {
		l.MaxPixelSamples = d.MaxPixelSamples
	}
	return l
}

type config struct {
	dict         *dictionary.Dictionary
	unknownVR    UnknownVRPolicy
	logger       *slog.Logger
	limits       Limits
	codec        pixel.Codec
	characterSet bool
}

// Option configures parsing.
type Option func(*config)

func newConfig(opts []Option) *config {
	cfg := &config{
		dict:         dictionary.Default(),
		logger:       slog.Default(),
		limits:       defaultLimits(),
		characterSet: true,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	cfg.limits = cfg.limits.withDefaults()
	return cfg
}

// WithDictionary replaces the tag dictionary used for implicit VR and name lookups.
func WithDictionary(d *dictionary.Dictionary) Option {
	return func(c *config) {
		if d != nil {
			c.dict = d
		}
	}
}

// WithUnknownVRPolicy sets how implicit VR parsing treats unknown tags.
func WithUnknownVRPolicy(p UnknownVRPolicy) Option {
	return func(c *config) { c.unknownVR = p }
}

// WithLogger sets the logger for parse diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithLimits sets resource limits.
func WithLimits(l Limits) Option {
	return func(c *config) { c.limits = l }
}

// WithCodec sets the codec Dataset.PixelData delegates encapsulated frames to.
func WithCodec(codec pixel.Codec) Option {
	return func(c *config) { c.codec = codec }
}

// WithCharacterSet controls whether text is decoded according to
// Specific Character Set (0008,0005). Enabled by default.
func WithCharacterSet(enabled bool) Option {
	return func(c *config) { c.characterSet = enabled }
}
