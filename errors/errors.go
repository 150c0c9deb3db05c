// Package errors provides DICOM-specific error types for better error handling
package errors

import (
	"errors"
	"fmt"

	"github.com/caio-sobreiro/dicomfile/types"
)

// Common errors
var (
	ErrNotAContainerFile         = errors.New("dicom: missing DICM marker after preamble")
	ErrMalformedElement          = errors.New("dicom: malformed element")
	ErrOutOfData                 = errors.New("dicom: out of data")
	ErrUnsupportedTransferSyntax = errors.New("dicom: unsupported transfer syntax")
	ErrInconsistentPixelLength   = errors.New("dicom: pixel data length does not match shape")
	ErrExternalCodecRequired     = errors.New("dicom: external codec required")
	ErrInvalidWindow             = errors.New("dicom: invalid window width")
	ErrLimitExceeded             = errors.New("dicom: limit exceeded")
	ErrInvalidPixelAttributes    = errors.New("dicom: invalid pixel attributes")
)

// ElementError is a structural failure while decoding one data element.
// Kind is one of ErrMalformedElement, ErrOutOfData or ErrLimitExceeded.
type ElementError struct {
	Tag    types.Tag
	Offset int64
	Kind   error
	Msg    string
}

func (e *ElementError) Error() string {
	kind := "malformed element"
	if e.Kind != nil {
		kind = e.Kind.Error()
	}
	if e.Msg == "" {
		return fmt.Sprintf("%s at tag %s offset %d", kind, e.Tag, e.Offset)
	}
	return fmt.Sprintf("%s at tag %s offset %d: %s", kind, e.Tag, e.Offset, e.Msg)
}

func (e *ElementError) Unwrap() error {
	return e.Kind
}

// NewElementError creates a new element error
func NewElementError(kind error, tag types.Tag, offset int64, msg string) *ElementError {
	return &ElementError{
		Tag:    tag,
		Offset: offset,
		Kind:   kind,
		Msg:    msg,
	}
}

// NewMalformedError is shorthand for an ElementError of kind ErrMalformedElement.
func NewMalformedError(tag types.Tag, offset int64, format string, args ...any) *ElementError {
	return NewElementError(ErrMalformedElement, tag, offset, fmt.Sprintf(format, args...))
}

// NewOutOfDataError is shorthand for an ElementError of kind ErrOutOfData.
func NewOutOfDataError(tag types.Tag, offset int64, need, have int) *ElementError {
	return NewElementError(ErrOutOfData, tag, offset, fmt.Sprintf("need %d bytes, %d remaining", need, have))
}

// TransferSyntaxError reports a transfer syntax UID that pixel decoding cannot handle.
type TransferSyntaxError struct {
	UID string
}

func (e *TransferSyntaxError) Error() string {
	return fmt.Sprintf("unsupported transfer syntax %q", e.UID)
}

func (e *TransferSyntaxError) Unwrap() error {
	return ErrUnsupportedTransferSyntax
}

// NewTransferSyntaxError creates a new transfer syntax error
func NewTransferSyntaxError(uid string) *TransferSyntaxError {
	return &TransferSyntaxError{UID: uid}
}

// PixelLengthError reports a pixel data byte count that disagrees with the declared shape.
type PixelLengthError struct {
	Want int
	Got  int
}

func (e *PixelLengthError) Error() string {
	return fmt.Sprintf("pixel data length %d, shape requires %d", e.Got, e.Want)
}

func (e *PixelLengthError) Unwrap() error {
	return ErrInconsistentPixelLength
}

// NewPixelLengthError creates a new pixel length error
func NewPixelLengthError(want, got int) *PixelLengthError {
	return &PixelLengthError{Want: want, Got: got}
}

// ExternalCodecError signals that pixel data is encapsulated in a syntax this
// module does not decode. It is a deferral: the caller still receives the
// encoded frames alongside it.
type ExternalCodecError struct {
	UID    string
	Frames int
}

func (e *ExternalCodecError) Error() string {
	return fmt.Sprintf("external codec required for transfer syntax %s (%d frames)", e.UID, e.Frames)
}

func (e *ExternalCodecError) Unwrap() error {
	return ErrExternalCodecRequired
}

// NewExternalCodecError creates a new external codec error
func NewExternalCodecError(uid string, frames int) *ExternalCodecError {
	return &ExternalCodecError{UID: uid, Frames: frames}
}

// WindowError reports a non-positive window width.
type WindowError struct {
	Width float64
}

func (e *WindowError) Error() string {
	return fmt.Sprintf("window width must be positive, got %g", e.Width)
}

func (e *WindowError) Unwrap() error {
	return ErrInvalidWindow
}

// NewWindowError creates a new window error
func NewWindowError(width float64) *WindowError {
	return &WindowError{Width: width}
}

// PixelAttributeError reports an image pixel module attribute outside its allowed range.
type PixelAttributeError struct {
	Attribute string
	Value     int
}

func (e *PixelAttributeError) Error() string {
	return fmt.Sprintf("invalid %s: %d", e.Attribute, e.Value)
}

func (e *PixelAttributeError) Unwrap() error {
	return ErrInvalidPixelAttributes
}

// NewPixelAttributeError creates a new pixel attribute error
func NewPixelAttributeError(attribute string, value int) *PixelAttributeError {
	return &PixelAttributeError{Attribute: attribute, Value: value}
}

// IsDeferral reports whether err only signals that an external codec is needed.
func IsDeferral(err error) bool {
	return errors.Is(err, ErrExternalCodecRequired)
}
