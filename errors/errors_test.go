package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/caio-sobreiro/dicomfile/types"
)

func TestElementError(t *testing.T) {
	tag := types.Tag{Group: 0x0028, Element: 0x0010}
	err := NewOutOfDataError(tag, 132, 2, 1)

	if err.Tag != tag {
		t.Errorf("Tag = %v, want %v", err.Tag, tag)
	}
	if err.Offset != 132 {
		t.Errorf("Offset = %d, want 132", err.Offset)
	}
	if !errors.Is(err, ErrOutOfData) {
		t.Error("errors.Is(err, ErrOutOfData) = false")
	}
	if errors.Is(err, ErrMalformedElement) {
		t.Error("out of data error should not match ErrMalformedElement")
	}

	msg := err.Error()
	if !strings.Contains(msg, "(0028,0010)") {
		t.Errorf("Error() = %q, want tag in message", msg)
	}
}

func TestElementError_Wrapped(t *testing.T) {
	inner := NewMalformedError(types.ItemTag, 40, "item length %d exceeds sequence", 12)
	err := fmt.Errorf("parse dataset: %w", inner)

	var ee *ElementError
	if !errors.As(err, &ee) {
		t.Fatal("errors.As should find *ElementError")
	}
	if ee.Tag != types.ItemTag {
		t.Errorf("Tag = %v, want %v", ee.Tag, types.ItemTag)
	}
	if !errors.Is(err, ErrMalformedElement) {
		t.Error("wrapped error should match ErrMalformedElement")
	}
}

func TestTypedErrorsUnwrap(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"transfer syntax", NewTransferSyntaxError("1.2.3"), ErrUnsupportedTransferSyntax},
		{"pixel length", NewPixelLengthError(512, 510), ErrInconsistentPixelLength},
		{"external codec", NewExternalCodecError("1.2.840.10008.1.2.4.50", 1), ErrExternalCodecRequired},
		{"window", NewWindowError(0), ErrInvalidWindow},
		{"pixel attribute", NewPixelAttributeError("BitsAllocated", 12), ErrInvalidPixelAttributes},
		{"limit", NewElementError(ErrLimitExceeded, types.PixelDataTag, 0, "too long"), ErrLimitExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.sentinel) {
				t.Errorf("errors.Is(%v, %v) = false", tt.err, tt.sentinel)
			}
			if tt.err.Error() == "" {
				t.Error("Error message should not be empty")
			}
		})
	}
}

func TestTransferSyntaxError_CarriesUID(t *testing.T) {
	err := NewTransferSyntaxError("1.2.3.4.5")
	if !strings.Contains(err.Error(), "1.2.3.4.5") {
		t.Errorf("Error() = %q, want UID in message", err.Error())
	}
}

func TestIsDeferral(t *testing.T) {
	if !IsDeferral(fmt.Errorf("pixel data: %w", NewExternalCodecError("1.2", 2))) {
		t.Error("external codec error should be a deferral")
	}
	if IsDeferral(NewPixelLengthError(1, 2)) {
		t.Error("pixel length error should not be a deferral")
	}
	if IsDeferral(nil) {
		t.Error("nil should not be a deferral")
	}
}
