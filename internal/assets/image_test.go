package assets

import (
	"errors"
	"testing"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		wantExt  string
		wantType string
	}{
		{"png", pngBytes(t), "png", "image/png"},
		{"jpeg", jpegBytes(t), "jpg", "image/jpeg"},
		{"gif", gifBytes(t), "gif", "image/gif"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := DetectFormat(tt.data)
			if err != nil {
				t.Fatalf("DetectFormat: %v", err)
			}
			if f.Ext != tt.wantExt {
				t.Errorf("Ext = %q, want %q", f.Ext, tt.wantExt)
			}
			if f.ContentType != tt.wantType {
				t.Errorf("ContentType = %q, want %q", f.ContentType, tt.wantType)
			}
		})
	}
}

func TestDetectFormat_Empty(t *testing.T) {
	if _, err := DetectFormat(nil); !errors.Is(err, ErrEmptyAsset) {
		t.Errorf("expected ErrEmptyAsset, got %v", err)
	}
}

func TestDetectFormat_NotAnImage(t *testing.T) {
	_, err := DetectFormat([]byte("%PDF-1.7 definitely not an image"))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}
