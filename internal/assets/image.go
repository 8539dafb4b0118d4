package assets

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Format describes a recognized image encoding.
type Format struct {
	Ext         string
	ContentType string
}

var formats = map[string]Format{
	"jpeg": {Ext: "jpg", ContentType: "image/jpeg"},
	"png":  {Ext: "png", ContentType: "image/png"},
	"gif":  {Ext: "gif", ContentType: "image/gif"},
	"webp": {Ext: "webp", ContentType: "image/webp"},
	"bmp":  {Ext: "bmp", ContentType: "image/bmp"},
	"tiff": {Ext: "tiff", ContentType: "image/tiff"},
}

// DetectFormat sniffs the image header. Only the header is decoded.
func DetectFormat(data []byte) (Format, error) {
	if len(data) == 0 {
		return Format{}, ErrEmptyAsset
	}
	_, name, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Format{}, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	f, ok := formats[name]
	if !ok {
		return Format{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}
	return f, nil
}
