// Package photo normalizes uploaded item photos into bounded JPEGs.
package photo

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"

	"golang.org/x/image/draw"
)

const (
	// MaxDimension bounds the width and height of a stored photo.
	MaxDimension = 1280
	// MaxUploadBytes bounds the size of an accepted upload.
	MaxUploadBytes = 10 << 20
	jpegQuality    = 82
	outputMIME     = "image/jpeg"
)

// ErrUnsupported is returned for uploads that are not JPEG or PNG.
var ErrUnsupported = errors.New("unsupported photo format")

// ErrTooLarge is returned when an upload exceeds MaxUploadBytes.
var ErrTooLarge = errors.New("photo too large")

// Photo is a normalized photo ready to store.
type Photo struct {
	Data   []byte
	MIME   string
	Width  int
	Height int
}

// Normalize sniffs the upload, decodes it, flattens transparency onto white,
// shrinks it to fit MaxDimension and re-encodes it as JPEG. The client's
// declared content type is never trusted.
func Normalize(r io.Reader) (*Photo, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading photo: %w", err)
	}
	if len(data) > MaxUploadBytes {
		return nil, ErrTooLarge
	}

	var img image.Image
	switch detected := http.DetectContentType(data); detected {
	case "image/jpeg":
		img, err = jpeg.Decode(bytes.NewReader(data))
	case "image/png":
		img, err = png.Decode(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, detected)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding photo: %w", err)
	}

	out := fit(img, MaxDimension)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encoding photo: %w", err)
	}

	b := out.Bounds()
	return &Photo{Data: buf.Bytes(), MIME: outputMIME, Width: b.Dx(), Height: b.Dy()}, nil
}

// fit draws img onto an opaque canvas no larger than maxDim on either side,
// keeping the aspect ratio. Images already within bounds keep their size.
func fit(img image.Image, maxDim int) *image.RGBA {
	src := img.Bounds()
	w, h := scaledSize(src.Dx(), src.Dy(), maxDim)

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	if w == src.Dx() && h == src.Dy() {
		draw.Draw(dst, dst.Bounds(), img, src.Min, draw.Over)
		return dst
	}
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, src, draw.Over, nil)
	return dst
}

func scaledSize(w, h, maxDim int) (int, int) {
	if w <= maxDim && h <= maxDim {
		return w, h
	}
	if w >= h {
		h = max(1, h*maxDim/w)
		w = maxDim
	} else {
		w = max(1, w*maxDim/h)
		h = maxDim
	}
	return w, h
}
