package media

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/image/webp"
)

// CompressThreshold is the byte size above which images are re-encoded before
// upload. Smaller files go up untouched.
const CompressThreshold = 2 * 1024 * 1024

const (
	defaultMaxDimension = 2048
	defaultQuality      = 85
	minQuality          = 30
)

// Compressor re-encodes oversized images to bound their byte size and pixel
// dimensions. The original MIME type is preserved where an encoder exists;
// webp input falls back to jpeg output since there is no pure-Go webp encoder.
type Compressor struct {
	MaxBytes     int64
	MaxDimension int
	Quality      int
}

func NewCompressor(maxBytes int64) *Compressor {
	return &Compressor{
		MaxBytes:     maxBytes,
		MaxDimension: defaultMaxDimension,
		Quality:      defaultQuality,
	}
}

// ShouldCompress reports whether the pipeline compresses this file at all.
// Only still images qualify; gif is left alone to avoid dropping animation.
func ShouldCompress(contentType string, size int64) bool {
	if !strings.HasPrefix(contentType, "image/") || contentType == "image/gif" {
		return false
	}
	return size > CompressThreshold
}

// Compress returns the re-encoded bytes and their content type.
func (c *Compressor) Compress(data []byte, contentType string) ([]byte, string, error) {
	img, err := c.decode(data, contentType)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > c.MaxDimension || bounds.Dy() > c.MaxDimension {
		img = imaging.Fit(img, c.MaxDimension, c.MaxDimension, imaging.Lanczos)
	}

	switch contentType {
	case "image/png":
		return c.encodePNG(img)
	default:
		return c.encodeJPEG(img)
	}
}

func (c *Compressor) decode(data []byte, contentType string) (image.Image, error) {
	if contentType == "image/webp" {
		return webp.Decode(bytes.NewReader(data))
	}
	return imaging.Decode(bytes.NewReader(data))
}

// encodeJPEG walks the quality down until the result fits under MaxBytes or
// quality bottoms out. The caller re-validates the final size either way.
func (c *Compressor) encodeJPEG(img image.Image) ([]byte, string, error) {
	quality := c.Quality

	for {
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, "", fmt.Errorf("failed to encode jpeg: %w", err)
		}

		if int64(buf.Len()) <= c.MaxBytes || quality <= minQuality {
			return buf.Bytes(), "image/jpeg", nil
		}

		quality -= 10
	}
}

// encodePNG has no quality knob, so oversized results are downscaled instead.
func (c *Compressor) encodePNG(img image.Image) ([]byte, string, error) {
	current := img

	for attempt := 0; ; attempt++ {
		var buf bytes.Buffer
		encoder := png.Encoder{CompressionLevel: png.BestCompression}
		if err := encoder.Encode(&buf, current); err != nil {
			return nil, "", fmt.Errorf("failed to encode png: %w", err)
		}

		if int64(buf.Len()) <= c.MaxBytes || attempt >= 4 {
			return buf.Bytes(), "image/png", nil
		}

		bounds := current.Bounds()
		current = imaging.Resize(current, bounds.Dx()*3/4, 0, imaging.Lanczos)
	}
}
