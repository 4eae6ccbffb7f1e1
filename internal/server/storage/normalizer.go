package storage

import (
	"bytes"
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/dmitrijs2005/snapster/internal/common"
)

// Normalizer prepares a payload before it is written to the object store.
type Normalizer interface {
	Normalize(data []byte, mediaType string) ([]byte, error)
}

// DefaultMaxImagePixels caps width*height of images the normalizer will
// decode.
const DefaultMaxImagePixels int64 = 0x3FFF * 0x3FFF

// ImageNormalizer downsizes raster images whose longer edge exceeds a bound.
// Everything else passes through untouched.
type ImageNormalizer struct {
	maxDimension int
	maxPixels    int64
}

var _ Normalizer = (*ImageNormalizer)(nil)

// NewImageNormalizer returns a normalizer bounding the longer edge to
// maxDimension pixels. A non-positive bound disables resizing. Images with
// more than maxPixels pixels are refused before decoding; a non-positive
// maxPixels means DefaultMaxImagePixels.
func NewImageNormalizer(maxDimension int, maxPixels int64) *ImageNormalizer {
	if maxPixels <= 0 {
		maxPixels = DefaultMaxImagePixels
	}
	return &ImageNormalizer{maxDimension: maxDimension, maxPixels: maxPixels}
}

// Normalize returns data unchanged unless mediaType is image/* and the decoded
// image is larger than the bound, in which case the image is fitted inside a
// maxDimension square and re-encoded in its original format.
//
// Errors wrap common.ErrNormalizationFailed.
func (n *ImageNormalizer) Normalize(data []byte, mediaType string) (out []byte, err error) {
	if n.maxDimension <= 0 || !isImage(mediaType) {
		return data, nil
	}

	// image decoders may panic on hostile input
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("%w: decoder panic: %v", common.ErrNormalizationFailed, r)
		}
	}()

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrNormalizationFailed, err)
	}
	if cfg.Width <= n.maxDimension && cfg.Height <= n.maxDimension {
		return data, nil
	}
	if pixels := int64(cfg.Width) * int64(cfg.Height); pixels > n.maxPixels {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", common.ErrNormalizationFailed, cfg.Width, cfg.Height, n.maxPixels)
	}

	f, err := imaging.FormatFromExtension(format)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", common.ErrNormalizationFailed, format, err)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: decode: %w", common.ErrNormalizationFailed, err)
	}

	resized := imaging.Fit(img, n.maxDimension, n.maxDimension, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, f, imaging.JPEGQuality(90)); err != nil {
		return nil, fmt.Errorf("%w: encode: %w", common.ErrNormalizationFailed, err)
	}
	return buf.Bytes(), nil
}

func isImage(mediaType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(mediaType)), "image/")
}
