package prescription

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/nfnt/resize"
)

// previewWidth is the width of the JPEG thumbnail shown to pharmacists;
// height follows the aspect ratio.
const previewWidth = 400

// maxPreviewPixels caps width x height of an image that gets decoded.
const maxPreviewPixels = 40_000_000

var errPreviewTooLarge = errors.New("image dimensions too large for a preview")

// checkPreviewBounds reads only the image header and rejects images whose
// pixel count exceeds maxPreviewPixels.
func checkPreviewBounds(r io.Reader) error {
	cfg, _, err := image.DecodeConfig(r)
	if err != nil {
		return fmt.Errorf("decode image header: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > maxPreviewPixels {
		return errPreviewTooLarge
	}
	return nil
}

// renderPreview decodes a PNG or JPEG upload and returns a downscaled JPEG.
// PDFs have no preview. Callers check the bounds first.
func renderPreview(contentType string, r io.Reader) (*bytes.Buffer, error) {
	var (
		img image.Image
		err error
	)
	switch contentType {
	case "image/png":
		img, err = png.Decode(r)
	case "image/jpeg":
		img, err = jpeg.Decode(r)
	default:
		return nil, fmt.Errorf("no preview for %s", contentType)
	}
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	if img.Bounds().Dx() > previewWidth {
		img = resize.Resize(previewWidth, 0, img, resize.Lanczos3)
	}
	buf := &bytes.Buffer{}
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: 80}); err != nil {
		return nil, fmt.Errorf("encode preview: %w", err)
	}
	return buf, nil
}

func hasPreview(contentType string) bool {
	return strings.HasPrefix(contentType, "image/")
}

func previewName(stored string) string {
	return strings.TrimSuffix(stored, filepath.Ext(stored)) + "_preview.jpg"
}
