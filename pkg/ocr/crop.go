package ocr

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// CropBox is a fractional sub-region of an image; every bound is in [0,1].
type CropBox struct {
	X1 float64 `yaml:"x1"`
	X2 float64 `yaml:"x2"`
	Y1 float64 `yaml:"y1"`
	Y2 float64 `yaml:"y2"`
}

// Crop presets for the two screenshot shapes we ingest.
var (
	// ReceiptCrop targets the stats table in a pre-cropped receipt image.
	ReceiptCrop = CropBox{X1: 0.28, X2: 0.98, Y1: 0.12, Y2: 0.80}
	// ScreenshotCrop targets the stats table in a full 3840x2160 console
	// screenshot.
	ScreenshotCrop = CropBox{X1: 0.08, X2: 0.985, Y1: 0.14, Y2: 0.78}
)

// CropRelative returns the pixel sub-region of img described by box.
// Bounds are rounded then clamped so the result is always at least 1x1 and
// lies inside the image.
func CropRelative(img image.Image, box CropBox) *image.NRGBA {
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	x0 := clamp(int(math.Round(float64(w)*box.X1)), 0, w-1)
	x1 := clamp(int(math.Round(float64(w)*box.X2)), x0+1, w)
	y0 := clamp(int(math.Round(float64(h)*box.Y1)), 0, h-1)
	y1 := clamp(int(math.Round(float64(h)*box.Y2)), y0+1, h)
	return imaging.Crop(img, image.Rect(x0, y0, x1, y1))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
