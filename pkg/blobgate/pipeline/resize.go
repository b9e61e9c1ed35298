package pipeline

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// MaxDimension bounds both output dimensions of a thumbnail.
const MaxDimension = 100

// Resize scales src uniformly so that its larger dimension becomes
// MaxDimension, rendering onto a white background with bilinear
// interpolation. Aspect ratio is preserved; dimensions are truncated, so
// the shorter axis may land below MaxDimension. The scale factor is not
// clamped, so images smaller than MaxDimension are scaled up.
func Resize(src image.Image) image.Image {
	bounds := src.Bounds()
	srcWidth := bounds.Dx()
	srcHeight := bounds.Dy()

	scale := min(float64(MaxDimension)/float64(srcWidth), float64(MaxDimension)/float64(srcHeight))
	width := int(scale * float64(srcWidth))
	height := int(scale * float64(srcHeight))

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.BiLinear.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
	return dst
}
