package imaging

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// CaptionStripHeight is the height of the black strip AddCaption adds above
// a frame.
const CaptionStripHeight = 40

// captionBaseline is the text baseline, measured from the top of the strip.
const captionBaseline = CaptionStripHeight - 10

// SideBySide places right next to left on a black canvas as tall as the
// taller of the two. Both images are anchored to the top edge.
func SideBySide(left, right image.Image) *image.NRGBA {
	lb, rb := left.Bounds(), right.Bounds()
	dst := imaging.New(lb.Dx()+rb.Dx(), max(lb.Dy(), rb.Dy()), color.Black)
	dst = imaging.Paste(dst, left, image.Pt(0, 0))
	dst = imaging.Paste(dst, right, image.Pt(lb.Dx(), 0))
	return dst
}

// AddCaption returns img extended by a black strip on top carrying text in
// white, centered horizontally. Text wider than the frame starts at x = 0.
func AddCaption(img image.Image, text string) *image.NRGBA {
	b := img.Bounds()
	dst := imaging.New(b.Dx(), b.Dy()+CaptionStripHeight, color.Black)
	dst = imaging.Paste(dst, img, image.Pt(0, CaptionStripHeight))

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.White),
		Face: basicfont.Face7x13,
	}
	width := d.MeasureString(text).Ceil()
	x := max((b.Dx()-width)/2, 0)
	d.Dot = fixed.P(x, captionBaseline)
	d.DrawString(text)

	return dst
}

// MaskImage renders a detection mask as an RGB image so it can be shown
// next to its frame.
func MaskImage(gray *image.Gray) *image.NRGBA {
	return imaging.Clone(gray)
}
