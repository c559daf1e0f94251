package scene

import (
	"image"
	"image/draw"

	xdraw "golang.org/x/image/draw"
)

// Image is a decoded source image. The exporter may scale it destructively
// while extracting pixel data; Reload restores the authored pixels, so the
// same image can be consumed again later in the session.
type Image struct {
	Name     string
	Channels int
	UseAlpha bool

	orig *image.NRGBA
	cur  *image.NRGBA
}

func NewImage(name string, src image.Image, channels int, useAlpha bool) *Image {
	orig := toNRGBA(src)
	return &Image{
		Name:     name,
		Channels: channels,
		UseAlpha: useAlpha,
		orig:     orig,
		cur:      cloneNRGBA(orig),
	}
}

func (i *Image) Size() (int, int) {
	b := i.cur.Bounds()
	return b.Dx(), b.Dy()
}

// Pixels returns the current (possibly scaled) pixel data.
func (i *Image) Pixels() *image.NRGBA {
	return i.cur
}

// Scale resizes the image in place.
func (i *Image) Scale(w, h int) {
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), i.cur, i.cur.Bounds(), xdraw.Over, nil)
	i.cur = dst
}

// Reload restores the image to its authored state.
func (i *Image) Reload() {
	i.cur = cloneNRGBA(i.orig)
}

func toNRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok {
		return cloneNRGBA(n)
	}
	dst := image.NewNRGBA(src.Bounds())
	draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)
	return dst
}

func cloneNRGBA(src *image.NRGBA) *image.NRGBA {
	dst := image.NewNRGBA(src.Bounds())
	copy(dst.Pix, src.Pix)
	return dst
}
