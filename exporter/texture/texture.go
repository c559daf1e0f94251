// Package texture is the pixel service of the exporter: it decodes a source
// image into a scoped context, generates mip levels, and extracts per-level
// data in the encodings the page format wants.
package texture

import (
	"image"

	"github.com/pkg/errors"
	xdraw "golang.org/x/image/draw"

	"github.com/mirphak/prpexport/plasma"
	"github.com/mirphak/prpexport/scene"
	"github.com/mirphak/prpexport/utils"
)

// DecodeContext holds decoded pixel state for one image. It must be
// released after use; Release restores the source image to its authored
// state, so destructive scaling done around the acquire is undone too.
type DecodeContext struct {
	img      *scene.Image
	levels   []*image.NRGBA
	released bool
}

func Acquire(img *scene.Image) (*DecodeContext, error) {
	if img == nil {
		return nil, errors.New("cannot acquire a decode context without an image")
	}
	return &DecodeContext{
		img:    img,
		levels: []*image.NRGBA{img.Pixels()},
	}, nil
}

// Release ends the scope. Safe to call twice.
func (c *DecodeContext) Release() {
	if c.released {
		return
	}
	c.released = true
	c.levels = nil
	c.img.Reload()
}

// GenerateMipmap builds the requested number of levels, halving dimensions
// per level and clamping at 1.
func (c *DecodeContext) GenerateMipmap(numLevels int) {
	base := c.levels[0]
	w, h := base.Bounds().Dx(), base.Bounds().Dy()
	c.levels = c.levels[:1]
	for i := 1; i < numLevels; i++ {
		lw := utils.MipDimension(w, i)
		lh := utils.MipDimension(h, i)
		dst := image.NewNRGBA(image.Rect(0, 0, lw, lh))
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), base, base.Bounds(), xdraw.Over, nil)
		c.levels = append(c.levels, dst)
	}
}

func (c *DecodeContext) NumLevels() int {
	return len(c.levels)
}

func (c *DecodeContext) Level(i int) *image.NRGBA {
	return c.levels[i]
}

// LevelData packs one level as 4 bytes per pixel. calcAlpha synthesizes the
// alpha channel from color intensity; bgra swaps the channel order for the
// uncompressed bitmap path.
func (c *DecodeContext) LevelData(i int, calcAlpha, bgra bool) []byte {
	lvl := c.levels[i]
	w, h := lvl.Bounds().Dx(), lvl.Bounds().Dy()
	data := make([]byte, w*h*4)
	for y := 0; y < h; y++ {
		row := lvl.Pix[y*lvl.Stride : y*lvl.Stride+w*4]
		for x := 0; x < w; x++ {
			r, g, b, a := row[x*4], row[x*4+1], row[x*4+2], row[x*4+3]
			if calcAlpha {
				a = uint8((uint32(r) + uint32(g) + uint32(b)) / 3)
			}
			o := (y*w + x) * 4
			if bgra {
				data[o], data[o+1], data[o+2], data[o+3] = b, g, r, a
			} else {
				data[o], data[o+1], data[o+2], data[o+3] = r, g, b, a
			}
		}
	}
	return data
}

// HasAlpha reports whether the base level carries any non-opaque pixel.
func (c *DecodeContext) HasAlpha() bool {
	base := c.levels[0]
	w, h := base.Bounds().Dx(), base.Bounds().Dy()
	for y := 0; y < h; y++ {
		row := base.Pix[y*base.Stride : y*base.Stride+w*4]
		for x := 0; x < w; x++ {
			if row[x*4+3] != 0xff {
				return true
			}
		}
	}
	return false
}

// EncodeLevels extracts numLevels of final on-disk data from the context,
// compressed or raw BGRA depending on the compression choice.
func EncodeLevels(c *DecodeContext, numLevels int, calcAlpha bool, compression plasma.CompressionType, dxt plasma.DXTLevel) ([][]byte, error) {
	if numLevels > c.NumLevels() {
		return nil, errors.Errorf("requested %d levels but only %d were generated", numLevels, c.NumLevels())
	}
	data := make([][]byte, numLevels)
	for i := 0; i < numLevels; i++ {
		if compression == plasma.CompressUncompressed {
			data[i] = c.LevelData(i, calcAlpha, true)
			continue
		}
		lvl := c.Level(i)
		w, h := lvl.Bounds().Dx(), lvl.Bounds().Dy()
		rgba := c.LevelData(i, calcAlpha, false)
		switch dxt {
		case plasma.DXT1:
			data[i] = CompressDXT1(rgba, w, h)
		case plasma.DXT5:
			data[i] = CompressDXT5(rgba, w, h)
		default:
			return nil, errors.Errorf("unsupported dxt level %d", dxt)
		}
	}
	return data, nil
}
