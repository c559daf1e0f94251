package material

import (
	texconv "github.com/mirphak/prpexport/exporter/texture"
	"github.com/mirphak/prpexport/plasma"
	"github.com/mirphak/prpexport/report"
	"github.com/mirphak/prpexport/utils"
)

type emitKey struct {
	loc  plasma.Location
	name string
}

// Finalize converts every pending texture into mipmap objects and binds
// them to their consumer layers. Entries convert in stash order, so output
// pages are deterministic. The table is drained afterwards.
func (c *Converter) Finalize() error {
	emitted := make(map[emitKey]*PendingEntry)
	for _, entry := range c.pending.Entries() {
		if err := c.finalizeEntry(entry, emitted); err != nil {
			return err
		}
	}
	c.pending.Clear()
	return nil
}

// finalizeEntry encodes one texture and emits a bitmap per destination page.
// Consumers in the same page share one bitmap; pixel data is encoded once
// and shared across pages.
func (c *Converter) finalizeEntry(entry *PendingEntry, emitted map[emitKey]*PendingEntry) error {
	id := entry.ID
	name := id.Name()
	c.rep.Infof("converting texture %q", id.Image.Name)

	var pages []plasma.Location
	byPage := make(map[plasma.Location][]*plasma.Key)
	for _, lk := range entry.Layers {
		loc := c.pages.TexturePage(lk.Location)
		if _, ok := byPage[loc]; !ok {
			pages = append(pages, loc)
		}
		byPage[loc] = append(byPage[loc], lk)
	}

	mip, err := c.encodeMipmap(id)
	if err != nil {
		return err
	}

	for _, loc := range pages {
		ek := emitKey{loc: loc, name: name}
		if prev, ok := emitted[ek]; ok && prev != entry {
			return report.ExportErrorf("texture name %q collides in page %q: images %q and %q share a canonical name",
				name, loc, prev.ID.Image.Name, id.Image.Name)
		}
		if c.reg.FindKey(plasma.TypeMipmap, name, loc) != nil && emitted[ek] == nil {
			return report.ExportErrorf("texture name %q already exists in page %q", name, loc)
		}
		emitted[ek] = entry

		obj := c.reg.FindOrCreate(plasma.TypeMipmap, name, loc, func() plasma.Object {
			clone := *mip
			return &clone
		})
		for _, lk := range byPage[loc] {
			if layer, ok := c.reg.Object(lk).(plasma.LayerObject); ok {
				layer.SetTexture(obj.Key())
			}
		}
	}
	return nil
}

// encodeMipmap does the pixel work for one identity: power-of-two resize,
// mip generation, then block compression or raw packing. The source image
// is restored before returning, success or not.
func (c *Converter) encodeMipmap(id TextureID) (*plasma.Mipmap, error) {
	w, h := id.Image.Size()
	pw, ph := utils.EnsurePowerOfTwo(w), utils.EnsurePowerOfTwo(h)
	if pw != w || ph != h {
		c.rep.Infof("    resizing %q: %dx%d -> %dx%d", id.Image.Name, w, h, pw, ph)
		id.Image.Scale(pw, ph)
	}

	ctx, err := texconv.Acquire(id.Image)
	if err != nil {
		id.Image.Reload()
		return nil, err
	}
	defer ctx.Release()

	numLevels := 1
	compression := plasma.CompressUncompressed
	dxt := plasma.DXTNone
	if id.Mipmap {
		// the engine chokes on the tail levels, so the chain stops early
		numLevels = utils.MipLevelCount(pw, ph)
		if numLevels-2 >= 2 {
			numLevels -= 2
		} else {
			numLevels = 2
		}
		compression = plasma.CompressDirectX
		if id.UseAlpha || id.CalcAlpha {
			dxt = plasma.DXT5
		} else {
			dxt = plasma.DXT1
		}
		ctx.GenerateMipmap(numLevels)
	}

	data, err := texconv.EncodeLevels(ctx, numLevels, id.CalcAlpha, compression, dxt)
	if err != nil {
		return nil, err
	}

	flags := plasma.BitmapIsTexture
	if id.UseAlpha || id.CalcAlpha {
		flags |= plasma.BitmapAlphaChannel
	}
	return &plasma.Mipmap{
		Width:       pw,
		Height:      ph,
		NumLevels:   numLevels,
		Compression: compression,
		Config:      plasma.ConfigRGB8888,
		DXT:         dxt,
		Flags:       flags,
		LevelData:   data,
	}, nil
}
