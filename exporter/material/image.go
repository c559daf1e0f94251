package material

import (
	texconv "github.com/mirphak/prpexport/exporter/texture"
	"github.com/mirphak/prpexport/plasma"
	"github.com/mirphak/prpexport/scene"
)

// exportImageTexture resolves the alpha policy of an image-backed slot and
// stashes the image for deferred conversion. A slot whose texture carries no
// image gets a runtime-drawn placeholder instead.
func (c *Converter) exportImageTexture(layer *plasma.Layer, slot *scene.TextureSlot) error {
	tex := slot.Texture

	hasAlpha := true
	if tex.Image != nil {
		hasAlpha = tex.UseCalculateAlpha || slot.UseStencil || c.testImageAlpha(tex.Image)
		if tex.UseAlpha && !hasAlpha {
			c.rep.Warnf("texture %q wants to use alpha, but image %q is opaque", tex.Name, tex.Image.Name)
		}
	}

	state := &layer.State
	if !slot.UseStencil {
		if tex.UseAlpha && hasAlpha {
			switch slot.Blend {
			case scene.BlendAdd:
				state.Blend |= plasma.BlendAlphaAdd
			case scene.BlendMultiply:
				state.Blend |= plasma.BlendAlphaMult
			default:
				state.Blend |= plasma.BlendAlpha
			}
		}
		if tex.InvertAlpha && hasAlpha {
			state.Blend |= plasma.BlendInvertAlpha
		}
	}
	if tex.Extension == scene.ExtendClip {
		state.Clamp |= plasma.ClampTexture
	}

	if tex.Image == nil {
		dtm := c.reg.FindOrCreate(plasma.TypeDynamicTextMap, layer.Key().Name+"_DynText", layer.Key().Location,
			func() plasma.Object {
				return &plasma.DynamicTextMap{VisWidth: 1024, VisHeight: 1024, HasAlpha: tex.UseAlpha}
			})
		layer.Texture = dtm.Key()
		return nil
	}

	// the encoder follows the resolved alpha, not the user's request: an
	// image that carries real alpha keeps it even on a mix-blended slot
	id, err := NewTextureID(tex, nil, &hasAlpha, slot.UseStencil)
	if err != nil {
		return err
	}
	c.stash(id, layer.Key())
	return nil
}

// ExportPreparedLayer binds an image that bypassed slot conversion, such as
// a generated lightmap, to an already-built layer.
func (c *Converter) ExportPreparedLayer(layer *plasma.Layer, img *scene.Image) error {
	id, err := NewTextureID(nil, img, nil, false)
	if err != nil {
		return err
	}
	c.stash(id, layer.Key())
	return nil
}

func (c *Converter) stash(id TextureID, layer *plasma.Key) {
	if c.pending.Add(id, layer) {
		c.rep.Debugf("        found another user of %q", id.Image.Name)
	} else {
		c.rep.Debugf("        stashing %q for conversion as %q", id.Image.Name, id.Name())
	}
}

// testImageAlpha scans an image for translucent pixels, once per image. An
// image whose own use-alpha toggle is off counts as opaque regardless of
// its pixels.
func (c *Converter) testImageAlpha(img *scene.Image) bool {
	if img.Channels != 4 || !img.UseAlpha {
		return false
	}
	result, ok := c.alphaTest[img]
	if !ok {
		ctx, err := texconv.Acquire(img)
		if err != nil {
			return false
		}
		result = ctx.HasAlpha()
		ctx.Release()
		c.alphaTest[img] = result
	}
	return result
}
