// Package material converts authored materials into engine material, layer
// and bitmap objects. Texture pixel work is deferred: slot conversion only
// records identities in a pending table, and Finalize turns the table into
// mipmap objects once every consumer is known.
package material

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/mirphak/prpexport/config"
	"github.com/mirphak/prpexport/exporter/animation"
	"github.com/mirphak/prpexport/plasma"
	"github.com/mirphak/prpexport/report"
	"github.com/mirphak/prpexport/scene"
	"github.com/mirphak/prpexport/utils"
)

// PageResolver decides which page a converted texture lands in. Layers stay
// on their owner's page; bitmaps may be herded into a shared textures page.
type PageResolver interface {
	TexturePage(owner plasma.Location) plasma.Location
}

// Converter drives material, layer and texture conversion for one export
// session.
type Converter struct {
	sc    *scene.Scene
	reg   *plasma.Registry
	rep   *report.Reporter
	ver   config.PlasmaVersion
	pages PageResolver
	anim  *animation.Converter
	fps   float32

	pending   *PendingTable
	objMats   map[*scene.Object][]*plasma.Key
	alphaTest map[*scene.Image]bool
}

func NewConverter(sc *scene.Scene, reg *plasma.Registry, rep *report.Reporter, ver config.PlasmaVersion, pages PageResolver) *Converter {
	fps := sc.FPS
	if fps <= 0 {
		fps = 24
	}
	return &Converter{
		sc:        sc,
		reg:       reg,
		rep:       rep,
		ver:       ver,
		pages:     pages,
		anim:      animation.NewConverter(fps),
		fps:       fps,
		pending:   NewPendingTable(),
		objMats:   make(map[*scene.Object][]*plasma.Key),
		alphaTest: make(map[*scene.Image]bool),
	}
}

// Pending exposes the deferred texture table, mainly for inspection.
func (c *Converter) Pending() *PendingTable {
	return c.pending
}

// Materials lists the material keys exported for an object so far.
func (c *Converter) Materials(bo *scene.Object) []*plasma.Key {
	return c.objMats[bo]
}

// ExportMaterial converts one authored material for one object. Exporting
// the same (name, page) identity again reuses the finished material.
func (c *Converter) ExportMaterial(bo *scene.Object, bm *scene.Material) (*plasma.Key, error) {
	loc := plasma.Location(bo.Page)
	if k := c.reg.FindKey(plasma.TypeGMaterial, bm.Name, loc); k != nil {
		c.trackMaterial(bo, k)
		return k, nil
	}

	c.rep.Infof("exporting material %q", bm.Name)
	mat := c.reg.FindOrCreate(plasma.TypeGMaterial, bm.Name, loc, func() plasma.Object {
		return &plasma.Material{}
	}).(*plasma.Material)

	slots := usableSlots(bm)
	for i := 0; i < len(slots); {
		n, err := c.exportTextureSlots(bo, bm, mat, slots, i)
		if err != nil {
			return nil, err
		}
		i += n
	}

	// a material with no usable slots still needs one layer to shade with
	if len(mat.Layers) == 0 {
		layer := c.reg.FindOrCreate(plasma.TypeLayer, bm.Name+"_AutoLayer", loc, func() plasma.Object {
			return plasma.NewLayer()
		}).(*plasma.Layer)
		c.propagateMaterialSettings(bm, layer)
		mat.AddLayer(layer.Key())
	}

	c.trackMaterial(bo, mat.Key())
	return mat.Key(), nil
}

// ExportWavesetMaterial converts the single-layer material a water surface
// uses. Water always blends by alpha regardless of what was authored.
func (c *Converter) ExportWavesetMaterial(bo *scene.Object, bm *scene.Material) (*plasma.Key, error) {
	name := bm.Name + "_WaveSet7"
	c.rep.Infof("exporting material %q as water", bm.Name)

	loc := plasma.Location(bo.Page)
	if k := c.reg.FindKey(plasma.TypeGMaterial, name, loc); k != nil {
		c.trackMaterial(bo, k)
		return k, nil
	}

	mat := c.reg.FindOrCreate(plasma.TypeGMaterial, name, loc, func() plasma.Object {
		return &plasma.Material{}
	}).(*plasma.Material)
	layer := c.reg.FindOrCreate(plasma.TypeLayer, name, loc, func() plasma.Object {
		return plasma.NewLayer()
	}).(*plasma.Layer)
	c.propagateMaterialSettings(bm, layer)
	layer.State.Blend |= plasma.BlendAlpha
	mat.AddLayer(layer.Key())

	c.trackMaterial(bo, mat.Key())
	return mat.Key(), nil
}

func (c *Converter) trackMaterial(bo *scene.Object, k *plasma.Key) {
	for _, m := range c.objMats[bo] {
		if m == k {
			return
		}
	}
	c.objMats[bo] = append(c.objMats[bo], k)
}

// usableSlots filters the authored slot array down to enabled slots that
// carry a texture.
func usableSlots(bm *scene.Material) []*scene.TextureSlot {
	var slots []*scene.TextureSlot
	for _, slot := range bm.TextureSlots {
		if slot == nil || !slot.Use || slot.Texture == nil {
			continue
		}
		slots = append(slots, slot)
	}
	return slots
}

// exportTextureSlots converts one pass group starting at idx: zero or more
// stencil slots followed by the base slot they mask. Returns how many slots
// were consumed. Output order is base first, then the stencils that mask it;
// each layer preceding a stencil gets re-flagged to bind to it.
func (c *Converter) exportTextureSlots(bo *scene.Object, bm *scene.Material, mat *plasma.Material, slots []*scene.TextureSlot, idx int) (int, error) {
	consumed := 0
	var stencils []plasma.LayerObject
	for {
		i := idx + consumed
		if i == len(slots) {
			return 0, report.ExportErrorf("material %q: slot %q wants to be a stencil, but there are no more texture slots",
				bm.Name, slots[i-1].Name)
		}

		slot := slots[i]
		layer, err := c.exportSlot(bo, bm, mat, slot, i)
		if err != nil {
			return 0, err
		}
		consumed++

		if slot.UseStencil {
			stencils = append(stencils, layer)
			continue
		}

		mat.AddLayer(layer.Key())
		for n := len(stencils) - 1; n >= 0; n-- {
			prev := c.reg.Object(mat.Layers[len(mat.Layers)-1]).(plasma.LayerObject)
			st := prev.LayerState()
			st.Misc |= plasma.MiscBindNext | plasma.MiscRestartPassHere
			if st.Blend&plasma.BlendMask == 0 {
				st.Blend |= plasma.BlendAlpha
			}
			mat.AddLayer(stencils[n].Key())
		}
		return consumed, nil
	}
}

// exportSlot builds the layer for one texture slot. The returned object is
// the layer itself, or the animation wrapping it when the slot is animated.
func (c *Converter) exportSlot(bo *scene.Object, bm *scene.Material, mat *plasma.Material, slot *scene.TextureSlot, idx int) (plasma.LayerObject, error) {
	name := bm.Name + "_" + slot.Name
	c.rep.Infof("    exporting layer %q", name)

	loc := plasma.Location(bo.Page)
	layer := c.reg.FindOrCreate(plasma.TypeLayer, name, loc, func() plasma.Object {
		return plasma.NewLayer()
	}).(*plasma.Layer)
	c.propagateMaterialSettings(bm, layer)

	found := false
	if bo.Mesh != nil {
		for i, uv := range bo.Mesh.UVLayers {
			if uv.Name == slot.UVLayer {
				c.rep.Debugf("        uv map #%d %q", i, uv.Name)
				layer.UVWSrc = uint32(i)
				found = true
				break
			}
		}
	}
	if !found {
		c.rep.Warnf("cannot match uv map %q on object %q; using channel 0", slot.UVLayer, bo.Name)
	}

	layer.Transform = mgl32.Translate3D(slot.Offset.X(), slot.Offset.Y(), slot.Offset.Z()).
		Mul4(mgl32.Scale3D(slot.Scale.X(), slot.Scale.Y(), slot.Scale.Z()))

	state := &layer.State
	if slot.UseStencil {
		mat.CompFlags |= plasma.CompNeedsBlendChannel
		state.Blend |= plasma.BlendAlpha | plasma.BlendAlphaMult | plasma.BlendNoTexColor
		if slot.Texture.Kind == scene.TextureBlend {
			state.Clamp |= plasma.ClampTexture
		}
		state.Z |= plasma.ZNoZWrite
		layer.Ambient = utils.ColorWhite()
	} else {
		switch slot.Blend {
		case scene.BlendAdd:
			state.Blend |= plasma.BlendAddColorTimesAlpha
		case scene.BlendMultiply:
			state.Blend |= plasma.BlendMult
		}
	}

	props := slot.Texture.Layer
	layer.Opacity = props.Opacity / 100
	if props.Opacity < 100 {
		state.Blend |= plasma.BlendAlpha
	}
	if props.AlphaHalo {
		state.Blend |= plasma.BlendAlphaTestHigh
	}

	switch slot.Texture.Kind {
	case scene.TextureImage:
		if err := c.exportImageTexture(layer, slot); err != nil {
			return nil, err
		}
	case scene.TextureEnvironmentMap:
		if err := c.exportEnvMapTexture(bo, mat, layer, slot); err != nil {
			return nil, err
		}
	case scene.TextureBlend, scene.TextureNone:
		// procedural blend textures contribute only state, no bitmap
	default:
		return nil, report.ExportErrorf("texture %q: cannot export texture kind %d", slot.Texture.Name, slot.Texture.Kind)
	}

	return c.exportLayerAnimation(bm, slot, idx, layer)
}

// propagateMaterialSettings seeds a fresh layer with the colors and fog
// behavior of its source material.
func (c *Converter) propagateMaterialSettings(bm *scene.Material, layer *plasma.Layer) {
	if !bm.UseMist {
		layer.State.Shade |= plasma.ShadeNoFog | plasma.ShadeReallyNoFog
	}
	layer.Ambient = c.sc.World.AmbientColor
	layer.Preshade = bm.DiffuseColor
	layer.Runtime = bm.DiffuseColor
	layer.Specular = bm.SpecularColor
}
