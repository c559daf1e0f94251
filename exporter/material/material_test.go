package material

import (
	"image"
	"image/color"
	"testing"

	"github.com/mirphak/prpexport/config"
	"github.com/mirphak/prpexport/plasma"
	"github.com/mirphak/prpexport/report"
	"github.com/mirphak/prpexport/scene"
	"github.com/mirphak/prpexport/utils"
)

// ownPage keeps bitmaps in their consumer's page.
type ownPage struct{}

func (ownPage) TexturePage(owner plasma.Location) plasma.Location { return owner }

// sharedPage herds every bitmap into one page.
type sharedPage string

func (p sharedPage) TexturePage(plasma.Location) plasma.Location { return plasma.Location(p) }

func testScene() *scene.Scene {
	return scene.NewScene("test")
}

func testObject(sc *scene.Scene, name, page string) *scene.Object {
	bo := &scene.Object{
		Name: name,
		Page: page,
		Mesh: &scene.Mesh{UVLayers: []scene.UVLayer{{Name: "UVMap"}}},
	}
	sc.AddObject(bo)
	return bo
}

func testConverter(sc *scene.Scene, ver config.PlasmaVersion, pages PageResolver) (*Converter, *plasma.Registry) {
	reg := plasma.NewRegistry()
	return NewConverter(sc, reg, report.NewNop(), ver, pages), reg
}

func testImage(name string, w, h int, alpha byte) *scene.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 128, G: 64, B: 32, A: alpha})
		}
	}
	channels := 3
	if alpha != 0xff {
		channels = 4
	}
	return scene.NewImage(name, img, channels, channels == 4)
}

func layerAt(t *testing.T, reg *plasma.Registry, mat *plasma.Material, i int) *plasma.Layer {
	t.Helper()
	obj := reg.Object(mat.Layers[i])
	layer, ok := obj.(*plasma.Layer)
	if !ok {
		t.Fatalf("material layer %d is a %T; expected a layer", i, obj)
	}
	return layer
}

func TestExportMaterialAutoLayer(t *testing.T) {
	sc := testScene()
	sc.World.AmbientColor = utils.ColorFloat{0.1, 0.2, 0.3, 1}
	bo := testObject(sc, "obj", "District")
	c, reg := testConverter(sc, config.PVMoul, ownPage{})

	bm := scene.NewMaterial("Bare")
	bm.DiffuseColor = utils.ColorFloat{1, 0.5, 0, 1}

	key, err := c.ExportMaterial(bo, bm)
	if err != nil {
		t.Fatal(err)
	}
	mat := reg.Object(key).(*plasma.Material)
	if len(mat.Layers) != 1 {
		t.Fatalf("material has %d layers; expected a synthesized one", len(mat.Layers))
	}
	layer := layerAt(t, reg, mat, 0)
	if layer.Key().Name != "Bare_AutoLayer" {
		t.Errorf("layer named %q; expected Bare_AutoLayer", layer.Key().Name)
	}
	if layer.Preshade != bm.DiffuseColor || layer.Runtime != bm.DiffuseColor {
		t.Error("diffuse color did not propagate to the layer")
	}
	if layer.Ambient != sc.World.AmbientColor {
		t.Error("world ambient did not propagate to the layer")
	}
}

func TestExportMaterialReusesIdentity(t *testing.T) {
	sc := testScene()
	bo1 := testObject(sc, "a", "District")
	bo2 := testObject(sc, "b", "District")
	c, _ := testConverter(sc, config.PVMoul, ownPage{})

	bm := scene.NewMaterial("Shared")
	k1, err := c.ExportMaterial(bo1, bm)
	if err != nil {
		t.Fatal(err)
	}
	k2, err := c.ExportMaterial(bo2, bm)
	if err != nil {
		t.Fatal(err)
	}
	if k1 != k2 {
		t.Error("same material in the same page exported twice")
	}
	if got := c.Materials(bo2); len(got) != 1 || got[0] != k1 {
		t.Errorf("object b tracks %v; expected the shared material", got)
	}
}

func TestExportMaterialNoMistDisablesFog(t *testing.T) {
	sc := testScene()
	bo := testObject(sc, "obj", "District")
	c, reg := testConverter(sc, config.PVMoul, ownPage{})

	bm := scene.NewMaterial("Fogless")
	bm.UseMist = false

	key, err := c.ExportMaterial(bo, bm)
	if err != nil {
		t.Fatal(err)
	}
	layer := layerAt(t, reg, reg.Object(key).(*plasma.Material), 0)
	want := plasma.ShadeNoFog | plasma.ShadeReallyNoFog
	if layer.State.Shade&want != want {
		t.Errorf("shade flags %#x; expected fog disabled", layer.State.Shade)
	}
}

func TestExportSlotOpacity(t *testing.T) {
	sc := testScene()
	bo := testObject(sc, "obj", "District")
	c, reg := testConverter(sc, config.PVMoul, ownPage{})

	tex := scene.NewTexture("ghost", scene.TextureNone)
	tex.Layer.Opacity = 50
	bm := scene.NewMaterial("Ghostly")
	bm.TextureSlots = []*scene.TextureSlot{scene.NewTextureSlot("Tex", tex)}

	key, err := c.ExportMaterial(bo, bm)
	if err != nil {
		t.Fatal(err)
	}
	layer := layerAt(t, reg, reg.Object(key).(*plasma.Material), 0)
	if layer.Opacity != 0.5 {
		t.Errorf("layer opacity %v; expected 0.5", layer.Opacity)
	}
	if layer.State.Blend&plasma.BlendAlpha == 0 {
		t.Error("translucent layer did not enable alpha blending")
	}
}

func TestExportSlotAlphaHalo(t *testing.T) {
	sc := testScene()
	bo := testObject(sc, "obj", "District")
	c, reg := testConverter(sc, config.PVMoul, ownPage{})

	tex := scene.NewTexture("halo", scene.TextureNone)
	tex.Layer.AlphaHalo = true
	bm := scene.NewMaterial("Halo")
	bm.TextureSlots = []*scene.TextureSlot{scene.NewTextureSlot("Tex", tex)}

	key, err := c.ExportMaterial(bo, bm)
	if err != nil {
		t.Fatal(err)
	}
	layer := layerAt(t, reg, reg.Object(key).(*plasma.Material), 0)
	if layer.State.Blend&plasma.BlendAlphaTestHigh == 0 {
		t.Error("halo layer missing the high alpha test")
	}
	if layer.State.Blend&plasma.BlendAlpha != 0 {
		t.Error("fully opaque halo layer should not alpha blend")
	}
}

func TestExportSlotUVChannel(t *testing.T) {
	sc := testScene()
	bo := testObject(sc, "obj", "District")
	bo.Mesh.UVLayers = []scene.UVLayer{{Name: "UVMap"}, {Name: "Detail"}}
	c, reg := testConverter(sc, config.PVMoul, ownPage{})

	tex := scene.NewTexture("detail", scene.TextureNone)
	slot := scene.NewTextureSlot("Tex", tex)
	slot.UVLayer = "Detail"
	bm := scene.NewMaterial("Mapped")
	bm.TextureSlots = []*scene.TextureSlot{slot}

	key, err := c.ExportMaterial(bo, bm)
	if err != nil {
		t.Fatal(err)
	}
	layer := layerAt(t, reg, reg.Object(key).(*plasma.Material), 0)
	if layer.UVWSrc != 1 {
		t.Errorf("uvw source %d; expected channel 1", layer.UVWSrc)
	}
}

func TestStencilChainOrderAndFlags(t *testing.T) {
	sc := testScene()
	bo := testObject(sc, "obj", "District")
	c, reg := testConverter(sc, config.PVMoul, ownPage{})

	mask := scene.NewTexture("mask", scene.TextureBlend)
	stencil := scene.NewTextureSlot("Mask", mask)
	stencil.UseStencil = true
	base := scene.NewTextureSlot("Base", scene.NewTexture("base", scene.TextureNone))

	bm := scene.NewMaterial("Masked")
	bm.TextureSlots = []*scene.TextureSlot{stencil, base}

	key, err := c.ExportMaterial(bo, bm)
	if err != nil {
		t.Fatal(err)
	}
	mat := reg.Object(key).(*plasma.Material)
	if len(mat.Layers) != 2 {
		t.Fatalf("material has %d layers; expected base + stencil", len(mat.Layers))
	}

	// the masked base renders first, then binds to the stencil after it
	baseLayer := layerAt(t, reg, mat, 0)
	if baseLayer.Key().Name != "Masked_Base" {
		t.Errorf("first layer is %q; expected the base", baseLayer.Key().Name)
	}
	wantMisc := plasma.MiscBindNext | plasma.MiscRestartPassHere
	if baseLayer.State.Misc&wantMisc != wantMisc {
		t.Errorf("base misc flags %#x; expected bind-next and restart-pass", baseLayer.State.Misc)
	}
	if baseLayer.State.Blend&plasma.BlendAlpha == 0 {
		t.Error("opaque base did not pick up alpha blending for the stencil")
	}

	stencilLayer := layerAt(t, reg, mat, 1)
	if stencilLayer.Key().Name != "Masked_Mask" {
		t.Errorf("second layer is %q; expected the stencil", stencilLayer.Key().Name)
	}
	wantBlend := plasma.BlendAlpha | plasma.BlendAlphaMult | plasma.BlendNoTexColor
	if stencilLayer.State.Blend&wantBlend != wantBlend {
		t.Errorf("stencil blend flags %#x", stencilLayer.State.Blend)
	}
	if stencilLayer.State.Clamp&plasma.ClampTexture == 0 {
		t.Error("procedural stencil is not clamped")
	}
	if stencilLayer.State.Z&plasma.ZNoZWrite == 0 {
		t.Error("stencil writes depth")
	}
	if mat.CompFlags&plasma.CompNeedsBlendChannel == 0 {
		t.Error("material does not request a blend channel")
	}
}

func TestStencilPreservesExistingBlend(t *testing.T) {
	sc := testScene()
	bo := testObject(sc, "obj", "District")
	c, reg := testConverter(sc, config.PVMoul, ownPage{})

	stencil := scene.NewTextureSlot("Mask", scene.NewTexture("mask", scene.TextureBlend))
	stencil.UseStencil = true
	base := scene.NewTextureSlot("Base", scene.NewTexture("base", scene.TextureNone))
	base.Blend = scene.BlendMultiply

	bm := scene.NewMaterial("MulMasked")
	bm.TextureSlots = []*scene.TextureSlot{stencil, base}

	key, err := c.ExportMaterial(bo, bm)
	if err != nil {
		t.Fatal(err)
	}
	baseLayer := layerAt(t, reg, reg.Object(key).(*plasma.Material), 0)
	if baseLayer.State.Blend&plasma.BlendAlpha != 0 {
		t.Error("multiply base gained alpha blending; its blend mode should survive")
	}
	if baseLayer.State.Blend&plasma.BlendMult == 0 {
		t.Error("multiply blend mode lost")
	}
}

func TestTrailingStencilFails(t *testing.T) {
	sc := testScene()
	bo := testObject(sc, "obj", "District")
	c, _ := testConverter(sc, config.PVMoul, ownPage{})

	stencil := scene.NewTextureSlot("Mask", scene.NewTexture("mask", scene.TextureBlend))
	stencil.UseStencil = true
	bm := scene.NewMaterial("Broken")
	bm.TextureSlots = []*scene.TextureSlot{stencil}

	_, err := c.ExportMaterial(bo, bm)
	if err == nil {
		t.Fatal("trailing stencil exported without error")
	}
	if !report.IsExportError(err) {
		t.Errorf("error %v is not an export error", err)
	}
}

func TestExportWavesetMaterial(t *testing.T) {
	sc := testScene()
	bo := testObject(sc, "ocean", "District")
	c, reg := testConverter(sc, config.PVMoul, ownPage{})

	key, err := c.ExportWavesetMaterial(bo, scene.NewMaterial("Water"))
	if err != nil {
		t.Fatal(err)
	}
	if key.Name != "Water_WaveSet7" {
		t.Errorf("material named %q; expected Water_WaveSet7", key.Name)
	}
	mat := reg.Object(key).(*plasma.Material)
	if len(mat.Layers) != 1 {
		t.Fatalf("water material has %d layers; expected 1", len(mat.Layers))
	}
	if layerAt(t, reg, mat, 0).State.Blend&plasma.BlendAlpha == 0 {
		t.Error("water layer does not alpha blend")
	}
}

func TestImageSlotStashesPendingTexture(t *testing.T) {
	sc := testScene()
	bo := testObject(sc, "obj", "District")
	c, reg := testConverter(sc, config.PVMoul, ownPage{})

	tex := scene.NewTexture("stone", scene.TextureImage)
	tex.Image = testImage("stone.png", 8, 8, 0xff)
	tex.UseMipmap = true
	bm := scene.NewMaterial("Stone")
	bm.TextureSlots = []*scene.TextureSlot{scene.NewTextureSlot("Tex", tex)}

	key, err := c.ExportMaterial(bo, bm)
	if err != nil {
		t.Fatal(err)
	}
	if c.Pending().Len() != 1 {
		t.Fatalf("pending table holds %d entries; expected 1", c.Pending().Len())
	}
	// no bitmap until finalize
	if layerAt(t, reg, reg.Object(key).(*plasma.Material), 0).Texture != nil {
		t.Error("layer got a texture before finalize")
	}
}

func TestImageAlphaToggleOffIsOpaque(t *testing.T) {
	sc := testScene()
	bo := testObject(sc, "obj", "District")
	rep := report.NewNop()
	c := NewConverter(sc, plasma.NewRegistry(), rep, config.PVMoul, ownPage{})

	img := testImage("secret.png", 8, 8, 0x80)
	img.UseAlpha = false
	tex := scene.NewTexture("secret", scene.TextureImage)
	tex.Image = img
	tex.UseAlpha = true
	bm := scene.NewMaterial("Secret")
	slot := scene.NewTextureSlot("Tex", tex)
	slot.UVLayer = "UVMap"
	bm.TextureSlots = []*scene.TextureSlot{slot}

	key, err := c.ExportMaterial(bo, bm)
	if err != nil {
		t.Fatal(err)
	}
	layer := layerAt(t, c.reg, c.reg.Object(key).(*plasma.Material), 0)
	if layer.State.Blend&plasma.BlendAlpha != 0 {
		t.Error("image with its alpha toggle off still alpha blends")
	}
	if id := c.Pending().Entries()[0].ID; id.UseAlpha {
		t.Error("image with its alpha toggle off queued for alpha encoding")
	}
	if rep.Warnings() == 0 {
		t.Error("no warning about the unusable alpha request")
	}
}

func TestMissingUVLayersWarns(t *testing.T) {
	sc := testScene()
	bo := testObject(sc, "obj", "District")
	bo.Mesh.UVLayers = nil
	rep := report.NewNop()
	c := NewConverter(sc, plasma.NewRegistry(), rep, config.PVMoul, ownPage{})

	tex := scene.NewTexture("flat", scene.TextureNone)
	bm := scene.NewMaterial("Plain")
	slot := scene.NewTextureSlot("Tex", tex)
	slot.UVLayer = "LIGHTMAPGEN"
	bm.TextureSlots = []*scene.TextureSlot{slot}

	key, err := c.ExportMaterial(bo, bm)
	if err != nil {
		t.Fatal(err)
	}
	layer := layerAt(t, c.reg, c.reg.Object(key).(*plasma.Material), 0)
	if layer.UVWSrc != 0 {
		t.Errorf("uvw source %d; expected the channel 0 fallback", layer.UVWSrc)
	}
	if rep.Warnings() != 1 {
		t.Errorf("%d warnings; expected the unmatched uv map warning", rep.Warnings())
	}
}

func TestImagelessTextureGetsDynamicTextMap(t *testing.T) {
	sc := testScene()
	bo := testObject(sc, "obj", "District")
	c, reg := testConverter(sc, config.PVMoul, ownPage{})

	tex := scene.NewTexture("placeholder", scene.TextureImage)
	bm := scene.NewMaterial("Dyn")
	bm.TextureSlots = []*scene.TextureSlot{scene.NewTextureSlot("Tex", tex)}

	key, err := c.ExportMaterial(bo, bm)
	if err != nil {
		t.Fatal(err)
	}
	layer := layerAt(t, reg, reg.Object(key).(*plasma.Material), 0)
	if layer.Texture == nil || layer.Texture.Type != plasma.TypeDynamicTextMap {
		t.Fatalf("layer texture %v; expected a dynamic text map", layer.Texture)
	}
	dtm := reg.Object(layer.Texture).(*plasma.DynamicTextMap)
	if dtm.VisWidth != 1024 || dtm.VisHeight != 1024 {
		t.Errorf("text map is %dx%d; expected 1024x1024", dtm.VisWidth, dtm.VisHeight)
	}
}

func TestExportPreparedLayer(t *testing.T) {
	sc := testScene()
	c, reg := testConverter(sc, config.PVMoul, ownPage{})

	layer := reg.FindOrCreate(plasma.TypeLayer, "Wall_Lightmap", "District", func() plasma.Object {
		return plasma.NewLayer()
	}).(*plasma.Layer)

	if err := c.ExportPreparedLayer(layer, testImage("wall_lm.png", 16, 16, 0xff)); err != nil {
		t.Fatal(err)
	}
	if c.Pending().Len() != 1 {
		t.Fatalf("pending table holds %d entries; expected 1", c.Pending().Len())
	}
	if err := c.Finalize(); err != nil {
		t.Fatal(err)
	}
	if layer.Texture == nil || layer.Texture.Name != "wall_lm.bmp" {
		t.Fatalf("layer texture %v; expected the lightmap bitmap", layer.Texture)
	}
	if c.Pending().Len() != 0 {
		t.Error("pending table not drained after finalize")
	}
}

func TestClipExtensionClampsLayer(t *testing.T) {
	sc := testScene()
	bo := testObject(sc, "obj", "District")
	c, reg := testConverter(sc, config.PVMoul, ownPage{})

	tex := scene.NewTexture("decal", scene.TextureImage)
	tex.Image = testImage("decal.png", 4, 4, 0xff)
	tex.Extension = scene.ExtendClip
	bm := scene.NewMaterial("Decal")
	bm.TextureSlots = []*scene.TextureSlot{scene.NewTextureSlot("Tex", tex)}

	key, err := c.ExportMaterial(bo, bm)
	if err != nil {
		t.Fatal(err)
	}
	layer := layerAt(t, reg, reg.Object(key).(*plasma.Material), 0)
	if layer.State.Clamp&plasma.ClampTexture != plasma.ClampTexture {
		t.Errorf("clamp flags %#x; expected both axes clamped", layer.State.Clamp)
	}
}
