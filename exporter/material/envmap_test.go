package material

import (
	"testing"

	"github.com/mirphak/prpexport/config"
	"github.com/mirphak/prpexport/plasma"
	"github.com/mirphak/prpexport/report"
	"github.com/mirphak/prpexport/scene"
)

func envTexture(name string, env *scene.EnvironmentMap) *scene.Texture {
	tex := scene.NewTexture(name, scene.TextureEnvironmentMap)
	tex.Environment = env
	return tex
}

func TestExportCubeEnvMap(t *testing.T) {
	sc := testScene()
	bo := testObject(sc, "mirror", "District")
	c, reg := testConverter(sc, config.PVPots, ownPage{})

	tex := envTexture("env", &scene.EnvironmentMap{
		Source:     scene.EnvSourceAnimated,
		Mapping:    scene.EnvMappingCube,
		Resolution: 300,
		ClipStart:  1,
		ClipEnd:    500,
	})
	key := exportSlotMaterial(t, c, bo, "Mirror", tex)

	layer := layerAt(t, reg, reg.Object(key).(*plasma.Material), 0)
	if layer.Texture == nil || layer.Texture.Type != plasma.TypeDynamicEnvMap {
		t.Fatalf("layer texture %v; expected a dynamic env map", layer.Texture)
	}
	if layer.Texture.Name != "mirror_DynEnvMap" {
		t.Errorf("env map named %q; expected mirror_DynEnvMap", layer.Texture.Name)
	}
	if layer.UVWSrc != plasma.UVWReflect {
		t.Errorf("uvw source %#x; expected reflection", layer.UVWSrc)
	}
	if layer.State.Shade&plasma.ShadeEnvironMap == 0 {
		t.Error("environ-map shade flag missing")
	}

	dem := reg.Object(layer.Texture).(*plasma.DynamicEnvMap)
	if dem.Hither != 1 || dem.Yon != 500 {
		t.Errorf("clip planes %v..%v; expected 1..500", dem.Hither, dem.Yon)
	}
	if dem.RefreshRate != 0.01 {
		t.Errorf("animated refresh rate %v; expected 0.01", dem.RefreshRate)
	}
	if !dem.IncludeCharacters {
		t.Error("avatars excluded from the rendered map")
	}
	// 300 rounds up to a renderable size, applied to all six faces
	for i, face := range dem.Faces {
		if face.Width != 512 || face.Height != 512 {
			t.Errorf("face %d is %dx%d; expected 512x512", i, face.Width, face.Height)
		}
		if face.ZDepth != 24 {
			t.Errorf("face %d z depth %d; expected 24", i, face.ZDepth)
		}
	}
}

func TestEnvMapDedupByViewpoint(t *testing.T) {
	sc := testScene()
	vp := testObject(sc, "probe", "District")
	bo1 := testObject(sc, "a", "District")
	bo2 := testObject(sc, "b", "District")
	c, reg := testConverter(sc, config.PVPots, ownPage{})

	env := &scene.EnvironmentMap{Source: scene.EnvSourceStatic, Viewpoint: vp, Resolution: 256}
	k1 := exportSlotMaterial(t, c, bo1, "A", envTexture("env", env))
	k2 := exportSlotMaterial(t, c, bo2, "B", envTexture("env", env))

	l1 := layerAt(t, reg, reg.Object(k1).(*plasma.Material), 0)
	l2 := layerAt(t, reg, reg.Object(k2).(*plasma.Material), 0)
	if l1.Texture != l2.Texture {
		t.Error("same viewpoint produced two env maps")
	}
	dem := reg.Object(l1.Texture).(*plasma.DynamicEnvMap)
	if dem.RefreshRate != 0 {
		t.Errorf("static refresh rate %v; expected 0", dem.RefreshRate)
	}
	if dem.Position != vp.Location {
		t.Error("env map position is not the viewpoint's")
	}
}

func TestPlanarEnvMapBecomesCamMapOnMoul(t *testing.T) {
	sc := testScene()
	bo := testObject(sc, "pool", "District")
	c, reg := testConverter(sc, config.PVMoul, ownPage{})

	env := &scene.EnvironmentMap{Source: scene.EnvSourceAnimated, Mapping: scene.EnvMappingPlane, Resolution: 512}
	key := exportSlotMaterial(t, c, bo, "Pool", envTexture("env", env))

	layer := layerAt(t, reg, reg.Object(key).(*plasma.Material), 0)
	if layer.Texture == nil || layer.Texture.Type != plasma.TypeDynamicCamMap {
		t.Fatalf("layer texture %v; expected a camera map", layer.Texture)
	}
	if layer.UVWSrc != plasma.UVWPosition {
		t.Errorf("uvw source %#x; expected position", layer.UVWSrc)
	}
	want := plasma.MiscCam2Screen | plasma.MiscPerspProjection
	if layer.State.Misc&want != want {
		t.Errorf("misc flags %#x; expected cam2screen and perspective", layer.State.Misc)
	}

	dcm := reg.Object(layer.Texture).(*plasma.DynamicCamMap)
	if dcm.RootNode == nil || dcm.RootNode.Name != "pool" {
		t.Error("camera map root node is not the viewpoint's scene object")
	}
	if len(dcm.TargetNodes) != 1 || len(dcm.MatLayers) != 1 {
		t.Errorf("camera map wiring: %d targets, %d layers; expected 1 each", len(dcm.TargetNodes), len(dcm.MatLayers))
	}
	if dcm.DisableTexture == nil || dcm.DisableTexture.Name != "pool_DisabledDynEnvMap" {
		t.Error("camera map has no disabled-state texture")
	}
	if dcm.DisableTexture.Type != plasma.TypeLayer {
		t.Fatalf("disabled-state texture is a %v; expected a stand-in layer", dcm.DisableTexture.Type)
	}
	fake := reg.Object(dcm.DisableTexture).(*plasma.Layer)
	if fake.Preshade != layer.Preshade || fake.Ambient != layer.Ambient {
		t.Error("stand-in layer does not carry the consumer's colors")
	}
}

func TestPlanarEnvMapFallsBackBeforeMoul(t *testing.T) {
	sc := testScene()
	bo := testObject(sc, "pool", "District")
	c, reg := testConverter(sc, config.PVPots, ownPage{})

	env := &scene.EnvironmentMap{Source: scene.EnvSourceAnimated, Mapping: scene.EnvMappingPlane, Resolution: 512}
	key := exportSlotMaterial(t, c, bo, "Pool", envTexture("env", env))

	layer := layerAt(t, reg, reg.Object(key).(*plasma.Material), 0)
	if layer.Texture == nil || layer.Texture.Type != plasma.TypeDynamicEnvMap {
		t.Fatalf("layer texture %v; expected the cube-map fallback", layer.Texture)
	}
}

func TestBakedEnvMapWarnsAndSkips(t *testing.T) {
	sc := testScene()
	bo := testObject(sc, "obj", "District")
	rep := report.NewNop()
	c := NewConverter(sc, plasma.NewRegistry(), rep, config.PVMoul, ownPage{})

	env := &scene.EnvironmentMap{Source: scene.EnvSourceImage}
	key := exportSlotMaterial(t, c, bo, "Baked", envTexture("env", env))

	layer := layerAt(t, c.reg, c.reg.Object(key).(*plasma.Material), 0)
	if layer.Texture != nil {
		t.Error("baked env map bound a texture")
	}
	if layer.State.Shade&plasma.ShadeEnvironMap == 0 {
		t.Error("degraded layer lost the environ-map shade flag")
	}
	if rep.Warnings() == 0 {
		t.Error("baked env map did not warn")
	}
}

func TestEnvMapVisRegions(t *testing.T) {
	sc := testScene()
	region := testObject(sc, "reflect_rgn", "District")
	region.Modifiers.VisRegion.Enabled = true
	bo := testObject(sc, "mirror", "District")
	c, reg := testConverter(sc, config.PVPots, ownPage{})

	tex := envTexture("env", &scene.EnvironmentMap{Source: scene.EnvSourceStatic, Resolution: 128})
	tex.Layer.VisRegions = []string{"reflect_rgn"}
	key := exportSlotMaterial(t, c, bo, "Mirror", tex)

	layer := layerAt(t, reg, reg.Object(key).(*plasma.Material), 0)
	dem := reg.Object(layer.Texture).(*plasma.DynamicEnvMap)
	if len(dem.VisRegions) != 1 || dem.VisRegions[0].Name != "reflect_rgn" {
		t.Errorf("vis regions %v; expected reflect_rgn", dem.VisRegions)
	}
}

func TestEnvMapMissingVisRegionFails(t *testing.T) {
	sc := testScene()
	bo := testObject(sc, "mirror", "District")
	c, _ := testConverter(sc, config.PVPots, ownPage{})

	tex := envTexture("env", &scene.EnvironmentMap{Source: scene.EnvSourceStatic, Resolution: 128})
	tex.Layer.VisRegions = []string{"nowhere"}
	bm := scene.NewMaterial("Mirror")
	bm.TextureSlots = []*scene.TextureSlot{scene.NewTextureSlot("Tex", tex)}

	_, err := c.ExportMaterial(bo, bm)
	if err == nil {
		t.Fatal("missing vis region exported without error")
	}
	if !report.IsExportError(err) {
		t.Errorf("error %v is not an export error", err)
	}
}

func TestEnvMapDisabledVisRegionFails(t *testing.T) {
	sc := testScene()
	testObject(sc, "not_a_region", "District")
	bo := testObject(sc, "mirror", "District")
	c, _ := testConverter(sc, config.PVPots, ownPage{})

	tex := envTexture("env", &scene.EnvironmentMap{Source: scene.EnvSourceStatic, Resolution: 128})
	tex.Layer.VisRegions = []string{"not_a_region"}
	bm := scene.NewMaterial("Mirror")
	bm.TextureSlots = []*scene.TextureSlot{scene.NewTextureSlot("Tex", tex)}

	if _, err := c.ExportMaterial(bo, bm); err == nil {
		t.Fatal("disabled vis region exported without error")
	}
}
