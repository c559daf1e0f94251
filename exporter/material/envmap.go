package material

import (
	"github.com/mirphak/prpexport/config"
	"github.com/mirphak/prpexport/plasma"
	"github.com/mirphak/prpexport/report"
	"github.com/mirphak/prpexport/scene"
	"github.com/mirphak/prpexport/utils"
)

// exportEnvMapTexture binds a live environment map to a layer. Planar
// mappings become camera maps on engines that support them; everything else
// renders a six-faced cube map. Baked image sources are not renderable and
// leave the layer textureless.
func (c *Converter) exportEnvMapTexture(bo *scene.Object, mat *plasma.Material, layer *plasma.Layer, slot *scene.TextureSlot) error {
	tex := slot.Texture
	env := tex.Environment
	if env == nil {
		return report.ExportErrorf("texture %q has no environment map settings", tex.Name)
	}

	// the layer advertises environment shading even when the source cannot
	// be rendered and the texture reference stays empty
	layer.State.Shade |= plasma.ShadeEnvironMap

	if env.Source == scene.EnvSourceImage {
		c.rep.Warnf("texture %q: baked environment maps are not supported", tex.Name)
		return nil
	}

	viewpoint := env.Viewpoint
	if viewpoint == nil {
		viewpoint = bo
	}

	if env.Mapping == scene.EnvMappingPlane && c.ver >= config.PVMoul {
		dcm, err := c.exportDynamicCamMap(bo, mat, layer, tex, env, viewpoint)
		if err != nil {
			return err
		}
		layer.UVWSrc = plasma.UVWPosition
		layer.State.Misc |= plasma.MiscCam2Screen | plasma.MiscPerspProjection
		layer.Texture = dcm.Key()
		return nil
	}

	dem, err := c.exportDynamicEnvMap(bo, tex, env, viewpoint)
	if err != nil {
		return err
	}
	layer.UVWSrc = plasma.UVWReflect
	layer.State.Misc |= plasma.MiscUseRefractionXform
	layer.Texture = dem.Key()
	return nil
}

func (c *Converter) exportDynamicEnvMap(bo *scene.Object, tex *scene.Texture, env *scene.EnvironmentMap, viewpoint *scene.Object) (*plasma.DynamicEnvMap, error) {
	loc := plasma.Location(bo.Page)
	name := viewpoint.Name + "_DynEnvMap"
	if obj := c.reg.Find(plasma.TypeDynamicEnvMap, name, loc); obj != nil {
		c.rep.Debugf("        sharing environment map %q", name)
		return obj.(*plasma.DynamicEnvMap), nil
	}
	c.rep.Infof("        exporting environment map %q", name)

	visRegions, err := c.resolveVisRegions(tex)
	if err != nil {
		return nil, err
	}

	dem := c.reg.FindOrCreate(plasma.TypeDynamicEnvMap, name, loc, func() plasma.Object {
		return &plasma.DynamicEnvMap{}
	}).(*plasma.DynamicEnvMap)

	dem.Hither = env.ClipStart
	dem.Yon = env.ClipEnd
	dem.RefreshRate = refreshRate(env)
	dem.IncludeCharacters = true
	dem.Color = tex.Layer.EnvMapColor
	dem.FogStart = c.sc.World.FogStart
	dem.VisRegions = visRegions
	dem.Position = viewpoint.Location

	size := envMapSize(env)
	dem.EachFace(func(rt *plasma.RenderTarget) {
		configureFace(rt, size)
	})
	return dem, nil
}

func (c *Converter) exportDynamicCamMap(bo *scene.Object, mat *plasma.Material, layer *plasma.Layer, tex *scene.Texture, env *scene.EnvironmentMap, viewpoint *scene.Object) (*plasma.DynamicCamMap, error) {
	loc := plasma.Location(bo.Page)
	name := viewpoint.Name + "_DynEnvMap"

	var dcm *plasma.DynamicCamMap
	if obj := c.reg.Find(plasma.TypeDynamicCamMap, name, loc); obj != nil {
		c.rep.Debugf("        sharing camera map %q", name)
		dcm = obj.(*plasma.DynamicCamMap)
	} else {
		c.rep.Infof("        exporting camera map %q", name)

		visRegions, err := c.resolveVisRegions(tex)
		if err != nil {
			return nil, err
		}

		dcm = c.reg.FindOrCreate(plasma.TypeDynamicCamMap, name, loc, func() plasma.Object {
			return &plasma.DynamicCamMap{}
		}).(*plasma.DynamicCamMap)

		dcm.Hither = env.ClipStart
		dcm.Yon = env.ClipEnd
		dcm.RefreshRate = refreshRate(env)
		dcm.IncludeCharacters = true
		dcm.Color = tex.Layer.EnvMapColor
		dcm.FogStart = c.sc.World.FogStart
		dcm.VisRegions = visRegions
		dcm.RootNode = c.sceneObjectKey(viewpoint)
		dcm.DisableTexture = c.disabledEnvTexture(viewpoint, layer, loc)

		size := envMapSize(env)
		dcm.EachFace(func(rt *plasma.RenderTarget) {
			configureFace(rt, size)
		})
	}

	// every consumer registers itself, shared map or not
	dcm.AddTargetNode(c.sceneObjectKey(bo))
	dcm.AddMatLayer(layer.Key())
	return dcm, nil
}

// resolveVisRegions maps the requested region names to exported keys. A
// region that is missing or disabled is a hard failure: rendering with the
// wrong region set draws the whole age into the map.
func (c *Converter) resolveVisRegions(tex *scene.Texture) ([]*plasma.Key, error) {
	var keys []*plasma.Key
	for _, name := range tex.Layer.VisRegions {
		region := c.sc.ObjectByName(name)
		if region == nil {
			return nil, report.ExportErrorf("texture %q: vis region %q does not exist", tex.Name, name)
		}
		if !region.Modifiers.VisRegion.Enabled {
			return nil, report.ExportErrorf("texture %q: object %q is not a vis region", tex.Name, name)
		}
		k := c.reg.FindOrCreate(plasma.TypeVisRegion, region.Name, plasma.Location(region.Page), func() plasma.Object {
			return &plasma.VisRegion{}
		}).Key()
		keys = append(keys, k)
	}
	return keys, nil
}

// sceneObjectKey anchors a source object so render targets can reference it.
func (c *Converter) sceneObjectKey(bo *scene.Object) *plasma.Key {
	return c.reg.FindOrCreate(plasma.TypeSceneObject, bo.Name, plasma.Location(bo.Page), func() plasma.Object {
		return &plasma.SceneObject{}
	}).Key()
}

// disabledEnvTexture builds the stand-in layer a camera map falls back to
// while dynamic rendering is off. It renders no texture, only the consumer
// layer's colors.
func (c *Converter) disabledEnvTexture(viewpoint *scene.Object, layer *plasma.Layer, loc plasma.Location) *plasma.Key {
	name := viewpoint.Name + "_DisabledDynEnvMap"
	fake := c.reg.FindOrCreate(plasma.TypeLayer, name, loc, func() plasma.Object {
		return plasma.NewLayer()
	}).(*plasma.Layer)
	fake.Ambient = layer.Ambient
	fake.Preshade = layer.Preshade
	fake.Runtime = layer.Runtime
	fake.Specular = layer.Specular
	return fake.Key()
}

func refreshRate(env *scene.EnvironmentMap) float32 {
	if env.Source == scene.EnvSourceAnimated {
		return 0.01
	}
	return 0.0
}

// envMapSize rounds the requested resolution up to a renderable power of two.
func envMapSize(env *scene.EnvironmentMap) int {
	size := env.Resolution
	if size <= 0 {
		size = 512
	}
	return utils.EnsurePowerOfTwo(size)
}

func configureFace(rt *plasma.RenderTarget, size int) {
	rt.Config = plasma.ConfigRGB8888
	rt.Flags = plasma.BitmapIsTexture
	rt.Width = size
	rt.Height = size
	rt.Proportional = false
	rt.ViewportLeft = 0
	rt.ViewportTop = 0
	rt.ViewportRight = size
	rt.ViewportBottom = size
	rt.ZDepth = 24
}
