package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/mirphak/prpexport/utils"
)

type Material struct {
	Name          string
	DiffuseColor  utils.ColorFloat
	SpecularColor utils.ColorFloat
	UseMist       bool
	TextureSlots  []*TextureSlot
	Animation     *AnimationData
}

func NewMaterial(name string) *Material {
	return &Material{
		Name:          name,
		DiffuseColor:  utils.ColorWhite(),
		SpecularColor: utils.ColorFloat{0, 0, 0, 1},
		UseMist:       true,
	}
}

// BlendType is the slot-level blend mode authored on the material.
type BlendType int

const (
	BlendMix BlendType = iota
	BlendAdd
	BlendMultiply
)

type TextureSlot struct {
	Name       string
	Use        bool
	Texture    *Texture
	UVLayer    string
	Offset     mgl32.Vec3
	Scale      mgl32.Vec3
	Blend      BlendType
	UseStencil bool
}

func NewTextureSlot(name string, tex *Texture) *TextureSlot {
	return &TextureSlot{
		Name:    name,
		Use:     true,
		Texture: tex,
		Scale:   mgl32.Vec3{1, 1, 1},
	}
}

// TextureKind is the closed set of texture types the exporter understands.
type TextureKind int

const (
	TextureNone TextureKind = iota
	TextureImage
	TextureEnvironmentMap
	TextureBlend // procedural gradient, used for stencil masks
)

// Extension is the texture wrap mode.
type Extension int

const (
	ExtendRepeat Extension = iota
	ExtendClip
)

type Texture struct {
	Name string
	Kind TextureKind

	Image       *Image
	Environment *EnvironmentMap

	UseCalculateAlpha bool
	UseAlpha          bool
	InvertAlpha       bool
	UseMipmap         bool
	Extension         Extension

	Layer     LayerProps
	Animation *AnimationData
}

func NewTexture(name string, kind TextureKind) *Texture {
	return &Texture{
		Name:  name,
		Kind:  kind,
		Layer: DefaultLayerProps(),
	}
}

// LayerProps are the per-texture user overrides.
type LayerProps struct {
	Opacity     float32 // 0-100
	AlphaHalo   bool
	EnvMapColor utils.ColorFloat
	VisRegions  []string

	AnimAutoStart bool
	AnimLoop      bool
	// Loop bounds in frames; both zero means the full animation range.
	LoopBegin float32
	LoopEnd   float32
}

func DefaultLayerProps() LayerProps {
	return LayerProps{
		Opacity:       100,
		EnvMapColor:   utils.ColorWhite(),
		AnimAutoStart: true,
	}
}

// EnvSource tells where an environment map's content comes from.
type EnvSource int

const (
	EnvSourceStatic EnvSource = iota
	EnvSourceAnimated
	EnvSourceImage // baked image, unsupported by the exporter
)

// EnvMapping is the projection shape.
type EnvMapping int

const (
	EnvMappingCube EnvMapping = iota
	EnvMappingPlane
)

type EnvironmentMap struct {
	Source     EnvSource
	Mapping    EnvMapping
	Viewpoint  *Object // nil means the consuming object
	Resolution int
	ClipStart  float32
	ClipEnd    float32
}
