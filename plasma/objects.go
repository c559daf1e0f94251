package plasma

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/mirphak/prpexport/utils"
)

// Object is anything the registry can hand out a key for.
type Object interface {
	Key() *Key
	setKey(k *Key)
}

type object struct {
	key *Key
}

func (o *object) Key() *Key     { return o.key }
func (o *object) setKey(k *Key) { o.key = k }

// LayerObject is the common surface of Layer and LayerAnimation: both sit in
// a material's layer sequence and both can be retroactively re-flagged.
type LayerObject interface {
	Object
	LayerState() *MatState
	SetTexture(k *Key)
}

// Material owns an ordered sequence of layer keys. Order is significant:
// a bind-next flag on a layer refers to the following entry.
type Material struct {
	object
	CompFlags uint32
	Layers    []*Key
}

func (m *Material) AddLayer(k *Key) {
	m.Layers = append(m.Layers, k)
}

// Layer is one shading unit: a texture reference plus blend/clamp/shade
// state and the colors propagated from the source material.
type Layer struct {
	object
	State     MatState
	Transform mgl32.Mat4
	UVWSrc    uint32
	Opacity   float32

	Preshade utils.ColorFloat
	Runtime  utils.ColorFloat
	Ambient  utils.ColorFloat
	Specular utils.ColorFloat

	Texture *Key
}

func NewLayer() *Layer {
	return &Layer{
		Transform: mgl32.Ident4(),
		Opacity:   1.0,
		Preshade:  utils.ColorWhite(),
		Runtime:   utils.ColorWhite(),
		Ambient:   utils.ColorFloat{0, 0, 0, 1},
		Specular:  utils.ColorFloat{0, 0, 0, 1},
	}
}

func (l *Layer) LayerState() *MatState { return &l.State }
func (l *Layer) SetTexture(k *Key)     { l.Texture = k }

// AnimTimeConvert flags.
const (
	ATCStopped uint32 = 0x01
	ATCLoop    uint32 = 0x02
)

type AnimTimeConvert struct {
	Flags     uint32
	Begin     float32
	End       float32
	LoopBegin float32
	LoopEnd   float32
}

// LayerAnimation wraps an underlying layer with animation controllers.
type LayerAnimation struct {
	object
	State        MatState
	UnderLay     *Key
	OpacityCtl   *ScalarController
	TransformCtl *Matrix44Controller
	TimeConvert  AnimTimeConvert
}

func (l *LayerAnimation) LayerState() *MatState { return &l.State }
func (l *LayerAnimation) SetTexture(k *Key)     {}

// Mipmap compression.
type CompressionType int

const (
	CompressUncompressed CompressionType = iota
	CompressDirectX
)

type DXTLevel int

const (
	DXTNone DXTLevel = 0
	DXT1    DXTLevel = 1
	DXT5    DXTLevel = 5
)

// Pixel configs.
const (
	ConfigRGB8888 uint32 = 0x20
)

// Bitmap flags.
const (
	BitmapAlphaChannel uint32 = 0x01
	BitmapAlphaBit     uint32 = 0x02
	BitmapIsTexture    uint32 = 0x10
)

// Mipmap is a fully-built bitmap: every level's pixel data, already in its
// final on-disk encoding.
type Mipmap struct {
	object
	Width       int
	Height      int
	NumLevels   int
	Compression CompressionType
	Config      uint32
	DXT         DXTLevel
	Flags       uint32
	LevelData   [][]byte
}

// DynamicTextMap is a runtime-drawn placeholder texture for layers whose
// source texture carries no image.
type DynamicTextMap struct {
	object
	VisWidth  int
	VisHeight int
	HasAlpha  bool
}

// RenderTarget is the per-face configuration of a render-to-texture bitmap.
type RenderTarget struct {
	Config         uint32
	Flags          uint32
	Width          int
	Height         int
	Proportional   bool
	ViewportLeft   int
	ViewportTop    int
	ViewportRight  int
	ViewportBottom int
	ZDepth         int
}

// DynamicEnvMap is a live six-faced environment map rendered from a
// viewpoint position.
type DynamicEnvMap struct {
	object
	RenderTarget
	Hither            float32
	Yon               float32
	RefreshRate       float32
	IncludeCharacters bool
	Color             utils.ColorFloat
	FogStart          float32
	VisRegions        []*Key
	Position          mgl32.Vec3
	Faces             [6]RenderTarget
}

// EachFace visits every face bitmap plus the map itself.
func (e *DynamicEnvMap) EachFace(fn func(rt *RenderTarget)) {
	for i := range e.Faces {
		fn(&e.Faces[i])
	}
	fn(&e.RenderTarget)
}

// DynamicCamMap is the planar camera-map variant: a single conceptual face
// rendered from a root node's point of view.
type DynamicCamMap struct {
	object
	RenderTarget
	Hither            float32
	Yon               float32
	RefreshRate       float32
	IncludeCharacters bool
	Color             utils.ColorFloat
	FogStart          float32
	VisRegions        []*Key
	RootNode          *Key
	Camera            *Key
	TargetNodes       []*Key
	MatLayers         []*Key
	DisableTexture    *Key
}

func (c *DynamicCamMap) AddTargetNode(k *Key) {
	for _, t := range c.TargetNodes {
		if t == k {
			return
		}
	}
	c.TargetNodes = append(c.TargetNodes, k)
}

func (c *DynamicCamMap) AddMatLayer(k *Key) {
	for _, l := range c.MatLayers {
		if l == k {
			return
		}
	}
	c.MatLayers = append(c.MatLayers, k)
}

func (c *DynamicCamMap) EachFace(fn func(rt *RenderTarget)) {
	fn(&c.RenderTarget)
}

// SceneObject is a key anchor for source objects referenced by env maps.
type SceneObject struct {
	object
}

// VisRegion is a key anchor for visibility-region objects.
type VisRegion struct {
	object
}
