package plasma

// MatState is the render state of a layer, split into the engine's five
// flag words.
type MatState struct {
	Blend uint32
	Clamp uint32
	Shade uint32
	Z     uint32
	Misc  uint32
}

// Blend flags.
const (
	BlendTest               uint32 = 0x00000001
	BlendAlpha              uint32 = 0x00000002
	BlendMult               uint32 = 0x00000004
	BlendAdd                uint32 = 0x00000008
	BlendAddColorTimesAlpha uint32 = 0x00000010
	BlendAntiAlias          uint32 = 0x00000020
	BlendDetail             uint32 = 0x00000040
	BlendNoColor            uint32 = 0x00000080
	BlendMADD               uint32 = 0x00000100
	BlendDot3               uint32 = 0x00000200
	BlendAddSigned          uint32 = 0x00000400
	BlendAddSigned2X        uint32 = 0x00000800
	BlendInvertAlpha        uint32 = 0x00001000
	BlendInvertColor        uint32 = 0x00002000
	BlendAlphaMult          uint32 = 0x00004000
	BlendAlphaAdd           uint32 = 0x00008000
	BlendNoVtxAlpha         uint32 = 0x00010000
	BlendNoTexColor         uint32 = 0x00020000
	BlendNoTexAlpha         uint32 = 0x00040000
	BlendAlphaAlways        uint32 = 0x00100000
	BlendAlphaTestHigh      uint32 = 0x04000000

	// BlendMask covers the ordinary blend-mode bits. A layer whose state
	// has none of these set renders opaque.
	BlendMask = BlendAlpha | BlendMult | BlendAdd | BlendAddColorTimesAlpha |
		BlendMADD | BlendDot3 | BlendAddSigned | BlendAddSigned2X
)

// Clamp flags.
const (
	ClampTextureU uint32 = 0x01
	ClampTextureV uint32 = 0x02
	ClampTexture  uint32 = 0x03
)

// Shade flags.
const (
	ShadeSoftShadow   uint32 = 0x00000001
	ShadeNoProjectors uint32 = 0x00000002
	ShadeEnvironMap   uint32 = 0x00000004
	ShadeNoShade      uint32 = 0x00000040
	ShadeSpecular     uint32 = 0x00000080
	ShadeNoFog        uint32 = 0x00000100
	ShadeWhite        uint32 = 0x00000200
	ShadeEmissive     uint32 = 0x00004000
	ShadeReallyNoFog  uint32 = 0x00008000
)

// Z flags.
const (
	ZIncLayer uint32 = 0x01
	ZClearZ   uint32 = 0x04
	ZNoZRead  uint32 = 0x08
	ZNoZWrite uint32 = 0x10
)

// Misc flags.
const (
	MiscTwoSided           uint32 = 0x00000004
	MiscBindSkip           uint32 = 0x00000100
	MiscBindMask           uint32 = 0x00000200
	MiscBindNext           uint32 = 0x00000400
	MiscLightMap           uint32 = 0x00000800
	MiscUseReflectionXform uint32 = 0x00001000
	MiscPerspProjection    uint32 = 0x00002000
	MiscOrthoProjection    uint32 = 0x00004000
	MiscRestartPassHere    uint32 = 0x00008000
	MiscUseRefractionXform uint32 = 0x00200000
	MiscCam2Screen         uint32 = 0x00400000
)

// Material composition flags.
const (
	CompShaded            uint32 = 0x0001
	CompEnvironMap        uint32 = 0x0002
	CompProjectOnto       uint32 = 0x0004
	CompSoftShadow        uint32 = 0x0008
	CompSpecular          uint32 = 0x0010
	CompTwoSided          uint32 = 0x0020
	CompNeedsBlendChannel uint32 = 0x4000
)

// UVW source values beyond plain channel indices.
const (
	UVWIdxMask  uint32 = 0x0000FFFF
	UVWNormal   uint32 = 0x00010000
	UVWPosition uint32 = 0x00020000
	UVWReflect  uint32 = 0x00030000
)
