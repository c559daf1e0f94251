// Package plasma is the engine-side object model: typed named objects,
// their registry, and the binary page serialization.
package plasma

// Type is the engine class index of a keyed object.
type Type uint16

const (
	TypeSceneObject    Type = 0x0001
	TypeMipmap         Type = 0x0004
	TypeLayer          Type = 0x0006
	TypeGMaterial      Type = 0x0007
	TypeLayerAnimation Type = 0x0043
	TypeDynamicTextMap Type = 0x0082
	TypeDynamicEnvMap  Type = 0x0106
	TypeDynamicCamMap  Type = 0x0107
	TypeVisRegion      Type = 0x0116
)

func (t Type) String() string {
	switch t {
	case TypeSceneObject:
		return "SceneObject"
	case TypeMipmap:
		return "Mipmap"
	case TypeLayer:
		return "Layer"
	case TypeGMaterial:
		return "GMaterial"
	case TypeLayerAnimation:
		return "LayerAnimation"
	case TypeDynamicTextMap:
		return "DynamicTextMap"
	case TypeDynamicEnvMap:
		return "DynamicEnvMap"
	case TypeDynamicCamMap:
		return "DynamicCamMap"
	case TypeVisRegion:
		return "VisRegion"
	}
	return "Unknown"
}

// Location is the output page an object is bucketed into.
type Location string

// Key is a stable reference to a named typed object. Keys are allocated by
// the Registry and compared by pointer; the same (type, name, location)
// triple always yields the same *Key within a session.
type Key struct {
	Type     Type
	Name     string
	Location Location
}

func (k *Key) String() string {
	return string(k.Location) + "/" + k.Type.String() + "/" + k.Name
}
