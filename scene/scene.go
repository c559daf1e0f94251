// Package scene is the authoring-side data model the exporter consumes:
// objects, meshes, materials, texture slots, images and animation curves,
// shaped after the Blender property model they originate from.
package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/mirphak/prpexport/utils"
)

type Scene struct {
	Name    string
	FPS     float32
	World   World
	Objects []*Object

	byName map[string]*Object
}

func NewScene(name string) *Scene {
	return &Scene{
		Name: name,
		FPS:  24,
		World: World{
			AmbientColor: utils.ColorFloat{0, 0, 0, 1},
			FogColor:     utils.ColorFloat{0.5, 0.5, 0.5, 1},
		},
		byName: make(map[string]*Object),
	}
}

func (s *Scene) AddObject(o *Object) {
	s.Objects = append(s.Objects, o)
	if s.byName == nil {
		s.byName = make(map[string]*Object)
	}
	s.byName[o.Name] = o
}

// ObjectByName returns the named object, or nil.
func (s *Scene) ObjectByName(name string) *Object {
	return s.byName[name]
}

// World carries the scene-global settings the exporter reads: ambient
// lighting and fog.
type World struct {
	AmbientColor utils.ColorFloat
	FogColor     utils.ColorFloat
	FogStart     float32
}

type Object struct {
	Name      string
	Page      string
	Location  mgl32.Vec3
	Mesh      *Mesh
	Modifiers Modifiers
}

type Modifiers struct {
	VisRegion VisRegionModifier
	WaveSet   WaveSetModifier
}

type VisRegionModifier struct {
	Enabled bool
}

type WaveSetModifier struct {
	Enabled bool
}

type Mesh struct {
	UVLayers  []UVLayer
	Materials []*Material
}

type UVLayer struct {
	Name string
}
