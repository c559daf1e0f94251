package plasma

import "github.com/go-gl/mathgl/mgl32"

// Controllers are baked animation tracks: keyframes in seconds, linearly
// interpolated by the runtime. Curved source interpolation is flattened by
// the animation converter before it gets here.

type ScalarKeyFrame struct {
	Time  float32
	Value float32
}

type ScalarController struct {
	Keys []ScalarKeyFrame
}

func (c *ScalarController) Duration() float32 {
	if len(c.Keys) == 0 {
		return 0
	}
	return c.Keys[len(c.Keys)-1].Time
}

type MatrixKeyFrame struct {
	Time   float32
	Matrix mgl32.Mat4
}

type Matrix44Controller struct {
	Keys []MatrixKeyFrame
}

func (c *Matrix44Controller) Duration() float32 {
	if len(c.Keys) == 0 {
		return 0
	}
	return c.Keys[len(c.Keys)-1].Time
}
