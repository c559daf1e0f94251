package animation

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/mirphak/prpexport/scene"
)

func linearCurve(path string, idx int, keys ...[2]float32) *scene.FCurve {
	fc := &scene.FCurve{DataPath: path, ArrayIndex: idx}
	for _, k := range keys {
		fc.Keyframes = append(fc.Keyframes, scene.Keyframe{
			Frame: k[0], Value: k[1], Interpolation: scene.InterpLinear,
		})
	}
	return fc
}

func TestScalarControllerBakesSeconds(t *testing.T) {
	c := NewConverter(24)
	ctl := c.ScalarController(linearCurve("opacity", 0, [2]float32{0, 100}, [2]float32{48, 0}))
	if ctl == nil {
		t.Fatal("controller is nil")
	}
	if len(ctl.Keys) != 2 {
		t.Fatalf("baked %d keys; expected 2", len(ctl.Keys))
	}
	if ctl.Keys[0].Time != 0 || ctl.Keys[1].Time != 2 {
		t.Errorf("key times %v, %v; expected 0s and 2s", ctl.Keys[0].Time, ctl.Keys[1].Time)
	}
	if ctl.Keys[1].Value != 0 {
		t.Errorf("final value %v; expected 0", ctl.Keys[1].Value)
	}
}

func TestScalarControllerNilOnEmpty(t *testing.T) {
	c := NewConverter(24)
	if c.ScalarController(nil) != nil {
		t.Error("nil curve produced a controller")
	}
	if c.ScalarController(&scene.FCurve{DataPath: "opacity"}) != nil {
		t.Error("keyless curve produced a controller")
	}
}

func TestBezierSpanGetsBakedSamples(t *testing.T) {
	fc := &scene.FCurve{DataPath: "opacity"}
	fc.Keyframes = []scene.Keyframe{
		{Frame: 0, Value: 0, Interpolation: scene.InterpBezier},
		{Frame: 24, Value: 1, Interpolation: scene.InterpBezier},
	}
	ctl := NewConverter(24).ScalarController(fc)
	if len(ctl.Keys) != bezierBakeSteps+1 {
		t.Errorf("baked %d keys; expected %d", len(ctl.Keys), bezierBakeSteps+1)
	}
	// eased midpoint still passes through the halfway value
	mid := ctl.Keys[len(ctl.Keys)/2]
	if mid.Value < 0.45 || mid.Value > 0.55 {
		t.Errorf("midpoint value %v; expected ~0.5", mid.Value)
	}
}

func TestMatrix44ControllerHoldsBaseAxes(t *testing.T) {
	c := NewConverter(24)
	pos := []*scene.FCurve{linearCurve("offset", 0, [2]float32{0, 0}, [2]float32{24, 4})}
	ctl := c.Matrix44Controller(pos, nil, mgl32.Vec3{0, 7, 0}, mgl32.Vec3{1, 1, 1})
	if ctl == nil {
		t.Fatal("controller is nil")
	}
	last := ctl.Keys[len(ctl.Keys)-1].Matrix
	if got := last.Col(3).X(); got != 4 {
		t.Errorf("animated x translation %v; expected 4", got)
	}
	if got := last.Col(3).Y(); got != 7 {
		t.Errorf("held y translation %v; expected base 7", got)
	}
}

func TestMatrix44ControllerNilWithoutCurves(t *testing.T) {
	c := NewConverter(24)
	if c.Matrix44Controller(nil, nil, mgl32.Vec3{}, mgl32.Vec3{1, 1, 1}) != nil {
		t.Error("controller produced from no curves")
	}
}
