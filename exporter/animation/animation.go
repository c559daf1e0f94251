// Package animation converts authored fcurves into baked engine
// controllers. The runtime interpolates controller keys linearly, so curved
// source interpolation is flattened here by sampling.
package animation

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/tanema/gween/ease"

	"github.com/mirphak/prpexport/plasma"
	"github.com/mirphak/prpexport/scene"
)

// interior samples baked into each bezier span
const bezierBakeSteps = 8

type Converter struct {
	fps float32
}

func NewConverter(fps float32) *Converter {
	if fps <= 0 {
		fps = 24
	}
	return &Converter{fps: fps}
}

// evalCurve samples one fcurve at an arbitrary frame.
func evalCurve(fc *scene.FCurve, frame float32) float32 {
	keys := fc.Keyframes
	if len(keys) == 0 {
		return 0
	}
	if frame <= keys[0].Frame {
		return keys[0].Value
	}
	last := keys[len(keys)-1]
	if frame >= last.Frame {
		return last.Value
	}
	i := sort.Search(len(keys), func(n int) bool { return keys[n].Frame > frame }) - 1
	k0, k1 := keys[i], keys[i+1]
	span := k1.Frame - k0.Frame
	if span <= 0 {
		return k1.Value
	}
	t := frame - k0.Frame
	switch k0.Interpolation {
	case scene.InterpConstant:
		return k0.Value
	case scene.InterpBezier:
		return ease.InOutQuad(t, k0.Value, k1.Value-k0.Value, span)
	default:
		return ease.Linear(t, k0.Value, k1.Value-k0.Value, span)
	}
}

// bakeFrames lists the frames a curve set needs keys at: every authored key,
// plus interior samples for curved spans.
func bakeFrames(curves []*scene.FCurve) []float32 {
	seen := make(map[float32]bool)
	var frames []float32
	add := func(f float32) {
		if !seen[f] {
			seen[f] = true
			frames = append(frames, f)
		}
	}
	for _, fc := range curves {
		for i, k := range fc.Keyframes {
			add(k.Frame)
			if i+1 < len(fc.Keyframes) && k.Interpolation != scene.InterpLinear {
				next := fc.Keyframes[i+1]
				span := next.Frame - k.Frame
				for s := 1; s < bezierBakeSteps; s++ {
					add(k.Frame + span*float32(s)/bezierBakeSteps)
				}
			}
		}
	}
	sort.Slice(frames, func(i, j int) bool { return frames[i] < frames[j] })
	return frames
}

// ScalarController bakes one fcurve into a scalar track. Returns nil when
// the curve holds no keys.
func (c *Converter) ScalarController(fc *scene.FCurve) *plasma.ScalarController {
	if fc == nil || len(fc.Keyframes) == 0 {
		return nil
	}
	frames := bakeFrames([]*scene.FCurve{fc})
	ctl := &plasma.ScalarController{Keys: make([]plasma.ScalarKeyFrame, 0, len(frames))}
	for _, f := range frames {
		ctl.Keys = append(ctl.Keys, plasma.ScalarKeyFrame{
			Time:  f / c.fps,
			Value: evalCurve(fc, f),
		})
	}
	return ctl
}

// Matrix44Controller bakes offset and scale curves into an affine track.
// Axes without a curve hold the base transform's value. Returns nil when no
// curve applies.
func (c *Converter) Matrix44Controller(posCurves, scaleCurves []*scene.FCurve, basePos, baseScale mgl32.Vec3) *plasma.Matrix44Controller {
	all := make([]*scene.FCurve, 0, len(posCurves)+len(scaleCurves))
	all = append(all, posCurves...)
	all = append(all, scaleCurves...)
	if len(all) == 0 {
		return nil
	}
	frames := bakeFrames(all)
	if len(frames) == 0 {
		return nil
	}

	axis := func(curves []*scene.FCurve, idx int, frame, base float32) float32 {
		for _, fc := range curves {
			if fc.ArrayIndex == idx {
				return evalCurve(fc, frame)
			}
		}
		return base
	}

	ctl := &plasma.Matrix44Controller{Keys: make([]plasma.MatrixKeyFrame, 0, len(frames))}
	for _, f := range frames {
		pos := mgl32.Vec3{
			axis(posCurves, 0, f, basePos.X()),
			axis(posCurves, 1, f, basePos.Y()),
			axis(posCurves, 2, f, basePos.Z()),
		}
		scl := mgl32.Vec3{
			axis(scaleCurves, 0, f, baseScale.X()),
			axis(scaleCurves, 1, f, baseScale.Y()),
			axis(scaleCurves, 2, f, baseScale.Z()),
		}
		m := mgl32.Translate3D(pos.X(), pos.Y(), pos.Z()).
			Mul4(mgl32.Scale3D(scl.X(), scl.Y(), scl.Z()))
		ctl.Keys = append(ctl.Keys, plasma.MatrixKeyFrame{Time: f / c.fps, Matrix: m})
	}
	return ctl
}
