package scene

// Interpolation of one keyframe towards the next.
type Interpolation int

const (
	InterpConstant Interpolation = iota
	InterpLinear
	InterpBezier
)

type Keyframe struct {
	Frame         float32
	Value         float32
	Interpolation Interpolation
}

// FCurve animates a single property component, addressed by a data path.
type FCurve struct {
	DataPath   string
	ArrayIndex int
	Keyframes  []Keyframe
}

type Action struct {
	Name    string
	FCurves []*FCurve
}

// FrameRange returns the first and last keyed frame across all curves.
func (a *Action) FrameRange() (float32, float32) {
	var start, end float32
	first := true
	for _, fc := range a.FCurves {
		if len(fc.Keyframes) == 0 {
			continue
		}
		s := fc.Keyframes[0].Frame
		e := fc.Keyframes[len(fc.Keyframes)-1].Frame
		if first || s < start {
			start = s
		}
		if first || e > end {
			end = e
		}
		first = false
	}
	return start, end
}

// AnimationData hangs off a material or texture, holding its active action.
type AnimationData struct {
	Action *Action
}
