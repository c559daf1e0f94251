package utils

// ColorFloat is an rgba color with components in 0..1, stored in the order
// the page format writes them.
type ColorFloat [4]float32

// NewColorFloatA builds a color from a four-component slice.
func NewColorFloatA(c []float32) ColorFloat {
	return ColorFloat{c[0], c[1], c[2], c[3]}
}

func ColorWhite() ColorFloat {
	return ColorFloat{1.0, 1.0, 1.0, 1.0}
}
