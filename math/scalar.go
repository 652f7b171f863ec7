package math

import "math"

const Pi = float32(math.Pi)

func Radians(deg float32) float32 { return deg * Pi / 180 }

func Degrees(rad float32) float32 { return rad * 180 / Pi }

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func Sin(v float32) float32 { return float32(math.Sin(float64(v))) }

func Cos(v float32) float32 { return float32(math.Cos(float64(v))) }

func Sqrt(v float32) float32 { return float32(math.Sqrt(float64(v))) }
