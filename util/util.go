package util

import (
	"math/rand"

	"github.com/lucasb-eyer/go-colorful"
)

// RandomBetween returns a uniformly distributed value in [lo, hi).
func RandomBetween(lo, hi float64) float64 {
	return rand.Float64()*(hi-lo) + lo
}

// RandomColor returns a fairly saturated colour of random hue, dim enough
// to sit behind artwork.
func RandomColor() colorful.Color {
	return colorful.Hsv(RandomBetween(0, 360), RandomBetween(0.6, 1), RandomBetween(0.3, 0.7)).Clamped()
}
