package glitch

import (
	"math/rand"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Noise lightness bounds, in percent, matching hsl(0, 0%, L%) greyscale
// values between black and 75% lightness.
const (
	noiseLightnessMin = 0
	noiseLightnessMax = 75
)

// newNoiseBuffer returns a buffer of the given size and format filled with
// random greyscale pixels. Each pixel's lightness is drawn uniformly from
// [noiseLightnessMin, noiseLightnessMax] percent and mapped through the HSL
// color space with zero saturation.
func newNoiseBuffer(rng *rand.Rand, width, height int, format Format) (*Buffer, error) {
	out, err := NewBuffer(width, height, format)
	if err != nil {
		return nil, err
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			l := float64(noiseLightnessMin+rng.Intn(noiseLightnessMax-noiseLightnessMin+1)) / 100
			r, g, b := colorful.Hsl(0, 0, l).RGB255()
			if err := out.SetRGBA(x, y, r, g, b, 255); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}
