// Package filter implements the convolution filters used by the effects
// library. Filters operate on raw RGBA8 pixel data.
package filter

// smoothKernel is the 3x3 smoothing kernel used as the degenerate image
// for sharpness adjustment.
var smoothKernel = [9]int32{
	1, 1, 1,
	1, 5, 1,
	1, 1, 1,
}

const smoothKernelSum = 13

// Sharpen adjusts edge contrast of RGBA8 pixel data and returns a new
// pixel slice. A factor of 1.0 returns the input unchanged, factors below
// 1.0 soften, factors above 1.0 sharpen.
//
// The result interpolates (or extrapolates) between a 3x3-smoothed copy of
// the image and the original: out = smooth + factor*(orig - smooth).
// Border pixels are left unfiltered, matching common convolution behavior
// for kernels that would read outside the image.
func Sharpen(pix []byte, width, height, stride int, factor float64) []byte {
	out := make([]byte, len(pix))
	copy(out, pix)
	if factor == 1.0 || width < 3 || height < 3 {
		return out
	}

	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			for c := 0; c < 4; c++ {
				var sum int32
				k := 0
				for ky := -1; ky <= 1; ky++ {
					row := (y + ky) * stride
					for kx := -1; kx <= 1; kx++ {
						sum += smoothKernel[k] * int32(pix[row+(x+kx)*4+c])
						k++
					}
				}
				smooth := float64(sum) / smoothKernelSum
				orig := float64(pix[y*stride+x*4+c])
				out[y*stride+x*4+c] = clampByte(smooth + factor*(orig-smooth))
			}
		}
	}
	return out
}

// clampByte converts a float to a byte, clamping to [0, 255].
func clampByte(v float64) byte {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return byte(v + 0.5)
}
