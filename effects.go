package glitch

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/glitchkit/glitch/internal/blend"
	"github.com/glitchkit/glitch/internal/filter"
)

// ErrBadParam wraps all effect parameter validation failures. Parameter
// errors derive from pure arithmetic and are raised before any pixel work.
var ErrBadParam = errors.New("glitch: invalid parameter")

// bandAlpha is the opacity applied to noise bands before compositing.
const bandAlpha = 128

// Desample returns the buffer scaled down by factor per axis using
// nearest-neighbor sampling. Not a dimension-exact inverse of Upscale.
func Desample(b *Buffer, factor float64) (*Buffer, error) {
	if factor <= 0 {
		return nil, fmt.Errorf("%w: desample factor %v", ErrBadParam, factor)
	}
	w := int(float64(b.width) / factor)
	h := int(float64(b.height) / factor)
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: desample factor %v collapses %dx%d", ErrBadParam, factor, b.width, b.height)
	}
	return b.ResizeNearest(w, h)
}

// Upscale returns the buffer scaled up by factor per axis using
// nearest-neighbor sampling.
func Upscale(b *Buffer, factor float64) (*Buffer, error) {
	if factor <= 0 {
		return nil, fmt.Errorf("%w: upscale factor %v", ErrBadParam, factor)
	}
	w := int(float64(b.width) * factor)
	h := int(float64(b.height) * factor)
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: upscale factor %v collapses %dx%d", ErrBadParam, factor, b.width, b.height)
	}
	return b.ResizeNearest(w, h)
}

// Crop returns the sub-buffer bounded by (left, top, right, bottom).
func Crop(b *Buffer, left, top, right, bottom int) (*Buffer, error) {
	return b.Crop(left, top, right, bottom)
}

// Convert returns the buffer converted to the target channel layout.
// Converting to Paletted8 performs adaptive palette reduction, which is
// required before multi-frame encoding.
func Convert(b *Buffer, format Format) (*Buffer, error) {
	return b.Convert(format)
}

// SplitColorChannels offsets the red channel right and the blue channel
// left by offset pixels, both with horizontal wraparound, leaving green in
// place. Requires at least three channels.
func SplitColorChannels(b *Buffer, offset int) (*Buffer, error) {
	if b.format.Channels() < 3 {
		return nil, fmt.Errorf("%w: split channels requires RGB or RGBA, got %s", ErrBadParam, b.format)
	}

	planes := b.SplitChannels()
	for y := 0; y < b.height; y++ {
		planes[0].ShiftRowWrap(y, offset)
		planes[2].ShiftRowWrap(y, -offset)
	}
	return MergeChannels(b.format, planes)
}

// Sharpen adjusts edge contrast. A factor of 1.0 is the identity; larger
// factors sharpen, smaller factors soften.
func Sharpen(b *Buffer, factor float64) (*Buffer, error) {
	work, err := b.Convert(FormatRGBA8)
	if err != nil {
		return nil, err
	}
	work.data = filter.Sharpen(work.data, work.width, work.height, work.stride, factor)
	if b.format == FormatRGBA8 {
		return work, nil
	}
	return work.Convert(b.format)
}

// ShiftCorruption shifts randomly sampled rows horizontally by random
// offsets with wraparound. Row indices are sampled with replacement, so
// fewer unique rows than floor(height*coverage) may be affected; offsets
// are drawn uniformly from [-offsetMag, offsetMag].
func ShiftCorruption(b *Buffer, rng *rand.Rand, offsetMag int, coverage float64) (*Buffer, error) {
	if offsetMag < 0 {
		return nil, fmt.Errorf("%w: shift magnitude %d", ErrBadParam, offsetMag)
	}
	if coverage < 0 || coverage > 1 {
		return nil, fmt.Errorf("%w: shift coverage %v", ErrBadParam, coverage)
	}

	out := b.Clone()
	lines := int(float64(b.height) * coverage)
	for i := 0; i < lines; i++ {
		y := rng.Intn(b.height)
		out.ShiftRowWrap(y, rng.Intn(2*offsetMag+1)-offsetMag)
	}
	return out, nil
}

// randomWalk returns a cumulative random walk with steps drawn uniformly
// from [-maxStep, maxStep].
func randomWalk(rng *rand.Rand, length, maxStep int) []int {
	walk := make([]int, length)
	pos := 0
	for i := range walk {
		pos += rng.Intn(2*maxStep+1) - maxStep
		walk[i] = pos
	}
	return walk
}

// WalkDistortion shifts each row according to a 1D random walk, giving the
// image a wandering horizontal distortion. maxStep bounds the walk's step
// size and so the abruptness of the distortion.
func WalkDistortion(b *Buffer, rng *rand.Rand, maxStep int) (*Buffer, error) {
	if maxStep < 0 {
		return nil, fmt.Errorf("%w: walk step %d", ErrBadParam, maxStep)
	}

	out := b.Clone()
	for y, offset := range randomWalk(rng, b.height, maxStep) {
		out.ShiftRowWrap(y, offset)
	}
	return out, nil
}

// SinWaveDistortion shifts each row according to a sine curve:
// offset(y) = mag * sin(2*pi*freq*(y/height) + phase), truncated.
func SinWaveDistortion(b *Buffer, mag, freq, phase float64) (*Buffer, error) {
	out := b.Clone()
	for y := 0; y < b.height; y++ {
		offset := mag * math.Sin(2*math.Pi*freq*(float64(y)/float64(b.height))+phase)
		out.ShiftRowWrap(y, int(offset))
	}
	return out, nil
}

// gridBox is one rectangular cell of a grid partition.
type gridBox struct {
	left, top, right, bottom int
}

// gridBoxes partitions the buffer into rows x cols cells of size
// (width/cols, height/rows), row-major. Remainder pixels on the right and
// bottom edges are not covered by any cell.
func gridBoxes(b *Buffer, rows, cols int) ([]gridBox, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: grid %dx%d", ErrBadParam, rows, cols)
	}
	cellW := b.width / cols
	cellH := b.height / rows
	if cellW == 0 || cellH == 0 {
		return nil, fmt.Errorf("%w: grid %dx%d has zero-area cells on %dx%d", ErrBadParam, rows, cols, b.width, b.height)
	}

	boxes := make([]gridBox, 0, rows*cols)
	for cy := 0; cy < rows; cy++ {
		for cx := 0; cx < cols; cx++ {
			boxes = append(boxes, gridBox{
				left:   cx * cellW,
				top:    cy * cellH,
				right:  cx*cellW + cellW,
				bottom: cy*cellH + cellH,
			})
		}
	}
	return boxes, nil
}

// SwapCells partitions the buffer into a grid and swaps the pixel content
// of `swaps` randomly sampled pairs of cells. Cells are sampled with
// replacement and swaps apply sequentially to the current buffer state, so
// results are order-dependent when sampled cells repeat.
func SwapCells(b *Buffer, rng *rand.Rand, rows, cols, swaps int) (*Buffer, error) {
	if swaps < 0 {
		return nil, fmt.Errorf("%w: swap count %d", ErrBadParam, swaps)
	}
	boxes, err := gridBoxes(b, rows, cols)
	if err != nil {
		return nil, err
	}

	out := b.Clone()
	for i := 0; i < swaps; i++ {
		box1 := boxes[rng.Intn(len(boxes))]
		box2 := boxes[rng.Intn(len(boxes))]

		cell1, err := out.Crop(box1.left, box1.top, box1.right, box1.bottom)
		if err != nil {
			return nil, err
		}
		cell2, err := out.Crop(box2.left, box2.top, box2.right, box2.bottom)
		if err != nil {
			return nil, err
		}
		if err := out.Paste(cell1, box2.left, box2.top); err != nil {
			return nil, err
		}
		if err := out.Paste(cell2, box1.left, box1.top); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// AddNoiseCells composites random greyscale noise into sampled grid cells
// using a lighten blend, so the noise never darkens the base image. Cells
// are sampled with replacement.
func AddNoiseCells(b *Buffer, rng *rand.Rand, rows, cols, cells int) (*Buffer, error) {
	if cells < 0 {
		return nil, fmt.Errorf("%w: cell count %d", ErrBadParam, cells)
	}
	boxes, err := gridBoxes(b, rows, cols)
	if err != nil {
		return nil, err
	}

	out := b.Clone()
	for i := 0; i < cells; i++ {
		box := boxes[rng.Intn(len(boxes))]
		noise, err := newNoiseBuffer(rng, box.right-box.left, box.bottom-box.top, out.format)
		if err != nil {
			return nil, err
		}
		for y := box.top; y < box.bottom; y++ {
			for x := box.left; x < box.right; x++ {
				dr, dg, db, da := out.GetRGBA(x, y)
				sr, sg, sb, sa := noise.GetRGBA(x-box.left, y-box.top)
				r, g, bl, a := blend.Lighten(sr, sg, sb, sa, dr, dg, db, da)
				if err := out.SetRGBA(x, y, r, g, bl, a); err != nil {
					return nil, err
				}
			}
		}
	}
	return out, nil
}

// AddNoiseBands composites random full-width greyscale noise bands at
// partial opacity. Band positions are sampled with replacement and each
// band's thickness is drawn uniformly from [1, thickness]. The band is
// lightened against the base first, then alpha-composited at half opacity,
// so noise never darkens the base image.
func AddNoiseBands(b *Buffer, rng *rand.Rand, count, thickness int) (*Buffer, error) {
	if count < 0 {
		return nil, fmt.Errorf("%w: band count %d", ErrBadParam, count)
	}
	if thickness < 1 {
		return nil, fmt.Errorf("%w: band thickness %d", ErrBadParam, thickness)
	}

	work, err := b.Convert(FormatRGBA8)
	if err != nil {
		return nil, err
	}
	for i := 0; i < count; i++ {
		top := rng.Intn(b.height)
		bottom := top + 1 + rng.Intn(thickness)
		if bottom > b.height {
			bottom = b.height
		}
		noise, err := newNoiseBuffer(rng, work.width, bottom-top, FormatRGBA8)
		if err != nil {
			return nil, err
		}
		for y := top; y < bottom; y++ {
			for x := 0; x < work.width; x++ {
				dr, dg, db, da := work.GetRGBA(x, y)
				sr, sg, sb, _ := noise.GetRGBA(x, y-top)
				lr, lg, lb, _ := blend.Lighten(sr, sg, sb, 255, dr, dg, db, da)
				r, g, bl, a := blend.SourceOver(lr, lg, lb, bandAlpha, dr, dg, db, da)
				if err := work.SetRGBA(x, y, r, g, bl, a); err != nil {
					return nil, err
				}
			}
		}
	}
	if b.format == FormatRGBA8 {
		return work, nil
	}
	return work.Convert(b.format)
}

// AddTransparentPixel converts the buffer to an alpha-capable format and
// sets the top-left pixel's alpha to 254. The single almost-opaque pixel
// defeats re-encoders that strip alpha-less images.
func AddTransparentPixel(b *Buffer) (*Buffer, error) {
	out, err := b.Convert(FormatRGBA8)
	if err != nil {
		return nil, err
	}
	if out.width > 0 && out.height > 0 {
		out.data[3] = 254
	}
	return out, nil
}

// LowResBlocks pixelates randomly sampled grid cells by downscaling then
// upscaling each cell's content by factor with nearest-neighbor sampling.
func LowResBlocks(b *Buffer, rng *rand.Rand, rows, cols, cells int, factor float64) (*Buffer, error) {
	if cells < 0 {
		return nil, fmt.Errorf("%w: cell count %d", ErrBadParam, cells)
	}
	if factor <= 0 {
		return nil, fmt.Errorf("%w: low-res factor %v", ErrBadParam, factor)
	}
	boxes, err := gridBoxes(b, rows, cols)
	if err != nil {
		return nil, err
	}

	out := b.Clone()
	for i := 0; i < cells; i++ {
		box := boxes[rng.Intn(len(boxes))]
		cell, err := out.Crop(box.left, box.top, box.right, box.bottom)
		if err != nil {
			return nil, err
		}
		cell, err = Desample(cell, factor)
		if err != nil {
			return nil, err
		}
		cell, err = Upscale(cell, factor)
		if err != nil {
			return nil, err
		}
		if err := out.Paste(cell, box.left, box.top); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Posterize reduces each color channel to its top `bits` bits. Alpha is
// left untouched.
func Posterize(b *Buffer, bits int) (*Buffer, error) {
	if bits < 1 || bits > 8 {
		return nil, fmt.Errorf("%w: posterize bits %d", ErrBadParam, bits)
	}

	mask := uint8(0xFF << (8 - bits))
	out := b.Clone()
	for y := 0; y < out.height; y++ {
		for x := 0; x < out.width; x++ {
			r, g, bl, a := out.GetRGBA(x, y)
			if err := out.SetRGBA(x, y, r&mask, g&mask, bl&mask, a); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}
