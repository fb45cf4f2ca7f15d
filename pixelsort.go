package glitch

import (
	"fmt"
	"sort"
)

// MaskKind selects the predicate that decides whether a pixel is sortable.
type MaskKind uint8

const (
	// MaskDarkerThan marks pixels whose luma is strictly below Threshold.
	MaskDarkerThan MaskKind = iota

	// MaskLighterThan marks pixels whose luma is strictly above Threshold.
	MaskLighterThan
)

// String returns a string representation of the mask kind.
func (k MaskKind) String() string {
	switch k {
	case MaskDarkerThan:
		return "DarkerThan"
	case MaskLighterThan:
		return "LighterThan"
	default:
		return "Unknown"
	}
}

// Mask is a stateless predicate over pixel luma. Pixels for which the
// predicate holds are sortable; all others are frozen in place.
type Mask struct {
	Kind      MaskKind
	Threshold float64
}

// Sortable reports whether a pixel with the given luma passes the mask.
func (m Mask) Sortable(luma uint8) bool {
	switch m.Kind {
	case MaskDarkerThan:
		return float64(luma) < m.Threshold
	case MaskLighterThan:
		return float64(luma) > m.Threshold
	default:
		return false
	}
}

// run is a maximal contiguous horizontal span of sortable pixels in one row.
type run struct {
	row, start, end int // end exclusive
}

// detectRuns scans each row left to right and records every maximal
// contiguous span of sortable pixels. A run opens when a sortable pixel is
// the row's first pixel or follows an unsortable one; it closes at the
// row's last pixel or when an unsortable pixel follows a sortable one.
// Runs are non-overlapping per row by construction.
func detectRuns(b *Buffer, mask Mask) []run {
	var runs []run
	for y := 0; y < b.height; y++ {
		start := -1
		for x := 0; x < b.width; x++ {
			r, g, bl, _ := b.GetRGBA(x, y)
			if mask.Sortable(Luma(r, g, bl)) {
				if start < 0 {
					start = x
				}
				if x == b.width-1 {
					runs = append(runs, run{row: y, start: start, end: b.width})
				}
			} else if start >= 0 {
				runs = append(runs, run{row: y, start: start, end: x})
				start = -1
			}
		}
	}
	return runs
}

// PixelSort sorts the pixels inside every masked run of each row by luma,
// ascending left to right, or descending when reverse is set. Pixels
// outside all runs are unchanged.
func PixelSort(b *Buffer, mask Mask, reverse bool) (*Buffer, error) {
	if mask.Kind > MaskLighterThan {
		return nil, fmt.Errorf("%w: mask kind %d", ErrBadParam, mask.Kind)
	}

	out := b.Clone()
	bpp := out.format.BytesPerPixel()
	for _, rn := range detectRuns(b, mask) {
		row := out.Row(rn.row)
		n := rn.end - rn.start

		pixels := make([][]byte, n)
		lumas := make([]uint8, n)
		for i := 0; i < n; i++ {
			x := rn.start + i
			px := make([]byte, bpp)
			copy(px, row[x*bpp:(x+1)*bpp])
			pixels[i] = px
			r, g, bl, _ := out.GetRGBA(x, rn.row)
			lumas[i] = Luma(r, g, bl)
		}

		order := make([]int, n)
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(i, j int) bool {
			if reverse {
				return lumas[order[i]] > lumas[order[j]]
			}
			return lumas[order[i]] < lumas[order[j]]
		})

		for i, src := range order {
			x := rn.start + i
			copy(row[x*bpp:(x+1)*bpp], pixels[src])
		}
	}
	return out, nil
}
