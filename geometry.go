package glitch

import "errors"

// ErrFormatMismatch is returned when pasting between buffers whose formats differ.
var ErrFormatMismatch = errors.New("glitch: buffer format mismatch")

// ShiftRowWrap shifts row y horizontally by offset pixels with wraparound:
// pixels leaving one edge re-enter the opposite edge. Positive offsets move
// pixels to the right. A no-op when offset is a multiple of the width.
func (b *Buffer) ShiftRowWrap(y, offset int) {
	if y < 0 || y >= b.height || b.width == 0 {
		return
	}
	offset %= b.width
	if offset < 0 {
		offset += b.width
	}
	if offset == 0 {
		return
	}

	bpp := b.format.BytesPerPixel()
	row := b.Row(y)
	shifted := make([]byte, len(row))
	split := (b.width - offset) * bpp
	copy(shifted[offset*bpp:], row[:split])
	copy(shifted[:offset*bpp], row[split:])
	copy(row, shifted)
}

// ResizeNearest returns a new buffer scaled to (width, height) using
// nearest-neighbor sampling: each destination pixel takes the value of the
// source pixel containing its center, with no interpolation.
func (b *Buffer) ResizeNearest(width, height int) (*Buffer, error) {
	out, err := NewBuffer(width, height, b.format)
	if err != nil {
		return nil, err
	}
	if b.palette != nil {
		out.palette = clonePalette(b.palette)
	}

	bpp := b.format.BytesPerPixel()
	for y := 0; y < height; y++ {
		srcY := y * b.height / height
		srcRow := b.Row(srcY)
		dstRow := out.Row(y)
		for x := 0; x < width; x++ {
			srcX := x * b.width / width
			copy(dstRow[x*bpp:(x+1)*bpp], srcRow[srcX*bpp:(srcX+1)*bpp])
		}
	}
	return out, nil
}

// Crop returns a new buffer holding the region bounded by (left, top) and
// (right, bottom), right and bottom exclusive.
func (b *Buffer) Crop(left, top, right, bottom int) (*Buffer, error) {
	if left < 0 || top < 0 || right > b.width || bottom > b.height ||
		right <= left || bottom <= top {
		return nil, ErrOutOfBounds
	}

	out, err := NewBuffer(right-left, bottom-top, b.format)
	if err != nil {
		return nil, err
	}
	if b.palette != nil {
		out.palette = clonePalette(b.palette)
	}

	bpp := b.format.BytesPerPixel()
	for y := top; y < bottom; y++ {
		copy(out.Row(y-top), b.Row(y)[left*bpp:right*bpp])
	}
	return out, nil
}

// Paste copies src into the buffer with its top-left corner at (x, y).
// Source pixels falling outside the destination are clipped.
// Both buffers must share the same format.
func (b *Buffer) Paste(src *Buffer, x, y int) error {
	if src.format != b.format {
		return ErrFormatMismatch
	}

	bpp := b.format.BytesPerPixel()
	for sy := 0; sy < src.height; sy++ {
		dy := y + sy
		if dy < 0 || dy >= b.height {
			continue
		}
		for sx := 0; sx < src.width; sx++ {
			dx := x + sx
			if dx < 0 || dx >= b.width {
				continue
			}
			copy(b.Row(dy)[dx*bpp:(dx+1)*bpp], src.Row(sy)[sx*bpp:(sx+1)*bpp])
		}
	}
	return nil
}

// SplitChannels splits the buffer into one grayscale plane per channel.
func (b *Buffer) SplitChannels() []*Buffer {
	n := b.format.Channels()
	bpp := b.format.BytesPerPixel()
	planes := make([]*Buffer, n)
	for c := 0; c < n; c++ {
		plane, _ := NewBuffer(b.width, b.height, FormatGray8)
		for y := 0; y < b.height; y++ {
			srcRow := b.Row(y)
			dstRow := plane.Row(y)
			for x := 0; x < b.width; x++ {
				dstRow[x] = srcRow[x*bpp+c]
			}
		}
		planes[c] = plane
	}
	return planes
}

// MergeChannels reassembles planes produced by SplitChannels into a buffer
// of the given format. The number of planes must match the format's channel
// count and all planes must share dimensions.
func MergeChannels(format Format, planes []*Buffer) (*Buffer, error) {
	if len(planes) == 0 || len(planes) != format.Channels() {
		return nil, ErrInvalidFormat
	}
	w, h := planes[0].Bounds()
	for _, p := range planes {
		if p.width != w || p.height != h {
			return nil, ErrInvalidDimensions
		}
	}

	out, err := NewBuffer(w, h, format)
	if err != nil {
		return nil, err
	}
	bpp := format.BytesPerPixel()
	for y := 0; y < h; y++ {
		dstRow := out.Row(y)
		for c, p := range planes {
			srcRow := p.Row(y)
			for x := 0; x < w; x++ {
				dstRow[x*bpp+c] = srcRow[x]
			}
		}
	}
	return out, nil
}
