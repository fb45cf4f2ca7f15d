package glitch

import (
	"image/color"

	"github.com/ericpauley/go-quantize/quantize"
)

// maxPaletteColors is the palette size used for adaptive palette reduction.
// GIF supports at most 256 entries per frame.
const maxPaletteColors = 256

// Convert returns a new buffer with the pixel data reinterpreted in the
// target format. Converting to Paletted8 reduces the image to an adaptive
// palette using median-cut quantization.
func (b *Buffer) Convert(target Format) (*Buffer, error) {
	if !target.IsValid() {
		return nil, ErrInvalidFormat
	}
	if target == b.format {
		return b.Clone(), nil
	}
	if target == FormatPaletted8 {
		return b.convertPaletted()
	}

	out, err := NewBuffer(b.width, b.height, target)
	if err != nil {
		return nil, err
	}
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			r, g, bl, a := b.GetRGBA(x, y)
			if err := out.SetRGBA(x, y, r, g, bl, a); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// convertPaletted reduces the buffer to an adaptive 256-color palette.
func (b *Buffer) convertPaletted() (*Buffer, error) {
	q := quantize.MedianCutQuantizer{}
	pal := q.Quantize(make(color.Palette, 0, maxPaletteColors), b.ToImage())
	if len(pal) == 0 {
		pal = color.Palette{color.NRGBA{A: 255}}
	}

	out, err := NewBuffer(b.width, b.height, FormatPaletted8)
	if err != nil {
		return nil, err
	}
	out.palette = pal
	for y := 0; y < b.height; y++ {
		row := out.Row(y)
		for x := 0; x < b.width; x++ {
			r, g, bl, a := b.GetRGBA(x, y)
			row[x] = uint8(pal.Index(color.NRGBA{R: r, G: g, B: bl, A: a}))
		}
	}
	return out, nil
}
