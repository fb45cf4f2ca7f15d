package glitch

import (
	"errors"
	"image"
	"image/color"
)

// Common errors for buffer operations.
var (
	// ErrInvalidDimensions is returned when width or height is non-positive.
	ErrInvalidDimensions = errors.New("glitch: invalid dimensions")

	// ErrInvalidFormat is returned when the format is not recognized.
	ErrInvalidFormat = errors.New("glitch: invalid format")

	// ErrOutOfBounds is returned when pixel coordinates are outside buffer bounds.
	ErrOutOfBounds = errors.New("glitch: coordinates out of bounds")

	// ErrMissingPalette is returned when a paletted buffer has no palette.
	ErrMissingPalette = errors.New("glitch: paletted buffer without palette")
)

// Buffer is an addressable 2D pixel grid with a channel-layout format.
//
// Pixel data is stored in a contiguous byte slice, row-major with stride.
// Several effects mutate a buffer in place through the row and region
// helpers; others replace it wholesale. Buffers are not safe for concurrent
// mutation; each pipeline owns the buffer it operates on.
type Buffer struct {
	data    []byte
	width   int
	height  int
	stride  int
	format  Format
	palette color.Palette // non-nil only for FormatPaletted8
}

// NewBuffer creates a new buffer with the given dimensions and format.
// Returns an error if dimensions are invalid or the format is unknown.
func NewBuffer(width, height int, format Format) (*Buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}
	if !format.IsValid() {
		return nil, ErrInvalidFormat
	}

	stride := format.RowBytes(width)
	return &Buffer{
		data:   make([]byte, stride*height),
		width:  width,
		height: height,
		stride: stride,
		format: format,
	}, nil
}

// Clone creates a deep copy of the buffer, including any palette.
func (b *Buffer) Clone() *Buffer {
	newData := make([]byte, len(b.data))
	copy(newData, b.data)

	return &Buffer{
		data:    newData,
		width:   b.width,
		height:  b.height,
		stride:  b.stride,
		format:  b.format,
		palette: clonePalette(b.palette),
	}
}

// clonePalette copies a palette, returning nil for nil input.
func clonePalette(p color.Palette) color.Palette {
	if p == nil {
		return nil
	}
	out := make(color.Palette, len(p))
	copy(out, p)
	return out
}

// Width returns the buffer width in pixels.
func (b *Buffer) Width() int {
	return b.width
}

// Height returns the buffer height in pixels.
func (b *Buffer) Height() int {
	return b.height
}

// Stride returns the number of bytes per row.
func (b *Buffer) Stride() int {
	return b.stride
}

// Format returns the pixel format.
func (b *Buffer) Format() Format {
	return b.format
}

// Palette returns the palette for paletted buffers, or nil.
func (b *Buffer) Palette() color.Palette {
	return b.palette
}

// Bounds returns the buffer dimensions as (width, height).
func (b *Buffer) Bounds() (int, int) {
	return b.width, b.height
}

// Data returns the raw pixel data slice.
func (b *Buffer) Data() []byte {
	return b.data
}

// Row returns a slice of the pixel data for row y.
// Returns nil if y is out of bounds.
func (b *Buffer) Row(y int) []byte {
	if y < 0 || y >= b.height {
		return nil
	}
	start := y * b.stride
	return b.data[start : start+b.format.RowBytes(b.width)]
}

// PixelOffset returns the byte offset of pixel (x, y) in the data slice.
// Returns -1 if coordinates are out of bounds.
func (b *Buffer) PixelOffset(x, y int) int {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return -1
	}
	return y*b.stride + x*b.format.BytesPerPixel()
}

// GetRGBA returns the color at (x, y) as (r, g, b, a) in 0-255 range.
// For grayscale formats r=g=b=gray and a=255; for formats without alpha
// a=255. Returns (0,0,0,0) if coordinates are out of bounds.
func (b *Buffer) GetRGBA(x, y int) (r, g, bl, a uint8) {
	offset := b.PixelOffset(x, y)
	if offset < 0 {
		return 0, 0, 0, 0
	}

	switch b.format {
	case FormatGray8:
		v := b.data[offset]
		return v, v, v, 255
	case FormatRGB8:
		return b.data[offset], b.data[offset+1], b.data[offset+2], 255
	case FormatRGBA8:
		return b.data[offset], b.data[offset+1], b.data[offset+2], b.data[offset+3]
	case FormatPaletted8:
		if int(b.data[offset]) >= len(b.palette) {
			return 0, 0, 0, 0
		}
		cr, cg, cb, ca := b.palette[b.data[offset]].RGBA()
		return uint8(cr >> 8), uint8(cg >> 8), uint8(cb >> 8), uint8(ca >> 8)
	default:
		return 0, 0, 0, 0
	}
}

// SetRGBA sets the color at (x, y) from (r, g, b, a) in 0-255 range.
// Grayscale formats store the luma of the color; paletted formats store
// the index of the nearest palette entry.
// Returns ErrOutOfBounds if coordinates are outside buffer bounds.
func (b *Buffer) SetRGBA(x, y int, r, g, bl, a uint8) error {
	offset := b.PixelOffset(x, y)
	if offset < 0 {
		return ErrOutOfBounds
	}

	switch b.format {
	case FormatGray8:
		b.data[offset] = Luma(r, g, bl)
	case FormatRGB8:
		b.data[offset] = r
		b.data[offset+1] = g
		b.data[offset+2] = bl
	case FormatRGBA8:
		b.data[offset] = r
		b.data[offset+1] = g
		b.data[offset+2] = bl
		b.data[offset+3] = a
	case FormatPaletted8:
		if len(b.palette) == 0 {
			return ErrMissingPalette
		}
		b.data[offset] = uint8(b.palette.Index(color.NRGBA{R: r, G: g, B: bl, A: a}))
	}

	return nil
}

// Fill sets every pixel to the given color.
func (b *Buffer) Fill(r, g, bl, a uint8) {
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			_ = b.SetRGBA(x, y, r, g, bl, a)
		}
	}
}

// Luma returns the perceptual brightness of an RGB color using the
// Rec. 709 weights 0.2126 R + 0.7152 G + 0.0722 B, truncated.
func Luma(r, g, b uint8) uint8 {
	return uint8(0.2126*float64(r) + 0.7152*float64(g) + 0.0722*float64(b))
}

// MedianLuminance returns the median luma over all pixels.
// The progressive generator uses it to scale pixel-sort thresholds.
func (b *Buffer) MedianLuminance() uint8 {
	var hist [256]int
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			r, g, bl, _ := b.GetRGBA(x, y)
			hist[Luma(r, g, bl)]++
		}
	}

	half := b.width * b.height / 2
	seen := 0
	for v, n := range hist {
		seen += n
		if seen > half {
			return uint8(v)
		}
	}
	return 255
}

// FromImage creates a buffer from a decoded image. Grayscale and paletted
// images keep their layout; everything else lands in RGBA8.
func FromImage(img image.Image) *Buffer {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	switch src := img.(type) {
	case *image.Gray:
		b, _ := NewBuffer(width, height, FormatGray8)
		for y := 0; y < height; y++ {
			copy(b.Row(y), src.Pix[y*src.Stride:y*src.Stride+width])
		}
		return b
	case *image.Paletted:
		b, _ := NewBuffer(width, height, FormatPaletted8)
		b.palette = make(color.Palette, len(src.Palette))
		copy(b.palette, src.Palette)
		for y := 0; y < height; y++ {
			copy(b.Row(y), src.Pix[y*src.Stride:y*src.Stride+width])
		}
		return b
	}

	b, _ := NewBuffer(width, height, FormatRGBA8)
	for y := 0; y < height; y++ {
		row := b.Row(y)
		for x := 0; x < width; x++ {
			c := color.NRGBAModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			i := x * 4
			row[i+0] = c.R
			row[i+1] = c.G
			row[i+2] = c.B
			row[i+3] = c.A
		}
	}
	return b
}

// ToImage converts the buffer to a stdlib image for encoding.
func (b *Buffer) ToImage() image.Image {
	switch b.format {
	case FormatGray8:
		img := image.NewGray(image.Rect(0, 0, b.width, b.height))
		for y := 0; y < b.height; y++ {
			copy(img.Pix[y*img.Stride:y*img.Stride+b.width], b.Row(y))
		}
		return img
	case FormatPaletted8:
		img := image.NewPaletted(image.Rect(0, 0, b.width, b.height), b.palette)
		for y := 0; y < b.height; y++ {
			copy(img.Pix[y*img.Stride:y*img.Stride+b.width], b.Row(y))
		}
		return img
	default:
		img := image.NewNRGBA(image.Rect(0, 0, b.width, b.height))
		for y := 0; y < b.height; y++ {
			for x := 0; x < b.width; x++ {
				r, g, bl, a := b.GetRGBA(x, y)
				i := y*img.Stride + x*4
				img.Pix[i+0] = r
				img.Pix[i+1] = g
				img.Pix[i+2] = bl
				img.Pix[i+3] = a
			}
		}
		return img
	}
}
