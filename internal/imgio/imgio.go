// Package imgio bridges glitch buffers to file codecs: decoding input
// images, scaling to and from a working resolution, and encoding still
// PNG or animated GIF output.
package imgio

import (
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/glitchkit/glitch"
	xdraw "golang.org/x/image/draw"

	// Decoders for the input formats we accept. GIF and PNG register
	// through the direct imports above.
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Errors surfaced by encoding and decoding.
var (
	// ErrNotPaletted is returned when an animation frame reaches the GIF
	// encoder without prior palette reduction. Palette reduction is the
	// transform list's job, not the encoder's.
	ErrNotPaletted = errors.New("imgio: animation frame is not palette-reduced")

	// ErrNoFrames is returned when an empty frame sequence is encoded.
	ErrNoFrames = errors.New("imgio: no frames to encode")
)

// OutputSuffix distinguishes generated files from their sources.
const OutputSuffix = "_glitch"

// Load decodes the image at path into a buffer, auto-detecting the format.
// PNG, JPEG, GIF, WebP, BMP and TIFF inputs are accepted.
func Load(path string) (*glitch.Buffer, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("imgio: open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("imgio: decode %s: %w", path, err)
	}
	glitch.Logger().Info("decoded image", "path", path, "format", format,
		"width", img.Bounds().Dx(), "height", img.Bounds().Dy())

	return glitch.FromImage(img), nil
}

// ScaleNearest rescales a buffer to (width, height) with nearest-neighbor
// sampling at the codec level. The result is always RGBA8; pipelines set
// their own working format with a convert step.
func ScaleNearest(b *glitch.Buffer, width, height int) (*glitch.Buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("imgio: scale to %dx%d: %w", width, height, glitch.ErrInvalidDimensions)
	}

	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	src := b.ToImage()
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return glitch.FromImage(dst), nil
}

// OutputPath builds the output file path for an input: the input's base
// name with the OutputSuffix appended and the given extension, placed in
// outputDir.
func OutputPath(outputDir, inputPath, ext string) string {
	base := filepath.Base(inputPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(outputDir, stem+OutputSuffix+"."+ext)
}

// SaveStill encodes a single buffer as a PNG file.
func SaveStill(path string, b *glitch.Buffer) error {
	f, err := os.Create(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return fmt.Errorf("imgio: create file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := png.Encode(f, b.ToImage()); err != nil {
		return fmt.Errorf("imgio: encode png: %w", err)
	}
	glitch.Logger().Info("wrote still", "path", path)
	return nil
}

// SaveAnimation encodes a frame sequence as a looping GIF with the given
// per-frame delay in milliseconds. Every frame must already be in
// Paletted8 format.
func SaveAnimation(path string, frames []*glitch.Buffer, delayMS int) error {
	if len(frames) == 0 {
		return ErrNoFrames
	}

	anim := &gif.GIF{
		Image:     make([]*image.Paletted, 0, len(frames)),
		Delay:     make([]int, 0, len(frames)),
		LoopCount: 0, // loop forever
	}
	for i, fr := range frames {
		pal, ok := fr.ToImage().(*image.Paletted)
		if !ok {
			return fmt.Errorf("%w: frame %d is %s", ErrNotPaletted, i, fr.Format())
		}
		anim.Image = append(anim.Image, pal)
		anim.Delay = append(anim.Delay, delayMS/10) // GIF delay is in 10ms units
	}

	f, err := os.Create(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return fmt.Errorf("imgio: create file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := gif.EncodeAll(f, anim); err != nil {
		return fmt.Errorf("imgio: encode gif: %w", err)
	}
	glitch.Logger().Info("wrote animation", "path", path, "frames", len(frames))
	return nil
}
