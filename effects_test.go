package glitch

import (
	"bytes"
	"errors"
	"math/rand"
	"testing"
)

func TestDesampleUpscaleDimensions(t *testing.T) {
	buf := gradientBuffer(t, 24, 15, FormatRGB8)

	down, err := Desample(buf, 3)
	if err != nil {
		t.Fatalf("Desample error: %v", err)
	}
	if w, h := down.Bounds(); w != 8 || h != 5 {
		t.Errorf("Desample(3) bounds = %dx%d, want 8x5", w, h)
	}

	up, err := Upscale(down, 3)
	if err != nil {
		t.Fatalf("Upscale error: %v", err)
	}
	if w, h := up.Bounds(); w != 24 || h != 15 {
		t.Errorf("Upscale(3) bounds = %dx%d, want 24x15", w, h)
	}

	if _, err := Desample(buf, 0); !errors.Is(err, ErrBadParam) {
		t.Errorf("Desample(0) error = %v, want %v", err, ErrBadParam)
	}
	if _, err := Desample(buf, 100); !errors.Is(err, ErrBadParam) {
		t.Errorf("Desample collapsing the image should fail, got %v", err)
	}
}

// TestSinWaveZeroMagIsIdentity checks that a zero-magnitude sine wave is
// pixel-identical to its input.
func TestSinWaveZeroMagIsIdentity(t *testing.T) {
	buf := gradientBuffer(t, 9, 7, FormatRGB8)
	out, err := SinWaveDistortion(buf, 0, 1, 0)
	if err != nil {
		t.Fatalf("SinWaveDistortion error: %v", err)
	}
	if !bytes.Equal(out.Data(), buf.Data()) {
		t.Error("sin wave with mag=0 modified the buffer")
	}
}

// TestShiftCorruptionZeroCoverageIsIdentity checks that zero coverage
// returns the input unchanged.
func TestShiftCorruptionZeroCoverageIsIdentity(t *testing.T) {
	buf := gradientBuffer(t, 9, 7, FormatRGB8)
	out, err := ShiftCorruption(buf, rand.New(rand.NewSource(1)), 5, 0)
	if err != nil {
		t.Fatalf("ShiftCorruption error: %v", err)
	}
	if !bytes.Equal(out.Data(), buf.Data()) {
		t.Error("shift corruption with coverage=0 modified the buffer")
	}
}

func TestShiftCorruptionShiftsOnlyRows(t *testing.T) {
	buf := gradientBuffer(t, 8, 8, FormatRGB8)
	out, err := ShiftCorruption(buf, rand.New(rand.NewSource(7)), 3, 1)
	if err != nil {
		t.Fatalf("ShiftCorruption error: %v", err)
	}

	// Every output row must be a cyclic rotation of the corresponding
	// input row: some offset restores it exactly.
	for y := 0; y < 8; y++ {
		restored := false
		for o := 0; o < 8; o++ {
			work := out.Clone()
			work.ShiftRowWrap(y, o)
			if bytes.Equal(work.Row(y), buf.Row(y)) {
				restored = true
				break
			}
		}
		if !restored {
			t.Errorf("row %d is not a cyclic rotation of the input row", y)
		}
	}
}

func TestWalkDistortionIsCyclicPerRow(t *testing.T) {
	buf := gradientBuffer(t, 6, 10, FormatRGB8)
	out, err := WalkDistortion(buf, rand.New(rand.NewSource(3)), 2)
	if err != nil {
		t.Fatalf("WalkDistortion error: %v", err)
	}
	for y := 0; y < 10; y++ {
		restored := false
		for o := 0; o < 6; o++ {
			work := out.Clone()
			work.ShiftRowWrap(y, o)
			if bytes.Equal(work.Row(y), buf.Row(y)) {
				restored = true
				break
			}
		}
		if !restored {
			t.Errorf("row %d is not a cyclic rotation of the input row", y)
		}
	}
}

func TestWalkDistortionDeterministicWithSeed(t *testing.T) {
	buf := gradientBuffer(t, 6, 10, FormatRGB8)
	a, err := WalkDistortion(buf, rand.New(rand.NewSource(11)), 2)
	if err != nil {
		t.Fatalf("WalkDistortion error: %v", err)
	}
	b, err := WalkDistortion(buf, rand.New(rand.NewSource(11)), 2)
	if err != nil {
		t.Fatalf("WalkDistortion error: %v", err)
	}
	if !bytes.Equal(a.Data(), b.Data()) {
		t.Error("same seed produced different walk distortion")
	}
}

// TestGridPartition verifies the grid partition invariant: rows*cols boxes
// of size (W/cols, H/rows), none covering remainder pixels.
func TestGridPartition(t *testing.T) {
	tests := []struct {
		name                 string
		w, h, rows, cols     int
		wantCellW, wantCellH int
	}{
		{"exact fit", 10, 10, 2, 5, 2, 5},
		{"with remainder", 11, 7, 3, 4, 2, 2},
		{"single cell", 8, 8, 1, 1, 8, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := gradientBuffer(t, tt.w, tt.h, FormatRGB8)
			boxes, err := gridBoxes(buf, tt.rows, tt.cols)
			if err != nil {
				t.Fatalf("gridBoxes error: %v", err)
			}
			if len(boxes) != tt.rows*tt.cols {
				t.Fatalf("got %d boxes, want %d", len(boxes), tt.rows*tt.cols)
			}
			for i, box := range boxes {
				if box.right-box.left != tt.wantCellW || box.bottom-box.top != tt.wantCellH {
					t.Errorf("box %d size = %dx%d, want %dx%d",
						i, box.right-box.left, box.bottom-box.top, tt.wantCellW, tt.wantCellH)
				}
				if box.right > tt.cols*tt.wantCellW || box.bottom > tt.rows*tt.wantCellH {
					t.Errorf("box %d = %+v extends into remainder pixels", i, box)
				}
			}
		})
	}
}

func TestGridPartitionZeroAreaCells(t *testing.T) {
	buf := gradientBuffer(t, 4, 4, FormatRGB8)
	if _, err := gridBoxes(buf, 5, 2); !errors.Is(err, ErrBadParam) {
		t.Errorf("zero-height cells error = %v, want %v", err, ErrBadParam)
	}
}

// TestSwapCellsTwiceIsIdentity replays the same sampled boxes: a swap is
// its own inverse absent intervening mutation.
func TestSwapCellsTwiceIsIdentity(t *testing.T) {
	buf := gradientBuffer(t, 8, 8, FormatRGB8)

	once, err := SwapCells(buf, rand.New(rand.NewSource(42)), 2, 2, 1)
	if err != nil {
		t.Fatalf("SwapCells error: %v", err)
	}
	twice, err := SwapCells(once, rand.New(rand.NewSource(42)), 2, 2, 1)
	if err != nil {
		t.Fatalf("SwapCells error: %v", err)
	}
	if !bytes.Equal(twice.Data(), buf.Data()) {
		t.Error("swapping the same cells twice did not restore the original")
	}
}

func TestSwapCellsPreservesPixelMultiset(t *testing.T) {
	buf := gradientBuffer(t, 8, 8, FormatRGB8)
	out, err := SwapCells(buf, rand.New(rand.NewSource(5)), 4, 4, 3)
	if err != nil {
		t.Fatalf("SwapCells error: %v", err)
	}

	count := func(b *Buffer) map[[3]uint8]int {
		m := make(map[[3]uint8]int)
		for y := 0; y < 8; y++ {
			for x := 0; x < 8; x++ {
				r, g, bl, _ := b.GetRGBA(x, y)
				m[[3]uint8{r, g, bl}]++
			}
		}
		return m
	}
	before, after := count(buf), count(out)
	for k, n := range before {
		if after[k] != n {
			t.Fatalf("pixel %v count changed: %d -> %d", k, n, after[k])
		}
	}
}

// TestAddTransparentPixel covers the convert + transparent pixel scenario:
// a solid RGB buffer gains alpha 255 everywhere except (0,0), which gets 254.
func TestAddTransparentPixel(t *testing.T) {
	gray := solidBuffer(t, 10, 10, FormatRGB8, 128, 128, 128, 255)
	converted, err := Convert(gray, FormatRGB8)
	if err != nil {
		t.Fatalf("Convert error: %v", err)
	}
	out, err := AddTransparentPixel(converted)
	if err != nil {
		t.Fatalf("AddTransparentPixel error: %v", err)
	}

	if out.Format() != FormatRGBA8 {
		t.Fatalf("format = %s, want RGBA8", out.Format())
	}
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			_, _, _, a := out.GetRGBA(x, y)
			want := uint8(255)
			if x == 0 && y == 0 {
				want = 254
			}
			if a != want {
				t.Errorf("alpha at (%d,%d) = %d, want %d", x, y, a, want)
			}
		}
	}
}

func TestSplitColorChannels(t *testing.T) {
	// One white pixel on black: red moves right, blue moves left, green stays.
	buf := solidBuffer(t, 5, 1, FormatRGB8, 0, 0, 0, 255)
	if err := buf.SetRGBA(2, 0, 255, 255, 255, 255); err != nil {
		t.Fatalf("SetRGBA error: %v", err)
	}

	out, err := SplitColorChannels(buf, 1)
	if err != nil {
		t.Fatalf("SplitColorChannels error: %v", err)
	}

	if r, _, _, _ := out.GetRGBA(3, 0); r != 255 {
		t.Errorf("red at x=3 is %d, want 255", r)
	}
	if _, g, _, _ := out.GetRGBA(2, 0); g != 255 {
		t.Errorf("green at x=2 is %d, want 255", g)
	}
	if _, _, b, _ := out.GetRGBA(1, 0); b != 255 {
		t.Errorf("blue at x=1 is %d, want 255", b)
	}
	if r, g, b, _ := out.GetRGBA(0, 0); r != 0 || g != 0 || b != 0 {
		t.Errorf("pixel (0,0) = (%d,%d,%d), want black", r, g, b)
	}

	grayBuf := solidBuffer(t, 4, 4, FormatGray8, 10, 10, 10, 255)
	if _, err := SplitColorChannels(grayBuf, 1); !errors.Is(err, ErrBadParam) {
		t.Errorf("grayscale split error = %v, want %v", err, ErrBadParam)
	}
}

func TestSplitColorChannelsWrapsAround(t *testing.T) {
	buf := solidBuffer(t, 3, 1, FormatRGB8, 0, 0, 0, 255)
	if err := buf.SetRGBA(2, 0, 255, 0, 0, 255); err != nil {
		t.Fatalf("SetRGBA error: %v", err)
	}
	out, err := SplitColorChannels(buf, 1)
	if err != nil {
		t.Fatalf("SplitColorChannels error: %v", err)
	}
	if r, _, _, _ := out.GetRGBA(0, 0); r != 255 {
		t.Errorf("red channel did not wrap: r(0,0) = %d, want 255", r)
	}
}

func TestAddNoiseBandsNeverDarkens(t *testing.T) {
	buf := solidBuffer(t, 12, 12, FormatRGB8, 40, 40, 40, 255)
	out, err := AddNoiseBands(buf, rand.New(rand.NewSource(2)), 4, 5)
	if err != nil {
		t.Fatalf("AddNoiseBands error: %v", err)
	}
	if out.Format() != FormatRGB8 {
		t.Fatalf("format = %s, want the input's RGB8", out.Format())
	}
	for y := 0; y < 12; y++ {
		for x := 0; x < 12; x++ {
			r, g, b, _ := out.GetRGBA(x, y)
			if r < 40 || g < 40 || b < 40 {
				t.Fatalf("noise darkened pixel (%d,%d): (%d,%d,%d)", x, y, r, g, b)
			}
		}
	}
}

func TestAddNoiseCellsOnlyTouchesSampledCells(t *testing.T) {
	buf := solidBuffer(t, 8, 8, FormatRGB8, 40, 40, 40, 255)
	out, err := AddNoiseCells(buf, rand.New(rand.NewSource(9)), 2, 2, 1)
	if err != nil {
		t.Fatalf("AddNoiseCells error: %v", err)
	}

	changed := 0
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			r, g, b, _ := out.GetRGBA(x, y)
			if r != 40 || g != 40 || b != 40 {
				changed++
			}
			if r < 40 || g < 40 || b < 40 {
				t.Fatalf("lighten blend darkened pixel (%d,%d)", x, y)
			}
		}
	}
	// At most one 4x4 cell may differ.
	if changed > 16 {
		t.Errorf("%d pixels changed, want at most 16 (one cell)", changed)
	}
}

func TestLowResBlocksKeepsDimensions(t *testing.T) {
	buf := gradientBuffer(t, 16, 16, FormatRGB8)
	out, err := LowResBlocks(buf, rand.New(rand.NewSource(4)), 4, 4, 2, 2)
	if err != nil {
		t.Fatalf("LowResBlocks error: %v", err)
	}
	if w, h := out.Bounds(); w != 16 || h != 16 {
		t.Errorf("bounds = %dx%d, want 16x16", w, h)
	}
}

func TestPosterize(t *testing.T) {
	buf := solidBuffer(t, 2, 2, FormatRGBA8, 0b10110111, 0b01011111, 0b11111111, 200)
	out, err := Posterize(buf, 2)
	if err != nil {
		t.Fatalf("Posterize error: %v", err)
	}
	r, g, b, a := out.GetRGBA(0, 0)
	if r != 0b10000000 || g != 0b01000000 || b != 0b11000000 {
		t.Errorf("Posterize(2) = (%08b, %08b, %08b)", r, g, b)
	}
	if a != 200 {
		t.Errorf("posterize touched alpha: %d, want 200", a)
	}

	if _, err := Posterize(buf, 0); !errors.Is(err, ErrBadParam) {
		t.Errorf("Posterize(0) error = %v, want %v", err, ErrBadParam)
	}
	if _, err := Posterize(buf, 9); !errors.Is(err, ErrBadParam) {
		t.Errorf("Posterize(9) error = %v, want %v", err, ErrBadParam)
	}
}

func TestSharpenIdentityFactor(t *testing.T) {
	buf := gradientBuffer(t, 8, 8, FormatRGBA8)
	out, err := Sharpen(buf, 1.0)
	if err != nil {
		t.Fatalf("Sharpen error: %v", err)
	}
	if !bytes.Equal(out.Data(), buf.Data()) {
		t.Error("sharpen factor 1.0 modified the buffer")
	}
}

func TestConvertRGBToRGBA(t *testing.T) {
	buf := solidBuffer(t, 3, 3, FormatRGB8, 10, 20, 30, 255)
	out, err := Convert(buf, FormatRGBA8)
	if err != nil {
		t.Fatalf("Convert error: %v", err)
	}
	r, g, b, a := out.GetRGBA(1, 1)
	if r != 10 || g != 20 || b != 30 || a != 255 {
		t.Errorf("converted pixel = (%d,%d,%d,%d), want (10,20,30,255)", r, g, b, a)
	}
}

func TestConvertPalettedReduces(t *testing.T) {
	buf := gradientBuffer(t, 8, 8, FormatRGB8)
	out, err := Convert(buf, FormatPaletted8)
	if err != nil {
		t.Fatalf("Convert error: %v", err)
	}
	if out.Format() != FormatPaletted8 {
		t.Fatalf("format = %s, want Paletted8", out.Format())
	}
	if len(out.Palette()) == 0 || len(out.Palette()) > 256 {
		t.Errorf("palette size = %d, want 1..256", len(out.Palette()))
	}
}
