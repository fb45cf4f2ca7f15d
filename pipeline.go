package glitch

import (
	"fmt"
	"math/rand"
	"time"
)

// Op identifies one transform in a pipeline.
type Op uint8

const (
	OpDesample Op = iota
	OpUpscale
	OpCrop
	OpConvert
	OpSplitColorChannels
	OpSharpen
	OpShiftCorruption
	OpWalkDistortion
	OpSinWaveDistortion
	OpSwapCells
	OpAddNoiseCells
	OpAddNoiseBands
	OpAddTransparentPixel
	OpPixelSort
	OpLowResBlocks
	OpPosterize

	opCount
)

// String returns the operation name.
func (op Op) String() string {
	names := [opCount]string{
		"Desample", "Upscale", "Crop", "Convert", "SplitColorChannels",
		"Sharpen", "ShiftCorruption", "WalkDistortion", "SinWaveDistortion",
		"SwapCells", "AddNoiseCells", "AddNoiseBands", "AddTransparentPixel",
		"PixelSort", "LowResBlocks", "Posterize",
	}
	if op >= opCount {
		return "Unknown"
	}
	return names[op]
}

// Params is the parameter set for one pipeline step. Each operation has a
// dedicated parameter struct; Validate reports parameter errors eagerly,
// before any pixel work starts.
type Params interface {
	Validate() error
}

// Parameter structs, one per operation. Operations without parameters use
// NoParams.

type NoParams struct{}

func (NoParams) Validate() error { return nil }

type DesampleParams struct {
	Factor float64
}

func (p DesampleParams) Validate() error {
	if p.Factor <= 0 {
		return fmt.Errorf("%w: scale factor %v", ErrBadParam, p.Factor)
	}
	return nil
}

type UpscaleParams struct {
	Factor float64
}

func (p UpscaleParams) Validate() error {
	if p.Factor <= 0 {
		return fmt.Errorf("%w: scale factor %v", ErrBadParam, p.Factor)
	}
	return nil
}

type CropParams struct {
	Left, Top, Right, Bottom int
}

func (p CropParams) Validate() error {
	if p.Right <= p.Left || p.Bottom <= p.Top {
		return fmt.Errorf("%w: empty crop box (%d,%d,%d,%d)", ErrBadParam, p.Left, p.Top, p.Right, p.Bottom)
	}
	return nil
}

type ConvertParams struct {
	Format Format
}

func (p ConvertParams) Validate() error {
	if !p.Format.IsValid() {
		return fmt.Errorf("%w: format %d", ErrBadParam, p.Format)
	}
	return nil
}

type SplitColorChannelsParams struct {
	Offset int
}

func (SplitColorChannelsParams) Validate() error { return nil }

type SharpenParams struct {
	Factor float64
}

func (p SharpenParams) Validate() error {
	if p.Factor < 0 {
		return fmt.Errorf("%w: sharpen factor %v", ErrBadParam, p.Factor)
	}
	return nil
}

type ShiftCorruptionParams struct {
	OffsetMag int
	Coverage  float64
}

func (p ShiftCorruptionParams) Validate() error {
	if p.OffsetMag < 0 {
		return fmt.Errorf("%w: shift magnitude %d", ErrBadParam, p.OffsetMag)
	}
	if p.Coverage < 0 || p.Coverage > 1 {
		return fmt.Errorf("%w: coverage %v outside [0,1]", ErrBadParam, p.Coverage)
	}
	return nil
}

type WalkDistortionParams struct {
	MaxStep int
}

func (p WalkDistortionParams) Validate() error {
	if p.MaxStep < 0 {
		return fmt.Errorf("%w: walk step %d", ErrBadParam, p.MaxStep)
	}
	return nil
}

type SinWaveDistortionParams struct {
	Mag, Freq, Phase float64
}

func (SinWaveDistortionParams) Validate() error { return nil }

type SwapCellsParams struct {
	Rows, Cols, Swaps int
}

func (p SwapCellsParams) Validate() error {
	if p.Rows <= 0 || p.Cols <= 0 {
		return fmt.Errorf("%w: grid %dx%d", ErrBadParam, p.Rows, p.Cols)
	}
	if p.Swaps < 0 {
		return fmt.Errorf("%w: swap count %d", ErrBadParam, p.Swaps)
	}
	return nil
}

type AddNoiseCellsParams struct {
	Rows, Cols, Cells int
}

func (p AddNoiseCellsParams) Validate() error {
	if p.Rows <= 0 || p.Cols <= 0 {
		return fmt.Errorf("%w: grid %dx%d", ErrBadParam, p.Rows, p.Cols)
	}
	if p.Cells < 0 {
		return fmt.Errorf("%w: cell count %d", ErrBadParam, p.Cells)
	}
	return nil
}

type AddNoiseBandsParams struct {
	Count, Thickness int
}

func (p AddNoiseBandsParams) Validate() error {
	if p.Count < 0 {
		return fmt.Errorf("%w: band count %d", ErrBadParam, p.Count)
	}
	if p.Thickness < 1 {
		return fmt.Errorf("%w: band thickness %d", ErrBadParam, p.Thickness)
	}
	return nil
}

type PixelSortParams struct {
	Mask    Mask
	Reverse bool
}

func (p PixelSortParams) Validate() error {
	if p.Mask.Kind > MaskLighterThan {
		return fmt.Errorf("%w: mask kind %d", ErrBadParam, p.Mask.Kind)
	}
	return nil
}

type LowResBlocksParams struct {
	Rows, Cols, Cells int
	Factor            float64
}

func (p LowResBlocksParams) Validate() error {
	if p.Rows <= 0 || p.Cols <= 0 {
		return fmt.Errorf("%w: grid %dx%d", ErrBadParam, p.Rows, p.Cols)
	}
	if p.Cells < 0 {
		return fmt.Errorf("%w: cell count %d", ErrBadParam, p.Cells)
	}
	if p.Factor <= 0 {
		return fmt.Errorf("%w: scale factor %v", ErrBadParam, p.Factor)
	}
	return nil
}

type PosterizeParams struct {
	Bits int
}

func (p PosterizeParams) Validate() error {
	if p.Bits < 1 || p.Bits > 8 {
		return fmt.Errorf("%w: posterize bits %d", ErrBadParam, p.Bits)
	}
	return nil
}

// Step is one (operation, parameters) pair of a pipeline. Order is
// significant and fixed once a pipeline is built.
type Step struct {
	Op     Op
	Params Params
}

// Validate checks that the parameters are present, of the type the
// operation expects, and internally consistent.
func (s Step) Validate() error {
	if s.Params == nil {
		return fmt.Errorf("%w: %s: nil params", ErrBadParam, s.Op)
	}

	ok := false
	switch s.Op {
	case OpDesample:
		_, ok = s.Params.(DesampleParams)
	case OpUpscale:
		_, ok = s.Params.(UpscaleParams)
	case OpCrop:
		_, ok = s.Params.(CropParams)
	case OpConvert:
		_, ok = s.Params.(ConvertParams)
	case OpSplitColorChannels:
		_, ok = s.Params.(SplitColorChannelsParams)
	case OpSharpen:
		_, ok = s.Params.(SharpenParams)
	case OpShiftCorruption:
		_, ok = s.Params.(ShiftCorruptionParams)
	case OpWalkDistortion:
		_, ok = s.Params.(WalkDistortionParams)
	case OpSinWaveDistortion:
		_, ok = s.Params.(SinWaveDistortionParams)
	case OpSwapCells:
		_, ok = s.Params.(SwapCellsParams)
	case OpAddNoiseCells:
		_, ok = s.Params.(AddNoiseCellsParams)
	case OpAddNoiseBands:
		_, ok = s.Params.(AddNoiseBandsParams)
	case OpAddTransparentPixel:
		_, ok = s.Params.(NoParams)
	case OpPixelSort:
		_, ok = s.Params.(PixelSortParams)
	case OpLowResBlocks:
		_, ok = s.Params.(LowResBlocksParams)
	case OpPosterize:
		_, ok = s.Params.(PosterizeParams)
	default:
		return fmt.Errorf("%w: unknown op %d", ErrBadParam, s.Op)
	}
	if !ok {
		return fmt.Errorf("%w: %s: params have type %T", ErrBadParam, s.Op, s.Params)
	}
	return s.Params.Validate()
}

// Pipeline is an ordered transform list. A pipeline is immutable during
// execution; the same pipeline may be re-run against any buffer.
type Pipeline []Step

// Apply validates every step eagerly, then left-folds the pipeline over
// the buffer, feeding each step's output into the next step's input. A
// step may change the buffer's format or dimensions; later steps see the
// new shape. Execution is fail-fast: the first error aborts the rest of
// the pipeline with no partial output.
//
// Stochastic steps draw from rng; passing a seeded source makes the whole
// pipeline reproducible. A nil rng falls back to a time-seeded source.
func Apply(b *Buffer, pipeline Pipeline, rng *rand.Rand) (*Buffer, error) {
	for i, s := range pipeline {
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("glitch: step %d: %w", i, err)
		}
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	cur := b
	log := Logger()
	for i, s := range pipeline {
		log.Debug("applying transform", "step", i, "op", s.Op.String(),
			"width", cur.Width(), "height", cur.Height(), "format", cur.Format().String())

		next, err := s.apply(cur, rng)
		if err != nil {
			return nil, fmt.Errorf("glitch: step %d (%s): %w", i, s.Op, err)
		}
		cur = next
	}
	return cur, nil
}

// apply dispatches one validated step by its operation tag. Validate has
// already established that the parameter type matches the tag.
func (s Step) apply(b *Buffer, rng *rand.Rand) (*Buffer, error) {
	switch s.Op {
	case OpDesample:
		p := s.Params.(DesampleParams)
		return Desample(b, p.Factor)
	case OpUpscale:
		p := s.Params.(UpscaleParams)
		return Upscale(b, p.Factor)
	case OpCrop:
		p := s.Params.(CropParams)
		return Crop(b, p.Left, p.Top, p.Right, p.Bottom)
	case OpConvert:
		p := s.Params.(ConvertParams)
		return Convert(b, p.Format)
	case OpSplitColorChannels:
		p := s.Params.(SplitColorChannelsParams)
		return SplitColorChannels(b, p.Offset)
	case OpSharpen:
		p := s.Params.(SharpenParams)
		return Sharpen(b, p.Factor)
	case OpShiftCorruption:
		p := s.Params.(ShiftCorruptionParams)
		return ShiftCorruption(b, rng, p.OffsetMag, p.Coverage)
	case OpWalkDistortion:
		p := s.Params.(WalkDistortionParams)
		return WalkDistortion(b, rng, p.MaxStep)
	case OpSinWaveDistortion:
		p := s.Params.(SinWaveDistortionParams)
		return SinWaveDistortion(b, p.Mag, p.Freq, p.Phase)
	case OpSwapCells:
		p := s.Params.(SwapCellsParams)
		return SwapCells(b, rng, p.Rows, p.Cols, p.Swaps)
	case OpAddNoiseCells:
		p := s.Params.(AddNoiseCellsParams)
		return AddNoiseCells(b, rng, p.Rows, p.Cols, p.Cells)
	case OpAddNoiseBands:
		p := s.Params.(AddNoiseBandsParams)
		return AddNoiseBands(b, rng, p.Count, p.Thickness)
	case OpAddTransparentPixel:
		return AddTransparentPixel(b)
	case OpPixelSort:
		p := s.Params.(PixelSortParams)
		return PixelSort(b, p.Mask, p.Reverse)
	case OpLowResBlocks:
		p := s.Params.(LowResBlocksParams)
		return LowResBlocks(b, rng, p.Rows, p.Cols, p.Cells, p.Factor)
	case OpPosterize:
		p := s.Params.(PosterizeParams)
		return Posterize(b, p.Bits)
	default:
		return nil, fmt.Errorf("%w: unknown op %d", ErrBadParam, s.Op)
	}
}
