package glitch

import "math"

// StaticPipeline returns the transform list used for still images.
func StaticPipeline() Pipeline {
	return Pipeline{
		{OpConvert, ConvertParams{Format: FormatRGB8}},
		{OpPixelSort, PixelSortParams{Mask: Mask{Kind: MaskDarkerThan, Threshold: 100}}},
		{OpSplitColorChannels, SplitColorChannelsParams{Offset: 1}},
		{OpAddNoiseBands, AddNoiseBandsParams{Count: 4, Thickness: 10}},
		{OpSinWaveDistortion, SinWaveDistortionParams{Mag: 3, Freq: 1}},
		{OpWalkDistortion, WalkDistortionParams{MaxStep: 1}},
		{OpShiftCorruption, ShiftCorruptionParams{OffsetMag: 2, Coverage: 0.25}},
		{OpLowResBlocks, LowResBlocksParams{Rows: 15, Cols: 15, Cells: 4, Factor: 2}},
		{OpSharpen, SharpenParams{Factor: 2.0}},
		{OpAddTransparentPixel, NoParams{}},
	}
}

// AnimationPipeline returns the transform list for one animation frame.
//
// It is a pure function of (progress, medianLum): independent frames can be
// generated in any order or in parallel. Visual continuity across the loop
// boundary comes from a cosine-eased progress value (distortion intensity
// returns to zero as progress approaches 1) and a sine phase of
// -2*pi*progress, which completes exactly one wave cycle per loop.
//
// The pipeline converts to RGB up front and reduces to an adaptive palette
// at the end, so frames come out ready for multi-frame encoding.
func AnimationPipeline(progress float64, medianLum uint8) Pipeline {
	eased := -math.Cos(2*math.Pi*progress)/2 + 0.5

	lumLimit := float64(medianLum) + 0.5*float64(medianLum)
	if lumLimit > 255 {
		lumLimit = 255
	}

	return Pipeline{
		{OpConvert, ConvertParams{Format: FormatRGB8}},
		{OpPixelSort, PixelSortParams{
			Mask:    Mask{Kind: MaskDarkerThan, Threshold: lumLimit * eased},
			Reverse: true,
		}},
		{OpSinWaveDistortion, SinWaveDistortionParams{Mag: 5, Freq: 1, Phase: -2 * math.Pi * progress}},
		{OpAddNoiseBands, AddNoiseBandsParams{Count: int(10 * eased), Thickness: 10}},
		{OpLowResBlocks, LowResBlocksParams{Rows: 10, Cols: 10, Cells: int(10 * progress), Factor: 4}},
		{OpPosterize, PosterizeParams{Bits: int(5*(1-eased) + 3)}},
		{OpSplitColorChannels, SplitColorChannelsParams{Offset: int(5 * eased)}},
		{OpConvert, ConvertParams{Format: FormatPaletted8}},
	}
}
