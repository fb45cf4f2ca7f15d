// Package glitch applies deterministic sequences of pixel-level distortion
// effects to raster images, producing either a single glitched still or a
// looping animation whose distortion evolves smoothly over the loop.
//
// # Overview
//
// The package is built around three pieces: a library of pure image
// transforms (row-shift corruption, random-walk and sine-wave distortion,
// luminance-driven pixel sorting, grid cell swapping, noise injection), a
// pipeline executor that threads a buffer through an ordered transform
// list, and a progressive generator that derives per-frame transform lists
// from a normalized progress value.
//
// # Quick Start
//
//	import "github.com/glitchkit/glitch"
//
//	buf := glitch.FromImage(img)
//	rng := rand.New(rand.NewSource(1))
//
//	// One glitched still:
//	out, err := glitch.Apply(buf, glitch.StaticPipeline(), rng)
//
//	// A 20-frame looping animation:
//	frames, err := glitch.RenderFrames(buf, glitch.AnimationPipeline,
//	    glitch.FrameOptions{Frames: 20, Bounce: true}, rng)
//
// Pipelines are plain data: a []Step of operation tags and typed parameter
// structs. Steps are validated eagerly and execution is fail-fast.
//
// All randomness flows through an explicitly passed *rand.Rand, so a seeded
// source reproduces output exactly, including across concurrently rendered
// frames.
//
// By default the package produces no log output; call SetLogger to enable
// structured logging.
package glitch
