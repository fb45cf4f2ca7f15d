// Command glitch adds distortion effects to images, producing either a
// glitched still or a progressive glitch animation.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/glitchkit/glitch"
	"github.com/glitchkit/glitch/internal/imgio"
)

// ErrNoInput is returned when the input pattern matches no files.
var ErrNoInput = errors.New("no files matched the input pattern")

type options struct {
	lineCount int
	frames    int
	duration  int
	bounce    bool
	quiet     bool
	verbose   bool
	seed      int64
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "glitch:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "glitch",
		Short:         "Add glitch/distortion effects to images",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.verbose {
				glitch.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
					Level: slog.LevelDebug,
				})))
			}
		},
	}

	pf := root.PersistentFlags()
	pf.IntVar(&opts.lineCount, "line-count", 0,
		"vertical resolution the glitches operate at (0 = native)")
	pf.BoolVarP(&opts.quiet, "quiet", "q", false,
		"do not print progress or output paths")
	pf.BoolVar(&opts.verbose, "verbose", false,
		"enable debug logging to stderr")
	pf.Int64Var(&opts.seed, "seed", 0,
		"random seed for reproducible output (0 = time-based)")

	still := &cobra.Command{
		Use:   "still <input-glob> <output-dir>",
		Short: "Make a still glitched image",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(args[0], args[1], opts, makeStill)
		},
	}

	anim := &cobra.Command{
		Use:   "gif <input-glob> <output-dir>",
		Short: "Make a progressive glitch animation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(args[0], args[1], opts, makeAnimation)
		},
	}
	af := anim.Flags()
	af.IntVarP(&opts.frames, "frames", "f", 20, "number of frames in the animation")
	af.IntVarP(&opts.duration, "duration", "d", 100, "delay between frames in ms")
	af.BoolVarP(&opts.bounce, "bounce", "b", false,
		"play backward to the beginning before looping (doubles frame count)")

	root.AddCommand(still, anim)
	return root
}

// fileFunc transforms one input file and returns the output path.
type fileFunc func(inputPath, outputDir string, opts *options, rng *rand.Rand) (string, error)

// runBatch expands the input glob and processes each match in order,
// halting the whole batch on the first failure.
func runBatch(pattern, outputDir string, opts *options, fn fileFunc) error {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return fmt.Errorf("bad input pattern %q: %w", pattern, err)
	}
	if len(matches) == 0 {
		return fmt.Errorf("%w: %q", ErrNoInput, pattern)
	}

	seed := opts.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	var bar *progressbar.ProgressBar
	if !opts.quiet {
		bar = progressbar.NewOptions(len(matches),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("glitching"),
			progressbar.OptionClearOnFinish(),
			progressbar.OptionShowCount(),
		)
	}

	for _, inputPath := range matches {
		if bar != nil {
			bar.Describe(filepath.Base(inputPath))
		}
		outPath, err := fn(inputPath, outputDir, opts, rng)
		if err != nil {
			return fmt.Errorf("%s: %w", inputPath, err)
		}
		if bar != nil {
			_ = bar.Add(1)
		}
		if !opts.quiet {
			fmt.Println(outPath)
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}
	return nil
}

// makeStill applies the static pipeline to one file and writes a PNG.
func makeStill(inputPath, outputDir string, opts *options, rng *rand.Rand) (string, error) {
	buf, err := imgio.Load(inputPath)
	if err != nil {
		return "", err
	}

	origW, origH := buf.Bounds()
	working := buf
	if opts.lineCount > 0 && opts.lineCount != origH {
		scaledW := origW * opts.lineCount / origH
		if working, err = imgio.ScaleNearest(buf, scaledW, opts.lineCount); err != nil {
			return "", err
		}
	}

	out, err := glitch.Apply(working, glitch.StaticPipeline(), rng)
	if err != nil {
		return "", err
	}
	if out.Width() != origW || out.Height() != origH {
		if out, err = imgio.ScaleNearest(out, origW, origH); err != nil {
			return "", err
		}
	}

	outPath := imgio.OutputPath(outputDir, inputPath, "png")
	if err := imgio.SaveStill(outPath, out); err != nil {
		return "", err
	}
	return outPath, nil
}

// makeAnimation renders a progressive frame sequence from one file and
// writes a looping GIF.
func makeAnimation(inputPath, outputDir string, opts *options, rng *rand.Rand) (string, error) {
	buf, err := imgio.Load(inputPath)
	if err != nil {
		return "", err
	}

	origW, origH := buf.Bounds()
	working := buf
	frameOpts := glitch.FrameOptions{
		Frames: opts.frames,
		Bounce: opts.bounce,
	}
	if opts.lineCount > 0 && opts.lineCount != origH {
		scaledW := origW * opts.lineCount / origH
		if working, err = imgio.ScaleNearest(buf, scaledW, opts.lineCount); err != nil {
			return "", err
		}
		frameOpts.OutputWidth = origW
		frameOpts.OutputHeight = origH
	}

	frames, err := glitch.RenderFrames(working, glitch.AnimationPipeline, frameOpts, rng)
	if err != nil {
		return "", err
	}

	outPath := imgio.OutputPath(outputDir, inputPath, "gif")
	if err := imgio.SaveAnimation(outPath, frames, opts.duration); err != nil {
		return "", err
	}
	return outPath, nil
}
