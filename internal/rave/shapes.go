package rave

import (
	"github.com/tphakala/rave-go/internal/errors"
)

// GraphShapes describes the tensor geometry derived from a loaded
// encoder/decoder pair. The runtime exposes fixed shapes only, so
// inference runs in windows of these sizes.
type GraphShapes struct {
	// WindowSamples is the encoder input length in audio samples.
	WindowSamples int
	// LatentDims is the number of latent channels.
	LatentDims int
	// WindowSteps is the number of latent steps the encoder emits per
	// window.
	WindowSteps int
	// DecoderSteps is the decoder input width in latent steps.
	DecoderSteps int
	// DecoderSamples is the audio length the decoder emits per window.
	DecoderSamples int
	// BlockRatio is audio samples per latent step.
	BlockRatio int
}

// validateEncoderShape checks the encoder tensor geometry, expecting
// input [1, 1, N] and output [1, D, T].
func validateEncoderShape(in, out []int) (window, dims, steps int, err error) {
	if len(in) != 3 || in[0] != 1 || in[1] != 1 || in[2] <= 0 {
		return 0, 0, 0, errors.Newf("unexpected encoder input shape %v, want [1 1 N]", in).
			Component("rave").
			Category(errors.CategoryModelInit).
			Build()
	}
	if len(out) != 3 || out[0] != 1 || out[1] <= 0 || out[2] <= 0 {
		return 0, 0, 0, errors.Newf("unexpected encoder output shape %v, want [1 D T]", out).
			Component("rave").
			Category(errors.CategoryModelInit).
			Build()
	}
	return in[2], out[1], out[2], nil
}

// validateDecoderShape checks the decoder tensor geometry, expecting
// input [1, D, T] and output [1, 1, N].
func validateDecoderShape(in, out []int) (dims, steps, samples int, err error) {
	if len(in) != 3 || in[0] != 1 || in[1] <= 0 || in[2] <= 0 {
		return 0, 0, 0, errors.Newf("unexpected decoder input shape %v, want [1 D T]", in).
			Component("rave").
			Category(errors.CategoryModelInit).
			Build()
	}
	if len(out) != 3 || out[0] != 1 || out[1] != 1 || out[2] <= 0 {
		return 0, 0, 0, errors.Newf("unexpected decoder output shape %v, want [1 1 N]", out).
			Component("rave").
			Category(errors.CategoryModelInit).
			Build()
	}
	return in[1], in[2], out[2], nil
}

// deriveShapes cross-checks the two graphs and derives the block ratio.
func deriveShapes(encIn, encOut, decIn, decOut []int) (GraphShapes, error) {
	window, encDims, windowSteps, err := validateEncoderShape(encIn, encOut)
	if err != nil {
		return GraphShapes{}, err
	}
	decDims, decSteps, decSamples, err := validateDecoderShape(decIn, decOut)
	if err != nil {
		return GraphShapes{}, err
	}

	if encDims != decDims {
		return GraphShapes{}, errors.Newf("encoder emits %d latent channels but decoder expects %d", encDims, decDims).
			Component("rave").
			Category(errors.CategoryModelInit).
			Build()
	}
	if window%windowSteps != 0 {
		return GraphShapes{}, errors.Newf("encoder window %d is not a multiple of its %d latent steps", window, windowSteps).
			Component("rave").
			Category(errors.CategoryModelInit).
			Build()
	}

	ratio := window / windowSteps
	if decSamples != decSteps*ratio {
		return GraphShapes{}, errors.Newf("decoder emits %d samples for %d steps, expected ratio %d", decSamples, decSteps, ratio).
			Component("rave").
			Category(errors.CategoryModelInit).
			Build()
	}

	return GraphShapes{
		WindowSamples:  window,
		LatentDims:     encDims,
		WindowSteps:    windowSteps,
		DecoderSteps:   decSteps,
		DecoderSamples: decSamples,
		BlockRatio:     ratio,
	}, nil
}

// numChunks returns how many fixed-size windows cover total elements.
func numChunks(total, window int) int {
	if total <= 0 || window <= 0 {
		return 0
	}
	return (total + window - 1) / window
}

// validSteps returns how many latent steps carry real audio, the rest
// of the last window is padding.
func validSteps(totalSamples, blockRatio int) int {
	if totalSamples <= 0 || blockRatio <= 0 {
		return 0
	}
	return (totalSamples + blockRatio - 1) / blockRatio
}
