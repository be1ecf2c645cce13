package rave

import (
	"context"
	"time"

	tflite "github.com/tphakala/go-tflite"

	"github.com/tphakala/rave-go/internal/errors"
	"github.com/tphakala/rave-go/internal/latent"
	"github.com/tphakala/rave-go/internal/observability"
)

// Encode compresses audio samples into a latent tensor. Audio is
// processed in fixed encoder windows, the tail window is zero padded
// and the padding steps are trimmed from the result.
func (r *RAVE) Encode(ctx context.Context, samples []float32) (*latent.Latent, error) {
	if len(samples) == 0 {
		return nil, errors.Newf("no samples to encode").
			Component("rave").
			Category(errors.CategoryValidation).
			Build()
	}

	start := time.Now()
	window := r.shapes.WindowSamples
	chunks := numChunks(len(samples), window)

	z, err := latent.New(r.shapes.LatentDims, chunks*r.shapes.WindowSteps)
	if err != nil {
		return nil, err
	}
	z.ModelName = r.Settings.Model.Name
	z.SampleRate = r.Settings.Model.SampleRate
	z.BlockRatio = r.shapes.BlockRatio

	padded := make([]float32, window)
	for c := range chunks {
		if err := ctx.Err(); err != nil {
			return nil, errors.New(err).
				Component("rave").
				Category(errors.CategoryCancellation).
				Context("operation", "encode").
				Build()
		}

		chunk := samples[c*window : min((c+1)*window, len(samples))]
		in := chunk
		if len(chunk) < window {
			clear(padded)
			copy(padded, chunk)
			in = padded
		}

		out, err := r.invokeEncoder(in)
		if err != nil {
			return nil, err
		}

		// Encoder output is [1, D, T] in row-major order
		steps := r.shapes.WindowSteps
		for d := range r.shapes.LatentDims {
			copy(z.Data[d*z.Steps+c*steps:d*z.Steps+(c+1)*steps], out[d*steps:(d+1)*steps])
		}
	}

	trimmed, err := z.Slice(0, validSteps(len(samples), r.shapes.BlockRatio))
	if err != nil {
		return nil, err
	}

	observability.ObserveEncode(time.Since(start), chunks)
	return trimmed, nil
}

// Decode synthesizes audio from a latent tensor. Latent steps are
// processed in fixed decoder windows, the tail window is zero padded
// and the padding samples are trimmed from the result.
func (r *RAVE) Decode(ctx context.Context, z *latent.Latent) ([]float32, error) {
	if err := z.Validate(); err != nil {
		return nil, err
	}
	if z.Dims != r.shapes.LatentDims {
		return nil, errors.Newf("latent has %d channels but model expects %d", z.Dims, r.shapes.LatentDims).
			Component("rave").
			Category(errors.CategoryValidation).
			Context("model", r.Settings.Model.Name).
			Build()
	}

	start := time.Now()
	steps := r.shapes.DecoderSteps
	chunks := numChunks(z.Steps, steps)

	samples := make([]float32, 0, chunks*r.shapes.DecoderSamples)
	in := make([]float32, r.shapes.LatentDims*steps)

	for c := range chunks {
		if err := ctx.Err(); err != nil {
			return nil, errors.New(err).
				Component("rave").
				Category(errors.CategoryCancellation).
				Context("operation", "decode").
				Build()
		}

		// Decoder input is [1, D, T] in row-major order, pad the tail
		// window with zero steps
		from := c * steps
		to := min(from+steps, z.Steps)
		width := to - from

		clear(in)
		for d := range z.Dims {
			copy(in[d*steps:d*steps+width], z.Data[d*z.Steps+from:d*z.Steps+to])
		}

		out, err := r.invokeDecoder(in)
		if err != nil {
			return nil, err
		}
		samples = append(samples, out...)
	}

	// Drop the audio synthesized from padding steps
	valid := z.Steps * r.shapes.BlockRatio
	if valid < len(samples) {
		samples = samples[:valid]
	}

	observability.ObserveDecode(time.Since(start), chunks)
	return samples, nil
}

// invokeEncoder runs one encoder window and returns a copy of the
// output tensor.
func (r *RAVE) invokeEncoder(window []float32) ([]float32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	copy(r.encoder.GetInputTensor(0).Float32s(), window)
	if status := r.encoder.Invoke(); status != tflite.OK {
		return nil, errors.Newf("encoder tensor invoke failed").
			Component("rave").
			Category(errors.CategoryInference).
			Context("model", r.Settings.Model.Name).
			Build()
	}

	outputTensor := r.encoder.GetOutputTensor(0)
	out := make([]float32, r.shapes.LatentDims*r.shapes.WindowSteps)
	copy(out, outputTensor.Float32s())
	return out, nil
}

// invokeDecoder runs one decoder window and returns a copy of the
// output tensor.
func (r *RAVE) invokeDecoder(window []float32) ([]float32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	copy(r.decoder.GetInputTensor(0).Float32s(), window)
	if status := r.decoder.Invoke(); status != tflite.OK {
		return nil, errors.Newf("decoder tensor invoke failed").
			Component("rave").
			Category(errors.CategoryInference).
			Context("model", r.Settings.Model.Name).
			Build()
	}

	outputTensor := r.decoder.GetOutputTensor(0)
	out := make([]float32, r.shapes.DecoderSamples)
	copy(out, outputTensor.Float32s())
	return out, nil
}
