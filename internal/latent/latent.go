// Package latent holds the compressed time-varying code the model
// produces. A Latent is a dense [dims x steps] float32 matrix for a
// batch of one, plus the metadata needed to decode it later.
package latent

import (
	"math"

	"github.com/tphakala/rave-go/internal/errors"
)

// Latent is a latent tensor with dims channels and steps time steps.
// Data is laid out row-major, channel i occupying
// Data[i*Steps : (i+1)*Steps].
type Latent struct {
	Data       []float32
	Dims       int
	Steps      int
	ModelName  string
	SampleRate int
	// BlockRatio is the number of audio samples one latent step spans.
	BlockRatio int
}

// New allocates a zeroed latent tensor.
func New(dims, steps int) (*Latent, error) {
	if dims <= 0 || steps <= 0 {
		return nil, errors.Newf("invalid latent shape: %dx%d", dims, steps).
			Component("latent").
			Category(errors.CategoryValidation).
			Build()
	}
	return &Latent{
		Data:  make([]float32, dims*steps),
		Dims:  dims,
		Steps: steps,
	}, nil
}

// Validate checks the shape invariant.
func (z *Latent) Validate() error {
	if z == nil {
		return errors.Newf("nil latent").
			Component("latent").
			Category(errors.CategoryValidation).
			Build()
	}
	if z.Dims <= 0 || z.Steps <= 0 || len(z.Data) != z.Dims*z.Steps {
		return errors.Newf("latent shape mismatch: dims=%d steps=%d len=%d", z.Dims, z.Steps, len(z.Data)).
			Component("latent").
			Category(errors.CategoryValidation).
			Build()
	}
	return nil
}

// Channel returns the slice backing channel i. The slice aliases the
// tensor, writes through it mutate the latent.
func (z *Latent) Channel(i int) ([]float32, error) {
	if i < 0 || i >= z.Dims {
		return nil, errors.Newf("channel %d out of range, latent has %d channels", i, z.Dims).
			Component("latent").
			Category(errors.CategoryValidation).
			Build()
	}
	return z.Data[i*z.Steps : (i+1)*z.Steps], nil
}

// At returns the value at channel i, step t.
func (z *Latent) At(i, t int) float32 {
	return z.Data[i*z.Steps+t]
}

// Set writes the value at channel i, step t.
func (z *Latent) Set(i, t int, v float32) {
	z.Data[i*z.Steps+t] = v
}

// AddBias adds bias elementwise to channel i. len(bias) must equal
// Steps.
func (z *Latent) AddBias(i int, bias []float32) error {
	ch, err := z.Channel(i)
	if err != nil {
		return err
	}
	if len(bias) != z.Steps {
		return errors.Newf("bias length %d does not match %d steps", len(bias), z.Steps).
			Component("latent").
			Category(errors.CategoryValidation).
			Build()
	}
	for t := range ch {
		ch[t] += bias[t]
	}
	return nil
}

// Scale multiplies channel i by gain.
func (z *Latent) Scale(i int, gain float32) error {
	ch, err := z.Channel(i)
	if err != nil {
		return err
	}
	for t := range ch {
		ch[t] *= gain
	}
	return nil
}

// Concat appends other along the time axis. Both tensors must have the
// same number of channels.
func (z *Latent) Concat(other *Latent) (*Latent, error) {
	if err := z.Validate(); err != nil {
		return nil, err
	}
	if err := other.Validate(); err != nil {
		return nil, err
	}
	if z.Dims != other.Dims {
		return nil, errors.Newf("cannot concat latents with %d and %d channels", z.Dims, other.Dims).
			Component("latent").
			Category(errors.CategoryValidation).
			Build()
	}

	out := &Latent{
		Data:       make([]float32, z.Dims*(z.Steps+other.Steps)),
		Dims:       z.Dims,
		Steps:      z.Steps + other.Steps,
		ModelName:  z.ModelName,
		SampleRate: z.SampleRate,
		BlockRatio: z.BlockRatio,
	}
	for i := range z.Dims {
		row := out.Data[i*out.Steps : (i+1)*out.Steps]
		copy(row, z.Data[i*z.Steps:(i+1)*z.Steps])
		copy(row[z.Steps:], other.Data[i*other.Steps:(i+1)*other.Steps])
	}
	return out, nil
}

// Slice returns a copy of steps [from, to) across all channels.
func (z *Latent) Slice(from, to int) (*Latent, error) {
	if err := z.Validate(); err != nil {
		return nil, err
	}
	if from < 0 || to > z.Steps || from >= to {
		return nil, errors.Newf("invalid step range [%d, %d) for %d steps", from, to, z.Steps).
			Component("latent").
			Category(errors.CategoryValidation).
			Build()
	}

	steps := to - from
	out := &Latent{
		Data:       make([]float32, z.Dims*steps),
		Dims:       z.Dims,
		Steps:      steps,
		ModelName:  z.ModelName,
		SampleRate: z.SampleRate,
		BlockRatio: z.BlockRatio,
	}
	for i := range z.Dims {
		copy(out.Data[i*steps:(i+1)*steps], z.Data[i*z.Steps+from:i*z.Steps+to])
	}
	return out, nil
}

// ChannelStats holds summary statistics for one latent channel.
type ChannelStats struct {
	Channel int
	Mean    float64
	StdDev  float64
	Min     float32
	Max     float32
}

// Stats computes per-channel summary statistics.
func (z *Latent) Stats() ([]ChannelStats, error) {
	if err := z.Validate(); err != nil {
		return nil, err
	}

	stats := make([]ChannelStats, z.Dims)
	for i := range z.Dims {
		ch := z.Data[i*z.Steps : (i+1)*z.Steps]

		var sum float64
		minV, maxV := ch[0], ch[0]
		for _, v := range ch {
			sum += float64(v)
			if v < minV {
				minV = v
			}
			if v > maxV {
				maxV = v
			}
		}
		mean := sum / float64(z.Steps)

		var sqDiff float64
		for _, v := range ch {
			d := float64(v) - mean
			sqDiff += d * d
		}

		stats[i] = ChannelStats{
			Channel: i,
			Mean:    mean,
			StdDev:  math.Sqrt(sqDiff / float64(z.Steps)),
			Min:     minV,
			Max:     maxV,
		}
	}
	return stats, nil
}

// Linspace returns n evenly spaced values from start to stop inclusive.
// n == 1 returns just start.
func Linspace(start, stop float32, n int) []float32 {
	if n <= 0 {
		return nil
	}
	out := make([]float32, n)
	if n == 1 {
		out[0] = start
		return out
	}
	step := (stop - start) / float32(n-1)
	for i := range out {
		out[i] = start + float32(i)*step
	}
	return out
}
