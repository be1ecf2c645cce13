package audiofile

import (
	"os"
	"path/filepath"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/tphakala/rave-go/internal/conf"
	"github.com/tphakala/rave-go/internal/errors"
)

// SaveWAV writes mono float32 samples as a 16-bit PCM WAV file at the
// given sample rate. Samples outside [-1, 1] are clamped.
func SaveWAV(filePath string, samples []float32, sampleRate int) error {
	if len(samples) == 0 {
		return errors.Newf("no samples to write").
			Component("audiofile").
			Category(errors.CategoryValidation).
			FileContext(filePath, 0).
			Build()
	}
	if sampleRate <= 0 {
		sampleRate = conf.DefaultSampleRate
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return errors.New(err).
			Component("audiofile").
			Category(errors.CategoryFileIO).
			FileContext(filePath, 0).
			Build()
	}

	outFile, err := os.Create(filePath) //nolint:gosec // G304: path comes from user input by design
	if err != nil {
		return errors.New(err).
			Component("audiofile").
			Category(errors.CategoryFileIO).
			FileContext(filePath, 0).
			Build()
	}
	defer func() { _ = outFile.Close() }()

	enc := wav.NewEncoder(outFile, sampleRate, conf.BitDepth, conf.NumChannels, 1)

	intSamples := make([]int, len(samples))
	for i, s := range samples {
		intSamples[i] = clampToInt16(s)
	}

	buf := &audio.IntBuffer{
		Data:   intSamples,
		Format: &audio.Format{SampleRate: sampleRate, NumChannels: conf.NumChannels},
	}
	if err := enc.Write(buf); err != nil {
		return errors.New(err).
			Component("audiofile").
			Category(errors.CategoryFileIO).
			Context("operation", "wav-encode").
			FileContext(filePath, 0).
			Build()
	}

	if err := enc.Close(); err != nil {
		return errors.New(err).
			Component("audiofile").
			Category(errors.CategoryFileIO).
			FileContext(filePath, 0).
			Build()
	}
	return nil
}

func clampToInt16(s float32) int {
	v := s * 32767.0
	switch {
	case v > 32767:
		return 32767
	case v < -32768:
		return -32768
	default:
		return int(v)
	}
}
