// Package audiofile reads and writes audio files as mono float32 sample
// slices in the [-1, 1] range, the format the model consumes.
package audiofile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tphakala/rave-go/internal/errors"
)

// AudioInfo holds basic information about an audio file
type AudioInfo struct {
	SampleRate   int
	TotalSamples int
	NumChannels  int
	BitDepth     int
}

// Duration returns the audio length in seconds.
func (i AudioInfo) Duration() float64 {
	if i.SampleRate == 0 {
		return 0
	}
	return float64(i.TotalSamples) / float64(i.SampleRate)
}

// Probe returns the audio info of a WAV or FLAC file without decoding
// the sample data.
func Probe(filePath string) (AudioInfo, error) {
	file, err := os.Open(filePath) //nolint:gosec // G304: path comes from user input by design
	if err != nil {
		return AudioInfo{}, errors.New(err).
			Component("audiofile").
			Category(errors.CategoryFileIO).
			FileContext(filePath, 0).
			Build()
	}
	defer func() { _ = file.Close() }()

	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".wav":
		return readWAVInfo(file)
	case ".flac":
		return readFLACInfo(file)
	default:
		return AudioInfo{}, errors.Newf("unsupported audio format: %s", filepath.Ext(filePath)).
			Component("audiofile").
			Category(errors.CategoryFileParsing).
			FileContext(filePath, 0).
			Build()
	}
}

// ReadAudioFile decodes a WAV or FLAC file into mono float32 samples at
// the target sample rate. Multi-channel audio is downmixed by averaging,
// and the source is resampled when its rate differs from targetRate.
func ReadAudioFile(filePath string, targetRate int) ([]float32, error) {
	file, err := os.Open(filePath) //nolint:gosec // G304: path comes from user input by design
	if err != nil {
		return nil, errors.New(err).
			Component("audiofile").
			Category(errors.CategoryFileIO).
			FileContext(filePath, 0).
			Build()
	}
	defer func() { _ = file.Close() }()

	var samples []float32
	var sourceRate int

	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".wav":
		samples, sourceRate, err = readWAV(file)
	case ".flac":
		samples, sourceRate, err = readFLAC(file)
	default:
		return nil, errors.Newf("unsupported audio format: %s", filepath.Ext(filePath)).
			Component("audiofile").
			Category(errors.CategoryFileParsing).
			FileContext(filePath, 0).
			Build()
	}
	if err != nil {
		return nil, err
	}

	if len(samples) == 0 {
		return nil, errors.Newf("audio file contains no samples").
			Component("audiofile").
			Category(errors.CategoryAudio).
			FileContext(filePath, 0).
			Build()
	}

	if sourceRate != targetRate {
		samples, err = Resample(samples, sourceRate, targetRate)
		if err != nil {
			return nil, errors.New(fmt.Errorf("error resampling audio: %w", err)).
				Component("audiofile").
				Category(errors.CategoryAudio).
				Context("source_rate", sourceRate).
				Context("target_rate", targetRate).
				Build()
		}
	}

	return samples, nil
}

// getAudioDivisor returns the normalization divisor for a bit depth.
func getAudioDivisor(bitDepth int) (float32, error) {
	switch bitDepth {
	case 16:
		return 32768.0, nil
	case 24:
		return 8388608.0, nil
	case 32:
		return 2147483648.0, nil
	default:
		return 0, errors.Newf("unsupported audio file bit depth: %d", bitDepth).
			Component("audiofile").
			Category(errors.CategoryFileParsing).
			Build()
	}
}

// downmix averages interleaved channels into mono. Mono input is
// returned as-is.
func downmix(samples []float32, numChannels int) []float32 {
	if numChannels <= 1 {
		return samples
	}

	frames := len(samples) / numChannels
	mono := make([]float32, frames)
	for i := range frames {
		var sum float32
		for ch := range numChannels {
			sum += samples[i*numChannels+ch]
		}
		mono[i] = sum / float32(numChannels)
	}
	return mono
}
