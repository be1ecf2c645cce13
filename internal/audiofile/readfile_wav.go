package audiofile

import (
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/tphakala/rave-go/internal/errors"
)

func readWAVInfo(file *os.File) (AudioInfo, error) {
	decoder := wav.NewDecoder(file)
	decoder.ReadInfo()

	if !decoder.IsValidFile() {
		return AudioInfo{}, errors.Newf("invalid WAV file format").
			Component("audiofile").
			Category(errors.CategoryFileParsing).
			Build()
	}

	if decoder.BitDepth != 16 && decoder.BitDepth != 24 && decoder.BitDepth != 32 {
		return AudioInfo{}, errors.Newf("unsupported bit depth: %d", decoder.BitDepth).
			Component("audiofile").
			Category(errors.CategoryFileParsing).
			Build()
	}

	if decoder.NumChans != 1 && decoder.NumChans != 2 {
		return AudioInfo{}, errors.Newf("unsupported number of channels: %d", decoder.NumChans).
			Component("audiofile").
			Category(errors.CategoryFileParsing).
			Build()
	}

	fileInfo, err := file.Stat()
	if err != nil {
		return AudioInfo{}, err
	}

	bytesPerSample := int(decoder.BitDepth / 8)
	totalSamples := int(fileInfo.Size()) / bytesPerSample / int(decoder.NumChans)

	return AudioInfo{
		SampleRate:   int(decoder.SampleRate),
		TotalSamples: totalSamples,
		NumChannels:  int(decoder.NumChans),
		BitDepth:     int(decoder.BitDepth),
	}, nil
}

// readWAV decodes the whole file into mono float32 samples at the
// source rate.
func readWAV(file *os.File) (samples []float32, sampleRate int, err error) {
	decoder := wav.NewDecoder(file)
	decoder.ReadInfo()
	if !decoder.IsValidFile() {
		return nil, 0, errors.Newf("input is not a valid WAV audio file").
			Component("audiofile").
			Category(errors.CategoryFileParsing).
			Build()
	}

	divisor, err := getAudioDivisor(int(decoder.BitDepth))
	if err != nil {
		return nil, 0, err
	}

	numChannels := int(decoder.NumChans)
	sampleRate = int(decoder.SampleRate)

	// Decode in chunks rather than one huge PCMBuffer call
	const bufferSize = 1 << 20
	buf := &audio.IntBuffer{
		Data:   make([]int, bufferSize),
		Format: &audio.Format{SampleRate: sampleRate, NumChannels: numChannels},
	}

	var interleaved []float32
	for {
		n, err := decoder.PCMBuffer(buf)
		if err != nil {
			return nil, 0, errors.New(err).
				Component("audiofile").
				Category(errors.CategoryFileParsing).
				Context("operation", "pcm-read").
				Build()
		}
		if n == 0 {
			break
		}

		for _, sample := range buf.Data[:n] {
			interleaved = append(interleaved, float32(sample)/divisor)
		}
	}

	return downmix(interleaved, numChannels), sampleRate, nil
}
