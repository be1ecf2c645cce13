package audiofile

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/tphakala/flac"
	"github.com/tphakala/rave-go/internal/errors"
)

func readFLACInfo(file *os.File) (AudioInfo, error) {
	decoder, err := flac.NewDecoder(file)
	if err != nil {
		return AudioInfo{}, errors.New(err).
			Component("audiofile").
			Category(errors.CategoryFileParsing).
			Build()
	}

	return AudioInfo{
		SampleRate:   decoder.SampleRate,
		TotalSamples: int(decoder.TotalSamples),
		NumChannels:  decoder.NChannels,
		BitDepth:     decoder.BitsPerSample,
	}, nil
}

// readFLAC decodes the whole file into mono float32 samples at the
// source rate.
func readFLAC(file *os.File) (samples []float32, sampleRate int, err error) {
	decoder, err := flac.NewDecoder(file)
	if err != nil {
		return nil, 0, errors.New(err).
			Component("audiofile").
			Category(errors.CategoryFileParsing).
			Build()
	}

	divisor, err := getAudioDivisor(decoder.BitsPerSample)
	if err != nil {
		return nil, 0, err
	}

	bytesPerSample := decoder.BitsPerSample / 8
	numChannels := decoder.NChannels

	var interleaved []float32
	for {
		frame, err := decoder.Next()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, 0, errors.New(err).
				Component("audiofile").
				Category(errors.CategoryFileParsing).
				Context("operation", "flac-frame-read").
				Build()
		}

		// Frames carry interleaved little-endian PCM bytes
		for i := 0; i+bytesPerSample <= len(frame); i += bytesPerSample {
			var sample int32
			switch decoder.BitsPerSample {
			case 16:
				sample = int32(int16(binary.LittleEndian.Uint16(frame[i:])))
			case 24:
				sample = int32(frame[i]) | int32(frame[i+1])<<8 | int32(frame[i+2])<<16
				// sign extend from 24 bits
				sample = (sample << 8) >> 8
			case 32:
				sample = int32(binary.LittleEndian.Uint32(frame[i:]))
			}
			interleaved = append(interleaved, float32(sample)/divisor)
		}
	}

	return downmix(interleaved, numChannels), decoder.SampleRate, nil
}
