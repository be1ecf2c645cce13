package audiofile

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAudioDivisor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		bitDepth int
		want     float32
		wantErr  bool
	}{
		{name: "16-bit", bitDepth: 16, want: 32768.0},
		{name: "24-bit", bitDepth: 24, want: 8388608.0},
		{name: "32-bit", bitDepth: 32, want: 2147483648.0},
		{name: "8-bit unsupported", bitDepth: 8, wantErr: true},
		{name: "zero", bitDepth: 0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := getAudioDivisor(tt.bitDepth)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 0.01)
		})
	}
}

func TestDownmix(t *testing.T) {
	t.Parallel()

	t.Run("mono passthrough", func(t *testing.T) {
		t.Parallel()
		in := []float32{0.1, 0.2, 0.3}
		assert.Equal(t, in, downmix(in, 1))
	})

	t.Run("stereo average", func(t *testing.T) {
		t.Parallel()
		in := []float32{1.0, 0.0, 0.5, 0.5, -1.0, 1.0}
		got := downmix(in, 2)
		require.Len(t, got, 3)
		assert.InDelta(t, 0.5, got[0], 1e-6)
		assert.InDelta(t, 0.5, got[1], 1e-6)
		assert.InDelta(t, 0.0, got[2], 1e-6)
	})
}

func TestClampToInt16(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 32767, clampToInt16(1.0))
	assert.Equal(t, 32767, clampToInt16(2.5))
	assert.Equal(t, -32768, clampToInt16(-2.5))
	assert.Equal(t, 0, clampToInt16(0))
	assert.InDelta(t, 16383, clampToInt16(0.5), 1)
}

func TestResample(t *testing.T) {
	t.Parallel()

	t.Run("identity when rates match", func(t *testing.T) {
		t.Parallel()
		in := []float32{0.1, 0.2, 0.3, 0.4}
		got, err := Resample(in, 44100, 44100)
		require.NoError(t, err)
		assert.Equal(t, in, got)
	})

	t.Run("halving the rate halves the length", func(t *testing.T) {
		t.Parallel()
		in := make([]float32, 1000)
		got, err := Resample(in, 48000, 24000)
		require.NoError(t, err)
		assert.Len(t, got, 500)
	})

	t.Run("constant signal stays constant", func(t *testing.T) {
		t.Parallel()
		in := make([]float32, 200)
		for i := range in {
			in[i] = 0.25
		}
		got, err := Resample(in, 22050, 44100)
		require.NoError(t, err)
		require.Len(t, got, 400)
		for _, s := range got {
			assert.InDelta(t, 0.25, s, 1e-4)
		}
	})

	t.Run("rejects invalid rates", func(t *testing.T) {
		t.Parallel()
		_, err := Resample([]float32{0, 0, 0, 0}, 0, 44100)
		assert.Error(t, err)
	})

	t.Run("rejects tiny input", func(t *testing.T) {
		t.Parallel()
		_, err := Resample([]float32{0.1}, 22050, 44100)
		assert.Error(t, err)
	})
}

func TestWAVRoundTrip(t *testing.T) {
	t.Parallel()

	// 100 ms of a 440 Hz sine at 44.1 kHz
	const rate = 44100
	samples := make([]float32, rate/10)
	for i := range samples {
		samples[i] = 0.5 * float32(math.Sin(2*math.Pi*440*float64(i)/rate))
	}

	path := filepath.Join(t.TempDir(), "tone.wav")
	require.NoError(t, SaveWAV(path, samples, rate))

	info, err := Probe(path)
	require.NoError(t, err)
	assert.Equal(t, rate, info.SampleRate)
	assert.Equal(t, 1, info.NumChannels)
	assert.Equal(t, 16, info.BitDepth)
	assert.InDelta(t, 0.1, info.Duration(), 0.01)

	got, err := ReadAudioFile(path, rate)
	require.NoError(t, err)
	require.Len(t, got, len(samples))

	// 16-bit quantization bounds the roundtrip error
	for i := range got {
		assert.InDelta(t, samples[i], got[i], 1.0/32000)
	}
}

func TestReadAudioFileResamples(t *testing.T) {
	t.Parallel()

	samples := make([]float32, 22050)
	for i := range samples {
		samples[i] = 0.25
	}

	path := filepath.Join(t.TempDir(), "low.wav")
	require.NoError(t, SaveWAV(path, samples, 22050))

	got, err := ReadAudioFile(path, 44100)
	require.NoError(t, err)
	assert.Len(t, got, 44100)
}

func TestUnsupportedFormat(t *testing.T) {
	t.Parallel()

	_, err := ReadAudioFile("clip.mp3", 44100)
	assert.ErrorContains(t, err, "unsupported audio format")

	_, err = Probe("clip.ogg")
	assert.Error(t, err)
}

func TestSaveWAVEmpty(t *testing.T) {
	t.Parallel()

	err := SaveWAV(filepath.Join(t.TempDir(), "empty.wav"), nil, 44100)
	assert.Error(t, err)
}
