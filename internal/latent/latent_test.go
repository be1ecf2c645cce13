package latent

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	z, err := New(8, 16)
	require.NoError(t, err)
	assert.Equal(t, 8, z.Dims)
	assert.Equal(t, 16, z.Steps)
	assert.Len(t, z.Data, 128)
	require.NoError(t, z.Validate())

	_, err = New(0, 16)
	assert.Error(t, err)
	_, err = New(8, -1)
	assert.Error(t, err)
}

func TestChannelAliasing(t *testing.T) {
	t.Parallel()

	z, err := New(2, 4)
	require.NoError(t, err)

	ch, err := z.Channel(1)
	require.NoError(t, err)
	ch[2] = 0.5
	assert.InDelta(t, 0.5, z.At(1, 2), 1e-6)

	z.Set(0, 3, -1.5)
	assert.InDelta(t, -1.5, z.At(0, 3), 1e-6)

	_, err = z.Channel(2)
	assert.Error(t, err)
	_, err = z.Channel(-1)
	assert.Error(t, err)
}

func TestAddBias(t *testing.T) {
	t.Parallel()

	z, err := New(4, 3)
	require.NoError(t, err)
	z.Set(1, 0, 1.0)

	require.NoError(t, z.AddBias(1, []float32{0.1, 0.2, 0.3}))
	assert.InDelta(t, 1.1, z.At(1, 0), 1e-6)
	assert.InDelta(t, 0.2, z.At(1, 1), 1e-6)
	assert.InDelta(t, 0.3, z.At(1, 2), 1e-6)

	// other channels untouched
	assert.Zero(t, z.At(0, 0))
	assert.Zero(t, z.At(2, 1))

	assert.Error(t, z.AddBias(1, []float32{0.1}))
	assert.Error(t, z.AddBias(9, []float32{0.1, 0.2, 0.3}))
}

func TestScale(t *testing.T) {
	t.Parallel()

	z, err := New(2, 2)
	require.NoError(t, err)
	z.Set(0, 0, 2.0)
	z.Set(0, 1, -3.0)

	require.NoError(t, z.Scale(0, 0.5))
	assert.InDelta(t, 1.0, z.At(0, 0), 1e-6)
	assert.InDelta(t, -1.5, z.At(0, 1), 1e-6)

	assert.Error(t, z.Scale(5, 2))
}

func TestConcatAndSlice(t *testing.T) {
	t.Parallel()

	a, err := New(2, 2)
	require.NoError(t, err)
	b, err := New(2, 3)
	require.NoError(t, err)

	a.Set(0, 0, 1)
	a.Set(1, 1, 2)
	b.Set(0, 2, 3)
	b.Set(1, 0, 4)

	c, err := a.Concat(b)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Dims)
	assert.Equal(t, 5, c.Steps)
	assert.InDelta(t, 1, c.At(0, 0), 1e-6)
	assert.InDelta(t, 2, c.At(1, 1), 1e-6)
	assert.InDelta(t, 3, c.At(0, 4), 1e-6)
	assert.InDelta(t, 4, c.At(1, 2), 1e-6)

	s, err := c.Slice(2, 5)
	require.NoError(t, err)
	assert.Equal(t, 3, s.Steps)
	assert.InDelta(t, 3, s.At(0, 2), 1e-6)
	assert.InDelta(t, 4, s.At(1, 0), 1e-6)

	// slice is a copy
	s.Set(0, 0, 9)
	assert.Zero(t, c.At(0, 2))

	_, err = c.Slice(3, 2)
	assert.Error(t, err)
	_, err = c.Slice(0, 6)
	assert.Error(t, err)

	mismatched, err := New(3, 2)
	require.NoError(t, err)
	_, err = a.Concat(mismatched)
	assert.Error(t, err)
}

func TestStats(t *testing.T) {
	t.Parallel()

	z, err := New(2, 4)
	require.NoError(t, err)
	for t0, v := range []float32{1, 2, 3, 4} {
		z.Set(0, t0, v)
	}

	stats, err := z.Stats()
	require.NoError(t, err)
	require.Len(t, stats, 2)

	assert.InDelta(t, 2.5, stats[0].Mean, 1e-6)
	assert.InDelta(t, 1.118, stats[0].StdDev, 1e-3)
	assert.InDelta(t, 1, stats[0].Min, 1e-6)
	assert.InDelta(t, 4, stats[0].Max, 1e-6)

	assert.Zero(t, stats[1].Mean)
	assert.Zero(t, stats[1].StdDev)
}

func TestLinspace(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		start float32
		stop  float32
		n     int
		want  []float32
	}{
		{name: "ramp", start: 0, stop: 1, n: 5, want: []float32{0, 0.25, 0.5, 0.75, 1}},
		{name: "descending", start: 2, stop: -2, n: 3, want: []float32{2, 0, -2}},
		{name: "single", start: 7, stop: 9, n: 1, want: []float32{7}},
		{name: "empty", start: 0, stop: 1, n: 0, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Linspace(tt.start, tt.stop, tt.n)
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.InDelta(t, tt.want[i], got[i], 1e-6)
			}
		})
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	t.Parallel()

	z, err := New(3, 5)
	require.NoError(t, err)
	z.ModelName = "vintage"
	z.SampleRate = 44100
	z.BlockRatio = 2048
	for i := range z.Data {
		z.Data[i] = float32(i) * 0.1
	}

	var buf bytes.Buffer
	require.NoError(t, z.Write(&buf))

	got, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, z.Dims, got.Dims)
	assert.Equal(t, z.Steps, got.Steps)
	assert.Equal(t, "vintage", got.ModelName)
	assert.Equal(t, 44100, got.SampleRate)
	assert.Equal(t, 2048, got.BlockRatio)
	assert.Equal(t, z.Data, got.Data)
}

func TestFileRoundTrip(t *testing.T) {
	t.Parallel()

	z, err := New(2, 3)
	require.NoError(t, err)
	z.ModelName = "percussion"
	z.Data[4] = -0.75

	path := filepath.Join(t.TempDir(), "clip.ravez")
	require.NoError(t, z.SaveFile(path))

	got, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, z.Data, got.Data)
	assert.Equal(t, "percussion", got.ModelName)
}

func TestReadRejectsGarbage(t *testing.T) {
	t.Parallel()

	_, err := Read(bytes.NewReader([]byte("not msgpack at all")))
	assert.Error(t, err)
}
