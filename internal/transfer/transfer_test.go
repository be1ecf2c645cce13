package transfer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/rave-go/internal/conf"
	"github.com/tphakala/rave-go/internal/latent"
)

func TestApplyAlterations(t *testing.T) {
	t.Parallel()

	newLatent := func(t *testing.T) *latent.Latent {
		t.Helper()
		z, err := latent.New(4, 5)
		require.NoError(t, err)
		return z
	}

	t.Run("adds ramp to selected channels", func(t *testing.T) {
		t.Parallel()
		z := newLatent(t)
		ts := &conf.TransferSettings{
			Channels:  []int{0, 2},
			BiasStart: -2,
			BiasStop:  2,
		}
		require.NoError(t, ApplyAlterations(z, ts))

		assert.InDelta(t, -2, z.At(0, 0), 1e-6)
		assert.InDelta(t, 0, z.At(0, 2), 1e-6)
		assert.InDelta(t, 2, z.At(0, 4), 1e-6)
		assert.InDelta(t, -2, z.At(2, 0), 1e-6)

		// unselected channels untouched
		assert.Zero(t, z.At(1, 0))
		assert.Zero(t, z.At(3, 4))
	})

	t.Run("no channels is a no-op", func(t *testing.T) {
		t.Parallel()
		z := newLatent(t)
		require.NoError(t, ApplyAlterations(z, &conf.TransferSettings{BiasStart: 1, BiasStop: 2}))
		assert.Zero(t, z.At(0, 0))
	})

	t.Run("zero bias range is a no-op", func(t *testing.T) {
		t.Parallel()
		z := newLatent(t)
		require.NoError(t, ApplyAlterations(z, &conf.TransferSettings{Channels: []int{0}}))
		assert.Zero(t, z.At(0, 0))
	})

	t.Run("gain scales selected channels", func(t *testing.T) {
		t.Parallel()
		z := newLatent(t)
		z.Set(1, 0, 0.5)
		z.Set(0, 0, 0.5)
		ts := &conf.TransferSettings{Channels: []int{1}, Gain: 2}
		require.NoError(t, ApplyAlterations(z, ts))
		assert.InDelta(t, 1.0, z.At(1, 0), 1e-6)
		assert.InDelta(t, 0.5, z.At(0, 0), 1e-6)
	})

	t.Run("bias and gain compose", func(t *testing.T) {
		t.Parallel()
		z := newLatent(t)
		ts := &conf.TransferSettings{Channels: []int{0}, BiasStart: 1, BiasStop: 1, Gain: 3}
		require.NoError(t, ApplyAlterations(z, ts))
		assert.InDelta(t, 3.0, z.At(0, 0), 1e-6)
		assert.InDelta(t, 3.0, z.At(0, 4), 1e-6)
	})

	t.Run("out-of-range channel errors", func(t *testing.T) {
		t.Parallel()
		z := newLatent(t)
		ts := &conf.TransferSettings{Channels: []int{9}, BiasStart: 1, BiasStop: 2}
		assert.Error(t, ApplyAlterations(z, ts))
	})
}

func TestVerifyProvenance(t *testing.T) {
	t.Parallel()

	newLatent := func(t *testing.T, modelName string) *latent.Latent {
		t.Helper()
		z, err := latent.New(4, 5)
		require.NoError(t, err)
		z.ModelName = modelName
		return z
	}

	t.Run("matching model decodes", func(t *testing.T) {
		t.Parallel()
		require.NoError(t, verifyProvenance(newLatent(t, "vintage"), "vintage"))
	})

	t.Run("mismatched model is rejected", func(t *testing.T) {
		t.Parallel()
		err := verifyProvenance(newLatent(t, "vintage"), "percussion")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "vintage")
		assert.Contains(t, err.Error(), "percussion")
	})

	t.Run("missing model name is accepted", func(t *testing.T) {
		t.Parallel()
		require.NoError(t, verifyProvenance(newLatent(t, ""), "vintage"))
	})
}

func TestOutputFilePath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	settings := &conf.Settings{Input: "/music/guitar_take3.flac"}
	settings.Model.Name = "vintage"
	settings.Transfer.OutputDir = dir

	path, err := outputFilePath(settings)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "guitar_take3_vintage.wav"), path)
}

func TestOutputFilePathCollision(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	settings := &conf.Settings{Input: "drums.wav"}
	settings.Model.Name = "percussion"
	settings.Transfer.OutputDir = dir

	first, err := outputFilePath(settings)
	require.NoError(t, err)
	require.NoError(t, touch(t, first))

	second, err := outputFilePath(settings)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
	assert.Contains(t, second, "drums_percussion_")
}

func touch(t *testing.T, path string) error {
	t.Helper()
	return os.WriteFile(path, []byte{}, 0o644)
}

func TestReplaceExt(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "clip.ravez", replaceExt("clip.wav", ".ravez"))
	assert.Equal(t, "a/b/clip.wav", replaceExt("a/b/clip.ravez", ".wav"))
	assert.Equal(t, "noext.wav", replaceExt("noext", ".wav"))
}

func TestTruncateFilename(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "short.wav", truncateFilename("/tmp/short.wav"))

	long := truncateFilename("/tmp/a_very_long_recording_name_for_testing.wav")
	assert.Len(t, long, 30)
	assert.Contains(t, long, "...")
}
