package playback

import (
	"context"
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToS16LE(t *testing.T) {
	t.Parallel()

	out := toS16LE([]float32{0, 1.0, -1.0, 0.5, 2.0, -2.0})
	require.Len(t, out, 12)

	read := func(i int) int16 {
		return int16(binary.LittleEndian.Uint16(out[i*2:]))
	}

	assert.Equal(t, int16(0), read(0))
	assert.Equal(t, int16(32767), read(1))
	assert.Equal(t, int16(-32767), read(2))
	assert.InDelta(t, 16383, read(3), 1)
	// out-of-range input clamps
	assert.Equal(t, int16(32767), read(4))
	assert.Equal(t, int16(-32768), read(5))
}

func TestDecodeDeviceID(t *testing.T) {
	t.Parallel()

	// hex-encoded "hw:0" padded with trailing zeros
	assert.Equal(t, "hw:0", decodeDeviceID("68773a30000000"))
	// garbage passes through untouched
	assert.Equal(t, "not-hex!", decodeDeviceID("not-hex!"))
	// non-printable bytes pass through untouched
	assert.Equal(t, "0102", decodeDeviceID("0102"))
}

func TestWaitPlaybackDrainsTail(t *testing.T) {
	t.Parallel()

	done := make(chan struct{})
	close(done)

	// Returning before the drain delay would cut the last device period
	start := time.Now()
	require.NoError(t, waitPlayback(context.Background(), done))
	assert.GreaterOrEqual(t, time.Since(start), drainDelay)
}

func TestWaitPlaybackCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := waitPlayback(ctx, make(chan struct{}))
	require.ErrorIs(t, err, context.Canceled)
}

func TestGetBackendForPlatform(t *testing.T) {
	t.Parallel()

	// linux, windows and darwin all resolve to a concrete backend
	_, err := getBackendForPlatform()
	require.NoError(t, err)
}
