// Package playback plays rendered audio through the default or a named
// output device.
package playback

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"log/slog"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/gen2brain/malgo"
	"github.com/smallnest/ringbuffer"

	"github.com/tphakala/rave-go/internal/errors"
	"github.com/tphakala/rave-go/internal/logging"
)

var (
	serviceLogger *slog.Logger
	initOnce      sync.Once
)

// drainDelay covers the device periods still buffered when the ring
// buffer runs dry, so the tail of the audio is rendered before Stop.
const drainDelay = 200 * time.Millisecond

func getLogger() *slog.Logger {
	initOnce.Do(func() {
		serviceLogger = logging.ForService("playback")
	})
	return serviceLogger
}

// DeviceInfo describes one playback device.
type DeviceInfo struct {
	Index     int
	Name      string
	ID        string
	IsDefault bool
}

// getBackendForPlatform returns the malgo backend for the current
// platform.
func getBackendForPlatform() (malgo.Backend, error) {
	switch runtime.GOOS {
	case "linux":
		return malgo.BackendAlsa, nil
	case "windows":
		return malgo.BackendWasapi, nil
	case "darwin":
		return malgo.BackendCoreaudio, nil
	default:
		return malgo.BackendNull, errors.Newf("unsupported operating system: %s", runtime.GOOS).
			Component("playback").
			Category(errors.CategoryAudio).
			Build()
	}
}

// ListDevices returns the available playback devices.
func ListDevices() ([]DeviceInfo, error) {
	backend, err := getBackendForPlatform()
	if err != nil {
		return nil, err
	}

	mctx, err := malgo.InitContext([]malgo.Backend{backend}, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, errors.New(err).
			Component("playback").
			Category(errors.CategoryAudio).
			Context("operation", "init-context").
			Build()
	}
	defer func() {
		_ = mctx.Uninit()
		mctx.Free()
	}()

	infos, err := mctx.Devices(malgo.Playback)
	if err != nil {
		return nil, errors.New(err).
			Component("playback").
			Category(errors.CategoryAudio).
			Context("operation", "enumerate-devices").
			Build()
	}

	devices := make([]DeviceInfo, 0, len(infos))
	for i := range infos {
		devices = append(devices, DeviceInfo{
			Index:     i,
			Name:      infos[i].Name(),
			ID:        decodeDeviceID(infos[i].ID.String()),
			IsDefault: infos[i].IsDefault == 1,
		})
	}
	return devices, nil
}

// Play blocks until the samples have been played through the named
// device, or ctx is cancelled. An empty or "default" device name uses
// the system default output.
func Play(ctx context.Context, samples []float32, sampleRate int, deviceName string) error {
	if len(samples) == 0 {
		return errors.Newf("no samples to play").
			Component("playback").
			Category(errors.CategoryValidation).
			Build()
	}
	if sampleRate <= 0 {
		return errors.Newf("invalid sample rate: %d", sampleRate).
			Component("playback").
			Category(errors.CategoryValidation).
			Build()
	}

	backend, err := getBackendForPlatform()
	if err != nil {
		return err
	}

	mctx, err := malgo.InitContext([]malgo.Backend{backend}, malgo.ContextConfig{}, nil)
	if err != nil {
		return errors.New(err).
			Component("playback").
			Category(errors.CategoryAudio).
			Context("operation", "init-context").
			Build()
	}
	defer func() {
		_ = mctx.Uninit()
		mctx.Free()
	}()

	pcm := toS16LE(samples)
	rb := ringbuffer.New(len(pcm))
	if _, err := rb.Write(pcm); err != nil {
		return errors.New(err).
			Component("playback").
			Category(errors.CategoryPlayback).
			Build()
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatS16
	deviceConfig.Playback.Channels = 1
	deviceConfig.SampleRate = uint32(sampleRate) //nolint:gosec // G115: validated positive above
	deviceConfig.Alsa.NoMMap = 1

	if deviceName != "" && deviceName != "default" {
		infos, err := mctx.Devices(malgo.Playback)
		if err != nil {
			return errors.New(err).
				Component("playback").
				Category(errors.CategoryAudio).
				Context("operation", "enumerate-devices").
				Build()
		}
		info, err := selectDevice(infos, deviceName)
		if err != nil {
			return err
		}
		deviceConfig.Playback.DeviceID = info.ID.Pointer()
	}

	done := make(chan struct{})
	var doneOnce sync.Once

	callbacks := malgo.DeviceCallbacks{
		Data: func(pOutput, pInput []byte, frameCount uint32) {
			n, _ := rb.Read(pOutput)
			if n < len(pOutput) {
				// Drained, pad the rest of the period with silence
				clear(pOutput[n:])
				doneOnce.Do(func() { close(done) })
			}
		},
	}

	device, err := malgo.InitDevice(mctx.Context, deviceConfig, callbacks)
	if err != nil {
		return errors.New(err).
			Component("playback").
			Category(errors.CategoryPlayback).
			Context("device_name", deviceName).
			Context("operation", "init-device").
			Build()
	}
	defer device.Uninit()

	if err := device.Start(); err != nil {
		return errors.New(err).
			Component("playback").
			Category(errors.CategoryPlayback).
			Context("operation", "start-device").
			Build()
	}

	getLogger().Info("playback started",
		slog.Int("sample_rate", sampleRate),
		slog.Int("samples", len(samples)))

	if err := waitPlayback(ctx, done); err != nil {
		_ = device.Stop()
		return errors.New(err).
			Component("playback").
			Category(errors.CategoryCancellation).
			Build()
	}
	return nil
}

// waitPlayback blocks until the ring buffer has drained plus the drain
// delay, or until ctx is cancelled before the buffer drained. done
// fires when the callback reads the last of the buffer, the final
// period has not been rendered by the hardware at that point.
func waitPlayback(ctx context.Context, done <-chan struct{}) error {
	select {
	case <-done:
		select {
		case <-time.After(drainDelay):
		case <-ctx.Done():
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// selectDevice matches a device by name or decoded ID.
func selectDevice(infos []malgo.DeviceInfo, deviceName string) (*malgo.DeviceInfo, error) {
	for i := range infos {
		if infos[i].Name() == deviceName {
			return &infos[i], nil
		}
	}
	for i := range infos {
		if decodeDeviceID(infos[i].ID.String()) == deviceName {
			return &infos[i], nil
		}
	}
	return nil, errors.Newf("no playback device matches %q", deviceName).
		Component("playback").
		Category(errors.CategoryNotFound).
		Build()
}

// decodeDeviceID converts a hex-encoded device ID into readable ASCII
// where possible.
func decodeDeviceID(id string) string {
	cleaned := strings.TrimRight(strings.TrimSpace(id), "0")
	if len(cleaned)%2 != 0 {
		cleaned += "0"
	}
	decoded, err := hex.DecodeString(cleaned)
	if err != nil {
		return id
	}
	for _, b := range decoded {
		if b < 0x20 || b > 0x7e {
			return id
		}
	}
	return string(decoded)
}

// toS16LE converts float32 samples in [-1, 1] to little-endian 16-bit
// PCM bytes, clamping out-of-range values.
func toS16LE(samples []float32) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		v := s * 32767.0
		switch {
		case v > 32767:
			v = 32767
		case v < -32768:
			v = -32768
		}
		binary.LittleEndian.PutUint16(out[i*2:], uint16(int16(v)))
	}
	return out
}
