package conf

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSettings() *Settings {
	return &Settings{
		Model: ModelSettings{
			Name:       "vintage",
			BaseURL:    DefaultModelBaseURL,
			SampleRate: DefaultSampleRate,
		},
		Transfer: TransferSettings{
			Channels:  []int{0, 1},
			Gain:      1.0,
			OutputDir: "output/",
		},
		Server: ServerSettings{
			Enabled: false,
		},
	}
}

func TestValidateSettings_Valid(t *testing.T) {
	t.Parallel()

	require.NoError(t, ValidateSettings(validSettings()))
}

func TestValidateSettings_ModelErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr string
	}{
		{
			name:    "zero sample rate",
			mutate:  func(s *Settings) { s.Model.SampleRate = 0 },
			wantErr: "sample rate",
		},
		{
			name:    "negative threads",
			mutate:  func(s *Settings) { s.Model.Threads = -1 },
			wantErr: "threads",
		},
		{
			name:    "encoder path without decoder path",
			mutate:  func(s *Settings) { s.Model.EncoderPath = "enc.tflite" },
			wantErr: "set together",
		},
		{
			name: "no name and no paths",
			mutate: func(s *Settings) {
				s.Model.Name = ""
			},
			wantErr: "model name is required",
		},
		{
			name:    "bad base URL scheme",
			mutate:  func(s *Settings) { s.Model.BaseURL = "ftp://example.org" },
			wantErr: "http(s)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			settings := validSettings()
			tt.mutate(settings)

			err := ValidateSettings(settings)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateSettings_TransferErrors(t *testing.T) {
	t.Parallel()

	settings := validSettings()
	settings.Transfer.Channels = []int{0, -2}
	require.ErrorContains(t, ValidateSettings(settings), "channel indexes")

	settings = validSettings()
	settings.Transfer.Gain = 0
	require.ErrorContains(t, ValidateSettings(settings), "gain")

	settings = validSettings()
	settings.Transfer.OutputDir = ""
	require.ErrorContains(t, ValidateSettings(settings), "output directory")
}

func TestValidateSettings_ServerOnlyWhenEnabled(t *testing.T) {
	t.Parallel()

	settings := validSettings()
	settings.Server.Listen = ""
	require.NoError(t, ValidateSettings(settings), "disabled server skips validation")

	settings.Server.Enabled = true
	require.ErrorContains(t, ValidateSettings(settings), "listen address")
}

func TestExpandPath(t *testing.T) {
	home, err := filepath.Abs(t.TempDir())
	require.NoError(t, err)
	t.Setenv("HOME", home)
	t.Setenv("RAVE_TEST_DIR", "models")

	expanded, err := ExpandPath("~/audio")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "audio"), expanded)

	expanded, err = ExpandPath("$RAVE_TEST_DIR/vintage")
	require.NoError(t, err)
	assert.Equal(t, "models/vintage", expanded)
}

func TestSaveYAMLRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	settings := validSettings()
	settings.Transfer.BiasStart = -2
	settings.Transfer.BiasStop = 2

	require.NoError(t, saveYAML(path, settings))
	assert.FileExists(t, path)
}
