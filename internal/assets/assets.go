// Package assets downloads and locates model bundles and sample audio.
//
// A model bundle is a pair of TFLite graph exports named
// <name>_encoder.tflite and <name>_decoder.tflite, fetched from the
// configured base URL and stored in the model directory.
package assets

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/tphakala/rave-go/internal/conf"
	"github.com/tphakala/rave-go/internal/errors"
	"github.com/tphakala/rave-go/internal/httpclient"
	"github.com/tphakala/rave-go/internal/logging"
	"github.com/tphakala/rave-go/internal/observability"
)

// EncoderSuffix and DecoderSuffix name the two graphs of a model bundle.
const (
	EncoderSuffix = "_encoder.tflite"
	DecoderSuffix = "_decoder.tflite"
)

// downloadTimeout bounds a single asset download end to end. Graph
// exports run to tens of megabytes on slow links.
const downloadTimeout = 10 * time.Minute

// Manager resolves and fetches model bundles and sample audio files.
type Manager struct {
	settings *conf.Settings
	client   *httpclient.Client
	logger   *slog.Logger
}

// NewManager creates a manager using the shared HTTP client configuration.
func NewManager(settings *conf.Settings) *Manager {
	return NewManagerWithClient(settings, httpclient.New(nil))
}

// NewManagerWithClient creates a manager with a caller-supplied HTTP
// client. Used by tests to install a mock transport.
func NewManagerWithClient(settings *conf.Settings, client *httpclient.Client) *Manager {
	return &Manager{
		settings: settings,
		client:   client,
		logger:   logging.ForService("assets"),
	}
}

// Client returns the manager's HTTP client.
func (m *Manager) Client() *httpclient.Client {
	return m.client
}

// ModelPaths resolves the encoder and decoder graph paths from settings.
// Explicit paths win; otherwise the bundle name is resolved against the
// model directory.
func (m *Manager) ModelPaths() (encoderPath, decoderPath string, err error) {
	return ModelPaths(m.settings)
}

// ModelPaths resolves graph paths without requiring a manager, for
// callers that only load models from disk.
func ModelPaths(settings *conf.Settings) (encoderPath, decoderPath string, err error) {
	model := &settings.Model

	if model.EncoderPath != "" {
		encoderPath, err = conf.ExpandPath(model.EncoderPath)
		if err != nil {
			return "", "", err
		}
		decoderPath, err = conf.ExpandPath(model.DecoderPath)
		if err != nil {
			return "", "", err
		}
		return encoderPath, decoderPath, nil
	}

	dir, err := model.ModelDirectory()
	if err != nil {
		return "", "", err
	}

	encoderPath = filepath.Join(dir, model.Name+EncoderSuffix)
	decoderPath = filepath.Join(dir, model.Name+DecoderSuffix)
	return encoderPath, decoderPath, nil
}

// EnsureModel makes sure both graphs of the configured bundle exist
// locally, fetching any that are missing. Returns the resolved paths.
func (m *Manager) EnsureModel(ctx context.Context) (encoderPath, decoderPath string, err error) {
	encoderPath, decoderPath, err = m.ModelPaths()
	if err != nil {
		return "", "", err
	}

	// Explicit paths are never fetched, they are the user's files
	if m.settings.Model.EncoderPath != "" {
		return encoderPath, decoderPath, nil
	}

	for _, graph := range []struct {
		dest   string
		suffix string
	}{
		{encoderPath, EncoderSuffix},
		{decoderPath, DecoderSuffix},
	} {
		if _, statErr := os.Stat(graph.dest); statErr == nil {
			continue
		}
		url := m.bundleURL(m.settings.Model.Name, graph.suffix)
		if _, err := m.Fetch(ctx, url, graph.dest); err != nil {
			return "", "", err
		}
	}

	return encoderPath, decoderPath, nil
}

// FetchModel downloads both graphs of the named bundle, overwriting any
// local copies.
func (m *Manager) FetchModel(ctx context.Context, name string) error {
	dir, err := m.settings.Model.ModelDirectory()
	if err != nil {
		return err
	}

	for _, suffix := range []string{EncoderSuffix, DecoderSuffix} {
		url := m.bundleURL(name, suffix)
		dest := filepath.Join(dir, name+suffix)
		if _, err := m.Fetch(ctx, url, dest); err != nil {
			return err
		}
	}

	return nil
}

// FetchSampleAudio downloads an audio file into the output directory and
// returns the local path.
func (m *Manager) FetchSampleAudio(ctx context.Context, url string) (string, error) {
	name := path.Base(url)
	if name == "" || name == "." || name == "/" {
		return "", errors.Newf("cannot derive file name from url").
			Component("assets").
			Category(errors.CategoryDownload).
			NetworkContext(url, 0).
			Build()
	}

	dest := filepath.Join(m.settings.Transfer.OutputDir, name)
	if _, err := m.Fetch(ctx, url, dest); err != nil {
		return "", err
	}
	return dest, nil
}

func (m *Manager) bundleURL(name, suffix string) string {
	return m.settings.Model.BaseURL + "/" + name + suffix
}

// Fetch downloads url to dest. Non-2xx status is an error. The download
// goes to a temp file next to dest and is renamed into place only when
// complete, so a crashed download never leaves a partial artifact behind.
func (m *Manager) Fetch(ctx context.Context, url, dest string) (int64, error) {
	start := time.Now()

	// The deadline must cover streaming the whole body, not just the
	// request, so the client's per-request default is not enough here.
	ctx, cancel := context.WithTimeout(ctx, downloadTimeout)
	defer cancel()

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return 0, errors.New(err).
			Component("assets").
			Category(errors.CategoryFileIO).
			Context("operation", "create-directory").
			Build()
	}

	resp, err := m.client.Get(ctx, url)
	if err != nil {
		return 0, errors.New(err).
			Component("assets").
			Category(errors.CategoryNetwork).
			NetworkContext(url, httpclient.DefaultTimeout).
			Build()
	}
	defer func() {
		if err := resp.Body.Close(); err != nil && m.logger != nil {
			m.logger.Warn("Failed to close response body", "error", err)
		}
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return 0, errors.Newf("download failed with status %d for %s", resp.StatusCode, path.Base(dest)).
			Component("assets").
			Category(errors.CategoryDownload).
			NetworkContext(url, 0).
			Context("status_code", resp.StatusCode).
			Build()
	}

	tmpPath := dest + "." + uuid.NewString() + ".tmp"
	tmpFile, err := os.Create(tmpPath) //nolint:gosec // G304: path derived from application settings
	if err != nil {
		return 0, errors.New(err).
			Component("assets").
			Category(errors.CategoryFileIO).
			FileContext(tmpPath, 0).
			Build()
	}

	written, err := io.Copy(tmpFile, resp.Body)
	if err != nil {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
		return 0, errors.New(err).
			Component("assets").
			Category(errors.CategoryDownload).
			NetworkContext(url, 0).
			Timing("download", time.Since(start)).
			Build()
	}
	if err := tmpFile.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return 0, errors.New(err).
			Component("assets").
			Category(errors.CategoryFileIO).
			FileContext(tmpPath, written).
			Build()
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		_ = os.Remove(tmpPath)
		return 0, errors.New(err).
			Component("assets").
			Category(errors.CategoryFileIO).
			FileContext(dest, written).
			Build()
	}

	observability.ObserveDownload(written, time.Since(start))

	if m.logger != nil {
		m.logger.Info("Downloaded asset",
			"file", path.Base(dest),
			"bytes", written,
			"duration_ms", time.Since(start).Milliseconds())
	}

	return written, nil
}

// VerifyChecksum compares the SHA-256 of a local file against the
// expected hex digest.
func VerifyChecksum(filePath, expectedHex string) error {
	file, err := os.Open(filePath) //nolint:gosec // G304: path derived from application settings
	if err != nil {
		return errors.New(err).
			Component("assets").
			Category(errors.CategoryFileIO).
			FileContext(filePath, 0).
			Build()
	}
	defer func() { _ = file.Close() }()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return errors.New(err).
			Component("assets").
			Category(errors.CategoryFileIO).
			FileContext(filePath, 0).
			Build()
	}

	actual := hex.EncodeToString(hasher.Sum(nil))
	if actual != expectedHex {
		return errors.New(fmt.Errorf("checksum mismatch: expected %s, got %s", expectedHex, actual)).
			Component("assets").
			Category(errors.CategoryValidation).
			FileContext(filePath, 0).
			Build()
	}

	return nil
}
