package assets

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tphakala/rave-go/internal/conf"
	"github.com/tphakala/rave-go/internal/httpclient"
)

const testBaseURL = "https://models.test.invalid/get_model"

func newTestManager(t *testing.T) (*Manager, string) {
	t.Helper()

	dir := t.TempDir()
	settings := &conf.Settings{
		Model: conf.ModelSettings{
			Name:       "vintage",
			Directory:  filepath.Join(dir, "models"),
			BaseURL:    testBaseURL,
			SampleRate: conf.DefaultSampleRate,
		},
		Transfer: conf.TransferSettings{
			OutputDir: filepath.Join(dir, "output"),
		},
	}

	client := httpclient.New(nil)
	httpmock.ActivateNonDefault(client.StdClient())
	t.Cleanup(httpmock.DeactivateAndReset)

	return NewManagerWithClient(settings, client), dir
}

func TestFetchWritesFile(t *testing.T) {
	manager, dir := newTestManager(t)

	httpmock.RegisterResponder(http.MethodGet, testBaseURL+"/vintage_encoder.tflite",
		httpmock.NewBytesResponder(http.StatusOK, []byte("tflite-bytes")))

	dest := filepath.Join(dir, "models", "vintage_encoder.tflite")
	written, err := manager.Fetch(context.Background(), testBaseURL+"/vintage_encoder.tflite", dest)
	require.NoError(t, err)
	assert.Equal(t, int64(len("tflite-bytes")), written)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "tflite-bytes", string(data))
}

func TestFetchNonSuccessStatus(t *testing.T) {
	manager, dir := newTestManager(t)

	httpmock.RegisterResponder(http.MethodGet, testBaseURL+"/missing_encoder.tflite",
		httpmock.NewStringResponder(http.StatusNotFound, "not found"))

	dest := filepath.Join(dir, "models", "missing_encoder.tflite")
	_, err := manager.Fetch(context.Background(), testBaseURL+"/missing_encoder.tflite", dest)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
	assert.NoFileExists(t, dest)
}

func TestFetchLeavesNoPartialFileOnError(t *testing.T) {
	manager, dir := newTestManager(t)

	httpmock.RegisterResponder(http.MethodGet, testBaseURL+"/vintage_decoder.tflite",
		httpmock.NewErrorResponder(assert.AnError))

	dest := filepath.Join(dir, "models", "vintage_decoder.tflite")
	_, err := manager.Fetch(context.Background(), testBaseURL+"/vintage_decoder.tflite", dest)
	require.Error(t, err)

	entries, err := os.ReadDir(filepath.Join(dir, "models"))
	require.NoError(t, err)
	assert.Empty(t, entries, "no temp or partial files may remain")
}

func TestEnsureModelFetchesMissingGraphs(t *testing.T) {
	manager, dir := newTestManager(t)

	httpmock.RegisterResponder(http.MethodGet, testBaseURL+"/vintage_encoder.tflite",
		httpmock.NewBytesResponder(http.StatusOK, []byte("enc")))
	httpmock.RegisterResponder(http.MethodGet, testBaseURL+"/vintage_decoder.tflite",
		httpmock.NewBytesResponder(http.StatusOK, []byte("dec")))

	encoderPath, decoderPath, err := manager.EnsureModel(context.Background())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "models", "vintage_encoder.tflite"), encoderPath)
	assert.Equal(t, filepath.Join(dir, "models", "vintage_decoder.tflite"), decoderPath)
	assert.FileExists(t, encoderPath)
	assert.FileExists(t, decoderPath)
	assert.Equal(t, 2, httpmock.GetTotalCallCount())

	// Second call finds both graphs on disk and does not fetch again
	_, _, err = manager.EnsureModel(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, httpmock.GetTotalCallCount())
}

func TestEnsureModelSkipsExplicitPaths(t *testing.T) {
	manager, dir := newTestManager(t)
	manager.settings.Model.EncoderPath = filepath.Join(dir, "my_encoder.tflite")
	manager.settings.Model.DecoderPath = filepath.Join(dir, "my_decoder.tflite")

	encoderPath, decoderPath, err := manager.EnsureModel(context.Background())
	require.NoError(t, err)
	assert.Equal(t, manager.settings.Model.EncoderPath, encoderPath)
	assert.Equal(t, manager.settings.Model.DecoderPath, decoderPath)
	assert.Equal(t, 0, httpmock.GetTotalCallCount())
}

func TestFetchSampleAudio(t *testing.T) {
	manager, dir := newTestManager(t)

	const url = "https://audio.test.invalid/samples/whistle.wav"
	httpmock.RegisterResponder(http.MethodGet, url,
		httpmock.NewBytesResponder(http.StatusOK, []byte("RIFFdata")))

	localPath, err := manager.FetchSampleAudio(context.Background(), url)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "output", "whistle.wav"), localPath)
	assert.FileExists(t, localPath)
}

func TestFetchStreamsBodyOverRealTransport(t *testing.T) {
	t.Parallel()

	// A graph-sized body whose bulk arrives after the response headers.
	// The mock transport used elsewhere bypasses the client's context
	// handling, so this goes through a real server.
	payload := bytes.Repeat([]byte{0x5a}, 1<<20)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.(http.Flusher).Flush()
		time.Sleep(150 * time.Millisecond)
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	dir := t.TempDir()
	settings := &conf.Settings{
		Model: conf.ModelSettings{
			Name:      "vintage",
			Directory: filepath.Join(dir, "models"),
			BaseURL:   srv.URL,
		},
	}
	manager := NewManager(settings)

	dest := filepath.Join(dir, "models", "vintage_encoder.tflite")
	written, err := manager.Fetch(context.Background(), srv.URL+"/vintage_encoder.tflite", dest)
	require.NoError(t, err)
	assert.Equal(t, int64(len(payload)), written)

	info, err := os.Stat(dest)
	require.NoError(t, err)
	assert.Equal(t, int64(len(payload)), info.Size())
}

func TestVerifyChecksum(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	filePath := filepath.Join(dir, "model.tflite")
	content := []byte("model-bytes")
	require.NoError(t, os.WriteFile(filePath, content, 0o644))

	sum := sha256.Sum256(content)
	good := hex.EncodeToString(sum[:])

	require.NoError(t, VerifyChecksum(filePath, good))
	require.ErrorContains(t, VerifyChecksum(filePath, "deadbeef"), "checksum mismatch")
}
