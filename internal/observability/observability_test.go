package observability

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The package collectors are shared process-wide, so the recording
// helpers must be safe to call from concurrent pipelines.
func TestConcurrentRecording(t *testing.T) {
	const numGoroutines = 50

	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	for range numGoroutines {
		go func() {
			defer wg.Done()
			TransferStarted()
			ObserveEncode(10*time.Millisecond, 4)
			ObserveDecode(10*time.Millisecond, 4)
			ObserveDownload(1024, 50*time.Millisecond)
			TransferFinished(nil)
		}()
	}
	wg.Wait()
}

func TestHandlerServesRegistry(t *testing.T) {
	ObserveEncode(5*time.Millisecond, 1)
	TransferStarted()
	TransferFinished(nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody)
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "rave_encode_duration_seconds")
	assert.Contains(t, body, "rave_encode_windows_total")
	assert.Contains(t, body, `rave_transfers_total{status="ok"}`)
	assert.Contains(t, body, "go_goroutines")
}
