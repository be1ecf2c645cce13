// Package observability exposes Prometheus metrics for inference and
// asset downloads, served by the audition server's /metrics endpoint.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all collectors of this process.
var Registry = prometheus.NewRegistry()

var (
	encodeDuration = promauto.With(Registry).NewHistogram(prometheus.HistogramOpts{
		Name:    "rave_encode_duration_seconds",
		Help:    "Time taken to encode audio into the latent space",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
	})
	decodeDuration = promauto.With(Registry).NewHistogram(prometheus.HistogramOpts{
		Name:    "rave_decode_duration_seconds",
		Help:    "Time taken to synthesize audio from the latent space",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
	})
	encodeChunks = promauto.With(Registry).NewCounter(prometheus.CounterOpts{
		Name: "rave_encode_windows_total",
		Help: "Number of encoder windows invoked",
	})
	decodeChunks = promauto.With(Registry).NewCounter(prometheus.CounterOpts{
		Name: "rave_decode_windows_total",
		Help: "Number of decoder windows invoked",
	})
	downloadBytes = promauto.With(Registry).NewCounter(prometheus.CounterOpts{
		Name: "rave_download_bytes_total",
		Help: "Bytes downloaded for models and sample audio",
	})
	downloadDuration = promauto.With(Registry).NewHistogram(prometheus.HistogramOpts{
		Name:    "rave_download_duration_seconds",
		Help:    "Time taken to download an asset",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
	})
	transfersActive = promauto.With(Registry).NewGauge(prometheus.GaugeOpts{
		Name: "rave_transfers_active",
		Help: "Number of timbre transfers currently running",
	})
	transfersTotal = promauto.With(Registry).NewCounterVec(prometheus.CounterOpts{
		Name: "rave_transfers_total",
		Help: "Completed timbre transfers by outcome",
	}, []string{"status"})
)

func init() {
	Registry.MustRegister(collectors.NewGoCollector())
	Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
}

// ObserveEncode records one encode call.
func ObserveEncode(d time.Duration, windows int) {
	encodeDuration.Observe(d.Seconds())
	encodeChunks.Add(float64(windows))
}

// ObserveDecode records one decode call.
func ObserveDecode(d time.Duration, windows int) {
	decodeDuration.Observe(d.Seconds())
	decodeChunks.Add(float64(windows))
}

// ObserveDownload records one completed asset download.
func ObserveDownload(bytes int64, d time.Duration) {
	downloadBytes.Add(float64(bytes))
	downloadDuration.Observe(d.Seconds())
}

// TransferStarted marks a transfer as running.
func TransferStarted() {
	transfersActive.Inc()
}

// TransferFinished marks a transfer as done with the given outcome.
func TransferFinished(err error) {
	transfersActive.Dec()
	if err != nil {
		transfersTotal.WithLabelValues("error").Inc()
	} else {
		transfersTotal.WithLabelValues("ok").Inc()
	}
}

// Handler returns the HTTP handler serving the registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
