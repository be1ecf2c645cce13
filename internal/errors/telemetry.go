// Package errors - telemetry integration (optional)
package errors

import (
	"fmt"
	"regexp"
	"sync"
	"sync/atomic"

	"github.com/getsentry/sentry-go"
)

// TelemetryReporter is an interface for reporting errors to telemetry systems
type TelemetryReporter interface {
	ReportError(ee *EnhancedError)
	IsEnabled() bool
}

var (
	telemetryReporter   TelemetryReporter
	telemetryReporterMu sync.RWMutex

	// hasActiveReporting lets Build skip component/category detection
	// entirely when no reporter is installed.
	hasActiveReporting atomic.Bool
)

// SetTelemetryReporter installs the reporter used by Build. Passing nil
// disables reporting.
func SetTelemetryReporter(reporter TelemetryReporter) {
	telemetryReporterMu.Lock()
	telemetryReporter = reporter
	telemetryReporterMu.Unlock()
	hasActiveReporting.Store(reporter != nil && reporter.IsEnabled())
}

func reportToTelemetry(ee *EnhancedError) {
	telemetryReporterMu.RLock()
	reporter := telemetryReporter
	telemetryReporterMu.RUnlock()

	if reporter == nil || !reporter.IsEnabled() {
		return
	}
	reporter.ReportError(ee)
}

// SentryReporter implements TelemetryReporter for Sentry
type SentryReporter struct {
	enabled bool
}

// NewSentryReporter creates a new Sentry telemetry reporter
func NewSentryReporter(enabled bool) *SentryReporter {
	return &SentryReporter{enabled: enabled}
}

// IsEnabled returns whether Sentry telemetry is enabled
func (sr *SentryReporter) IsEnabled() bool {
	return sr.enabled
}

// ReportError reports an enhanced error to Sentry with privacy protection
func (sr *SentryReporter) ReportError(ee *EnhancedError) {
	if !sr.enabled || ee.IsReported() {
		return
	}

	message := scrubMessage(fmt.Sprintf("[%s] %s", ee.Category, ee.Err.Error()))

	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("component", ee.GetComponent())
		scope.SetTag("category", string(ee.Category))
		scope.SetTag("error_type", fmt.Sprintf("%T", ee.Err))

		for key, value := range ee.GetContext() {
			scrubbed := value
			if strValue, ok := value.(string); ok {
				scrubbed = scrubMessage(strValue)
			}
			scope.SetContext(key, map[string]any{"value": scrubbed})
		}

		scope.SetLevel(errorLevel(ee.Category))
		scope.SetFingerprint([]string{ee.GetComponent(), string(ee.Category)})

		sentry.CaptureMessage(message)
	})

	ee.MarkReported()
}

// errorLevel maps categories to Sentry severity levels
func errorLevel(category ErrorCategory) sentry.Level {
	switch category {
	case CategoryModelInit, CategoryModelLoad, CategoryValidation:
		return sentry.LevelError
	case CategoryNetwork, CategoryDownload, CategoryTimeout:
		return sentry.LevelWarning
	default:
		return sentry.LevelError
	}
}

// Patterns that may leak local information in error messages.
var (
	homePathPattern = regexp.MustCompile(`(/home/|/Users/|C:\\Users\\)[^/\\\s]+`)
	urlPattern      = regexp.MustCompile(`https?://[^\s"']+`)
	ipPattern       = regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`)
)

// scrubMessage removes user paths, URLs and IP addresses from messages
// before they leave the process.
func scrubMessage(msg string) string {
	msg = homePathPattern.ReplaceAllString(msg, "$1<user>")
	msg = urlPattern.ReplaceAllString(msg, "<url>")
	msg = ipPattern.ReplaceAllString(msg, "<ip>")
	return msg
}
