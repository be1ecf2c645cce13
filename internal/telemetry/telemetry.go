// Package telemetry provides opt-in error tracking via Sentry.
//
// Telemetry is disabled by default and only activated when the user has
// explicitly enabled it in the configuration. Events are scrubbed of
// user paths and URLs before they leave the process (see the errors
// package reporter).
package telemetry

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/tphakala/rave-go/internal/conf"
	"github.com/tphakala/rave-go/internal/errors"
	"github.com/tphakala/rave-go/internal/logging"
)

var serviceLogger *slog.Logger

// Init configures Sentry from settings and installs the error reporter.
// A no-op when telemetry is disabled.
func Init(settings *conf.Settings, version string) error {
	serviceLogger = logging.ForService("telemetry")

	if !settings.Sentry.Enabled {
		errors.SetTelemetryReporter(nil)
		return nil
	}

	if settings.Sentry.DSN == "" {
		return errors.Newf("telemetry enabled but no DSN configured").
			Component("telemetry").
			Category(errors.CategoryConfiguration).
			Build()
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:        settings.Sentry.DSN,
		SampleRate: 1.0,
		Debug:      false,

		AttachStacktrace: false, // Keep events anonymous
		Environment:      "production",
		ServerName:       "", // Explicitly clear server name to prevent hostname leakage

		Release: fmt.Sprintf("rave-go@%s", version),
	})
	if err != nil {
		return fmt.Errorf("sentry initialization failed: %w", err)
	}

	errors.SetTelemetryReporter(errors.NewSentryReporter(true))

	if serviceLogger != nil {
		serviceLogger.Info("Telemetry enabled")
	}
	return nil
}

// Flush drains pending events. Called on shutdown.
func Flush(timeout time.Duration) {
	sentry.Flush(timeout)
}
