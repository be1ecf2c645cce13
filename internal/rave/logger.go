package rave

import (
	"log/slog"
	"sync"

	"github.com/tphakala/rave-go/internal/logging"
)

var (
	serviceLogger *slog.Logger
	initOnce      sync.Once
)

// GetLogger returns the package logger scoped to the rave service.
func GetLogger() *slog.Logger {
	initOnce.Do(func() {
		serviceLogger = logging.ForService("rave")
	})
	return serviceLogger
}
