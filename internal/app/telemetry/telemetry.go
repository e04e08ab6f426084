//go:generate mockgen -source=telemetry.go -destination=telemetry_mock.go -package=telemetry
package telemetry

import (
	"fmt"

	"github.com/getsentry/sentry-go"

	"lesswatch/internal/app/errors"
	"lesswatch/internal/config"
	"lesswatch/internal/config/logger"
)

// Telemetry reports fatal errors to an error tracking service
type Telemetry interface {
	CaptureError(err error)
	Flush()
}

type telemetry struct {
	hub *sentry.Hub
	log logger.Logger
}

type noop struct{}

// NewTelemetry creates a sentry backed reporter when a DSN is configured, a no-op otherwise
func NewTelemetry(cfg *config.Config, log logger.Logger) (Telemetry, error) {
	return newTelemetry(cfg, log, nil)
}

func newTelemetry(cfg *config.Config, log logger.Logger, beforeSend func(*sentry.Event, *sentry.EventHint) *sentry.Event) (Telemetry, error) {
	log = log.WithComponent("TELEMETRY")

	if cfg.Telemetry.DSN == "" {
		log.Debug().Msg("Telemetry disabled")
		return noop{}, nil
	}

	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:              cfg.Telemetry.DSN,
		Release:          fmt.Sprintf("%s@%s", config.AppName, config.Version),
		AttachStacktrace: true,
		BeforeSend:       beforeSend,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrFailedToInitTelemetry, err)
	}

	hub := sentry.NewHub(client, sentry.NewScope())
	hub.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag("build", fmt.Sprintf("%t", cfg.Build))
	})

	log.Debug().Msg("Telemetry enabled")

	return &telemetry{hub: hub, log: log}, nil
}

// CaptureError sends err to the error tracker
func (t *telemetry) CaptureError(err error) {
	if err == nil {
		return
	}

	if id := t.hub.CaptureException(err); id != nil {
		t.log.Debug().Msgf("Captured error event %s", *id)
	}
}

// Flush waits for queued events to be delivered
func (t *telemetry) Flush() {
	if !t.hub.Flush(config.TelemetryFlushTimeout) {
		t.log.Warn().Msg("Timed out flushing telemetry events")
	}
}

func (noop) CaptureError(error) {}

func (noop) Flush() {}
