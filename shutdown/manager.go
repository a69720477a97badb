// Package shutdown turns OS termination signals into context cancellation
// for the CLI entrypoint.
package shutdown

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"garden_backend/logging"
)

// Manager cancels its context on SIGINT or SIGTERM. A second signal while
// shutdown is in progress exits immediately.
type Manager struct {
	logger  *logging.Logger
	signals chan os.Signal
	exit    func(int)
}

// NewManager creates a Manager. The returned context is cancelled on the
// first termination signal.
func NewManager(parent context.Context, logger *logging.Logger) (context.Context, *Manager) {
	ctx, cancel := context.WithCancel(parent)

	m := &Manager{
		logger:  logger.Named("shutdown"),
		signals: make(chan os.Signal, 2),
		exit:    os.Exit,
	}
	signal.Notify(m.signals, syscall.SIGINT, syscall.SIGTERM)

	go m.watch(ctx, cancel)
	return ctx, m
}

func (m *Manager) watch(ctx context.Context, cancel context.CancelFunc) {
	select {
	case sig := <-m.signals:
		m.logger.Info("shutdown signal received, finishing in-flight work",
			zap.String("signal", sig.String()),
		)
		cancel()
	case <-ctx.Done():
		signal.Stop(m.signals)
		return
	}

	// A second signal means the user wants out now.
	sig := <-m.signals
	m.logger.Warn("second signal received, exiting immediately",
		zap.String("signal", sig.String()),
	)
	m.exit(1)
}

// Trigger injects a signal programmatically. Tests use this instead of
// raising real signals.
func (m *Manager) Trigger(sig os.Signal) {
	m.signals <- sig
}
