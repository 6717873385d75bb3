package common

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// ServerLifecycleManager runs a single long-lived service until the
// process receives SIGINT/SIGTERM, the caller's context is cancelled, or
// the service itself reports a fatal error.
type ServerLifecycleManager struct {
	shutdownTimeout time.Duration
	errorCh         chan error
}

func NewServerLifecycleManager(shutdownTimeout time.Duration) *ServerLifecycleManager {
	if shutdownTimeout == 0 {
		shutdownTimeout = 30 * time.Second
	}

	return &ServerLifecycleManager{
		shutdownTimeout: shutdownTimeout,
		errorCh:         make(chan error, 1),
	}
}

// ServiceConfig describes a start/stop pair the lifecycle manager drives.
type ServiceConfig struct {
	StartFunc func() error
	StopFunc  func() error
	Name      string
}

// RunService starts config.StartFunc in the background and blocks until
// a shutdown signal, ctx cancellation, or a fatal error from StartFunc;
// it then calls StopFunc if set.
func (slm *ServerLifecycleManager) RunService(ctx context.Context, config ServiceConfig) error {
	go func() {
		if err := config.StartFunc(); err != nil {
			slm.errorCh <- fmt.Errorf("%s service error: %w", config.Name, err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case <-ctx.Done():
	case <-sigCh:
	case err := <-slm.errorCh:
		if config.StopFunc != nil {
			_ = config.StopFunc()
		}
		return err
	}

	if config.StopFunc != nil {
		return config.StopFunc()
	}

	return nil
}
