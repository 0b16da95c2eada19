// Package bridge manages the auxiliary data-access subprocess some
// deployments put in front of the database. The handle is explicit and
// lifecycle-managed: started once per process, health-checked before use,
// stopped on shutdown. No lazily initialized globals.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/voice-support-agent/internal/config"
)

// ErrNotRunning is returned by Healthy when the subprocess is absent or dead.
var ErrNotRunning = errors.New("bridge process not running")

const healthPollInterval = 200 * time.Millisecond

// Bridge owns the subprocess handle.
type Bridge struct {
	cfg    config.BridgeConfig
	logger *zap.Logger

	mu      sync.Mutex
	cmd     *exec.Cmd
	started bool
}

// New creates an unstarted bridge. When no command is configured the bridge
// is a no-op and every method succeeds.
func New(cfg config.BridgeConfig, logger *zap.Logger) *Bridge {
	return &Bridge{cfg: cfg, logger: logger}
}

// Enabled reports whether a subprocess is configured at all.
func (b *Bridge) Enabled() bool {
	return b.cfg.Command != ""
}

// Start launches the subprocess and waits for it to look alive, bounded by
// the configured ready timeout. Calling Start twice is an error.
func (b *Bridge) Start(ctx context.Context) error {
	if !b.Enabled() {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.started {
		return errors.New("bridge already started")
	}

	cmd := exec.CommandContext(ctx, b.cfg.Command, b.cfg.Args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start bridge process: %w", err)
	}
	b.cmd = cmd
	b.started = true
	b.logger.Info("bridge process started",
		zap.String("command", b.cfg.Command),
		zap.Int("pid", cmd.Process.Pid))

	return b.awaitReadyLocked(ctx)
}

// awaitReadyLocked polls process liveness until the ready deadline. The
// original design slept a fixed interval and assumed readiness; polling with
// a bound keeps startup honest without depending on the subprocess protocol.
func (b *Bridge) awaitReadyLocked(ctx context.Context) error {
	deadline := time.Now().Add(b.cfg.ReadyTimeout())
	ticker := time.NewTicker(healthPollInterval)
	defer ticker.Stop()

	for {
		if err := b.healthLocked(); err == nil {
			b.logger.Info("bridge process ready")
			return nil
		}
		if time.Now().After(deadline) {
			return errors.New("bridge process did not become ready")
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Healthy verifies the subprocess is still alive. Store operations call this
// before touching the database when the bridge is enabled.
func (b *Bridge) Healthy() error {
	if !b.Enabled() {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.healthLocked()
}

func (b *Bridge) healthLocked() error {
	if b.cmd == nil || b.cmd.Process == nil {
		return ErrNotRunning
	}
	// Signal 0 probes existence without touching the process.
	if err := b.cmd.Process.Signal(probeSignal); err != nil {
		return ErrNotRunning
	}
	return nil
}

// Stop terminates the subprocess and reaps it.
func (b *Bridge) Stop() {
	if !b.Enabled() {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cmd == nil || b.cmd.Process == nil {
		return
	}
	if err := b.cmd.Process.Kill(); err != nil {
		b.logger.Warn("kill bridge process", zap.Error(err))
	}
	_ = b.cmd.Wait()
	b.cmd = nil
	b.started = false
	b.logger.Info("bridge process stopped")
}
