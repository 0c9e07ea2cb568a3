package device

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"
)

// Monitor polls a Prober and calls OnDisconnect when the external output
// in use goes away
type Monitor struct {
	prober       Prober
	interval     time.Duration
	onDisconnect func(Output)
	logger       *slog.Logger

	last *Output
}

func NewMonitor(prober Prober, interval time.Duration, onDisconnect func(Output), logger *slog.Logger) *Monitor {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Monitor{
		prober:       prober,
		interval:     interval,
		onDisconnect: onDisconnect,
		logger:       logger.With("component", "device"),
	}
}

// Start runs the monitor in the background until ctx is done
func (m *Monitor) Start(ctx context.Context) {
	go m.Run(ctx)
}

// Run polls until ctx is done. It returns early when the platform has no
// probe.
func (m *Monitor) Run(ctx context.Context) {
	if !m.poll(ctx) {
		return
	}
	if m.last != nil {
		m.logger.Info("initial audio output", "name", m.last.Name, "type", m.last.Type.String())
	}

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			m.logger.Debug("audio monitor stopped")
			return
		case <-ticker.C:
			if !m.poll(ctx) {
				return
			}
		}
	}
}

// poll probes once; false means stop polling
func (m *Monitor) poll(ctx context.Context) bool {
	outputs, err := m.prober.Outputs(ctx)
	if errors.Is(err, ErrUnsupported) {
		m.logger.Info("audio monitor disabled", "reason", err.Error())
		return false
	}
	if err != nil {
		if ctx.Err() == nil {
			m.logger.Debug("audio output probe failed", "error", err)
		}
		return true
	}
	if lost, ok := m.observe(outputs); ok && m.onDisconnect != nil {
		m.logger.Info("external audio output lost", "name", lost.Name)
		m.onDisconnect(lost)
	}
	return true
}

// observe folds one probe result into the monitor state and reports the
// external output that disappeared, if any
func (m *Monitor) observe(outputs []Output) (Output, bool) {
	cur := current(outputs)
	if cur == nil {
		return Output{}, false
	}
	next := *cur
	prev := m.last
	m.last = &next

	if prev == nil || !prev.Type.External() {
		return Output{}, false
	}
	if !next.Type.External() {
		return *prev, true
	}
	if !sameDevice(next.Name, prev.Name) && !stillConnected(prev.Name, outputs) {
		return *prev, true
	}
	return Output{}, false
}

func stillConnected(name string, outputs []Output) bool {
	for _, o := range outputs {
		if o.Connected && sameDevice(o.Name, name) {
			return true
		}
	}
	return false
}
