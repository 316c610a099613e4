// Package monitor samples resource telemetry and shuts idle resources down.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
)

// ResourceState describes the managed resource's lifecycle state.
type ResourceState string

const (
	StateRunning ResourceState = "running"
	StateStopped ResourceState = "stopped"
	StateUnknown ResourceState = "unknown"
)

// ResourceController starts and stops the managed compute resource. All
// operations are idempotent; stopping a stopped resource is not an error.
type ResourceController interface {
	Start(ctx context.Context, resourceID string) error
	Stop(ctx context.Context, resourceID string) error
	DescribeState(ctx context.Context, resourceID string) (ResourceState, error)
}

// Sample is one datapoint of the fetched telemetry series.
type Sample struct {
	Timestamp time.Time
	Value     float64
}

// MetricSource fetches a trailing telemetry series for a resource, oldest
// first. Gaps in the series simply yield fewer samples.
type MetricSource interface {
	FetchSeries(ctx context.Context, resourceID, metricName string, window, period time.Duration) ([]Sample, error)
}

// Notifier delivers a human-readable message, best effort.
type Notifier interface {
	Send(ctx context.Context, channelID, text string) error
}

// Config carries the monitor's tunables.
type Config struct {
	ResourceID    string
	MetricName    string
	Period        time.Duration
	Lookback      time.Duration
	FetchTimeout  time.Duration
	MinSamples    int
	WindowSamples int
	Threshold     float64
	NotifyChannel string
}

// Monitor periodically applies the idle decision rule to one resource.
type Monitor struct {
	resources        ResourceController
	metrics          MetricSource
	notifier         Notifier
	cfg              Config
	logger           *log.Logger
	shutdownComplete chan struct{}
}

// Option configures optional behaviour for the Monitor.
type Option func(*Monitor)

// WithLogger overrides the logger used to report tick outcomes.
func WithLogger(logger *log.Logger) Option {
	return func(m *Monitor) {
		m.logger = logger
	}
}

// New constructs a Monitor.
func New(resources ResourceController, metrics MetricSource, notifier Notifier, cfg Config, opts ...Option) *Monitor {
	m := &Monitor{
		resources:        resources,
		metrics:          metrics,
		notifier:         notifier,
		cfg:              cfg,
		logger:           log.New(log.Writer(), "[idlewatch] ", log.LstdFlags),
		shutdownComplete: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start launches the tick loop. It should be called in a goroutine. Ticks run
// sequentially on the loop goroutine, so at most one is in flight; a tick that
// overruns simply delays the next one.
func (m *Monitor) Start(ctx context.Context) {
	ticker := time.NewTicker(m.cfg.Period)
	defer func() {
		ticker.Stop()
		close(m.shutdownComplete)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if err := m.Tick(ctx); err != nil && !errors.Is(err, context.Canceled) {
			m.logger.Printf("tick error: %v", err)
		}
	}
}

// Wait blocks until the monitor loop has stopped.
func (m *Monitor) Wait() {
	<-m.shutdownComplete
}

// Tick runs one sampling-and-decision cycle. External calls share a single
// deadline; on any fetch failure the cycle is abandoned and retried at the
// next period, never within it.
func (m *Monitor) Tick(ctx context.Context) error {
	recordTick()

	ctx, cancel := context.WithTimeout(ctx, m.cfg.FetchTimeout)
	defer cancel()

	state, err := m.resources.DescribeState(ctx, m.cfg.ResourceID)
	if err != nil {
		recordSkip("describe_error")
		return fmt.Errorf("describe resource state: %w", err)
	}
	if state != StateRunning {
		recordSkip("not_running")
		return nil
	}

	samples, err := m.metrics.FetchSeries(ctx, m.cfg.ResourceID, m.cfg.MetricName, m.cfg.Lookback, m.cfg.Period)
	if err != nil {
		recordSkip("fetch_error")
		return fmt.Errorf("fetch metric series: %w", err)
	}

	values := make([]float64, 0, len(samples))
	for _, sample := range samples {
		values = append(values, sample.Value)
	}

	decision := Decide(values, m.cfg.MinSamples, m.cfg.WindowSamples, m.cfg.Threshold)
	recordDecision(decision)
	if !decision.ShutDown {
		return nil
	}

	if err := m.resources.Stop(ctx, m.cfg.ResourceID); err != nil {
		return fmt.Errorf("stop resource: %w", err)
	}
	recordShutdown()
	m.logger.Printf("resource %s stopped after sustained low traffic (inspected: %s)", m.cfg.ResourceID, formatValues(decision.Inspected))

	// Best effort: the shutdown already happened, a lost notification is only logged.
	if err := m.notifier.Send(ctx, m.cfg.NotifyChannel, shutdownMessage(decision.Inspected)); err != nil {
		m.logger.Printf("notify error: %v", err)
	}
	return nil
}

func shutdownMessage(inspected []float64) string {
	return fmt.Sprintf("Shutting server down due to inactivity. Results: %s", formatValues(inspected))
}

func formatValues(values []float64) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, fmt.Sprintf("%g", v))
	}
	return strings.Join(parts, ", ")
}
