package monitor

import (
	"context"
	"errors"
	"log"
	"strings"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

type stubController struct {
	state       ResourceState
	describeErr error
	stopErr     error
	stopCalls   int
}

func (c *stubController) Start(context.Context, string) error { return nil }

func (c *stubController) Stop(context.Context, string) error {
	c.stopCalls++
	return c.stopErr
}

func (c *stubController) DescribeState(context.Context, string) (ResourceState, error) {
	return c.state, c.describeErr
}

type stubSource struct {
	samples []Sample
	err     error
	calls   int
}

func (s *stubSource) FetchSeries(context.Context, string, string, time.Duration, time.Duration) ([]Sample, error) {
	s.calls++
	return s.samples, s.err
}

type stubNotifier struct {
	sent []string
	err  error
}

func (n *stubNotifier) Send(_ context.Context, _ string, text string) error {
	n.sent = append(n.sent, text)
	return n.err
}

func flatSeries(values ...float64) []Sample {
	samples := make([]Sample, 0, len(values))
	for i, v := range values {
		samples = append(samples, Sample{
			Timestamp: time.Date(2025, time.November, 3, 18, 0, 0, 0, time.UTC).Add(time.Duration(i) * 5 * time.Minute),
			Value:     v,
		})
	}
	return samples
}

func testConfig() Config {
	return Config{
		ResourceID:    "i-0123456789abcdef0",
		MetricName:    "NetworkOut",
		Period:        300 * time.Second,
		Lookback:      time.Hour,
		FetchTimeout:  5 * time.Second,
		MinSamples:    7,
		WindowSamples: 6,
		Threshold:     2000,
		NotifyChannel: "general",
	}
}

func testMonitor(c *stubController, s *stubSource, n *stubNotifier) *Monitor {
	return New(c, s, n, testConfig(), WithLogger(log.New(testWriter{}, "", 0)))
}

type testWriter struct{}

func (testWriter) Write(p []byte) (int, error) { return len(p), nil }

func TestTickStopsIdleResourceExactlyOnce(t *testing.T) {
	controller := &stubController{state: StateRunning}
	source := &stubSource{samples: flatSeries(500, 500, 500, 500, 500, 500, 500, 500)}
	notifier := &stubNotifier{}

	before := shutdownCount(t)

	err := testMonitor(controller, source, notifier).Tick(context.Background())
	require.NoError(t, err)

	require.Equal(t, 1, controller.stopCalls)
	require.Len(t, notifier.sent, 1)
	require.Contains(t, notifier.sent[0], "Shutting server down due to inactivity")
	require.Contains(t, notifier.sent[0], "500, 500, 500, 500, 500, 500")
	require.Equal(t, before+1, shutdownCount(t))
}

func TestTickKeepsBusyResourceRunning(t *testing.T) {
	controller := &stubController{state: StateRunning}
	source := &stubSource{samples: flatSeries(0, 0, 0, 0, 0, 2500, 0, 0)}
	notifier := &stubNotifier{}

	err := testMonitor(controller, source, notifier).Tick(context.Background())
	require.NoError(t, err)

	require.Zero(t, controller.stopCalls)
	require.Empty(t, notifier.sent)
}

func TestTickNeverShutsDownOnShortHistory(t *testing.T) {
	controller := &stubController{state: StateRunning}
	source := &stubSource{samples: flatSeries(0, 0, 0, 0, 0)}
	notifier := &stubNotifier{}

	err := testMonitor(controller, source, notifier).Tick(context.Background())
	require.NoError(t, err)

	require.Zero(t, controller.stopCalls)
}

func TestTickToleratesEmptySeries(t *testing.T) {
	controller := &stubController{state: StateRunning}
	source := &stubSource{}
	notifier := &stubNotifier{}

	err := testMonitor(controller, source, notifier).Tick(context.Background())
	require.NoError(t, err)

	require.Zero(t, controller.stopCalls)
}

func TestTickSkipsStoppedResourceWithoutSampling(t *testing.T) {
	controller := &stubController{state: StateStopped}
	source := &stubSource{}
	notifier := &stubNotifier{}

	err := testMonitor(controller, source, notifier).Tick(context.Background())
	require.NoError(t, err)

	require.Zero(t, source.calls)
	require.Zero(t, controller.stopCalls)
}

func TestTickAbandonsCycleOnFetchFailure(t *testing.T) {
	controller := &stubController{state: StateRunning}
	source := &stubSource{err: errors.New("throttled")}
	notifier := &stubNotifier{}

	err := testMonitor(controller, source, notifier).Tick(context.Background())
	require.Error(t, err)

	require.Zero(t, controller.stopCalls)
	require.Empty(t, notifier.sent)
}

func TestTickAbandonsCycleOnDescribeFailure(t *testing.T) {
	controller := &stubController{describeErr: errors.New("unreachable")}
	source := &stubSource{}
	notifier := &stubNotifier{}

	err := testMonitor(controller, source, notifier).Tick(context.Background())
	require.Error(t, err)

	require.Zero(t, source.calls)
}

func TestTickLogsButSurvivesNotifierFailure(t *testing.T) {
	controller := &stubController{state: StateRunning}
	source := &stubSource{samples: flatSeries(0, 0, 0, 0, 0, 0, 0)}
	notifier := &stubNotifier{err: errors.New("broker down")}

	err := testMonitor(controller, source, notifier).Tick(context.Background())
	require.NoError(t, err)

	require.Equal(t, 1, controller.stopCalls)
}

func TestStartStopsLoopOnCancel(t *testing.T) {
	controller := &stubController{state: StateStopped}
	source := &stubSource{}
	notifier := &stubNotifier{}

	cfg := testConfig()
	cfg.Period = 10 * time.Millisecond
	mon := New(controller, source, notifier, cfg, WithLogger(log.New(testWriter{}, "", 0)))

	ctx, cancel := context.WithCancel(context.Background())
	go mon.Start(ctx)

	time.Sleep(50 * time.Millisecond)
	cancel()

	done := make(chan struct{})
	go func() {
		mon.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop after cancel")
	}
}

func TestShutdownMessageListsInspectedValues(t *testing.T) {
	msg := shutdownMessage([]float64{500, 0, 120.5})
	require.True(t, strings.HasPrefix(msg, "Shutting server down due to inactivity"))
	require.Contains(t, msg, "500, 0, 120.5")
}

func shutdownCount(t *testing.T) float64 {
	t.Helper()
	metric := &dto.Metric{}
	require.NoError(t, shutdownCounter.Write(metric))
	return metric.GetCounter().GetValue()
}
