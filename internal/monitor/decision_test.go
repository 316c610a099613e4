package monitor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	testMinSamples = 7
	testWindow     = 6
	testThreshold  = 2000
)

func decide(values []float64) Decision {
	return Decide(values, testMinSamples, testWindow, testThreshold)
}

func TestDecideInsufficientHistoryNeverShutsDown(t *testing.T) {
	require.False(t, decide(nil).ShutDown)
	require.False(t, decide([]float64{}).ShutDown)
	require.False(t, decide([]float64{0, 0, 0, 0, 0}).ShutDown)
	require.False(t, decide([]float64{0, 0, 0, 0, 0, 0}).ShutDown)
}

func TestDecideSingleHighSampleVetoesShutdown(t *testing.T) {
	// Eight samples, one spike inside the trailing six.
	values := []float64{0, 0, 0, 0, 0, 2500, 0, 0}
	d := decide(values)
	require.False(t, d.ShutDown)
	require.Equal(t, []float64{0, 0, 0, 2500, 0, 0}, d.Inspected)
}

func TestDecideSustainedLowTrafficShutsDown(t *testing.T) {
	values := []float64{9000, 9000, 500, 500, 500, 500, 500, 500}
	d := decide(values)
	require.True(t, d.ShutDown)
	require.Equal(t, []float64{500, 500, 500, 500, 500, 500}, d.Inspected)
}

func TestDecideSpikeOutsideTrailingWindowIsIgnored(t *testing.T) {
	// High traffic an hour ago does not keep the resource alive now.
	values := []float64{9999, 9999, 0, 0, 0, 0, 0, 0}
	require.True(t, decide(values).ShutDown)
}

func TestDecideThresholdIsStrict(t *testing.T) {
	// Exactly at the threshold does not count as activity.
	values := []float64{0, 0, 2000, 2000, 2000, 2000, 2000, 2000}
	require.True(t, decide(values).ShutDown)

	values[5] = 2000.5
	require.False(t, decide(values).ShutDown)
}

func TestDecideExactMinimumSampleCount(t *testing.T) {
	values := []float64{0, 0, 0, 0, 0, 0, 0}
	d := decide(values)
	require.True(t, d.ShutDown)
	require.Len(t, d.Inspected, testWindow)
}
