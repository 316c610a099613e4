package monitor

// Decision is the outcome of one idle evaluation. Inspected holds the
// trailing-window values the rule looked at, for the shutdown notification.
type Decision struct {
	ShutDown  bool
	Inspected []float64
}

// Decide applies the idle rule to a chronologically ordered series (oldest
// first). With fewer than minSamples datapoints the resource is always kept
// running, which protects a freshly started resource from its own empty
// history. Otherwise the trailing window of windowSamples values defaults the
// decision to shut down, and any single value strictly above threshold vetoes
// it. There is no hysteresis and no majority rule.
func Decide(values []float64, minSamples, windowSamples int, threshold float64) Decision {
	if len(values) < minSamples {
		return Decision{}
	}

	window := values
	if len(window) > windowSamples {
		window = window[len(window)-windowSamples:]
	}
	inspected := append([]float64(nil), window...)

	for _, v := range inspected {
		if v > threshold {
			return Decision{Inspected: inspected}
		}
	}
	return Decision{ShutDown: true, Inspected: inspected}
}
