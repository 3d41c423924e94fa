package threshold

import (
	"fmt"
	"math"

	"github.com/mackerelio/checkers"
)

// Metric is a single named measurement. Textual readings like banners or
// response codes use Text, Value is NaN for them.
type Metric struct {
	Name  string
	Unit  string
	Value float64
	Text  string
}

// TextMetric creates a metric for a textual reading.
func TextMetric(name, text string) Metric {
	return Metric{Name: name, Value: math.NaN(), Text: text}
}

// Find returns the metric with the given name.
func Find(metrics []Metric, name string) (Metric, bool) {
	for _, m := range metrics {
		if m.Name == name {
			return m, true
		}
	}

	return Metric{}, false
}

// Check binds a metric to its thresholds and comparison policy.
type Check struct {
	Metric    Metric
	Threshold Pair
	Policy    Policy
}

// State returns the severity of this single metric.
func (c Check) State() checkers.Status {
	return c.Policy.Severity(c.Metric.Value, c.Threshold)
}

// Evaluate returns the worst state of all given checks.
// Thresholds are validated first, so a misconfigured check never yields a state.
func Evaluate(checks []Check) (checkers.Status, error) {
	if len(checks) == 0 {
		return checkers.UNKNOWN, ErrNoMetrics
	}

	for _, chk := range checks {
		if err := chk.Policy.Validate(chk.Threshold); err != nil {
			return checkers.UNKNOWN, fmt.Errorf("%s: %w", chk.Metric.Name, err)
		}
	}

	states := make([]checkers.Status, 0, len(checks))
	for _, chk := range checks {
		states = append(states, chk.State())
	}

	return Worst(states...), nil
}

// Worst returns the most severe state.
// UNKNOWN is not part of the OK < WARNING < CRITICAL order and wins over everything.
func Worst(states ...checkers.Status) checkers.Status {
	worst := checkers.OK
	for _, state := range states {
		switch {
		case state == checkers.UNKNOWN:
			return checkers.UNKNOWN
		case state > worst:
			worst = state
		}
	}

	return worst
}
