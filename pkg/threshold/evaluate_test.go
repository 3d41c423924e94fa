package threshold

import (
	"errors"
	"testing"

	"github.com/mackerelio/checkers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadChecks(values, warning, critical []float64) []Check {
	names := []string{"load1", "load5", "load15"}
	checks := make([]Check, 0, len(values))
	for i := range values {
		checks = append(checks, Check{
			Metric:    Metric{Name: names[i], Value: values[i]},
			Threshold: Pair{Warning: warning[i], Critical: critical[i]},
			Policy:    Ascending,
		})
	}

	return checks
}

func TestEvaluateAggregation(t *testing.T) {
	t.Parallel()

	warn := []float64{1, 3, 5}
	crit := []float64{5, 7, 9}

	for _, data := range []struct {
		values   []float64
		expected checkers.Status
	}{
		{[]float64{0.1, 0.2, 0.3}, checkers.OK},
		{[]float64{1.0, 4.0, 6.0}, checkers.WARNING},
		{[]float64{0.1, 0.2, 5.5}, checkers.WARNING},
		{[]float64{0.1, 7.0, 0.3}, checkers.CRITICAL},
		{[]float64{5.0, 0.2, 0.3}, checkers.CRITICAL},
	} {
		state, err := Evaluate(loadChecks(data.values, warn, crit))
		require.NoError(t, err)
		assert.Equalf(t, data.expected, state, "load %v", data.values)
	}
}

func TestEvaluateMixedPolicies(t *testing.T) {
	t.Parallel()

	checks := []Check{
		{Metric: Metric{Name: "pl", Value: 25}, Threshold: Pair{10, 20}, Policy: Ascending},
		{Metric: Metric{Name: "rta", Value: 50}, Threshold: Pair{100, 200}, Policy: Ascending},
	}
	state, err := Evaluate(checks)
	require.NoError(t, err)
	assert.Equal(t, checkers.CRITICAL, state)

	// order does not matter
	checks[0], checks[1] = checks[1], checks[0]
	state2, err := Evaluate(checks)
	require.NoError(t, err)
	assert.Equal(t, state, state2)
}

func TestEvaluateIdempotent(t *testing.T) {
	t.Parallel()

	checks := loadChecks([]float64{1.0, 4.0, 6.0}, []float64{1, 3, 5}, []float64{5, 7, 9})
	first, err := Evaluate(checks)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := Evaluate(checks)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestEvaluateErrors(t *testing.T) {
	t.Parallel()

	_, err := Evaluate(nil)
	assert.Truef(t, errors.Is(err, ErrNoMetrics), "empty input")

	_, err = Evaluate([]Check{{Metric: Metric{Name: "users", Value: 1}, Threshold: Pair{10, 5}, Policy: Ascending}})
	assert.Truef(t, errors.Is(err, ErrNotMonotonic), "misconfigured threshold")
	assert.Contains(t, err.Error(), "users")
}

func TestWorst(t *testing.T) {
	t.Parallel()

	assert.Equal(t, checkers.OK, Worst())
	assert.Equal(t, checkers.OK, Worst(checkers.OK, checkers.OK))
	assert.Equal(t, checkers.WARNING, Worst(checkers.OK, checkers.WARNING))
	assert.Equal(t, checkers.CRITICAL, Worst(checkers.CRITICAL, checkers.WARNING))
	assert.Equal(t, checkers.UNKNOWN, Worst(checkers.CRITICAL, checkers.UNKNOWN, checkers.OK))
	assert.Equal(t, checkers.UNKNOWN, Worst(checkers.UNKNOWN, checkers.CRITICAL))
}
