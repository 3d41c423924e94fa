package threshold

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mackerelio/checkers"
)

var (
	// ErrNotMonotonic is returned when the critical boundary is less severe than the warning boundary.
	ErrNotMonotonic = errors.New("critical threshold is less severe than warning threshold")

	// ErrCountMismatch is returned when warning and critical lists differ in length.
	ErrCountMismatch = errors.New("number of warning and critical thresholds differ")

	// ErrNoMetrics is returned when Evaluate is called without any metric.
	ErrNoMetrics = errors.New("no metrics to evaluate")
)

// Policy selects the direction in which a metric breaches its thresholds.
type Policy int

const (
	// Ascending breaches when the value reaches or exceeds the threshold.
	Ascending Policy = iota

	// Descending breaches when the value falls to or below the threshold.
	Descending

	// Expiry is used for "days until" metrics. Zero and negative values are
	// always critical, positive values breach like Descending.
	Expiry
)

// ParseOperator converts the gt/lt operator argument into a Policy.
func ParseOperator(operator string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(operator)) {
	case "gt":
		return Ascending, nil
	case "lt":
		return Descending, nil
	}

	return Ascending, fmt.Errorf("unknown operator %q, must be gt or lt", operator)
}

// String returns the operator like name of the policy.
func (p Policy) String() string {
	switch p {
	case Ascending:
		return "gt"
	case Descending:
		return "lt"
	case Expiry:
		return "expiry"
	}

	return fmt.Sprintf("Policy(%d)", int(p))
}

// breached tests a single boundary.
func (p Policy) breached(value, boundary float64) bool {
	switch p {
	case Ascending:
		return value >= boundary
	case Descending, Expiry:
		return value <= boundary
	}

	return false
}

// Validate returns ErrNotMonotonic if critical is less severe than warning.
// Equal boundaries are allowed.
func (p Policy) Validate(pair Pair) error {
	if math.IsNaN(pair.Warning) || math.IsNaN(pair.Critical) {
		return fmt.Errorf("threshold is not a number: %s", pair)
	}
	switch p {
	case Ascending:
		if pair.Critical < pair.Warning {
			return fmt.Errorf("%w: warning %s, critical %s", ErrNotMonotonic, num(pair.Warning), num(pair.Critical))
		}
	case Descending, Expiry:
		if pair.Critical > pair.Warning {
			return fmt.Errorf("%w: warning %s, critical %s", ErrNotMonotonic, num(pair.Warning), num(pair.Critical))
		}
	default:
		return fmt.Errorf("unsupported policy %s", p)
	}

	return nil
}

// Severity returns the state of a single value.
// NaN values cannot be evaluated and result in UNKNOWN.
func (p Policy) Severity(value float64, pair Pair) checkers.Status {
	if math.IsNaN(value) {
		return checkers.UNKNOWN
	}
	if p == Expiry && value <= 0 {
		return checkers.CRITICAL
	}
	switch {
	case p.breached(value, pair.Critical):
		return checkers.CRITICAL
	case p.breached(value, pair.Warning):
		return checkers.WARNING
	}

	return checkers.OK
}

// Pair contains the warning and critical boundary of one metric.
type Pair struct {
	Warning  float64
	Critical float64
}

func (t Pair) String() string {
	return num(t.Warning) + "," + num(t.Critical)
}

// NewPairs zips warning and critical lists into validated pairs.
func NewPairs(policy Policy, warning, critical []float64) ([]Pair, error) {
	if len(warning) != len(critical) {
		return nil, fmt.Errorf("%w: %d warning, %d critical", ErrCountMismatch, len(warning), len(critical))
	}
	pairs := make([]Pair, 0, len(warning))
	for i := range warning {
		pair := Pair{Warning: warning[i], Critical: critical[i]}
		if err := policy.Validate(pair); err != nil {
			return nil, err
		}
		pairs = append(pairs, pair)
	}

	return pairs, nil
}

// List is a comma separated list of threshold values, ex.: 1,3,5
type List []float64

// ParseList parses a comma separated list of numbers.
func ParseList(def string) (List, error) {
	def = strings.TrimSpace(def)
	if def == "" {
		return nil, fmt.Errorf("empty threshold given")
	}
	fields := strings.Split(def, ",")
	list := make(List, 0, len(fields))
	for _, field := range fields {
		val, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil || math.IsNaN(val) || math.IsInf(val, 0) {
			return nil, fmt.Errorf("threshold syntax not supported: %s", def)
		}
		list = append(list, val)
	}

	return list, nil
}

// UnmarshalFlag implements flags.Unmarshaler.
func (l *List) UnmarshalFlag(value string) error {
	list, err := ParseList(value)
	if err != nil {
		return err
	}
	*l = list

	return nil
}

// Expect returns an error unless the list contains exactly count values.
func (l List) Expect(count int, what string) error {
	if len(l) != count {
		return fmt.Errorf("expected %d comma separated values for %s, got %d", count, what, len(l))
	}

	return nil
}

func (l List) String() string {
	vals := make([]string, 0, len(l))
	for _, v := range l {
		vals = append(vals, num(v))
	}

	return strings.Join(vals, ",")
}

func num(val float64) string {
	return strconv.FormatFloat(val, 'f', -1, 64)
}
