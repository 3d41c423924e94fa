package plugin

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/consol-monitoring/checkplugins/pkg/convert"
	"github.com/consol-monitoring/checkplugins/pkg/threshold"
)

// CheckMetric contains a single performance value.
type CheckMetric struct {
	Name     string
	Unit     string
	Value    float64
	Warning  string // threshold in monitoring-plugins range syntax
	Critical string
	Min      *float64
	Max      *float64
}

// NewCheckMetric converts an evaluated check into performance data.
func NewCheckMetric(chk threshold.Check) *CheckMetric {
	return &CheckMetric{
		Name:     chk.Metric.Name,
		Unit:     chk.Metric.Unit,
		Value:    chk.Metric.Value,
		Warning:  rangeString(chk.Policy, chk.Threshold.Warning),
		Critical: rangeString(chk.Policy, chk.Threshold.Critical),
	}
}

// rangeString converts a boundary into the range syntax graphers understand.
// Ascending metrics alert above the boundary ("10"), descending ones below it ("10:").
// The plugin state already changes at the boundary itself (>= 10 or <= 10),
// while the range syntax treats 10 as still inside the range. The range has
// no inclusive form for this, so graphs may show a value on the boundary as
// ok although the plugin reported it.
func rangeString(policy threshold.Policy, boundary float64) string {
	switch policy {
	case threshold.Descending, threshold.Expiry:
		return convert.Num2String(boundary) + ":"
	default:
		return convert.Num2String(boundary)
	}
}

func (m *CheckMetric) String() string {
	var res bytes.Buffer

	// Unknown value
	if math.IsNaN(m.Value) {
		return fmt.Sprintf("'%s'=U", m.Name)
	}

	res.WriteString(fmt.Sprintf("'%s'=%s%s", m.Name, convert.Num2String(m.Value), m.Unit))

	res.WriteString(";")
	res.WriteString(m.Warning)

	res.WriteString(";")
	res.WriteString(m.Critical)

	res.WriteString(";")
	if m.Min != nil {
		res.WriteString(convert.Num2String(*m.Min))
	}

	res.WriteString(";")
	if m.Max != nil {
		res.WriteString(convert.Num2String(*m.Max))
	}

	resStr := res.String()
	// strip trailing semicolons
	for strings.HasSuffix(resStr, ";") {
		resStr = strings.TrimSuffix(resStr, ";")
	}

	return resStr
}
