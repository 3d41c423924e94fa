package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// time units accepted by ToSeconds
var timeUnits = map[string]float64{
	"sec": 1,
	"min": 60,
	"hr":  3600,
	"day": 86400,
}

// TimeUnits returns the list of supported unit names for ToSeconds.
func TimeUnits() []string {
	return []string{"sec", "min", "hr", "day"}
}

// ToSeconds converts a value given in sec, min, hr or day into seconds.
func ToSeconds(val float64, unit string) (float64, error) {
	factor, ok := timeUnits[strings.ToLower(strings.TrimSpace(unit))]
	if !ok {
		return 0, fmt.Errorf("unknown time unit %q, must be one of: %s", unit, strings.Join(TimeUnits(), ", "))
	}

	return val * factor, nil
}

// TimeticksToDuration converts SNMP timeticks (hundredths of a second) into a duration.
func TimeticksToDuration(ticks uint64) time.Duration {
	return time.Duration(ticks) * 10 * time.Millisecond
}

// ToPrecision converts float64 to given precision, ex.: 5.12345 -> 5.1
func ToPrecision(val float64, precision int) float64 {
	format := fmt.Sprintf("%%.%df", precision)
	valStr := fmt.Sprintf(format, val)
	short, _ := strconv.ParseFloat(valStr, 64)

	return short
}

// DurationString renders a duration as "3 days, 4:05:06".
// Sub second fractions are appended as microseconds, ex.: 0:00:01.500000
func DurationString(dur time.Duration) string {
	sign := ""
	if dur < 0 {
		sign = "-"
		dur = -dur
	}

	micro := int64(dur / time.Microsecond)
	seconds := micro / 1e6
	micro -= seconds * 1e6

	days := seconds / 86400
	seconds -= days * 86400

	hours := seconds / 3600
	seconds -= hours * 3600

	minutes := seconds / 60
	seconds -= minutes * 60

	res := fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	if micro > 0 {
		res += fmt.Sprintf(".%06d", micro)
	}

	switch days {
	case 0:
	case 1:
		res = "1 day, " + res
	default:
		res = fmt.Sprintf("%d days, %s", days, res)
	}

	return sign + res
}

// DaysUntil returns the number of whole days from now until then, rounded
// towards negative infinity. Something which expired an hour ago is -1 days.
func DaysUntil(now, then time.Time) int {
	return int(math.Floor(then.Sub(now).Hours() / 24))
}
