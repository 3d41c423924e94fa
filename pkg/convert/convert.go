package convert

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Float64E converts anything into a float64
// errors will be returned
func Float64E(raw interface{}) (float64, error) {
	switch val := raw.(type) {
	case float64:
		return val, nil
	case float32:
		return float64(val), nil
	case int64:
		return float64(val), nil
	case int:
		return float64(val), nil
	case uint:
		return float64(val), nil
	case uint32:
		return float64(val), nil
	case uint64:
		return float64(val), nil
	case []byte:
		return Float64E(string(val))
	default:
		num, err := strconv.ParseFloat(strings.TrimSpace(fmt.Sprintf("%v", val)), 64)
		if err != nil {
			return 0, fmt.Errorf("cannot parse float64 value from %v (%T)", raw, raw)
		}

		return num, nil
	}
}

// Num2String converts any number into a string
// errors will fall back to empty string
func Num2String(raw interface{}) string {
	s, _ := Num2StringE(raw)

	return s
}

// Num2StringE converts any number into its shortest string, 1.0 becomes 1
// errors will be returned
func Num2StringE(raw interface{}) (string, error) {
	switch num := raw.(type) {
	case float64:
		if strconv.FormatFloat(num, 'f', -1, 64) != fmt.Sprintf("%d", int64(num)) {
			return strconv.FormatFloat(num, 'f', -1, 64), nil
		}

		return fmt.Sprintf("%d", int64(num)), nil
	case int64:
		return fmt.Sprintf("%d", num), nil
	default:
		fNum, err := Float64E(raw)
		if err != nil {
			return "", fmt.Errorf("cannot convert %v (%T) into string", raw, raw)
		}

		return Num2StringE(fNum)
	}
}

// FloatString renders a float with at least one decimal place, 45 becomes 45.0
// and 0.376 stays 0.376. Status lines always show measured floats this way.
func FloatString(num float64) string {
	switch {
	case math.IsNaN(num):
		return "nan"
	case math.IsInf(num, 1):
		return "inf"
	case math.IsInf(num, -1):
		return "-inf"
	}

	str := strconv.FormatFloat(num, 'f', -1, 64)
	if !strings.Contains(str, ".") {
		str += ".0"
	}

	return str
}
