package check_ping

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/consol-monitoring/checkplugins/pkg/plugin"
	"github.com/consol-monitoring/checkplugins/pkg/threshold"
)

var (
	// linux (debian 12)
	// rtt min/avg/max/mdev = 0.019/0.019/0.021/0.000 ms
	// osx 14.7
	// round-trip min/avg/max/stddev = 0.040/0.066/0.095/0.021 ms
	// busybox
	// round-trip min/avg/max = 0.040/0.066/0.095 ms
	reRTA = regexp.MustCompile(`(?:rtt|round-trip) min/avg/max(?:/(?:mdev|stddev))? = ([\d.]+)/([\d.]+)/([\d.]+)(?:/[\d.]+)? ms`)

	// linux (debian 12)
	// 3 packets transmitted, 3 received, 0% packet loss, time 2052ms
	// 3 packets transmitted, 0 received, +3 errors, 100% packet loss, time 2003ms
	// 4 packets transmitted, 4 received, +1 duplicates, 0% packet loss, time 3004ms
	// osx 14.7
	// 5 packets transmitted, 5 packets received, 0.0% packet loss
	rePackets = regexp.MustCompile(`(\d+) packets transmitted, (\d+) (?:packets )?received, (?:\+\d+ (?:duplicates|corrupted|errors), )*([\d.]+)% packet loss`)
)

// Stats contains the summary of a ping run.
type Stats struct {
	Sent     int
	Received int
	Loss     float64
	RTT      float64 // average round trip time in ms
	HasRTT   bool    // false only if nothing was received
}

// ParseOutput extracts packet loss and round trip average from ping output.
func ParseOutput(output string) (*Stats, error) {
	stats := &Stats{}

	packets := rePackets.FindStringSubmatch(output)
	if len(packets) < 4 {
		output = strings.TrimSpace(output)
		if output == "" {
			return nil, plugin.FormatErrorf("cannot parse ping output: no output")
		}

		return nil, plugin.FormatErrorf("cannot parse ping output: %s", output)
	}
	stats.Sent, _ = strconv.Atoi(packets[1])
	stats.Received, _ = strconv.Atoi(packets[2])
	loss, err := strconv.ParseFloat(packets[3], 64)
	if err != nil {
		return nil, plugin.FormatErrorf("cannot parse packet loss %q: %s", packets[3], err.Error())
	}
	stats.Loss = loss

	if rta := reRTA.FindStringSubmatch(output); len(rta) >= 3 {
		avg, err := strconv.ParseFloat(rta[2], 64)
		if err != nil {
			return nil, plugin.FormatErrorf("cannot parse rtt average %q: %s", rta[2], err.Error())
		}
		stats.RTT = avg
		stats.HasRTT = true
	}

	// without replies there is no rtt summary
	if stats.Received > 0 && !stats.HasRTT {
		return nil, plugin.FormatErrorf("cannot parse rtt average from ping output: %s", strings.TrimSpace(output))
	}

	return stats, nil
}

// Metrics returns packet loss (pl) and, if available, round trip average (rta).
func (s *Stats) Metrics() []threshold.Metric {
	metrics := []threshold.Metric{{Name: "pl", Unit: "%", Value: s.Loss}}
	if s.HasRTT {
		metrics = append(metrics, threshold.Metric{Name: "rta", Unit: "ms", Value: s.RTT})
	}

	return metrics
}
