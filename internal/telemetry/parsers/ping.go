package parsers

import (
	"strconv"
	"strings"
)

// PingReport holds what could be recovered from a ping run.
type PingReport struct {
	// LossPercent defaults to 100 when no loss line is present.
	LossPercent float64

	// AvgMs is the avg field of the round-trip summary, if present.
	AvgMs  float64
	HasAvg bool

	// RTTMs is the first individual reply time, if present.
	RTTMs  float64
	HasRTT bool
}

// ParsePing parses the textual report of ping/ping6 on macOS or Linux.
//
// Recognized lines:
//
//	5 packets transmitted, 5 packets received, 0.0% packet loss
//	5 packets transmitted, 4 received, 20% packet loss, time 4005ms
//	round-trip min/avg/max/stddev = 9.817/12.044/14.911/1.732 ms
//	rtt min/avg/max/mdev = 9.817/12.044/14.911/1.732 ms
//	64 bytes from 1.1.1.1: icmp_seq=0 ttl=57 time=11.412 ms
func ParsePing(output string) PingReport {
	report := PingReport{LossPercent: 100}

	if loss, ok := parsePingLoss(output); ok {
		report.LossPercent = loss
	}

	if avg, ok := parsePingAvg(output); ok {
		report.AvgMs = avg
		report.HasAvg = true
	}

	if rtt, ok := parsePingRTT(output); ok {
		report.RTTMs = rtt
		report.HasRTT = true
	}

	return report
}

// parsePingLoss extracts the number preceding "% packet loss".
func parsePingLoss(output string) (float64, bool) {
	lower := strings.ToLower(output)
	idx := strings.Index(lower, "% packet loss")
	if idx < 0 {
		return 0, false
	}

	start := idx
	for start > 0 && isNumberByte(lower[start-1]) {
		start--
	}
	if start == idx {
		return 0, false
	}

	loss, err := strconv.ParseFloat(lower[start:idx], 64)
	if err != nil {
		return 0, false
	}
	return loss, true
}

// parsePingAvg extracts the second value of the "a/b/c/d" summary after '='.
func parsePingAvg(output string) (float64, bool) {
	for _, line := range strings.Split(output, "\n") {
		if !strings.Contains(line, "min/avg/max") {
			continue
		}

		_, values, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}

		fields := strings.Fields(values)
		if len(fields) == 0 {
			continue
		}

		parts := strings.Split(fields[0], "/")
		if len(parts) < 4 {
			continue
		}

		avg, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			continue
		}
		return avg, true
	}
	return 0, false
}

// parsePingRTT extracts the first "time=N" or "time:N" value.
// The Linux summary's "time 4005ms" is not a reply time and is ignored.
func parsePingRTT(output string) (float64, bool) {
	rest := output
	for {
		idx := strings.Index(rest, "time")
		if idx < 0 {
			return 0, false
		}
		rest = rest[idx+len("time"):]

		if len(rest) == 0 || (rest[0] != '=' && rest[0] != ':') {
			continue
		}

		value := strings.TrimLeft(rest[1:], " ")
		end := 0
		for end < len(value) && isNumberByte(value[end]) {
			end++
		}
		if end == 0 {
			continue
		}

		rtt, err := strconv.ParseFloat(value[:end], 64)
		if err != nil {
			continue
		}
		return rtt, true
	}
}

func isNumberByte(b byte) bool {
	return (b >= '0' && b <= '9') || b == '.'
}
