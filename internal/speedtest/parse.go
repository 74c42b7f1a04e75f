package speedtest

import (
	"strconv"
	"strings"
)

// Report is what could be recognized in networkQuality's text output.
// Speeds are in Mbps.
type Report struct {
	Download    float64
	HasDownload bool

	Upload    float64
	HasUpload bool

	Responsiveness string
}

// HasSpeed reports whether either direction was recognized.
func (r Report) HasSpeed() bool {
	return r.HasDownload || r.HasUpload
}

// Parse scans accumulated output. Later lines override earlier ones, so
// re-parsing a growing buffer converges on the final summary.
//
// Recognized lines (keywords are case-insensitive):
//
//	Downlink capacity: 312.456 Mbps
//	Uplink capacity: 25.123 Mbps
//	Responsiveness: Medium (452 RPM)
//
// "downstream" and "upstream" are accepted as synonyms. A line naming
// responsiveness is never read as a speed, even when it also says
// "downlink" or "uplink".
func Parse(output string) Report {
	var r Report

	for _, line := range strings.Split(output, "\n") {
		lower := strings.ToLower(line)

		switch {
		case strings.Contains(lower, "responsiveness"):
			if label, ok := responsiveness(line); ok {
				r.Responsiveness = label
			}
		case strings.Contains(lower, "downlink") || strings.Contains(lower, "downstream"):
			if v, ok := speed(line); ok {
				r.Download, r.HasDownload = v, true
			}
		case strings.Contains(lower, "uplink") || strings.Contains(lower, "upstream"):
			if v, ok := speed(line); ok {
				r.Upload, r.HasUpload = v, true
			}
		}
	}

	return r
}

// responsiveness returns the first word after the colon.
func responsiveness(line string) (string, bool) {
	_, value, ok := strings.Cut(line, ":")
	if !ok {
		return "", false
	}
	fields := strings.Fields(value)
	if len(fields) == 0 {
		return "", false
	}
	return fields[0], true
}

// speed returns the first number on the line, scaled to Mbps when followed
// by a Kbps or Gbps unit.
func speed(line string) (float64, bool) {
	start := strings.IndexFunc(line, isDigit)
	if start < 0 {
		return 0, false
	}

	end := start
	for end < len(line) && (isDigit(rune(line[end])) || line[end] == '.') {
		end++
	}

	value, err := strconv.ParseFloat(strings.TrimRight(line[start:end], "."), 64)
	if err != nil {
		return 0, false
	}

	unit := strings.ToLower(firstField(line[end:]))
	switch {
	case strings.HasPrefix(unit, "gbps"):
		value *= 1000
	case strings.HasPrefix(unit, "kbps"):
		value /= 1000
	}
	return value, true
}

func firstField(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
