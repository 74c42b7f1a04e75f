package format

import (
	"fmt"
	"strings"

	"github.com/rileyhilliard/netbar/internal/config"
)

const (
	upArrow   = "↑ "
	downArrow = "↓ "
	noReply   = "---"
)

// Reading is one probe target's latest latency and loss.
type Reading struct {
	Ping float64
	Loss float64
}

// View is the subset of engine state the summary line shows.
type View struct {
	Download float64 // bytes/s
	Upload   float64 // bytes/s
	RSSI     int

	Router   Reading
	DNS      Reading
	Internet Reading
}

// Summary composes the one-line status text.
//
// Pinned stats (speed, RSSI, router, DNS and internet ping) are joined with
// " | ". With nothing pinned the speeds alone are shown, joined with " | "
// when unstacked and a newline otherwise. A ping whose loss is 100% renders
// as "---".
func Summary(display config.DisplayConfig, menu config.MenuConfig, v View) string {
	var pinned []string

	if menu.Speed {
		sep := "\n"
		if display.Unstack {
			sep = " "
		}
		pinned = append(pinned, strings.Join(speedSegments(display, v), sep))
	}
	if menu.RSSI {
		pinned = append(pinned, fmt.Sprintf("RSSI: %d", v.RSSI))
	}
	if menu.RouterPing {
		pinned = append(pinned, "RTR: "+Ping(v.Router))
	}
	if menu.DNSPing {
		pinned = append(pinned, "DNS: "+Ping(v.DNS))
	}
	if menu.InternetPing {
		pinned = append(pinned, "Ping: "+Ping(v.Internet))
	}

	if len(pinned) > 0 {
		return strings.Join(pinned, " | ")
	}

	sep := "\n"
	if display.Unstack {
		sep = " | "
	}
	return strings.Join(speedSegments(display, v), sep)
}

// Ping renders a latency as whole milliseconds, or "---" on total loss.
func Ping(r Reading) string {
	if r.Loss >= 100 {
		return noReply
	}
	return fmt.Sprintf("%.0fms", r.Ping)
}

// speedSegments renders upload then download, filtered by display mode.
func speedSegments(display config.DisplayConfig, v View) []string {
	var segments []string

	if display.Mode == config.DisplayBoth || display.Mode == config.DisplayUpload {
		segments = append(segments, arrow(display, upArrow)+SpeedString(v.Upload, display.UnitType, display.FixedUnit))
	}
	if display.Mode == config.DisplayBoth || display.Mode == config.DisplayDownload {
		segments = append(segments, arrow(display, downArrow)+SpeedString(v.Download, display.UnitType, display.FixedUnit))
	}

	return segments
}

func arrow(display config.DisplayConfig, a string) string {
	if display.Arrows {
		return a
	}
	return ""
}
