// Package format renders rates and byte counts for display.
package format

import (
	"fmt"

	"github.com/rileyhilliard/netbar/internal/config"
)

var (
	byteUnits = []string{" B", "KB", "MB", "GB", "TB"}
	bitUnits  = []string{" b", "Kb", "Mb", "Gb", "Tb"}
)

const (
	kilo = 1024.0
	mega = 1024.0 * 1024.0
)

// Speed scales a rate in bytes per second and returns the number (two
// decimals) and its unit label.
//
// Bits multiply the value by 8 first. A fixed unit divides by its divisor
// regardless of magnitude; auto divides by 1024 while the value exceeds 1024
// and a larger unit remains.
func Speed(bytesPerSec float64, unit config.UnitType, fixed config.FixedUnit) (string, string) {
	value := bytesPerSec
	units := byteUnits
	suffix := "/s"
	if unit == config.UnitBits {
		value *= 8
		units = bitUnits
		suffix = "ps"
	}

	idx := 0
	switch fixed {
	case config.FixedKB:
		value /= kilo
		idx = 1
	case config.FixedMB:
		value /= mega
		idx = 2
	default:
		value, idx = autoScale(value, len(units))
	}

	return fmt.Sprintf("%.2f", value), units[idx] + suffix
}

// Bytes scales a byte count on the byte ladder with no rate suffix.
func Bytes(n float64) (string, string) {
	value, idx := autoScale(n, len(byteUnits))
	return fmt.Sprintf("%.2f", value), byteUnits[idx]
}

// BytesString joins Bytes' number and unit, trimming the padded " B".
func BytesString(n float64) string {
	value, unit := Bytes(n)
	return value + " " + trimUnit(unit)
}

// SpeedString joins Speed's number and unit.
func SpeedString(bytesPerSec float64, unit config.UnitType, fixed config.FixedUnit) string {
	value, label := Speed(bytesPerSec, unit, fixed)
	return value + " " + label
}

func autoScale(value float64, steps int) (float64, int) {
	idx := 0
	for value > kilo && idx < steps-1 {
		value /= kilo
		idx++
	}
	return value, idx
}

func trimUnit(unit string) string {
	if len(unit) > 0 && unit[0] == ' ' {
		return unit[1:]
	}
	return unit
}
