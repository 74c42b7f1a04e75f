package parsers

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
)

// WifiLink is the association state of a wireless interface.
type WifiLink struct {
	// Associated is false when the radio is off or not joined to a network.
	Associated bool

	// Withheld is true when the utility ran but reported no link fields,
	// which is how macOS answers without location authorization.
	Withheld bool

	SSID    string
	BSSID   string
	RSSI    int
	Noise   int
	TxRate  float64
	Channel int
}

// redactedSSID is what newer macOS releases print in place of a name when
// the caller lacks location authorization.
const redactedSSID = "<redacted>"

// ParseAirport parses wireless link state from the macOS airport utility.
// Expected input is from: airport -I
//
// Format (keys right-aligned, BSSID contains colons):
//
//	     agrCtlRSSI: -55
//	    agrCtlNoise: -90
//	          state: running
//	     lastTxRate: 866
//	          BSSID: a4:2b:b0:c1:d2:e3
//	           SSID: HomeNet
//	        channel: 149,80
func ParseAirport(output string) (WifiLink, error) {
	var link WifiLink
	recognized := 0
	scanner := bufio.NewScanner(strings.NewReader(output))

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if strings.EqualFold(line, "AirPort: Off") {
			return WifiLink{}, nil
		}

		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)

		switch strings.TrimSpace(key) {
		case "agrCtlRSSI":
			link.RSSI, _ = strconv.Atoi(value)
		case "agrCtlNoise":
			link.Noise, _ = strconv.Atoi(value)
		case "lastTxRate":
			link.TxRate, _ = strconv.ParseFloat(value, 64)
		case "BSSID":
			link.BSSID = value
		case "SSID":
			link.SSID = value
		case "channel":
			// "149,80" or "6,-1": primary channel first
			primary, _, _ := strings.Cut(value, ",")
			link.Channel, _ = strconv.Atoi(primary)
		case "state":
			link.Associated = value == "running"
		default:
			continue
		}
		recognized++
	}

	if err := scanner.Err(); err != nil {
		return WifiLink{}, fmt.Errorf("error scanning airport output: %w", err)
	}

	if recognized == 0 {
		link.Withheld = strings.TrimSpace(output) != ""
		return link, nil
	}

	if link.SSID == redactedSSID {
		link.SSID = ""
	}
	if link.BSSID == redactedSSID {
		link.BSSID = ""
	}

	return link, nil
}

// ParseIwLink parses wireless link state from Linux iw.
// Expected input is from: iw dev <iface> link
//
// Format:
//
//	Connected to a4:2b:b0:c1:d2:e3 (on wlan0)
//		SSID: HomeNet
//		freq: 5180
//		signal: -52 dBm
//		tx bitrate: 866.7 MBit/s VHT-MCS 9 80MHz short GI VHT-NSS 2
func ParseIwLink(output string) (WifiLink, error) {
	var link WifiLink
	scanner := bufio.NewScanner(strings.NewReader(output))

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if strings.HasPrefix(line, "Not connected") {
			return WifiLink{}, nil
		}

		if strings.HasPrefix(line, "Connected to ") {
			link.Associated = true
			fields := strings.Fields(line)
			if len(fields) >= 3 {
				link.BSSID = fields[2]
			}
			continue
		}

		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)

		switch key {
		case "SSID":
			link.SSID = value
		case "freq":
			freq, err := strconv.ParseFloat(value, 64)
			if err == nil {
				link.Channel = ChannelFromFrequency(int(freq))
			}
		case "signal":
			// "-52 dBm"
			fields := strings.Fields(value)
			if len(fields) > 0 {
				link.RSSI, _ = strconv.Atoi(fields[0])
			}
		case "tx bitrate":
			// "866.7 MBit/s ..."
			fields := strings.Fields(value)
			if len(fields) > 0 {
				link.TxRate, _ = strconv.ParseFloat(fields[0], 64)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return WifiLink{}, fmt.Errorf("error scanning iw output: %w", err)
	}

	return link, nil
}

// ChannelFromFrequency maps a center frequency in MHz to its channel number.
// Returns 0 for frequencies outside the 2.4, 5 and 6 GHz bands.
func ChannelFromFrequency(mhz int) int {
	switch {
	case mhz == 2484:
		return 14
	case mhz >= 2412 && mhz <= 2472:
		return (mhz - 2407) / 5
	case mhz >= 5160 && mhz <= 5885:
		return (mhz - 5000) / 5
	case mhz >= 5955 && mhz <= 7115:
		return (mhz - 5950) / 5
	default:
		return 0
	}
}

// ParseHardwarePorts returns the device name of the Wi-Fi hardware port.
// Expected input is from: networksetup -listallhardwareports
//
// Format:
//
//	Hardware Port: Wi-Fi
//	Device: en0
//	Ethernet Address: a4:83:e7:00:00:01
//
// Older releases call the port "AirPort". Returns "" when there is none.
func ParseHardwarePorts(output string) string {
	scanner := bufio.NewScanner(strings.NewReader(output))
	inWifi := false

	for scanner.Scan() {
		key, value, ok := strings.Cut(strings.TrimSpace(scanner.Text()), ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)

		switch key {
		case "Hardware Port":
			inWifi = value == "Wi-Fi" || value == "AirPort"
		case "Device":
			if inWifi {
				return value
			}
		}
	}

	return ""
}
