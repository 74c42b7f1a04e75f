package parsers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const airportAssociated = `     agrCtlRSSI: -55
     agrExtRSSI: 0
    agrCtlNoise: -90
    agrExtNoise: 0
          state: running
        op mode: station
     lastTxRate: 866
        maxRate: 1300
lastAssocStatus: 0
    802.11 auth: open
      link auth: wpa2-psk
          BSSID: a4:2b:b0:c1:d2:e3
           SSID: HomeNet
            MCS: 9
  guardInterval: 800
            NSS: 2
        channel: 149,80`

func TestParseAirport(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   WifiLink
	}{
		{
			name:   "associated on 5 GHz",
			output: airportAssociated,
			want: WifiLink{
				Associated: true,
				SSID:       "HomeNet",
				BSSID:      "a4:2b:b0:c1:d2:e3",
				RSSI:       -55,
				Noise:      -90,
				TxRate:     866,
				Channel:    149,
			},
		},
		{
			name: "associated on 2.4 GHz with redacted identity",
			output: `     agrCtlRSSI: -67
    agrCtlNoise: -95
          state: running
     lastTxRate: 144
          BSSID: <redacted>
           SSID: <redacted>
        channel: 6,-1`,
			want: WifiLink{
				Associated: true,
				RSSI:       -67,
				Noise:      -95,
				TxRate:     144,
				Channel:    6,
			},
		},
		{
			name: "not associated",
			output: `     agrCtlRSSI: 0
    agrCtlNoise: 0
          state: init
        op mode: 
     lastTxRate: 0
        channel: 1`,
			want: WifiLink{Channel: 1},
		},
		{
			name:   "radio off",
			output: "AirPort: Off\n",
			want:   WifiLink{},
		},
		{
			name:   "fields withheld",
			output: "WARNING: The airport command line tool is deprecated and will be removed in a future release.\n",
			want:   WifiLink{Withheld: true},
		},
		{
			name:   "empty output",
			output: "",
			want:   WifiLink{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAirport(tt.output)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseIwLink(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   WifiLink
	}{
		{
			name: "connected on 5 GHz",
			output: `Connected to a4:2b:b0:c1:d2:e3 (on wlan0)
	SSID: HomeNet
	freq: 5180
	RX: 123456789 bytes (98765 packets)
	TX: 12345678 bytes (23456 packets)
	signal: -52 dBm
	rx bitrate: 585.0 MBit/s VHT-MCS 6 80MHz short GI VHT-NSS 2
	tx bitrate: 866.7 MBit/s VHT-MCS 9 80MHz short GI VHT-NSS 2

	bss flags:	short-slot-time
	dtim period:	1
	beacon int:	100`,
			want: WifiLink{
				Associated: true,
				SSID:       "HomeNet",
				BSSID:      "a4:2b:b0:c1:d2:e3",
				RSSI:       -52,
				TxRate:     866.7,
				Channel:    36,
			},
		},
		{
			name: "connected on 2.4 GHz with decimal freq",
			output: `Connected to 00:11:22:33:44:55 (on wlp2s0)
	SSID: Cafe
	freq: 2437.0
	signal: -71 dBm
	tx bitrate: 72.2 MBit/s MCS 7 short GI`,
			want: WifiLink{
				Associated: true,
				SSID:       "Cafe",
				BSSID:      "00:11:22:33:44:55",
				RSSI:       -71,
				TxRate:     72.2,
				Channel:    6,
			},
		},
		{
			name:   "not connected",
			output: "Not connected.\n",
			want:   WifiLink{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseIwLink(tt.output)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestChannelFromFrequency(t *testing.T) {
	tests := []struct {
		mhz  int
		want int
	}{
		{2412, 1},
		{2437, 6},
		{2472, 13},
		{2484, 14},
		{5180, 36},
		{5745, 149},
		{5955, 1},
		{6115, 33},
		{900, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ChannelFromFrequency(tt.mhz), "freq %d", tt.mhz)
	}
}

func TestParseHardwarePorts(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   string
	}{
		{
			name: "wifi after ethernet",
			output: `
Hardware Port: Ethernet
Device: en0
Ethernet Address: a4:83:e7:00:00:01

Hardware Port: Wi-Fi
Device: en1
Ethernet Address: a4:83:e7:00:00:02

Hardware Port: Thunderbolt Bridge
Device: bridge0
Ethernet Address: N/A

VLAN Configurations
===================`,
			want: "en1",
		},
		{
			name: "legacy airport name",
			output: `Hardware Port: AirPort
Device: en1
Ethernet Address: 00:11:22:33:44:55`,
			want: "en1",
		},
		{
			name: "no wifi port",
			output: `Hardware Port: Ethernet
Device: en0`,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseHardwarePorts(tt.output))
		})
	}
}
