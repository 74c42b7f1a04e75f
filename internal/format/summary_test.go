package format

import (
	"testing"

	"github.com/rileyhilliard/netbar/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestSummary(t *testing.T) {
	view := View{
		Download: 1024 * 1500,
		Upload:   2048,
		RSSI:     -58,
		Router:   Reading{Ping: 2.4, Loss: 0},
		DNS:      Reading{Ping: 0, Loss: 100},
		Internet: Reading{Ping: 12.6, Loss: 20},
	}

	display := config.DisplayConfig{
		Mode:      config.DisplayBoth,
		UnitType:  config.UnitBytes,
		FixedUnit: config.FixedAuto,
		Arrows:    true,
	}

	tests := []struct {
		name    string
		display func(d *config.DisplayConfig)
		menu    config.MenuConfig
		want    string
	}{
		{
			name: "nothing pinned stacks speeds",
			want: "↑ 2.00 KB/s\n↓ 1.46 MB/s",
		},
		{
			name:    "nothing pinned unstacked",
			display: func(d *config.DisplayConfig) { d.Unstack = true },
			want:    "↑ 2.00 KB/s | ↓ 1.46 MB/s",
		},
		{
			name:    "download only without arrows",
			display: func(d *config.DisplayConfig) { d.Mode = config.DisplayDownload; d.Arrows = false },
			want:    "1.46 MB/s",
		},
		{
			name:    "upload only in bits",
			display: func(d *config.DisplayConfig) { d.Mode = config.DisplayUpload; d.UnitType = config.UnitBits },
			want:    "↑ 16.00 Kbps",
		},
		{
			name: "pinned speed stays stacked",
			menu: config.MenuConfig{Speed: true},
			want: "↑ 2.00 KB/s\n↓ 1.46 MB/s",
		},
		{
			name:    "pinned speed unstacked joins with a space",
			display: func(d *config.DisplayConfig) { d.Unstack = true },
			menu:    config.MenuConfig{Speed: true, RSSI: true},
			want:    "↑ 2.00 KB/s ↓ 1.46 MB/s | RSSI: -58",
		},
		{
			name: "pings only",
			menu: config.MenuConfig{RouterPing: true, DNSPing: true, InternetPing: true},
			want: "RTR: 2ms | DNS: --- | Ping: 13ms",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := display
			if tt.display != nil {
				tt.display(&d)
			}
			assert.Equal(t, tt.want, Summary(d, tt.menu, view))
		})
	}
}

func TestPing(t *testing.T) {
	assert.Equal(t, "---", Ping(Reading{Ping: 42, Loss: 100}))
	assert.Equal(t, "42ms", Ping(Reading{Ping: 41.6, Loss: 0}))
	assert.Equal(t, "0ms", Ping(Reading{Ping: 0, Loss: 99}))
}
