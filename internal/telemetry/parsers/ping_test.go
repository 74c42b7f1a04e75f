package parsers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePing(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   PingReport
	}{
		{
			name: "darwin all replies",
			output: `PING 1.1.1.1 (1.1.1.1): 56 data bytes
64 bytes from 1.1.1.1: icmp_seq=0 ttl=57 time=11.412 ms
64 bytes from 1.1.1.1: icmp_seq=1 ttl=57 time=12.096 ms
64 bytes from 1.1.1.1: icmp_seq=2 ttl=57 time=9.817 ms
64 bytes from 1.1.1.1: icmp_seq=3 ttl=57 time=14.911 ms
64 bytes from 1.1.1.1: icmp_seq=4 ttl=57 time=11.984 ms

--- 1.1.1.1 ping statistics ---
5 packets transmitted, 5 packets received, 0.0% packet loss
round-trip min/avg/max/stddev = 9.817/12.044/14.911/1.732 ms`,
			want: PingReport{LossPercent: 0, AvgMs: 12.044, HasAvg: true, RTTMs: 11.412, HasRTT: true},
		},
		{
			name: "linux partial loss",
			output: `PING 192.168.1.1 (192.168.1.1) 56(84) bytes of data.
64 bytes from 192.168.1.1: icmp_seq=1 ttl=64 time=2.31 ms
64 bytes from 192.168.1.1: icmp_seq=2 ttl=64 time=3.02 ms
64 bytes from 192.168.1.1: icmp_seq=4 ttl=64 time=2.87 ms
64 bytes from 192.168.1.1: icmp_seq=5 ttl=64 time=2.55 ms

--- 192.168.1.1 ping statistics ---
5 packets transmitted, 4 received, 20% packet loss, time 4005ms
rtt min/avg/max/mdev = 2.310/2.687/3.020/0.274 ms`,
			want: PingReport{LossPercent: 20, AvgMs: 2.687, HasAvg: true, RTTMs: 2.31, HasRTT: true},
		},
		{
			name: "darwin total loss",
			output: `PING 10.255.255.1 (10.255.255.1): 56 data bytes
Request timeout for icmp_seq 0
Request timeout for icmp_seq 1
Request timeout for icmp_seq 2
Request timeout for icmp_seq 3

--- 10.255.255.1 ping statistics ---
5 packets transmitted, 0 packets received, 100.0% packet loss`,
			want: PingReport{LossPercent: 100},
		},
		{
			name: "linux total loss ignores summary time",
			output: `--- 10.255.255.1 ping statistics ---
5 packets transmitted, 0 received, 100% packet loss, time 4098ms`,
			want: PingReport{LossPercent: 100},
		},
		{
			name: "single reply without summary",
			output: `64 bytes from 8.8.8.8: icmp_seq=0 ttl=117 time=18.2 ms
5 packets transmitted, 1 packets received, 80.0% packet loss`,
			want: PingReport{LossPercent: 80, RTTMs: 18.2, HasRTT: true},
		},
		{
			name:   "unknown host",
			output: "ping: cannot resolve example.invalid: Unknown host",
			want:   PingReport{LossPercent: 100},
		},
		{
			name:   "empty output",
			output: "",
			want:   PingReport{LossPercent: 100},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParsePing(tt.output)
			assert.InDelta(t, tt.want.LossPercent, got.LossPercent, 0.001)
			assert.InDelta(t, tt.want.AvgMs, got.AvgMs, 0.001)
			assert.Equal(t, tt.want.HasAvg, got.HasAvg)
			assert.InDelta(t, tt.want.RTTMs, got.RTTMs, 0.001)
			assert.Equal(t, tt.want.HasRTT, got.HasRTT)
		})
	}
}
