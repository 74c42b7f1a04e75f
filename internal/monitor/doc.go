// Package monitor implements the terminal dashboard for the sampling engine.
//
// The dashboard uses Bubble Tea's Model-Update-View loop. It does not poll:
// NewModel subscribes to the engine and the speed test runner, and each
// published snapshot or result arrives as a message that replaces the
// model's copy.
//
// # Sections
//
//	Throughput    braille graphs of download/upload history and traffic totals
//	Wi-Fi         SSID, BSSID, band, channel, tx rate, signal and noise
//	Reachability  latency, jitter and loss for internet, router and DNS
//	Speed test    progressive networkQuality results with a countdown
//	Menu bar      the composed status line
//
// # Keyboard Shortcuts
//
//	q, Ctrl+C   Quit
//	r           Sample now
//	+ / -       Step the sampling interval up or down
//	u           Toggle bytes and bits
//	m           Cycle display mode (both/download/upload)
//	l           Stack or unstack the status line
//	t / x       Start or cancel the speed test
//	Z           Reset traffic totals
//	?           Toggle help overlay
package monitor
