package telemetry

import (
	"context"
	stderrors "errors"
	"sync"

	"github.com/rileyhilliard/netbar/internal/errors"
	"github.com/rileyhilliard/netbar/internal/exec"
	"github.com/rileyhilliard/netbar/internal/logger"
	"github.com/rileyhilliard/netbar/internal/telemetry/parsers"
)

// Sentinel errors for a wireless read that has nothing to report. The
// Scheduler skips wireless fields for all three without logging an error.
var (
	ErrNotWireless   = stderrors.New("interface is not wireless")
	ErrNotAssociated = stderrors.New("wireless interface is not associated")
	ErrNotAuthorized = stderrors.New("wireless details withheld; location access not granted")
)

// fallbackSSID labels a link whose network name can't be read.
const fallbackSSID = "Wi-Fi"

// WifiSnapshot is the state of an associated wireless link.
type WifiSnapshot struct {
	SSID    string
	BSSID   string
	Band    string
	Channel int
	TxRate  float64 // Mbps
	RSSI    int     // dBm
	Noise   int     // dBm
}

// IsSkippable reports whether err means "no wireless data this cycle"
// rather than a failure worth logging.
func IsSkippable(err error) bool {
	return stderrors.Is(err, ErrNotWireless) ||
		stderrors.Is(err, ErrNotAssociated) ||
		stderrors.Is(err, ErrNotAuthorized)
}

// BandForChannel returns "5 GHz" above channel 14, "2.4 GHz" otherwise,
// and "" when the channel is unknown.
func BandForChannel(channel int) string {
	switch {
	case channel <= 0:
		return ""
	case channel > 14:
		return "5 GHz"
	default:
		return "2.4 GHz"
	}
}

// WifiReader reads the wireless link state of the active interface.
//
// On macOS the Wi-Fi device name is looked up once from the hardware port
// list and cached; any other interface is reported as not wireless.
type WifiReader struct {
	runner   exec.Runner
	platform Platform
	log      logger.Logger

	mu          sync.Mutex
	device      string
	deviceKnown bool
}

// NewWifiReader creates a reader for platform.
func NewWifiReader(runner exec.Runner, platform Platform, log logger.Logger) *WifiReader {
	if log == nil {
		log = logger.Noop()
	}
	return &WifiReader{runner: runner, platform: platform, log: log}
}

// Read returns the link state of iface.
func (w *WifiReader) Read(ctx context.Context, iface string) (WifiSnapshot, error) {
	if iface == "" {
		return WifiSnapshot{}, ErrNotWireless
	}

	var (
		link parsers.WifiLink
		err  error
	)
	switch w.platform {
	case PlatformDarwin:
		link, err = w.readDarwin(ctx, iface)
	case PlatformLinux:
		link, err = w.readLinux(ctx, iface)
	default:
		return WifiSnapshot{}, ErrNotWireless
	}
	if err != nil {
		return WifiSnapshot{}, err
	}

	if link.Withheld {
		return WifiSnapshot{}, ErrNotAuthorized
	}
	if !link.Associated {
		return WifiSnapshot{}, ErrNotAssociated
	}

	return WifiSnapshot{
		SSID:    displaySSID(link.SSID, iface),
		BSSID:   link.BSSID,
		Band:    BandForChannel(link.Channel),
		Channel: link.Channel,
		TxRate:  link.TxRate,
		RSSI:    link.RSSI,
		Noise:   link.Noise,
	}, nil
}

func (w *WifiReader) readDarwin(ctx context.Context, iface string) (parsers.WifiLink, error) {
	device, err := w.wifiDevice(ctx)
	if err != nil {
		return parsers.WifiLink{}, err
	}
	if device == "" || device != iface {
		return parsers.WifiLink{}, ErrNotWireless
	}

	c := WifiLinkCommand(w.platform, iface)
	res, err := run(ctx, w.runner, c)
	if err != nil {
		return parsers.WifiLink{}, errors.WrapWithCode(err, errors.ErrWifi,
			"Couldn't run the airport utility", "")
	}

	return parsers.ParseAirport(string(res.Output))
}

func (w *WifiReader) readLinux(ctx context.Context, iface string) (parsers.WifiLink, error) {
	c := WifiLinkCommand(w.platform, iface)
	res, err := run(ctx, w.runner, c)
	if err != nil {
		return parsers.WifiLink{}, errors.WrapWithCode(err, errors.ErrWifi,
			"Couldn't run iw", "Install the iw package for wireless stats")
	}

	// iw exits non-zero for wired and virtual interfaces
	if res.ExitCode != 0 {
		return parsers.WifiLink{}, ErrNotWireless
	}

	return parsers.ParseIwLink(string(res.Output))
}

// wifiDevice returns the cached macOS Wi-Fi device, discovering it on first use.
// A failed lookup is not cached so the next cycle retries.
func (w *WifiReader) wifiDevice(ctx context.Context) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.deviceKnown {
		return w.device, nil
	}

	c := WifiDeviceCommand()
	res, err := run(ctx, w.runner, c)
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrWifi,
			"Couldn't list hardware ports", "")
	}
	if res.ExitCode != 0 {
		return "", errors.New(errors.ErrWifi, "networksetup failed to list hardware ports", "")
	}

	w.device = parsers.ParseHardwarePorts(string(res.Output))
	w.deviceKnown = true
	w.log.Debug("wifi device: %q", w.device)

	return w.device, nil
}

// displaySSID falls back from the network name to the interface name to a
// fixed label, so the display always has something to show.
func displaySSID(ssid, iface string) string {
	switch {
	case ssid != "":
		return ssid
	case iface != "":
		return iface
	default:
		return fallbackSSID
	}
}
