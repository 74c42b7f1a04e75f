package telemetry

import (
	"math"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// Platform represents the operating system netbar is sampling.
type Platform string

const (
	// PlatformLinux indicates a Linux host.
	PlatformLinux Platform = "linux"
	// PlatformDarwin indicates a macOS host.
	PlatformDarwin Platform = "darwin"
	// PlatformUnknown indicates an unsupported platform.
	PlatformUnknown Platform = "unknown"
)

// AirportPath is the location of the private macOS wireless utility.
const AirportPath = "/System/Library/PrivateFrameworks/Apple80211.framework/Versions/Current/Resources/airport"

// ProcNetDev is the Linux interface counter table.
const ProcNetDev = "/proc/net/dev"

// CurrentPlatform returns the platform of the running process.
func CurrentPlatform() Platform {
	return ParsePlatform(runtime.GOOS)
}

// ParsePlatform converts a GOOS or uname value to a Platform.
func ParsePlatform(name string) Platform {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "linux":
		return PlatformLinux
	case "darwin":
		return PlatformDarwin
	default:
		return PlatformUnknown
	}
}

// Command is one external utility invocation.
type Command struct {
	Name string
	Args []string
}

// String returns the command line as it would be typed.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

func cmd(name string, args ...string) Command {
	return Command{Name: name, Args: args}
}

// DefaultRouteCommand returns the command that prints the default route.
// Unknown platforms get the Linux command; it fails gracefully elsewhere.
func DefaultRouteCommand(p Platform) Command {
	if p == PlatformDarwin {
		return cmd("route", "-n", "get", "default")
	}
	return cmd("ip", "-4", "route", "show", "default")
}

// CountersCommand returns the command that prints cumulative byte counters for iface.
func CountersCommand(p Platform, iface string) Command {
	if p == PlatformDarwin {
		return cmd("netstat", "-ib", "-I", iface)
	}
	return cmd("cat", ProcNetDev)
}

// WifiDeviceCommand returns the command that lists hardware ports (macOS only).
func WifiDeviceCommand() Command {
	return cmd("networksetup", "-listallhardwareports")
}

// WifiLinkCommand returns the command that prints the wireless link state.
func WifiLinkCommand(p Platform, iface string) Command {
	if p == PlatformDarwin {
		return cmd(AirportPath, "-I")
	}
	return cmd("iw", "dev", iface, "link")
}

// DNSConfigCommand returns the command that prints resolver configuration (macOS only).
func DNSConfigCommand() Command {
	return cmd("scutil", "--dns")
}

// PingCommand returns the ICMP echo command for host.
// Hosts containing ':' are treated as IPv6 literals.
//
// macOS takes the per-reply wait in milliseconds; Linux takes whole seconds.
func PingCommand(p Platform, host string, count int, timeout time.Duration) Command {
	isIPv6 := strings.Contains(host, ":")
	n := strconv.Itoa(count)

	if p == PlatformDarwin {
		ms := strconv.FormatInt(timeout.Milliseconds(), 10)
		if isIPv6 {
			return cmd("ping6", "-c", n, "-W", ms, host)
		}
		return cmd("ping", "-c", n, "-W", ms, host)
	}

	secs := strconv.Itoa(wholeSeconds(timeout))
	if isIPv6 {
		return cmd("ping", "-6", "-c", n, "-W", secs, host)
	}
	return cmd("ping", "-c", n, "-W", secs, host)
}

// NetcatCommand returns the TCP connect check for host:port.
func NetcatCommand(p Platform, host, port string, timeout time.Duration) Command {
	secs := strconv.Itoa(wholeSeconds(timeout))
	if p == PlatformDarwin {
		return cmd("nc", "-z", "-G", secs, host, port)
	}
	return cmd("nc", "-z", "-w", secs, host, port)
}

// wholeSeconds rounds d up to whole seconds, never below 1.
func wholeSeconds(d time.Duration) int {
	secs := int(math.Ceil(d.Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}
