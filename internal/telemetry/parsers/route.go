package parsers

import (
	"bufio"
	"fmt"
	"strings"
)

// RouteInfo is the default route as reported by the OS.
type RouteInfo struct {
	Interface string
	Gateway   string
}

// ParseDarwinRoute parses the default route from macOS route output.
// Expected input is from: route -n get default
func ParseDarwinRoute(output string) (RouteInfo, error) {
	var info RouteInfo
	scanner := bufio.NewScanner(strings.NewReader(output))

	for scanner.Scan() {
		key, value, ok := strings.Cut(strings.TrimSpace(scanner.Text()), ":")
		if !ok {
			continue
		}

		// Format: "  interface: en0" / "    gateway: 192.168.1.1"
		switch strings.TrimSpace(key) {
		case "interface":
			info.Interface = strings.TrimSpace(value)
		case "gateway":
			info.Gateway = strings.TrimSpace(value)
		}
	}

	if err := scanner.Err(); err != nil {
		return RouteInfo{}, fmt.Errorf("error scanning route output: %w", err)
	}

	return info, nil
}

// ParseLinuxRoute parses the default route from iproute2 output.
// Expected input is from: ip -4 route show default
func ParseLinuxRoute(output string) (RouteInfo, error) {
	var info RouteInfo
	scanner := bufio.NewScanner(strings.NewReader(output))

	for scanner.Scan() {
		// Format: "default via 192.168.1.1 dev wlan0 proto dhcp metric 600"
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || fields[0] != "default" {
			continue
		}

		for i := 1; i < len(fields)-1; i++ {
			switch fields[i] {
			case "via":
				info.Gateway = fields[i+1]
			case "dev":
				info.Interface = fields[i+1]
			}
		}

		// The first default route wins; later ones have a higher metric.
		if info.Interface != "" {
			break
		}
	}

	if err := scanner.Err(); err != nil {
		return RouteInfo{}, fmt.Errorf("error scanning ip route output: %w", err)
	}

	return info, nil
}
