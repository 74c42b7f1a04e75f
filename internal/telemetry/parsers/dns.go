package parsers

import (
	"bufio"
	"strings"
)

// ParseScutilDNS returns the first resolver address from macOS DNS configuration.
// Expected input is from: scutil --dns
//
// Only the first "nameserver[0]" entry is used; that is the resolver of the
// highest-priority configuration. Returns "" when none is present.
func ParseScutilDNS(output string) string {
	scanner := bufio.NewScanner(strings.NewReader(output))

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Format: "  nameserver[0] : 192.168.1.1"
		if !strings.HasPrefix(line, "nameserver[0]") {
			continue
		}

		_, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}

		// IPv6 resolvers contain colons of their own; Cut only splits the first.
		if server := strings.TrimSpace(value); server != "" {
			return server
		}
	}

	return ""
}
