package parsers

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
)

// Counters are cumulative per-interface traffic counters.
type Counters struct {
	Name       string
	BytesIn    uint64
	BytesOut   uint64
	PacketsIn  uint64
	PacketsOut uint64
}

// ParseNetstat parses interface counters from macOS netstat output.
// Expected input is from: netstat -ib (optionally with -I <iface>)
func ParseNetstat(netstatOutput string) ([]Counters, error) {
	var interfaces []Counters
	scanner := bufio.NewScanner(strings.NewReader(netstatOutput))

	headerSkipped := false
	seen := make(map[string]bool)

	for scanner.Scan() {
		line := scanner.Text()

		if !headerSkipped {
			if strings.HasPrefix(line, "Name") {
				headerSkipped = true
			}
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 8 {
			continue
		}

		// netstat -ib format:
		// Name  Mtu   Network       Address            Ipkts Ierrs     Ibytes    Opkts Oerrs     Obytes  Coll
		// en0   1500  <Link#4>      xx:xx:xx:xx:xx:xx  12345     0   12345678    67890     0    9876543     0
		name := strings.TrimSuffix(fields[0], "*")
		if seen[name] {
			continue
		}

		// Only the link-level row carries totals across all protocols.
		if !strings.HasPrefix(fields[2], "<Link#") {
			continue
		}
		seen[name] = true

		// The address column is absent for interfaces without a MAC (utun, lo0),
		// so collect numerics after the network column instead of indexing.
		var numeric []uint64
		for _, f := range fields[3:] {
			val, err := strconv.ParseUint(f, 10, 64)
			if err == nil {
				numeric = append(numeric, val)
			}
		}

		// Ipkts Ierrs Ibytes Opkts Oerrs Obytes [Coll]
		if len(numeric) < 6 {
			continue
		}

		interfaces = append(interfaces, Counters{
			Name:       name,
			PacketsIn:  numeric[0],
			BytesIn:    numeric[2],
			PacketsOut: numeric[3],
			BytesOut:   numeric[5],
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error scanning netstat output: %w", err)
	}

	return interfaces, nil
}

// ParseProcNetDev parses interface counters from Linux /proc/net/dev.
func ParseProcNetDev(procNetDev string) ([]Counters, error) {
	var interfaces []Counters
	scanner := bufio.NewScanner(strings.NewReader(procNetDev))

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()

		// Skip header lines (first two lines)
		if lineNum <= 2 {
			continue
		}

		// Format: "  iface: bytes packets errs drop fifo frame compressed multicast | bytes packets..."
		name, rest, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}

		name = strings.TrimSpace(name)
		fields := strings.Fields(rest)

		// 8 receive + 8 transmit columns
		if len(fields) < 16 {
			continue
		}

		values := make([]uint64, 4)
		for i, col := range []int{0, 1, 8, 9} {
			val, err := strconv.ParseUint(fields[col], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("failed to parse column %d for %s: %w", col, name, err)
			}
			values[i] = val
		}

		interfaces = append(interfaces, Counters{
			Name:       name,
			BytesIn:    values[0],
			PacketsIn:  values[1],
			BytesOut:   values[2],
			PacketsOut: values[3],
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error scanning /proc/net/dev: %w", err)
	}

	return interfaces, nil
}

// FindCounters returns the counters for the named interface.
func FindCounters(all []Counters, name string) (Counters, bool) {
	for _, c := range all {
		if c.Name == name {
			return c, true
		}
	}
	return Counters{}, false
}
