package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Save writes cfg to path as YAML, creating parent directories as needed.
// Durations are written in their string form so the file stays readable.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var buf strings.Builder
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(toDocument(cfg)); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	encoder.Close()

	if err := os.WriteFile(path, []byte(buf.String()), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SetValue updates a single dotted key (like "menu.rssi") in the config file.
// It preserves the existing YAML structure and comments, creating the file
// and any missing intermediate mappings.
func SetValue(configPath, key, value string) error {
	var root yaml.Node

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &root); err != nil {
			return fmt.Errorf("failed to parse config file: %w", err)
		}
	case os.IsNotExist(err):
	default:
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if root.Kind == 0 {
		root = yaml.Node{
			Kind:    yaml.DocumentNode,
			Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}},
		}
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return fmt.Errorf("invalid YAML document structure")
	}

	node := root.Content[0]
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("expected mapping at document root")
	}

	parts := strings.Split(key, ".")
	for _, part := range parts[:len(parts)-1] {
		child := findMapValue(node, part)
		if child == nil {
			child = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
			node.Content = append(node.Content, scalar(part), child)
		}
		if child.Kind != yaml.MappingNode {
			return fmt.Errorf("'%s' is not a mapping in config", part)
		}
		node = child
	}

	leaf := parts[len(parts)-1]
	if existing := findMapValue(node, leaf); existing != nil {
		existing.Kind = yaml.ScalarNode
		existing.Tag = ""
		existing.Value = value
		existing.Content = nil
	} else {
		valueNode := scalar(value)
		valueNode.Tag = ""
		node.Content = append(node.Content, scalar(leaf), valueNode)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var buf strings.Builder
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&root); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	encoder.Close()

	if err := os.WriteFile(configPath, []byte(buf.String()), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// findMapValue finds a value in a mapping node by key name.
func findMapValue(node *yaml.Node, key string) *yaml.Node {
	if node.Kind != yaml.MappingNode {
		return nil
	}

	for i := 0; i < len(node.Content)-1; i += 2 {
		keyNode := node.Content[i]
		valueNode := node.Content[i+1]

		if keyNode.Kind == yaml.ScalarNode && keyNode.Value == key {
			return valueNode
		}
	}

	return nil
}

func scalar(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}

// toDocument mirrors Config with string durations.
func toDocument(cfg *Config) map[string]any {
	dur := func(d time.Duration) string { return d.String() }

	return map[string]any{
		"version":      cfg.Version,
		"interval":     dur(cfg.Interval),
		"history_size": cfg.HistorySize,
		"state_file":   cfg.StateFile,
		"display": map[string]any{
			"mode":       string(cfg.Display.Mode),
			"unit_type":  string(cfg.Display.UnitType),
			"fixed_unit": string(cfg.Display.FixedUnit),
			"arrows":     cfg.Display.Arrows,
			"unstack":    cfg.Display.Unstack,
		},
		"menu": map[string]any{
			"speed":         cfg.Menu.Speed,
			"rssi":          cfg.Menu.RSSI,
			"router_ping":   cfg.Menu.RouterPing,
			"dns_ping":      cfg.Menu.DNSPing,
			"internet_ping": cfg.Menu.InternetPing,
		},
		"probe": map[string]any{
			"internet_host":    cfg.Probe.InternetHost,
			"count":            cfg.Probe.Count,
			"timeout":          dur(cfg.Probe.Timeout),
			"tcp_attempts":     cfg.Probe.TCPAttempts,
			"tcp_timeout":      dur(cfg.Probe.TCPTimeout),
			"tcp_delay":        dur(cfg.Probe.TCPDelay),
			"tcp_method":       string(cfg.Probe.TCPMethod),
			"public_resolvers": cfg.Probe.PublicResolvers,
		},
		"speedtest": map[string]any{
			"command":   cfg.SpeedTest.Command,
			"countdown": dur(cfg.SpeedTest.Countdown),
		},
	}
}
