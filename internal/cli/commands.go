package cli

import (
	"github.com/rileyhilliard/netbar/internal/errors"
	"github.com/spf13/cobra"
)

// Command-specific flags
var (
	monitorFlags  monitorOptions
	sampleJSON    bool
	totalsReset   bool
	totalsJSON    bool
	configureSets []string
	versionShort  bool
)

// monitorCmd starts the TUI dashboard
var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Live network dashboard",
	Long: `Sample the network on a fixed interval and show throughput, Wi-Fi signal,
reachability and the speed test in an interactive dashboard.

Traffic totals are saved to the state file as they accumulate. Only one
monitor can own a state file at a time.

Examples:
  netbar monitor
  netbar monitor --interval 2s
  netbar monitor --metrics-addr 127.0.0.1:9273 --log-file /tmp/netbar.log`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return monitorCommand(monitorFlags)
	},
}

// sampleCmd runs one sampling cycle
var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Sample once and print the result",
	Long: `Run two sampling cycles one interval apart and print the second:
the status line, link details and latency to each probe target.

Examples:
  netbar sample
  netbar sample --json | jq .data.reachability`,
	RunE: func(cmd *cobra.Command, args []string) error {
		err := sampleCommand(cmd.OutOrStdout(), sampleJSON)
		if err != nil && sampleJSON {
			_ = WriteJSONFromError(cmd.OutOrStdout(), err)
		}
		return err
	},
}

// speedtestCmd runs the bandwidth test in the foreground
var speedtestCmd = &cobra.Command{
	Use:   "speedtest",
	Short: "Run a bandwidth test",
	Long: `Run the system speed test utility (networkQuality by default) and print
download, upload and responsiveness as they are reported.

Press Ctrl-C to cancel; values measured so far are kept.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return speedtestCommand(cmd.OutOrStdout())
	},
}

// totalsCmd shows or resets traffic totals
var totalsCmd = &cobra.Command{
	Use:   "totals",
	Short: "Show or reset traffic totals",
	Long: `Print the traffic transferred since the last reset.

--reset zeroes the totals. It refuses while a monitor is running, because
the monitor would overwrite the reset.

Examples:
  netbar totals
  netbar totals --reset`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return totalsCommand(cmd.OutOrStdout(), totalsReset, totalsJSON)
	},
}

// configureCmd edits settings
var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Edit settings",
	Long: `Edit netbar settings in an interactive form, or set individual keys.

Examples:
  netbar configure
  netbar configure --set interval=2s --set menu.rssi=true`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return configureCommand(cmd.OutOrStdout(), configureSets)
	},
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of netbar.`,
	Run: func(cmd *cobra.Command, args []string) {
		printVersion(cmd.OutOrStdout(), versionShort)
	},
}

// completionCmd generates shell completion scripts
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion scripts for netbar.

Examples:
  # Bash
  netbar completion bash > /etc/bash_completion.d/netbar

  # Zsh
  netbar completion zsh > "${fpath[1]}/_netbar"

  # Fish
  netbar completion fish > ~/.config/fish/completions/netbar.fish`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(out)
		case "zsh":
			return rootCmd.GenZshCompletion(out)
		case "fish":
			return rootCmd.GenFishCompletion(out, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletion(out)
		default:
			return errors.New(errors.ErrExec,
				"Unknown shell: "+args[0],
				"Supported shells: bash, zsh, fish, powershell")
		}
	},
}

func init() {
	// monitor command flags
	monitorCmd.Flags().StringVar(&monitorFlags.Interval, "interval", "", "sampling interval (e.g., 1s, 2s, 500ms)")
	monitorCmd.Flags().StringVar(&monitorFlags.MetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	monitorCmd.Flags().StringVar(&monitorFlags.LogFile, "log-file", "", "write JSON logs to this file")

	sampleCmd.Flags().BoolVar(&sampleJSON, "json", false, "print JSON")

	totalsCmd.Flags().BoolVar(&totalsReset, "reset", false, "zero the totals")
	totalsCmd.Flags().BoolVar(&totalsJSON, "json", false, "print JSON")

	configureCmd.Flags().StringArrayVar(&configureSets, "set", nil, "set one key (key=value); repeatable")

	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Print only the version number")

	// Register all commands
	rootCmd.AddCommand(monitorCmd)
	rootCmd.AddCommand(sampleCmd)
	rootCmd.AddCommand(speedtestCmd)
	rootCmd.AddCommand(totalsCmd)
	rootCmd.AddCommand(configureCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(completionCmd)
}
