// Package cli implements the netbar command-line interface.
//
// Each Cobra command parses its flags and delegates to a *Command function
// that wires config, the sampling engine and the state store together.
//
// # Command Structure
//
//	netbar monitor             - Live dashboard (TUI), optional /metrics endpoint
//	netbar sample              - Run one sampling cycle and print the result
//	netbar speedtest           - Run the bandwidth test with progressive output
//	netbar totals [--reset]    - Show or reset persisted traffic totals
//	netbar configure           - Edit settings interactively or with --set
//	netbar version             - Print build information
//	netbar completion <shell>  - Generate shell completion
//
// # Flag Handling
//
// Global flags (--config, --verbose, --no-color) are defined on the root
// command. --verbose turns on debug logging through NETBAR_DEBUG so every
// component's environment logger picks it up.
//
// # State
//
// Commands that write traffic totals take the state file's instance lock
// first. sample reads totals but never writes them.
package cli
