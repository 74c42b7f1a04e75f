// Package telemetry samples the host's network state on a fixed cadence.
//
// # Key Components
//
//	RouteResolver - Finds the primary interface and gateway from the default route
//	LinkReader    - Turns cumulative interface byte counters into per-second rates
//	WifiReader    - Reads signal, noise, rate and channel of the wireless link
//	Prober        - Measures latency and loss with ping, falling back to TCP connects
//	Jitter        - Per-target sliding windows of latency deltas
//	History       - Fixed-capacity FIFO buffers feeding the sparklines
//	Scheduler     - Drives the cycle and owns all mutable state
//
// # Cycle
//
// Every tick the Scheduler spawns one measurement cycle off the tick path:
//
//  1. resolve the primary interface (none: mark disconnected, stop here)
//  2. read throughput and accumulate traffic totals
//  3. read the wireless link, if the interface is wireless
//  4. probe gateway, DNS resolver and internet host concurrently
//
// Results from every step are applied through a single mutex-guarded update
// path, and the summary line is recomputed after each update. Probe results
// may land out of order across ticks; each target only ever writes its own
// fields.
//
// All OS interaction goes through exec.Runner, so tests drive the package
// with canned utility output and a mock clock.
package telemetry
