// Package speedtest runs the system bandwidth test utility on demand and
// publishes its progress as the text output arrives.
package speedtest
