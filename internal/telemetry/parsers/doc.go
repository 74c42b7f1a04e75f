// Package parsers turns the text output of the OS networking utilities
// netbar shells out to into plain values.
//
// Each parser covers one utility's known output grammar and is tested
// against literal samples. Parsers never fail on unexpected lines; they skip
// them and report what they recognized.
package parsers
