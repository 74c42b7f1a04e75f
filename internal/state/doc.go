// Package state persists traffic totals between runs and guards the state
// file with a single-writer lock.
package state
