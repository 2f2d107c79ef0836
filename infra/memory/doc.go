// Package memory provides the bounded object pool that backs tree
// node allocation. Running out of room is reported as ErrExhausted
// rather than by crashing, so callers can refuse an insert cleanly.
package memory
