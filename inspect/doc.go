// Package inspect exposes timedfsm machines to development tooling.
//
// Nothing in this package feeds back into a machine. The host goroutine
// pushes snapshots into a Recorder, typically from a host.WithAfterFrame
// hook guarded by a debug flag, and the HTTP handler only ever reads the
// Recorder. Metrics are collected through machine callbacks.
package inspect
