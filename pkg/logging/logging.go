// Package logging provides the reference logr.LogSink (SimpleLogSink,
// in simple.go) and the verbosity-level numbering the rest of the
// module's logr.Logger.V(n) calls use.
package logging

// Verbosity levels for direct use with logr.Logger.V(). The module
// plumbs a logr.Logger through via options.WithLogger and calls V(n)
// directly rather than through a bespoke leveled-logger wrapper.
const (
	INFO  = 0
	DEBUG = 1
	TRACE = 2
)
