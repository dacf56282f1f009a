package logging

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/go-logr/logr"
)

// levelColors and levelText key a verbosity level to its console
// coloring and plain text, using this package's INFO/DEBUG/TRACE
// constants. SprintFunc closures evaluate color.NoColor at call time,
// not at package init, so they track changes a caller makes to it.
var levelColors = map[int]func(...interface{}) string{
	INFO:  color.New(color.FgGreen).SprintFunc(),
	DEBUG: color.New(color.FgCyan).SprintFunc(),
	TRACE: color.New(color.FgYellow).SprintFunc(),
}

var levelText = map[int]string{
	INFO:  "[INFO]",
	DEBUG: "[DEBUG]",
	TRACE: "[TRACE]",
}

var errorColor = color.New(color.FgRed).SprintFunc()

const errorText = "[ERROR]"

// SimpleLogSink is a logr.LogSink that writes one line per record to
// an io.Writer, with an optional colored level label, suitable as the
// default sink a caller installs via options.WithLogger.
type SimpleLogSink struct {
	writer       io.Writer
	minVerbosity int
	name         string
	keyValues    []interface{}
	mutex        *sync.Mutex
	callDepth    int
	useColor     bool
}

// NewSimpleLogSink creates a sink that logs records at or below
// minVerbosity (one of INFO, DEBUG, TRACE) to writer. A nil writer
// defaults to os.Stdout.
func NewSimpleLogSink(writer io.Writer, minVerbosity int, useColor bool) *SimpleLogSink {
	if writer == nil {
		writer = os.Stdout
	}
	return &SimpleLogSink{
		writer:       writer,
		minVerbosity: minVerbosity,
		mutex:        &sync.Mutex{},
		useColor:     useColor,
	}
}

// Init records the call depth logr reports at construction time.
func (s *SimpleLogSink) Init(info logr.RuntimeInfo) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.callDepth = info.CallDepth
}

// Enabled reports whether level is at or below the sink's configured
// verbosity.
func (s *SimpleLogSink) Enabled(level int) bool {
	return level <= s.minVerbosity
}

// Info logs a non-error record at the given verbosity level.
func (s *SimpleLogSink) Info(level int, msg string, keysAndValues ...interface{}) {
	if !s.Enabled(level) {
		return
	}
	s.emit(false, level, msg, keysAndValues...)
}

// Error logs an error record; verbosity gating never applies to
// errors.
func (s *SimpleLogSink) Error(err error, msg string, keysAndValues ...interface{}) {
	withErr := append(append([]interface{}{}, keysAndValues...), "error", err)
	s.emit(true, 0, msg, withErr...)
}

// WithValues returns a sink that prepends keysAndValues to every
// subsequent record.
func (s *SimpleLogSink) WithValues(keysAndValues ...interface{}) logr.LogSink {
	merged := append(append([]interface{}{}, s.keyValues...), keysAndValues...)
	return &SimpleLogSink{
		writer:       s.writer,
		minVerbosity: s.minVerbosity,
		name:         s.name,
		keyValues:    merged,
		mutex:        s.mutex,
		useColor:     s.useColor,
	}
}

// WithName returns a sink whose records are prefixed with name,
// dotted onto any existing name.
func (s *SimpleLogSink) WithName(name string) logr.LogSink {
	newName := name
	if s.name != "" {
		newName = fmt.Sprintf("%s.%s", s.name, name)
	}
	return &SimpleLogSink{
		writer:       s.writer,
		minVerbosity: s.minVerbosity,
		name:         newName,
		keyValues:    append([]interface{}{}, s.keyValues...),
		mutex:        s.mutex,
		useColor:     s.useColor,
	}
}

// V returns this sink unchanged; the level passed to Info at the call
// site is what gates output, not a per-sink offset.
func (s *SimpleLogSink) V(level int) logr.LogSink {
	return s
}

func (s *SimpleLogSink) emit(isError bool, level int, msg string, keysAndValues ...interface{}) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	fmt.Fprintln(s.writer, s.label(isError, level)+s.prefixedMsg(msg))

	all := append(append([]interface{}{}, s.keyValues...), keysAndValues...)
	for i := 0; i+1 < len(all); i += 2 {
		key, ok := all[i].(string)
		if !ok {
			key = fmt.Sprintf("key%d", i/2)
		}
		fmt.Fprintf(s.writer, "  %s: %v\n", key, all[i+1])
	}
}

func (s *SimpleLogSink) label(isError bool, level int) string {
	if isError {
		return s.pick(errorColor(errorText), errorText) + " "
	}
	text, ok := levelText[level]
	if !ok {
		return fmt.Sprintf("[LEVEL %d] ", level)
	}
	return s.pick(levelColors[level](text), text) + " "
}

func (s *SimpleLogSink) pick(colored, plain string) string {
	if s.useColor {
		return colored
	}
	return plain
}

func (s *SimpleLogSink) prefixedMsg(msg string) string {
	if s.name == "" {
		return msg
	}
	return fmt.Sprintf("[%s] %s", s.name, msg)
}

// NewSimpleLogger wraps a SimpleLogSink in a logr.Logger, ready to
// pass to options.WithLogger.
func NewSimpleLogger(writer io.Writer, minVerbosity int, useColor bool) logr.Logger {
	return logr.New(NewSimpleLogSink(writer, minVerbosity, useColor))
}
