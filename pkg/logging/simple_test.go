package logging

import (
	"bytes"
	"errors"
	"os"
	"reflect"
	"strings"
	"testing"

	"github.com/go-logr/logr"
)

func TestDefaultWriter(t *testing.T) {
	s := NewSimpleLogSink(nil, DEBUG, true)
	if s.writer != os.Stdout {
		t.Errorf("expected default writer to be os.Stdout, got %v", s.writer)
	}
}

func TestEnabled(t *testing.T) {
	s := NewSimpleLogSink(&bytes.Buffer{}, DEBUG, true)
	if !s.Enabled(INFO) {
		t.Error("expected INFO to be enabled")
	}
	if !s.Enabled(DEBUG) {
		t.Error("expected DEBUG to be enabled")
	}
	if s.Enabled(TRACE) {
		t.Error("expected TRACE to be disabled")
	}
}

func TestInfoLogging(t *testing.T) {
	buf := &bytes.Buffer{}
	s := NewSimpleLogSink(buf, DEBUG, true)
	s.Info(INFO, "hello world", "key", "value")
	output := buf.String()

	if !strings.Contains(output, "hello world") {
		t.Errorf("expected output to contain 'hello world', got %q", output)
	}
	if !strings.Contains(output, "key: value") {
		t.Errorf("expected output to contain key-value pair, got %q", output)
	}
	if !strings.Contains(output, "[INFO]") {
		t.Errorf("expected output to contain [INFO] label, got %q", output)
	}
}

func TestInfoNotLoggedWhenDisabled(t *testing.T) {
	buf := &bytes.Buffer{}
	s := NewSimpleLogSink(buf, INFO, true)
	s.Info(DEBUG, "this should not be logged", "foo", "bar")
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestErrorLogging(t *testing.T) {
	buf := &bytes.Buffer{}
	s := NewSimpleLogSink(buf, INFO, true)
	err := errors.New("sample error")
	s.Error(err, "an error occurred", "context", "testing")
	output := buf.String()

	if !strings.Contains(output, "[ERROR]") {
		t.Errorf("expected output to contain [ERROR] label, got %q", output)
	}
	if !strings.Contains(output, "an error occurred") {
		t.Errorf("expected error message, got %q", output)
	}
	if !strings.Contains(output, "context: testing") {
		t.Errorf("expected context key-value, got %q", output)
	}
	if !strings.Contains(output, "error: sample error") {
		t.Errorf("expected error key-value, got %q", output)
	}
}

// Without color, labels fall back to plain brackets rather than the
// ANSI-wrapped ones — exercises the useColor toggle the level labels
// are keyed on.
func TestInfoLoggingWithoutColor(t *testing.T) {
	buf := &bytes.Buffer{}
	s := NewSimpleLogSink(buf, INFO, false)
	s.Info(INFO, "plain output")
	output := buf.String()

	if !strings.HasPrefix(output, "[INFO] plain output") {
		t.Errorf("expected plain [INFO] prefix, got %q", output)
	}
	if strings.Contains(output, "\x1b[") {
		t.Errorf("expected no ANSI escape codes, got %q", output)
	}
}

func TestWithName(t *testing.T) {
	buf := &bytes.Buffer{}
	s := NewSimpleLogSink(buf, DEBUG, true)
	named := s.WithName("MyLogger")
	named.Info(INFO, "test message")
	output := buf.String()

	if !strings.Contains(output, "[MyLogger]") {
		t.Errorf("expected output to contain [MyLogger], got %q", output)
	}
}

func TestChainedWithName(t *testing.T) {
	buf := &bytes.Buffer{}
	s := NewSimpleLogSink(buf, DEBUG, true)
	chain := s.WithName("A").WithName("B").(*SimpleLogSink)
	chain.Info(INFO, "chained name")
	output := buf.String()

	if !strings.Contains(output, "[A.B]") {
		t.Errorf("expected output to contain [A.B], got %q", output)
	}
}

// WithValues' key-value pairs must survive into every record logged
// through the derived sink, not just the ones passed at the call site.
func TestWithValuesCarriesThrough(t *testing.T) {
	buf := &bytes.Buffer{}
	s := NewSimpleLogSink(buf, DEBUG, true)
	withVals := s.WithValues("request", "r1").(*SimpleLogSink)
	withVals.Info(INFO, "handling", "step", 1)
	output := buf.String()

	if !strings.Contains(output, "request: r1") {
		t.Errorf("expected carried-over key-value, got %q", output)
	}
	if !strings.Contains(output, "step: 1") {
		t.Errorf("expected call-site key-value, got %q", output)
	}
}

// Sinks derived via WithName/WithValues must share the parent's mutex
// so interleaved writes to the same writer stay serialized.
func TestDerivedSinksShareMutex(t *testing.T) {
	s := NewSimpleLogSink(&bytes.Buffer{}, DEBUG, true)
	named := s.WithName("child").(*SimpleLogSink)
	if named.mutex != s.mutex {
		t.Error("expected WithName to share the parent sink's mutex")
	}
}

func TestNonStringKey(t *testing.T) {
	buf := &bytes.Buffer{}
	s := NewSimpleLogSink(buf, DEBUG, true)
	s.Info(INFO, "non-string key", 123, "value")
	output := buf.String()

	if !strings.Contains(output, "key0: value") {
		t.Errorf("expected output to contain 'key0: value', got %q", output)
	}
}

func TestInitSetsCallDepth(t *testing.T) {
	buf := &bytes.Buffer{}
	s := NewSimpleLogSink(buf, DEBUG, true)
	s.Init(logr.RuntimeInfo{CallDepth: 5})

	val := reflect.ValueOf(s).Elem()
	cd := val.FieldByName("callDepth").Int()
	if cd != 5 {
		t.Errorf("expected callDepth 5, got %d", cd)
	}
}

func TestNewSimpleLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewSimpleLogger(buf, DEBUG, true)
	logger.Info("logger info", "testKey", "testValue")
	output := buf.String()

	if !strings.Contains(output, "logger info") {
		t.Errorf("expected logger info message, got %q", output)
	}
}
