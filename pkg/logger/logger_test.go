package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/autonomysim/coresim/pkg/spatial"
)

func newTestLogger(buf *bytes.Buffer, level Level) Logger {
	return NewWithConfig(Config{Level: level, Writer: buf, NoColor: true, ShowTime: false})
}

func TestLogFiltersBelowConfiguredLevel(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf, WarnLevel)
	l.Info("hidden")
	l.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("expected Info to be filtered below WarnLevel, got %q", out)
	}
	if !strings.Contains(out, "shown") {
		t.Fatalf("expected Warn to pass the level filter, got %q", out)
	}
}

func TestLogIncludesLevelAndMessage(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf, DebugLevel)
	l.Error("boom")

	out := buf.String()
	if !strings.Contains(out, "ERROR") || !strings.Contains(out, "boom") {
		t.Fatalf("expected the level tag and message in output, got %q", out)
	}
}

func TestErrorfFormatsMessage(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf, DebugLevel)
	l.Errorf("value=%d", 42)

	if !strings.Contains(buf.String(), "value=42") {
		t.Fatalf("expected the formatted message, got %q", buf.String())
	}
}

func TestWithPrefixTagsSubsequentLines(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf, DebugLevel)
	prefixed := l.WithPrefix("worker")
	prefixed.Info("started")

	if !strings.Contains(buf.String(), "[worker]") {
		t.Fatalf("expected the prefix tag in output, got %q", buf.String())
	}
}

func TestWithFieldIncludesKeyValueInOutput(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf, DebugLevel)
	l.WithField("count", 3).Info("tick")

	if !strings.Contains(buf.String(), "count=3") {
		t.Fatalf("expected the field rendered as key=value, got %q", buf.String())
	}
}

func TestWithFieldDoesNotMutateParentLogger(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf, DebugLevel)
	_ = l.WithField("count", 3)
	l.Info("plain")

	if strings.Contains(buf.String(), "count=3") {
		t.Fatalf("expected WithField to return a derived logger, not mutate the original, got %q", buf.String())
	}
}

func TestWithFieldsMergesAllPairs(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf, DebugLevel)
	l.WithFields(map[string]interface{}{"a": 1, "b": 2}).Info("merged")

	out := buf.String()
	if !strings.Contains(out, "a=1") || !strings.Contains(out, "b=2") {
		t.Fatalf("expected both fields present, got %q", out)
	}
}

func TestWithSimTimeTagsLineWithSecondsElapsed(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf, DebugLevel)
	l.WithSimTime(spatial.TimePoint(spatial.SecondsToDelta(12.5))).Info("tick")

	if !strings.Contains(buf.String(), "t=12.500s") {
		t.Fatalf("expected the sim time rendered in seconds, got %q", buf.String())
	}
}

func TestWithSimTimeDoesNotMutateParentLogger(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf, DebugLevel)
	_ = l.WithSimTime(spatial.TimePoint(spatial.SecondsToDelta(1)))
	l.Info("plain")

	if strings.Contains(buf.String(), "t=1.000s") {
		t.Fatalf("expected WithSimTime to return a derived logger, not mutate the original, got %q", buf.String())
	}
}

func TestParseLevelRecognizesNamesCaseInsensitively(t *testing.T) {
	cases := map[string]Level{
		"debug":   DebugLevel,
		"INFO":    InfoLevel,
		"Warn":    WarnLevel,
		"warning": WarnLevel,
		"error":   ErrorLevel,
		"fatal":   FatalLevel,
		"bogus":   InfoLevel,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestTablePrintDoesNotPanic(t *testing.T) {
	tbl := NewTable("Name", "Score")
	tbl.AddRow("alice", "10")
	tbl.AddRow("bob", "9")
	// Print writes to stdout directly; this just exercises the code path
	// for panics without asserting on captured output.
	tbl.Print()
}
