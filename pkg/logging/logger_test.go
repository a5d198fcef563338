package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel/trace"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]interface{}
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("failed to parse JSON line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Level != LevelInfo {
		t.Errorf("expected default level to be info, got %s", cfg.Level)
	}
	if cfg.JSONFormat {
		t.Error("expected default JSONFormat to be false")
	}
	if cfg.Output == nil {
		t.Error("expected default output to be set")
	}
}

func TestNewLogger_NilConfig(t *testing.T) {
	if NewLogger(nil) == nil {
		t.Error("expected non-nil logger with nil config")
	}
}

func TestLogger_JSONFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewLogger(&Config{Level: LevelDebug, JSONFormat: true, Output: buf})

	log.Info("loaded ledger", F("meetings", 12), F("path", "meetings.txt"))

	lines := decodeLines(t, buf)
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	out := lines[0]
	if out["message"] != "loaded ledger" {
		t.Errorf("expected message 'loaded ledger', got %v", out["message"])
	}
	if out["meetings"] != float64(12) {
		t.Errorf("expected meetings 12, got %v", out["meetings"])
	}
	if out["path"] != "meetings.txt" {
		t.Errorf("expected path 'meetings.txt', got %v", out["path"])
	}
	if out["level"] != "info" {
		t.Errorf("expected level 'info', got %v", out["level"])
	}
	if _, ok := out["time"]; !ok {
		t.Error("expected timestamp field 'time' in output")
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewLogger(&Config{Level: LevelWarn, JSONFormat: true, Output: buf})

	log.Debug("debug - hidden")
	log.Info("info - hidden")
	log.Warn("warn - shown")
	log.Error("error - shown")

	lines := decodeLines(t, buf)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %s", len(lines), buf.String())
	}
	if lines[0]["level"] != "warn" || lines[1]["level"] != "error" {
		t.Errorf("unexpected levels: %v, %v", lines[0]["level"], lines[1]["level"])
	}
}

func TestLogger_LevelIsPerLogger(t *testing.T) {
	quiet := &bytes.Buffer{}
	loud := &bytes.Buffer{}
	NewLogger(&Config{Level: LevelError, JSONFormat: true, Output: quiet})
	log := NewLogger(&Config{Level: LevelDebug, JSONFormat: true, Output: loud})

	log.Debug("still visible")

	if !strings.Contains(loud.String(), "still visible") {
		t.Errorf("a later logger's level must not be capped by an earlier one: %q", loud.String())
	}
}

func TestLogger_WithFields(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewLogger(&Config{Level: LevelInfo, JSONFormat: true, Output: buf}).
		With(F("component", "parser"), F("line", 7))

	log.Info("bad line")

	out := decodeLines(t, buf)[0]
	if out["component"] != "parser" {
		t.Errorf("expected component 'parser', got %v", out["component"])
	}
	if out["line"] != float64(7) {
		t.Errorf("expected line 7, got %v", out["line"])
	}
}

func TestLogger_WithContext_Span(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewLogger(&Config{Level: LevelInfo, JSONFormat: true, Output: buf})

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: trace.TraceID{0x01, 0x02},
		SpanID:  trace.SpanID{0x03},
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	log.WithContext(ctx).Info("traced")

	out := decodeLines(t, buf)[0]
	if out["trace_id"] != sc.TraceID().String() {
		t.Errorf("expected trace_id %s, got %v", sc.TraceID(), out["trace_id"])
	}
	if out["span_id"] != sc.SpanID().String() {
		t.Errorf("expected span_id %s, got %v", sc.SpanID(), out["span_id"])
	}
}

func TestLogger_WithContext_NoSpan(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewLogger(&Config{Level: LevelInfo, JSONFormat: true, Output: buf})

	log.WithContext(context.Background()).Info("untraced")

	out := decodeLines(t, buf)[0]
	if _, ok := out["trace_id"]; ok {
		t.Error("expected no trace_id without a span")
	}
}

func TestLogger_FieldTypes(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewLogger(&Config{Level: LevelInfo, JSONFormat: true, Output: buf})

	log.Info("types",
		F("str", "s"),
		F("strs", []string{"001", "002"}),
		F("int64", int64(64)),
		F("float", 1.5),
		F("bool", true),
		F("dur", 2*time.Second),
		Err(errors.New("boom")),
	)

	out := decodeLines(t, buf)[0]
	if out["str"] != "s" {
		t.Errorf("str = %v", out["str"])
	}
	if strs, ok := out["strs"].([]interface{}); !ok || len(strs) != 2 {
		t.Errorf("strs = %v", out["strs"])
	}
	if out["int64"] != float64(64) {
		t.Errorf("int64 = %v", out["int64"])
	}
	if out["float"] != 1.5 {
		t.Errorf("float = %v", out["float"])
	}
	if out["bool"] != true {
		t.Errorf("bool = %v", out["bool"])
	}
	if _, ok := out["dur"]; !ok {
		t.Error("expected dur field")
	}
	if out["error"] != "boom" {
		t.Errorf("error = %v", out["error"])
	}
}

func TestLogger_ConsoleFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewLogger(&Config{Level: LevelInfo, Output: buf})

	log.Info("console output test", F("path", "meetings.txt"))

	output := buf.String()
	if !strings.Contains(output, "console output test") {
		t.Errorf("console output should contain message: %s", output)
	}
	if !strings.Contains(output, "INF") {
		t.Errorf("console output should contain level indicator: %s", output)
	}
	if strings.Contains(output, "\x1b[") {
		t.Errorf("non-terminal output should have no colour codes: %q", output)
	}
}

func TestGlobal_NotInitialized(t *testing.T) {
	oldGlobal := global
	global = nil
	defer func() { global = oldGlobal }()

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic when global not initialized")
		}
	}()

	Global()
}

func TestSetGlobal_And_Global(t *testing.T) {
	oldGlobal := global
	defer func() { global = oldGlobal }()

	buf := &bytes.Buffer{}
	SetGlobal(NewLogger(&Config{Level: LevelInfo, JSONFormat: true, Output: buf}))
	Global().Info("global logger test")

	if !strings.Contains(buf.String(), "global logger test") {
		t.Errorf("global logger should have logged: %s", buf.String())
	}
}

func TestMustGlobal_InitializesDefaults(t *testing.T) {
	oldGlobal := global
	global = nil
	defer func() { global = oldGlobal }()

	if MustGlobal() == nil {
		t.Error("MustGlobal should return non-nil logger")
	}
}

func TestNopLogger(t *testing.T) {
	log := NewNopLogger()
	log.Info("discarded")
	if log.With(F("k", "v")) != log {
		t.Error("nop With should return the same logger")
	}
	if log.WithContext(context.Background()) != log {
		t.Error("nop WithContext should return the same logger")
	}
}

func TestF_And_Err_Helpers(t *testing.T) {
	f := F("key", "value")
	if f.Key != "key" || f.Value != "value" {
		t.Errorf("F helper failed: %+v", f)
	}

	testErr := errors.New("test")
	errField := Err(testErr)
	if errField.Key != "error" {
		t.Errorf("Err helper should use 'error' as key, got: %s", errField.Key)
	}
	if errField.Value != testErr {
		t.Errorf("Err helper value mismatch")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{" warn ", LevelWarn, false},
		{"error", LevelError, false},
		{"", LevelInfo, false},
		{"verbose", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestZerologLevel(t *testing.T) {
	tests := []struct {
		input    Level
		expected string
	}{
		{LevelDebug, "debug"},
		{LevelInfo, "info"},
		{LevelWarn, "warn"},
		{LevelError, "error"},
		{Level("invalid"), "info"},
	}

	for _, tt := range tests {
		t.Run(string(tt.input), func(t *testing.T) {
			if got := parseLevel(tt.input).String(); got != tt.expected {
				t.Errorf("parseLevel(%s) = %s, want %s", tt.input, got, tt.expected)
			}
		})
	}
}
