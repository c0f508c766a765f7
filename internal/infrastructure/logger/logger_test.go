package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{" DEBUG ", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNew_JSONOutsideDevelopment(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "relatorio", "info", "production")

	log.Info("Report delivered", "filename", "relatorio_matricula_1_01-2024_a_01-2024.xlsx")
	log.Debug("dropped")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one record, got %d: %q", len(lines), buf.String())
	}

	var record map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &record); err != nil {
		t.Fatalf("expected JSON record: %v", err)
	}
	if record["app"] != "relatorio" {
		t.Errorf("expected app attribute, got %v", record["app"])
	}
	if record["msg"] != "Report delivered" {
		t.Errorf("unexpected msg %v", record["msg"])
	}
	if _, ok := record["source"]; !ok {
		t.Error("expected source attribute in JSON output")
	}
}

func TestNew_TextInDevelopment(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "relatorio", "debug", "local")

	log.Debug("Report requested", "matricula", "4521")

	out := buf.String()
	if !strings.Contains(out, "level=DEBUG") {
		t.Errorf("expected text output, got %q", out)
	}
	if strings.Contains(out, "\033[") {
		t.Errorf("expected no color codes for a non-terminal writer, got %q", out)
	}
	if !strings.Contains(out, "app=relatorio") || !strings.Contains(out, "matricula=4521") {
		t.Errorf("missing attributes in %q", out)
	}
}

func TestColorWriter(t *testing.T) {
	var buf bytes.Buffer
	cw := &colorWriter{writer: &buf, enabled: true}

	in := []byte("time=now level=WARN msg=\"level=INFO inside\"\n")
	n, err := cw.Write(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != len(in) {
		t.Errorf("expected %d bytes reported, got %d", len(in), n)
	}

	out := buf.String()
	if !strings.Contains(out, colorYellow+"level=WARN"+colorReset) {
		t.Errorf("expected colored level, got %q", out)
	}
	if strings.Contains(out, colorGreen) {
		t.Errorf("only the record level should be colored, got %q", out)
	}
}

func TestIsDevelopment(t *testing.T) {
	for _, env := range []string{"local", "dev", "Development"} {
		if !IsDevelopment(env) {
			t.Errorf("expected %q to be development", env)
		}
	}
	for _, env := range []string{"production", "staging", ""} {
		if IsDevelopment(env) {
			t.Errorf("expected %q not to be development", env)
		}
	}
}
