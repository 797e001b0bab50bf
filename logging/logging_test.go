package logging

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{" error ", slog.LevelError},
		{"invalid", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLogLevel(tt.input); got != tt.expected {
				t.Errorf("parseLogLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestWeekKey(t *testing.T) {
	tests := []struct {
		date     time.Time
		expected string
	}{
		{time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "2024-W01"},
		{time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC), "2025-W01"},
		{time.Date(2021, 1, 3, 0, 0, 0, 0, time.UTC), "2020-W53"},
	}

	for _, tt := range tests {
		if got := weekKey(tt.date); got != tt.expected {
			t.Errorf("weekKey(%s) = %s, want %s", tt.date.Format("2006-01-02"), got, tt.expected)
		}
	}
}

func TestRotatingLoggerSwitchesWeeks(t *testing.T) {
	dir := t.TempDir()
	rl := NewRotatingLogger(dir, 2)
	defer rl.Close()

	now := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	if _, err := rl.Write([]byte("first\n")); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	now = now.Add(7 * 24 * time.Hour)
	if _, err := rl.Write([]byte("second\n")); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	first, err := os.ReadFile(filepath.Join(dir, "loe-2024-W10.log"))
	if err != nil {
		t.Fatalf("expected first week file: %v", err)
	}
	if string(first) != "first\n" {
		t.Errorf("first week file = %q", first)
	}

	second, err := os.ReadFile(filepath.Join(dir, "loe-2024-W11.log"))
	if err != nil {
		t.Fatalf("expected second week file: %v", err)
	}
	if string(second) != "second\n" {
		t.Errorf("second week file = %q", second)
	}
}

func TestCleanupOldLogs(t *testing.T) {
	dir := t.TempDir()
	rl := NewRotatingLogger(dir, 1)

	old := filepath.Join(dir, "loe-2020-W01.log")
	recent := filepath.Join(dir, "loe-2020-W10.log")
	unrelated := filepath.Join(dir, "notes.txt")
	for _, path := range []string{old, recent, unrelated} {
		if err := os.WriteFile(path, []byte("x"), 0600); err != nil {
			t.Fatal(err)
		}
	}

	now := time.Now()
	rl.now = func() time.Time { return now }
	longAgo := now.Add(-30 * 24 * time.Hour)
	if err := os.Chtimes(old, longAgo, longAgo); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(unrelated, longAgo, longAgo); err != nil {
		t.Fatal(err)
	}

	deleted, err := rl.cleanupOldLogs()
	if err != nil {
		t.Fatalf("cleanup failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("expected 1 deleted file, got %d", deleted)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Error("expected old log to be removed")
	}
	if _, err := os.Stat(recent); err != nil {
		t.Error("expected recent log to remain")
	}
	if _, err := os.Stat(unrelated); err != nil {
		t.Error("expected non-log file to remain")
	}
}

func TestSetupLoggerWritesJSONFile(t *testing.T) {
	dir := t.TempDir()
	logger, rotate := SetupLogger(dir, slog.LevelInfo, 1)
	if rotate == nil {
		t.Fatal("expected a rotating logger")
	}

	logger.Info("orange book loaded", "products", 3)
	logger.Debug("hidden")
	if err := rotate.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	content, err := os.ReadFile(filepath.Join(dir, logFileName(weekKey(time.Now()))))
	if err != nil {
		t.Fatalf("expected log file: %v", err)
	}
	if !strings.Contains(string(content), `"msg":"orange book loaded"`) {
		t.Errorf("expected JSON record, got %s", content)
	}
	if strings.Contains(string(content), "hidden") {
		t.Error("debug record written at info level")
	}
}

func TestSetupLoggerWithoutDirectory(t *testing.T) {
	logger, rotate := SetupLogger("", slog.LevelInfo, 1)
	if logger == nil {
		t.Fatal("expected console logger")
	}
	if rotate != nil {
		t.Error("expected no rotating logger without a directory")
	}
}

func TestLoggingMiddleware(t *testing.T) {
	var out strings.Builder
	logger := slog.New(slog.NewTextHandler(&out, &slog.HandlerOptions{Level: slog.LevelInfo}))

	handler := LoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/profiles/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte("ok"))
	}))

	t.Run("health is not logged", func(t *testing.T) {
		out.Reset()
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
		if out.Len() != 0 {
			t.Errorf("expected no log output, got %s", out.String())
		}
	})

	t.Run("metrics is not logged", func(t *testing.T) {
		out.Reset()
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/metrics", nil))
		if out.Len() != 0 {
			t.Errorf("expected no log output, got %s", out.String())
		}
	})

	t.Run("api request is logged", func(t *testing.T) {
		out.Reset()
		req := httptest.NewRequest(http.MethodGet, "/v1/profiles/missing?x=1", nil)
		req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "req-42"))
		handler.ServeHTTP(httptest.NewRecorder(), req)

		logs := out.String()
		for _, want := range []string{"request_id=req-42", "status_code=404", "path=/v1/profiles/missing"} {
			if !strings.Contains(logs, want) {
				t.Errorf("expected %q in log output: %s", want, logs)
			}
		}
	})

	t.Run("missing request id", func(t *testing.T) {
		out.Reset()
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/conditions/asthma", nil))
		if !strings.Contains(out.String(), "request_id=unknown") {
			t.Errorf("expected unknown request id, got %s", out.String())
		}
	})
}

func TestPackageLevelFunctionsWithoutInit(t *testing.T) {
	if err := Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	// must not panic
	Info("info")
	Warn("warn")
	Error("error")
	Debug("debug")
}
