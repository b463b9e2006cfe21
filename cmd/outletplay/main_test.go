package main

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/abrezinsky/outletplay/internal/logger"
)

func TestCycleLogLevel(t *testing.T) {
	appLog := logger.NewWithOptions(logger.Options{Level: slog.LevelDebug, Writer: &bytes.Buffer{}})

	want := []string{"info", "warn", "error", "debug"}
	for _, w := range want {
		if got := cycleLogLevel(appLog); got != w {
			t.Errorf("expected %s, got %s", w, got)
		}
		if appLog.GetLevel() != logger.ParseLevel(w) {
			t.Errorf("logger level not set to %s", w)
		}
	}
}

func TestToggleHTTPLogging(t *testing.T) {
	appLog := logger.NewWithOptions(logger.Options{Writer: &bytes.Buffer{}})

	if !toggleHTTPLogging(appLog) || !appLog.IsHTTPLoggingEnabled() {
		t.Error("expected HTTP logging to turn on")
	}
	if toggleHTTPLogging(appLog) || appLog.IsHTTPLoggingEnabled() {
		t.Error("expected HTTP logging to turn off")
	}
}
