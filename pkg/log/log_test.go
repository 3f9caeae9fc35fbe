package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestZerologAdapter_Fields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologAdapterWithWriter(&buf)

	logger.With(String("worker", "ticker")).Info("state transition",
		String("to", "Paused"),
		Int("iteration", 3),
		Ints("affinity", []int{0, 2}),
		Duration("wait", 100*time.Millisecond),
		Err(errors.New("boom")),
	)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal log line %q: %v", buf.String(), err)
	}

	checks := map[string]any{
		"level":     "info",
		"message":   "state transition",
		"worker":    "ticker",
		"to":        "Paused",
		"iteration": float64(3),
		"error":     "boom",
	}
	for k, want := range checks {
		if entry[k] != want {
			t.Errorf("entry[%q] = %v, want %v", k, entry[k], want)
		}
	}
	if _, ok := entry["time"]; !ok {
		t.Error("entry has no timestamp")
	}
}

func TestZapAdapter_Fields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := NewZapAdapter(zap.New(core)).With(String("worker", "ticker"))

	logger.Warn("affinity not applied", Ints("cpus", []int{1}), Bool("ok", false))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	ctx := entries[0].ContextMap()
	if ctx["worker"] != "ticker" {
		t.Errorf("worker = %v, want ticker", ctx["worker"])
	}
	if ctx["ok"] != false {
		t.Errorf("ok = %v, want false", ctx["ok"])
	}
	if !strings.Contains(entries[0].Message, "affinity") {
		t.Errorf("message = %q", entries[0].Message)
	}
}

func TestNoopLogger(t *testing.T) {
	var l Logger = NewNoopLogger()
	l = l.With(String("k", "v"))
	l.Debug("x")
	l.Info("x")
	l.Warn("x")
	l.Error("x")
}
