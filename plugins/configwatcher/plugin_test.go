package configwatcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/bft-labs/threadworker/pkg/lifecycle"
	"github.com/bft-labs/threadworker/pkg/worker"
)

type settings struct {
	Message  string `toml:"message"`
	Interval int    `toml:"interval"`
}

// settingsHooks records delivered settings.
type settingsHooks struct {
	worker.BaseHooks[settings]
	mu        sync.Mutex
	delivered []settings
}

func (h *settingsHooks) MainLoop() { time.Sleep(time.Millisecond) }

func (h *settingsHooks) OnConfiguration(cfg settings) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.delivered = append(h.delivered, cfg)
}

func (h *settingsHooks) Delivered() []settings {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]settings(nil), h.delivered...)
}

func newWorker(t *testing.T, hooks *settingsHooks) *worker.Worker[settings] {
	t.Helper()
	w, err := worker.New[settings](hooks, worker.WithWaitInterval(5*time.Millisecond))
	if err != nil {
		t.Fatalf("worker.New failed: %v", err)
	}
	t.Cleanup(func() { _ = w.Shutdown() })
	return w
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}

func waitUntil(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before timeout")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestPlugin_Name(t *testing.T) {
	p := New[settings](newWorker(t, &settingsHooks{}), DefaultConfig(), nil)
	if p.Name() != "configwatcher" {
		t.Errorf("Name() = %v, want configwatcher", p.Name())
	}
}

func TestPlugin_StartRequiresPath(t *testing.T) {
	p := New[settings](newWorker(t, &settingsHooks{}), Config{}, nil)
	if err := p.Start(context.Background()); err == nil {
		t.Fatal("Start with empty path should fail")
	}
}

func TestPlugin_Defaults(t *testing.T) {
	p := New[settings](newWorker(t, &settingsHooks{}), Config{Path: "x.toml"}, nil)
	def := DefaultConfig()

	if p.cfg.RetryInterval != def.RetryInterval {
		t.Errorf("RetryInterval = %v, want %v", p.cfg.RetryInterval, def.RetryInterval)
	}
	if p.cfg.MaxRetryInterval != def.MaxRetryInterval {
		t.Errorf("MaxRetryInterval = %v, want %v", p.cfg.MaxRetryInterval, def.MaxRetryInterval)
	}
	if p.cfg.DebounceDelay != def.DebounceDelay {
		t.Errorf("DebounceDelay = %v, want %v", p.cfg.DebounceDelay, def.DebounceDelay)
	}
	if p.cfg.DrainTimeout != def.DrainTimeout {
		t.Errorf("DrainTimeout = %v, want %v", p.cfg.DrainTimeout, def.DrainTimeout)
	}
}

func TestPlugin_LoadMergesOverCurrent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.toml")
	hooks := &settingsHooks{}
	w := newWorker(t, hooks)
	p := New[settings](w, Config{Path: path}, nil)

	if err := w.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if err := p.Deliver(context.Background(), settings{Message: "hello", Interval: 10}); err != nil {
		t.Fatalf("Deliver failed: %v", err)
	}
	waitUntil(t, 2*time.Second, func() bool { return w.Configuration().Message == "hello" })

	writeFile(t, path, `interval = 20`)
	got, err := p.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	want := settings{Message: "hello", Interval: 20}
	if got != want {
		t.Errorf("Load() = %+v, want %+v", got, want)
	}
}

func TestPlugin_LoadErrors(t *testing.T) {
	dir := t.TempDir()
	p := New[settings](newWorker(t, &settingsHooks{}), Config{Path: filepath.Join(dir, "missing.toml")}, nil)

	_, err := p.Load()
	if code := errorToCode(err); code != ErrCodeFileNotFound {
		t.Errorf("errorToCode = %v, want %v", code, ErrCodeFileNotFound)
	}

	bad := filepath.Join(dir, "bad.toml")
	writeFile(t, bad, `message = `)
	p = New[settings](newWorker(t, &settingsHooks{}), Config{Path: bad}, nil)

	_, err = p.Load()
	if code := errorToCode(err); code != ErrCodeDecodeError {
		t.Errorf("errorToCode = %v, want %v", code, ErrCodeDecodeError)
	}
}

func TestPlugin_DeliverToRunningWorker(t *testing.T) {
	hooks := &settingsHooks{}
	w := newWorker(t, hooks)
	p := New[settings](w, Config{Path: "unused.toml"}, nil)

	if err := w.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	cfg := settings{Message: "running", Interval: 5}
	if err := p.Deliver(context.Background(), cfg); err != nil {
		t.Fatalf("Deliver failed: %v", err)
	}

	if w.PendingConfiguration() {
		t.Error("configuration still pending after Deliver")
	}
	waitUntil(t, 2*time.Second, func() bool { return w.Configuration() == cfg })
	waitUntil(t, 2*time.Second, func() bool { return w.State() == lifecycle.StateRunning })
}

func TestPlugin_DeliverToPausedWorker(t *testing.T) {
	hooks := &settingsHooks{}
	w := newWorker(t, hooks)
	p := New[settings](w, Config{Path: "unused.toml"}, nil)

	if err := w.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if err := w.Pause(); err != nil {
		t.Fatalf("Pause failed: %v", err)
	}

	cfg := settings{Message: "paused"}
	if err := p.Deliver(context.Background(), cfg); err != nil {
		t.Fatalf("Deliver failed: %v", err)
	}

	waitUntil(t, 2*time.Second, func() bool { return w.Configuration() == cfg })
	if w.State() != lifecycle.StatePaused {
		t.Errorf("State() = %v, want Paused", w.State())
	}
}

func TestPlugin_DeliverRetriesWhilePending(t *testing.T) {
	hooks := &settingsHooks{}
	w := newWorker(t, hooks)
	p := New[settings](w, Config{Path: "unused.toml", RetryInterval: 5 * time.Millisecond}, nil)

	// Not initialized, so the first value stays pending.
	if err := w.Configure(settings{Message: "first"}); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- p.Deliver(context.Background(), settings{Message: "second"}) }()

	time.Sleep(30 * time.Millisecond)
	if err := w.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if err := w.Pause(); err != nil {
		t.Fatalf("Pause failed: %v", err)
	}

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Deliver failed: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Deliver did not return")
	}

	waitUntil(t, 2*time.Second, func() bool { return len(hooks.Delivered()) == 2 })
	if got := hooks.Delivered(); got[0].Message != "first" || got[1].Message != "second" {
		t.Errorf("delivered = %+v, want first then second", got)
	}
}

func TestPlugin_DeliverCanceled(t *testing.T) {
	w := newWorker(t, &settingsHooks{})
	p := New[settings](w, Config{Path: "unused.toml", RetryInterval: 5 * time.Millisecond}, nil)

	if err := w.Configure(settings{Message: "stuck"}); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	if err := p.Deliver(ctx, settings{Message: "never"}); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Deliver error = %v, want context.DeadlineExceeded", err)
	}
}

func TestPlugin_DeliverAfterShutdown(t *testing.T) {
	w := newWorker(t, &settingsHooks{})
	p := New[settings](w, Config{Path: "unused.toml"}, nil)

	_ = w.Shutdown()
	if err := p.Deliver(context.Background(), settings{}); !errors.Is(err, worker.ErrShutdown) {
		t.Errorf("Deliver error = %v, want worker.ErrShutdown", err)
	}
}

func TestPlugin_WatchesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.toml")
	writeFile(t, path, `message = "initial"`)

	hooks := &settingsHooks{}
	w := newWorker(t, hooks)
	if err := w.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	p := New[settings](w, Config{Path: path, DebounceDelay: 10 * time.Millisecond}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := p.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	waitUntil(t, 2*time.Second, func() bool { return w.Configuration().Message == "initial" })

	writeFile(t, path, "message = \"updated\"\ninterval = 3\n")
	waitUntil(t, 2*time.Second, func() bool { return w.Configuration().Message == "updated" })

	if got := w.Configuration().Interval; got != 3 {
		t.Errorf("Interval = %d, want 3", got)
	}
	waitUntil(t, 2*time.Second, func() bool { return w.State() == lifecycle.StateRunning })

	if err := p.Stop(); err != nil {
		t.Errorf("Stop failed: %v", err)
	}
}

func TestPlugin_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.toml")

	hooks := &settingsHooks{}
	w := newWorker(t, hooks)
	if err := w.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	p := New[settings](w, Config{Path: path, DebounceDelay: 10 * time.Millisecond}, nil)
	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer p.Stop()

	writeFile(t, filepath.Join(dir, "other.toml"), `message = "other"`)
	time.Sleep(100 * time.Millisecond)

	if got := hooks.Delivered(); len(got) != 0 {
		t.Errorf("delivered = %+v, want nothing", got)
	}
}

func TestPlugin_StopIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	p := New[settings](newWorker(t, &settingsHooks{}), Config{Path: filepath.Join(dir, "s.toml")}, nil)

	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := p.Stop(); err != nil {
		t.Errorf("Stop failed: %v", err)
	}
	if err := p.Stop(); err != nil {
		t.Errorf("second Stop failed: %v", err)
	}
}

func TestPlugin_SetBase(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.toml")
	writeFile(t, path, `message = "file"`)

	p := New[settings](newWorker(t, &settingsHooks{}), Config{Path: path}, nil)
	p.SetBase(func() settings { return settings{Message: "base", Interval: 9} })

	got, err := p.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	want := settings{Message: "file", Interval: 9}
	if got != want {
		t.Errorf("Load() = %+v, want %+v", got, want)
	}
}
