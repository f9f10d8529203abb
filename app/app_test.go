package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

type fakeServer struct {
	startErr error
	started  chan struct{}
	stopped  bool
}

func newFakeServer(err error) *fakeServer {
	return &fakeServer{startErr: err, started: make(chan struct{})}
}

func (s *fakeServer) Start(ctx context.Context) error {
	close(s.started)
	if s.startErr != nil {
		return s.startErr
	}
	<-ctx.Done()
	s.stopped = true
	return nil
}

func (s *fakeServer) Stop(context.Context) error { return nil }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunStopsOnCancel(t *testing.T) {
	var (
		mu    sync.Mutex
		order []string
	)
	record := func(s string) {
		mu.Lock()
		order = append(order, s)
		mu.Unlock()
	}
	hook := func(name string) Hook {
		return Hook{
			Name:    name,
			OnStart: func(context.Context) error { record("start " + name); return nil },
			OnStop:  func(context.Context) error { record("stop " + name); return nil },
		}
	}

	srv := newFakeServer(nil)
	a := New("test", quietLogger(), WithServer(srv), WithHook(hook("a"), hook("b")),
		WithCleanup("c", func() error { record("stop c"); return nil }))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	<-srv.started
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}

	if !srv.stopped {
		t.Error("server not stopped")
	}
	want := []string{"start a", "start b", "stop c", "stop b", "stop a"}
	if len(order) != len(want) {
		t.Fatalf("order %v", order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order %v want %v", order, want)
			break
		}
	}
}

func TestRunServerFailureCancelsOthers(t *testing.T) {
	boom := errors.New("listen failed")
	healthy, broken := newFakeServer(nil), newFakeServer(boom)
	var cleaned bool
	a := New("test", quietLogger(), WithServer(healthy, broken),
		WithCleanup("cache", func() error { cleaned = true; return nil }))

	err := a.Run(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected %v, got %v", boom, err)
	}
	if !healthy.stopped || !cleaned {
		t.Errorf("healthy stopped=%v cleaned=%v", healthy.stopped, cleaned)
	}
}

func TestRunStartHookFailure(t *testing.T) {
	boom := errors.New("warmup failed")
	var stoppedFirst, stoppedSecond bool
	a := New("test", quietLogger(), WithHook(
		Hook{Name: "first", OnStop: func(context.Context) error { stoppedFirst = true; return nil }},
		Hook{Name: "second", OnStart: func(context.Context) error { return boom },
			OnStop: func(context.Context) error { stoppedSecond = true; return nil }},
	), WithShutdownTimeout(time.Second))

	if err := a.Run(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected %v, got %v", boom, err)
	}
	if !stoppedFirst || stoppedSecond {
		t.Errorf("first stopped=%v second stopped=%v", stoppedFirst, stoppedSecond)
	}
}
