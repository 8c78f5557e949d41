package app

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"
)

type fakeService struct {
	name     string
	startErr error
	exitNow  bool

	mu      sync.Mutex
	stopped bool
	order   *[]string
	stopCh  chan struct{}
}

func newFakeService(name string, order *[]string) *fakeService {
	return &fakeService{name: name, order: order, stopCh: make(chan struct{})}
}

func (s *fakeService) Name() string { return s.name }

func (s *fakeService) Start(ctx context.Context) error {
	if s.startErr != nil {
		return s.startErr
	}
	if s.exitNow {
		return nil
	}
	select {
	case <-ctx.Done():
	case <-s.stopCh:
	}
	return nil
}

func (s *fakeService) Stop(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stopped {
		s.stopped = true
		close(s.stopCh)
		*s.order = append(*s.order, s.name)
	}
	return nil
}

func TestRunnerStopsInReverseOrderOnCancel(t *testing.T) {
	var order []string
	httpSvc := newFakeService("http", &order)
	workerSvc := newFakeService("worker", &order)
	runner := NewRunner(httpSvc, nil, workerSvc)
	if names := runner.Names(); len(names) != 2 || names[0] != "http" || names[1] != "worker" {
		t.Fatalf("unexpected services: %v", names)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runner.Run(ctx, time.Second, nil) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("cancelled run should return nil, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("runner did not stop")
	}
	if len(order) != 2 || order[0] != "worker" || order[1] != "http" {
		t.Fatalf("services should stop in reverse order, got %v", order)
	}
}

func TestRunnerReturnsStartFailure(t *testing.T) {
	var order []string
	healthy := newFakeService("http", &order)
	broken := newFakeService("worker", &order)
	broken.startErr = errors.New("redis unreachable")

	err := NewRunner(healthy, broken).Run(context.Background(), time.Second, nil)
	if err == nil || !errors.Is(err, broken.startErr) {
		t.Fatalf("expected start failure, got %v", err)
	}
	if !healthy.stopped {
		t.Fatalf("healthy service should be stopped after a sibling fails")
	}
}

func TestRunnerServiceExitStopsOthers(t *testing.T) {
	var order []string
	oneShot := newFakeService("oneshot", &order)
	oneShot.exitNow = true
	longRunning := newFakeService("http", &order)

	if err := NewRunner(oneShot, longRunning).Run(context.Background(), time.Second, nil); err != nil {
		t.Fatalf("clean exit should return nil, got %v", err)
	}
	if !longRunning.stopped {
		t.Fatalf("remaining services should be stopped")
	}
}

func TestRunnerWithoutServices(t *testing.T) {
	if err := NewRunner().Run(context.Background(), time.Second, nil); err == nil {
		t.Fatalf("expected error for empty runner")
	}
	if err := RunWithOptions(nil, Options{}); err == nil {
		t.Fatalf("expected error for nil runner")
	}
}

func TestParseMode(t *testing.T) {
	cases := map[string]Mode{"": ModeAll, "ALL": ModeAll, " api ": ModeAPI, "worker": ModeWorker}
	for raw, want := range cases {
		got, err := ParseMode(raw)
		if err != nil || got != want {
			t.Fatalf("ParseMode(%q) = %q, %v; want %q", raw, got, err, want)
		}
	}
	if _, err := ParseMode("cron"); err == nil {
		t.Fatalf("unknown mode should fail")
	}
	if !ModeAll.servesAPI() || !ModeAll.servesWorker() || ModeAPI.servesWorker() || ModeWorker.servesAPI() {
		t.Fatalf("unexpected mode capabilities")
	}
}

func TestHTTPServiceServesAndStops(t *testing.T) {
	svc := NewHTTPService("127.0.0.1:0", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	done := make(chan error, 1)
	go func() { done <- svc.Start(context.Background()) }()

	deadline := time.Now().Add(2 * time.Second)
	for svc.Addr() == "127.0.0.1:0" {
		if time.Now().After(deadline) {
			t.Fatalf("server did not start listening")
		}
		time.Sleep(10 * time.Millisecond)
	}
	resp, err := http.Get("http://" + svc.Addr() + "/")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := svc.Stop(ctx); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("start should return nil after shutdown, got %v", err)
	}
}

func TestHTTPServiceListenFailure(t *testing.T) {
	svc := NewHTTPService("256.0.0.1:bad", http.NotFoundHandler())
	if err := svc.Start(context.Background()); err == nil {
		t.Fatalf("invalid address should fail to listen")
	}
}
