package queue

import (
	"context"
	"testing"

	"github.com/pressdesk/internal/config"
)

func TestDisabledClientSkipsEnqueue(t *testing.T) {
	client, err := NewClient(&config.QueueConfig{Enabled: false, Host: "redis"})
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	if client.Enabled() {
		t.Fatalf("client should be disabled")
	}
	if err := client.EnqueueContentStatusEmail(context.Background(), ContentStatusEmailPayload{ContentID: 1, Status: "PUBLISHED"}); err != nil {
		t.Fatalf("disabled enqueue should be noop: %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	var nilClient *Client
	if nilClient.Enabled() {
		t.Fatalf("nil client should report disabled")
	}
}

func TestContentStatusEmailTaskPayload(t *testing.T) {
	task, err := NewContentStatusEmailTask(ContentStatusEmailPayload{ContentID: 12, Status: "PUBLISHED", DOI: "10.5555/x"})
	if err != nil {
		t.Fatalf("new task failed: %v", err)
	}
	if task.Type() != TaskContentStatusEmail {
		t.Fatalf("unexpected task type: %s", task.Type())
	}
	payload, err := ParseContentStatusEmailPayload(task.Payload())
	if err != nil {
		t.Fatalf("parse payload failed: %v", err)
	}
	if payload.ContentID != 12 || payload.Status != "PUBLISHED" || payload.DOI != "10.5555/x" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
	if _, err := ParseContentStatusEmailPayload([]byte("{")); err == nil {
		t.Fatalf("broken payload should fail to parse")
	}
}

func TestStatusEmailTaskIDIsStablePerTransition(t *testing.T) {
	a := statusEmailTaskID(ContentStatusEmailPayload{ContentID: 3, Status: "PUBLISHED"})
	b := statusEmailTaskID(ContentStatusEmailPayload{ContentID: 3, Status: "published", DOI: "10.5555/y"})
	if a != b || a != "content-status:3:published" {
		t.Fatalf("unexpected task ids: %s %s", a, b)
	}
	if a == statusEmailTaskID(ContentStatusEmailPayload{ContentID: 3, Status: "ARCHIVED"}) {
		t.Fatalf("different statuses must not share a task id")
	}
}

func TestBuildServerConfig(t *testing.T) {
	opt, cfg := BuildServerConfig(&config.QueueConfig{Host: " redis ", Port: 6380, DB: 2})
	if opt.Addr != "redis:6380" || opt.DB != 2 {
		t.Fatalf("unexpected redis opt: %+v", opt)
	}
	if cfg.Concurrency != 10 {
		t.Fatalf("unexpected concurrency: %d", cfg.Concurrency)
	}
	if cfg.Queues[DefaultQueue] != 1 {
		t.Fatalf("default queue missing: %+v", cfg.Queues)
	}
	if cfg.Logger == nil || cfg.ErrorHandler == nil {
		t.Fatalf("logger and error handler should be wired")
	}

	opt, cfg = BuildServerConfig(nil)
	if opt.Addr != "127.0.0.1:6379" || len(cfg.Queues) != 1 {
		t.Fatalf("unexpected defaults: %s %+v", opt.Addr, cfg.Queues)
	}
}
