package queue

import (
	"errors"
	"testing"

	"github.com/freshcart/internal/config"

	"github.com/hibiken/asynq"
)

func TestNewImageWarmTaskDedupesNames(t *testing.T) {
	task, err := NewImageWarmTask(ImageWarmPayload{Names: []string{" Milk ", "Milk", "", "Bread"}})
	if err != nil {
		t.Fatalf("create task failed: %v", err)
	}
	if task.Type() != TaskImageWarmCache {
		t.Fatalf("unexpected task type %s", task.Type())
	}
	payload, err := ParseImageWarmPayload(task)
	if err != nil {
		t.Fatalf("parse task failed: %v", err)
	}
	if len(payload.Names) != 2 || payload.Names[0] != "Milk" || payload.Names[1] != "Bread" {
		t.Fatalf("unexpected names %v", payload.Names)
	}
}

func TestImageWarmRejectsEmptyNames(t *testing.T) {
	if _, err := NewImageWarmTask(ImageWarmPayload{Names: []string{"  "}}); !errors.Is(err, ErrEmptyImageWarmPayload) {
		t.Fatalf("expected empty payload error, got %v", err)
	}
	task := asynq.NewTask(TaskImageWarmCache, []byte(`{"names":[]}`))
	if _, err := ParseImageWarmPayload(task); !errors.Is(err, ErrEmptyImageWarmPayload) {
		t.Fatalf("expected empty payload error, got %v", err)
	}
	if _, err := ParseImageWarmPayload(asynq.NewTask(TaskImageWarmCache, []byte(`{`))); err == nil {
		t.Fatalf("malformed payload should fail")
	}
}

func TestDisabledClientEnqueueIsNoop(t *testing.T) {
	client, err := NewClient(&config.QueueConfig{Enabled: false})
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	if client.Enabled() {
		t.Fatalf("client should be disabled")
	}
	if err := client.EnqueueImageWarm(ImageWarmPayload{Names: []string{"Milk"}}); err != nil {
		t.Fatalf("disabled enqueue should be noop, got %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close disabled client failed: %v", err)
	}
}

func TestBuildServerConfigDefaults(t *testing.T) {
	opt, cfg := BuildServerConfig(nil)
	if opt.Addr != "127.0.0.1:6379" {
		t.Fatalf("unexpected addr %s", opt.Addr)
	}
	if cfg.Concurrency != 10 || cfg.Queues[DefaultQueue] != 1 || cfg.Queues[ImagesQueue] != 1 {
		t.Fatalf("unexpected server config %+v", cfg)
	}
	if cfg.ErrorHandler == nil {
		t.Fatalf("error handler should be set")
	}

	opt, cfg = BuildServerConfig(&config.QueueConfig{Host: " redis ", Port: 6380, DB: 2, Concurrency: 3, Queues: map[string]int{"default": 5, "legacy": 0}})
	if opt.Addr != "redis:6380" || opt.DB != 2 {
		t.Fatalf("unexpected opt %+v", opt)
	}
	if cfg.Concurrency != 3 || cfg.Queues["default"] != 5 {
		t.Fatalf("unexpected server config %+v", cfg)
	}
	if cfg.Queues[ImagesQueue] != 1 {
		t.Fatalf("images queue should always be served, got %+v", cfg.Queues)
	}
	if _, ok := cfg.Queues["legacy"]; ok {
		t.Fatalf("zero-weight queues should be dropped, got %+v", cfg.Queues)
	}

	opt, _ = BuildServerConfig(&config.QueueConfig{Port: 6390})
	if opt.Addr != "127.0.0.1:6390" {
		t.Fatalf("port-only config should keep default host, got %s", opt.Addr)
	}
}
