package logger

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestWithContextBeforeInit(t *testing.T) {
	log = nil
	once = sync.Once{}

	// Packages log freely in tests without calling Init; output is dropped.
	if WithContext(context.Background()) == nil {
		t.Fatal("expected nop logger before Init")
	}
	Info(context.Background(), "no-op")
}

func TestInitAndContextLogging(t *testing.T) {
	log = nil
	once = sync.Once{}

	Init("development")
	if GetLogger() == nil {
		t.Fatal("expected logger initialized")
	}

	ctx := context.WithValue(context.Background(), "request_id", "req-1")
	l := WithContext(ctx)
	if l == nil {
		t.Fatal("expected contextual logger")
	}

	Info(ctx, "info")
	Debug(ctx, "debug")
	Warn(ctx, "warn")
	Error(ctx, "error")
	LogRequest(ctx, "GET", "/health", 200, 10*time.Millisecond, "127.0.0.1")
}

func TestWithContextNil(t *testing.T) {
	log = nil
	once = sync.Once{}

	Init("development")
	if WithContext(nil) == nil {
		t.Fatal("expected base logger for nil context")
	}
}

func TestWithContextTypedRequestID(t *testing.T) {
	log = nil
	once = sync.Once{}

	Init("development")
	ctx := context.WithValue(context.Background(), RequestIDKey, "typed-req-id")
	if WithContext(ctx) == nil {
		t.Fatal("expected logger with typed request id context")
	}
}

func TestInit_Production(t *testing.T) {
	log = nil
	once = sync.Once{}

	Init("production")
	if GetLogger() == nil {
		t.Fatal("expected production logger initialized")
	}
	if WithContext(context.Background()) == nil {
		t.Fatal("expected logger without contextual fields")
	}
}
