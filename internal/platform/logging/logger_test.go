package logging

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func observed(level Level) (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return FromZap(zap.New(core)), logs
}

func TestLogger_KeyValueFields(t *testing.T) {
	logger, logs := observed(LevelInfo)

	logger.With("component", "matching").Warn("join denied", "game_id", "g1", "error", errors.New("capacity full"), "dangling")
	logger.Debug("filtered out")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected one entry above level, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["component"] != "matching" || fields["game_id"] != "g1" {
		t.Fatalf("unexpected fields: %+v", fields)
	}
	if fields["error"] != "capacity full" {
		t.Fatalf("expected error field, got %+v", fields["error"])
	}
	if _, ok := fields["dangling"]; !ok {
		t.Fatalf("expected odd trailing key to be kept, got %+v", fields)
	}
}

func TestLogger_ContextAddsTraceIDs(t *testing.T) {
	logger, logs := observed(LevelDebug)

	traceID, _ := trace.TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")
	spanID, _ := trace.SpanIDFromHex("0102030405060708")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	logger.InfoContext(ctx, "game started", "game_id", "g1")
	logger.InfoContext(context.Background(), "no span")

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected two entries, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["trace_id"]; got != traceID.String() {
		t.Fatalf("unexpected trace id: %v", got)
	}
	if _, ok := entries[1].ContextMap()["trace_id"]; ok {
		t.Fatalf("did not expect trace id without a span")
	}
}

func TestLogger_NilAndDefault(t *testing.T) {
	var nilLogger *Logger
	nilLogger.Info("falls back to default")
	if err := nilLogger.Sync(); err != nil {
		t.Fatalf("sync nil logger: %v", err)
	}

	logger, logs := observed(LevelInfo)
	SetDefault(logger)
	t.Cleanup(func() { SetDefault(nil) })

	nilLogger.Info("routed to default")
	if logs.Len() != 1 {
		t.Fatalf("expected nil logger to write through default, got %d entries", logs.Len())
	}
}

func TestNewJSON_WritesCallerOfPublicMethod(t *testing.T) {
	var buf bytes.Buffer
	logger := newJSON(&buf, LevelInfo).With("service", "pickup-games")

	logger.Info("listening", "addr", ":8080")

	line := buf.String()
	for _, want := range []string{`"msg":"listening"`, `"service":"pickup-games"`, `"addr":":8080"`, `"level":"INFO"`, "logger_test.go"} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %s in %s", want, line)
		}
	}
}
