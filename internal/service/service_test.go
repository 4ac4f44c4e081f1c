package service_test

import (
	"context"
	"testing"
	"time"

	"canvas/internal/service"
)

// ─────────────────────────────────────────────────────────────
// runGuard tests
// ─────────────────────────────────────────────────────────────

func TestRunGuard_TryLock(t *testing.T) {
	var g service.ExportedRunGuard

	if !g.TryLock("backup") {
		t.Fatal("expected first TryLock to succeed")
	}
	if g.TryLock("backup") {
		t.Fatal("expected second TryLock for same name to fail")
	}
	if !g.TryLock("other") {
		t.Fatal("expected TryLock for different name to succeed")
	}
	g.Unlock("backup")
	g.Unlock("other")

	if !g.TryLock("backup") {
		t.Fatal("expected TryLock to succeed after unlock")
	}
	g.Unlock("backup")
}

func TestRunGuard_WaitAll(t *testing.T) {
	var g service.ExportedRunGuard

	if !g.TryLock("backup") {
		t.Fatal("expected lock to succeed")
	}

	done := make(chan struct{})
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer cancel()
		g.WaitAll(ctx)
		close(done)
	}()

	go func() {
		time.Sleep(20 * time.Millisecond)
		g.Unlock("backup")
	}()

	select {
	case <-done:
		// success
	case <-time.After(1 * time.Second):
		t.Fatal("WaitAll timed out")
	}
}

// ─────────────────────────────────────────────────────────────
// MockEmitter tests
// ─────────────────────────────────────────────────────────────

func TestMockEmitter_RecordsEvents(t *testing.T) {
	m := &service.MockEmitter{}
	ctx := context.Background()

	m.Emit(ctx, service.EventDocumentLoaded, "doc-1")
	m.Emit(ctx, service.EventFoldersUpdated, nil)

	events := m.Recorded()
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Event != service.EventDocumentLoaded {
		t.Errorf("expected %q, got %q", service.EventDocumentLoaded, events[0].Event)
	}
}

func TestMockEmitter_LastEvent(t *testing.T) {
	m := &service.MockEmitter{}
	ctx := context.Background()

	m.Emit(ctx, "a", "first")
	m.Emit(ctx, "b", "second")

	events := m.Recorded()
	if events[len(events)-1].Event != "b" {
		t.Errorf("expected last event 'b', got %q", events[len(events)-1].Event)
	}
}
