package service

import (
	"context"
	"sync"
)

// ─────────────────────────────────────────────────────────────
// EventEmitter — decouples services from the presentation layer
// ─────────────────────────────────────────────────────────────

// Event names emitted by this subsystem. Fire-and-forget notifications;
// the UI layer owns interpretation of each one.
const (
	EventDocumentLoaded   = "document:loaded"
	EventDocumentSaved    = "document:saved"
	EventDocumentDeleted  = "document:deleted"
	EventDocumentsRefresh = "documents:refresh"
	EventFoldersUpdated   = "folders:updated"
	EventSearchResults    = "search:results"
)

// EventEmitter is an interface for emitting events to the frontend.
// Services receive this interface instead of a UI runtime handle, which
// makes them independently testable with a mock emitter.
type EventEmitter interface {
	Emit(ctx context.Context, event string, data any)
}

// MockEmitter is a test-friendly EventEmitter that records all calls.
// Safe for concurrent emitters (search publishes from a goroutine).
type MockEmitter struct {
	mu     sync.Mutex
	events []EmittedEvent
}

// EmittedEvent holds a single recorded emission for test assertions.
type EmittedEvent struct {
	Event string
	Data  any
}

func (m *MockEmitter) Emit(_ context.Context, event string, data any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, EmittedEvent{Event: event, Data: data})
}

// Recorded returns a snapshot of all emissions so far.
func (m *MockEmitter) Recorded() []EmittedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]EmittedEvent, len(m.events))
	copy(out, m.events)
	return out
}
