package handler

import (
	"net/http"
	"testing"

	"go.uber.org/zap"
)

func TestReplayOutboxEventRequiresID(t *testing.T) {
	h := NewAdminHandler(nil, zap.NewNop())

	c, w := newTestContext(http.MethodPost, "/admin/outbox/replay")
	h.ReplayOutboxEvent(c)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without id, got %d", w.Code)
	}
}

func TestReplayOutboxEventRejectsNonNumericID(t *testing.T) {
	h := NewAdminHandler(nil, zap.NewNop())

	c, w := newTestContext(http.MethodPost, "/admin/outbox/replay?id=latest")
	h.ReplayOutboxEvent(c)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-numeric id, got %d", w.Code)
	}
}
