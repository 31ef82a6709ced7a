package worker

import (
	"testing"

	"github.com/google/uuid"

	"github.com/examforge/examforge-backend/internal/service"
)

func TestCoalesceMergesSameSession(t *testing.T) {
	a := uuid.New()
	b := uuid.New()

	batch := []*service.SessionStatsTask{
		{SessionID: a, Started: 1},
		{SessionID: b, Submitted: 1},
		{SessionID: a, Submitted: 1},
		{SessionID: a, Started: 1},
	}

	deltas := coalesce(batch)
	if len(deltas) != 2 {
		t.Fatalf("got %d deltas, want 2", len(deltas))
	}

	// First-seen order is preserved.
	if deltas[0].SessionID != a || deltas[1].SessionID != b {
		t.Fatal("delta order does not follow first appearance")
	}
	if deltas[0].StartedDelta != 2 || deltas[0].SubmittedDelta != 1 {
		t.Errorf("session a delta = %+v", deltas[0])
	}
	if deltas[1].StartedDelta != 0 || deltas[1].SubmittedDelta != 1 {
		t.Errorf("session b delta = %+v", deltas[1])
	}
}

func TestCoalesceEmptyBatch(t *testing.T) {
	if deltas := coalesce(nil); len(deltas) != 0 {
		t.Errorf("got %d deltas, want 0", len(deltas))
	}
}
