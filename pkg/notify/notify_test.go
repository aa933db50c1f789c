package notify

import (
	"context"
	"errors"
	"testing"

	"civchat/pkg/models"
)

func view(peer int64, unread int) models.ConversationView {
	return models.ConversationView{Peer: peer, Unread: unread, Preview: "p"}
}

func TestDiffEmitsOnlyIncreases(t *testing.T) {
	prev := map[int64]int{2: 1, 3: 4, 4: 2}
	curr := []models.ConversationView{
		view(2, 3), // grew
		view(3, 4), // unchanged
		view(4, 0), // read down
	}
	deltas := Diff(prev, curr)
	if len(deltas) != 1 {
		t.Fatalf("expected 1 delta; got %d", len(deltas))
	}
	d := deltas[0]
	if d.Peer != 2 || d.Unread != 3 || d.Prev != 1 {
		t.Fatalf("unexpected delta %+v", d)
	}
}

func TestDiffTreatsUnknownPeerAsZero(t *testing.T) {
	deltas := Diff(map[int64]int{}, []models.ConversationView{view(7, 2)})
	if len(deltas) != 1 || deltas[0].Prev != 0 || deltas[0].Unread != 2 {
		t.Fatalf("unexpected deltas %+v", deltas)
	}
}

func TestDiffCollapsesBurstToOneDelta(t *testing.T) {
	// five messages arriving between polls surface as one delta carrying
	// the total, never five notifications
	deltas := Diff(map[int64]int{2: 0}, []models.ConversationView{view(2, 5)})
	if len(deltas) != 1 {
		t.Fatalf("expected 1 delta; got %d", len(deltas))
	}
	if deltas[0].Unread != 5 {
		t.Fatalf("expected unread 5; got %d", deltas[0].Unread)
	}
}

func TestDiffNoChanges(t *testing.T) {
	deltas := Diff(map[int64]int{2: 2}, []models.ConversationView{view(2, 2)})
	if len(deltas) != 0 {
		t.Fatalf("expected no deltas; got %+v", deltas)
	}
}

type recordingSink struct {
	published []Delta
	err       error
}

func (s *recordingSink) Publish(_ context.Context, _ int64, d Delta) error {
	s.published = append(s.published, d)
	return s.err
}

func TestObservePublishesEachDelta(t *testing.T) {
	sink := &recordingSink{}
	d := NewDispatcher(sink)
	curr := []models.ConversationView{view(2, 1), view(3, 2)}
	deltas := d.Observe(context.Background(), 1, map[int64]int{}, curr)
	if len(deltas) != 2 {
		t.Fatalf("expected 2 deltas; got %d", len(deltas))
	}
	if len(sink.published) != 2 {
		t.Fatalf("expected 2 published; got %d", len(sink.published))
	}
}

func TestObserveSwallowsSinkErrors(t *testing.T) {
	sink := &recordingSink{err: errors.New("broker down")}
	d := NewDispatcher(sink)
	deltas := d.Observe(context.Background(), 1, map[int64]int{}, []models.ConversationView{view(2, 1)})
	if len(deltas) != 1 {
		t.Fatalf("sink failure must not drop the delta from the response; got %d", len(deltas))
	}
}

func TestNewDispatcherDefaultsToLogSink(t *testing.T) {
	d := NewDispatcher(nil)
	if d.sink == nil {
		t.Fatalf("nil sink must fall back to LogSink")
	}
	// LogSink never errors
	if err := (LogSink{}).Publish(context.Background(), 1, Delta{Peer: 2, Unread: 1}); err != nil {
		t.Fatalf("LogSink.Publish: %v", err)
	}
}
