// Package notify decides when a participant should be alerted about unread
// activity. It compares the conversation snapshot the client last rendered
// against the current one and emits exactly one notification per counterpart
// whose unread count grew, so a burst of messages between polls never causes
// a notification storm.
package notify

import (
	"context"

	"civchat/pkg/logger"
	"civchat/pkg/models"
)

// Delta describes one counterpart whose unread count increased.
type Delta struct {
	Peer     int64  `json:"peer_id"`
	PeerName string `json:"peer_name,omitempty"`
	Unread   int    `json:"unread"`
	Prev     int    `json:"previous_unread"`
	Preview  string `json:"preview,omitempty"`
}

// Sink receives dispatched notifications. Implementations must tolerate
// being called concurrently.
type Sink interface {
	Publish(ctx context.Context, participant int64, d Delta) error
}

// LogSink writes notifications to the structured log. It is the default
// sink when no external push collaborator is configured.
type LogSink struct{}

func (LogSink) Publish(_ context.Context, participant int64, d Delta) error {
	logger.Info("notification",
		"participant", participant,
		"peer", d.Peer,
		"unread", d.Unread,
		"previous_unread", d.Prev,
	)
	return nil
}

// Diff returns one Delta per conversation whose unread count is higher in
// curr than in prev. Conversations absent from prev count as previously
// zero. Decreases (the client read something) produce nothing.
func Diff(prev map[int64]int, curr []models.ConversationView) []Delta {
	var out []Delta
	for _, v := range curr {
		before := prev[v.Peer]
		if v.Unread > before {
			out = append(out, Delta{
				Peer:     v.Peer,
				PeerName: v.PeerName,
				Unread:   v.Unread,
				Prev:     before,
				Preview:  v.Preview,
			})
		}
	}
	return out
}

// Dispatcher fans increased-unread deltas out to a Sink.
type Dispatcher struct {
	sink Sink
}

// NewDispatcher returns a Dispatcher publishing to sink; a nil sink falls
// back to LogSink.
func NewDispatcher(sink Sink) *Dispatcher {
	if sink == nil {
		sink = LogSink{}
	}
	return &Dispatcher{sink: sink}
}

// Observe computes the deltas between the snapshot the participant last
// rendered and the current listing, publishes each one and returns them.
// Sink failures are logged and swallowed: notification delivery is
// best-effort and must never fail the poll that triggered it.
func (d *Dispatcher) Observe(ctx context.Context, participant int64, prev map[int64]int, curr []models.ConversationView) []Delta {
	deltas := Diff(prev, curr)
	for _, dl := range deltas {
		if err := d.sink.Publish(ctx, participant, dl); err != nil {
			logger.Warn("notification_publish_failed", "participant", participant, "peer", dl.Peer, "error", err)
		}
	}
	return deltas
}
