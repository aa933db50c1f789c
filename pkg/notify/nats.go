package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
)

// NATSSink publishes notifications to a NATS subject per participant so a
// separate push-notification service can deliver them to devices.
type NATSSink struct {
	nc            *nats.Conn
	subjectPrefix string
}

// NewNATSSink connects to the given NATS URL. An empty subjectPrefix
// defaults to "civchat.notify".
func NewNATSSink(url, subjectPrefix string) (*NATSSink, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, err
	}
	if subjectPrefix == "" {
		subjectPrefix = "civchat.notify"
	}
	return &NATSSink{nc: nc, subjectPrefix: subjectPrefix}, nil
}

func (s *NATSSink) Publish(_ context.Context, participant int64, d Delta) error {
	ev := struct {
		Participant int64 `json:"participant_id"`
		Delta
	}{Participant: participant, Delta: d}
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("%s.%d", s.subjectPrefix, participant)
	return s.nc.Publish(subject, b)
}

// Close drains the underlying connection.
func (s *NATSSink) Close() {
	if s.nc != nil {
		s.nc.Close()
	}
}
