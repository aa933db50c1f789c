package models

// Message is one durable chat message between two participants. Once
// written, every field except ReadAt is immutable; ReadAt transitions from
// zero to a timestamp exactly once and is never cleared.
type Message struct {
	// ID is assigned by the store and is strictly increasing store-wide.
	// It is the authoritative ordering key; never client-chosen.
	ID       int64  `json:"id"`
	Sender   int64  `json:"sender_id"`
	Receiver int64  `json:"receiver_id"`
	Body     string `json:"body"`
	// SentAt is server-assigned (ns since epoch, UTC).
	SentAt int64 `json:"sent_at"`
	// ReadAt is zero while unread.
	ReadAt int64 `json:"read_at,omitempty"`
}

// Read reports whether the recipient has acknowledged the message.
func (m Message) Read() bool { return m.ReadAt != 0 }
