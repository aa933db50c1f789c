package models

// ConversationView is the per-participant projection of a conversation: the
// counterpart, the latest message in either direction and the unread count.
// It is derived from the message log on demand and never stored.
type ConversationView struct {
	Peer       int64  `json:"peer_id"`
	PeerName   string `json:"peer_name,omitempty"`
	LastID     int64  `json:"last_message_id"`
	LastSentAt int64  `json:"last_sent_at"`
	Preview    string `json:"preview"`
	Unread     int    `json:"unread"`
}
