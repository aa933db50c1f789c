// Package conv derives per-participant conversation listings from the
// message store. The index holds no state of its own, so it cannot drift
// from the log it is computed from.
package conv

import (
	"context"
	"sort"

	"civchat/pkg/identity"
	"civchat/pkg/logger"
	"civchat/pkg/models"
	"civchat/pkg/store"
)

const previewRunes = 120

// Index computes ConversationViews on demand.
type Index struct {
	dir identity.Directory
}

// New returns an Index resolving peer names through dir. A nil dir leaves
// PeerName empty.
func New(dir identity.Directory) *Index {
	return &Index{dir: dir}
}

// ListFor returns the participant's conversations sorted by latest activity,
// newest first, ties broken by ascending peer id for determinism. Every peer
// the participant has exchanged at least one message with appears exactly
// once.
func (ix *Index) ListFor(ctx context.Context, participant int64) ([]models.ConversationView, error) {
	peers, err := store.Peers(participant)
	if err != nil {
		return nil, err
	}
	out := make([]models.ConversationView, 0, len(peers))
	for _, peer := range peers {
		last, err := store.LatestBetween(participant, peer)
		if err != nil {
			// Peer index entries are written in the same batch as the
			// message, so a missing message here is a real store fault.
			return nil, err
		}
		unread, err := store.UnreadCount(participant, peer)
		if err != nil {
			return nil, err
		}
		v := models.ConversationView{
			Peer:       peer,
			LastID:     last.ID,
			LastSentAt: last.SentAt,
			Preview:    preview(last.Body),
			Unread:     unread,
		}
		if ix.dir != nil {
			if name, err := ix.dir.DisplayName(ctx, peer); err == nil {
				v.PeerName = name
			} else {
				logger.Warn("display_name_lookup_failed", "peer", peer, "error", err)
			}
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastSentAt != out[j].LastSentAt {
			return out[i].LastSentAt > out[j].LastSentAt
		}
		return out[i].Peer < out[j].Peer
	})
	return out, nil
}

func preview(body string) string {
	r := []rune(body)
	if len(r) <= previewRunes {
		return body
	}
	return string(r[:previewRunes])
}
