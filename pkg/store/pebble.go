package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"civchat/pkg/logger"
	"civchat/pkg/models"
	"civchat/pkg/validation"

	"github.com/cockroachdb/pebble"
)

// ErrNotFound is returned when a lookup matches no stored message.
var ErrNotFound = errors.New("store: not found")

var (
	db     *pebble.DB
	dbPath string

	// idMu serializes message id assignment. The id counter is the single
	// store-wide serialization point; per-conversation key ranges never
	// overlap, so unrelated conversations do not otherwise contend.
	idMu   sync.Mutex
	lastID int64
)

const seqKey = "sys:msgseq"

// Open opens (or creates) a Pebble database at the given path, keeps a
// global handle for simple usage in this package and recovers the message
// id counter from the durable seq key.
func Open(path string) error {
	logger.Info("opening_pebble_db", "path", path)
	d, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		logger.Error("pebble_open_failed", "path", path, "error", err)
		return err
	}
	db = d
	dbPath = path

	lastID = 0
	if v, closer, err := db.Get([]byte(seqKey)); err == nil {
		if n, perr := strconv.ParseInt(string(v), 10, 64); perr == nil {
			lastID = n
		}
		_ = closer.Close()
	} else if !errors.Is(err, pebble.ErrNotFound) {
		_ = db.Close()
		db = nil
		return err
	}
	logger.Info("pebble_opened", "path", path, "last_message_id", lastID)
	return nil
}

// Close closes the opened pebble DB if present.
func Close() error {
	if db == nil {
		return nil
	}
	if err := db.Close(); err != nil {
		return err
	}
	db = nil
	logger.Info("pebble_closed")
	return nil
}

// Ready reports whether the store is opened and ready.
func Ready() bool {
	return db != nil
}

// pairKey returns the canonical unordered-pair segment for two participants.
func pairKey(a, b int64) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d-%d", a, b)
}

func msgPrefix(a, b int64) []byte {
	return []byte("msg:" + pairKey(a, b) + ":")
}

func msgKey(a, b, id int64) []byte {
	return []byte(fmt.Sprintf("msg:%s:%020d", pairKey(a, b), id))
}

func peerPrefix(p int64) []byte {
	return []byte(fmt.Sprintf("peer:%d:", p))
}

func peerKey(p, q int64) []byte {
	return []byte(fmt.Sprintf("peer:%d:%d", p, q))
}

// prefixEnd returns the exclusive upper bound for a prefix scan.
func prefixEnd(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	end[len(end)-1]++
	return end
}

// Append validates and persists a new message, assigning the next monotonic
// id and the server-side timestamp. The message, both peer index entries and
// the id counter are committed in a single synced batch, so the counter can
// never run behind the log and the peer index cannot drift from it.
func Append(sender, receiver int64, body string) (models.Message, error) {
	if db == nil {
		return models.Message{}, fmt.Errorf("pebble not opened; call store.Open first")
	}
	if err := validation.ValidateSend(sender, receiver, body); err != nil {
		return models.Message{}, err
	}

	idMu.Lock()
	defer idMu.Unlock()

	id := lastID + 1
	m := models.Message{
		ID:       id,
		Sender:   sender,
		Receiver: receiver,
		Body:     body,
		SentAt:   time.Now().UTC().UnixNano(),
	}
	data, err := json.Marshal(m)
	if err != nil {
		return models.Message{}, fmt.Errorf("failed to marshal message: %w", err)
	}

	idStr := []byte(strconv.FormatInt(id, 10))
	batch := db.NewBatch()
	defer batch.Close()
	_ = batch.Set(msgKey(sender, receiver, id), data, nil)
	_ = batch.Set(peerKey(sender, receiver), idStr, nil)
	_ = batch.Set(peerKey(receiver, sender), idStr, nil)
	_ = batch.Set([]byte(seqKey), idStr, nil)
	if err := batch.Commit(pebble.Sync); err != nil {
		logger.Error("append_message_failed", "sender", sender, "receiver", receiver, "error", err)
		return models.Message{}, err
	}
	lastID = id
	logger.Info("message_appended", "id", id, "sender", sender, "receiver", receiver)
	return m, nil
}

// ListBetween returns messages exchanged between the two participants in
// ascending id order. A positive limit returns only the latest limit
// messages, still ascending.
func ListBetween(a, b int64, limit int) ([]models.Message, error) {
	if db == nil {
		return nil, fmt.Errorf("pebble not opened; call store.Open first")
	}
	prefix := msgPrefix(a, b)
	iter, err := db.NewIter(&pebble.IterOptions{LowerBound: prefix, UpperBound: prefixEnd(prefix)})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var out []models.Message
	if limit > 0 {
		// walk backwards collecting the newest limit entries, then reverse
		for ok := iter.Last(); ok && len(out) < limit; ok = iter.Prev() {
			var m models.Message
			if err := json.Unmarshal(iter.Value(), &m); err != nil {
				return nil, fmt.Errorf("invalid stored message at %s: %w", iter.Key(), err)
			}
			out = append(out, m)
		}
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	} else {
		for ok := iter.First(); ok; ok = iter.Next() {
			var m models.Message
			if err := json.Unmarshal(iter.Value(), &m); err != nil {
				return nil, fmt.Errorf("invalid stored message at %s: %w", iter.Key(), err)
			}
			out = append(out, m)
		}
	}
	return out, iter.Error()
}

// LatestBetween returns the newest message between the two participants or
// ErrNotFound when they have never exchanged one.
func LatestBetween(a, b int64) (models.Message, error) {
	if db == nil {
		return models.Message{}, fmt.Errorf("pebble not opened; call store.Open first")
	}
	prefix := msgPrefix(a, b)
	iter, err := db.NewIter(&pebble.IterOptions{LowerBound: prefix, UpperBound: prefixEnd(prefix)})
	if err != nil {
		return models.Message{}, err
	}
	defer iter.Close()
	if !iter.Last() {
		if err := iter.Error(); err != nil {
			return models.Message{}, err
		}
		return models.Message{}, ErrNotFound
	}
	var m models.Message
	if err := json.Unmarshal(iter.Value(), &m); err != nil {
		return models.Message{}, fmt.Errorf("invalid stored message at %s: %w", iter.Key(), err)
	}
	return m, nil
}

// MarkAllReadFor sets ReadAt on every currently-unread message sent by peer
// to receiver and returns how many were marked. Calling it again with no new
// messages marks zero rows; a message appended concurrently simply stays
// unread until the next call.
func MarkAllReadFor(receiver, peer int64) (int, error) {
	if db == nil {
		return 0, fmt.Errorf("pebble not opened; call store.Open first")
	}
	prefix := msgPrefix(receiver, peer)
	iter, err := db.NewIter(&pebble.IterOptions{LowerBound: prefix, UpperBound: prefixEnd(prefix)})
	if err != nil {
		return 0, err
	}
	defer iter.Close()

	now := time.Now().UTC().UnixNano()
	batch := db.NewBatch()
	defer batch.Close()
	marked := 0
	for ok := iter.First(); ok; ok = iter.Next() {
		var m models.Message
		if err := json.Unmarshal(iter.Value(), &m); err != nil {
			return 0, fmt.Errorf("invalid stored message at %s: %w", iter.Key(), err)
		}
		if m.Receiver != receiver || m.Read() {
			continue
		}
		m.ReadAt = now
		data, err := json.Marshal(m)
		if err != nil {
			return 0, err
		}
		key := append([]byte(nil), iter.Key()...)
		_ = batch.Set(key, data, nil)
		marked++
	}
	if err := iter.Error(); err != nil {
		return 0, err
	}
	if marked == 0 {
		return 0, nil
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		logger.Error("mark_read_failed", "receiver", receiver, "peer", peer, "error", err)
		return 0, err
	}
	logger.Info("messages_marked_read", "receiver", receiver, "peer", peer, "count", marked)
	return marked, nil
}

// UnreadCount returns the number of messages from peer to receiver whose
// ReadAt is still unset.
func UnreadCount(receiver, peer int64) (int, error) {
	if db == nil {
		return 0, fmt.Errorf("pebble not opened; call store.Open first")
	}
	prefix := msgPrefix(receiver, peer)
	iter, err := db.NewIter(&pebble.IterOptions{LowerBound: prefix, UpperBound: prefixEnd(prefix)})
	if err != nil {
		return 0, err
	}
	defer iter.Close()
	n := 0
	for ok := iter.First(); ok; ok = iter.Next() {
		var m models.Message
		if err := json.Unmarshal(iter.Value(), &m); err != nil {
			return 0, fmt.Errorf("invalid stored message at %s: %w", iter.Key(), err)
		}
		if m.Receiver == receiver && !m.Read() {
			n++
		}
	}
	return n, iter.Error()
}

// Peers returns every participant p has exchanged at least one message with.
func Peers(p int64) ([]int64, error) {
	if db == nil {
		return nil, fmt.Errorf("pebble not opened; call store.Open first")
	}
	prefix := peerPrefix(p)
	iter, err := db.NewIter(&pebble.IterOptions{LowerBound: prefix, UpperBound: prefixEnd(prefix)})
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	var out []int64
	for ok := iter.First(); ok; ok = iter.Next() {
		rest := strings.TrimPrefix(string(iter.Key()), string(prefix))
		q, perr := strconv.ParseInt(rest, 10, 64)
		if perr != nil {
			continue
		}
		out = append(out, q)
	}
	return out, iter.Error()
}
