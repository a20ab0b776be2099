//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_store.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"sms-relay/domain"
	"sms-relay/errors"
)

type IMessageStore interface {
	Append(candidate domain.Message) (domain.Message, error)
	ListDirect(u1, u2 string, window domain.Window) ([]domain.Message, error)
	ListGroup(groupID string, window domain.Window) ([]domain.Message, error)
	HighWaterMark() time.Time
}

// MessageStore is an append-only message log on BadgerDB.
// Every commit assigns the id and a timestamp that is strictly increasing
// within this store instance, so the key order is the conversation order.
//
// Appends are serialized: the stamp and the Badger write happen under one
// mutex, so commit order equals timestamp order and the high-water cursor
// never runs ahead of an in-flight write.
type MessageStore struct {
	db  *badger.DB
	log *slog.Logger

	mu            sync.Mutex
	lastNano      int64 // last timestamp handed out
	committedNano int64 // timestamp of the last append that reached disk
}

func NewMessageStore(db *badger.DB, log *slog.Logger) *MessageStore {
	return &MessageStore{db: db, log: log}
}

type diskMessage struct {
	ID      uuid.UUID   `json:"id"`
	Kind    domain.Kind `json:"kind"`
	From    string      `json:"from"`
	To      string      `json:"to,omitempty"`
	GroupID string      `json:"groupId,omitempty"`
	Text    string      `json:"text"`
	AtNano  int64       `json:"atNano"`
}

// Append validates the candidate, stamps it and persists it atomically.
// The key is formatted as "{conversation}:{timestamp_padded}:{uuid}" to:
//  1. Ensure chronological sorting using 19-digit zero padding (lexicographical order).
//  2. Prevent data loss by using UUID as a collision disconnector.
func (s *MessageStore) Append(candidate domain.Message) (domain.Message, error) {
	if !candidate.Validate() {
		return domain.Message{}, fmt.Errorf("%w: kind=%s from=%q", errors.ErrValidationFailed, candidate.Kind, candidate.From)
	}

	committed := candidate
	committed.ID = uuid.New()

	s.mu.Lock()
	defer s.mu.Unlock()

	nano := time.Now().UTC().UnixNano()
	if nano <= s.lastNano {
		nano = s.lastNano + 1
	}
	s.lastNano = nano
	committed.CreatedAt = time.Unix(0, nano).UTC()

	key := fmt.Sprintf("%s:%019d:%s",
		committed.Conversation().Key(),
		committed.CreatedAt.UnixNano(),
		committed.ID,
	)
	bytes, err := json.Marshal(fromMessage(committed))
	if err != nil {
		return domain.Message{}, err
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bytes)
	})
	if err != nil {
		return domain.Message{}, err
	}
	s.committedNano = nano
	return committed, nil
}

// HighWaterMark returns a cursor such that every message committed so far is
// at or before it, and every later commit is strictly after it. Sessions
// snapshot it at join time to split backlog reads from live delivery.
// The cursor tracks committed writes only, so a history read taken right
// after it can never miss a message the cursor claims to cover.
func (s *MessageStore) HighWaterMark() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Unix(0, s.committedNano).UTC()
}

// ListDirect returns the direct history between u1 and u2, ascending by
// commit time. The lookup is symmetric in its arguments.
func (s *MessageStore) ListDirect(u1, u2 string, window domain.Window) ([]domain.Message, error) {
	return s.list(domain.DirectConversation{U1: u1, U2: u2}, window)
}

// ListGroup returns the group history, ascending by commit time.
func (s *MessageStore) ListGroup(groupID string, window domain.Window) ([]domain.Message, error) {
	return s.list(domain.GroupConversation{GroupID: groupID}, window)
}

// list scans the conversation prefix. Thanks to the padded timestamp in the
// key, messages come back naturally sorted by time.
func (s *MessageStore) list(conv domain.Conversation, window domain.Window) ([]domain.Message, error) {
	var raw [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		prefix := []byte(conv.Key() + ":")
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(value []byte) error {
				raw = append(raw, append([]byte(nil), value...))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var messages []domain.Message
	for _, b := range raw {
		var dm diskMessage
		if err = json.Unmarshal(b, &dm); err != nil {
			return nil, err
		}
		m := toMessage(dm)
		if window.Contains(m.CreatedAt) {
			messages = append(messages, m)
		}
	}
	return messages, nil
}

func fromMessage(m domain.Message) diskMessage {
	return diskMessage{
		ID:      m.ID,
		Kind:    m.Kind,
		From:    m.From,
		To:      m.To,
		GroupID: m.GroupID,
		Text:    m.Text,
		AtNano:  m.CreatedAt.UnixNano(),
	}
}

func toMessage(dm diskMessage) domain.Message {
	return domain.Message{
		ID:        dm.ID,
		Kind:      dm.Kind,
		From:      dm.From,
		To:        dm.To,
		GroupID:   dm.GroupID,
		Text:      dm.Text,
		CreatedAt: time.Unix(0, dm.AtNano).UTC(),
	}
}
