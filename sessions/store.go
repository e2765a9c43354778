// Package sessions keeps one Conversation per session id and evicts
// sessions that have been idle longer than the configured TTL.
package sessions

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/armanmujtaba/Trivanza/conversation"
)

// DefaultIdleTTL is how long an untouched session survives
const DefaultIdleTTL = 30 * time.Minute

// Store is an idle-expiring map of conversations
type Store struct {
	items  *cache.Cache
	ttl    time.Duration
	opts   []conversation.Option
	logger *slog.Logger
}

// NewStore creates a store. opts are applied to every new conversation.
func NewStore(ttl time.Duration, logger *slog.Logger, opts ...conversation.Option) *Store {
	if ttl <= 0 {
		ttl = DefaultIdleTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	cleanup := ttl / 2
	if cleanup < time.Second {
		cleanup = time.Second
	}
	s := &Store{
		items:  cache.New(ttl, cleanup),
		ttl:    ttl,
		opts:   opts,
		logger: logger,
	}
	s.items.OnEvicted(func(key string, v interface{}) {
		if conv, ok := v.(*conversation.Conversation); ok {
			conv.Close()
		}
		s.logger.Debug("session ended", "session_id", key)
	})
	return s
}

// Create starts a new idle conversation
func (s *Store) Create() *conversation.Conversation {
	id := uuid.New()
	opts := append(append([]conversation.Option(nil), s.opts...), conversation.WithID(id))
	conv := conversation.New(opts...)
	s.items.Set(id.String(), conv, s.ttl)
	s.logger.Debug("session created", "session_id", id)
	return conv
}

// Get returns a live conversation and restarts its idle timer
func (s *Store) Get(id uuid.UUID) (*conversation.Conversation, bool) {
	v, ok := s.items.Get(id.String())
	if !ok {
		return nil, false
	}
	conv := v.(*conversation.Conversation)
	s.items.Set(id.String(), conv, s.ttl)
	return conv, true
}

// Delete ends a session. It reports whether the session existed.
func (s *Store) Delete(id uuid.UUID) bool {
	if _, ok := s.items.Get(id.String()); !ok {
		return false
	}
	s.items.Delete(id.String())
	return true
}

// Len is the number of live sessions
func (s *Store) Len() int {
	return s.items.ItemCount()
}
