// Package favourites keeps the per-user set of liked image ids and persists
// it to a key-value store after every change.
package favourites

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"github.com/bagtoad/imggallery/internal/kvstore"
)

const keyPrefix = "favourites_"

// Key returns the storage key for a user's favourites.
func Key(userID string) string {
	return keyPrefix + userID
}

// Set is the ordered set of image ids liked by one user. An empty UserID
// marks the transient set of an anonymous session.
type Set struct {
	UserID string
	ids    []string
	index  map[string]struct{}
}

func newSet(userID string, ids []string) *Set {
	s := &Set{UserID: userID, index: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		if _, dup := s.index[id]; dup || id == "" {
			continue
		}
		s.index[id] = struct{}{}
		s.ids = append(s.ids, id)
	}
	return s
}

// Contains reports membership of id.
func (s *Set) Contains(id string) bool {
	_, ok := s.index[id]
	return ok
}

// IDs returns the liked ids in the order they were liked.
func (s *Set) IDs() []string {
	return append([]string(nil), s.ids...)
}

// Len returns the number of liked ids.
func (s *Set) Len() int {
	return len(s.ids)
}

func (s *Set) toggle(id string) bool {
	if s.Contains(id) {
		delete(s.index, id)
		for i, v := range s.ids {
			if v == id {
				s.ids = append(s.ids[:i], s.ids[i+1:]...)
				break
			}
		}
		return false
	}
	s.index[id] = struct{}{}
	s.ids = append(s.ids, id)
	return true
}

// Store holds the favourites of the active user. Only one user's set is
// loaded at a time; asking about any other user never exposes it.
type Store struct {
	kv      kvstore.Store
	logger  *zap.Logger
	current *Set
}

// New creates a store with an empty anonymous set.
func New(kv kvstore.Store, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{kv: kv, logger: logger, current: newSet("", nil)}
}

// Load replaces the in-memory set with the one persisted for userID. Missing
// or corrupt data and anonymous users yield an empty set.
func (s *Store) Load(ctx context.Context, userID string) *Set {
	s.current = s.read(ctx, userID)
	return s.current
}

func (s *Store) read(ctx context.Context, userID string) *Set {
	if userID == "" {
		return newSet("", nil)
	}
	data, err := s.kv.Retrieve(ctx, Key(userID))
	if errors.Is(err, kvstore.ErrNotFound) {
		return newSet(userID, nil)
	}
	if err != nil {
		s.logger.Warn("cannot read favourites, starting empty",
			zap.String("user", userID), zap.Error(err))
		return newSet(userID, nil)
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		s.logger.Warn("corrupt favourites, starting empty",
			zap.String("user", userID), zap.Error(err))
		return newSet(userID, nil)
	}
	return newSet(userID, ids)
}

// Current returns the active user's set.
func (s *Store) Current() *Set {
	return s.current
}

// Toggle flips imageID in userID's set and persists the full set. It returns
// the new membership. Toggling for a user other than the active one loads
// that user's set first. A failed write is logged and the in-memory set stays
// authoritative; anonymous sets are never written.
func (s *Store) Toggle(ctx context.Context, userID, imageID string) bool {
	if s.current.UserID != userID {
		s.Load(ctx, userID)
	}
	liked := s.current.toggle(imageID)
	if userID == "" {
		return liked
	}

	data, err := json.Marshal(s.current.ids)
	if err == nil {
		err = s.kv.Persist(ctx, Key(userID), data)
	}
	if err != nil {
		s.logger.Warn("cannot persist favourites",
			zap.String("user", userID), zap.String("image", imageID), zap.Error(err))
	}
	return liked
}

// IsFavourite reports whether imageID is liked by userID. It is always false
// when userID is not the active user.
func (s *Store) IsFavourite(userID, imageID string) bool {
	if s.current.UserID != userID {
		return false
	}
	return s.current.Contains(imageID)
}

// IDs returns userID's liked ids, or nil when userID is not the active user.
func (s *Store) IDs(userID string) []string {
	if s.current.UserID != userID {
		return nil
	}
	return s.current.IDs()
}
