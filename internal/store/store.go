package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/mfigueroa/spotter/internal/model"
)

// ErrUserNotFound is returned when no user owns the presented credential.
var ErrUserNotFound = errors.New("user not found")

// UserStore resolves users and their filter configurations.
type UserStore interface {
	UserByAPIKey(apiKey string) (*model.User, error)
	Users() []model.User
}

// MemoryStore is an in-memory UserStore loaded once at startup.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]model.User
}

// NewMemoryStore builds a store from a fixed user set.
func NewMemoryStore(users []model.User) *MemoryStore {
	byKey := make(map[string]model.User, len(users))
	for _, user := range users {
		byKey[user.APIKey] = user
	}
	return &MemoryStore{users: byKey}
}

// NewMemoryStoreFromFile loads the user set from a JSON file.
func NewMemoryStoreFromFile(path string) (*MemoryStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading users file: %w", err)
	}

	var users []model.User
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("parsing users file: %w", err)
	}
	return NewMemoryStore(users), nil
}

// UserByAPIKey resolves the user owning the given credential.
func (s *MemoryStore) UserByAPIKey(apiKey string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[apiKey]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &user, nil
}

// Users returns every known user, ordered by id.
func (s *MemoryStore) Users() []model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]model.User, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users
}
