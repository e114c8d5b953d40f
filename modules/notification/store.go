package notification

import "sync"

// maxPerUser bounds the retained notifications per recipient.
const maxPerUser = 100

// Store keeps notifications in memory per recipient.
type Store struct {
	mu     sync.RWMutex
	byUser map[string][]Notification
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{byUser: make(map[string][]Notification)}
}

// Add records n, dropping the oldest entry when the recipient is at capacity.
func (s *Store) Add(n Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := append(s.byUser[n.UserID], n)
	if len(list) > maxPerUser {
		list = append([]Notification(nil), list[len(list)-maxPerUser:]...)
	}
	s.byUser[n.UserID] = list
}

// List returns the recipient's notifications, newest first.
func (s *Store) List(userID string) []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.byUser[userID]
	result := make([]Notification, 0, len(list))
	for i := len(list) - 1; i >= 0; i-- {
		result = append(result, list[i])
	}
	return result
}
