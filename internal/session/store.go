// ABOUTME: Store maps channel IDs to the active conversation partner
// ABOUTME: At most one active user per channel; last writer wins

package session

import "sync"

// Store is a concurrent map from channel ID to the user ID currently in
// conversation with the bot in that channel. All operations are safe under
// unbounded concurrent callers and linearizable per channel.
type Store struct {
	mu     sync.RWMutex
	active map[string]string
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{
		active: make(map[string]string),
	}
}

// ActiveUser returns the user currently active in the channel, if any.
func (s *Store) ActiveUser(channel string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.active[channel]
	return user, ok
}

// SetActiveUser makes user the active partner in the channel,
// unconditionally replacing any existing entry. Last writer wins: the most
// recent person to trigger the bot owns the conversation.
func (s *Store) SetActiveUser(channel, user string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active[channel] = user
}

// Remove clears the channel's session. Removing a channel with no session
// is a no-op.
func (s *Store) Remove(channel string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.active, channel)
}

// IsActiveUser reports whether user is the active partner in the channel.
// The check is atomic with respect to concurrent SetActiveUser and Remove
// calls on the same channel.
func (s *Store) IsActiveUser(channel, user string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	current, ok := s.active[channel]
	return ok && current == user
}

// Len returns the number of channels with an active session.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.active)
}
