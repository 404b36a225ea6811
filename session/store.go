// Package session keeps short-term conversational state: a bounded queue of
// recent questions per user plus process-wide usage counters. Nothing here is
// persisted; a restart starts from zero.
package session

import "sync"

const defaultMemorySize = 5

// Stats is a point-in-time snapshot of the usage counters.
type Stats struct {
	Users     int
	Questions int
}

// Store tracks per-user memory and global usage. A single mutex guards all
// state: Record touches both a user's queue and the global counters, and the
// two must move together.
type Store struct {
	mu         sync.Mutex
	memorySize int
	memory     map[string][]string
	users      map[string]struct{}
	log        []string
}

// NewStore creates a store keeping up to memorySize recent questions per
// user. Non-positive sizes fall back to the default of 5.
func NewStore(memorySize int) *Store {
	if memorySize <= 0 {
		memorySize = defaultMemorySize
	}
	return &Store{
		memorySize: memorySize,
		memory:     make(map[string][]string),
		users:      make(map[string]struct{}),
	}
}

// Record appends a question to the user's memory, evicting the oldest entry
// once the bound is reached, and updates the global log and user set.
func (s *Store) Record(userID, question string) {
	s.Track(userID, question)
	s.Remember(userID, question)
}

// Track updates the global usage log and user set without touching the
// user's memory. Every inbound question is tracked, including ones the
// domain gate later rejects.
func (s *Store) Track(userID, question string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[userID] = struct{}{}
	s.log = append(s.log, question)
}

// Remember appends a question to the user's bounded memory queue. Only
// in-domain questions are remembered; off-topic noise must not leak into
// the conversational context.
func (s *Store) Remember(userID, question string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	queue := append(s.memory[userID], question)
	if len(queue) > s.memorySize {
		queue = queue[len(queue)-s.memorySize:]
	}
	s.memory[userID] = queue
}

// Recent returns a copy of the user's remembered questions, oldest first.
func (s *Store) Recent(userID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	queue := s.memory[userID]
	if len(queue) == 0 {
		return nil
	}
	out := make([]string, len(queue))
	copy(out, queue)
	return out
}

// Reset clears the user's memory. Global counters are untouched: the
// questions were still asked.
func (s *Store) Reset(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.memory, userID)
}

// UserCount returns the number of distinct users seen since startup.
func (s *Store) UserCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

// TotalQuestions returns the number of questions recorded since startup.
func (s *Store) TotalQuestions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.log)
}

// Snapshot returns both counters under a single lock acquisition.
func (s *Store) Snapshot() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{Users: len(s.users), Questions: len(s.log)}
}
