package form

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("form session not found")

type session struct {
	mu       sync.Mutex
	ctrl     *Controller
	lastSeen time.Time
}

// Store keeps open forms in memory under random ids. Calls on one form are
// serialized; forms idle longer than the TTL are dropped.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*session
	ttl      time.Duration
	now      func() time.Time
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Add registers c and returns its id.
func (s *Store) Add(c *Controller) string {
	id := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()
	s.sessions[id] = &session{ctrl: c, lastSeen: s.now()}
	return id
}

// With runs fn on the form id while holding its lock.
func (s *Store) With(id string, fn func(*Controller) error) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	if ok && s.expiredLocked(sess) {
		delete(s.sessions, id)
		ok = false
	}
	if ok {
		sess.lastSeen = s.now()
	}
	s.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	// the form may have been deleted while waiting for its lock
	s.mu.Lock()
	current := s.sessions[id]
	s.mu.Unlock()
	if current != sess {
		return ErrSessionNotFound
	}
	return fn(sess.ctrl)
}

// Delete drops the form id.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Len returns the number of open forms.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Store) expiredLocked(sess *session) bool {
	return s.ttl > 0 && s.now().Sub(sess.lastSeen) > s.ttl
}

func (s *Store) sweepLocked() {
	for id, sess := range s.sessions {
		if s.expiredLocked(sess) {
			delete(s.sessions, id)
		}
	}
}
