package service

import "sync"

// SessionStore is a concurrency-safe map of user id to quiz session.
//
// Mutating transitions on the same session must not interleave, so the
// store hands out per-user slots with their own lock: all engine work
// for a user runs under that user's slot lock, while different users
// proceed in parallel.
type SessionStore struct {
	mu    sync.Mutex
	slots map[int64]*sessionSlot
}

type sessionSlot struct {
	mu      sync.Mutex
	session *QuizSession
}

func NewSessionStore() *SessionStore {
	return &SessionStore{slots: make(map[int64]*sessionSlot)}
}

func (st *SessionStore) slot(userID int64) *sessionSlot {
	st.mu.Lock()
	defer st.mu.Unlock()
	slot, ok := st.slots[userID]
	if !ok {
		slot = &sessionSlot{}
		st.slots[userID] = slot
	}
	return slot
}

// WithLock runs fn with exclusive access to the user's session. The
// session passed to fn may be nil; fn returns the session to keep
// (nil removes it).
func (st *SessionStore) WithLock(userID int64, fn func(*QuizSession) *QuizSession) {
	slot := st.slot(userID)
	slot.mu.Lock()
	defer slot.mu.Unlock()
	slot.session = fn(slot.session)
}

// Get returns the user's session without locking it for mutation.
// Intended for read-only inspection (tests, diagnostics).
func (st *SessionStore) Get(userID int64) (*QuizSession, bool) {
	slot := st.slot(userID)
	slot.mu.Lock()
	defer slot.mu.Unlock()
	return slot.session, slot.session != nil
}

// Delete removes the user's session.
func (st *SessionStore) Delete(userID int64) {
	st.WithLock(userID, func(*QuizSession) *QuizSession { return nil })
}
