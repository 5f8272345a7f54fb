package service

import (
	"sync"
	"testing"
)

func TestSessionStore_PutGetDelete(t *testing.T) {
	store := NewSessionStore()

	if _, ok := store.Get(1); ok {
		t.Fatal("empty store returned a session")
	}

	store.WithLock(1, func(*QuizSession) *QuizSession {
		return NewQuizSession(1, "Math", questionsNamed("q", 2))
	})

	session, ok := store.Get(1)
	if !ok || session.Subject != "Math" {
		t.Fatalf("Get = %+v, %v", session, ok)
	}

	// Replacing is wholesale: the old session is gone.
	store.WithLock(1, func(old *QuizSession) *QuizSession {
		if old == nil || old.Subject != "Math" {
			t.Errorf("old session = %+v", old)
		}
		return NewQuizSession(1, "English", questionsNamed("q", 2))
	})

	session, _ = store.Get(1)
	if session.Subject != "English" {
		t.Fatalf("Subject = %q, want English", session.Subject)
	}

	store.Delete(1)
	if _, ok := store.Get(1); ok {
		t.Fatal("session survived Delete")
	}
}

func TestSessionStore_SerializesSameUser(t *testing.T) {
	store := NewSessionStore()
	store.WithLock(7, func(*QuizSession) *QuizSession {
		return NewQuizSession(7, "Math", questionsNamed("q", 1))
	})

	// Unsynchronized read-modify-write of Score would lose updates;
	// the per-user lock must make all 100 increments land.
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.WithLock(7, func(session *QuizSession) *QuizSession {
				session.Score++
				return session
			})
		}()
	}
	wg.Wait()

	session, _ := store.Get(7)
	if session.Score != 100 {
		t.Fatalf("Score = %d, want 100", session.Score)
	}
}

func TestSessionStore_UsersDoNotBlockEachOther(t *testing.T) {
	store := NewSessionStore()

	release := make(chan struct{})
	held := make(chan struct{})
	go store.WithLock(1, func(*QuizSession) *QuizSession {
		close(held)
		<-release
		return nil
	})

	<-held
	// User 2 must get through while user 1's slot is held.
	done := make(chan struct{})
	go func() {
		store.WithLock(2, func(*QuizSession) *QuizSession { return nil })
		close(done)
	}()

	<-done
	close(release)
}
