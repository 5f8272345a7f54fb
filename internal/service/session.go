package service

// SessionState is the phase a user's conversation is in.
type SessionState int

const (
	// StateSelectingSubject is both the initial state and the re-entry
	// point after a finished quiz.
	StateSelectingSubject SessionState = iota
	StateQuizInProgress
)

// QuizSession is the per-user quiz state. One per user id at most;
// selecting a subject replaces it wholesale.
type QuizSession struct {
	UserID  int64
	Subject string
	State   SessionState

	// Questions is a session-owned shuffled copy of bank data.
	Questions []QuizQuestion

	// Cursor is the index of the first not-yet-sent question.
	Cursor int

	// Score counts distinct questions answered correctly at least once.
	Score int

	// CurrentBatch holds the global indices of the most recently sent
	// batch; AnsweredInBatch is the subset already answered.
	CurrentBatch    map[int]struct{}
	AnsweredInBatch map[int]struct{}

	// AnsweredCorrectOnce tracks which indices already earned a point,
	// so repeated submissions never score twice.
	AnsweredCorrectOnce map[int]struct{}
}

// NewQuizSession creates a fresh session over the given questions.
func NewQuizSession(userID int64, subject string, questions []QuizQuestion) *QuizSession {
	return &QuizSession{
		UserID:              userID,
		Subject:             subject,
		State:               StateQuizInProgress,
		Questions:           questions,
		CurrentBatch:        make(map[int]struct{}),
		AnsweredInBatch:     make(map[int]struct{}),
		AnsweredCorrectOnce: make(map[int]struct{}),
	}
}

// BatchComplete reports whether every question of the current batch has
// been answered at least once.
func (s *QuizSession) BatchComplete() bool {
	for idx := range s.CurrentBatch {
		if _, ok := s.AnsweredInBatch[idx]; !ok {
			return false
		}
	}
	return true
}

// RemainingInBatch counts the not-yet-answered questions of the current
// batch.
func (s *QuizSession) RemainingInBatch() int {
	remaining := 0
	for idx := range s.CurrentBatch {
		if _, ok := s.AnsweredInBatch[idx]; !ok {
			remaining++
		}
	}
	return remaining
}

// lastQuestionInBatch reports whether the current batch contains the
// final question of the session.
func (s *QuizSession) lastQuestionInBatch() bool {
	if len(s.Questions) == 0 {
		return false
	}
	_, ok := s.CurrentBatch[len(s.Questions)-1]
	return ok
}
