package service

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

// RandomSubject is the sentinel subject choice for a mixed quiz sampled
// across all subjects.
const RandomSubject = "Random"

// Directive is an instruction for the presentation layer to render.
type Directive interface{ isDirective() }

// BatchQuestion is one question of a SendBatch, carrying its global
// index so answers can be correlated later.
type BatchQuestion struct {
	GlobalIndex int
	Text        string
	Options     []Option
}

// SendBatch delivers the next slice of questions. HasMore tells the
// renderer to offer a next-batch prompt.
type SendBatch struct {
	Questions []BatchQuestion
	HasMore   bool
}

// SendFeedback reports the outcome of one submitted answer.
type SendFeedback struct {
	Correct      bool
	ChosenLabel  string
	CorrectLabel string
	QuestionText string
}

// SendCompletion reports the final score of a finished quiz.
type SendCompletion struct {
	Subject string
	Score   int
	Total   int
}

func (SendBatch) isDirective()      {}
func (SendFeedback) isDirective()   {}
func (SendCompletion) isDirective() {}

// Engine drives the per-user quiz state machine over a read-only
// question bank. All transitions for one user are serialized by the
// session store; the engine itself keeps no other mutable state.
type Engine struct {
	bank         QuestionBank
	store        *SessionStore
	batchSize    int
	randomTarget int
}

func NewEngine(bank QuestionBank, store *SessionStore, batchSize, randomTarget int) *Engine {
	if batchSize <= 0 {
		batchSize = 10
	}
	if randomTarget <= 0 {
		randomTarget = 40
	}
	return &Engine{
		bank:         bank,
		store:        store,
		batchSize:    batchSize,
		randomTarget: randomTarget,
	}
}

// Subjects exposes the bank's non-empty subject names for menu rendering.
func (e *Engine) Subjects() []string {
	return e.bank.Subjects()
}

// SelectSubject starts a fresh quiz for the user. choice is a subject
// name or RandomSubject. Any dormant prior session is replaced
// wholesale; a session with a quiz still in progress rejects the event.
func (e *Engine) SelectSubject(userID int64, choice string) ([]Directive, error) {
	questions, err := e.resolveQuestions(choice)
	if err != nil {
		return nil, err
	}

	var (
		directives []Directive
		transErr   error
	)
	e.store.WithLock(userID, func(session *QuizSession) *QuizSession {
		if session != nil && session.State == StateQuizInProgress {
			transErr = newQuizError(ErrInvalidEvent, "a quiz is already in progress")
			return session
		}

		fresh := NewQuizSession(userID, choice, questions)
		directives = append(directives, emitBatch(fresh, e.batchSize))
		log.Debug().
			Int64("user_id", userID).
			Str("subject", choice).
			Int("questions", len(questions)).
			Msg("quiz started")
		return fresh
	})
	if transErr != nil {
		return nil, transErr
	}
	return directives, nil
}

// resolveQuestions builds the session-owned question sequence for a
// subject choice.
func (e *Engine) resolveQuestions(choice string) ([]QuizQuestion, error) {
	if choice == RandomSubject {
		if e.bank.TotalQuestions() == 0 {
			return nil, newQuizError(ErrNoQuestionsAvailable, "the question bank is empty")
		}
		questions := SampleAcrossSubjects(e.bank, e.randomTarget)
		if len(questions) == 0 {
			return nil, newQuizError(ErrNoQuestionsPrepared, "random selection produced no questions")
		}
		return questions, nil
	}

	source, ok := e.bank[choice]
	if !ok || len(source) == 0 {
		return nil, newQuizError(ErrUnknownSubject, fmt.Sprintf("no questions for subject %q", choice))
	}
	return ShuffleQuestions(source), nil
}

// SubmitAnswer scores one answer and reports feedback. Scoring is
// idempotent: a question contributes to the score at most once, and a
// point once earned is never taken back. Answers from earlier batches
// are still scored but do not gate batch completion.
func (e *Engine) SubmitAnswer(userID int64, questionIndex int, letter string) ([]Directive, error) {
	var (
		directives []Directive
		transErr   error
	)
	e.store.WithLock(userID, func(session *QuizSession) *QuizSession {
		if session == nil || session.State != StateQuizInProgress {
			transErr = newQuizError(ErrInvalidEvent, "no quiz in progress")
			return session
		}
		if questionIndex < 0 || questionIndex >= len(session.Questions) {
			transErr = newQuizError(ErrUnknownQuestion,
				fmt.Sprintf("question index %d out of range", questionIndex))
			return session
		}

		if _, inBatch := session.CurrentBatch[questionIndex]; inBatch {
			session.AnsweredInBatch[questionIndex] = struct{}{}
		}

		question := session.Questions[questionIndex]
		correct := letter == question.Correct
		if correct {
			if _, scored := session.AnsweredCorrectOnce[questionIndex]; !scored {
				session.Score++
				session.AnsweredCorrectOnce[questionIndex] = struct{}{}
			}
		}

		directives = append(directives, SendFeedback{
			Correct:      correct,
			ChosenLabel:  question.OptionLabel(letter),
			CorrectLabel: question.CorrectLabel(),
			QuestionText: question.Text,
		})

		// The quiz is done once the batch holding the last question is
		// fully answered.
		if session.lastQuestionInBatch() && session.BatchComplete() {
			directives = append(directives, SendCompletion{
				Subject: session.Subject,
				Score:   session.Score,
				Total:   len(session.Questions),
			})
			session.State = StateSelectingSubject
			log.Debug().
				Int64("user_id", userID).
				Str("subject", session.Subject).
				Int("score", session.Score).
				Int("total", len(session.Questions)).
				Msg("quiz completed")
		}
		return session
	})
	if transErr != nil {
		return nil, transErr
	}
	return directives, nil
}

// RequestNextBatch advances the cursor and sends the next questions,
// but only after every question of the active batch has been answered.
func (e *Engine) RequestNextBatch(userID int64) ([]Directive, error) {
	var (
		directives []Directive
		transErr   error
	)
	e.store.WithLock(userID, func(session *QuizSession) *QuizSession {
		if session == nil || session.State != StateQuizInProgress {
			transErr = newQuizError(ErrInvalidEvent, "no quiz in progress")
			return session
		}
		if !session.BatchComplete() {
			remaining := session.RemainingInBatch()
			transErr = &QuizError{
				Code:      ErrBatchIncomplete,
				Detail:    fmt.Sprintf("%d questions in the current batch are still unanswered", remaining),
				Remaining: remaining,
			}
			return session
		}

		directives = append(directives, emitBatch(session, e.batchSize))
		return session
	})
	if transErr != nil {
		return nil, transErr
	}
	return directives, nil
}

// Cancel discards the user's session unconditionally.
func (e *Engine) Cancel(userID int64) {
	e.store.Delete(userID)
}

// emitBatch moves the cursor over the next batch and builds its
// directive. When the cursor is already past the end (defensive path,
// completion is normally detected on the final answer) it emits a
// completion instead and returns the session to subject selection.
func emitBatch(session *QuizSession, batchSize int) Directive {
	start := session.Cursor
	if start >= len(session.Questions) {
		session.State = StateSelectingSubject
		return SendCompletion{
			Subject: session.Subject,
			Score:   session.Score,
			Total:   len(session.Questions),
		}
	}

	end := start + batchSize
	if end > len(session.Questions) {
		end = len(session.Questions)
	}

	session.CurrentBatch = make(map[int]struct{}, end-start)
	session.AnsweredInBatch = make(map[int]struct{}, end-start)

	batch := SendBatch{HasMore: end < len(session.Questions)}
	for i := start; i < end; i++ {
		session.CurrentBatch[i] = struct{}{}
		batch.Questions = append(batch.Questions, BatchQuestion{
			GlobalIndex: i,
			Text:        session.Questions[i].Text,
			Options:     session.Questions[i].Options,
		})
	}
	session.Cursor = end

	return batch
}
