package service

import "fmt"

// ErrCode identifies why a quiz event was rejected.
type ErrCode string

const (
	ErrUnknownSubject       ErrCode = "UNKNOWN_SUBJECT"
	ErrNoQuestionsAvailable ErrCode = "NO_QUESTIONS_AVAILABLE"
	ErrNoQuestionsPrepared  ErrCode = "NO_QUESTIONS_PREPARED"
	ErrUnknownQuestion      ErrCode = "UNKNOWN_QUESTION"
	ErrBatchIncomplete      ErrCode = "BATCH_INCOMPLETE"
	ErrInvalidEvent         ErrCode = "INVALID_EVENT"
)

// QuizError is a typed rejection of a single user event. It never
// affects other sessions or the question bank.
type QuizError struct {
	Code   ErrCode
	Detail string
	// Remaining carries the unanswered-question count for
	// ErrBatchIncomplete.
	Remaining int
}

func (e *QuizError) Error() string {
	if e.Detail == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Detail)
}

func newQuizError(code ErrCode, detail string) *QuizError {
	return &QuizError{Code: code, Detail: detail}
}

// AsQuizError unwraps err into a *QuizError, or nil when err is not one.
func AsQuizError(err error) *QuizError {
	if qe, ok := err.(*QuizError); ok {
		return qe
	}
	return nil
}
