package service

import "sort"

// Option is one answer choice of a multiple-choice question.
type Option struct {
	Letter string // "A".."D", unique within a question
	Label  string // full text shown to the user, e.g. "A) 42"
}

// QuizQuestion is a single multiple-choice question. Immutable once loaded.
type QuizQuestion struct {
	Text    string
	Options []Option
	Correct string // letter of the correct option
}

// CorrectLabel returns the label of the correct option.
func (q QuizQuestion) CorrectLabel() string {
	for _, opt := range q.Options {
		if opt.Letter == q.Correct {
			return opt.Label
		}
	}
	return q.Correct
}

// OptionLabel returns the label for a letter, or the letter itself when
// it does not match any option.
func (q QuizQuestion) OptionLabel(letter string) string {
	for _, opt := range q.Options {
		if opt.Letter == letter {
			return opt.Label
		}
	}
	return letter
}

// QuestionBank maps subject name to its questions. Built once at startup
// and read-only afterwards.
type QuestionBank map[string][]QuizQuestion

// Subjects returns the names of all non-empty subjects, sorted for a
// stable menu order.
func (b QuestionBank) Subjects() []string {
	subjects := make([]string, 0, len(b))
	for name, questions := range b {
		if len(questions) > 0 {
			subjects = append(subjects, name)
		}
	}
	sort.Strings(subjects)
	return subjects
}

// TotalQuestions counts the questions across all subjects.
func (b QuestionBank) TotalQuestions() int {
	total := 0
	for _, questions := range b {
		total += len(questions)
	}
	return total
}
