package service

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	subjectPrefix = "Subject:"
	answerPrefix  = "Answer:"
	optionCount   = 4
)

// ParseQuestionBank parses a question bank from UTF-8 text.
//
// Blocks are separated by a blank line. A block either declares
// "Subject: <name>", which applies to all following question blocks,
// or encodes one question:
//
//	line 1:   question text
//	lines 2-5: options, each "<Letter>) <label>"
//	line 6:   "Answer: <Letter>"
//
// Malformed blocks are dropped with a warning; the returned bank only
// contains fully valid questions.
func ParseQuestionBank(content string) QuestionBank {
	bank := make(QuestionBank)
	currentSubject := ""

	for _, block := range strings.Split(strings.TrimSpace(content), "\n\n") {
		lines := splitLines(block)
		if len(lines) == 0 {
			continue
		}

		if strings.HasPrefix(lines[0], subjectPrefix) {
			currentSubject = strings.TrimSpace(strings.TrimPrefix(lines[0], subjectPrefix))
			continue
		}

		question, err := parseQuestionBlock(lines)
		if err != nil {
			log.Warn().Err(err).Str("block", lines[0]).Msg("skipping malformed question block")
			continue
		}
		if currentSubject == "" {
			log.Warn().Str("block", lines[0]).Msg("skipping question before any Subject declaration")
			continue
		}

		bank[currentSubject] = append(bank[currentSubject], question)
	}

	return bank
}

// parseQuestionBlock parses one six-line question block.
func parseQuestionBlock(lines []string) (QuizQuestion, error) {
	if len(lines) < optionCount+2 {
		return QuizQuestion{}, fmt.Errorf("expected %d lines, got %d", optionCount+2, len(lines))
	}

	question := QuizQuestion{Text: lines[0]}

	seen := make(map[string]bool, optionCount)
	for _, line := range lines[1 : optionCount+1] {
		letter, err := parseOptionLetter(line)
		if err != nil {
			return QuizQuestion{}, err
		}
		if seen[letter] {
			return QuizQuestion{}, fmt.Errorf("duplicate option letter %q", letter)
		}
		seen[letter] = true
		question.Options = append(question.Options, Option{Letter: letter, Label: line})
	}

	answerLine := lines[optionCount+1]
	if !strings.HasPrefix(answerLine, answerPrefix) {
		return QuizQuestion{}, fmt.Errorf("missing %q line", answerPrefix)
	}
	correct := strings.TrimSpace(strings.TrimPrefix(answerLine, answerPrefix))
	if !seen[correct] {
		return QuizQuestion{}, fmt.Errorf("answer %q is not one of the options", correct)
	}
	question.Correct = correct

	return question, nil
}

// parseOptionLetter extracts the leading letter of an option line
// formatted "<Letter>) <label>".
func parseOptionLetter(line string) (string, error) {
	if len(line) < 2 || line[1] != ')' {
		return "", fmt.Errorf("invalid option line %q", line)
	}
	return line[:1], nil
}

func splitLines(block string) []string {
	var lines []string
	for _, line := range strings.Split(block, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}

// LoadQuestionBank loads the bank from a file. A missing or fully
// malformed file degrades to an empty bank with a warning so the bot
// can keep running and answer "no subjects available".
func LoadQuestionBank(filename string) QuestionBank {
	content, err := os.ReadFile(filename)
	if err != nil {
		log.Warn().Err(err).Str("file", filename).Msg("failed to read question file, starting with an empty bank")
		return make(QuestionBank)
	}

	bank := ParseQuestionBank(string(content))
	if bank.TotalQuestions() == 0 {
		log.Warn().Str("file", filename).Msg("no valid questions found")
	} else {
		log.Info().
			Str("file", filename).
			Int("subjects", len(bank.Subjects())).
			Int("questions", bank.TotalQuestions()).
			Msg("question bank loaded")
	}
	return bank
}
