package service

import (
	"math/rand"
	"time"
)

// ShuffleQuestions returns a shuffled copy, leaving the bank's slice
// untouched.
func ShuffleQuestions(questions []QuizQuestion) []QuizQuestion {
	shuffled := make([]QuizQuestion, len(questions))
	copy(shuffled, questions)

	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	// Fisher-Yates
	for i := len(shuffled) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}

	return shuffled
}

// ShuffleQuestionsWithLimit shuffles and returns at most limit questions.
func ShuffleQuestionsWithLimit(questions []QuizQuestion, limit int) []QuizQuestion {
	shuffled := ShuffleQuestions(questions)

	if limit <= 0 || limit > len(shuffled) {
		limit = len(shuffled)
	}

	return shuffled[:limit]
}

// SampleAcrossSubjects draws a proportional sample across all non-empty
// subjects targeting `target` questions in total. Every contributing
// subject gets at least one question, capped at that subject's size.
// The result length is min(target, total available). The combined
// sample is shuffled before returning.
func SampleAcrossSubjects(bank QuestionBank, target int) []QuizQuestion {
	subjects := bank.Subjects()
	if len(subjects) == 0 || target <= 0 {
		return nil
	}

	total := 0
	sizes := make([]int, len(subjects))
	for i, name := range subjects {
		sizes[i] = len(bank[name])
		total += sizes[i]
	}

	if total <= target {
		all := make([]QuizQuestion, 0, total)
		for _, name := range subjects {
			all = append(all, bank[name]...)
		}
		return ShuffleQuestions(all)
	}

	quotas := allocateQuotas(sizes, target)

	sample := make([]QuizQuestion, 0, target)
	for i, name := range subjects {
		sample = append(sample, ShuffleQuestionsWithLimit(bank[name], quotas[i])...)
	}
	return ShuffleQuestions(sample)
}

// allocateQuotas distributes target across subjects proportionally to
// their sizes, at least 1 each where possible and never above a
// subject's size. Quota sum always equals target (total size exceeds
// target by the caller's check).
func allocateQuotas(sizes []int, target int) []int {
	total := 0
	for _, s := range sizes {
		total += s
	}

	quotas := make([]int, len(sizes))
	sum := 0
	for i, size := range sizes {
		q := size * target / total
		if q < 1 {
			q = 1
		}
		if q > size {
			q = size
		}
		quotas[i] = q
		sum += q
	}

	// Rounding drift: top up subjects with spare capacity, or trim the
	// biggest quotas, until the sum matches the target exactly.
	for sum < target {
		best := -1
		for i := range quotas {
			if quotas[i] < sizes[i] && (best == -1 || sizes[i]-quotas[i] > sizes[best]-quotas[best]) {
				best = i
			}
		}
		if best == -1 {
			break
		}
		quotas[best]++
		sum++
	}
	for sum > target {
		best := -1
		for i := range quotas {
			if quotas[i] > 1 && (best == -1 || quotas[i] > quotas[best]) {
				best = i
			}
		}
		if best == -1 {
			// More subjects than target questions: drop whole subjects
			// from the end of the list.
			for i := len(quotas) - 1; i >= 0 && sum > target; i-- {
				if quotas[i] > 0 {
					sum -= quotas[i]
					quotas[i] = 0
				}
			}
			break
		}
		quotas[best]--
		sum--
	}

	return quotas
}
