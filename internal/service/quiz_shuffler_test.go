package service

import (
	"strings"
	"testing"
)

func questionsNamed(prefix string, n int) []QuizQuestion {
	questions := make([]QuizQuestion, n)
	for i := range questions {
		questions[i] = QuizQuestion{
			Text:    prefix,
			Options: []Option{{Letter: "A", Label: "A) x"}},
			Correct: "A",
		}
	}
	return questions
}

func TestShuffleQuestions_PreservesContents(t *testing.T) {
	original := []QuizQuestion{
		{Text: "one"}, {Text: "two"}, {Text: "three"}, {Text: "four"},
	}

	shuffled := ShuffleQuestions(original)

	if len(shuffled) != len(original) {
		t.Fatalf("len = %d, want %d", len(shuffled), len(original))
	}

	counts := map[string]int{}
	for _, q := range shuffled {
		counts[q.Text]++
	}
	for _, q := range original {
		if counts[q.Text] != 1 {
			t.Errorf("question %q appears %d times, want 1", q.Text, counts[q.Text])
		}
	}

	// The bank's slice must stay in its original order.
	for i, want := range []string{"one", "two", "three", "four"} {
		if original[i].Text != want {
			t.Fatalf("original slice mutated at %d: %q", i, original[i].Text)
		}
	}
}

func TestShuffleQuestionsWithLimit(t *testing.T) {
	questions := questionsNamed("q", 8)

	if got := len(ShuffleQuestionsWithLimit(questions, 3)); got != 3 {
		t.Errorf("limit 3: len = %d, want 3", got)
	}
	if got := len(ShuffleQuestionsWithLimit(questions, 0)); got != 8 {
		t.Errorf("limit 0: len = %d, want 8", got)
	}
	if got := len(ShuffleQuestionsWithLimit(questions, 20)); got != 8 {
		t.Errorf("limit 20: len = %d, want 8", got)
	}
}

func TestSampleAcrossSubjects_TakesAllWhenBelowTarget(t *testing.T) {
	bank := QuestionBank{
		"Math":    questionsNamed("math", 5),
		"English": questionsNamed("english", 7),
	}

	sample := SampleAcrossSubjects(bank, 40)
	if len(sample) != 12 {
		t.Fatalf("len = %d, want 12", len(sample))
	}
}

func TestSampleAcrossSubjects_ProportionalWithFloor(t *testing.T) {
	bank := QuestionBank{
		"Math":    questionsNamed("math", 30),
		"English": questionsNamed("english", 30),
		"Physics": questionsNamed("physics", 2),
	}

	sample := SampleAcrossSubjects(bank, 40)
	if len(sample) != 40 {
		t.Fatalf("len = %d, want 40", len(sample))
	}

	counts := map[string]int{}
	for _, q := range sample {
		counts[strings.Split(q.Text, " ")[0]]++
	}

	if counts["physics"] < 1 {
		t.Errorf("physics got %d questions, want at least 1", counts["physics"])
	}
	if counts["physics"] > 2 {
		t.Errorf("physics got %d questions, above its size 2", counts["physics"])
	}
	if counts["math"] > 30 || counts["english"] > 30 {
		t.Errorf("subject oversampled: %v", counts)
	}
}

func TestSampleAcrossSubjects_MoreSubjectsThanTarget(t *testing.T) {
	bank := make(QuestionBank)
	for _, name := range []string{"a", "b", "c", "d", "e", "f"} {
		bank[name] = questionsNamed(name, 10)
	}

	sample := SampleAcrossSubjects(bank, 4)
	if len(sample) != 4 {
		t.Fatalf("len = %d, want 4", len(sample))
	}
}

func TestSampleAcrossSubjects_EmptyBank(t *testing.T) {
	if sample := SampleAcrossSubjects(make(QuestionBank), 40); sample != nil {
		t.Fatalf("sample = %v, want nil", sample)
	}
}

func TestAllocateQuotas_SumMatchesTarget(t *testing.T) {
	cases := []struct {
		sizes  []int
		target int
	}{
		{[]int{30, 30, 2}, 40},
		{[]int{100, 1, 1}, 40},
		{[]int{10, 10, 10, 10, 10, 10}, 4},
		{[]int{50, 3}, 45},
	}

	for _, tc := range cases {
		quotas := allocateQuotas(tc.sizes, tc.target)
		sum := 0
		for i, q := range quotas {
			if q > tc.sizes[i] {
				t.Errorf("sizes=%v target=%d: quota %d exceeds size %d", tc.sizes, tc.target, q, tc.sizes[i])
			}
			sum += q
		}
		if sum != tc.target {
			t.Errorf("sizes=%v target=%d: quota sum = %d", tc.sizes, tc.target, sum)
		}
	}
}
