package service

import "testing"

func TestQuizSession_BatchCompletion(t *testing.T) {
	session := NewQuizSession(1, "Math", questionsNamed("q", 5))
	session.CurrentBatch = map[int]struct{}{0: {}, 1: {}, 2: {}}

	if session.BatchComplete() {
		t.Fatal("empty answered set reported complete")
	}
	if got := session.RemainingInBatch(); got != 3 {
		t.Fatalf("RemainingInBatch = %d, want 3", got)
	}

	session.AnsweredInBatch[0] = struct{}{}
	session.AnsweredInBatch[2] = struct{}{}
	if session.BatchComplete() {
		t.Fatal("partially answered batch reported complete")
	}
	if got := session.RemainingInBatch(); got != 1 {
		t.Fatalf("RemainingInBatch = %d, want 1", got)
	}

	session.AnsweredInBatch[1] = struct{}{}
	if !session.BatchComplete() {
		t.Fatal("fully answered batch reported incomplete")
	}
}

func TestQuizSession_EmptyBatchIsComplete(t *testing.T) {
	session := NewQuizSession(1, "Math", nil)
	if !session.BatchComplete() {
		t.Fatal("empty batch should be vacuously complete")
	}
	if session.lastQuestionInBatch() {
		t.Fatal("lastQuestionInBatch true for empty session")
	}
}
