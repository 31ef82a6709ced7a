package service

import (
	"testing"

	"github.com/google/uuid"

	"github.com/examforge/examforge-backend/internal/model"
)

func TestDedupeAnswersKeepsLastWrite(t *testing.T) {
	q1 := uuid.New()
	q2 := uuid.New()

	first := "a"
	second := "c"
	other := "b"
	in := []model.SaveAnswerRequest{
		{QuestionID: q1, SelectedAnswer: &first},
		{QuestionID: q2, SelectedAnswer: &other},
		{QuestionID: q1, SelectedAnswer: &second, IsMarkedForReview: true},
	}

	out := dedupeAnswers(in)
	if len(out) != 2 {
		t.Fatalf("got %d entries, want 2", len(out))
	}
	if out[0].QuestionID != q1 || out[1].QuestionID != q2 {
		t.Fatal("first-seen order not preserved")
	}
	if out[0].SelectedAnswer != &second || !out[0].IsMarkedForReview {
		t.Errorf("duplicate did not collapse to the last entry: %+v", out[0])
	}
}

func TestDedupeAnswersNoDuplicates(t *testing.T) {
	in := []model.SaveAnswerRequest{{QuestionID: uuid.New()}, {QuestionID: uuid.New()}}
	out := dedupeAnswers(in)
	if len(out) != 2 {
		t.Errorf("got %d entries, want 2", len(out))
	}
}
