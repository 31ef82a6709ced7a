package service

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/examforge/examforge-backend/internal/model"
	"github.com/examforge/examforge-backend/internal/repository"
)

func strPtr(s string) *string { return &s }

func makeQuestion(correct string, difficulty model.Difficulty) model.Question {
	return model.Question{
		ID:            uuid.New(),
		QuestionText:  "q",
		QuestionType:  model.QuestionTypeMCQ,
		Difficulty:    difficulty,
		CorrectAnswer: correct,
	}
}

func paperFor(questions []model.Question, marks, negative float64) model.PaperData {
	data := model.PaperData{Questions: make([]model.PaperQuestion, len(questions))}
	for i, q := range questions {
		data.Questions[i] = model.PaperQuestion{
			QuestionID:    q.ID,
			Sequence:      i + 1,
			QuestionType:  q.QuestionType,
			Marks:         marks,
			NegativeMarks: negative,
		}
	}
	return data
}

func questionMap(questions []model.Question) map[uuid.UUID]model.Question {
	m := make(map[uuid.UUID]model.Question, len(questions))
	for _, q := range questions {
		m[q.ID] = q
	}
	return m
}

func TestEvaluatePaperNegativeMarking(t *testing.T) {
	q1 := makeQuestion("A", model.DifficultyEasy)
	q2 := makeQuestion("B", model.DifficultyHard)

	data := model.PaperData{Questions: []model.PaperQuestion{
		{QuestionID: q1.ID, Sequence: 1, Marks: 2},
		{QuestionID: q2.ID, Sequence: 2, Marks: 1, NegativeMarks: 0.5},
	}}
	responses := []model.StudentResponse{
		{QuestionID: q1.ID, SelectedAnswer: strPtr("A")},
		{QuestionID: q2.ID, SelectedAnswer: strPtr("C")},
	}

	ev := EvaluatePaper(data, responses, questionMap([]model.Question{q1, q2}), 3, 1.5)

	if ev.MarksObtained != 1.5 {
		t.Errorf("MarksObtained = %v, want 1.5", ev.MarksObtained)
	}
	if ev.Percentage != 50.0 {
		t.Errorf("Percentage = %v, want 50.0", ev.Percentage)
	}
	if !ev.IsPassed {
		t.Error("expected pass at exactly the passing mark")
	}
	if ev.Correct != 1 || ev.Wrong != 1 || ev.Attempted != 2 {
		t.Errorf("counters = correct %d, wrong %d, attempted %d", ev.Correct, ev.Wrong, ev.Attempted)
	}
}

func TestEvaluatePaperFlooredAtZero(t *testing.T) {
	q1 := makeQuestion("A", model.DifficultyMedium)
	q2 := makeQuestion("B", model.DifficultyMedium)

	data := model.PaperData{Questions: []model.PaperQuestion{
		{QuestionID: q1.ID, Sequence: 1, Marks: 1, NegativeMarks: 1},
		{QuestionID: q2.ID, Sequence: 2, Marks: 1, NegativeMarks: 1},
	}}
	responses := []model.StudentResponse{
		{QuestionID: q1.ID, SelectedAnswer: strPtr("X")},
		{QuestionID: q2.ID, SelectedAnswer: strPtr("Y")},
	}

	ev := EvaluatePaper(data, responses, questionMap([]model.Question{q1, q2}), 2, 1)

	if ev.MarksObtained != 0 {
		t.Errorf("MarksObtained = %v, want floored 0", ev.MarksObtained)
	}
	if ev.Percentage != 0 {
		t.Errorf("Percentage = %v, want 0", ev.Percentage)
	}
	if ev.IsPassed {
		t.Error("floored score must not pass")
	}
}

func TestEvaluatePaperUnansweredStaysUnknown(t *testing.T) {
	q := makeQuestion("true", model.DifficultyEasy)
	data := paperFor([]model.Question{q}, 1, 0.25)

	blank := ""
	cases := []struct {
		name      string
		responses []model.StudentResponse
	}{
		{"no response row", nil},
		{"nil answer", []model.StudentResponse{{QuestionID: q.ID}}},
		{"blank answer", []model.StudentResponse{{QuestionID: q.ID, SelectedAnswer: &blank}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ev := EvaluatePaper(data, tc.responses, questionMap([]model.Question{q}), 1, 1)
			if ev.Attempted != 0 {
				t.Errorf("Attempted = %d, want 0", ev.Attempted)
			}
			if ev.MarksObtained != 0 {
				t.Errorf("MarksObtained = %v, want 0 (no penalty)", ev.MarksObtained)
			}
			if len(ev.Grades) != 1 {
				t.Fatalf("Grades len = %d, want 1", len(ev.Grades))
			}
			if ev.Grades[0].IsCorrect != nil {
				t.Error("unanswered question must keep IsCorrect nil")
			}
		})
	}
}

func TestEvaluatePaperAnswerNormalization(t *testing.T) {
	q := makeQuestion("Paris", model.DifficultyEasy)
	data := paperFor([]model.Question{q}, 1, 0)

	for _, given := range []string{"paris", "  Paris  ", "PARIS"} {
		ev := EvaluatePaper(data,
			[]model.StudentResponse{{QuestionID: q.ID, SelectedAnswer: strPtr(given)}},
			questionMap([]model.Question{q}), 1, 1)
		if ev.Correct != 1 {
			t.Errorf("answer %q not accepted", given)
		}
	}
}

func TestEvaluatePaperDifficultyBreakdown(t *testing.T) {
	easy := makeQuestion("A", model.DifficultyEasy)
	hard := makeQuestion("B", model.DifficultyHard)

	data := model.PaperData{Questions: []model.PaperQuestion{
		{QuestionID: easy.ID, Sequence: 1, Marks: 1},
		{QuestionID: hard.ID, Sequence: 2, Marks: 3, NegativeMarks: 1},
	}}
	responses := []model.StudentResponse{
		{QuestionID: easy.ID, SelectedAnswer: strPtr("A")},
		{QuestionID: hard.ID, SelectedAnswer: strPtr("X")},
	}

	ev := EvaluatePaper(data, responses, questionMap([]model.Question{easy, hard}), 4, 2)

	easyScore := ev.DifficultyWiseScore[model.DifficultyEasy]
	if easyScore.Total != 1 || easyScore.Correct != 1 || easyScore.Marks != 1 {
		t.Errorf("easy tier = %+v", easyScore)
	}
	hardScore := ev.DifficultyWiseScore[model.DifficultyHard]
	if hardScore.Total != 1 || hardScore.Correct != 0 || hardScore.Marks != -1 {
		t.Errorf("hard tier = %+v", hardScore)
	}
}

func TestEvaluatePaperPercentageRounding(t *testing.T) {
	q1 := makeQuestion("A", model.DifficultyMedium)
	q2 := makeQuestion("B", model.DifficultyMedium)
	q3 := makeQuestion("C", model.DifficultyMedium)

	data := paperFor([]model.Question{q1, q2, q3}, 1, 0)
	responses := []model.StudentResponse{
		{QuestionID: q1.ID, SelectedAnswer: strPtr("A")},
	}

	ev := EvaluatePaper(data, responses, questionMap([]model.Question{q1, q2, q3}), 3, 2)

	// 1/3 of the marks: 33.333...% rounds to two decimals.
	if ev.Percentage != 33.33 {
		t.Errorf("Percentage = %v, want 33.33", ev.Percentage)
	}
}

func TestAssignRanksOrdinalAcrossTies(t *testing.T) {
	now := time.Now()
	rows := []repository.RankRow{
		{ID: uuid.New(), MarksObtained: 80, EvaluatedAt: now},
		{ID: uuid.New(), MarksObtained: 80, EvaluatedAt: now.Add(time.Minute)},
		{ID: uuid.New(), MarksObtained: 60, EvaluatedAt: now},
	}

	// Tied marks take distinct ranks, earlier evaluation first.
	ranks := AssignRanks(rows)
	want := []int{1, 2, 3}
	for i, r := range ranks {
		if r != want[i] {
			t.Fatalf("ranks = %v, want %v", ranks, want)
		}
	}
}

func TestAssignRanksEmpty(t *testing.T) {
	if ranks := AssignRanks(nil); len(ranks) != 0 {
		t.Errorf("ranks = %v, want empty", ranks)
	}
}

func TestEvaluatePaperDeletedBankQuestionSkipped(t *testing.T) {
	kept := makeQuestion("A", model.DifficultyEasy)
	removed := makeQuestion("B", model.DifficultyHard)

	data := model.PaperData{Questions: []model.PaperQuestion{
		{QuestionID: kept.ID, Sequence: 1, Marks: 2},
		{QuestionID: removed.ID, Sequence: 2, Marks: 2, NegativeMarks: 1},
	}}
	responses := []model.StudentResponse{
		{QuestionID: kept.ID, SelectedAnswer: strPtr("A")},
		{QuestionID: removed.ID, SelectedAnswer: strPtr("B")},
	}

	// Only kept survives in the bank.
	ev := EvaluatePaper(data, responses, questionMap([]model.Question{kept}), 4, 2)

	if ev.MarksObtained != 2 {
		t.Errorf("MarksObtained = %v, want 2 (no penalty for the removed question)", ev.MarksObtained)
	}
	if ev.Attempted != 1 || ev.Wrong != 0 {
		t.Errorf("attempted %d, wrong %d; removed question must not count", ev.Attempted, ev.Wrong)
	}
	if len(ev.Grades) != 1 || ev.Grades[0].QuestionID != kept.ID {
		t.Fatalf("grades = %+v, want only the surviving question", ev.Grades)
	}
	if _, ok := ev.DifficultyWiseScore[model.DifficultyHard]; ok {
		t.Error("removed question must not appear in the difficulty breakdown")
	}
}
