package service

import (
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/examforge/examforge-backend/internal/model"
	"github.com/examforge/examforge-backend/internal/repository"
)

// Evaluation is the pure grading outcome of one paper.
type Evaluation struct {
	TotalQuestions      int
	Attempted           int
	Correct             int
	Wrong               int
	MarksObtained       float64
	Percentage          float64
	IsPassed            bool
	DifficultyWiseScore map[model.Difficulty]model.DifficultyScore
	Grades              []repository.ResponseGrade
}

// EvaluatePaper grades a paper snapshot against the bank's correct answers.
// Answers compare case-insensitively after trimming whitespace. Wrong answers
// subtract the question's negative marks; the aggregate is floored at zero
// before the percentage and pass decision are derived from it, so penalties
// can never push a student into negative territory or fail them on marks
// they effectively hold. Paper slots whose bank question has since been
// deleted are skipped outright: a removed question neither scores nor
// penalizes.
func EvaluatePaper(data model.PaperData, responses []model.StudentResponse, questions map[uuid.UUID]model.Question, totalMarks, passingMarks float64) Evaluation {
	answers := make(map[uuid.UUID]*model.StudentResponse, len(responses))
	for i := range responses {
		answers[responses[i].QuestionID] = &responses[i]
	}

	ev := Evaluation{
		TotalQuestions:      len(data.Questions),
		DifficultyWiseScore: make(map[model.Difficulty]model.DifficultyScore),
		Grades:              make([]repository.ResponseGrade, 0, len(data.Questions)),
	}

	var raw float64
	for _, pq := range data.Questions {
		q, known := questions[pq.QuestionID]
		if !known {
			continue
		}

		resp := answers[pq.QuestionID]
		if resp == nil || resp.SelectedAnswer == nil || strings.TrimSpace(*resp.SelectedAnswer) == "" {
			// Unanswered: no marks either way, correctness stays unknown.
			ev.Grades = append(ev.Grades, repository.ResponseGrade{QuestionID: pq.QuestionID})
			continue
		}

		ev.Attempted++
		score := ev.DifficultyWiseScore[q.Difficulty]
		score.Total++

		correct := answersMatch(*resp.SelectedAnswer, q.CorrectAnswer)
		grade := repository.ResponseGrade{QuestionID: pq.QuestionID, IsCorrect: &correct}
		if correct {
			ev.Correct++
			grade.MarksObtained = pq.Marks
			score.Correct++
			score.Marks += pq.Marks
		} else {
			ev.Wrong++
			grade.MarksObtained = -pq.NegativeMarks
			score.Marks -= pq.NegativeMarks
		}
		raw += grade.MarksObtained

		ev.DifficultyWiseScore[q.Difficulty] = score
		ev.Grades = append(ev.Grades, grade)
	}

	ev.MarksObtained = math.Max(0, raw)
	if totalMarks > 0 {
		ev.Percentage = math.Round(ev.MarksObtained/totalMarks*100*100) / 100
	}
	ev.IsPassed = ev.MarksObtained >= passingMarks
	return ev
}

func answersMatch(given, correct string) bool {
	return strings.EqualFold(strings.TrimSpace(given), strings.TrimSpace(correct))
}

// AssignRanks maps rows already ordered by marks descending, ties broken by
// evaluation time ascending, to ordinal ranks 1..N. Tied marks still get
// distinct ranks; the earlier evaluation takes the better one.
func AssignRanks(rows []repository.RankRow) []int {
	ranks := make([]int, len(rows))
	for i := range rows {
		ranks[i] = i + 1
	}
	return ranks
}
