package service

import (
	"math/rand"
	"sort"

	"github.com/examforge/examforge-backend/internal/model"
)

// ComposePaper freezes a selected question set into a paper snapshot.
// Question order and per-question option order are shuffled here, once; the
// resulting snapshot is what the student sees for the whole attempt, immune
// to later edits of the bank. Correct answers are deliberately absent from
// the snapshot.
func ComposePaper(questions []model.Question, shuffleQuestions, shuffleOptions bool, rng *rand.Rand) model.PaperData {
	ordered := make([]model.Question, len(questions))
	copy(ordered, questions)
	if shuffleQuestions {
		rng.Shuffle(len(ordered), func(i, j int) {
			ordered[i], ordered[j] = ordered[j], ordered[i]
		})
	}

	data := model.PaperData{
		Questions: make([]model.PaperQuestion, len(ordered)),
	}
	for i, q := range ordered {
		order := optionOrder(q)
		if shuffleOptions && len(order) > 1 {
			rng.Shuffle(len(order), func(a, b int) {
				order[a], order[b] = order[b], order[a]
			})
		}

		data.Questions[i] = model.PaperQuestion{
			QuestionID:    q.ID,
			Sequence:      i + 1,
			QuestionText:  q.QuestionText,
			QuestionType:  q.QuestionType,
			Marks:         q.Marks,
			NegativeMarks: q.NegativeMarks,
			OptionOrder:   order,
			Options:       q.Options,
		}
	}
	return data
}

// optionOrder returns a fresh copy of the question's option-key order,
// falling back to sorted-insertion order of the options map when the bank
// never recorded one.
func optionOrder(q model.Question) []string {
	if len(q.OptionOrder) > 0 {
		order := make([]string, len(q.OptionOrder))
		copy(order, q.OptionOrder)
		return order
	}
	if len(q.Options) == 0 {
		return nil
	}
	order := make([]string, 0, len(q.Options))
	for key := range q.Options {
		order = append(order, key)
	}
	// Map iteration order is random; pin it so the snapshot is stable.
	sort.Strings(order)
	return order
}
