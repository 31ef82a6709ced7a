package service

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/google/uuid"

	"github.com/examforge/examforge-backend/internal/model"
)

func mcqQuestion(order []string) model.Question {
	options := map[string]string{"a": "Alpha", "b": "Beta", "c": "Gamma", "d": "Delta"}
	return model.Question{
		ID:            uuid.New(),
		QuestionText:  "pick one",
		QuestionType:  model.QuestionTypeMCQ,
		Difficulty:    model.DifficultyMedium,
		Marks:         1,
		Options:       options,
		OptionOrder:   order,
		CorrectAnswer: "a",
	}
}

func TestComposePaperDeterministic(t *testing.T) {
	questions := []model.Question{
		mcqQuestion([]string{"a", "b", "c", "d"}),
		mcqQuestion([]string{"a", "b", "c", "d"}),
		mcqQuestion([]string{"a", "b", "c", "d"}),
	}

	first := ComposePaper(questions, true, true, rand.New(rand.NewSource(42)))
	second := ComposePaper(questions, true, true, rand.New(rand.NewSource(42)))

	if !reflect.DeepEqual(first, second) {
		t.Error("same seed must produce the same paper")
	}
}

func TestComposePaperNoShuffleKeepsOrder(t *testing.T) {
	questions := []model.Question{
		mcqQuestion([]string{"a", "b", "c", "d"}),
		mcqQuestion([]string{"a", "b", "c", "d"}),
	}

	data := ComposePaper(questions, false, false, rand.New(rand.NewSource(1)))

	for i, pq := range data.Questions {
		if pq.QuestionID != questions[i].ID {
			t.Errorf("question %d reordered despite shuffle off", i)
		}
		if pq.Sequence != i+1 {
			t.Errorf("sequence = %d, want %d", pq.Sequence, i+1)
		}
		if !reflect.DeepEqual(pq.OptionOrder, []string{"a", "b", "c", "d"}) {
			t.Errorf("option order changed despite shuffle off: %v", pq.OptionOrder)
		}
	}
}

func TestComposePaperShuffledOptionsKeepAllKeys(t *testing.T) {
	q := mcqQuestion([]string{"a", "b", "c", "d"})

	data := ComposePaper([]model.Question{q}, false, true, rand.New(rand.NewSource(3)))

	order := data.Questions[0].OptionOrder
	if len(order) != 4 {
		t.Fatalf("option order has %d keys, want 4", len(order))
	}
	seen := map[string]bool{}
	for _, key := range order {
		if _, ok := q.Options[key]; !ok {
			t.Errorf("unknown option key %q", key)
		}
		if seen[key] {
			t.Errorf("option key %q duplicated", key)
		}
		seen[key] = true
	}
}

func TestComposePaperFallbackOptionOrder(t *testing.T) {
	q := mcqQuestion(nil)

	data := ComposePaper([]model.Question{q}, false, false, rand.New(rand.NewSource(1)))

	if want := []string{"a", "b", "c", "d"}; !reflect.DeepEqual(data.Questions[0].OptionOrder, want) {
		t.Errorf("fallback order = %v, want %v", data.Questions[0].OptionOrder, want)
	}
}

func TestComposePaperDoesNotShareOptionOrder(t *testing.T) {
	q := mcqQuestion([]string{"a", "b", "c", "d"})

	data := ComposePaper([]model.Question{q}, false, true, rand.New(rand.NewSource(5)))

	if &data.Questions[0].OptionOrder[0] == &q.OptionOrder[0] {
		t.Error("paper aliases the bank question's option order slice")
	}
	if !reflect.DeepEqual(q.OptionOrder, []string{"a", "b", "c", "d"}) {
		t.Errorf("bank question order mutated: %v", q.OptionOrder)
	}
}
