package service

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/google/uuid"

	"github.com/examforge/examforge-backend/internal/model"
)

func makePool(counts map[model.Difficulty]int) []model.Question {
	var pool []model.Question
	for tier, n := range counts {
		for i := 0; i < n; i++ {
			pool = append(pool, model.Question{ID: uuid.New(), Difficulty: tier})
		}
	}
	return pool
}

func TestSelectQuestionsWithDistribution(t *testing.T) {
	pool := makePool(map[model.Difficulty]int{
		model.DifficultyEasy:   5,
		model.DifficultyMedium: 5,
		model.DifficultyHard:   5,
	})
	distribution := map[model.Difficulty]int{
		model.DifficultyEasy:   2,
		model.DifficultyMedium: 2,
		model.DifficultyHard:   1,
	}

	rng := rand.New(rand.NewSource(1))
	selected, err := SelectQuestions(pool, 5, distribution, rng)
	if err != nil {
		t.Fatalf("SelectQuestions: %v", err)
	}
	if len(selected) != 5 {
		t.Fatalf("selected %d questions, want 5", len(selected))
	}

	got := map[model.Difficulty]int{}
	seen := map[uuid.UUID]bool{}
	for _, q := range selected {
		got[q.Difficulty]++
		if seen[q.ID] {
			t.Fatalf("question %s drawn twice", q.ID)
		}
		seen[q.ID] = true
	}
	for tier, want := range distribution {
		if got[tier] != want {
			t.Errorf("tier %s: got %d, want %d", tier, got[tier], want)
		}
	}
}

func TestSelectQuestionsUniformDraw(t *testing.T) {
	pool := makePool(map[model.Difficulty]int{model.DifficultyMedium: 10})

	rng := rand.New(rand.NewSource(7))
	selected, err := SelectQuestions(pool, 4, nil, rng)
	if err != nil {
		t.Fatalf("SelectQuestions: %v", err)
	}
	if len(selected) != 4 {
		t.Fatalf("selected %d questions, want 4", len(selected))
	}
}

func TestSelectQuestionsQuotaMismatch(t *testing.T) {
	pool := makePool(map[model.Difficulty]int{model.DifficultyEasy: 10})
	distribution := map[model.Difficulty]int{model.DifficultyEasy: 3}

	_, err := SelectQuestions(pool, 5, distribution, rand.New(rand.NewSource(1)))
	if !errors.Is(err, ErrQuotaMismatch) {
		t.Errorf("err = %v, want ErrQuotaMismatch", err)
	}
}

func TestSelectQuestionsInsufficientTier(t *testing.T) {
	pool := makePool(map[model.Difficulty]int{
		model.DifficultyEasy: 5,
		model.DifficultyHard: 1,
	})
	distribution := map[model.Difficulty]int{
		model.DifficultyEasy: 2,
		model.DifficultyHard: 3,
	}

	_, err := SelectQuestions(pool, 5, distribution, rand.New(rand.NewSource(1)))
	if !errors.Is(err, ErrInsufficientQuestions) {
		t.Errorf("err = %v, want ErrInsufficientQuestions", err)
	}
}

func TestSelectQuestionsInsufficientPool(t *testing.T) {
	pool := makePool(map[model.Difficulty]int{model.DifficultyMedium: 3})

	_, err := SelectQuestions(pool, 5, nil, rand.New(rand.NewSource(1)))
	if !errors.Is(err, ErrInsufficientQuestions) {
		t.Errorf("err = %v, want ErrInsufficientQuestions", err)
	}
}

func TestSelectQuestionsDoesNotMutatePool(t *testing.T) {
	pool := makePool(map[model.Difficulty]int{model.DifficultyMedium: 6})
	original := make([]uuid.UUID, len(pool))
	for i, q := range pool {
		original[i] = q.ID
	}

	if _, err := SelectQuestions(pool, 3, nil, rand.New(rand.NewSource(9))); err != nil {
		t.Fatalf("SelectQuestions: %v", err)
	}

	for i, q := range pool {
		if q.ID != original[i] {
			t.Fatal("input pool order was mutated")
		}
	}
}
