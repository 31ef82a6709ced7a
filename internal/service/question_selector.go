package service

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/examforge/examforge-backend/internal/model"
)

// Selection errors.
var (
	ErrInsufficientQuestions = errors.New("not enough questions in the bank")
	ErrQuotaMismatch         = errors.New("difficulty distribution does not sum to total questions")
)

// SelectQuestions draws the question set for one paper. With a difficulty
// distribution each tier is sampled independently and must be satisfiable in
// full; without one the draw is uniform across the whole pool. The rng is
// injected so generation can be made deterministic under test.
func SelectQuestions(pool []model.Question, total int, distribution map[model.Difficulty]int, rng *rand.Rand) ([]model.Question, error) {
	if distribution == nil {
		if len(pool) < total {
			return nil, fmt.Errorf("%w: need %d, have %d", ErrInsufficientQuestions, total, len(pool))
		}
		return sample(pool, total, rng), nil
	}

	quotaSum := 0
	for _, n := range distribution {
		quotaSum += n
	}
	if quotaSum != total {
		return nil, fmt.Errorf("%w: quotas sum to %d, exam wants %d", ErrQuotaMismatch, quotaSum, total)
	}

	byTier := make(map[model.Difficulty][]model.Question)
	for _, q := range pool {
		byTier[q.Difficulty] = append(byTier[q.Difficulty], q)
	}

	selected := make([]model.Question, 0, total)
	for _, tier := range model.Difficulties {
		want := distribution[tier]
		if want == 0 {
			continue
		}
		have := byTier[tier]
		if len(have) < want {
			return nil, fmt.Errorf("%w: tier %s needs %d, have %d", ErrInsufficientQuestions, tier, want, len(have))
		}
		selected = append(selected, sample(have, want, rng)...)
	}
	return selected, nil
}

// sample returns n questions drawn without replacement. The input slice is
// not modified.
func sample(pool []model.Question, n int, rng *rand.Rand) []model.Question {
	shuffled := make([]model.Question, len(pool))
	copy(shuffled, pool)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled[:n]
}
