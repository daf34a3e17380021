package quizserver

import (
	"math/rand"

	"github.com/adaptive-testing/quizclient/internal/models"
)

var difficultyOrder = []models.Difficulty{
	models.DifficultyEasy,
	models.DifficultyMedium,
	models.DifficultyHard,
}

func difficultyIndex(d models.Difficulty) int {
	for i, level := range difficultyOrder {
		if level == d {
			return i
		}
	}
	return 1 // MEDIUM
}

// nextDifficultyAfter steps the adaptive difficulty: a correct answer
// moves up one level, a wrong one moves down, clamped at the bounds.
func nextDifficultyAfter(current models.Difficulty, wasCorrect bool) models.Difficulty {
	idx := difficultyIndex(current)
	if wasCorrect && idx < len(difficultyOrder)-1 {
		return difficultyOrder[idx+1]
	}
	if !wasCorrect && idx > 0 {
		return difficultyOrder[idx-1]
	}
	return difficultyOrder[idx]
}

// selectNextQuestion picks an unused question: first at the target
// difficulty, then one step away on either side, then anywhere in the
// bank. nil means the bank is exhausted and the attempt should finish.
func selectNextQuestion(rng *rand.Rand, bank []*SeedQuestion, target models.Difficulty, answered map[int64]bool) *SeedQuestion {
	if q := pickUnused(rng, bank, target, answered); q != nil {
		return q
	}

	idx := difficultyIndex(target)
	if idx-1 >= 0 {
		if q := pickUnused(rng, bank, difficultyOrder[idx-1], answered); q != nil {
			return q
		}
	}
	if idx+1 < len(difficultyOrder) {
		if q := pickUnused(rng, bank, difficultyOrder[idx+1], answered); q != nil {
			return q
		}
	}

	return pickUnused(rng, bank, "", answered)
}

// pickUnused returns a random unused question at the given difficulty;
// an empty difficulty matches everything.
func pickUnused(rng *rand.Rand, bank []*SeedQuestion, difficulty models.Difficulty, answered map[int64]bool) *SeedQuestion {
	var candidates []*SeedQuestion
	for _, q := range bank {
		if answered[q.Question.ID] {
			continue
		}
		if difficulty != "" && q.Question.Difficulty != difficulty {
			continue
		}
		candidates = append(candidates, q)
	}
	if len(candidates) == 0 {
		return nil
	}
	return candidates[rng.Intn(len(candidates))]
}
