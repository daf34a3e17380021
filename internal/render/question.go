// Package render is the stateless view layer of the question screen.
package render

import (
	"fmt"
	"strings"

	"github.com/adaptive-testing/quizclient/internal/attempt"
	"github.com/adaptive-testing/quizclient/internal/models"
)

// NoSelection is passed for selected when no choice has been made yet.
const NoSelection = -1

const selectedMark = ">"

// ChoiceLabel derives the stable letter identifier of a choice purely
// from its position: 0 → "A", 1 → "B", and so on. Server-provided labels
// are never consulted.
func ChoiceLabel(index int) string {
	if index < 0 || index >= models.MaxChoices {
		return "?"
	}
	return string(rune('A' + index))
}

// SubmitEnabled mirrors the submit control: a selection must exist and
// the view must not be disabled by an in-flight request.
func SubmitEnabled(selected int, disabled bool) bool {
	return selected != NoSelection && !disabled
}

// Question renders one question with its choice list. The selected choice
// is marked; the whole block is a pure function of its inputs.
func Question(q models.Question, selected int, disabled bool) string {
	var b strings.Builder

	fmt.Fprintf(&b, "[%s] %s\n", q.Difficulty, q.Prompt)
	for i, choice := range q.Choices {
		mark := " "
		if i == selected {
			mark = selectedMark
		}
		fmt.Fprintf(&b, " %s %s. %s\n", mark, ChoiceLabel(i), choice)
	}

	if disabled {
		b.WriteString("Submitting...\n")
	}
	return b.String()
}

// Progress renders the running counters shown above the question.
func Progress(counters attempt.Counters, totalQuestions int) string {
	if totalQuestions > 0 {
		return fmt.Sprintf("Question %d of %d · %d correct",
			counters.NumAnswered+1, totalQuestions, counters.NumCorrect)
	}
	return fmt.Sprintf("Question %d · %d correct",
		counters.NumAnswered+1, counters.NumCorrect)
}
