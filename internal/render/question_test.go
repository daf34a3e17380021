package render

import (
	"strings"
	"testing"

	"github.com/adaptive-testing/quizclient/internal/attempt"
	"github.com/adaptive-testing/quizclient/internal/models"
)

var sampleQuestion = models.Question{
	ID:         7,
	Prompt:     "What is the zero value of a pointer?",
	Choices:    []string{"0", "nil", "undefined", "panic"},
	Difficulty: models.DifficultyEasy,
}

func TestChoiceLabel(t *testing.T) {
	wants := []string{"A", "B", "C", "D"}
	for i, want := range wants {
		if got := ChoiceLabel(i); got != want {
			t.Errorf("ChoiceLabel(%d) = %q, want %q", i, got, want)
		}
	}
	if got := ChoiceLabel(-1); got != "?" {
		t.Errorf("ChoiceLabel(-1) = %q, want ?", got)
	}
	if got := ChoiceLabel(models.MaxChoices); got != "?" {
		t.Errorf("ChoiceLabel(max) = %q, want ?", got)
	}
}

func TestSubmitEnabled(t *testing.T) {
	if SubmitEnabled(NoSelection, false) {
		t.Error("submit must be disabled without a selection")
	}
	if SubmitEnabled(1, true) {
		t.Error("submit must be disabled while a request is in flight")
	}
	if !SubmitEnabled(1, false) {
		t.Error("submit must be enabled with a selection and no request in flight")
	}
}

func TestQuestionRendering(t *testing.T) {
	out := Question(sampleQuestion, 1, false)

	if !strings.Contains(out, sampleQuestion.Prompt) {
		t.Error("output should contain the prompt")
	}
	for i, choice := range sampleQuestion.Choices {
		if !strings.Contains(out, ChoiceLabel(i)+". "+choice) {
			t.Errorf("output should label choice %d as %s", i, ChoiceLabel(i))
		}
	}
	if !strings.Contains(out, "> B. nil") {
		t.Errorf("selected choice should be marked:\n%s", out)
	}
	if strings.Contains(out, "Submitting") {
		t.Error("enabled view should not show the submitting notice")
	}

	// Same inputs, same output.
	if out != Question(sampleQuestion, 1, false) {
		t.Error("rendering is not deterministic")
	}
}

func TestQuestionRenderingDisabled(t *testing.T) {
	out := Question(sampleQuestion, NoSelection, true)

	if strings.Contains(out, ">") {
		t.Error("no choice should be marked without a selection")
	}
	if !strings.Contains(out, "Submitting") {
		t.Error("disabled view should show the submitting notice")
	}
}

func TestProgress(t *testing.T) {
	counters := attempt.Counters{NumAnswered: 2, NumCorrect: 1}

	if got := Progress(counters, 5); got != "Question 3 of 5 · 1 correct" {
		t.Errorf("Progress with total = %q", got)
	}
	if got := Progress(counters, 0); got != "Question 3 · 1 correct" {
		t.Errorf("Progress without total = %q", got)
	}
}
