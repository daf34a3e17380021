package validator

import (
	"errors"
	"testing"

	apperrors "github.com/adaptive-testing/quizclient/internal/errors"
	"github.com/adaptive-testing/quizclient/internal/models"
)

func TestValidateQuestion(t *testing.T) {
	v := New()

	valid := models.Question{
		ID:         1,
		Prompt:     "What does iota produce?",
		Choices:    []string{"a", "b", "c", "d"},
		Difficulty: models.DifficultyEasy,
	}
	if err := v.Validate(&valid); err != nil {
		t.Fatalf("Expected valid question, got %v", err)
	}

	invalid := valid
	invalid.Choices = []string{"a", "b"}
	invalid.Difficulty = "TRIVIAL"

	err := v.Validate(&invalid)
	if err == nil {
		t.Fatal("Expected validation to fail")
	}

	var verrs apperrors.ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("Expected ValidationErrors, got %T", err)
	}

	fields := make(map[string]string)
	for _, e := range verrs {
		fields[e.Field] = e.Message
	}
	if fields["choices"] != "must have exactly 4 entries" {
		t.Errorf("Expected choices length message, got '%s'", fields["choices"])
	}
	if fields["difficulty"] != "must be EASY, MEDIUM, or HARD" {
		t.Errorf("Expected difficulty message, got '%s'", fields["difficulty"])
	}
}

func TestCustomTags(t *testing.T) {
	v := New()

	type statusPayload struct {
		Status string `json:"status" validate:"attempt_status"`
		Mode   string `json:"mode" validate:"selection_mode"`
	}

	cases := []struct {
		name    string
		payload statusPayload
		wantErr bool
	}{
		{"valid", statusPayload{Status: "IN_PROGRESS", Mode: "BANK"}, false},
		{"completed fixed", statusPayload{Status: "COMPLETED", Mode: "FIXED"}, false},
		{"bad status", statusPayload{Status: "PAUSED", Mode: "BANK"}, true},
		{"bad mode", statusPayload{Status: "COMPLETED", Mode: "RANDOM"}, true},
		{"lowercase rejected", statusPayload{Status: "in_progress", Mode: "BANK"}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.Validate(&tc.payload)
			if tc.wantErr && err == nil {
				t.Error("Expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("Expected success, got %v", err)
			}
		})
	}
}

func TestValidateStructReturnsRawError(t *testing.T) {
	v := New()

	type payload struct {
		Difficulty string `json:"difficulty" validate:"difficulty"`
	}
	if err := v.ValidateStruct(&payload{Difficulty: "IMPOSSIBLE"}); err == nil {
		t.Error("Expected raw validator error")
	}
	if err := v.ValidateStruct(&payload{Difficulty: "HARD"}); err != nil {
		t.Errorf("Expected success, got %v", err)
	}
}

func TestValidateSubmitAnswerRequest(t *testing.T) {
	v := New()

	ok := models.SubmitAnswerRequest{QuestionID: 7, SelectedIndex: 3}
	if err := v.Validate(&ok); err != nil {
		t.Fatalf("Expected valid request, got %v", err)
	}

	outOfRange := models.SubmitAnswerRequest{QuestionID: 7, SelectedIndex: 4}
	if err := v.Validate(&outOfRange); err == nil {
		t.Error("Expected selected_index out of range to fail")
	}

	missingQuestion := models.SubmitAnswerRequest{SelectedIndex: 0}
	if err := v.Validate(&missingQuestion); err == nil {
		t.Error("Expected missing question_id to fail")
	}
}
