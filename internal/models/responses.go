package models

import (
	"encoding/json"
	"time"
)

// The backend is not consistent about field names across deployments: the
// start endpoint has been observed returning the new attempt id as either
// "attempt_id" or "id", and the first question under "question",
// "current_question" or "next_question". The DTOs below absorb those
// aliases at decode time so callers see one canonical shape.

// StartAttemptResult is the decoded body of POST /quizzes/{id}/attempts/.
// AttemptID stays nil when the server omitted it; callers must treat that
// as a contract violation rather than a zero id.
type StartAttemptResult struct {
	AttemptID         *int64
	Status            AttemptStatus
	NumAnswered       int
	NumCorrect        int
	CurrentDifficulty Difficulty
	Question          *Question
}

func (r *StartAttemptResult) UnmarshalJSON(data []byte) error {
	var raw struct {
		AttemptID         *int64        `json:"attempt_id"`
		ID                *int64        `json:"id"`
		Status            AttemptStatus `json:"status"`
		NumAnswered       *int          `json:"num_answered"`
		NumCorrect        *int          `json:"num_correct"`
		CurrentDifficulty Difficulty    `json:"current_difficulty"`
		Question          *Question     `json:"question"`
		CurrentQuestion   *Question     `json:"current_question"`
		NextQuestion      *Question     `json:"next_question"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	r.AttemptID = raw.AttemptID
	if r.AttemptID == nil {
		r.AttemptID = raw.ID
	}
	r.Status = raw.Status
	if raw.NumAnswered != nil {
		r.NumAnswered = *raw.NumAnswered
	}
	if raw.NumCorrect != nil {
		r.NumCorrect = *raw.NumCorrect
	}
	r.CurrentDifficulty = raw.CurrentDifficulty
	if r.CurrentDifficulty == "" {
		r.CurrentDifficulty = DifficultyMedium
	}

	r.Question = raw.Question
	if r.Question == nil {
		r.Question = raw.CurrentQuestion
	}
	if r.Question == nil {
		r.Question = raw.NextQuestion
	}
	return nil
}

// AnswerResult is the decoded body of POST /attempts/{id}/answer/.
// NextQuestion is nil once the attempt completes; a nil NextQuestion with
// an IN_PROGRESS status is a contract violation the controller reports.
type AnswerResult struct {
	AttemptID         int64         `json:"attempt_id"`
	Status            AttemptStatus `json:"status"`
	NumAnswered       int           `json:"num_answered"`
	NumCorrect        int           `json:"num_correct"`
	CurrentDifficulty Difficulty    `json:"current_difficulty"`
	NextQuestion      *Question     `json:"next_question"`
	IsCorrect         *bool         `json:"is_correct"`
	ScorePercent      *float64      `json:"score_percent"`
	EndedAt           *time.Time    `json:"ended_at"`
}

// AttemptSnapshot is the decoded body of GET /attempts/{id}/. The current
// contract never populates CurrentQuestion for an in-progress attempt,
// which is why the client refuses to resume from a snapshot alone.
type AttemptSnapshot struct {
	ID                int64         `json:"id"`
	QuizID            int64         `json:"quiz_id"`
	Status            AttemptStatus `json:"status"`
	NumAnswered       int           `json:"num_answered"`
	NumCorrect        int           `json:"num_correct"`
	CurrentDifficulty Difficulty    `json:"current_difficulty"`
	CurrentQuestion   *Question     `json:"current_question"`
	StartedAt         time.Time     `json:"started_at"`
	EndedAt           *time.Time    `json:"ended_at"`
	ScorePercent      *float64      `json:"score_percent"`
}

// Attempt converts a snapshot to the domain entity consumed by the
// results presenter.
func (s *AttemptSnapshot) Attempt() *Attempt {
	return &Attempt{
		ID:                s.ID,
		QuizID:            s.QuizID,
		Status:            s.Status,
		NumAnswered:       s.NumAnswered,
		NumCorrect:        s.NumCorrect,
		CurrentDifficulty: s.CurrentDifficulty,
		StartedAt:         s.StartedAt,
		EndedAt:           s.EndedAt,
		ScorePercent:      s.ScorePercent,
	}
}

// SubmitAnswerRequest is the body of POST /attempts/{id}/answer/.
type SubmitAnswerRequest struct {
	QuestionID    int64 `json:"question_id" validate:"required"`
	SelectedIndex int   `json:"selected_index" validate:"min=0,max=3"`
}
