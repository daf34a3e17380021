package models

import "time"

type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
)

type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "IN_PROGRESS"
	AttemptCompleted  AttemptStatus = "COMPLETED"
)

type SelectionMode string

const (
	SelectionBank  SelectionMode = "BANK"
	SelectionFixed SelectionMode = "FIXED"
)

type ChapterSummary struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// MaxChoices is the number of choices a question carries on the wire.
const MaxChoices = 4

// Quiz is read-only input to the attempt flow; the client never mutates it.
type Quiz struct {
	ID            int64          `json:"id"`
	Title         string         `json:"title" validate:"required"`
	Chapter       ChapterSummary `json:"chapter"`
	NumQuestions  int            `json:"num_questions" validate:"min=0"`
	Adaptive      bool           `json:"adaptive"`
	SelectionMode SelectionMode  `json:"selection_mode" validate:"omitempty,selection_mode"`
	IsPublished   bool           `json:"is_published"`
	CreatedAt     time.Time      `json:"created_at"`
}

// Question is served fresh per step by the backend; correctness is never
// exposed to the student-facing client.
type Question struct {
	ID         int64      `json:"id"`
	Prompt     string     `json:"prompt" validate:"required"`
	Choices    []string   `json:"choices" validate:"required,len=4,dive,required"`
	Difficulty Difficulty `json:"difficulty" validate:"required,difficulty"`
}

// Attempt is the central mutable entity. Counters only ever advance; once
// Status is COMPLETED the attempt is terminal and ScorePercent is present.
type Attempt struct {
	ID                int64         `json:"id"`
	QuizID            int64         `json:"quiz_id"`
	StudentID         int64         `json:"student_id"`
	Status            AttemptStatus `json:"status" validate:"required,attempt_status"`
	NumAnswered       int           `json:"num_answered" validate:"min=0"`
	NumCorrect        int           `json:"num_correct" validate:"min=0"`
	CurrentDifficulty Difficulty    `json:"current_difficulty"`
	StartedAt         time.Time     `json:"started_at"`
	EndedAt           *time.Time    `json:"ended_at"`
	ScorePercent      *float64      `json:"score_percent"`
}

func (a *Attempt) IsFinished() bool {
	return a.Status == AttemptCompleted
}
