// Package results derives everything the results screen shows from a
// completed attempt and its quiz, with no further network calls.
package results

import (
	"fmt"
	"time"

	"github.com/adaptive-testing/quizclient/internal/models"
)

// DurationPlaceholder is shown while the attempt has no end timestamp.
const DurationPlaceholder = "—"

// LetterGrade maps a score percentage to its grade band. Bands are
// closed-open: 90.0 is an A, 89.9 a B+. Only an exact 100 earns the A+.
func LetterGrade(scorePercent float64) string {
	switch {
	case scorePercent == 100:
		return "A+"
	case scorePercent >= 90:
		return "A"
	case scorePercent >= 80:
		return "B+"
	case scorePercent >= 70:
		return "B"
	case scorePercent >= 60:
		return "C+"
	case scorePercent >= 50:
		return "C"
	default:
		return "F"
	}
}

// PerformanceLabel maps a score percentage to its qualitative label.
func PerformanceLabel(scorePercent float64) string {
	switch {
	case scorePercent >= 90:
		return "Excellent Work!"
	case scorePercent >= 80:
		return "Great Performance!"
	case scorePercent >= 70:
		return "Good Job!"
	case scorePercent >= 60:
		return "Nice Effort!"
	default:
		return "Keep Practicing!"
	}
}

// FormatDuration renders the attempt duration: seconds below a minute,
// whole minutes below an hour, hours plus leftover minutes above that.
// A missing end time renders the placeholder rather than a bogus value.
func FormatDuration(startedAt time.Time, endedAt *time.Time) string {
	if endedAt == nil {
		return DurationPlaceholder
	}

	seconds := int(endedAt.Sub(startedAt).Seconds())
	if seconds < 0 {
		return DurationPlaceholder
	}

	switch {
	case seconds < 60:
		return fmt.Sprintf("%d sec", seconds)
	case seconds < 3600:
		return fmt.Sprintf("%d min", seconds/60)
	default:
		hours := seconds / 3600
		minutes := (seconds % 3600) / 60
		if minutes == 0 {
			return fmt.Sprintf("%d hr", hours)
		}
		return fmt.Sprintf("%d hr %d min", hours, minutes)
	}
}

// TotalQuestions prefers the quiz's configured count, falling back to how
// many the attempt actually answered when the quiz carries none.
func TotalQuestions(quiz *models.Quiz, att *models.Attempt) int {
	if quiz != nil && quiz.NumQuestions > 0 {
		return quiz.NumQuestions
	}
	return att.NumAnswered
}

// Summary is the fully derived, render-ready view of a terminal attempt.
type Summary struct {
	QuizTitle      string
	ScorePercent   float64
	Grade          string
	Performance    string
	NumCorrect     int
	NumAnswered    int
	TotalQuestions int
	Duration       string
}

// Summarize builds the Summary for one attempt/quiz pair. It is a pure
// function: the same inputs always produce the same Summary.
func Summarize(att *models.Attempt, quiz *models.Quiz) Summary {
	score := 0.0
	if att.ScorePercent != nil {
		score = *att.ScorePercent
	} else if att.NumAnswered > 0 {
		score = float64(att.NumCorrect) / float64(att.NumAnswered) * 100
	}

	title := ""
	if quiz != nil {
		title = quiz.Title
	}

	return Summary{
		QuizTitle:      title,
		ScorePercent:   score,
		Grade:          LetterGrade(score),
		Performance:    PerformanceLabel(score),
		NumCorrect:     att.NumCorrect,
		NumAnswered:    att.NumAnswered,
		TotalQuestions: TotalQuestions(quiz, att),
		Duration:       FormatDuration(att.StartedAt, att.EndedAt),
	}
}
