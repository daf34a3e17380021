package attempt

import (
	"context"
	"errors"
	"net/http"

	"github.com/adaptive-testing/quizclient/internal/apierr"
	"github.com/adaptive-testing/quizclient/internal/client"
	"github.com/adaptive-testing/quizclient/internal/models"
)

// StartQuiz fires the start action for a quiz and decides where to go
// next. It returns a Redirect on every navigable outcome, including the
// 409 case where the server points at an attempt that already exists; a
// non-nil error means the caller should display err.Error() and stay put.
func StartQuiz(ctx context.Context, api client.API, quizID int64, courseID string) (*Redirect, error) {
	result, err := api.StartAttempt(ctx, quizID)
	if err != nil {
		// A 409 naming the existing attempt is not a failure: the at-most-
		// one-active-attempt rule fired, so go to that attempt instead of
		// creating a duplicate.
		if apiErr, ok := apierr.AsAPIError(err); ok &&
			apiErr.StatusCode == http.StatusConflict && apiErr.ExistingAttemptID != nil {
			return &Redirect{
				Route:     RouteQuestion,
				AttemptID: *apiErr.ExistingAttemptID,
				QuizID:    quizID,
				CourseID:  courseID,
			}, nil
		}
		return nil, startError(err)
	}

	if result.AttemptID == nil {
		return nil, errors.New(MsgNoAttemptID)
	}

	if result.Status == models.AttemptCompleted {
		// Zero-question or already-satisfied quiz: nothing to answer.
		return &Redirect{
			Route:     RouteResults,
			AttemptID: *result.AttemptID,
			QuizID:    quizID,
			CourseID:  courseID,
		}, nil
	}

	if result.Question == nil {
		return nil, errors.New(MsgNoFirstQuestion)
	}

	return &Redirect{
		Route:     RouteQuestion,
		AttemptID: *result.AttemptID,
		QuizID:    quizID,
		CourseID:  courseID,
		Seed: &Seed{
			Question: *result.Question,
			Counters: Counters{
				NumAnswered: result.NumAnswered,
				NumCorrect:  result.NumCorrect,
				Difficulty:  result.CurrentDifficulty,
			},
		},
	}, nil
}

func startError(err error) error {
	apiErr, ok := apierr.AsAPIError(err)
	if !ok {
		return errors.New(client.GenericFailureMessage)
	}

	switch apiErr.StatusCode {
	case http.StatusConflict:
		// The redirect case was already handled; the 409 body named no
		// attempt, so there is nowhere to send the student.
		return errors.New(MsgAttemptConflict)
	case http.StatusUnauthorized:
		return errors.New(MsgSessionExpired)
	case http.StatusNotFound:
		return errors.New(MsgQuizNotFound)
	default:
		return errors.New(apiErr.Message)
	}
}
