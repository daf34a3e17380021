package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adaptive-testing/quizclient/internal/apierr"
	"github.com/adaptive-testing/quizclient/internal/models"
	"github.com/adaptive-testing/quizclient/internal/utils"
)

func TestClientSendsAuthAndRequestID(t *testing.T) {
	var gotAuth, gotRequestID, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		gotPath = r.URL.Path
		json.NewEncoder(w).Encode(map[string]any{"id": 5, "title": "Basics"})
	}))
	defer server.Close()

	c := New(server.URL, "secret-token", utils.Discard())
	quiz, err := c.GetQuiz(context.Background(), 5)
	require.NoError(t, err)

	assert.Equal(t, "Bearer secret-token", gotAuth)
	assert.NotEmpty(t, gotRequestID, "every call carries a request id")
	assert.Equal(t, "/quizzes/5/", gotPath)
	assert.Equal(t, "Basics", quiz.Title)
}

func TestStartAttemptDecodesAliases(t *testing.T) {
	bodies := []string{
		// attempt_id + question
		`{"attempt_id": 42, "status": "IN_PROGRESS", "num_answered": 0,
		  "question": {"id": 1, "prompt": "p", "choices": ["a","b","c","d"], "difficulty": "EASY"}}`,
		// id + current_question
		`{"id": 42, "status": "IN_PROGRESS",
		  "current_question": {"id": 1, "prompt": "p", "choices": ["a","b","c","d"], "difficulty": "EASY"}}`,
		// attempt_id + next_question
		`{"attempt_id": 42, "status": "IN_PROGRESS",
		  "next_question": {"id": 1, "prompt": "p", "choices": ["a","b","c","d"], "difficulty": "EASY"}}`,
	}

	for _, body := range bodies {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(body))
		}))

		c := New(server.URL, "t", utils.Discard())
		result, err := c.StartAttempt(context.Background(), 5)
		server.Close()

		require.NoError(t, err)
		require.NotNil(t, result.AttemptID)
		assert.Equal(t, int64(42), *result.AttemptID)
		require.NotNil(t, result.Question)
		assert.Equal(t, int64(1), result.Question.ID)
	}
}

func TestStartAttemptMissingIDStaysNil(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"status": "IN_PROGRESS"}`))
	}))
	defer server.Close()

	c := New(server.URL, "t", utils.Discard())
	result, err := c.StartAttempt(context.Background(), 5)
	require.NoError(t, err)
	assert.Nil(t, result.AttemptID)
}

func TestConflictCarriesExistingAttemptID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"detail": "You already have an in-progress attempt for this quiz.", "attempt_id": 99}`))
	}))
	defer server.Close()

	c := New(server.URL, "t", utils.Discard())
	_, err := c.StartAttempt(context.Background(), 5)
	require.Error(t, err)

	apiErr, ok := apierr.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	require.NotNil(t, apiErr.ExistingAttemptID)
	assert.Equal(t, int64(99), *apiErr.ExistingAttemptID)
	assert.Contains(t, apiErr.Message, "in-progress attempt")
}

func TestErrorBodyNormalization(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"detail": "Attempt already completed"}`))
	}))
	defer server.Close()

	c := New(server.URL, "t", utils.Discard())
	_, err := c.SubmitAnswer(context.Background(), 42, &models.SubmitAnswerRequest{QuestionID: 1})
	require.Error(t, err)

	apiErr, ok := apierr.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, "Attempt already completed", apiErr.Message)
}

func TestSubmitAnswerPostsBody(t *testing.T) {
	var got models.SubmitAnswerRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		json.NewEncoder(w).Encode(map[string]any{
			"attempt_id": 42, "status": "COMPLETED", "num_answered": 1, "num_correct": 1,
		})
	}))
	defer server.Close()

	c := New(server.URL, "t", utils.Discard())
	result, err := c.SubmitAnswer(context.Background(), 42, &models.SubmitAnswerRequest{
		QuestionID:    7,
		SelectedIndex: 2,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(7), got.QuestionID)
	assert.Equal(t, 2, got.SelectedIndex)
	assert.Equal(t, models.AttemptCompleted, result.Status)
	assert.Nil(t, result.NextQuestion)
}

func TestTransportFailureIsNotAPIError(t *testing.T) {
	c := New("http://127.0.0.1:1", "t", utils.Discard())
	_, err := c.GetQuiz(context.Background(), 5)
	require.Error(t, err)

	_, ok := apierr.AsAPIError(err)
	assert.False(t, ok, "transport failures carry no status code")
}
