// Package client implements the typed HTTP client for the adaptive quiz
// backend. All calls are authenticated with the configured bearer token
// and carry a generated X-Request-ID for correlation with server logs.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/adaptive-testing/quizclient/internal/apierr"
	"github.com/adaptive-testing/quizclient/internal/models"
	"github.com/adaptive-testing/quizclient/internal/utils"
)

const defaultTimeout = 30 * time.Second

// GenericFailureMessage is used when an error response body yields nothing
// better.
const GenericFailureMessage = "Something went wrong. Please try again."

// API is the surface the attempt flow depends on. The concrete Client
// satisfies it; tests substitute their own.
type API interface {
	StartAttempt(ctx context.Context, quizID int64) (*models.StartAttemptResult, error)
	GetAttempt(ctx context.Context, attemptID int64) (*models.AttemptSnapshot, error)
	SubmitAnswer(ctx context.Context, attemptID int64, req *models.SubmitAnswerRequest) (*models.AnswerResult, error)
	GetQuiz(ctx context.Context, quizID int64) (*models.Quiz, error)
}

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     utils.Logger
}

type Option func(*Client)

// WithHTTPClient overrides the underlying http.Client, mainly so tests can
// shorten timeouts or inject transports.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func New(baseURL, token string, logger utils.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) StartAttempt(ctx context.Context, quizID int64) (*models.StartAttemptResult, error) {
	var result models.StartAttemptResult
	path := fmt.Sprintf("/quizzes/%d/attempts/", quizID)
	if err := c.call(ctx, http.MethodPost, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) GetAttempt(ctx context.Context, attemptID int64) (*models.AttemptSnapshot, error) {
	var snapshot models.AttemptSnapshot
	path := fmt.Sprintf("/attempts/%d/", attemptID)
	if err := c.call(ctx, http.MethodGet, path, nil, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (c *Client) SubmitAnswer(ctx context.Context, attemptID int64, req *models.SubmitAnswerRequest) (*models.AnswerResult, error) {
	var result models.AnswerResult
	path := fmt.Sprintf("/attempts/%d/answer/", attemptID)
	if err := c.call(ctx, http.MethodPost, path, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) GetQuiz(ctx context.Context, quizID int64) (*models.Quiz, error) {
	var quiz models.Quiz
	path := fmt.Sprintf("/quizzes/%d/", quizID)
	if err := c.call(ctx, http.MethodGet, path, nil, &quiz); err != nil {
		return nil, err
	}
	return &quiz, nil
}

// call issues one request and decodes either the success body into out or
// the error body into an *apierr.APIError. Transport failures come back as
// wrapped errors, not APIErrors, since no response was received.
func (c *Client) call(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.LogError(err, "request failed", "method", method, "path", path)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	c.logger.LogRequest(method, path, resp.StatusCode, time.Since(start).String())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &apierr.APIError{
			StatusCode: resp.StatusCode,
			Message:    apierr.Normalize(data, GenericFailureMessage),
		}
		if resp.StatusCode == http.StatusConflict {
			apiErr.ExistingAttemptID = apierr.ExistingAttemptID(data)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
