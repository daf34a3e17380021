package attempt

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/adaptive-testing/quizclient/internal/apierr"
	"github.com/adaptive-testing/quizclient/internal/client"
	"github.com/adaptive-testing/quizclient/internal/models"
	"github.com/adaptive-testing/quizclient/internal/utils"
)

// User-facing messages for the fixed error branches of the flow.
const (
	MsgSessionExpired  = "Your session has expired. Please log in again."
	MsgQuizNotFound    = "Quiz not found. It may have been deleted."
	MsgNoAttemptID     = "Invalid response from server - no attempt ID returned"
	MsgNoFirstQuestion = "Invalid response from server - no question returned"
	MsgNoNextQuestion  = "No next question received"
	MsgCannotResume    = "This attempt cannot be resumed. Please start a new attempt."
	MsgAttemptConflict = "You already have an in-progress attempt for this quiz. Please finish it before starting a new one."
)

var (
	ErrNotActive         = errors.New("attempt: no active question")
	ErrChoiceOutOfRange  = errors.New("attempt: choice index out of range")
	ErrSubmitUnavailable = errors.New("attempt: submit is not available")
	ErrNotRecoverable    = errors.New("attempt: error state is not recoverable")
)

// Controller drives one attempt through its lifecycle. All methods are
// safe for concurrent use; at most one network request is in flight at a
// time, which is what makes double submission impossible and response
// ordering trivial.
type Controller struct {
	api       client.API
	logger    utils.Logger
	quizID    int64
	attemptID int64
	courseID  string

	mu       sync.Mutex
	inFlight bool
	state    State
}

type Options struct {
	// CourseID is the origin context carried into the results redirect so
	// the caller can route back to where the quiz was launched from.
	CourseID string
	Logger   utils.Logger
}

func NewController(api client.API, quizID, attemptID int64, opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = utils.NewDefaultLogger()
	}
	return &Controller{
		api:       api,
		logger:    logger.With("quiz_id", quizID, "attempt_id", attemptID),
		quizID:    quizID,
		attemptID: attemptID,
		courseID:  opts.CourseID,
		state:     loadingState(),
	}
}

// State returns the current snapshot.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Initialize enters the flow. With a seed (handed over in-band from the
// start action) it goes straight to ACTIVE without touching the network.
// Without one it fetches the attempt snapshot: a completed attempt routes
// to results, while an in-progress one fails closed, since the contract
// offers no current question to resume with and guessing one would be
// worse than refusing.
func (c *Controller) Initialize(ctx context.Context, seed *Seed) State {
	if seed != nil {
		c.logger.Debug("initializing from seed", "num_answered", seed.Counters.NumAnswered)
		return c.setState(activeState(seed.Question, noSelection, seed.Counters))
	}

	if !c.acquire() {
		return c.State()
	}

	snapshot, err := c.api.GetAttempt(ctx, c.attemptID)

	c.mu.Lock()
	defer c.release()

	if err != nil {
		c.logger.LogError(err, "attempt fetch failed")
		c.state = terminalErrorState(errorMessage(err))
		return c.state
	}

	if snapshot.Status == models.AttemptCompleted {
		c.state = redirectingState(Redirect{
			Route:     RouteResults,
			AttemptID: c.attemptID,
			QuizID:    c.quizID,
			CourseID:  c.courseID,
		})
		return c.state
	}

	c.logger.Warn("refusing to resume in-progress attempt without a current question")
	c.state = terminalErrorState(MsgCannotResume)
	return c.state
}

// SelectChoice records a zero-based choice index. Valid only in ACTIVE;
// may be called any number of times before submitting.
func (c *Controller) SelectChoice(index int) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.phase != PhaseActive || c.state.question == nil {
		return c.state, ErrNotActive
	}
	if index < 0 || index >= len(c.state.question.Choices) {
		return c.state, ErrChoiceOutOfRange
	}

	c.state = activeState(*c.state.question, index, c.state.counters)
	return c.state, nil
}

// Submit posts the current selection. Valid only in ACTIVE with a
// selection present and nothing already in flight; otherwise the current
// state is returned with ErrSubmitUnavailable, mirroring a disabled
// submit control.
func (c *Controller) Submit(ctx context.Context) (State, error) {
	c.mu.Lock()
	if c.inFlight || !c.state.SubmitEnabled() {
		defer c.mu.Unlock()
		return c.state, ErrSubmitUnavailable
	}

	question := *c.state.question
	selection := c.state.selection
	c.inFlight = true
	c.state = submittingState(c.state)
	c.mu.Unlock()

	result, err := c.api.SubmitAnswer(ctx, c.attemptID, &models.SubmitAnswerRequest{
		QuestionID:    question.ID,
		SelectedIndex: selection,
	})

	c.mu.Lock()
	defer c.release()

	if err != nil {
		// Keep the question and selection so the student can retry
		// without restarting the attempt.
		c.logger.LogError(err, "answer submission failed", "question_id", question.ID)
		c.state = erroredState(c.state, errorMessage(err), true)
		return c.state, nil
	}

	counters := Counters{
		NumAnswered: result.NumAnswered,
		NumCorrect:  result.NumCorrect,
		Difficulty:  result.CurrentDifficulty,
	}

	switch {
	case result.Status == models.AttemptCompleted:
		c.state = redirectingState(Redirect{
			Route:     RouteResults,
			AttemptID: c.attemptID,
			QuizID:    c.quizID,
			CourseID:  c.courseID,
		})
	case result.NextQuestion != nil:
		c.state = activeState(*result.NextQuestion, noSelection, counters)
	default:
		// 2xx, still in progress, but no question to show: a contract
		// violation. The previous counters stay on display.
		c.logger.Error("answer response missing next question", "question_id", question.ID)
		c.state = erroredState(c.state, MsgNoNextQuestion, false)
	}
	return c.state, nil
}

// ClearError returns a recoverable error state (a failed submission) to
// ACTIVE with the preserved question and selection.
func (c *Controller) ClearError() (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.phase != PhaseErrored || !c.state.recoverable {
		return c.state, ErrNotRecoverable
	}
	c.state = activeState(*c.state.question, c.state.selection, c.state.counters)
	return c.state, nil
}

func (c *Controller) setState(s State) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = s
	return s
}

// acquire claims the single in-flight slot; callers that lose it leave
// the state untouched.
func (c *Controller) acquire() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inFlight {
		return false
	}
	c.inFlight = true
	return true
}

// release is called with c.mu held.
func (c *Controller) release() {
	c.inFlight = false
	c.mu.Unlock()
}

// errorMessage maps a client error to display text. Session expiry gets a
// fixed message; other API failures surface their normalized body text;
// transport failures, where no response exists, fall back to the generic
// message.
func errorMessage(err error) string {
	apiErr, ok := apierr.AsAPIError(err)
	if !ok {
		return client.GenericFailureMessage
	}
	if apiErr.StatusCode == http.StatusUnauthorized {
		return MsgSessionExpired
	}
	return apiErr.Message
}
