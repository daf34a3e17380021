// Package quizserver is an in-process implementation of the quiz backend
// contract. The integration tests run the attempt flow against it, and
// the CLI's demo mode serves a seeded question bank from it. It is not a
// production server: state lives in memory and one bearer token equals
// one student.
package quizserver

import (
	"math/rand"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adaptive-testing/quizclient/internal/models"
	"github.com/adaptive-testing/quizclient/internal/utils"
	"github.com/adaptive-testing/quizclient/internal/validator"
)

// SeedQuestion pairs a student-visible question with the answer key the
// server grades against.
type SeedQuestion struct {
	Question     models.Question
	CorrectIndex int
}

type attemptRecord struct {
	id           int64
	quizID       int64
	student      string
	status       models.AttemptStatus
	numAnswered  int
	numCorrect   int
	difficulty   models.Difficulty
	startedAt    time.Time
	endedAt      *time.Time
	scorePercent *float64
	current      *SeedQuestion
	answered     map[int64]bool
}

type Server struct {
	logger    utils.Logger
	validator *validator.Validator
	rng       *rand.Rand
	tokens    map[string]string // bearer token -> student name

	mu            sync.Mutex
	quizzes       map[int64]*models.Quiz
	banks         map[int64][]*SeedQuestion
	attempts      map[int64]*attemptRecord
	nextAttemptID int64
}

type Option func(*Server)

// WithRand fixes the selection randomness so tests are deterministic.
func WithRand(rng *rand.Rand) Option {
	return func(s *Server) {
		s.rng = rng
	}
}

func New(logger utils.Logger, opts ...Option) *Server {
	s := &Server{
		logger:        logger,
		validator:     validator.New(),
		rng:           rand.New(rand.NewSource(time.Now().UnixNano())),
		tokens:        make(map[string]string),
		quizzes:       make(map[int64]*models.Quiz),
		banks:         make(map[int64][]*SeedQuestion),
		attempts:      make(map[int64]*attemptRecord),
		nextAttemptID: 1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterStudent accepts a bearer token for the given student name.
func (s *Server) RegisterStudent(token, name string) {
	s.tokens[token] = name
}

// AddQuiz registers a quiz and its question bank.
func (s *Server) AddQuiz(quiz models.Quiz, bank []SeedQuestion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quizzes[quiz.ID] = &quiz
	questions := make([]*SeedQuestion, len(bank))
	for i := range bank {
		q := bank[i]
		questions[i] = &q
	}
	s.banks[quiz.ID] = questions
}

// Router builds the gin engine with the four contract endpoints.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(s.logger))
	router.Use(s.authMiddleware())

	router.POST("/quizzes/:id/attempts/", s.startAttempt)
	router.GET("/quizzes/:id/", s.getQuiz)
	router.POST("/attempts/:id/answer/", s.submitAnswer)
	router.GET("/attempts/:id/", s.getAttempt)

	return router
}

// Serve runs the server on the given listener, for the CLI demo mode.
func (s *Server) Serve(l net.Listener) error {
	srv := &http.Server{Handler: s.Router()}
	return srv.Serve(l)
}

func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		const prefix = "Bearer "
		header := c.GetHeader("Authorization")
		if len(header) <= len(prefix) || header[:len(prefix)] != prefix {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"detail": "Authentication credentials were not provided.",
			})
			return
		}
		student, ok := s.tokens[header[len(prefix):]]
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"detail": "Invalid token.",
			})
			return
		}
		c.Set("student", student)
		c.Next()
	}
}

func (s *Server) startAttempt(c *gin.Context) {
	quizID, ok := parseIDParam(c)
	if !ok {
		return
	}
	student := c.GetString("student")

	s.mu.Lock()
	defer s.mu.Unlock()

	quiz, ok := s.quizzes[quizID]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Quiz not found."})
		return
	}

	// At most one active attempt per (quiz, student): the conflict body
	// names the existing attempt so the client can route to it.
	for _, att := range s.attempts {
		if att.quizID == quizID && att.student == student && att.status == models.AttemptInProgress {
			c.JSON(http.StatusConflict, gin.H{
				"detail":     "You already have an in-progress attempt for this quiz.",
				"attempt_id": att.id,
			})
			return
		}
	}

	att := &attemptRecord{
		id:         s.nextAttemptID,
		quizID:     quizID,
		student:    student,
		status:     models.AttemptInProgress,
		difficulty: models.DifficultyMedium,
		startedAt:  time.Now().UTC(),
		answered:   make(map[int64]bool),
	}
	s.nextAttemptID++
	s.attempts[att.id] = att

	first := (*SeedQuestion)(nil)
	if quiz.NumQuestions > 0 {
		first = selectNextQuestion(s.rng, s.banks[quizID], att.difficulty, att.answered)
	}
	if first == nil {
		// Nothing to ask: the attempt is already satisfied.
		s.complete(att)
		c.JSON(http.StatusCreated, gin.H{
			"attempt_id":         att.id,
			"status":             att.status,
			"num_answered":       att.numAnswered,
			"num_correct":        att.numCorrect,
			"current_difficulty": att.difficulty,
		})
		return
	}

	att.current = first
	c.JSON(http.StatusCreated, gin.H{
		"attempt_id":         att.id,
		"status":             att.status,
		"num_answered":       att.numAnswered,
		"num_correct":        att.numCorrect,
		"current_difficulty": att.difficulty,
		"question":           first.Question,
	})
}

func (s *Server) getQuiz(c *gin.Context) {
	quizID, ok := parseIDParam(c)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	quiz, found := s.quizzes[quizID]
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Quiz not found."})
		return
	}
	c.JSON(http.StatusOK, quiz)
}

func (s *Server) getAttempt(c *gin.Context) {
	attemptID, ok := parseIDParam(c)
	if !ok {
		return
	}
	student := c.GetString("student")

	s.mu.Lock()
	defer s.mu.Unlock()

	att, found := s.attempts[attemptID]
	if !found || att.student != student {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Attempt not found."})
		return
	}

	// The snapshot deliberately omits current_question even while the
	// attempt is in progress; resume is not part of the contract.
	c.JSON(http.StatusOK, gin.H{
		"id":                 att.id,
		"quiz_id":            att.quizID,
		"status":             att.status,
		"num_answered":       att.numAnswered,
		"num_correct":        att.numCorrect,
		"current_difficulty": att.difficulty,
		"started_at":         att.startedAt,
		"ended_at":           att.endedAt,
		"score_percent":      att.scorePercent,
	})
}

func (s *Server) submitAnswer(c *gin.Context) {
	attemptID, ok := parseIDParam(c)
	if !ok {
		return
	}
	student := c.GetString("student")

	var req models.SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request body."})
		return
	}
	if err := s.validator.Validate(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	att, found := s.attempts[attemptID]
	if !found || att.student != student {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Attempt not found."})
		return
	}
	if att.status != models.AttemptInProgress {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Attempt already completed"})
		return
	}
	if att.current == nil || att.current.Question.ID != req.QuestionID {
		c.JSON(http.StatusConflict, gin.H{"detail": "question is not current"})
		return
	}
	if att.answered[req.QuestionID] {
		c.JSON(http.StatusConflict, gin.H{"detail": "question already answered"})
		return
	}

	isCorrect := req.SelectedIndex == att.current.CorrectIndex
	att.answered[req.QuestionID] = true
	att.numAnswered++
	if isCorrect {
		att.numCorrect++
	}
	att.difficulty = nextDifficultyAfter(att.difficulty, isCorrect)

	quiz := s.quizzes[att.quizID]

	var next *SeedQuestion
	if att.numAnswered < quiz.NumQuestions {
		next = selectNextQuestion(s.rng, s.banks[att.quizID], att.difficulty, att.answered)
	}

	if next == nil {
		s.complete(att)
		c.JSON(http.StatusOK, gin.H{
			"attempt_id":         att.id,
			"status":             att.status,
			"num_answered":       att.numAnswered,
			"num_correct":        att.numCorrect,
			"current_difficulty": att.difficulty,
			"next_question":      nil,
			"is_correct":         isCorrect,
			"score_percent":      att.scorePercent,
			"ended_at":           att.endedAt,
		})
		return
	}

	att.current = next
	c.JSON(http.StatusOK, gin.H{
		"attempt_id":         att.id,
		"status":             att.status,
		"num_answered":       att.numAnswered,
		"num_correct":        att.numCorrect,
		"current_difficulty": att.difficulty,
		"next_question":      next.Question,
		"is_correct":         isCorrect,
	})
}

// complete is called with s.mu held.
func (s *Server) complete(att *attemptRecord) {
	att.status = models.AttemptCompleted
	now := time.Now().UTC()
	att.endedAt = &now
	att.current = nil

	score := 0.0
	if att.numAnswered > 0 {
		score = float64(att.numCorrect) / float64(att.numAnswered) * 100
	}
	att.scorePercent = &score
}

func parseIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid id"})
		return 0, false
	}
	return id, true
}
