package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/adaptive-testing/quizclient/internal/attempt"
	"github.com/adaptive-testing/quizclient/internal/client"
	"github.com/adaptive-testing/quizclient/internal/config"
	"github.com/adaptive-testing/quizclient/internal/history"
	"github.com/adaptive-testing/quizclient/internal/models"
	"github.com/adaptive-testing/quizclient/internal/quizserver"
	"github.com/adaptive-testing/quizclient/internal/render"
	"github.com/adaptive-testing/quizclient/internal/results"
	"github.com/adaptive-testing/quizclient/internal/utils"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger := utils.NewDefaultLogger()
	if cfg.IsDevelopment() {
		logger = utils.NewDevelopmentLogger()
	}

	switch os.Args[1] {
	case "take":
		err = runTake(cfg, logger, os.Args[2:])
	case "history":
		err = runHistory(cfg, os.Args[2:])
	case "demo":
		err = runDemo(cfg, logger)
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: quizcli <command>

commands:
  take -quiz <id>    start and run through a quiz attempt
  history [-limit n] list recorded attempt results
  demo               run an attempt against a built-in demo server`)
}

func runTake(cfg *config.Config, logger utils.Logger, args []string) error {
	fs := flag.NewFlagSet("take", flag.ExitOnError)
	quizID := fs.Int64("quiz", 0, "quiz id to attempt")
	course := fs.String("course", "", "course context to return to")
	fs.Parse(args)

	if *quizID <= 0 {
		return fmt.Errorf("take: -quiz is required")
	}

	api := client.New(cfg.APIBaseURL, cfg.APIToken, logger,
		client.WithHTTPClient(httpClient(cfg.HTTPTimeout)))
	return takeQuiz(cfg, logger, api, *quizID, *course)
}

func takeQuiz(cfg *config.Config, logger utils.Logger, api client.API, quizID int64, courseID string) error {
	ctx := context.Background()

	redirect, err := attempt.StartQuiz(ctx, api, quizID, courseID)
	if err != nil {
		return err
	}

	if redirect.Route == attempt.RouteQuestion {
		ctrl := attempt.NewController(api, quizID, redirect.AttemptID, attempt.Options{
			CourseID: courseID,
			Logger:   logger,
		})
		final, err := runQuestions(ctx, ctrl, api, quizID, redirect.Seed)
		if err != nil {
			return err
		}
		redirect = &final
	}

	return showResults(ctx, cfg, api, redirect.QuizID, redirect.AttemptID)
}

// runQuestions drives the controller until it redirects to results.
func runQuestions(ctx context.Context, ctrl *attempt.Controller, api client.API, quizID int64, seed *attempt.Seed) (attempt.Redirect, error) {
	reader := bufio.NewReader(os.Stdin)

	quiz, err := api.GetQuiz(ctx, quizID)
	if err != nil {
		quiz = nil // progress just omits the total
	}

	state := ctrl.Initialize(ctx, seed)
	for {
		switch state.Phase() {
		case attempt.PhaseRedirecting:
			redirect, _ := state.Redirect()
			return redirect, nil

		case attempt.PhaseErrored:
			fmt.Println(state.Message())
			if !state.Recoverable() {
				return attempt.Redirect{}, fmt.Errorf("attempt aborted")
			}
			fmt.Print("Press enter to retry, or q to quit: ")
			line, _ := reader.ReadString('\n')
			if strings.TrimSpace(line) == "q" {
				return attempt.Redirect{}, fmt.Errorf("attempt aborted")
			}
			state, _ = ctrl.ClearError()

		case attempt.PhaseActive:
			question, _ := state.Question()
			total := 0
			if quiz != nil {
				total = quiz.NumQuestions
			}
			fmt.Println(render.Progress(state.Counters(), total))
			selected := render.NoSelection
			if sel, ok := state.Selection(); ok {
				selected = sel
			}
			fmt.Print(render.Question(question, selected, false))

			if !state.SubmitEnabled() {
				index, quit := readChoice(reader, len(question.Choices))
				if quit {
					return attempt.Redirect{}, fmt.Errorf("attempt aborted")
				}
				if next, err := ctrl.SelectChoice(index); err == nil {
					state = next
				}
				continue
			}

			next, err := ctrl.Submit(ctx)
			if err != nil {
				return attempt.Redirect{}, err
			}
			state = next

		default:
			return attempt.Redirect{}, fmt.Errorf("unexpected state %s", state.Phase())
		}
	}
}

func readChoice(reader *bufio.Reader, numChoices int) (index int, quit bool) {
	for {
		fmt.Print("Answer [A-D]: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return 0, true
		}
		answer := strings.ToUpper(strings.TrimSpace(line))
		if answer == "Q" {
			return 0, true
		}
		if len(answer) == 1 && answer[0] >= 'A' && int(answer[0]-'A') < numChoices {
			return int(answer[0] - 'A'), false
		}
		fmt.Println("Please answer with a choice letter.")
	}
}

func showResults(ctx context.Context, cfg *config.Config, api client.API, quizID, attemptID int64) error {
	snapshot, err := api.GetAttempt(ctx, attemptID)
	if err != nil {
		return err
	}
	quiz, err := api.GetQuiz(ctx, quizID)
	if err != nil {
		quiz = nil
	}

	summary := results.Summarize(snapshot.Attempt(), quiz)

	fmt.Println()
	fmt.Println(summary.Performance)
	if summary.QuizTitle != "" {
		fmt.Println("Quiz:", summary.QuizTitle)
	}
	fmt.Printf("Score: %.1f%% (%s)\n", summary.ScorePercent, summary.Grade)
	fmt.Printf("Correct: %d of %d\n", summary.NumCorrect, summary.TotalQuestions)
	fmt.Println("Time:", summary.Duration)

	return recordResult(cfg, snapshot, quiz, summary)
}

func recordResult(cfg *config.Config, snapshot *models.AttemptSnapshot, quiz *models.Quiz, summary results.Summary) error {
	store, err := history.Open(cfg.HistoryDB)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer store.Close()

	completedAt := time.Now()
	if snapshot.EndedAt != nil {
		completedAt = *snapshot.EndedAt
	}
	quizID := snapshot.QuizID
	if quiz != nil {
		quizID = quiz.ID
	}

	return store.Save(&history.Entry{
		AttemptID:    snapshot.ID,
		QuizID:       quizID,
		QuizTitle:    summary.QuizTitle,
		ScorePercent: summary.ScorePercent,
		Grade:        summary.Grade,
		NumCorrect:   summary.NumCorrect,
		NumAnswered:  summary.NumAnswered,
		Duration:     summary.Duration,
		CompletedAt:  completedAt,
	})
}

func runHistory(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	limit := fs.Int("limit", 20, "max entries to show")
	fs.Parse(args)

	store, err := history.Open(cfg.HistoryDB)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer store.Close()

	entries, err := store.List(*limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No recorded attempts yet.")
		return nil
	}

	for _, e := range entries {
		fmt.Printf("%s  %-30s  %5.1f%%  %-2s  %s\n",
			e.CompletedAt.Local().Format("2006-01-02 15:04"),
			e.QuizTitle, e.ScorePercent, e.Grade, e.Duration)
	}
	return nil
}

// runDemo boots the reference server on a loopback port with a small
// seeded bank and runs one attempt against it.
func runDemo(cfg *config.Config, logger utils.Logger) error {
	const token = "demo-token"

	server := quizserver.New(logger)
	server.RegisterStudent(token, "demo-student")
	server.AddQuiz(demoQuiz(), demoBank())

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return err
	}
	go server.Serve(listener)

	api := client.New("http://"+listener.Addr().String(), token, logger,
		client.WithHTTPClient(httpClient(cfg.HTTPTimeout)))

	fmt.Println("Demo quiz: answers are graded against a built-in key.")
	return takeQuiz(cfg, logger, api, 1, "")
}

func demoQuiz() models.Quiz {
	return models.Quiz{
		ID:            1,
		Title:         "Go Fundamentals",
		Chapter:       models.ChapterSummary{ID: 1, Title: "Basics"},
		NumQuestions:  3,
		Adaptive:      true,
		SelectionMode: models.SelectionBank,
		IsPublished:   true,
		CreatedAt:     time.Now(),
	}
}

func demoBank() []quizserver.SeedQuestion {
	return []quizserver.SeedQuestion{
		{
			Question: models.Question{
				ID:         1,
				Prompt:     "Which keyword declares a variable with inferred type?",
				Choices:    []string{"var", ":=", "let", "def"},
				Difficulty: models.DifficultyEasy,
			},
			CorrectIndex: 1,
		},
		{
			Question: models.Question{
				ID:         2,
				Prompt:     "What does a nil map lookup return?",
				Choices:    []string{"panic", "the zero value", "an error", "nil always"},
				Difficulty: models.DifficultyMedium,
			},
			CorrectIndex: 1,
		},
		{
			Question: models.Question{
				ID:         3,
				Prompt:     "Which construct multiplexes over multiple channels?",
				Choices:    []string{"switch", "for range", "select", "go"},
				Difficulty: models.DifficultyMedium,
			},
			CorrectIndex: 2,
		},
		{
			Question: models.Question{
				ID:         4,
				Prompt:     "When does a deferred call run relative to a panic in the same goroutine?",
				Choices:    []string{"never", "before unwinding passes its frame", "after the process exits", "only with recover"},
				Difficulty: models.DifficultyHard,
			},
			CorrectIndex: 1,
		},
	}
}

func httpClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}
