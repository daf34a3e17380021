// Package attempt owns the client-side lifecycle of one quiz attempt:
// starting, answering, conflict recovery and completion routing.
//
// The lifecycle is modeled as one tagged state value instead of a pile of
// independent loading/submitting/error flags, so combinations like
// "submitting and errored at once" cannot be represented at all.
package attempt

import "github.com/adaptive-testing/quizclient/internal/models"

type Phase string

const (
	PhaseLoading     Phase = "LOADING"
	PhaseActive      Phase = "ACTIVE"
	PhaseSubmitting  Phase = "SUBMITTING"
	PhaseErrored     Phase = "ERRORED"
	PhaseRedirecting Phase = "REDIRECTING"
)

type Route string

const (
	RouteQuestion Route = "question"
	RouteResults  Route = "results"
)

// Redirect names the screen the caller should navigate to next. Seed is
// present only when fresh start data can be handed over in-band, sparing
// the question screen a fetch the backend cannot serve anyway.
type Redirect struct {
	Route     Route
	AttemptID int64
	QuizID    int64
	CourseID  string
	Seed      *Seed
}

// Seed is the hydration hint of a freshly started attempt: its first
// question plus initial counters.
type Seed struct {
	Question models.Question
	Counters Counters
}

// Counters mirrors the server-owned attempt progress. NumAnswered never
// decreases across the life of one attempt.
type Counters struct {
	NumAnswered int
	NumCorrect  int
	Difficulty  models.Difficulty
}

const noSelection = -1

// State is an immutable snapshot of the controller. Only the accessors
// matching the current phase return data; everything else reports absent.
type State struct {
	phase       Phase
	question    *models.Question
	selection   int
	counters    Counters
	message     string
	recoverable bool
	redirect    *Redirect
}

func loadingState() State {
	return State{phase: PhaseLoading, selection: noSelection}
}

func activeState(q models.Question, selection int, counters Counters) State {
	return State{phase: PhaseActive, question: &q, selection: selection, counters: counters}
}

func submittingState(prev State) State {
	next := prev
	next.phase = PhaseSubmitting
	return next
}

// erroredState keeps the question, selection and counters of the state it
// replaces so a failed submission does not throw the student's progress
// view away. recoverable marks whether ClearError may return to ACTIVE.
func erroredState(prev State, message string, recoverable bool) State {
	next := prev
	next.phase = PhaseErrored
	next.message = message
	next.recoverable = recoverable && prev.question != nil
	return next
}

func terminalErrorState(message string) State {
	return State{phase: PhaseErrored, selection: noSelection, message: message}
}

func redirectingState(r Redirect) State {
	return State{phase: PhaseRedirecting, selection: noSelection, redirect: &r}
}

func (s State) Phase() Phase { return s.phase }

func (s State) Question() (models.Question, bool) {
	if s.question == nil {
		return models.Question{}, false
	}
	return *s.question, true
}

func (s State) Selection() (int, bool) {
	if s.selection == noSelection {
		return 0, false
	}
	return s.selection, true
}

func (s State) Counters() Counters { return s.counters }

// Message is the user-facing error text; empty outside PhaseErrored.
func (s State) Message() string { return s.message }

// Recoverable reports whether ClearError can bring the flow back to
// ACTIVE with its question and selection intact.
func (s State) Recoverable() bool { return s.recoverable }

func (s State) Redirect() (Redirect, bool) {
	if s.redirect == nil {
		return Redirect{}, false
	}
	return *s.redirect, true
}

// SubmitEnabled mirrors the submit control: enabled exactly when a choice
// is selected and no request is in flight.
func (s State) SubmitEnabled() bool {
	return s.phase == PhaseActive && s.selection != noSelection
}
