// Package history keeps a local, append-only record of completed quiz
// attempts so past results survive across sessions. It never stores
// in-progress attempt state; the server stays the single source of truth
// for anything still running.
package history

import (
	"database/sql"
	"errors"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS attempt_results (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    attempt_id INTEGER NOT NULL,
    quiz_id INTEGER NOT NULL,
    quiz_title TEXT NOT NULL,
    score_percent REAL NOT NULL,
    grade TEXT NOT NULL,
    num_correct INTEGER NOT NULL,
    num_answered INTEGER NOT NULL,
    duration TEXT NOT NULL,
    completed_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_attempt_results_quiz ON attempt_results(quiz_id);
`

var ErrNotFound = errors.New("history: not found")

// Entry is one recorded terminal attempt.
type Entry struct {
	ID           int64
	AttemptID    int64
	QuizID       int64
	QuizTitle    string
	ScorePercent float64
	Grade        string
	NumCorrect   int
	NumAnswered  int
	Duration     string
	CompletedAt  time.Time
}

type Store struct {
	db *sql.DB
}

func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Save(e *Entry) error {
	result, err := s.db.Exec(
		`INSERT INTO attempt_results
		 (attempt_id, quiz_id, quiz_title, score_percent, grade, num_correct, num_answered, duration, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.AttemptID, e.QuizID, e.QuizTitle, e.ScorePercent, e.Grade,
		e.NumCorrect, e.NumAnswered, e.Duration, e.CompletedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return err
	}
	e.ID, err = result.LastInsertId()
	return err
}

// List returns up to limit entries, newest first. limit <= 0 means all.
func (s *Store) List(limit int) ([]*Entry, error) {
	query := `SELECT id, attempt_id, quiz_id, quiz_title, score_percent, grade,
	          num_correct, num_answered, duration, completed_at
	          FROM attempt_results ORDER BY completed_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Last returns the most recently recorded entry, or ErrNotFound when the
// store is empty.
func (s *Store) Last() (*Entry, error) {
	entries, err := s.List(1)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrNotFound
	}
	return entries[0], nil
}

// ByQuiz returns all recorded results for one quiz, newest first.
func (s *Store) ByQuiz(quizID int64) ([]*Entry, error) {
	rows, err := s.db.Query(
		`SELECT id, attempt_id, quiz_id, quiz_title, score_percent, grade,
		 num_correct, num_answered, duration, completed_at
		 FROM attempt_results WHERE quiz_id = ? ORDER BY completed_at DESC, id DESC`,
		quizID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func scanEntry(rows *sql.Rows) (*Entry, error) {
	var entry Entry
	var completedAt string
	if err := rows.Scan(
		&entry.ID, &entry.AttemptID, &entry.QuizID, &entry.QuizTitle,
		&entry.ScorePercent, &entry.Grade, &entry.NumCorrect,
		&entry.NumAnswered, &entry.Duration, &completedAt,
	); err != nil {
		return nil, err
	}
	ts, err := time.Parse(time.RFC3339, completedAt)
	if err != nil {
		return nil, err
	}
	entry.CompletedAt = ts
	return &entry, nil
}
