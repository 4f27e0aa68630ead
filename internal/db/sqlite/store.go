package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/gokatarajesh/trivia-api/internal/question"
)

// driverName is go-sqlite3 with a fold(text) function that lowercases
// Unicode text. The built-in LOWER and LIKE only fold ASCII.
const driverName = "sqlite3_trivia"

func init() {
	sql.Register(driverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("fold", strings.ToLower, true)
		},
	})
}

// Store keeps questions and categories in a SQLite file. It implements both
// question.QuestionStore and question.CategoryStore.
type Store struct {
	db *sql.DB
}

var (
	_ question.QuestionStore = (*Store)(nil)
	_ question.CategoryStore = (*Store)(nil)
)

// Open connects to the database at path and creates the schema if needed.
// Use ":memory:" for a throwaway database.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open(driverName, path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite serialises writers; one connection also keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("init sqlite schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS categories (
			id INTEGER PRIMARY KEY,
			type TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS questions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			question TEXT NOT NULL,
			answer TEXT NOT NULL,
			difficulty INTEGER NOT NULL,
			category INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_questions_category ON questions(category);`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// ListQuestions returns questions matching filter by ascending id. Search
// ignores case, including non-ASCII letters.
func (s *Store) ListQuestions(ctx context.Context, filter question.Filter) ([]question.Question, error) {
	var (
		where []string
		args  []any
	)
	if filter.Category != nil {
		where = append(where, "category = ?")
		args = append(args, *filter.Category)
	}
	if filter.Search != "" {
		where = append(where, `fold(question) LIKE fold(?) ESCAPE '\'`)
		args = append(args, question.ContainsPattern(filter.Search))
	}

	query := "SELECT id, question, answer, difficulty, category FROM questions"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query questions: %w", err)
	}
	defer rows.Close()

	questions := make([]question.Question, 0)
	for rows.Next() {
		var q question.Question
		if err := rows.Scan(&q.ID, &q.Question, &q.Answer, &q.Difficulty, &q.Category); err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating questions: %w", err)
	}
	return questions, nil
}

// CountQuestions reports the number of stored questions.
func (s *Store) CountQuestions(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM questions").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count questions: %w", err)
	}
	return count, nil
}

// FindQuestion retrieves a question by id.
func (s *Store) FindQuestion(ctx context.Context, id int64) (question.Question, error) {
	var q question.Question
	err := s.db.QueryRowContext(ctx,
		"SELECT id, question, answer, difficulty, category FROM questions WHERE id = ?", id,
	).Scan(&q.ID, &q.Question, &q.Answer, &q.Difficulty, &q.Category)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return question.Question{}, question.ErrNotFound
		}
		return question.Question{}, fmt.Errorf("failed to get question: %w", err)
	}
	return q, nil
}

// InsertQuestion stores a question and returns its generated id.
func (s *Store) InsertQuestion(ctx context.Context, in question.NewQuestion) (int64, error) {
	if in.Difficulty == nil || in.Category == nil {
		return 0, fmt.Errorf("insert question: difficulty and category are required")
	}
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO questions (question, answer, difficulty, category) VALUES (?, ?, ?, ?)",
		in.Question, in.Answer, *in.Difficulty, *in.Category,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert question: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read question id: %w", err)
	}
	return id, nil
}

// DeleteQuestion removes a question by id.
func (s *Store) DeleteQuestion(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM questions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}
	if n == 0 {
		return question.ErrNotFound
	}
	return nil
}

// ListCategories returns every category by ascending id.
func (s *Store) ListCategories(ctx context.Context) ([]question.Category, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, type FROM categories ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	defer rows.Close()

	categories := make([]question.Category, 0)
	for rows.Next() {
		var c question.Category
		if err := rows.Scan(&c.ID, &c.Type); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}
	return categories, nil
}

// FindCategory retrieves a category by id.
func (s *Store) FindCategory(ctx context.Context, id int64) (question.Category, error) {
	var c question.Category
	err := s.db.QueryRowContext(ctx, "SELECT id, type FROM categories WHERE id = ?", id).Scan(&c.ID, &c.Type)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return question.Category{}, question.ErrNotFound
		}
		return question.Category{}, fmt.Errorf("failed to get category: %w", err)
	}
	return c, nil
}

// UpsertCategory creates or relabels a category with a fixed id. Used by the seeder.
func (s *Store) UpsertCategory(ctx context.Context, c question.Category) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO categories (id, type) VALUES (?, ?) ON CONFLICT(id) DO UPDATE SET type = excluded.type",
		c.ID, c.Type,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert category: %w", err)
	}
	return nil
}
