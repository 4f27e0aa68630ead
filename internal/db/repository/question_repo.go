package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/gokatarajesh/trivia-api/internal/question"
)

// dbtx is the subset of pgxpool.Pool (and pgx.Tx) the repositories use.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// QuestionRepository implements question.QuestionStore on Postgres.
type QuestionRepository struct {
	db dbtx
}

var _ question.QuestionStore = (*QuestionRepository)(nil)

func NewQuestionRepository(db dbtx) *QuestionRepository {
	return &QuestionRepository{db: db}
}

// ListQuestions returns questions matching filter by ascending id.
func (r *QuestionRepository) ListQuestions(ctx context.Context, filter question.Filter) ([]question.Question, error) {
	query, args := buildListQuery(filter)

	rows, err := r.db.Query(ctx, query, args...)
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

func buildListQuery(filter question.Filter) (string, []any) {
	var (
		where []string
		args  []any
	)
	if filter.Category != nil {
		args = append(args, *filter.Category)
		where = append(where, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, question.ContainsPattern(filter.Search))
		where = append(where, fmt.Sprintf(`question ILIKE $%d ESCAPE '\'`, len(args)))
	}

	query := "SELECT id, question, answer, difficulty, category FROM questions"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	return query + " ORDER BY id", args
}

// CountQuestions reports the number of stored questions.
func (r *QuestionRepository) CountQuestions(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM questions").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count questions: %w", err)
	}
	return count, nil
}

// FindQuestion retrieves a question by id.
func (r *QuestionRepository) FindQuestion(ctx context.Context, id int64) (question.Question, error) {
	var q question.Question
	err := r.db.QueryRow(ctx, `
		SELECT id, question, answer, difficulty, category
		FROM questions
		WHERE id = $1
	`, id).Scan(&q.ID, &q.Question, &q.Answer, &q.Difficulty, &q.Category)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return question.Question{}, question.ErrNotFound
		}
		return question.Question{}, fmt.Errorf("failed to get question: %w", err)
	}
	return q, nil
}

// InsertQuestion stores a question and returns its generated id.
func (r *QuestionRepository) InsertQuestion(ctx context.Context, in question.NewQuestion) (int64, error) {
	if in.Difficulty == nil || in.Category == nil {
		return 0, fmt.Errorf("insert question: difficulty and category are required")
	}
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO questions (question, answer, difficulty, category)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, in.Question, in.Answer, *in.Difficulty, *in.Category).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert question: %w", err)
	}
	return id, nil
}

// DeleteQuestion removes a question by id.
func (r *QuestionRepository) DeleteQuestion(ctx context.Context, id int64) error {
	result, err := r.db.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}
	if result.RowsAffected() == 0 {
		return question.ErrNotFound
	}
	return nil
}
