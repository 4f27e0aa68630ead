package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/trivia-api/internal/question"
)

type mockDB struct {
	mock.Mock
}

func (m *mockDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	a := m.Called(ctx, sql, args)
	return a.Get(0).(pgconn.CommandTag), a.Error(1)
}

func (m *mockDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	a := m.Called(ctx, sql, args)
	rows, _ := a.Get(0).(pgx.Rows)
	return rows, a.Error(1)
}

func (m *mockDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return m.Called(ctx, sql, args).Get(0).(pgx.Row)
}

type stubRow struct {
	values []any
	err    error
}

func (r stubRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return assign(dest, r.values)
}

type stubRows struct {
	data [][]any
	pos  int
	err  error
}

func (r *stubRows) Close()                                       {}
func (r *stubRows) Err() error                                   { return r.err }
func (r *stubRows) CommandTag() pgconn.CommandTag                { return pgconn.NewCommandTag("SELECT") }
func (r *stubRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *stubRows) Values() ([]any, error)                       { return r.data[r.pos-1], nil }
func (r *stubRows) RawValues() [][]byte                          { return nil }
func (r *stubRows) Conn() *pgx.Conn                              { return nil }

func (r *stubRows) Next() bool {
	if r.pos >= len(r.data) {
		return false
	}
	r.pos++
	return true
}

func (r *stubRows) Scan(dest ...any) error {
	return assign(dest, r.data[r.pos-1])
}

func assign(dest []any, values []any) error {
	if len(dest) != len(values) {
		return fmt.Errorf("scan: %d destinations for %d values", len(dest), len(values))
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *int64:
			*p = values[i].(int64)
		case *int:
			*p = values[i].(int)
		case *string:
			*p = values[i].(string)
		default:
			return fmt.Errorf("scan: unsupported destination %T", d)
		}
	}
	return nil
}

func TestBuildListQuery(t *testing.T) {
	cat := int64(4)

	query, args := buildListQuery(question.Filter{})
	assert.Equal(t, "SELECT id, question, answer, difficulty, category FROM questions ORDER BY id", query)
	assert.Empty(t, args)

	query, args = buildListQuery(question.Filter{Category: &cat, Search: "50%"})
	assert.Equal(t, `SELECT id, question, answer, difficulty, category FROM questions WHERE category = $1 AND question ILIKE $2 ESCAPE '\' ORDER BY id`, query)
	assert.Equal(t, []any{int64(4), `%50\%%`}, args)
}

func TestQuestionRepository_ListQuestions(t *testing.T) {
	db := new(mockDB)
	repo := NewQuestionRepository(db)

	rows := &stubRows{data: [][]any{
		{int64(2), "Who wrote Hamlet?", "Shakespeare", 2, int64(4)},
		{int64(5), "Whose autobiography is entitled 'I Know Why the Caged Bird Sings'?", "Maya Angelou", 2, int64(4)},
	}}
	db.On("Query", mock.Anything, mock.Anything, []any{int64(4)}).Return(rows, nil)

	cat := int64(4)
	got, err := repo.ListQuestions(context.Background(), question.Filter{Category: &cat})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(2), got[0].ID)
	assert.Equal(t, "Maya Angelou", got[1].Answer)
	db.AssertExpectations(t)
}

func TestQuestionRepository_ListQuestionsEmpty(t *testing.T) {
	db := new(mockDB)
	repo := NewQuestionRepository(db)
	db.On("Query", mock.Anything, mock.Anything, mock.Anything).Return(&stubRows{}, nil)

	got, err := repo.ListQuestions(context.Background(), question.Filter{Search: "nothing"})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestQuestionRepository_ListQuestionsQueryError(t *testing.T) {
	db := new(mockDB)
	repo := NewQuestionRepository(db)
	db.On("Query", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("conn reset"))

	_, err := repo.ListQuestions(context.Background(), question.Filter{})
	assert.ErrorContains(t, err, "conn reset")
}

func TestQuestionRepository_FindQuestion(t *testing.T) {
	db := new(mockDB)
	repo := NewQuestionRepository(db)

	db.On("QueryRow", mock.Anything, mock.Anything, []any{int64(9)}).
		Return(stubRow{values: []any{int64(9), "Q", "A", 1, int64(3)}})
	db.On("QueryRow", mock.Anything, mock.Anything, []any{int64(404)}).
		Return(stubRow{err: pgx.ErrNoRows})

	got, err := repo.FindQuestion(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, question.Question{ID: 9, Question: "Q", Answer: "A", Difficulty: 1, Category: 3}, got)

	_, err = repo.FindQuestion(context.Background(), 404)
	assert.ErrorIs(t, err, question.ErrNotFound)
}

func TestQuestionRepository_InsertQuestion(t *testing.T) {
	db := new(mockDB)
	repo := NewQuestionRepository(db)

	diff, cat := 3, int64(1)
	db.On("QueryRow", mock.Anything, mock.Anything, []any{"Q", "A", 3, int64(1)}).
		Return(stubRow{values: []any{int64(24)}})

	id, err := repo.InsertQuestion(context.Background(), question.NewQuestion{
		Question: "Q", Answer: "A", Difficulty: &diff, Category: &cat,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(24), id)
	db.AssertExpectations(t)
}

func TestQuestionRepository_DeleteQuestion(t *testing.T) {
	db := new(mockDB)
	repo := NewQuestionRepository(db)

	db.On("Exec", mock.Anything, mock.Anything, []any{int64(1)}).Return(pgconn.NewCommandTag("DELETE 1"), nil)
	db.On("Exec", mock.Anything, mock.Anything, []any{int64(2)}).Return(pgconn.NewCommandTag("DELETE 0"), nil)
	db.On("Exec", mock.Anything, mock.Anything, []any{int64(3)}).Return(pgconn.CommandTag{}, errors.New("deadlock"))

	assert.NoError(t, repo.DeleteQuestion(context.Background(), 1))
	assert.ErrorIs(t, repo.DeleteQuestion(context.Background(), 2), question.ErrNotFound)
	err := repo.DeleteQuestion(context.Background(), 3)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, question.ErrNotFound)
}

func TestQuestionRepository_CountQuestions(t *testing.T) {
	db := new(mockDB)
	repo := NewQuestionRepository(db)
	db.On("QueryRow", mock.Anything, mock.Anything, mock.Anything).Return(stubRow{values: []any{19}})

	n, err := repo.CountQuestions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 19, n)
}

func TestCategoryRepository(t *testing.T) {
	db := new(mockDB)
	repo := NewCategoryRepository(db)

	db.On("Query", mock.Anything, mock.Anything, mock.Anything).Return(&stubRows{data: [][]any{
		{int64(1), "Science"},
		{int64(2), "Art"},
	}}, nil)
	db.On("QueryRow", mock.Anything, mock.Anything, []any{int64(1)}).Return(stubRow{values: []any{int64(1), "Science"}})
	db.On("QueryRow", mock.Anything, mock.Anything, []any{int64(1234)}).Return(stubRow{err: pgx.ErrNoRows})
	db.On("Exec", mock.Anything, mock.Anything, []any{int64(6), "Sports"}).Return(pgconn.NewCommandTag("INSERT 0 1"), nil)

	cats, err := repo.ListCategories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []question.Category{{ID: 1, Type: "Science"}, {ID: 2, Type: "Art"}}, cats)

	c, err := repo.FindCategory(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Science", c.Type)

	_, err = repo.FindCategory(context.Background(), 1234)
	assert.ErrorIs(t, err, question.ErrNotFound)

	assert.NoError(t, repo.UpsertCategory(context.Background(), question.Category{ID: 6, Type: "Sports"}))
	db.AssertExpectations(t)
}
