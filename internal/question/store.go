package question

import (
	"context"
	"errors"
	"strings"
)

// ErrNotFound is returned by stores when a record lookup or delete matches nothing.
var ErrNotFound = errors.New("record not found")

// Filter narrows ListQuestions. Zero value lists every question.
type Filter struct {
	Category *int64
	Search   string
}

// QuestionStore is the persistence contract for questions. Listings are ordered by ascending id.
type QuestionStore interface {
	ListQuestions(ctx context.Context, filter Filter) ([]Question, error)
	CountQuestions(ctx context.Context) (int, error)
	FindQuestion(ctx context.Context, id int64) (Question, error)
	InsertQuestion(ctx context.Context, q NewQuestion) (int64, error)
	DeleteQuestion(ctx context.Context, id int64) error
}

// CategoryStore is the read-only category contract. Listings are ordered by ascending id.
type CategoryStore interface {
	ListCategories(ctx context.Context) ([]Category, error)
	FindCategory(ctx context.Context, id int64) (Category, error)
}

// ContainsPattern builds a LIKE pattern matching term anywhere in a column.
// LIKE metacharacters in term are escaped with a backslash, so stores must use ESCAPE '\'.
func ContainsPattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(term) + "%"
}
