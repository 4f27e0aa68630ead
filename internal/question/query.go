package question

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// QueryEngine builds ordered question result sets over the stores. It holds no
// state between calls; every call re-reads the stores.
type QueryEngine struct {
	questions  QuestionStore
	categories CategoryStore
}

func NewQueryEngine(questions QuestionStore, categories CategoryStore) *QueryEngine {
	return &QueryEngine{questions: questions, categories: categories}
}

// All returns every question by ascending id together with the category labels.
func (q *QueryEngine) All(ctx context.Context) ([]Question, CategoryMap, error) {
	questions, err := q.questions.ListQuestions(ctx, Filter{})
	if err != nil {
		return nil, nil, fmt.Errorf("list questions: %w", err)
	}
	categories, err := q.Categories(ctx)
	if err != nil {
		return nil, nil, err
	}
	return questions, categories, nil
}

// Search returns questions whose text contains term, ignoring case.
func (q *QueryEngine) Search(ctx context.Context, term string) ([]Question, error) {
	if strings.TrimSpace(term) == "" {
		return nil, ErrBlankSearchTerm
	}
	questions, err := q.questions.ListQuestions(ctx, Filter{Search: term})
	if err != nil {
		return nil, fmt.Errorf("search questions: %w", err)
	}
	return questions, nil
}

// ByCategory resolves the category and returns its questions.
func (q *QueryEngine) ByCategory(ctx context.Context, categoryID int64) ([]Question, Category, error) {
	category, err := q.categories.FindCategory(ctx, categoryID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, Category{}, ErrCategoryNotFound
		}
		return nil, Category{}, fmt.Errorf("find category %d: %w", categoryID, err)
	}
	questions, err := q.questions.ListQuestions(ctx, Filter{Category: &categoryID})
	if err != nil {
		return nil, Category{}, fmt.Errorf("list category %d questions: %w", categoryID, err)
	}
	return questions, category, nil
}

// Pool returns the quiz candidates for a category selector. AllCategories
// selects every question; an unknown category yields an empty pool.
func (q *QueryEngine) Pool(ctx context.Context, categoryID int64) ([]Question, error) {
	filter := Filter{}
	if categoryID != AllCategories {
		filter.Category = &categoryID
	}
	questions, err := q.questions.ListQuestions(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("load quiz pool: %w", err)
	}
	return questions, nil
}

// Count reports how many questions are stored.
func (q *QueryEngine) Count(ctx context.Context) (int, error) {
	n, err := q.questions.CountQuestions(ctx)
	if err != nil {
		return 0, fmt.Errorf("count questions: %w", err)
	}
	return n, nil
}

// Categories returns every category label keyed by id.
func (q *QueryEngine) Categories(ctx context.Context) (CategoryMap, error) {
	categories, err := q.categories.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categoryMap(categories), nil
}
