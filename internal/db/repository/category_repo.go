package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/gokatarajesh/trivia-api/internal/question"
)

// CategoryRepository implements question.CategoryStore on Postgres.
type CategoryRepository struct {
	db dbtx
}

var _ question.CategoryStore = (*CategoryRepository)(nil)

func NewCategoryRepository(db dbtx) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// ListCategories returns every category by ascending id.
func (r *CategoryRepository) ListCategories(ctx context.Context) ([]question.Category, error) {
	rows, err := r.db.Query(ctx, `SELECT id, type FROM categories ORDER BY id`)
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
func (r *CategoryRepository) FindCategory(ctx context.Context, id int64) (question.Category, error) {
	var c question.Category
	err := r.db.QueryRow(ctx, `SELECT id, type FROM categories WHERE id = $1`, id).Scan(&c.ID, &c.Type)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return question.Category{}, question.ErrNotFound
		}
		return question.Category{}, fmt.Errorf("failed to get category: %w", err)
	}
	return c, nil
}

// UpsertCategory creates or relabels a category with a fixed id. Used by the seeder.
func (r *CategoryRepository) UpsertCategory(ctx context.Context, c question.Category) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO categories (id, type)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET type = EXCLUDED.type
	`, c.ID, c.Type)
	if err != nil {
		return fmt.Errorf("failed to upsert category: %w", err)
	}
	return nil
}
