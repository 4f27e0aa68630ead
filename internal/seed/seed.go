package seed

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/gokatarajesh/trivia-api/internal/question"
)

// Fixture is the YAML seed document.
type Fixture struct {
	Categories []question.Category `yaml:"categories"`
	Questions  []Question          `yaml:"questions"`
}

// Question is one seed entry. Category refers to a fixture category id.
type Question struct {
	Question   string `yaml:"question"`
	Answer     string `yaml:"answer"`
	Difficulty int    `yaml:"difficulty"`
	Category   int64  `yaml:"category"`
}

// Store is what seeding needs from a question store.
type Store interface {
	UpsertCategory(ctx context.Context, c question.Category) error
	ListQuestions(ctx context.Context, filter question.Filter) ([]question.Question, error)
	InsertQuestion(ctx context.Context, q question.NewQuestion) (int64, error)
}

// Result counts what Apply changed.
type Result struct {
	Categories int
	Inserted   int
	Skipped    int
}

// LoadFile reads a fixture from path.
func LoadFile(path string) (*Fixture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load decodes and validates a fixture.
func Load(r io.Reader) (*Fixture, error) {
	fixture := &Fixture{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(fixture); err != nil {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	if err := fixture.validate(); err != nil {
		return nil, err
	}
	return fixture, nil
}

func (f *Fixture) validate() error {
	known := make(map[int64]bool, len(f.Categories))
	for _, c := range f.Categories {
		if c.ID == question.AllCategories {
			return fmt.Errorf("category %q: id %d is reserved", c.Type, c.ID)
		}
		if strings.TrimSpace(c.Type) == "" {
			return fmt.Errorf("category %d: type is required", c.ID)
		}
		known[c.ID] = true
	}
	for i, q := range f.Questions {
		if strings.TrimSpace(q.Question) == "" || strings.TrimSpace(q.Answer) == "" {
			return fmt.Errorf("question %d: question and answer are required", i+1)
		}
		if q.Difficulty < 1 || q.Difficulty > 5 {
			return fmt.Errorf("question %d: difficulty %d out of range 1-5", i+1, q.Difficulty)
		}
		if !known[q.Category] {
			return fmt.Errorf("question %d: unknown category %d", i+1, q.Category)
		}
	}
	return nil
}

// Apply upserts every category and inserts the questions whose text is not
// stored yet, so running it twice does not duplicate questions.
func Apply(ctx context.Context, store Store, fixture *Fixture, logger zerolog.Logger) (Result, error) {
	var res Result
	for _, c := range fixture.Categories {
		if err := store.UpsertCategory(ctx, c); err != nil {
			return res, fmt.Errorf("seed category %d: %w", c.ID, err)
		}
		res.Categories++
	}

	existing, err := store.ListQuestions(ctx, question.Filter{})
	if err != nil {
		return res, fmt.Errorf("list existing questions: %w", err)
	}
	seen := make(map[string]bool, len(existing))
	for _, q := range existing {
		seen[q.Question] = true
	}

	for _, q := range fixture.Questions {
		if seen[q.Question] {
			res.Skipped++
			continue
		}
		difficulty, category := q.Difficulty, q.Category
		id, err := store.InsertQuestion(ctx, question.NewQuestion{
			Question:   q.Question,
			Answer:     q.Answer,
			Difficulty: &difficulty,
			Category:   &category,
		})
		if err != nil {
			return res, fmt.Errorf("seed question %q: %w", q.Question, err)
		}
		seen[q.Question] = true
		res.Inserted++
		logger.Debug().Int64("question_id", id).Int64("category", category).Msg("seeded question")
	}
	return res, nil
}
