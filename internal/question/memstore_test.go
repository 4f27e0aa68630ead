package question

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
)

// memStore is an in-memory QuestionStore and CategoryStore for tests.
type memStore struct {
	mu         sync.Mutex
	questions  map[int64]Question
	categories map[int64]Category
	nextID     int64

	listErr   error
	countErr  error
	findErr   error
	insertErr error
	deleteErr error
	catErr    error
}

func newMemStore() *memStore {
	return &memStore{
		questions:  map[int64]Question{},
		categories: map[int64]Category{},
		nextID:     1,
	}
}

// seededStore holds the six standard categories and n questions spread
// round-robin across them.
func seededStore(n int) *memStore {
	s := newMemStore()
	for i, label := range []string{"Science", "Art", "Geography", "History", "Entertainment", "Sports"} {
		s.categories[int64(i+1)] = Category{ID: int64(i + 1), Type: label}
	}
	for i := 0; i < n; i++ {
		diff := i%5 + 1
		cat := int64(i%6 + 1)
		s.InsertQuestion(context.Background(), NewQuestion{
			Question:   "Question " + string(rune('A'+i%26)),
			Answer:     "Answer",
			Difficulty: &diff,
			Category:   &cat,
		})
	}
	return s
}

func (s *memStore) ListQuestions(_ context.Context, filter Filter) ([]Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]Question, 0, len(s.questions))
	for _, q := range s.questions {
		if filter.Category != nil && q.Category != *filter.Category {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(q.Question), strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) CountQuestions(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.countErr != nil {
		return 0, s.countErr
	}
	return len(s.questions), nil
}

func (s *memStore) FindQuestion(_ context.Context, id int64) (Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return Question{}, s.findErr
	}
	q, ok := s.questions[id]
	if !ok {
		return Question{}, ErrNotFound
	}
	return q, nil
}

func (s *memStore) InsertQuestion(_ context.Context, in NewQuestion) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return 0, s.insertErr
	}
	if in.Difficulty == nil || in.Category == nil {
		return 0, errors.New("not null violation")
	}
	id := s.nextID
	s.nextID++
	s.questions[id] = Question{
		ID:         id,
		Question:   in.Question,
		Answer:     in.Answer,
		Difficulty: *in.Difficulty,
		Category:   *in.Category,
	}
	return id, nil
}

func (s *memStore) DeleteQuestion(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	if _, ok := s.questions[id]; !ok {
		return ErrNotFound
	}
	delete(s.questions, id)
	return nil
}

func (s *memStore) ListCategories(context.Context) ([]Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.catErr != nil {
		return nil, s.catErr
	}
	out := make([]Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) FindCategory(_ context.Context, id int64) (Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.catErr != nil {
		return Category{}, s.catErr
	}
	c, ok := s.categories[id]
	if !ok {
		return Category{}, ErrNotFound
	}
	return c, nil
}

func (s *memStore) add(text string, difficulty int, category int64) int64 {
	id, _ := s.InsertQuestion(context.Background(), NewQuestion{
		Question:   text,
		Answer:     "answer",
		Difficulty: &difficulty,
		Category:   &category,
	})
	return id
}

// scriptedSource replays fixed indexes, wrapping each into range.
type scriptedSource struct {
	picks []int
	calls int
}

func (s *scriptedSource) IntN(n int) int {
	v := s.picks[s.calls%len(s.picks)] % n
	s.calls++
	return v
}

func ptr[T any](v T) *T { return &v }
