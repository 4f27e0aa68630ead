package question

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Service exposes the question bank operations. Every failure it returns is a
// classified *Error; see KindOf.
type Service struct {
	questions QuestionStore
	query     *QueryEngine
	events    Publisher
	metrics   *Metrics
	rand      Source
	logger    zerolog.Logger
}

type ServiceOptions struct {
	Publisher Publisher
	Metrics   *Metrics
	Source    Source
}

func NewService(questions QuestionStore, categories CategoryStore, opts ServiceOptions, logger zerolog.Logger) *Service {
	s := &Service{
		questions: questions,
		query:     NewQueryEngine(questions, categories),
		events:    opts.Publisher,
		metrics:   opts.Metrics,
		rand:      opts.Source,
		logger:    logger.With().Str("component", "question_service").Logger(),
	}
	if s.events == nil {
		s.events = nopPublisher{}
	}
	if s.rand == nil {
		s.rand = GlobalSource{}
	}
	return s
}

// Categories returns every category label keyed by id.
func (s *Service) Categories(ctx context.Context) (cats CategoryMap, err error) {
	defer func() { s.metrics.observe("list_categories", err) }()

	cats, err = s.query.Categories(ctx)
	if err != nil {
		return nil, fail(KindInternal, "list categories", err)
	}
	return cats, nil
}

// ListQuestions returns one page of all questions. TotalQuestions counts the
// whole listing; an empty page is not found.
func (s *Service) ListQuestions(ctx context.Context, page int) (result Page, err error) {
	defer func() { s.metrics.observe("list_questions", err) }()

	questions, cats, err := s.query.All(ctx)
	if err != nil {
		return Page{}, fail(KindInternal, "list questions", err)
	}
	current := Paginate(page, questions)
	if len(current) == 0 {
		return Page{}, fail(KindNotFound, "list questions", nil)
	}
	return Page{
		Questions:      current,
		TotalQuestions: len(questions),
		Categories:     cats,
	}, nil
}

// SearchQuestions returns one page of questions matching term. Unlike the other
// listings, TotalQuestions is the number of questions in the whole bank.
func (s *Service) SearchQuestions(ctx context.Context, term string, page int) (result Page, err error) {
	defer func() { s.metrics.observe("search_questions", err) }()

	matches, err := s.query.Search(ctx, term)
	if err != nil {
		if errors.Is(err, ErrBlankSearchTerm) {
			return Page{}, fail(KindUnprocessable, "search questions", err)
		}
		return Page{}, fail(KindInternal, "search questions", err)
	}
	if len(matches) == 0 {
		return Page{}, fail(KindNotFound, "search questions", nil)
	}
	total, err := s.query.Count(ctx)
	if err != nil {
		return Page{}, fail(KindInternal, "search questions", err)
	}
	return Page{
		Questions:      Paginate(page, matches),
		TotalQuestions: total,
	}, nil
}

// QuestionsByCategory returns one page of a category's questions and its label.
func (s *Service) QuestionsByCategory(ctx context.Context, categoryID int64, page int) (result Page, err error) {
	defer func() { s.metrics.observe("questions_by_category", err) }()

	questions, category, err := s.query.ByCategory(ctx, categoryID)
	if err != nil {
		if errors.Is(err, ErrCategoryNotFound) {
			return Page{}, fail(KindUnprocessable, "questions by category", err)
		}
		return Page{}, fail(KindInternal, "questions by category", err)
	}
	return Page{
		Questions:       Paginate(page, questions),
		TotalQuestions:  len(questions),
		CurrentCategory: category.Type,
	}, nil
}

// CreateQuestion validates and persists a new question.
func (s *Service) CreateQuestion(ctx context.Context, in NewQuestion) (created Question, err error) {
	defer func() { s.metrics.observe("create_question", err) }()

	if strings.TrimSpace(in.Question) == "" || strings.TrimSpace(in.Answer) == "" ||
		in.Difficulty == nil || in.Category == nil {
		return Question{}, fail(KindUnprocessable, "create question", ErrMissingField)
	}

	id, err := s.questions.InsertQuestion(ctx, in)
	if err != nil {
		s.logger.Error().Err(err).Msg("insert question failed")
		return Question{}, fail(KindUnprocessable, "create question", err)
	}

	created = Question{
		ID:         id,
		Question:   in.Question,
		Answer:     in.Answer,
		Difficulty: *in.Difficulty,
		Category:   *in.Category,
	}
	s.publish(ctx, Event{Type: EventCreated, QuestionID: id, Question: &created})
	return created, nil
}

// DeleteQuestion removes a question by id.
func (s *Service) DeleteQuestion(ctx context.Context, id int64) (err error) {
	defer func() { s.metrics.observe("delete_question", err) }()

	if _, err := s.questions.FindQuestion(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return fail(KindNotFound, "delete question", err)
		}
		s.logger.Error().Err(err).Int64("question_id", id).Msg("lookup before delete failed")
		return fail(KindUnprocessable, "delete question", err)
	}

	if err := s.questions.DeleteQuestion(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return fail(KindNotFound, "delete question", err)
		}
		s.logger.Error().Err(err).Int64("question_id", id).Msg("delete question failed")
		return fail(KindUnprocessable, "delete question", err)
	}

	s.publish(ctx, Event{Type: EventDeleted, QuestionID: id})
	return nil
}

// NextQuizQuestion draws a question the player has not seen yet.
func (s *Service) NextQuizQuestion(ctx context.Context, req QuizRequest) (next Question, err error) {
	defer func() { s.metrics.observe("quiz_draw", err) }()

	if req.PreviousQuestions == nil || req.Category == nil {
		return Question{}, fail(KindBadRequest, "quiz draw", ErrMissingField)
	}

	pool, err := s.query.Pool(ctx, *req.Category)
	if err != nil {
		return Question{}, fail(KindInternal, "quiz draw", err)
	}
	s.metrics.observePool(len(pool))

	next, err = Draw(pool, req.PreviousQuestions, s.rand)
	if err != nil {
		return Question{}, fail(KindNotFound, "quiz draw", err)
	}
	return next, nil
}

func (s *Service) publish(ctx context.Context, evt Event) {
	evt.OccurredAt = time.Now().UTC()
	if err := s.events.Publish(ctx, evt); err != nil {
		s.logger.Warn().Err(err).Str("event", evt.Type).Int64("question_id", evt.QuestionID).Msg("publish question event failed")
	}
}
