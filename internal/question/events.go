package question

import (
	"context"
	"time"
)

// Event types published after a successful mutation.
const (
	EventCreated = "question.created"
	EventDeleted = "question.deleted"
)

// Event describes a committed change to the question bank.
type Event struct {
	Type       string    `json:"type"`
	QuestionID int64     `json:"question_id"`
	Question   *Question `json:"question,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher fans out question events (implemented by the Redis feed publisher).
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, Event) error { return nil }
