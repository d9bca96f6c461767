package store

import (
	"context"
	"errors"

	"github.com/gamma-omg/lexi-cards/internal/services/lessons/internal/model"
)

var ErrNotFound = errors.New("not found")

type LessonStore interface {
	ListLessons(ctx context.Context) ([]model.Lesson, error)
	GetLesson(ctx context.Context, id int64) (model.Lesson, error)
	CreateLesson(ctx context.Context, r CreateLessonRequest) (model.Lesson, error)
	UpdateLesson(ctx context.Context, r UpdateLessonRequest) (model.Lesson, error)
	DeleteLesson(ctx context.Context, id int64) error
}

type CardStore interface {
	ListCards(ctx context.Context, lessonID int64) ([]model.Card, error)
	GetCard(ctx context.Context, id int64) (model.Card, error)
	NextCardOrder(ctx context.Context, lessonID int64) (int, error)
	CreateCard(ctx context.Context, r CreateCardRequest) (model.Card, error)
	UpdateCard(ctx context.Context, r UpdateCardRequest) (model.Card, error)
	DeleteCard(ctx context.Context, id int64) error
}

type ProgressStore interface {
	GetProgress(ctx context.Context, r ProgressKey) (model.Progress, error)
	GetOrCreateProgress(ctx context.Context, r ProgressKey) (model.Progress, error)
	UpdateProgress(ctx context.Context, r UpdateProgressRequest) (model.Progress, error)
	ListProfileProgress(ctx context.Context, profile string) ([]model.Progress, error)
}

// Store is the full data access surface. WithinTx runs fn against a Store bound
// to a single transaction that is committed when fn returns nil.
type Store interface {
	LessonStore
	CardStore
	ProgressStore
	WithinTx(ctx context.Context, fn func(tx Store) error) error
}
