package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/gamma-omg/lexi-cards/internal/pkg/serr"
	"github.com/gamma-omg/lexi-cards/internal/services/lessons/internal/model"
	"github.com/gamma-omg/lexi-cards/internal/services/lessons/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	ListLessonsFunc         func(ctx context.Context) ([]model.Lesson, error)
	GetLessonFunc           func(ctx context.Context, id int64) (model.Lesson, error)
	CreateLessonFunc        func(ctx context.Context, r store.CreateLessonRequest) (model.Lesson, error)
	UpdateLessonFunc        func(ctx context.Context, r store.UpdateLessonRequest) (model.Lesson, error)
	DeleteLessonFunc        func(ctx context.Context, id int64) error
	ListCardsFunc           func(ctx context.Context, lessonID int64) ([]model.Card, error)
	GetCardFunc             func(ctx context.Context, id int64) (model.Card, error)
	NextCardOrderFunc       func(ctx context.Context, lessonID int64) (int, error)
	CreateCardFunc          func(ctx context.Context, r store.CreateCardRequest) (model.Card, error)
	UpdateCardFunc          func(ctx context.Context, r store.UpdateCardRequest) (model.Card, error)
	DeleteCardFunc          func(ctx context.Context, id int64) error
	GetProgressFunc         func(ctx context.Context, r store.ProgressKey) (model.Progress, error)
	GetOrCreateProgressFunc func(ctx context.Context, r store.ProgressKey) (model.Progress, error)
	UpdateProgressFunc      func(ctx context.Context, r store.UpdateProgressRequest) (model.Progress, error)
	ListProfileProgressFunc func(ctx context.Context, profile string) ([]model.Progress, error)
	txCount                 int
}

func (m *mockStore) ListLessons(ctx context.Context) ([]model.Lesson, error) {
	return m.ListLessonsFunc(ctx)
}

func (m *mockStore) GetLesson(ctx context.Context, id int64) (model.Lesson, error) {
	return m.GetLessonFunc(ctx, id)
}

func (m *mockStore) CreateLesson(ctx context.Context, r store.CreateLessonRequest) (model.Lesson, error) {
	return m.CreateLessonFunc(ctx, r)
}

func (m *mockStore) UpdateLesson(ctx context.Context, r store.UpdateLessonRequest) (model.Lesson, error) {
	return m.UpdateLessonFunc(ctx, r)
}

func (m *mockStore) DeleteLesson(ctx context.Context, id int64) error {
	return m.DeleteLessonFunc(ctx, id)
}

func (m *mockStore) ListCards(ctx context.Context, lessonID int64) ([]model.Card, error) {
	return m.ListCardsFunc(ctx, lessonID)
}

func (m *mockStore) GetCard(ctx context.Context, id int64) (model.Card, error) {
	return m.GetCardFunc(ctx, id)
}

func (m *mockStore) NextCardOrder(ctx context.Context, lessonID int64) (int, error) {
	return m.NextCardOrderFunc(ctx, lessonID)
}

func (m *mockStore) CreateCard(ctx context.Context, r store.CreateCardRequest) (model.Card, error) {
	return m.CreateCardFunc(ctx, r)
}

func (m *mockStore) UpdateCard(ctx context.Context, r store.UpdateCardRequest) (model.Card, error) {
	return m.UpdateCardFunc(ctx, r)
}

func (m *mockStore) DeleteCard(ctx context.Context, id int64) error {
	return m.DeleteCardFunc(ctx, id)
}

func (m *mockStore) GetProgress(ctx context.Context, r store.ProgressKey) (model.Progress, error) {
	return m.GetProgressFunc(ctx, r)
}

func (m *mockStore) GetOrCreateProgress(ctx context.Context, r store.ProgressKey) (model.Progress, error) {
	return m.GetOrCreateProgressFunc(ctx, r)
}

func (m *mockStore) UpdateProgress(ctx context.Context, r store.UpdateProgressRequest) (model.Progress, error) {
	return m.UpdateProgressFunc(ctx, r)
}

func (m *mockStore) ListProfileProgress(ctx context.Context, profile string) ([]model.Progress, error) {
	return m.ListProfileProgressFunc(ctx, profile)
}

func (m *mockStore) WithinTx(ctx context.Context, fn func(tx store.Store) error) error {
	m.txCount++
	return fn(m)
}

func lessonByID(lessons ...model.Lesson) func(ctx context.Context, id int64) (model.Lesson, error) {
	return func(ctx context.Context, id int64) (model.Lesson, error) {
		for _, l := range lessons {
			if l.ID == id {
				return l, nil
			}
		}
		return model.Lesson{}, store.ErrNotFound
	}
}

func requireStatus(t *testing.T, err error, status int, msg string) {
	t.Helper()

	var se *serr.ServiceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, status, se.StatusCode)
	if msg != "" {
		assert.Equal(t, msg, se.Msg)
	}
}

func requireNotFound(t *testing.T, err error, msg string) {
	t.Helper()
	requireStatus(t, err, http.StatusNotFound, msg)
}

func requireBadRequest(t *testing.T, err error, msg string) {
	t.Helper()
	requireStatus(t, err, http.StatusBadRequest, msg)
}
