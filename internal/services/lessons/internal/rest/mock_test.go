package rest

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/gamma-omg/lexi-cards/internal/pkg/router"
	"github.com/gamma-omg/lexi-cards/internal/services/lessons/internal/model"
	"github.com/gamma-omg/lexi-cards/internal/services/lessons/internal/service"
)

type mockLessonService struct {
	ListLessonsFunc    func(ctx context.Context, r service.ListLessonsRequest) (service.ListLessonsResponse, error)
	GetLessonFunc      func(ctx context.Context, id int64) (model.Lesson, error)
	CreateLessonFunc   func(ctx context.Context, r service.CreateLessonRequest) (model.Lesson, error)
	UpdateLessonFunc   func(ctx context.Context, r service.UpdateLessonRequest) (model.Lesson, error)
	DeleteLessonFunc   func(ctx context.Context, id int64) error
	SetLessonCoverFunc func(ctx context.Context, r service.SetLessonCoverRequest) (service.SetMediaResponse[model.Lesson], error)
}

func (m *mockLessonService) ListLessons(ctx context.Context, r service.ListLessonsRequest) (service.ListLessonsResponse, error) {
	return m.ListLessonsFunc(ctx, r)
}

func (m *mockLessonService) GetLesson(ctx context.Context, id int64) (model.Lesson, error) {
	return m.GetLessonFunc(ctx, id)
}

func (m *mockLessonService) CreateLesson(ctx context.Context, r service.CreateLessonRequest) (model.Lesson, error) {
	return m.CreateLessonFunc(ctx, r)
}

func (m *mockLessonService) UpdateLesson(ctx context.Context, r service.UpdateLessonRequest) (model.Lesson, error) {
	return m.UpdateLessonFunc(ctx, r)
}

func (m *mockLessonService) DeleteLesson(ctx context.Context, id int64) error {
	return m.DeleteLessonFunc(ctx, id)
}

func (m *mockLessonService) SetLessonCover(ctx context.Context, r service.SetLessonCoverRequest) (service.SetMediaResponse[model.Lesson], error) {
	return m.SetLessonCoverFunc(ctx, r)
}

type mockCardService struct {
	ListCardsFunc    func(ctx context.Context, lessonID int64) (service.LessonCards, error)
	GetCardFunc      func(ctx context.Context, id int64) (model.Card, error)
	CreateCardFunc   func(ctx context.Context, r service.CreateCardRequest) (model.Card, error)
	UpdateCardFunc   func(ctx context.Context, r service.UpdateCardRequest) (model.Card, error)
	DeleteCardFunc   func(ctx context.Context, id int64) error
	SetCardMediaFunc func(ctx context.Context, r service.SetCardMediaRequest) (service.SetMediaResponse[model.Card], error)
}

func (m *mockCardService) ListCards(ctx context.Context, lessonID int64) (service.LessonCards, error) {
	return m.ListCardsFunc(ctx, lessonID)
}

func (m *mockCardService) GetCard(ctx context.Context, id int64) (model.Card, error) {
	return m.GetCardFunc(ctx, id)
}

func (m *mockCardService) CreateCard(ctx context.Context, r service.CreateCardRequest) (model.Card, error) {
	return m.CreateCardFunc(ctx, r)
}

func (m *mockCardService) UpdateCard(ctx context.Context, r service.UpdateCardRequest) (model.Card, error) {
	return m.UpdateCardFunc(ctx, r)
}

func (m *mockCardService) DeleteCard(ctx context.Context, id int64) error {
	return m.DeleteCardFunc(ctx, id)
}

func (m *mockCardService) SetCardMedia(ctx context.Context, r service.SetCardMediaRequest) (service.SetMediaResponse[model.Card], error) {
	return m.SetCardMediaFunc(ctx, r)
}

type mockProgressService struct {
	StudyLessonFunc    func(ctx context.Context, r service.StudyLessonRequest) (service.StudyLessonResponse, error)
	GetProgressFunc    func(ctx context.Context, r service.GetProgressRequest) (service.ProgressStatus, error)
	UpdateProgressFunc func(ctx context.Context, r service.UpdateProgressRequest) (service.ProgressStatus, error)
}

func (m *mockProgressService) StudyLesson(ctx context.Context, r service.StudyLessonRequest) (service.StudyLessonResponse, error) {
	return m.StudyLessonFunc(ctx, r)
}

func (m *mockProgressService) GetProgress(ctx context.Context, r service.GetProgressRequest) (service.ProgressStatus, error) {
	return m.GetProgressFunc(ctx, r)
}

func (m *mockProgressService) UpdateProgress(ctx context.Context, r service.UpdateProgressRequest) (service.ProgressStatus, error) {
	return m.UpdateProgressFunc(ctx, r)
}

type mockMediaStore struct {
	SaveFunc func(kind model.MediaKind, src io.Reader) (string, error)
	removed  []string
}

func (m *mockMediaStore) Save(kind model.MediaKind, src io.Reader) (string, error) {
	return m.SaveFunc(kind, src)
}

func (m *mockMediaStore) Remove(rel string) error {
	if rel != "" {
		m.removed = append(m.removed, rel)
	}
	return nil
}

type apiDeps struct {
	lessons  *mockLessonService
	cards    *mockCardService
	progress *mockProgressService
	media    *mockMediaStore
}

func newDeps() *apiDeps {
	// every lesson and card exists unless a test says otherwise
	return &apiDeps{
		lessons: &mockLessonService{
			GetLessonFunc: func(ctx context.Context, id int64) (model.Lesson, error) {
				return model.Lesson{ID: id}, nil
			},
		},
		cards: &mockCardService{
			GetCardFunc: func(ctx context.Context, id int64) (model.Card, error) {
				return model.Card{ID: id}, nil
			},
		},
		progress: &mockProgressService{},
		media:    &mockMediaStore{},
	}
}

// handler mounts the API the same way the server does: public under /api, admin under /api/admin.
func (d *apiDeps) handler(t *testing.T, opts ...APIOption) http.Handler {
	t.Helper()

	api := NewAPI(append([]APIOption{
		WithLessonService(d.lessons),
		WithCardService(d.cards),
		WithProgressService(d.progress),
		WithMediaStore(d.media),
	}, opts...)...)

	r := router.New()
	public := r.SubRouter("/api")
	api.RegisterPublic(public)
	api.RegisterAdmin(public.SubRouter("/admin"))

	return r
}

func ptr[T any](v T) *T {
	return &v
}
