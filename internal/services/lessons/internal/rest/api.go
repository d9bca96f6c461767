package rest

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gamma-omg/lexi-cards/internal/pkg/httpx"
	"github.com/gamma-omg/lexi-cards/internal/pkg/middleware"
	"github.com/gamma-omg/lexi-cards/internal/pkg/serr"
	"github.com/gamma-omg/lexi-cards/internal/services/lessons/internal/model"
	"github.com/gamma-omg/lexi-cards/internal/services/lessons/internal/service"
)

// MediaPrefix is the path stored media files are served under.
const MediaPrefix = "/media/"

type lessonService interface {
	ListLessons(ctx context.Context, r service.ListLessonsRequest) (service.ListLessonsResponse, error)
	GetLesson(ctx context.Context, id int64) (model.Lesson, error)
	CreateLesson(ctx context.Context, r service.CreateLessonRequest) (model.Lesson, error)
	UpdateLesson(ctx context.Context, r service.UpdateLessonRequest) (model.Lesson, error)
	DeleteLesson(ctx context.Context, id int64) error
	SetLessonCover(ctx context.Context, r service.SetLessonCoverRequest) (service.SetMediaResponse[model.Lesson], error)
}

type cardService interface {
	ListCards(ctx context.Context, lessonID int64) (service.LessonCards, error)
	GetCard(ctx context.Context, id int64) (model.Card, error)
	CreateCard(ctx context.Context, r service.CreateCardRequest) (model.Card, error)
	UpdateCard(ctx context.Context, r service.UpdateCardRequest) (model.Card, error)
	DeleteCard(ctx context.Context, id int64) error
	SetCardMedia(ctx context.Context, r service.SetCardMediaRequest) (service.SetMediaResponse[model.Card], error)
}

type progressService interface {
	StudyLesson(ctx context.Context, r service.StudyLessonRequest) (service.StudyLessonResponse, error)
	GetProgress(ctx context.Context, r service.GetProgressRequest) (service.ProgressStatus, error)
	UpdateProgress(ctx context.Context, r service.UpdateProgressRequest) (service.ProgressStatus, error)
}

type mediaStore interface {
	Save(kind model.MediaKind, src io.Reader) (string, error)
	Remove(rel string) error
}

// mux is satisfied by *http.ServeMux and *router.Router.
type mux interface {
	HandleFunc(pattern string, handler func(http.ResponseWriter, *http.Request))
}

type APIOption func(*API) *API

func WithLessonService(srv lessonService) APIOption {
	return func(api *API) *API {
		api.lessons = srv
		return api
	}
}

func WithCardService(srv cardService) APIOption {
	return func(api *API) *API {
		api.cards = srv
		return api
	}
}

func WithProgressService(srv progressService) APIOption {
	return func(api *API) *API {
		api.progress = srv
		return api
	}
}

func WithMediaStore(store mediaStore) APIOption {
	return func(api *API) *API {
		api.media = store
		return api
	}
}

func WithMaxUploadSize(size int64) APIOption {
	return func(api *API) *API {
		api.maxUploadSize = size
		return api
	}
}

// WithMediaBaseURL makes file fields render against a fixed public URL
// instead of the host of the incoming request.
func WithMediaBaseURL(base *url.URL) APIOption {
	return func(api *API) *API {
		api.mediaBase = base
		return api
	}
}

type API struct {
	lessons       lessonService
	cards         cardService
	progress      progressService
	media         mediaStore
	maxUploadSize int64
	mediaBase     *url.URL
}

func NewAPI(opts ...APIOption) *API {
	api := &API{
		maxUploadSize: 10 << 20,
	}

	for _, opt := range opts {
		api = opt(api)
	}

	if api.lessons == nil || api.cards == nil || api.progress == nil {
		panic("lesson, card and progress services are required")
	}
	if api.media == nil {
		panic("media store is required")
	}

	return api
}

// RegisterPublic mounts the child-facing endpoints.
func (api *API) RegisterPublic(m mux) {
	m.HandleFunc("GET /lessons/{$}", api.handleListLessons)
	m.HandleFunc("GET /lessons/{lesson_id}/cards/{$}", api.handleStudyLesson)
	m.HandleFunc("GET /lessons/{lesson_id}/progress/{$}", api.handleGetProgress)
	m.HandleFunc("POST /lessons/{lesson_id}/progress/{$}", api.handleUpdateProgress)
}

// RegisterAdmin mounts the content management endpoints, relative to the admin prefix.
func (api *API) RegisterAdmin(m mux) {
	m.HandleFunc("GET /lessons/{$}", api.handleAdminListLessons)
	m.HandleFunc("POST /lessons/{$}", api.handleCreateLesson)
	m.HandleFunc("GET /lessons/{lesson_id}/{$}", api.handleGetLesson)
	m.HandleFunc("PUT /lessons/{lesson_id}/{$}", api.handleUpdateLesson)
	m.HandleFunc("DELETE /lessons/{lesson_id}/{$}", api.handleDeleteLesson)
	m.HandleFunc("GET /lessons/{lesson_id}/cards/{$}", api.handleListCards)
	m.HandleFunc("POST /lessons/{lesson_id}/cards/{$}", api.handleCreateCard)
	m.HandleFunc("POST /lessons/{lesson_id}/cover/{$}", api.handleUploadCover)
	m.HandleFunc("DELETE /lessons/{lesson_id}/cover/{$}", api.handleClearCover)

	m.HandleFunc("GET /cards/{card_id}/{$}", api.handleGetCard)
	m.HandleFunc("PUT /cards/{card_id}/{$}", api.handleUpdateCard)
	m.HandleFunc("DELETE /cards/{card_id}/{$}", api.handleDeleteCard)
	m.HandleFunc("POST /cards/{card_id}/image/{$}", api.handleUploadCardMedia(model.MediaImage))
	m.HandleFunc("DELETE /cards/{card_id}/image/{$}", api.handleClearCardMedia(model.MediaImage))
	m.HandleFunc("POST /cards/{card_id}/audio/{$}", api.handleUploadCardMedia(model.MediaAudio))
	m.HandleFunc("DELETE /cards/{card_id}/audio/{$}", api.handleClearCardMedia(model.MediaAudio))
}

func idFromRequest(r *http.Request, name string) (int64, error) {
	raw := r.PathValue(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, serr.NotFound(err, "Not Found").With(name, raw)
	}

	return id, nil
}

// discardMedia removes a file that is no longer referenced. Failures only leave an orphan behind.
func (api *API) discardMedia(r *http.Request, rel string) {
	if err := api.media.Remove(rel); err != nil {
		slog.Warn("failed to remove media file",
			"error", err,
			"path", rel,
			"url", httpx.RequestURL(r),
		)
	}
}

// logChange records an admin mutation along with who made it.
func logChange(r *http.Request, msg string, attrs ...any) {
	attrs = append(attrs,
		"editor", middleware.SubjectFromContext(r.Context()),
		"request_id", middleware.RequestIDFromContext(r.Context()),
	)
	slog.Info(msg, attrs...)
}
