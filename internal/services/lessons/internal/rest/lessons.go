package rest

import (
	"net/http"

	"github.com/gamma-omg/lexi-cards/internal/pkg/httpx"
	"github.com/gamma-omg/lexi-cards/internal/pkg/serr"
	"github.com/gamma-omg/lexi-cards/internal/services/lessons/internal/model"
	"github.com/gamma-omg/lexi-cards/internal/services/lessons/internal/service"
	"github.com/samber/lo"
)

const msgBadJSON = "Unable to decode JSON payload"

func (api *API) handleListLessons(w http.ResponseWriter, r *http.Request) {
	resp, err := api.lessons.ListLessons(r.Context(), service.ListLessonsRequest{
		Profile: r.URL.Query().Get("profile"),
	})
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	if !resp.WithProgress {
		api.writeLessons(w, r, resp.Lessons)
		return
	}

	err = httpx.WriteJSON(w, http.StatusOK, lessonListResponse[lessonWithProgressPayload]{
		Lessons: lo.Map(resp.Lessons, func(s service.LessonSummary, _ int) lessonWithProgressPayload {
			p := lessonWithProgressPayload{lessonPayload: api.lessonPayload(r, s.Lesson)}
			if s.Progress != nil {
				p.Progress = lo.ToPtr(progressToPayload(*s.Progress))
			}
			return p
		}),
	})
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}
}

func (api *API) handleAdminListLessons(w http.ResponseWriter, r *http.Request) {
	resp, err := api.lessons.ListLessons(r.Context(), service.ListLessonsRequest{})
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	api.writeLessons(w, r, resp.Lessons)
}

func (api *API) writeLessons(w http.ResponseWriter, r *http.Request, lessons []service.LessonSummary) {
	err := httpx.WriteJSON(w, http.StatusOK, lessonListResponse[lessonPayload]{
		Lessons: lo.Map(lessons, func(s service.LessonSummary, _ int) lessonPayload {
			return api.lessonPayload(r, s.Lesson)
		}),
	})
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}
}

type createLessonRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (api *API) handleCreateLesson(w http.ResponseWriter, r *http.Request) {
	var req createLessonRequest
	err := httpx.ReadJSON(r, &req)
	if err != nil {
		httpx.HandleErr(w, r, serr.BadRequest(err, msgBadJSON))
		return
	}

	l, err := api.lessons.CreateLesson(r.Context(), service.CreateLessonRequest{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	logChange(r, "lesson created", "lesson_id", l.ID)
	api.writeLesson(w, r, http.StatusCreated, l)
}

func (api *API) handleGetLesson(w http.ResponseWriter, r *http.Request) {
	id, err := idFromRequest(r, "lesson_id")
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	l, err := api.lessons.GetLesson(r.Context(), id)
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	api.writeLesson(w, r, http.StatusOK, l)
}

type updateLessonRequest struct {
	Title       *string          `json:"title"`
	Description optional[string] `json:"description"`
}

func (api *API) handleUpdateLesson(w http.ResponseWriter, r *http.Request) {
	id, err := idFromRequest(r, "lesson_id")
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	if _, err := api.lessons.GetLesson(r.Context(), id); err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	var req updateLessonRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		httpx.HandleErr(w, r, serr.BadRequest(err, msgBadJSON))
		return
	}

	update := service.UpdateLessonRequest{
		ID:    id,
		Title: req.Title,
	}
	if req.Description.Set {
		update.Description = lo.ToPtr(lo.FromPtr(req.Description.Value))
	}

	l, err := api.lessons.UpdateLesson(r.Context(), update)
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}
	logChange(r, "lesson updated", "lesson_id", id)

	api.writeLesson(w, r, http.StatusOK, l)
}

func (api *API) handleDeleteLesson(w http.ResponseWriter, r *http.Request) {
	id, err := idFromRequest(r, "lesson_id")
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	if err := api.lessons.DeleteLesson(r.Context(), id); err != nil {
		httpx.HandleErr(w, r, err)
		return
	}
	logChange(r, "lesson deleted", "lesson_id", id)

	w.WriteHeader(http.StatusNoContent)
}

func (api *API) writeLesson(w http.ResponseWriter, r *http.Request, status int, l model.Lesson) {
	if err := httpx.WriteJSON(w, status, api.lessonPayload(r, l)); err != nil {
		httpx.HandleErr(w, r, err)
	}
}
