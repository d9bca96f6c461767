package rest

import (
	"net/http"

	"github.com/gamma-omg/lexi-cards/internal/pkg/httpx"
	"github.com/gamma-omg/lexi-cards/internal/pkg/serr"
	"github.com/gamma-omg/lexi-cards/internal/services/lessons/internal/service"
	"github.com/samber/lo"
)

func (api *API) handleStudyLesson(w http.ResponseWriter, r *http.Request) {
	lessonID, err := idFromRequest(r, "lesson_id")
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	resp, err := api.progress.StudyLesson(r.Context(), service.StudyLessonRequest{
		LessonID: lessonID,
		Profile:  r.URL.Query().Get("profile"),
	})
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	out := studyLessonResponse{
		Lesson: api.lessonPayload(r, resp.Lesson),
		Cards:  api.cardPayloads(r, resp.Cards),
	}
	if resp.Progress != nil {
		out.Progress = lo.ToPtr(statusToPayload(*resp.Progress))
	}

	if err := httpx.WriteJSON(w, http.StatusOK, out); err != nil {
		httpx.HandleErr(w, r, err)
		return
	}
}

func (api *API) handleGetProgress(w http.ResponseWriter, r *http.Request) {
	lessonID, err := idFromRequest(r, "lesson_id")
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	profile := r.URL.Query().Get("profile")
	if profile == "" {
		httpx.HandleErr(w, r, serr.BadRequest(nil, "'profile' query parameter is required"))
		return
	}

	status, err := api.progress.GetProgress(r.Context(), service.GetProgressRequest{
		LessonID: lessonID,
		Profile:  profile,
	})
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	if err := httpx.WriteJSON(w, http.StatusOK, statusToPayload(status)); err != nil {
		httpx.HandleErr(w, r, err)
		return
	}
}

type updateProgressRequest struct {
	Profile          string `json:"profile"`
	CurrentCardIndex *int   `json:"current_card_index"`
	Completed        *bool  `json:"completed"`
}

func (api *API) handleUpdateProgress(w http.ResponseWriter, r *http.Request) {
	lessonID, err := idFromRequest(r, "lesson_id")
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	if _, err := api.lessons.GetLesson(r.Context(), lessonID); err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	var req updateProgressRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		httpx.HandleErr(w, r, serr.BadRequest(err, msgBadJSON))
		return
	}

	status, err := api.progress.UpdateProgress(r.Context(), service.UpdateProgressRequest{
		LessonID:         lessonID,
		Profile:          req.Profile,
		CurrentCardIndex: req.CurrentCardIndex,
		Completed:        req.Completed,
	})
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	if err := httpx.WriteJSON(w, http.StatusOK, statusToPayload(status)); err != nil {
		httpx.HandleErr(w, r, err)
		return
	}
}
