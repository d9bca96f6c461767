package rest

import (
	"errors"
	"net/http"

	"github.com/gamma-omg/lexi-cards/internal/pkg/httpx"
	"github.com/gamma-omg/lexi-cards/internal/pkg/serr"
	"github.com/gamma-omg/lexi-cards/internal/services/lessons/internal/model"
	"github.com/gamma-omg/lexi-cards/internal/services/lessons/internal/service"
)

const uploadField = "file"

// saveUpload stores the multipart "file" field and returns its media path.
func (api *API) saveUpload(w http.ResponseWriter, r *http.Request, kind model.MediaKind) (string, error) {
	// room for the multipart envelope on top of the file itself
	r.Body = http.MaxBytesReader(w, r.Body, api.maxUploadSize+64<<10)

	f, _, err := r.FormFile(uploadField)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return "", serr.NewServiceError(err, http.StatusRequestEntityTooLarge, "file size exceeded")
		}
		return "", serr.BadRequest(err, "'%s' upload is required", uploadField)
	}
	defer f.Close()

	return api.media.Save(kind, http.MaxBytesReader(w, f, api.maxUploadSize))
}

func (api *API) handleUploadCover(w http.ResponseWriter, r *http.Request) {
	id, err := idFromRequest(r, "lesson_id")
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	rel, err := api.saveUpload(w, r, model.MediaCover)
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	resp, err := api.lessons.SetLessonCover(r.Context(), service.SetLessonCoverRequest{ID: id, Path: rel})
	if err != nil {
		api.discardMedia(r, rel)
		httpx.HandleErr(w, r, err)
		return
	}
	api.discardMedia(r, resp.Previous)
	logChange(r, "lesson cover set", "lesson_id", id, "path", rel)

	api.writeLesson(w, r, http.StatusOK, resp.Item)
}

func (api *API) handleClearCover(w http.ResponseWriter, r *http.Request) {
	id, err := idFromRequest(r, "lesson_id")
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	resp, err := api.lessons.SetLessonCover(r.Context(), service.SetLessonCoverRequest{ID: id})
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}
	api.discardMedia(r, resp.Previous)

	w.WriteHeader(http.StatusNoContent)
}

func (api *API) handleUploadCardMedia(kind model.MediaKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idFromRequest(r, "card_id")
		if err != nil {
			httpx.HandleErr(w, r, err)
			return
		}

		rel, err := api.saveUpload(w, r, kind)
		if err != nil {
			httpx.HandleErr(w, r, err)
			return
		}

		resp, err := api.cards.SetCardMedia(r.Context(), service.SetCardMediaRequest{ID: id, Kind: kind, Path: rel})
		if err != nil {
			api.discardMedia(r, rel)
			httpx.HandleErr(w, r, err)
			return
		}
		api.discardMedia(r, resp.Previous)
		logChange(r, "card media set", "card_id", id, "kind", kind, "path", rel)

		api.writeCard(w, r, http.StatusOK, resp.Item)
	}
}

func (api *API) handleClearCardMedia(kind model.MediaKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idFromRequest(r, "card_id")
		if err != nil {
			httpx.HandleErr(w, r, err)
			return
		}

		resp, err := api.cards.SetCardMedia(r.Context(), service.SetCardMediaRequest{ID: id, Kind: kind})
		if err != nil {
			httpx.HandleErr(w, r, err)
			return
		}
		api.discardMedia(r, resp.Previous)

		w.WriteHeader(http.StatusNoContent)
	}
}
