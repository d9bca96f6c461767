package rest

import (
	"net/http"

	"github.com/gamma-omg/lexi-cards/internal/pkg/httpx"
	"github.com/gamma-omg/lexi-cards/internal/pkg/serr"
	"github.com/gamma-omg/lexi-cards/internal/services/lessons/internal/model"
	"github.com/gamma-omg/lexi-cards/internal/services/lessons/internal/service"
)

func (api *API) handleListCards(w http.ResponseWriter, r *http.Request) {
	lessonID, err := idFromRequest(r, "lesson_id")
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	resp, err := api.cards.ListCards(r.Context(), lessonID)
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	err = httpx.WriteJSON(w, http.StatusOK, lessonCardsResponse{
		Lesson: api.lessonPayload(r, resp.Lesson),
		Cards:  api.cardPayloads(r, resp.Cards),
	})
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}
}

type createCardRequest struct {
	EnglishText string `json:"english_text"`
	Translation string `json:"translation"`
	Order       *int   `json:"order"`
}

func (api *API) handleCreateCard(w http.ResponseWriter, r *http.Request) {
	lessonID, err := idFromRequest(r, "lesson_id")
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	if _, err := api.lessons.GetLesson(r.Context(), lessonID); err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	var req createCardRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		httpx.HandleErr(w, r, serr.BadRequest(err, msgBadJSON))
		return
	}

	c, err := api.cards.CreateCard(r.Context(), service.CreateCardRequest{
		LessonID:    lessonID,
		EnglishText: req.EnglishText,
		Translation: req.Translation,
		Order:       req.Order,
	})
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	logChange(r, "card created", "lesson_id", lessonID, "card_id", c.ID)
	api.writeCard(w, r, http.StatusCreated, c)
}

func (api *API) handleGetCard(w http.ResponseWriter, r *http.Request) {
	id, err := idFromRequest(r, "card_id")
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	c, err := api.cards.GetCard(r.Context(), id)
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	api.writeCard(w, r, http.StatusOK, c)
}

type updateCardRequest struct {
	EnglishText *string `json:"english_text"`
	Translation *string `json:"translation"`
	Order       *int    `json:"order"`
}

func (api *API) handleUpdateCard(w http.ResponseWriter, r *http.Request) {
	id, err := idFromRequest(r, "card_id")
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	if _, err := api.cards.GetCard(r.Context(), id); err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	var req updateCardRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		httpx.HandleErr(w, r, serr.BadRequest(err, msgBadJSON))
		return
	}

	c, err := api.cards.UpdateCard(r.Context(), service.UpdateCardRequest{
		ID:          id,
		EnglishText: req.EnglishText,
		Translation: req.Translation,
		Order:       req.Order,
	})
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}
	logChange(r, "card updated", "card_id", id)

	api.writeCard(w, r, http.StatusOK, c)
}

func (api *API) handleDeleteCard(w http.ResponseWriter, r *http.Request) {
	id, err := idFromRequest(r, "card_id")
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	if err := api.cards.DeleteCard(r.Context(), id); err != nil {
		httpx.HandleErr(w, r, err)
		return
	}
	logChange(r, "card deleted", "card_id", id)

	w.WriteHeader(http.StatusNoContent)
}

func (api *API) writeCard(w http.ResponseWriter, r *http.Request, status int, c model.Card) {
	if err := httpx.WriteJSON(w, status, api.cardPayload(r, c)); err != nil {
		httpx.HandleErr(w, r, err)
	}
}
