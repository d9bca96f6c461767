package rest

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/gamma-omg/lexi-cards/internal/services/lessons/internal/model"
	"github.com/gamma-omg/lexi-cards/internal/services/lessons/internal/service"
	"github.com/samber/lo"
)

const timeFormat = "2006-01-02T15:04:05.999999Z07:00"

// optional records whether a JSON field was present, even when its value was null.
type optional[T any] struct {
	Set   bool
	Value *T
}

func (o *optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Value = nil
		return nil
	}

	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

type lessonPayload struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	TotalCards  int     `json:"total_cards"`
	CoverImage  *string `json:"cover_image"`
}

type lessonWithProgressPayload struct {
	lessonPayload
	Progress *progressPayload `json:"progress"`
}

type cardPayload struct {
	ID          int64   `json:"id"`
	LessonID    int64   `json:"lesson_id"`
	EnglishText string  `json:"english_text"`
	Translation string  `json:"translation"`
	Order       int     `json:"order"`
	Image       *string `json:"image"`
	Audio       *string `json:"audio"`
}

type progressPayload struct {
	Profile          string `json:"profile"`
	LessonID         int64  `json:"lesson_id"`
	CurrentCardIndex int    `json:"current_card_index"`
	Completed        bool   `json:"completed"`
	UpdatedAt        string `json:"updated_at"`
}

type progressStatusPayload struct {
	progressPayload
	TotalCards int `json:"total_cards"`
}

type lessonListResponse[T any] struct {
	Lessons []T `json:"lessons"`
}

type lessonCardsResponse struct {
	Lesson lessonPayload `json:"lesson"`
	Cards  []cardPayload `json:"cards"`
}

type studyLessonResponse struct {
	Lesson   lessonPayload          `json:"lesson"`
	Cards    []cardPayload          `json:"cards"`
	Progress *progressStatusPayload `json:"progress"`
}

// mediaURL renders a stored media path as an absolute URL, or nil when there is no file.
func (api *API) mediaURL(r *http.Request, rel string) *string {
	if rel == "" {
		return nil
	}

	if api.mediaBase != nil {
		return lo.ToPtr(api.mediaBase.JoinPath(rel).String())
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme, _, _ = strings.Cut(proto, ",")
		scheme = strings.TrimSpace(scheme)
	}

	u := url.URL{
		Scheme: scheme,
		Host:   r.Host,
		Path:   MediaPrefix + rel,
	}
	return lo.ToPtr(u.String())
}

func (api *API) lessonPayload(r *http.Request, l model.Lesson) lessonPayload {
	return lessonPayload{
		ID:          l.ID,
		Title:       l.Title,
		Description: l.Description,
		TotalCards:  l.TotalCards,
		CoverImage:  api.mediaURL(r, l.CoverImage),
	}
}

func (api *API) cardPayload(r *http.Request, c model.Card) cardPayload {
	return cardPayload{
		ID:          c.ID,
		LessonID:    c.LessonID,
		EnglishText: c.EnglishText,
		Translation: c.Translation,
		Order:       c.Order,
		Image:       api.mediaURL(r, c.Image),
		Audio:       api.mediaURL(r, c.Audio),
	}
}

func (api *API) cardPayloads(r *http.Request, cards []model.Card) []cardPayload {
	return lo.Map(cards, func(c model.Card, _ int) cardPayload {
		return api.cardPayload(r, c)
	})
}

func progressToPayload(p model.Progress) progressPayload {
	return progressPayload{
		Profile:          p.Profile,
		LessonID:         p.LessonID,
		CurrentCardIndex: p.CurrentCardIndex,
		Completed:        p.Completed,
		UpdatedAt:        p.UpdatedAt.Format(timeFormat),
	}
}

func statusToPayload(s service.ProgressStatus) progressStatusPayload {
	return progressStatusPayload{
		progressPayload: progressToPayload(s.Progress),
		TotalCards:      s.TotalCards,
	}
}
