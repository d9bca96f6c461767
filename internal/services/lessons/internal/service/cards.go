package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/gamma-omg/lexi-cards/internal/pkg/serr"
	"github.com/gamma-omg/lexi-cards/internal/services/lessons/internal/model"
	"github.com/gamma-omg/lexi-cards/internal/services/lessons/internal/store"
)

const msgCardTextRequired = "'english_text' and 'translation' are required fields"

var cardOverrides = map[string]string{
	"english_text.required": msgCardTextRequired,
	"translation.required":  msgCardTextRequired,
}

type CardService struct {
	store store.Store
}

func NewCardService(st store.Store) *CardService {
	return &CardService{store: st}
}

type LessonCards struct {
	Lesson model.Lesson
	Cards  []model.Card
}

// ListCards returns the lesson with its cards ordered by (order, id).
func (s *CardService) ListCards(ctx context.Context, lessonID int64) (LessonCards, error) {
	l, err := s.store.GetLesson(ctx, lessonID)
	if err != nil {
		return LessonCards{}, lessonErr(err, lessonID)
	}

	cards, err := s.store.ListCards(ctx, lessonID)
	if err != nil {
		return LessonCards{}, fmt.Errorf("list cards: %w", err)
	}

	return LessonCards{Lesson: l, Cards: cards}, nil
}

func (s *CardService) GetCard(ctx context.Context, id int64) (model.Card, error) {
	c, err := s.store.GetCard(ctx, id)
	if err != nil {
		return c, cardErr(err, id)
	}

	return c, nil
}

type CreateCardRequest struct {
	LessonID    int64
	EnglishText string `field:"english_text" validate:"required,max=255"`
	Translation string `field:"translation" validate:"required,max=255"`
	Order       *int   `field:"order" validate:"omitnil,gte=0"`
}

// CreateCard adds a card to a lesson. Without an explicit order the card goes after
// the lesson's highest order, or gets order 1 in an empty lesson.
func (s *CardService) CreateCard(ctx context.Context, r CreateCardRequest) (model.Card, error) {
	if err := checkRequest(r, cardOverrides); err != nil {
		return model.Card{}, err
	}

	var card model.Card
	err := s.store.WithinTx(ctx, func(tx store.Store) error {
		if _, err := tx.GetLesson(ctx, r.LessonID); err != nil {
			return lessonErr(err, r.LessonID)
		}

		var order int
		if r.Order != nil {
			order = *r.Order
		} else {
			next, err := tx.NextCardOrder(ctx, r.LessonID)
			if err != nil {
				return fmt.Errorf("next card order: %w", err)
			}
			order = next
		}

		var err error
		card, err = tx.CreateCard(ctx, store.CreateCardRequest{
			LessonID:    r.LessonID,
			EnglishText: r.EnglishText,
			Translation: r.Translation,
			Order:       order,
		})
		if err != nil {
			return lessonErr(err, r.LessonID)
		}

		return nil
	})
	if err != nil {
		return card, fmt.Errorf("create card: %w", err)
	}

	return card, nil
}

// UpdateCardRequest holds the fields present in an update. Empty texts are ignored.
type UpdateCardRequest struct {
	ID          int64
	EnglishText *string `field:"english_text" validate:"omitnil,max=255"`
	Translation *string `field:"translation" validate:"omitnil,max=255"`
	Order       *int    `field:"order" validate:"omitnil,gte=0"`
}

func (s *CardService) UpdateCard(ctx context.Context, r UpdateCardRequest) (model.Card, error) {
	if err := checkRequest(r, nil); err != nil {
		return model.Card{}, err
	}

	var updated model.Card
	err := s.store.WithinTx(ctx, func(tx store.Store) error {
		c, err := tx.GetCard(ctx, r.ID)
		if err != nil {
			return cardErr(err, r.ID)
		}

		if r.EnglishText != nil && *r.EnglishText != "" {
			c.EnglishText = *r.EnglishText
		}
		if r.Translation != nil && *r.Translation != "" {
			c.Translation = *r.Translation
		}
		if r.Order != nil {
			c.Order = *r.Order
		}

		updated, err = tx.UpdateCard(ctx, updateCardFrom(c))
		if err != nil {
			return cardErr(err, r.ID)
		}

		return nil
	})
	if err != nil {
		return updated, fmt.Errorf("update card: %w", err)
	}

	return updated, nil
}

func (s *CardService) DeleteCard(ctx context.Context, id int64) error {
	if err := s.store.DeleteCard(ctx, id); err != nil {
		return cardErr(err, id)
	}

	return nil
}

type SetCardMediaRequest struct {
	ID   int64
	Kind model.MediaKind
	Path string
}

// SetCardMedia points the card's image or audio slot at a stored file, or clears it
// when Path is empty. The previous path is returned.
func (s *CardService) SetCardMedia(ctx context.Context, r SetCardMediaRequest) (SetMediaResponse[model.Card], error) {
	var resp SetMediaResponse[model.Card]
	if r.Kind != model.MediaImage && r.Kind != model.MediaAudio {
		return resp, serr.BadRequest(nil, "unsupported card media %q", r.Kind)
	}

	err := s.store.WithinTx(ctx, func(tx store.Store) error {
		c, err := tx.GetCard(ctx, r.ID)
		if err != nil {
			return cardErr(err, r.ID)
		}

		if r.Kind == model.MediaImage {
			resp.Previous, c.Image = c.Image, r.Path
		} else {
			resp.Previous, c.Audio = c.Audio, r.Path
		}

		resp.Item, err = tx.UpdateCard(ctx, updateCardFrom(c))
		if err != nil {
			return cardErr(err, r.ID)
		}

		return nil
	})
	if err != nil {
		return resp, fmt.Errorf("set card %s: %w", r.Kind, err)
	}

	return resp, nil
}

func updateCardFrom(c model.Card) store.UpdateCardRequest {
	return store.UpdateCardRequest{
		ID:          c.ID,
		EnglishText: c.EnglishText,
		Translation: c.Translation,
		Image:       c.Image,
		Audio:       c.Audio,
		Order:       c.Order,
	}
}

func cardErr(err error, id int64) error {
	if errors.Is(err, store.ErrNotFound) {
		return serr.NotFound(err, "card not found").With("card_id", id)
	}

	var se *serr.ServiceError
	if errors.As(err, &se) {
		return err
	}

	return fmt.Errorf("card %d: %w", id, err)
}
