package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/gamma-omg/lexi-cards/internal/pkg/serr"
	"github.com/gamma-omg/lexi-cards/internal/services/lessons/internal/model"
	"github.com/gamma-omg/lexi-cards/internal/services/lessons/internal/store"
	"github.com/samber/lo"
)

// LessonService manages lessons and answers lesson listings for both audiences.
type LessonService struct {
	store store.Store
}

func NewLessonService(st store.Store) *LessonService {
	return &LessonService{store: st}
}

type ListLessonsRequest struct {
	Profile string
}

type LessonSummary struct {
	Lesson   model.Lesson
	Progress *model.Progress
}

// ListLessonsResponse carries WithProgress so callers can tell a lesson without
// progress from a listing that was not asked for progress at all.
type ListLessonsResponse struct {
	Lessons      []LessonSummary
	WithProgress bool
}

// ListLessons returns all lessons ordered by title. When a profile is given, each lesson
// carries that profile's progress if any. No progress rows are created.
func (s *LessonService) ListLessons(ctx context.Context, r ListLessonsRequest) (ListLessonsResponse, error) {
	lessons, err := s.store.ListLessons(ctx)
	if err != nil {
		return ListLessonsResponse{}, fmt.Errorf("list lessons: %w", err)
	}

	byLesson := map[int64]model.Progress{}
	if r.Profile != "" {
		progress, err := s.store.ListProfileProgress(ctx, r.Profile)
		if err != nil {
			return ListLessonsResponse{}, fmt.Errorf("list progress: %w", err)
		}

		byLesson = lo.KeyBy(progress, func(p model.Progress) int64 { return p.LessonID })
	}

	return ListLessonsResponse{
		WithProgress: r.Profile != "",
		Lessons: lo.Map(lessons, func(l model.Lesson, _ int) LessonSummary {
			summary := LessonSummary{Lesson: l}
			if p, ok := byLesson[l.ID]; ok {
				summary.Progress = &p
			}
			return summary
		}),
	}, nil
}

func (s *LessonService) GetLesson(ctx context.Context, id int64) (model.Lesson, error) {
	l, err := s.store.GetLesson(ctx, id)
	if err != nil {
		return l, lessonErr(err, id)
	}

	return l, nil
}

type CreateLessonRequest struct {
	Title       string `field:"title" validate:"required,max=255"`
	Description string `field:"description"`
}

// CreateLesson adds a lesson. A missing title is rejected with status 400.
func (s *LessonService) CreateLesson(ctx context.Context, r CreateLessonRequest) (model.Lesson, error) {
	if err := checkRequest(r, nil); err != nil {
		return model.Lesson{}, err
	}

	l, err := s.store.CreateLesson(ctx, store.CreateLessonRequest{
		Title:       r.Title,
		Description: r.Description,
	})
	if err != nil {
		return l, fmt.Errorf("create lesson: %w", err)
	}

	return l, nil
}

// UpdateLessonRequest holds the fields present in an update. An empty Title is
// ignored; a non-nil Description always replaces the current one.
type UpdateLessonRequest struct {
	ID          int64
	Title       *string `field:"title" validate:"omitnil,max=255"`
	Description *string `field:"description"`
}

func (s *LessonService) UpdateLesson(ctx context.Context, r UpdateLessonRequest) (model.Lesson, error) {
	if err := checkRequest(r, nil); err != nil {
		return model.Lesson{}, err
	}

	var updated model.Lesson
	err := s.store.WithinTx(ctx, func(tx store.Store) error {
		l, err := tx.GetLesson(ctx, r.ID)
		if err != nil {
			return lessonErr(err, r.ID)
		}

		if r.Title != nil && *r.Title != "" {
			l.Title = *r.Title
		}
		if r.Description != nil {
			l.Description = *r.Description
		}

		updated, err = tx.UpdateLesson(ctx, store.UpdateLessonRequest{
			ID:          l.ID,
			Title:       l.Title,
			Description: l.Description,
			CoverImage:  l.CoverImage,
		})
		if err != nil {
			return lessonErr(err, r.ID)
		}

		return nil
	})
	if err != nil {
		return updated, fmt.Errorf("update lesson: %w", err)
	}

	return updated, nil
}

// DeleteLesson removes the lesson together with its cards and progress.
func (s *LessonService) DeleteLesson(ctx context.Context, id int64) error {
	if err := s.store.DeleteLesson(ctx, id); err != nil {
		return lessonErr(err, id)
	}

	return nil
}

type SetLessonCoverRequest struct {
	ID   int64
	Path string
}

type SetMediaResponse[T any] struct {
	Item     T
	Previous string
}

// SetLessonCover points the lesson at a stored cover file, or clears it when Path is empty.
// The previous path is returned so the caller can release the old file.
func (s *LessonService) SetLessonCover(ctx context.Context, r SetLessonCoverRequest) (SetMediaResponse[model.Lesson], error) {
	var resp SetMediaResponse[model.Lesson]
	err := s.store.WithinTx(ctx, func(tx store.Store) error {
		l, err := tx.GetLesson(ctx, r.ID)
		if err != nil {
			return lessonErr(err, r.ID)
		}

		resp.Previous = l.CoverImage
		resp.Item, err = tx.UpdateLesson(ctx, store.UpdateLessonRequest{
			ID:          l.ID,
			Title:       l.Title,
			Description: l.Description,
			CoverImage:  r.Path,
		})
		if err != nil {
			return lessonErr(err, r.ID)
		}

		return nil
	})
	if err != nil {
		return resp, fmt.Errorf("set lesson cover: %w", err)
	}

	return resp, nil
}

func lessonErr(err error, id int64) error {
	if errors.Is(err, store.ErrNotFound) {
		return serr.NotFound(err, "lesson not found").With("lesson_id", id)
	}

	var se *serr.ServiceError
	if errors.As(err, &se) {
		return err
	}

	return fmt.Errorf("lesson %d: %w", id, err)
}
