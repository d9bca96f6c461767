package service

import (
	"context"
	"fmt"

	"github.com/gamma-omg/lexi-cards/internal/services/lessons/internal/model"
	"github.com/gamma-omg/lexi-cards/internal/services/lessons/internal/store"
)

// ProgressService serves the child-facing study flow.
type ProgressService struct {
	store store.Store
}

func NewProgressService(st store.Store) *ProgressService {
	return &ProgressService{store: st}
}

// ProgressStatus is a progress record together with the size of its lesson.
type ProgressStatus struct {
	Progress   model.Progress
	TotalCards int
}

type StudyLessonRequest struct {
	LessonID int64
	Profile  string `field:"profile" validate:"max=255"`
}

type StudyLessonResponse struct {
	Lesson   model.Lesson
	Cards    []model.Card
	Progress *ProgressStatus
}

// StudyLesson returns a lesson with its cards. With a profile, the profile's progress
// is fetched and created on first access.
func (s *ProgressService) StudyLesson(ctx context.Context, r StudyLessonRequest) (StudyLessonResponse, error) {
	if err := checkRequest(r, nil); err != nil {
		return StudyLessonResponse{}, err
	}

	l, err := s.store.GetLesson(ctx, r.LessonID)
	if err != nil {
		return StudyLessonResponse{}, lessonErr(err, r.LessonID)
	}

	cards, err := s.store.ListCards(ctx, r.LessonID)
	if err != nil {
		return StudyLessonResponse{}, fmt.Errorf("list cards: %w", err)
	}

	resp := StudyLessonResponse{Lesson: l, Cards: cards}
	if r.Profile == "" {
		return resp, nil
	}

	p, err := s.store.GetOrCreateProgress(ctx, store.ProgressKey{Profile: r.Profile, LessonID: r.LessonID})
	if err != nil {
		return resp, lessonErr(err, r.LessonID)
	}

	resp.Progress = &ProgressStatus{Progress: p, TotalCards: len(cards)}
	return resp, nil
}

type GetProgressRequest struct {
	LessonID int64
	Profile  string `field:"profile" validate:"required,max=255"`
}

// GetProgress returns the profile's progress in the lesson, creating it at index 0 on first access.
func (s *ProgressService) GetProgress(ctx context.Context, r GetProgressRequest) (ProgressStatus, error) {
	if err := checkRequest(r, nil); err != nil {
		return ProgressStatus{}, err
	}

	l, err := s.store.GetLesson(ctx, r.LessonID)
	if err != nil {
		return ProgressStatus{}, lessonErr(err, r.LessonID)
	}

	p, err := s.store.GetOrCreateProgress(ctx, store.ProgressKey{Profile: r.Profile, LessonID: r.LessonID})
	if err != nil {
		return ProgressStatus{}, lessonErr(err, r.LessonID)
	}

	return ProgressStatus{Progress: p, TotalCards: l.TotalCards}, nil
}

type UpdateProgressRequest struct {
	LessonID         int64
	Profile          string `field:"profile" validate:"required,max=255"`
	CurrentCardIndex *int
	Completed        *bool
}

// UpdateProgress applies the present fields to the profile's progress, creating it first if needed.
// A negative card index is stored as 0.
func (s *ProgressService) UpdateProgress(ctx context.Context, r UpdateProgressRequest) (ProgressStatus, error) {
	if err := checkRequest(r, nil); err != nil {
		return ProgressStatus{}, err
	}

	var status ProgressStatus
	err := s.store.WithinTx(ctx, func(tx store.Store) error {
		l, err := tx.GetLesson(ctx, r.LessonID)
		if err != nil {
			return lessonErr(err, r.LessonID)
		}

		key := store.ProgressKey{Profile: r.Profile, LessonID: r.LessonID}
		p, err := tx.GetOrCreateProgress(ctx, key)
		if err != nil {
			return lessonErr(err, r.LessonID)
		}

		if r.CurrentCardIndex != nil {
			p.CurrentCardIndex = max(0, *r.CurrentCardIndex)
		}
		if r.Completed != nil {
			p.Completed = *r.Completed
		}

		p, err = tx.UpdateProgress(ctx, store.UpdateProgressRequest{
			Profile:          p.Profile,
			LessonID:         p.LessonID,
			CurrentCardIndex: p.CurrentCardIndex,
			Completed:        p.Completed,
		})
		if err != nil {
			return fmt.Errorf("save progress: %w", err)
		}

		status = ProgressStatus{Progress: p, TotalCards: l.TotalCards}
		return nil
	})
	if err != nil {
		return status, fmt.Errorf("update progress: %w", err)
	}

	return status, nil
}
