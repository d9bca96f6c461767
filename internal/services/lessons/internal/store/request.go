package store

type CreateLessonRequest struct {
	Title       string
	Description string
	CoverImage  string
}

// UpdateLessonRequest replaces every mutable column of the lesson.
type UpdateLessonRequest struct {
	ID          int64
	Title       string
	Description string
	CoverImage  string
}

type CreateCardRequest struct {
	LessonID    int64
	EnglishText string
	Translation string
	Image       string
	Audio       string
	Order       int
}

// UpdateCardRequest replaces every mutable column of the card.
type UpdateCardRequest struct {
	ID          int64
	EnglishText string
	Translation string
	Image       string
	Audio       string
	Order       int
}

type ProgressKey struct {
	Profile  string
	LessonID int64
}

type UpdateProgressRequest struct {
	Profile          string
	LessonID         int64
	CurrentCardIndex int
	Completed        bool
}
