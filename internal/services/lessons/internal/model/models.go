package model

import "time"

// Lesson is a titled group of cards. CoverImage is a media path relative to the
// media root, empty when no cover is attached.
type Lesson struct {
	ID          int64     `db:"id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	CoverImage  string    `db:"cover_image"`
	TotalCards  int       `db:"total_cards"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type Card struct {
	ID          int64     `db:"id"`
	LessonID    int64     `db:"lesson_id"`
	EnglishText string    `db:"english_text"`
	Translation string    `db:"translation"`
	Image       string    `db:"image"`
	Audio       string    `db:"audio"`
	Order       int       `db:"order"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// Progress is the position of one learner profile within one lesson.
type Progress struct {
	ID               int64     `db:"id"`
	Profile          string    `db:"profile"`
	LessonID         int64     `db:"lesson_id"`
	CurrentCardIndex int       `db:"current_card_index"`
	Completed        bool      `db:"completed"`
	StartedAt        time.Time `db:"started_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

// MediaKind names a file slot on a lesson or card.
type MediaKind string

const (
	MediaCover MediaKind = "cover"
	MediaImage MediaKind = "image"
	MediaAudio MediaKind = "audio"
)

// Dir is the directory under the media root where files of this kind are kept.
func (k MediaKind) Dir() string {
	switch k {
	case MediaCover:
		return "lessons/covers"
	case MediaImage:
		return "cards/images"
	case MediaAudio:
		return "cards/audio"
	default:
		return "misc"
	}
}
