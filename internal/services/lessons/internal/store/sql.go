package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gamma-omg/lexi-cards/internal/services/lessons/internal/model"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const errForeignKeyViolation pq.ErrorCode = "23503"

// dbtx is the part of sqlx shared by *sqlx.DB and *sqlx.Tx.
type dbtx interface {
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowxContext(ctx context.Context, query string, args ...any) *sqlx.Row
	Rebind(query string) string
}

// SQLStore implements Store on top of PostgreSQL or SQLite. Queries are written
// with ? placeholders and rebound for the active driver.
type SQLStore struct {
	db  dbtx
	now func() time.Time
}

func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{
		db: db,
		now: func() time.Time {
			return time.Now().UTC().Truncate(time.Microsecond)
		},
	}
}

// Ping reports whether the underlying database is reachable.
func (s *SQLStore) Ping(ctx context.Context) error {
	db, ok := s.db.(*sqlx.DB)
	if !ok {
		return nil
	}

	return db.PingContext(ctx)
}

const lessonColumns = `l.id, l.title, l.description, l.cover_image, l.created_at, l.updated_at,
	(SELECT COUNT(*) FROM cards c WHERE c.lesson_id = l.id) AS total_cards`

const cardColumns = `id, lesson_id, english_text, translation, image, audio, "order", created_at, updated_at`

const progressColumns = `id, profile, lesson_id, current_card_index, completed, started_at, updated_at`

func (s *SQLStore) ListLessons(ctx context.Context) ([]model.Lesson, error) {
	lessons := []model.Lesson{}
	err := s.db.SelectContext(ctx, &lessons, "SELECT "+lessonColumns+" FROM lessons l ORDER BY l.title, l.id")
	if err != nil {
		return nil, fmt.Errorf("select lessons: %w", err)
	}

	return lessons, nil
}

func (s *SQLStore) GetLesson(ctx context.Context, id int64) (model.Lesson, error) {
	var l model.Lesson
	err := s.db.GetContext(ctx, &l, s.db.Rebind("SELECT "+lessonColumns+" FROM lessons l WHERE l.id = ?"), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return l, ErrNotFound
		}

		return l, fmt.Errorf("select lesson: %w", err)
	}

	return l, nil
}

func (s *SQLStore) CreateLesson(ctx context.Context, r CreateLessonRequest) (model.Lesson, error) {
	now := s.now()
	l := model.Lesson{
		Title:       r.Title,
		Description: r.Description,
		CoverImage:  r.CoverImage,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	row := s.db.QueryRowxContext(ctx, s.db.Rebind(
		`INSERT INTO lessons (title, description, cover_image, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?) RETURNING id`),
		l.Title, l.Description, l.CoverImage, l.CreatedAt, l.UpdatedAt)
	if err := row.Scan(&l.ID); err != nil {
		return l, fmt.Errorf("insert lesson: %w", err)
	}

	return l, nil
}

func (s *SQLStore) UpdateLesson(ctx context.Context, r UpdateLessonRequest) (model.Lesson, error) {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(
		`UPDATE lessons SET title = ?, description = ?, cover_image = ?, updated_at = ? WHERE id = ?`),
		r.Title, r.Description, r.CoverImage, s.now(), r.ID)
	if err != nil {
		return model.Lesson{}, fmt.Errorf("update lesson: %w", err)
	}

	if err := expectAffected(res); err != nil {
		return model.Lesson{}, err
	}

	return s.GetLesson(ctx, r.ID)
}

func (s *SQLStore) DeleteLesson(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind("DELETE FROM lessons WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("delete lesson: %w", err)
	}

	return expectAffected(res)
}

func (s *SQLStore) ListCards(ctx context.Context, lessonID int64) ([]model.Card, error) {
	cards := []model.Card{}
	err := s.db.SelectContext(ctx, &cards, s.db.Rebind(
		"SELECT "+cardColumns+` FROM cards WHERE lesson_id = ? ORDER BY "order", id`), lessonID)
	if err != nil {
		return nil, fmt.Errorf("select cards: %w", err)
	}

	return cards, nil
}

func (s *SQLStore) GetCard(ctx context.Context, id int64) (model.Card, error) {
	var c model.Card
	err := s.db.GetContext(ctx, &c, s.db.Rebind("SELECT "+cardColumns+" FROM cards WHERE id = ?"), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c, ErrNotFound
		}

		return c, fmt.Errorf("select card: %w", err)
	}

	return c, nil
}

// NextCardOrder returns one past the highest order in the lesson, or 1 for an empty lesson.
func (s *SQLStore) NextCardOrder(ctx context.Context, lessonID int64) (int, error) {
	var next int
	err := s.db.GetContext(ctx, &next, s.db.Rebind(
		`SELECT COALESCE(MAX("order"), 0) + 1 FROM cards WHERE lesson_id = ?`), lessonID)
	if err != nil {
		return 0, fmt.Errorf("select max card order: %w", err)
	}

	return next, nil
}

func (s *SQLStore) CreateCard(ctx context.Context, r CreateCardRequest) (model.Card, error) {
	now := s.now()
	c := model.Card{
		LessonID:    r.LessonID,
		EnglishText: r.EnglishText,
		Translation: r.Translation,
		Image:       r.Image,
		Audio:       r.Audio,
		Order:       r.Order,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	row := s.db.QueryRowxContext(ctx, s.db.Rebind(
		`INSERT INTO cards (lesson_id, english_text, translation, image, audio, "order", created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`),
		c.LessonID, c.EnglishText, c.Translation, c.Image, c.Audio, c.Order, c.CreatedAt, c.UpdatedAt)
	if err := row.Scan(&c.ID); err != nil {
		if isForeignKeyErr(err) {
			return c, ErrNotFound
		}

		return c, fmt.Errorf("insert card: %w", err)
	}

	return c, nil
}

func (s *SQLStore) UpdateCard(ctx context.Context, r UpdateCardRequest) (model.Card, error) {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(
		`UPDATE cards SET english_text = ?, translation = ?, image = ?, audio = ?, "order" = ?, updated_at = ?
		 WHERE id = ?`),
		r.EnglishText, r.Translation, r.Image, r.Audio, r.Order, s.now(), r.ID)
	if err != nil {
		return model.Card{}, fmt.Errorf("update card: %w", err)
	}

	if err := expectAffected(res); err != nil {
		return model.Card{}, err
	}

	return s.GetCard(ctx, r.ID)
}

func (s *SQLStore) DeleteCard(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind("DELETE FROM cards WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("delete card: %w", err)
	}

	return expectAffected(res)
}

func (s *SQLStore) GetProgress(ctx context.Context, r ProgressKey) (model.Progress, error) {
	var p model.Progress
	err := s.db.GetContext(ctx, &p, s.db.Rebind(
		"SELECT "+progressColumns+" FROM study_progress WHERE profile = ? AND lesson_id = ?"),
		r.Profile, r.LessonID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return p, ErrNotFound
		}

		return p, fmt.Errorf("select progress: %w", err)
	}

	return p, nil
}

// GetOrCreateProgress inserts a fresh row for the key unless one exists, then reads it back.
// Concurrent callers converge on the same row through the unique (profile, lesson_id) key.
func (s *SQLStore) GetOrCreateProgress(ctx context.Context, r ProgressKey) (model.Progress, error) {
	now := s.now()
	_, err := s.db.ExecContext(ctx, s.db.Rebind(
		`INSERT INTO study_progress (profile, lesson_id, current_card_index, completed, started_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (profile, lesson_id) DO NOTHING`),
		r.Profile, r.LessonID, 0, false, now, now)
	if err != nil {
		if isForeignKeyErr(err) {
			return model.Progress{}, ErrNotFound
		}

		return model.Progress{}, fmt.Errorf("insert progress: %w", err)
	}

	return s.GetProgress(ctx, r)
}

func (s *SQLStore) UpdateProgress(ctx context.Context, r UpdateProgressRequest) (model.Progress, error) {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(
		`UPDATE study_progress SET current_card_index = ?, completed = ?, updated_at = ?
		 WHERE profile = ? AND lesson_id = ?`),
		r.CurrentCardIndex, r.Completed, s.now(), r.Profile, r.LessonID)
	if err != nil {
		return model.Progress{}, fmt.Errorf("update progress: %w", err)
	}

	if err := expectAffected(res); err != nil {
		return model.Progress{}, err
	}

	return s.GetProgress(ctx, ProgressKey{Profile: r.Profile, LessonID: r.LessonID})
}

func (s *SQLStore) ListProfileProgress(ctx context.Context, profile string) ([]model.Progress, error) {
	progress := []model.Progress{}
	err := s.db.SelectContext(ctx, &progress, s.db.Rebind(
		"SELECT "+progressColumns+" FROM study_progress WHERE profile = ? ORDER BY lesson_id"), profile)
	if err != nil {
		return nil, fmt.Errorf("select profile progress: %w", err)
	}

	return progress, nil
}

func (s *SQLStore) WithinTx(ctx context.Context, fn func(tx Store) error) error {
	db, ok := s.db.(*sqlx.DB)
	if !ok {
		return errors.New("already in transaction")
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	sx := &SQLStore{db: tx, now: s.now}
	if err = fn(sx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback: %v after: %w", rbErr, err)
		}

		return fmt.Errorf("transaction: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	return nil
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	return nil
}

func isForeignKeyErr(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == errForeignKeyViolation
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY ||
			(code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(liteErr.Error(), "FOREIGN KEY"))
	}

	return false
}
