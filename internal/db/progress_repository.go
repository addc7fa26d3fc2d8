package db

import (
	"database/sql"

	"github.com/ad/go-eduhub/internal/models"
	"github.com/google/uuid"
)

type ProgressRepository struct {
	queue *Queue
}

func NewProgressRepository(queue *Queue) *ProgressRepository {
	return &ProgressRepository{queue: queue}
}

// Upsert writes or replaces the record keyed by (user, course, lesson).
// Last-writer-wins by recency: a write whose UpdatedAt is older than the
// stored record's is dropped, and the stored record is returned with
// applied=false. The read-check-write runs as one queue task, so concurrent
// upserts for the same triple cannot interleave.
func (r *ProgressRepository) Upsert(p *models.UserProgress) (*models.UserProgress, bool, error) {
	record := *p
	if record.Completed {
		completedAt := record.UpdatedAt
		record.CompletedAt = &completedAt
	} else {
		record.CompletedAt = nil
	}

	result, err := r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		existing, err := getByTriple(db, record.UserID, record.CourseID, record.LessonID)
		if err != nil && err != sql.ErrNoRows {
			return nil, err
		}

		if existing != nil {
			if existing.UpdatedAt.After(record.UpdatedAt) {
				return &upsertOutcome{record: existing, applied: false}, nil
			}
			record.ID = existing.ID
			_, err = db.Exec(`
				UPDATE user_progress SET completed = ?, score = ?, completed_at = ?, updated_at = ?
				WHERE user_id = ? AND course_id = ? AND lesson_id = ?
			`, record.Completed, record.Score, record.CompletedAt, record.UpdatedAt,
				record.UserID, record.CourseID, record.LessonID)
			if err != nil {
				return nil, err
			}
			return &upsertOutcome{record: &record, applied: true}, nil
		}

		record.ID = uuid.NewString()
		_, err = db.Exec(`
			INSERT INTO user_progress (id, user_id, course_id, lesson_id, completed, score, completed_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, record.ID, record.UserID, record.CourseID, record.LessonID,
			record.Completed, record.Score, record.CompletedAt, record.UpdatedAt)
		if err != nil {
			return nil, err
		}
		return &upsertOutcome{record: &record, applied: true}, nil
	})
	if err != nil {
		return nil, false, err
	}
	outcome := result.(*upsertOutcome)
	return outcome.record, outcome.applied, nil
}

type upsertOutcome struct {
	record  *models.UserProgress
	applied bool
}

func getByTriple(db *sql.DB, userID, courseID, lessonID string) (*models.UserProgress, error) {
	row := db.QueryRow(`
		SELECT id, user_id, course_id, lesson_id, completed, score, completed_at, updated_at
		FROM user_progress WHERE user_id = ? AND course_id = ? AND lesson_id = ?
	`, userID, courseID, lessonID)
	return scanProgress(row)
}

func scanProgress(row rowScanner) (*models.UserProgress, error) {
	var p models.UserProgress
	var score sql.NullFloat64
	var completedAt sql.NullTime
	err := row.Scan(&p.ID, &p.UserID, &p.CourseID, &p.LessonID,
		&p.Completed, &score, &completedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if score.Valid {
		p.Score = &score.Float64
	}
	if completedAt.Valid {
		p.CompletedAt = &completedAt.Time
	}
	return &p, nil
}

// GetByUser returns all of a user's records, optionally filtered to one
// course. An empty courseID means all courses.
func (r *ProgressRepository) GetByUser(userID, courseID string) ([]*models.UserProgress, error) {
	result, err := r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		query := `
			SELECT id, user_id, course_id, lesson_id, completed, score, completed_at, updated_at
			FROM user_progress WHERE user_id = ?
		`
		args := []interface{}{userID}
		if courseID != "" {
			query += ` AND course_id = ?`
			args = append(args, courseID)
		}
		query += ` ORDER BY updated_at`

		rows, err := db.Query(query, args...)
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		return collectProgress(rows)
	})
	if err != nil {
		return nil, err
	}
	return result.([]*models.UserProgress), nil
}

// GetAll reads every progress record in a single queue task. Writes also go
// through the queue, so the returned slice is a consistent snapshot.
func (r *ProgressRepository) GetAll() ([]*models.UserProgress, error) {
	result, err := r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		rows, err := db.Query(`
			SELECT id, user_id, course_id, lesson_id, completed, score, completed_at, updated_at
			FROM user_progress ORDER BY user_id, course_id, updated_at
		`)
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		return collectProgress(rows)
	})
	if err != nil {
		return nil, err
	}
	return result.([]*models.UserProgress), nil
}

// GetRecentCompletions returns the user's most recently completed lessons,
// newest first.
func (r *ProgressRepository) GetRecentCompletions(userID string, limit int) ([]*models.UserProgress, error) {
	result, err := r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		rows, err := db.Query(`
			SELECT id, user_id, course_id, lesson_id, completed, score, completed_at, updated_at
			FROM user_progress
			WHERE user_id = ? AND completed = TRUE AND completed_at IS NOT NULL
			ORDER BY completed_at DESC LIMIT ?
		`, userID, limit)
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		return collectProgress(rows)
	})
	if err != nil {
		return nil, err
	}
	return result.([]*models.UserProgress), nil
}

func collectProgress(rows *sql.Rows) ([]*models.UserProgress, error) {
	var records []*models.UserProgress
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, p)
	}
	return records, rows.Err()
}
