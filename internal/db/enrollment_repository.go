package db

import (
	"database/sql"

	"github.com/ad/go-eduhub/internal/models"
	"github.com/google/uuid"
)

type EnrollmentRepository struct {
	queue *Queue
}

func NewEnrollmentRepository(queue *Queue) *EnrollmentRepository {
	return &EnrollmentRepository{queue: queue}
}

// Create is idempotent: enrolling twice in the same course is a no-op.
func (r *EnrollmentRepository) Create(enrollment *models.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	_, err := r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		_, err := db.Exec(`
			INSERT INTO enrollments (id, user_id, course_id)
			VALUES (?, ?, ?)
			ON CONFLICT(user_id, course_id) DO NOTHING
		`, enrollment.ID, enrollment.UserID, enrollment.CourseID)
		return nil, err
	})
	return err
}

func (r *EnrollmentRepository) Exists(userID, courseID string) (bool, error) {
	result, err := r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		var count int
		err := db.QueryRow(`
			SELECT COUNT(*) FROM enrollments WHERE user_id = ? AND course_id = ?
		`, userID, courseID).Scan(&count)
		return count > 0, err
	})
	if err != nil {
		return false, err
	}
	return result.(bool), nil
}

func (r *EnrollmentRepository) GetByUser(userID string) ([]*models.Enrollment, error) {
	result, err := r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		rows, err := db.Query(`
			SELECT id, user_id, course_id, created_at
			FROM enrollments WHERE user_id = ?
			ORDER BY created_at
		`, userID)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var enrollments []*models.Enrollment
		for rows.Next() {
			var e models.Enrollment
			if err := rows.Scan(&e.ID, &e.UserID, &e.CourseID, &e.CreatedAt); err != nil {
				return nil, err
			}
			enrollments = append(enrollments, &e)
		}
		return enrollments, rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return result.([]*models.Enrollment), nil
}
