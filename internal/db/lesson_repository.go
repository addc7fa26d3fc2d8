package db

import (
	"database/sql"

	"github.com/ad/go-eduhub/internal/models"
	"github.com/google/uuid"
)

type LessonRepository struct {
	queue *Queue
}

func NewLessonRepository(queue *Queue) *LessonRepository {
	return &LessonRepository{queue: queue}
}

func (r *LessonRepository) Create(lesson *models.Lesson) (string, error) {
	if lesson.ID == "" {
		lesson.ID = uuid.NewString()
	}
	if lesson.Type == "" {
		lesson.Type = models.LessonTypeArticle
	}
	_, err := r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		_, err := db.Exec(`
			INSERT INTO lessons (id, course_id, title, content, position, type)
			VALUES (?, ?, ?, ?, ?, ?)
		`, lesson.ID, lesson.CourseID, lesson.Title, lesson.Content, lesson.Position, lesson.Type)
		return nil, err
	})
	if err != nil {
		return "", err
	}
	return lesson.ID, nil
}

func (r *LessonRepository) GetByID(id string) (*models.Lesson, error) {
	result, err := r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		row := db.QueryRow(`
			SELECT id, course_id, title, content, position, type, created_at
			FROM lessons WHERE id = ?
		`, id)

		var lesson models.Lesson
		err := row.Scan(&lesson.ID, &lesson.CourseID, &lesson.Title, &lesson.Content,
			&lesson.Position, &lesson.Type, &lesson.CreatedAt)
		if err != nil {
			return nil, err
		}
		return &lesson, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.Lesson), nil
}

// GetByCourse returns the course's lessons ordered by position, which is the
// display and completion-scan order.
func (r *LessonRepository) GetByCourse(courseID string) ([]*models.Lesson, error) {
	result, err := r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		rows, err := db.Query(`
			SELECT id, course_id, title, content, position, type, created_at
			FROM lessons WHERE course_id = ?
			ORDER BY position
		`, courseID)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var lessons []*models.Lesson
		for rows.Next() {
			var lesson models.Lesson
			if err := rows.Scan(&lesson.ID, &lesson.CourseID, &lesson.Title, &lesson.Content,
				&lesson.Position, &lesson.Type, &lesson.CreatedAt); err != nil {
				return nil, err
			}
			lessons = append(lessons, &lesson)
		}
		return lessons, rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return result.([]*models.Lesson), nil
}

// GetAllByCourse loads every course's lesson list in one query, for batch
// aggregation.
func (r *LessonRepository) GetAllByCourse() (map[string][]*models.Lesson, error) {
	result, err := r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		rows, err := db.Query(`
			SELECT id, course_id, title, content, position, type, created_at
			FROM lessons ORDER BY course_id, position
		`)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		byCourse := make(map[string][]*models.Lesson)
		for rows.Next() {
			var lesson models.Lesson
			if err := rows.Scan(&lesson.ID, &lesson.CourseID, &lesson.Title, &lesson.Content,
				&lesson.Position, &lesson.Type, &lesson.CreatedAt); err != nil {
				return nil, err
			}
			byCourse[lesson.CourseID] = append(byCourse[lesson.CourseID], &lesson)
		}
		return byCourse, rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return result.(map[string][]*models.Lesson), nil
}
