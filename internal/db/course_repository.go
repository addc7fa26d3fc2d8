package db

import (
	"database/sql"

	"github.com/ad/go-eduhub/internal/models"
	"github.com/google/uuid"
)

type CourseRepository struct {
	queue *Queue
}

func NewCourseRepository(queue *Queue) *CourseRepository {
	return &CourseRepository{queue: queue}
}

func (r *CourseRepository) Create(course *models.Course) (string, error) {
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	_, err := r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		_, err := db.Exec(`
			INSERT INTO courses (id, title, description, instructor_id)
			VALUES (?, ?, ?, ?)
		`, course.ID, course.Title, course.Description, nullableString(course.InstructorID))
		return nil, err
	})
	if err != nil {
		return "", err
	}
	return course.ID, nil
}

const courseSelect = `
	SELECT c.id, c.title, c.description,
	       COALESCE(c.instructor_id, ''), COALESCE(u.full_name, 'Unknown'),
	       c.created_at, c.updated_at
	FROM courses c
	LEFT JOIN users u ON u.id = c.instructor_id
`

func (r *CourseRepository) GetByID(id string) (*models.Course, error) {
	result, err := r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		row := db.QueryRow(courseSelect+`WHERE c.id = ?`, id)
		return scanCourse(row)
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.Course), nil
}

func (r *CourseRepository) GetAll() ([]*models.Course, error) {
	result, err := r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		rows, err := db.Query(courseSelect + `ORDER BY c.created_at DESC`)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var courses []*models.Course
		for rows.Next() {
			course, err := scanCourse(rows)
			if err != nil {
				return nil, err
			}
			courses = append(courses, course)
		}
		return courses, rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return result.([]*models.Course), nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCourse(row rowScanner) (*models.Course, error) {
	var course models.Course
	err := row.Scan(
		&course.ID, &course.Title, &course.Description,
		&course.InstructorID, &course.InstructorName,
		&course.CreatedAt, &course.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
