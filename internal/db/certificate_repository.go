package db

import (
	"database/sql"

	"github.com/ad/go-eduhub/internal/models"
	"github.com/google/uuid"
)

type CertificateRepository struct {
	queue *Queue
}

func NewCertificateRepository(queue *Queue) *CertificateRepository {
	return &CertificateRepository{queue: queue}
}

// Insert stores a certificate row. The unique (user_id, course_id) index
// makes a repeated insert for the same course a no-op; Insert reports
// whether a new row was written.
func (r *CertificateRepository) Insert(cert *models.Certificate) (bool, error) {
	if cert.ID == "" {
		cert.ID = uuid.NewString()
	}
	result, err := r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		res, err := db.Exec(`
			INSERT INTO certificates (id, user_id, course_id, course_title, user_name, file_path, issued_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(user_id, course_id) DO NOTHING
		`, cert.ID, cert.UserID, cert.CourseID, cert.CourseTitle, cert.UserName, cert.FilePath, cert.IssuedAt)
		if err != nil {
			return nil, err
		}
		affected, err := res.RowsAffected()
		return affected > 0, err
	})
	if err != nil {
		return false, err
	}
	return result.(bool), nil
}

func (r *CertificateRepository) GetByUser(userID string) ([]*models.Certificate, error) {
	result, err := r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		rows, err := db.Query(`
			SELECT id, user_id, course_id, course_title, user_name, file_path, issued_at
			FROM certificates WHERE user_id = ?
			ORDER BY issued_at DESC
		`, userID)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var certs []*models.Certificate
		for rows.Next() {
			var cert models.Certificate
			if err := rows.Scan(&cert.ID, &cert.UserID, &cert.CourseID, &cert.CourseTitle,
				&cert.UserName, &cert.FilePath, &cert.IssuedAt); err != nil {
				return nil, err
			}
			certs = append(certs, &cert)
		}
		return certs, rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return result.([]*models.Certificate), nil
}

// CountsByUser returns the number of issued certificates per user. Users
// without certificates are simply absent from the map.
func (r *CertificateRepository) CountsByUser() (map[string]int, error) {
	result, err := r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		rows, err := db.Query(`
			SELECT user_id, COUNT(*) FROM certificates GROUP BY user_id
		`)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		counts := make(map[string]int)
		for rows.Next() {
			var userID string
			var count int
			if err := rows.Scan(&userID, &count); err != nil {
				return nil, err
			}
			counts[userID] = count
		}
		return counts, rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return result.(map[string]int), nil
}

func (r *CertificateRepository) CountByUser(userID string) (int, error) {
	result, err := r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		var count int
		err := db.QueryRow(`
			SELECT COUNT(*) FROM certificates WHERE user_id = ?
		`, userID).Scan(&count)
		return count, err
	})
	if err != nil {
		return 0, err
	}
	return result.(int), nil
}
