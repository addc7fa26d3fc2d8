package db

import (
	"database/sql"

	"github.com/ad/go-eduhub/internal/models"
	"github.com/google/uuid"
)

type UserRepository struct {
	queue *Queue
}

func NewUserRepository(queue *Queue) *UserRepository {
	return &UserRepository{queue: queue}
}

func (r *UserRepository) Create(user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Role == "" {
		user.Role = models.RoleLearner
	}
	_, err := r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		_, err := db.Exec(`
			INSERT INTO users (id, full_name, email, role)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				full_name = excluded.full_name,
				email = excluded.email,
				role = excluded.role
		`, user.ID, user.FullName, user.Email, user.Role)
		return nil, err
	})
	return err
}

func (r *UserRepository) GetByID(id string) (*models.User, error) {
	result, err := r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		row := db.QueryRow(`
			SELECT id, full_name, email, role, created_at
			FROM users WHERE id = ?
		`, id)

		var user models.User
		err := row.Scan(&user.ID, &user.FullName, &user.Email, &user.Role, &user.CreatedAt)
		if err != nil {
			return nil, err
		}
		return &user, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.User), nil
}

func (r *UserRepository) GetAll() ([]*models.User, error) {
	result, err := r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		rows, err := db.Query(`
			SELECT id, full_name, email, role, created_at
			FROM users ORDER BY created_at
		`)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var users []*models.User
		for rows.Next() {
			var user models.User
			if err := rows.Scan(&user.ID, &user.FullName, &user.Email, &user.Role, &user.CreatedAt); err != nil {
				return nil, err
			}
			users = append(users, &user)
		}
		return users, rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return result.([]*models.User), nil
}
