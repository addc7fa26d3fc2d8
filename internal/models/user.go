package models

import "time"

type User struct {
	ID        string
	FullName  string
	Email     string
	Role      UserRole
	CreatedAt time.Time
}
