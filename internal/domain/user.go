package domain

import (
	"time"

	"github.com/google/uuid"
)

type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusDisabled UserStatus = "disabled"
)

// User is an administrator allowed to operate the building's books.
type User struct {
	ID           uuid.UUID
	Email        string
	Name         string
	PasswordHash string
	Status       UserStatus
	CreatedAt    time.Time
}

// Active reports whether the account may log in.
func (u *User) Active() bool {
	return u.Status == UserStatusActive
}
