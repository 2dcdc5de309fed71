package models

import "time"

// Role values for User.Role.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Email        string    `json:"email,omitempty"`
	Role         string    `json:"role"`
	LastActive   time.Time `json:"last_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// Profile is the public view of a user: no hash, no activity timestamp.
// Badge carries the role for non-default roles only.
type Profile struct {
	Username string    `json:"username"`
	Email    string    `json:"email,omitempty"`
	Badge    string    `json:"badge,omitempty"`
	Joined   time.Time `json:"joined"`
	Posts    []Post    `json:"posts"`
}
