package domain

import "time"

// User is a registered identity. Apart from account deletion it never
// changes after registration, which is why name and avatar are copied onto
// profiles, posts and comments.
type User struct {
	ID           string    `json:"_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Avatar       string    `json:"avatar"`
	CreatedAt    time.Time `json:"date"`
}
