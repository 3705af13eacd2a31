package models

import (
	"time"
)

// User defines the user model based on the 'users' table
type User struct {
	ID        int64     `json:"id" db:"id" example:"1"`                                    // Unique identifier for the user
	Username  string    `json:"username" db:"username" example:"idan"`                     // Display / login handle
	Email     string    `json:"email" db:"email" example:"idan@sce.edu"`                   // User's email address (unique)
	Password  string    `json:"-" db:"password"`                                           // User's hashed password (excluded from JSON)
	IsAdmin   bool      `json:"is_admin" db:"is_admin" example:"false"`                    // Whether the user has reviewer/administrator rights
	CreatedAt time.Time `json:"created_at" db:"created_at" example:"2024-01-01T10:00:00Z"` // Timestamp when the user was created
	UpdatedAt time.Time `json:"updated_at" db:"updated_at" example:"2024-01-02T15:30:00Z"` // Timestamp when the user was last updated
}
