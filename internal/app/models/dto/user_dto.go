package dto

// CreateUserRequest represents a user registration payload. The password is
// stored salted-hashed, never verbatim.
type CreateUserRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

// UpdateUserRequest represents a partial user update keyed by username.
// Only the fields present in the body are touched; the promote-to-admin
// operation sends `{"is_admin": true}` and nothing else.
type UpdateUserRequest struct {
	Email   *string `json:"email,omitempty"`
	IsAdmin *bool   `json:"is_admin,omitempty"`
}

// UserResponse represents basic user information returned to roster clients.
type UserResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"is_admin"`
}
