package repositories

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository        *UserRepository
	ApplicationRepository *ApplicationRepository
	RequestRepository     *RequestRepository
	TokenRepository       *TokenRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepository:        NewUserRepository(db),
		ApplicationRepository: NewApplicationRepository(db),
		RequestRepository:     NewRequestRepository(db),
		TokenRepository:       NewTokenRepository(db),
	}
}
