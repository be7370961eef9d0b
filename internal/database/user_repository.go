package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/05kaavya/fastx-bus-ticket-booking-app/internal/apperrors"
	"github.com/05kaavya/fastx-bus-ticket-booking-app/internal/models"
)

// UserRepository handles user identity lookups for the reservation core
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user with an already-hashed password
func (r *UserRepository) Create(user *models.User) (*models.User, error) {
	err := r.db.QueryRowx(`
		INSERT INTO users (name, email, password_hash, gender, contact_number)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		user.Name, user.Email, user.PasswordHash, user.Gender, user.ContactNumber,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return nil, apperrors.Conflict("email already registered: %s", user.Email)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// GetByID returns a user by ID
func (r *UserRepository) GetByID(userID uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.Get(&user, `
		SELECT id, name, email, password_hash, gender, contact_number, created_at
		FROM users
		WHERE id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("user not found with ID: %s", userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// GetByEmail returns a user by email
func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	err := r.db.Get(&user, `
		SELECT id, name, email, password_hash, gender, contact_number, created_at
		FROM users
		WHERE email = $1`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("user not found with email: %s", email)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &user, nil
}
