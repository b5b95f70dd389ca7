package users

import (
	"time"

	"github.com/angelmondragon/kickstock-backend/pkg/db/models"
)

// UserDTO is the transport shape of a user.
type UserDTO struct {
	ID         uint           `json:"id"`
	Email      string         `json:"email"`
	Active     bool           `json:"active"`
	Properties map[string]any `json:"properties"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// CreateUserInput holds the fields accepted when registering a user.
type CreateUserInput struct {
	Email      string         `json:"email" validate:"required,email,max=255"`
	Properties map[string]any `json:"properties"`
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:         u.ID,
		Email:      u.Email,
		Active:     u.Active,
		Properties: u.Properties,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}
