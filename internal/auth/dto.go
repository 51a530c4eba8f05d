package auth

import (
	"github.com/google/uuid"

	"github.com/ivdgroup/medlab-backend/pkg/db/models"
)

// SignupInput is the account creation payload.
type SignupInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required"`
}

// LoginInput is the credential payload.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// MagicLinkInput requests a sign-in link.
type MagicLinkInput struct {
	Email string `json:"email" validate:"required,email"`
}

// UserView is the account shape returned to clients. No hash, ever.
type UserView struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name"`
	Role  string    `json:"role"`
}

// Session pairs a minted JWT with its account.
type Session struct {
	Token string   `json:"token"`
	User  UserView `json:"user"`
}

func toUserView(user *models.User) UserView {
	return UserView{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role.String(),
	}
}
