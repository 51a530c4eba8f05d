package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ivdgroup/medlab-backend/pkg/enums"
)

// TokenPurpose distinguishes session tokens from single-use sign-in links.
type TokenPurpose string

const (
	PurposeAccess    TokenPurpose = "access"
	PurposeMagicLink TokenPurpose = "magic_link"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID uuid.UUID
	Email  string
	Role   enums.UserRole
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID  uuid.UUID      `json:"user_id"`
	Email   string         `json:"email"`
	Role    enums.UserRole `json:"role"`
	Purpose TokenPurpose   `json:"purpose"`
	jwt.RegisteredClaims
}
