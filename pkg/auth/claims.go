package auth

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	// Subject identifies the operator; it becomes the audit actor.
	Subject string
	UserID  uint
	JTI     string
}

// AccessTokenClaims represents the typed JWT issued to operators.
type AccessTokenClaims struct {
	UserID uint `json:"user_id,omitempty"`
	jwt.RegisteredClaims
}

// Actor returns the name recorded in audit entries for this token.
func (c *AccessTokenClaims) Actor() string {
	if c == nil {
		return ""
	}
	return strings.TrimSpace(c.Subject)
}
