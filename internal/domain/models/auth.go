package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// AccessClaims are the JWT claims issued by the external identity provider.
// The subject claim carries the user ID that scopes every folder operation.
type AccessClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}
