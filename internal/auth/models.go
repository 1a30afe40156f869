// Package auth implements the principal collaborator: admin accounts, login
// for both roles, token revocation, and the validator the middleware uses.
package auth

import (
	"time"

	"github.com/google/uuid"
)

// Admin is an operator identity record. Multiple admin accounts may exist.
type Admin struct {
	ID           uuid.UUID
	FullName     string
	Email        string
	PasswordHash string
	PhotoRef     string
	CreatedAt    time.Time
}
