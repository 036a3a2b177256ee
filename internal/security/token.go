package security

import (
	"time"

	"github.com/google/uuid"
)

const (
	TokenScopeAccess = "access"
	TokenScopeAdmin  = "admin"
)

// Maker issues and verifies bearer tokens. Issuing happens outside this
// service; the API only verifies.
type Maker interface {
	CreateToken(userID uuid.UUID, duration time.Duration, scope string) (string, *Payload, error)
	VerifyToken(token string) (*Payload, error)
}
