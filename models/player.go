package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is a player's access level
type Role string

const (
	RolePlayer Role = "player"
	RoleAdmin  Role = "admin"
)

// Permission names checked by the admin routes.
const (
	PermissionRoundsOverride = "rounds:override"
	PermissionWagersRead     = "wagers:read"
	PermissionReportsRead    = "reports:read"
	PermissionWalletsCredit  = "wallets:credit"
	PermissionMarketsManage  = "markets:manage"
)

var rolePermissions = map[Role][]string{
	RolePlayer: {},
	RoleAdmin: {
		PermissionRoundsOverride,
		PermissionWagersRead,
		PermissionReportsRead,
		PermissionWalletsCredit,
		PermissionMarketsManage,
	},
}

// Permissions returns the permissions granted by r.
func (r Role) Permissions() []string {
	perms := rolePermissions[r]
	out := make([]string, len(perms))
	copy(out, perms)
	return out
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	_, ok := rolePermissions[r]
	return ok
}

// Player is an account that can hold a wallet and place wagers. ID is the
// subject of the access token; credentials are issued elsewhere.
type Player struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Phone       string    `gorm:"type:varchar(20);uniqueIndex;not null" json:"phone"`
	DisplayName string    `gorm:"type:varchar(100);not null" json:"display_name"`
	Role        Role      `gorm:"type:varchar(10);not null;default:'player'" json:"role"`
	IsActive    bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for Player model
func (*Player) TableName() string {
	return "players"
}

// IsAdmin checks if the player holds the admin role
func (p *Player) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// Permissions returns the player's effective permissions. Inactive
// players have none.
func (p *Player) Permissions() []string {
	if !p.IsActive {
		return []string{}
	}
	return p.Role.Permissions()
}

// Validate performs validation on the player model
func (p *Player) Validate() error {
	if p.ID == uuid.Nil {
		return ErrInvalidUserID
	}
	if p.Phone == "" {
		return ErrInvalidPhone
	}
	if !p.Role.Valid() {
		return ErrInvalidRole
	}
	return nil
}
