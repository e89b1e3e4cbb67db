package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// Role is the closed set of actors in the system. Views are refreshed
// polymorphically per role; there is no string comparison scattered around.
type Role string

const (
	RoleWaiter  Role = "waiter"
	RoleKitchen Role = "kitchen"
	RoleCashier Role = "cashier"
)

// Known reports whether the role belongs to the closed set.
func (r Role) Known() bool {
	switch r {
	case RoleWaiter, RoleKitchen, RoleCashier:
		return true
	}
	return false
}

// User is a staff account. Credentials are stored as a salted digest.
type User struct {
	bun.BaseModel `bun:"table:users"`

	ID           int64     `bun:",pk,autoincrement" json:"id"`
	Username     string    `bun:"username,notnull,unique" json:"username"`
	PasswordHash string    `bun:"password_hash,notnull" json:"-"`
	Role         Role      `bun:"role,notnull" json:"role"`
	CreatedAt    time.Time `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time `bun:"updated_at,nullzero" json:"updated_at"`
}
