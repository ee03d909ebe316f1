package models

import (
	"time"

	"github.com/uptrace/bun"
)

type UserRole string

const (
	RoleCustomer   UserRole = "customer"
	RoleCanteen    UserRole = "canteen_admin"
	RoleSuperAdmin UserRole = "super_admin"
)

type User struct {
	bun.BaseModel `bun:"table:users"`

	ID        string    `bun:"id,pk" json:"id"`
	Name      string    `bun:"name,notnull" json:"name"`
	Phone     string    `bun:"phone,unique,notnull" json:"phone"`
	Email     string    `bun:"email,nullzero" json:"email,omitempty"`
	Role      UserRole  `bun:"role,notnull" json:"role"`
	Active    bool      `bun:"active,notnull" json:"active"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero" json:"updated_at,omitempty"`
}
