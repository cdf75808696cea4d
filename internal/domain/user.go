package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role is the capability class of an actor. The zero value is the guest role.
type Role string

const (
	RoleGuest Role = ""
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Storage values of the users.tipo column.
const (
	TipoUsuario = "usuario"
	TipoAdmin   = "admin"
)

// ParseRole maps a stored or user-supplied role string to a Role.
// Unknown values map to RoleGuest so they grant nothing.
func ParseRole(s string) Role {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case TipoUsuario, string(RoleUser):
		return RoleUser
	case TipoAdmin:
		return RoleAdmin
	default:
		return RoleGuest
	}
}

// Tipo returns the storage value for r, or "" for the guest role.
func (r Role) Tipo() string {
	switch r {
	case RoleUser:
		return TipoUsuario
	case RoleAdmin:
		return TipoAdmin
	default:
		return ""
	}
}

func (r Role) String() string {
	if r == RoleGuest {
		return "guest"
	}
	return string(r)
}

// Capabilities is what an actor may do in the catalog.
type Capabilities struct {
	CanLike     bool `json:"canLike"`
	CanModerate bool `json:"canModerate"`
}

// CapabilitiesFor derives capabilities from a role. Anything unknown gets none.
func CapabilitiesFor(r Role) Capabilities {
	switch r {
	case RoleUser:
		return Capabilities{CanLike: true}
	case RoleAdmin:
		return Capabilities{CanLike: true, CanModerate: true}
	default:
		return Capabilities{}
	}
}

// User is a registered account.
type User struct {
	ID           uuid.UUID
	Email        string
	Role         Role
	PasswordHash string
	CreatedAt    time.Time
}

// Session identifies the authenticated actor behind a request.
type Session struct {
	UserID uuid.UUID `json:"userId"`
}
