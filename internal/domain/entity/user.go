package entity

import (
	"strings"
	"time"
)

// Role rol del usuario. Enumerado cerrado; la jerarquía la interpreta domain/access.
type Role string

// Roles válidos para User.
const (
	RoleAdministrator Role = "ADMINISTRATOR"
	RoleEmployee      Role = "EMPLOYEE"
	RoleClient        Role = "CLIENT"
)

// ParseRole convierte un texto en Role. ok=false si no pertenece al enumerado.
func ParseRole(s string) (Role, bool) {
	switch r := Role(strings.ToUpper(strings.TrimSpace(s))); r {
	case RoleAdministrator, RoleEmployee, RoleClient:
		return r, true
	}
	return "", false
}

// User representa una cuenta del sistema (Usuario).
type User struct {
	ID           string
	Username     string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Role         Role
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
