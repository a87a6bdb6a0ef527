package models

import (
	"time"

	"github.com/gofrs/uuid"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// roleLevels orders roles for permission checks: admin covers everything user can do.
var roleLevels = map[string]int{
	RoleUser:  1,
	RoleAdmin: 2,
}

type Profile struct {
	ID        uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email" gorm:"unique;not null"`
	Password  string    `json:"-" gorm:"not null"`
	Role      string    `json:"role" gorm:"not null;default:'user'"`
	IsActive  bool      `json:"is_active" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Todos []Todo  `json:"todos,omitempty" gorm:"foreignKey:UserID"`
	Media []Media `json:"media,omitempty" gorm:"foreignKey:OwnerID"`
}

func (p *Profile) IsAdmin() bool {
	return HasRole(p.Role, RoleAdmin)
}

// HasRole reports whether role is at least requiredRole in the hierarchy.
func HasRole(role, requiredRole string) bool {
	return roleLevels[role] >= roleLevels[requiredRole]
}

type Token struct {
	ID           uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	UserID       uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	RefreshToken uuid.UUID `json:"refresh_token" gorm:"type:uuid;uniqueIndex"`
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
}
