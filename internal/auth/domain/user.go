package domain

import (
	"strings"
	"time"
)

// Role is the coarse permission level of a user
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// ParseRole maps stored role values onto the two known roles. Anything that is
// not admin (including the legacy "intern") is a member.
func ParseRole(s string) Role {
	if strings.EqualFold(strings.TrimSpace(s), string(RoleAdmin)) {
		return RoleAdmin
	}
	return RoleMember
}

type User struct {
	ID        string    `json:"id" gorm:"primaryKey" bson:"_id"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null" bson:"email"`
	Password  string    `json:"-" bson:"password"` // Never return password in JSON
	Name      string    `json:"name" bson:"name"`
	Role      Role      `json:"role" gorm:"default:member" bson:"role"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Identity returns the request principal for this user.
func (u *User) Identity() Identity {
	return Identity{ID: u.ID, Email: u.Email, Role: ParseRole(string(u.Role))}
}

type RefreshToken struct {
	Token     string    `json:"token" gorm:"primaryKey" bson:"_id"`
	UserID    string    `json:"userId" gorm:"index" bson:"userId"`
	ExpiresAt time.Time `json:"expiresAt" bson:"expiresAt"`
}
