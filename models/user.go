// Package models holds the persisted entities shared by the store engines and
// the HTTP-facing services.
package models

import "time"

// Roles a user can hold. Privileged checks always read the role from the store.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is a registered account. HashedPassword and Role never leave the server.
type User struct {
	ID             int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Username       string    `json:"username" gorm:"uniqueIndex;size:30;not null"`
	Email          string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	HashedPassword string    `json:"-" gorm:"column:password;size:255;not null"`
	Role           string    `json:"-" gorm:"size:16;not null;default:user"`
	CreatedAt      time.Time `json:"createdAt"`
}

// TableName pins the gorm table name to the one used by the SQL migrations.
func (User) TableName() string { return "users" }

// IsAdmin reports whether the user may act on other users' combos.
func (u *User) IsAdmin() bool { return u != nil && u.Role == RoleAdmin }

// UserSummary is the public view of a user: no email, no role.
type UserSummary struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}
