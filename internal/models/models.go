package models

import (
	"time"
)

// Roles a user can hold. Every user has exactly one role, USER by default;
// the others are reserved.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"uid"`
	Email        string    `gorm:"uniqueIndex;not null"     json:"email"`
	PasswordHash string    `gorm:"not null"                 json:"-"`
	Nickname     string    `gorm:"not null"                 json:"nickname"`
	Role         string    `gorm:"not null"                 json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Authorities derives the authority list embedded in tokens from the role.
func (u *User) Authorities() []string {
	return []string{u.Role}
}

// Board references its author by id only. Boards of a user are always a
// query against the store, there is no in-memory back-pointer list.
type Board struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"bid"`
	Title     string    `gorm:"size:200;not null"        json:"title"`
	Content   string    `gorm:"type:text"                json:"content"`
	AuthorID  uint      `gorm:"index;not null"           json:"-"`
	Author    *User     `gorm:"foreignKey:AuthorID"      json:"author,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
