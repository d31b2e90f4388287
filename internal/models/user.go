package models

import (
	"time"
)

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Email     string    `gorm:"size:254" json:"email"`
	Password  string    `gorm:"not null" json:"-"` // bcrypt hash
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Profile *UserProfile `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"profile,omitempty"`
}

// UserProfile 用户资料，一对一，按需创建
type UserProfile struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"not null;uniqueIndex" json:"user_id"`
	Avatar    string     `json:"avatar"` // media-relative path
	BirthDate *time.Time `gorm:"type:date" json:"birth_date"`
	FirstName string     `gorm:"size:30" json:"first_name"`
	LastName  string     `gorm:"size:30" json:"last_name"`
	Bio       string     `gorm:"size:500" json:"bio"`
}

// FullName joins first and last name, falling back to nothing when both are blank.
func (p *UserProfile) FullName() string {
	switch {
	case p.FirstName != "" && p.LastName != "":
		return p.FirstName + " " + p.LastName
	case p.FirstName != "":
		return p.FirstName
	default:
		return p.LastName
	}
}
