package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID        string    `gorm:"type:varchar(128);primaryKey" json:"id"`
	Name      string    `gorm:"size:50;not null" json:"name"`
	Username  string    `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Email     string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"size:200;not null" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// UserRef is the public identity embedded in other resources.
type UserRef struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

// Ref returns the public identity of u, or nil when u is nil.
func (u *User) Ref() *UserRef {
	if u == nil {
		return nil
	}
	return &UserRef{ID: u.ID, Name: u.Name, Username: u.Username}
}

// SignupRequest accepts both form-encoded and JSON bodies.
type SignupRequest struct {
	Name     string `form:"name" json:"name" binding:"required,max=50"`
	Username string `form:"username" json:"username" binding:"required,min=3,max=50"`
	Email    string `form:"email" json:"email" binding:"required,email,max=100"`
	Password string `form:"password" json:"password" binding:"required,min=6,max=200"`
}

type LoginRequest struct {
	Email    string `form:"email" json:"email" binding:"required,email"`
	Password string `form:"password" json:"password" binding:"required,min=6"`
}

// Identity is what an authenticated request knows about its caller.
type Identity struct {
	UserID   string `json:"userId"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Username string `json:"username"`
}
