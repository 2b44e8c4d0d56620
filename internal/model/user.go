package model

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID        string    `gorm:"primaryKey;size:24" json:"id"`
	Email     string    `gorm:"uniqueIndex;size:128;not null" json:"email"`
	Password  string    `gorm:"size:255;not null;default:''" json:"-"`
	Name      string    `gorm:"size:64;not null" json:"name"`
	Image     string    `gorm:"size:512;not null;default:''" json:"image"`
	GoogleID  *string   `gorm:"uniqueIndex;size:64" json:"-"` // NULL for password-only accounts
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = NewID()
	}
	return nil
}

// HasPassword is false for accounts created through federated login.
func (u *User) HasPassword() bool { return u.Password != "" }

// UserPatch lists the mutable user fields; nil means unchanged.
type UserPatch struct {
	Name     *string
	Image    *string
	Password *string
	GoogleID *string
}

func (p UserPatch) Empty() bool {
	return p.Name == nil && p.Image == nil && p.Password == nil && p.GoogleID == nil
}
