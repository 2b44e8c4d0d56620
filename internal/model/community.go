package model

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleMember  = 0
	RoleCreator = 1
)

type Community struct {
	ID          string    `gorm:"primaryKey;size:24" json:"id"`
	Name        string    `gorm:"uniqueIndex;size:64;not null" json:"name"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Image       string    `gorm:"size:512;not null;default:''" json:"image"`
	CreatorID   string    `gorm:"size:24;not null;index" json:"creatorId"`
	Members     []string  `gorm:"-" json:"members"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (c *Community) BeforeCreate(*gorm.DB) error {
	if c.ID == "" {
		c.ID = NewID()
	}
	return nil
}

type CommunityMember struct {
	ID          uint64 `gorm:"primaryKey"`
	CommunityID string `gorm:"size:24;not null;uniqueIndex:uk_community_user"`
	UserID      string `gorm:"size:24;not null;index;uniqueIndex:uk_community_user"`
	Role        int    `gorm:"not null;default:0"`
	CreatedAt   time.Time
}
