package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Post struct {
	ID          string                      `gorm:"primaryKey;size:24;index:idx_post_time_id,priority:2,sort:desc" json:"id"`
	Title       string                      `gorm:"size:200;not null" json:"title"`
	Description string                      `gorm:"type:text;not null" json:"description"`
	Image       string                      `gorm:"size:512;not null;default:''" json:"image"`
	UserID      string                      `gorm:"size:24;not null;index" json:"userId"`
	CommunityID *string                     `gorm:"size:24;index" json:"communityId"`
	Tags        datatypes.JSONSlice[string] `json:"tags"`
	Likes       []string                    `gorm:"-" json:"likes"`
	Dislikes    []string                    `gorm:"-" json:"dislikes"`
	CreatedAt   time.Time                   `gorm:"index:idx_post_time_id,priority:1,sort:desc" json:"createdAt"`
	UpdatedAt   time.Time                   `json:"updatedAt"`
}

func (p *Post) BeforeCreate(*gorm.DB) error {
	if p.ID == "" {
		p.ID = NewID()
	}
	if p.Tags == nil {
		p.Tags = datatypes.JSONSlice[string]{}
	}
	return nil
}

// PostCursor is a keyset position in (createdAt desc, id desc) order.
type PostCursor struct {
	CreatedAt time.Time
	ID        string
}

// PostFilter selects posts for the feed queries. Zero values mean no
// restriction; Limit 0 is unbounded.
type PostFilter struct {
	CommunityID string
	UserID      string
	Before      *PostCursor
	Limit       int
}
