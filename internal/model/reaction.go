package model

import "time"

type ReactionKind string

const (
	ReactionLike    ReactionKind = "like"
	ReactionDislike ReactionKind = "dislike"
)

func (k ReactionKind) Valid() bool {
	return k == ReactionLike || k == ReactionDislike
}

func (k ReactionKind) Opposite() ReactionKind {
	if k == ReactionLike {
		return ReactionDislike
	}
	return ReactionLike
}

// PostReaction is one user's like or dislike of a post. The (post, user)
// unique key makes likes and dislikes mutually exclusive.
type PostReaction struct {
	ID        uint64       `gorm:"primaryKey;autoIncrement"`
	PostID    string       `gorm:"size:24;not null;uniqueIndex:uk_post_user"`
	UserID    string       `gorm:"size:24;not null;uniqueIndex:uk_post_user"`
	Kind      ReactionKind `gorm:"size:8;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (PostReaction) TableName() string {
	return "post_reactions"
}
