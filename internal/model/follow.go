package model

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

const (
	FollowOff int8 = 0
	FollowOn  int8 = 1
)

// Follow is the single record of a follower -> followee edge.
type Follow struct {
	ID         uint64 `gorm:"primaryKey"`
	FollowerID string `gorm:"size:24;not null;uniqueIndex:uk_follow_pair"`
	FolloweeID string `gorm:"size:24;not null;uniqueIndex:uk_follow_pair;index:idx_followee_id"`
	Status     int8   `gorm:"not null;default:1"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (Follow) TableName() string {
	return "follow"
}

const (
	EventPostCreate     = "post.create"
	EventPostDelete     = "post.delete"
	EventPostLike       = "post.like"
	EventPostDislike    = "post.dislike"
	EventPostUnreact    = "post.unreact"
	EventCommentCreate  = "comment.create"
	EventCommunityJoin  = "community.join"
	EventCommunityLeave = "community.leave"
	EventUserFollow     = "user.follow"
	EventUserUnfollow   = "user.unfollow"
)

const (
	OutboxPending int8 = 0
	OutboxSent    int8 = 1
	OutboxFailed  int8 = 2
)

// OutboxEvent is an interaction event waiting to be relayed to the stream.
type OutboxEvent struct {
	ID        string `gorm:"primaryKey;size:24"`
	EventType string `gorm:"size:32;not null"`
	Key       string `gorm:"size:64;not null"` // partition key, the aggregate id
	Payload   string `gorm:"type:json;not null"`
	Status    int8   `gorm:"not null;default:0;index:idx_outbox_status"`
	Retry     int    `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (OutboxEvent) TableName() string { return "social_outbox" }

func (e *OutboxEvent) BeforeCreate(*gorm.DB) error {
	if e.ID == "" {
		e.ID = NewID()
	}
	return nil
}

// NewOutboxEvent builds a pending event. fields become the JSON payload
// together with the event type and time.
func NewOutboxEvent(eventType, key string, at time.Time, fields map[string]any) *OutboxEvent {
	body := make(map[string]any, len(fields)+2)
	for k, v := range fields {
		body[k] = v
	}
	body["event"] = eventType
	body["event_time"] = at.UTC().Format(time.RFC3339Nano)
	payload, _ := json.Marshal(body)
	return &OutboxEvent{
		ID:        NewID(),
		EventType: eventType,
		Key:       key,
		Payload:   string(payload),
		Status:    OutboxPending,
		CreatedAt: at,
		UpdatedAt: at,
	}
}
