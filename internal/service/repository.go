package service

import (
	"context"
	"time"

	"Social_Hub/internal/model"
)

// The store contracts below are implemented by repository/mysql and
// repository/mongo. Missing records are reported as errs.NotFound and unique
// violations as errs.Conflict.

type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByIDs(ctx context.Context, ids []string) ([]model.User, error)
	Update(ctx context.Context, id string, patch model.UserPatch) (*model.User, error)
	SearchByName(ctx context.Context, q string, limit int) ([]model.User, error)
	Sample(ctx context.Context, excludeID string, n int) ([]model.User, error)
}

type CommunityRepository interface {
	// Create stores the community with its creator as first member.
	Create(ctx context.Context, c *model.Community) error
	FindByID(ctx context.Context, id string) (*model.Community, error)
	// FindByIDs does not load members.
	FindByIDs(ctx context.Context, ids []string) ([]model.Community, error)
	List(ctx context.Context) ([]model.Community, error)
	// Search matches name or description.
	Search(ctx context.Context, q string, limit int) ([]model.Community, error)
	SearchByName(ctx context.Context, q string, limit int) ([]model.Community, error)
	Sample(ctx context.Context, n int) ([]model.Community, error)
	// ToggleMember flips membership atomically and returns the new state
	// and the full member list.
	ToggleMember(ctx context.Context, communityID, userID string) (bool, []string, error)
}

type PostRepository interface {
	Create(ctx context.Context, p *model.Post) error
	FindByID(ctx context.Context, id string) (*model.Post, error)
	// List returns posts newest first, ties by id descending.
	List(ctx context.Context, f model.PostFilter) ([]model.Post, error)
	// ToggleReaction applies a like/dislike toggle atomically and returns
	// the full updated sets.
	ToggleReaction(ctx context.Context, postID, userID string, kind model.ReactionKind) (likes, dislikes []string, err error)
	// Delete removes the post with its reactions and comments.
	Delete(ctx context.Context, id string) error
}

type CommentRepository interface {
	Create(ctx context.Context, c *model.Comment) error
	// ListByPosts returns comments in chronological order.
	ListByPosts(ctx context.Context, postIDs []string) ([]model.Comment, error)
}

type FollowRepository interface {
	// Toggle flips the follower -> followee edge and returns the new state.
	Toggle(ctx context.Context, followerID, followeeID string) (bool, error)
	IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error)
	Followers(ctx context.Context, userID string) ([]string, error)
	Following(ctx context.Context, userID string) ([]string, error)
}

type OutboxRepository interface {
	// Pending returns events to relay: pending ones and failed ones below
	// maxRetry, oldest first.
	Pending(ctx context.Context, batch, maxRetry int) ([]model.OutboxEvent, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string) error
}

// SessionStore keeps the single live access token of a user.
type SessionStore interface {
	Save(ctx context.Context, userRef, token string, ttl time.Duration) error
	Get(ctx context.Context, userRef string) (string, error)
	Extend(ctx context.Context, userRef string, ttl time.Duration) error
	Delete(ctx context.Context, userRef string) error
}

// CodeStore keeps one-time verification codes in two phases: a code is
// pending until its mail went out, then confirmed.
type CodeStore interface {
	Pending(ctx context.Context, scope, email, code string, ttl time.Duration) error
	Confirm(ctx context.Context, scope, email string, ttl time.Duration) error
	DropPending(ctx context.Context, scope, email string) error
	Confirmed(ctx context.Context, scope, email string) (string, error)
	Consume(ctx context.Context, scope, email string) error
}
