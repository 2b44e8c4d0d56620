package mysql

import (
	"context"
	"errors"

	"Social_Hub/internal/errs"
	"Social_Hub/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FollowRepository struct {
	DB *gorm.DB
}

// Toggle flips the edge inside a transaction holding the edge row lock and
// writes the outbox event in the same transaction. The edge row is the only
// record of the relationship, so both directions change together.
func (r *FollowRepository) Toggle(ctx context.Context, followerID, followeeID string) (bool, error) {
	following, err := r.toggle(ctx, followerID, followeeID)
	if errs.Is(err, errs.KindConflict) {
		// Lost the race to create the first edge row; it exists now.
		following, err = r.toggle(ctx, followerID, followeeID)
	}
	return following, err
}

func (r *FollowRepository) toggle(ctx context.Context, followerID, followeeID string) (bool, error) {
	var following bool
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rel model.Follow
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
			First(&rel).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			rel = model.Follow{FollowerID: followerID, FolloweeID: followeeID, Status: model.FollowOn}
			if err := tx.Create(&rel).Error; err != nil {
				return translate(err, "follow")
			}
			following = true
		case err != nil:
			return err
		default:
			next := model.FollowOn
			if rel.Status == model.FollowOn {
				next = model.FollowOff
			}
			if err := tx.Model(&model.Follow{}).Where("id = ?", rel.ID).Update("status", next).Error; err != nil {
				return err
			}
			following = next == model.FollowOn
		}

		event := model.EventUserUnfollow
		if following {
			event = model.EventUserFollow
		}
		return insertOutbox(tx, event, followeeID, map[string]any{
			"follower": followerID,
			"followee": followeeID,
		})
	})
	return following, err
}

func (r *FollowRepository) IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error) {
	var n int64
	if err := r.DB.WithContext(ctx).
		Model(&model.Follow{}).
		Where("follower_id = ? AND followee_id = ? AND status = ?", followerID, followeeID, model.FollowOn).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// Followers lists the users following userID, oldest edge first.
func (r *FollowRepository) Followers(ctx context.Context, userID string) ([]string, error) {
	return r.pluck(ctx, "follower_id", "followee_id = ?", userID)
}

// Following lists the users userID follows, oldest edge first.
func (r *FollowRepository) Following(ctx context.Context, userID string) ([]string, error) {
	return r.pluck(ctx, "followee_id", "follower_id = ?", userID)
}

func (r *FollowRepository) pluck(ctx context.Context, column, where, userID string) ([]string, error) {
	ids := []string{}
	err := r.DB.WithContext(ctx).Model(&model.Follow{}).
		Where(where, userID).
		Where("status = ?", model.FollowOn).
		Order("id ASC").
		Pluck(column, &ids).Error
	if err != nil {
		return nil, translate(err, "follows")
	}
	return ids, nil
}
