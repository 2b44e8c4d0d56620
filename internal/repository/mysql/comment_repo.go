package mysql

import (
	"context"

	"Social_Hub/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CommentRepository struct {
	DB *gorm.DB
}

// Create inserts the comment while holding a shared lock on the parent post
// so a concurrent delete cannot leave it orphaned.
func (r *CommentRepository) Create(ctx context.Context, c *model.Comment) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post model.Post
		if err := tx.Clauses(clause.Locking{Strength: "SHARE"}).Select("id").First(&post, "id = ?", c.PostID).Error; err != nil {
			return translate(err, "post")
		}
		if err := tx.Create(c).Error; err != nil {
			return translate(err, "comment")
		}
		return insertOutbox(tx, model.EventCommentCreate, c.PostID, map[string]any{
			"comment_id": c.ID,
			"post_id":    c.PostID,
			"user_id":    c.UserID,
		})
	})
}

func (r *CommentRepository) ListByPosts(ctx context.Context, postIDs []string) ([]model.Comment, error) {
	if len(postIDs) == 0 {
		return nil, nil
	}
	var list []model.Comment
	err := r.DB.WithContext(ctx).
		Where("post_id IN ?", postIDs).
		Order("created_at ASC").Order("id ASC").
		Find(&list).Error
	if err != nil {
		return nil, translate(err, "comments")
	}
	return list, nil
}
