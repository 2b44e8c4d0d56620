package mysql

import (
	"context"
	"errors"

	"Social_Hub/internal/errs"
	"Social_Hub/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostRepository struct {
	DB *gorm.DB
}

func (r *PostRepository) Create(ctx context.Context, post *model.Post) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(post).Error; err != nil {
			return translate(err, "post")
		}
		post.Likes, post.Dislikes = []string{}, []string{}
		fields := map[string]any{"post_id": post.ID, "user_id": post.UserID}
		if post.CommunityID != nil {
			fields["community_id"] = *post.CommunityID
		}
		return insertOutbox(tx, model.EventPostCreate, post.ID, fields)
	})
}

func (r *PostRepository) FindByID(ctx context.Context, id string) (*model.Post, error) {
	db := r.DB.WithContext(ctx)
	var post model.Post
	if err := db.First(&post, "id = ?", id).Error; err != nil {
		return nil, translate(err, "post")
	}
	list := []model.Post{post}
	if err := attachReactions(db, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

// List uses keyset pagination on (created_at DESC, id DESC).
func (r *PostRepository) List(ctx context.Context, f model.PostFilter) ([]model.Post, error) {
	db := r.DB.WithContext(ctx)
	q := db.Model(&model.Post{})
	if f.CommunityID != "" {
		q = q.Where("community_id = ?", f.CommunityID)
	}
	if f.UserID != "" {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.Before != nil {
		q = q.Where("(created_at < ? OR (created_at = ? AND id < ?))", f.Before.CreatedAt, f.Before.CreatedAt, f.Before.ID)
	}
	q = q.Order("created_at DESC").Order("id DESC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var list []model.Post
	if err := q.Find(&list).Error; err != nil {
		return nil, translate(err, "posts")
	}
	if err := attachReactions(db, list); err != nil {
		return nil, err
	}
	return list, nil
}

// ToggleReaction runs the toggle in one transaction with the post row
// locked. The (post, user) unique key backs the exclusion of likes and
// dislikes; a collision on it is retried once against the committed row.
func (r *PostRepository) ToggleReaction(ctx context.Context, postID, userID string, kind model.ReactionKind) ([]string, []string, error) {
	likes, dislikes, err := r.toggleReaction(ctx, postID, userID, kind)
	if errs.Is(err, errs.KindConflict) {
		likes, dislikes, err = r.toggleReaction(ctx, postID, userID, kind)
	}
	return likes, dislikes, err
}

func (r *PostRepository) toggleReaction(ctx context.Context, postID, userID string, kind model.ReactionKind) ([]string, []string, error) {
	var sets reactionSets
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post model.Post
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&post, "id = ?", postID).Error; err != nil {
			return translate(err, "post")
		}

		event := kindEvent(kind)
		var cur model.PostReaction
		err := tx.Where("post_id = ? AND user_id = ?", postID, userID).First(&cur).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(&model.PostReaction{PostID: postID, UserID: userID, Kind: kind}).Error; err != nil {
				return translate(err, "reaction")
			}
		case err != nil:
			return err
		case cur.Kind == kind:
			// Same reaction again: un-react, the opposite set is untouched.
			if err := tx.Delete(&model.PostReaction{}, cur.ID).Error; err != nil {
				return err
			}
			event = model.EventPostUnreact
		default:
			// Moving from the opposite set to the target set.
			if err := tx.Model(&model.PostReaction{}).Where("id = ?", cur.ID).Update("kind", kind).Error; err != nil {
				return err
			}
		}

		byPost, err := loadReactions(tx, []string{postID})
		if err != nil {
			return err
		}
		sets = byPost[postID]
		return insertOutbox(tx, event, postID, map[string]any{
			"post_id":  postID,
			"user_id":  userID,
			"likes":    len(sets.likes),
			"dislikes": len(sets.dislikes),
		})
	})
	if err != nil {
		return nil, nil, err
	}
	return nonNil(sets.likes), nonNil(sets.dislikes), nil
}

func kindEvent(kind model.ReactionKind) string {
	if kind == model.ReactionLike {
		return model.EventPostLike
	}
	return model.EventPostDislike
}

// Delete removes the post together with its reactions and comments.
func (r *PostRepository) Delete(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post model.Post
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&post, "id = ?", id).Error; err != nil {
			return translate(err, "post")
		}
		if err := tx.Where("post_id = ?", id).Delete(&model.PostReaction{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&model.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.Post{}, "id = ?", id).Error; err != nil {
			return err
		}
		return insertOutbox(tx, model.EventPostDelete, id, map[string]any{"post_id": id, "user_id": post.UserID})
	})
}

type reactionSets struct {
	likes    []string
	dislikes []string
}

func loadReactions(db *gorm.DB, postIDs []string) (map[string]reactionSets, error) {
	var rows []model.PostReaction
	if err := db.Where("post_id IN ?", postIDs).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, translate(err, "reactions")
	}
	out := make(map[string]reactionSets, len(postIDs))
	for _, row := range rows {
		s := out[row.PostID]
		if row.Kind == model.ReactionLike {
			s.likes = append(s.likes, row.UserID)
		} else {
			s.dislikes = append(s.dislikes, row.UserID)
		}
		out[row.PostID] = s
	}
	return out, nil
}

func attachReactions(db *gorm.DB, list []model.Post) error {
	if len(list) == 0 {
		return nil
	}
	ids := make([]string, len(list))
	for i := range list {
		ids[i] = list[i].ID
	}
	byPost, err := loadReactions(db, ids)
	if err != nil {
		return err
	}
	for i := range list {
		s := byPost[list[i].ID]
		list[i].Likes = nonNil(s.likes)
		list[i].Dislikes = nonNil(s.dislikes)
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
