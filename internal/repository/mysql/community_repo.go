package mysql

import (
	"context"

	"Social_Hub/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CommunityRepository struct {
	DB *gorm.DB
}

// Create stores the community and idempotently joins the creator with the
// creator role.
func (r *CommunityRepository) Create(ctx context.Context, c *model.Community) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(c).Error; err != nil {
			return translate(err, "community")
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "community_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).Create(&model.CommunityMember{
			CommunityID: c.ID,
			UserID:      c.CreatorID,
			Role:        model.RoleCreator,
		}).Error
	})
	if err != nil {
		return err
	}
	c.Members = []string{c.CreatorID}
	return nil
}

func (r *CommunityRepository) FindByID(ctx context.Context, id string) (*model.Community, error) {
	db := r.DB.WithContext(ctx)
	var c model.Community
	if err := db.First(&c, "id = ?", id).Error; err != nil {
		return nil, translate(err, "community")
	}
	list := []model.Community{c}
	if err := attachMembers(db, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

func (r *CommunityRepository) FindByIDs(ctx context.Context, ids []string) ([]model.Community, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var list []model.Community
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&list).Error; err != nil {
		return nil, translate(err, "communities")
	}
	return list, nil
}

func (r *CommunityRepository) List(ctx context.Context) ([]model.Community, error) {
	db := r.DB.WithContext(ctx)
	var list []model.Community
	if err := db.Order("created_at DESC, id DESC").Find(&list).Error; err != nil {
		return nil, translate(err, "communities")
	}
	if err := attachMembers(db, list); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *CommunityRepository) Search(ctx context.Context, q string, limit int) ([]model.Community, error) {
	pattern := containsPattern(q)
	return r.find(ctx, limit, "LOWER(name) LIKE ? ESCAPE '!' OR LOWER(description) LIKE ? ESCAPE '!'", pattern, pattern)
}

func (r *CommunityRepository) SearchByName(ctx context.Context, q string, limit int) ([]model.Community, error) {
	return r.find(ctx, limit, "LOWER(name) LIKE ? ESCAPE '!'", containsPattern(q))
}

func (r *CommunityRepository) find(ctx context.Context, limit int, where string, args ...any) ([]model.Community, error) {
	db := r.DB.WithContext(ctx)
	var list []model.Community
	if err := db.Where(where, args...).Order("name ASC").Limit(limit).Find(&list).Error; err != nil {
		return nil, translate(err, "communities")
	}
	if err := attachMembers(db, list); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *CommunityRepository) Sample(ctx context.Context, n int) ([]model.Community, error) {
	var ids []string
	if err := r.DB.WithContext(ctx).Model(&model.Community{}).Pluck("id", &ids).Error; err != nil {
		return nil, translate(err, "communities")
	}
	picked := shuffleTake(ids, n)
	list, err := r.FindByIDs(ctx, picked)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]model.Community, len(list))
	for _, c := range list {
		byID[c.ID] = c
	}
	out := make([]model.Community, 0, len(picked))
	for _, id := range picked {
		if c, ok := byID[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

// ToggleMember locks the community row so concurrent toggles on the same
// community serialise, then joins or leaves.
func (r *CommunityRepository) ToggleMember(ctx context.Context, communityID, userID string) (bool, []string, error) {
	var (
		joined  bool
		members []string
	)
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c model.Community
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&c, "id = ?", communityID).Error; err != nil {
			return translate(err, "community")
		}

		res := tx.Where("community_id = ? AND user_id = ?", communityID, userID).Delete(&model.CommunityMember{})
		if res.Error != nil {
			return res.Error
		}
		event := model.EventCommunityLeave
		if res.RowsAffected == 0 {
			if err := tx.Create(&model.CommunityMember{CommunityID: communityID, UserID: userID, Role: model.RoleMember}).Error; err != nil {
				return translate(err, "membership")
			}
			joined = true
			event = model.EventCommunityJoin
		}

		if err := tx.Model(&model.CommunityMember{}).
			Where("community_id = ?", communityID).
			Order("id ASC").
			Pluck("user_id", &members).Error; err != nil {
			return err
		}
		return insertOutbox(tx, event, communityID, map[string]any{
			"community_id": communityID,
			"user_id":      userID,
			"members":      len(members),
		})
	})
	if err != nil {
		return false, nil, err
	}
	if members == nil {
		members = []string{}
	}
	return joined, members, nil
}

func attachMembers(db *gorm.DB, list []model.Community) error {
	if len(list) == 0 {
		return nil
	}
	ids := make([]string, len(list))
	for i := range list {
		ids[i] = list[i].ID
	}
	var rows []model.CommunityMember
	if err := db.Where("community_id IN ?", ids).Order("id ASC").Find(&rows).Error; err != nil {
		return translate(err, "members")
	}
	byCommunity := make(map[string][]string, len(list))
	for _, m := range rows {
		byCommunity[m.CommunityID] = append(byCommunity[m.CommunityID], m.UserID)
	}
	for i := range list {
		list[i].Members = byCommunity[list[i].ID]
		if list[i].Members == nil {
			list[i].Members = []string{}
		}
	}
	return nil
}
