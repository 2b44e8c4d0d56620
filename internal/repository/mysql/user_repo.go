package mysql

import (
	"context"
	"strings"

	"Social_Hub/internal/model"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	user.Email = strings.ToLower(user.Email)
	return translate(r.DB.WithContext(ctx).Create(user).Error, "user")
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	if err := r.DB.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err, "user")
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.DB.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&user).Error
	if err != nil {
		return nil, translate(err, "user")
	}
	return &user, nil
}

func (r *UserRepository) FindByIDs(ctx context.Context, ids []string) ([]model.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []model.User
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, translate(err, "users")
	}
	return users, nil
}

func (r *UserRepository) Update(ctx context.Context, id string, patch model.UserPatch) (*model.User, error) {
	if !patch.Empty() {
		fields := map[string]any{}
		if patch.Name != nil {
			fields["name"] = *patch.Name
		}
		if patch.Image != nil {
			fields["image"] = *patch.Image
		}
		if patch.Password != nil {
			fields["password"] = *patch.Password
		}
		if patch.GoogleID != nil {
			fields["google_id"] = *patch.GoogleID
		}
		err := r.DB.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(fields).Error
		if err != nil {
			return nil, translate(err, "user")
		}
	}
	// MySQL reports zero affected rows for unchanged values, so existence is
	// checked by reading back.
	return r.FindByID(ctx, id)
}

func (r *UserRepository) SearchByName(ctx context.Context, q string, limit int) ([]model.User, error) {
	var users []model.User
	err := r.DB.WithContext(ctx).
		Where("LOWER(name) LIKE ? ESCAPE '!'", containsPattern(q)).
		Order("name ASC").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, translate(err, "users")
	}
	return users, nil
}

func (r *UserRepository) Sample(ctx context.Context, excludeID string, n int) ([]model.User, error) {
	var ids []string
	q := r.DB.WithContext(ctx).Model(&model.User{})
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Pluck("id", &ids).Error; err != nil {
		return nil, translate(err, "users")
	}
	picked := shuffleTake(ids, n)
	users, err := r.FindByIDs(ctx, picked)
	if err != nil {
		return nil, err
	}
	return orderUsers(users, picked), nil
}

func orderUsers(users []model.User, ids []string) []model.User {
	byID := make(map[string]model.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	out := make([]model.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := byID[id]; ok {
			out = append(out, u)
		}
	}
	return out
}
