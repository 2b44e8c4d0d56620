package service

import (
	"context"
	"strings"

	"Social_Hub/internal/errs"
	"Social_Hub/internal/model"
)

// IdentityService maps a session reference to the internal user. A
// reference in internal id format is looked up by id; anything else is
// treated as opaque and the session email decides.
type IdentityService struct {
	users UserRepository
}

func NewIdentityService(users UserRepository) *IdentityService {
	return &IdentityService{users: users}
}

func (s *IdentityService) Resolve(ctx context.Context, ref, email string) (*model.User, error) {
	if model.IsValidID(ref) {
		return s.users.FindByID(ctx, ref)
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, errs.NotFound("user not found")
	}
	return s.users.FindByEmail(ctx, email)
}
