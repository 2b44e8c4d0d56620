package service

import (
	"context"
	"strings"

	"Social_Hub/internal/errs"
	"Social_Hub/internal/model"
)

const communitySearchLimit = 10

type CommunityService struct {
	communities CommunityRepository
	users       UserRepository
	feed        *FeedService
}

func NewCommunityService(communities CommunityRepository, users UserRepository, feed *FeedService) *CommunityService {
	return &CommunityService{communities: communities, users: users, feed: feed}
}

type CreateCommunityInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// Create stores a community and makes the creator its first member.
func (s *CommunityService) Create(ctx context.Context, creator *model.User, in CreateCommunityInput) (*CommunityView, error) {
	name, desc := strings.TrimSpace(in.Name), strings.TrimSpace(in.Description)
	if name == "" || desc == "" {
		return nil, errs.Invalid("name and description are required")
	}
	image := strings.TrimSpace(in.Image)
	if err := checkRunes("name", name, maxNameLen); err != nil {
		return nil, err
	}
	if err := checkBytes("description", desc, maxTextBytes); err != nil {
		return nil, err
	}
	if err := checkRunes("image", image, maxURLLen); err != nil {
		return nil, err
	}
	c := &model.Community{
		Name:        name,
		Description: desc,
		Image:       image,
		CreatorID:   creator.ID,
	}
	if err := s.communities.Create(ctx, c); err != nil {
		if errs.Is(err, errs.KindConflict) {
			return nil, errs.Conflict("community already exists")
		}
		return nil, err
	}
	views, err := s.withMembers(ctx, []model.Community{*c})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *CommunityService) List(ctx context.Context) ([]CommunityView, error) {
	list, err := s.communities.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.withMembers(ctx, list)
}

type CommunityDetail struct {
	Community CommunityView `json:"community"`
	Posts     []PostView    `json:"posts"`
}

func (s *CommunityService) Detail(ctx context.Context, id string, q FeedQuery) (*CommunityDetail, error) {
	if !model.IsValidID(id) {
		return nil, errs.Invalid("invalid community id")
	}
	c, err := s.communities.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	views, err := s.withMembers(ctx, []model.Community{*c})
	if err != nil {
		return nil, err
	}
	page, err := s.feed.ListCommunityFeed(ctx, id, q)
	if err != nil {
		return nil, err
	}
	return &CommunityDetail{Community: views[0], Posts: page.Posts}, nil
}

// Search matches the query against names and descriptions.
func (s *CommunityService) Search(ctx context.Context, q string) ([]CommunityView, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, errs.Invalid("search query is required")
	}
	list, err := s.communities.Search(ctx, q, communitySearchLimit)
	if err != nil {
		return nil, err
	}
	return s.withMembers(ctx, list)
}

// withMembers resolves the member ids of all communities in one lookup.
func (s *CommunityService) withMembers(ctx context.Context, list []model.Community) ([]CommunityView, error) {
	var ids []string
	for _, c := range list {
		ids = append(ids, c.Members...)
	}
	users, err := s.users.FindByIDs(ctx, uniq(ids))
	if err != nil {
		return nil, err
	}
	byID := usersByID(users)

	out := make([]CommunityView, len(list))
	for i, c := range list {
		out[i] = CommunityView{
			ID:          c.ID,
			Name:        c.Name,
			Description: c.Description,
			Image:       c.Image,
			CreatorID:   c.CreatorID,
			MemberCount: len(c.Members),
			Members:     memberViews(c.Members, byID),
			CreatedAt:   c.CreatedAt,
		}
	}
	return out, nil
}
