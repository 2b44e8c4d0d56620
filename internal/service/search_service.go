package service

import (
	"context"
	"strings"

	"Social_Hub/internal/model"
)

const discoveryLimit = 5

type SearchService struct {
	users       UserRepository
	communities CommunityRepository
}

func NewSearchService(users UserRepository, communities CommunityRepository) *SearchService {
	return &SearchService{users: users, communities: communities}
}

type SearchResult struct {
	Users       []MemberView   `json:"users"`
	Communities []CommunityRef `json:"communities"`
}

// Search matches users and communities by name. A blank query finds
// nothing.
func (s *SearchService) Search(ctx context.Context, q string) (*SearchResult, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return &SearchResult{Users: []MemberView{}, Communities: []CommunityRef{}}, nil
	}
	users, err := s.users.SearchByName(ctx, q, discoveryLimit)
	if err != nil {
		return nil, err
	}
	communities, err := s.communities.SearchByName(ctx, q, discoveryLimit)
	if err != nil {
		return nil, err
	}
	return newSearchResult(users, communities), nil
}

// Random suggests users other than the viewer and communities.
func (s *SearchService) Random(ctx context.Context, viewerID string) (*SearchResult, error) {
	users, err := s.users.Sample(ctx, viewerID, discoveryLimit)
	if err != nil {
		return nil, err
	}
	communities, err := s.communities.Sample(ctx, discoveryLimit)
	if err != nil {
		return nil, err
	}
	return newSearchResult(users, communities), nil
}

func newSearchResult(users []model.User, communities []model.Community) *SearchResult {
	res := &SearchResult{
		Users:       make([]MemberView, len(users)),
		Communities: make([]CommunityRef, len(communities)),
	}
	for i := range users {
		res.Users[i] = memberOf(&users[i])
	}
	for i, c := range communities {
		res.Communities[i] = CommunityRef{ID: c.ID, Name: c.Name, Image: c.Image}
	}
	return res
}
