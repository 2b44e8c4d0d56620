package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"Social_Hub/internal/errs"
	"Social_Hub/internal/media"
	"Social_Hub/internal/model"
)

const MaxFeedLimit = 100

// FeedQuery pages a feed. Limit 0 returns everything after Before.
type FeedQuery struct {
	Limit  int
	Before *model.PostCursor
}

type FeedPage struct {
	Posts      []PostView `json:"posts"`
	NextCursor string     `json:"nextCursor,omitempty"`
}

// ParseFeedQuery reads the limit and before query parameters. Limits above
// MaxFeedLimit are clamped.
func ParseFeedQuery(limit, before string) (FeedQuery, error) {
	var q FeedQuery
	if limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 0 {
			return q, errs.Invalid("limit must be a non-negative integer")
		}
		q.Limit = min(n, MaxFeedLimit)
	}
	if before != "" {
		c, err := ParseCursor(before)
		if err != nil {
			return q, err
		}
		q.Before = c
	}
	return q, nil
}

// ParseCursor reads a "<unix-nanos>_<id>" keyset position.
func ParseCursor(s string) (*model.PostCursor, error) {
	ts, id, ok := strings.Cut(s, "_")
	if !ok || !model.IsValidID(id) {
		return nil, errs.Invalid("malformed cursor")
	}
	nanos, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return nil, errs.Invalid("malformed cursor")
	}
	return &model.PostCursor{CreatedAt: time.Unix(0, nanos).UTC(), ID: id}, nil
}

func FormatCursor(p *model.Post) string {
	return strconv.FormatInt(p.CreatedAt.UnixNano(), 10) + "_" + p.ID
}

// FeedService builds read-only post projections. Authors, comments,
// commenters and communities are loaded in batches for the whole page.
type FeedService struct {
	users       UserRepository
	communities CommunityRepository
	posts       PostRepository
	comments    CommentRepository
}

func NewFeedService(users UserRepository, communities CommunityRepository, posts PostRepository, comments CommentRepository) *FeedService {
	return &FeedService{users: users, communities: communities, posts: posts, comments: comments}
}

func (s *FeedService) ListFeed(ctx context.Context, q FeedQuery) (*FeedPage, error) {
	return s.list(ctx, model.PostFilter{}, q)
}

func (s *FeedService) ListCommunityFeed(ctx context.Context, communityID string, q FeedQuery) (*FeedPage, error) {
	if !model.IsValidID(communityID) {
		return nil, errs.Invalid("invalid community id")
	}
	return s.list(ctx, model.PostFilter{CommunityID: communityID}, q)
}

func (s *FeedService) ListUserPosts(ctx context.Context, userID string, q FeedQuery) (*FeedPage, error) {
	if !model.IsValidID(userID) {
		return nil, errs.Invalid("invalid user id")
	}
	return s.list(ctx, model.PostFilter{UserID: userID}, q)
}

func (s *FeedService) list(ctx context.Context, f model.PostFilter, q FeedQuery) (*FeedPage, error) {
	f.Limit, f.Before = q.Limit, q.Before
	posts, err := s.posts.List(ctx, f)
	if err != nil {
		return nil, err
	}
	views, err := s.assemble(ctx, posts)
	if err != nil {
		return nil, err
	}
	page := &FeedPage{Posts: views}
	if q.Limit > 0 && len(posts) == q.Limit {
		page.NextCursor = FormatCursor(&posts[len(posts)-1])
	}
	return page, nil
}

func (s *FeedService) assemble(ctx context.Context, posts []model.Post) ([]PostView, error) {
	if len(posts) == 0 {
		return []PostView{}, nil
	}
	postIDs := make([]string, len(posts))
	userIDs := make([]string, 0, len(posts))
	var communityIDs []string
	for i, p := range posts {
		postIDs[i] = p.ID
		userIDs = append(userIDs, p.UserID)
		if p.CommunityID != nil {
			communityIDs = append(communityIDs, *p.CommunityID)
		}
	}

	comments, err := s.comments.ListByPosts(ctx, postIDs)
	if err != nil {
		return nil, err
	}
	for _, c := range comments {
		userIDs = append(userIDs, c.UserID)
	}
	users, err := s.users.FindByIDs(ctx, uniq(userIDs))
	if err != nil {
		return nil, err
	}
	byUser := usersByID(users)

	communities, err := s.communities.FindByIDs(ctx, uniq(communityIDs))
	if err != nil {
		return nil, err
	}
	byCommunity := make(map[string]CommunityRef, len(communities))
	for _, c := range communities {
		byCommunity[c.ID] = CommunityRef{ID: c.ID, Name: c.Name}
	}

	byPost := make(map[string][]CommentView, len(posts))
	for _, c := range comments {
		byPost[c.PostID] = append(byPost[c.PostID], CommentView{
			ID:        c.ID,
			PostID:    c.PostID,
			Content:   c.Content,
			User:      s.author(byUser, c.UserID, false),
			CreatedAt: c.CreatedAt,
		})
	}

	views := make([]PostView, len(posts))
	for i, p := range posts {
		v := PostView{
			ID:          p.ID,
			Title:       p.Title,
			Description: p.Description,
			Image:       p.Image,
			MediaType:   media.KindFromURL(p.Image),
			Tags:        p.Tags,
			User:        s.author(byUser, p.UserID, true),
			Likes:       p.Likes,
			Dislikes:    p.Dislikes,
			Comments:    byPost[p.ID],
			CreatedAt:   p.CreatedAt,
			UpdatedAt:   p.UpdatedAt,
		}
		if v.Tags == nil {
			v.Tags = []string{}
		}
		if v.Comments == nil {
			v.Comments = []CommentView{}
		}
		if p.CommunityID != nil {
			ref, ok := byCommunity[*p.CommunityID]
			if !ok {
				ref = CommunityRef{ID: *p.CommunityID}
			}
			v.Community = &ref
		}
		views[i] = v
	}
	return views, nil
}

func (s *FeedService) author(byUser map[string]*model.User, id string, withEmail bool) AuthorView {
	if u, ok := byUser[id]; ok {
		return authorOf(u, withEmail)
	}
	return AuthorView{ID: id}
}
