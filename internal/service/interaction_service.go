package service

import (
	"context"
	"strings"

	"Social_Hub/internal/errs"
	"Social_Hub/internal/model"
)

// InteractionService applies the toggle operations. Each toggle is a single
// atomic store operation; the service validates input and shapes results.
type InteractionService struct {
	users       UserRepository
	communities CommunityRepository
	posts       PostRepository
	comments    CommentRepository
	follows     FollowRepository
}

func NewInteractionService(users UserRepository, communities CommunityRepository, posts PostRepository, comments CommentRepository, follows FollowRepository) *InteractionService {
	return &InteractionService{users: users, communities: communities, posts: posts, comments: comments, follows: follows}
}

type ReactionResult struct {
	Likes    []string `json:"likes"`
	Dislikes []string `json:"dislikes"`
}

// ApplyReaction toggles the user's like or dislike. Repeating a reaction
// removes it; switching moves the user between the sets.
func (s *InteractionService) ApplyReaction(ctx context.Context, postID, userID string, kind model.ReactionKind) (*ReactionResult, error) {
	if !model.IsValidID(postID) {
		return nil, errs.Invalid("invalid post id")
	}
	if !kind.Valid() {
		return nil, errs.Invalid("action must be like or dislike")
	}
	likes, dislikes, err := s.posts.ToggleReaction(ctx, postID, userID, kind)
	if err != nil {
		return nil, err
	}
	return &ReactionResult{Likes: likes, Dislikes: dislikes}, nil
}

func (s *InteractionService) ToggleFollow(ctx context.Context, actingID, targetID string) (bool, error) {
	if !model.IsValidID(targetID) {
		return false, errs.Invalid("invalid user id")
	}
	if actingID == targetID {
		return false, errs.Invalid("you cannot follow yourself")
	}
	if _, err := s.users.FindByID(ctx, targetID); err != nil {
		return false, err
	}
	return s.follows.Toggle(ctx, actingID, targetID)
}

type MembershipResult struct {
	Joined      bool         `json:"joined"`
	MemberCount int          `json:"memberCount"`
	Members     []MemberView `json:"members"`
}

func (s *InteractionService) ToggleMembership(ctx context.Context, communityID, userID string) (*MembershipResult, error) {
	if !model.IsValidID(communityID) {
		return nil, errs.Invalid("invalid community id")
	}
	joined, members, err := s.communities.ToggleMember(ctx, communityID, userID)
	if err != nil {
		return nil, err
	}
	users, err := s.users.FindByIDs(ctx, members)
	if err != nil {
		return nil, err
	}
	return &MembershipResult{
		Joined:      joined,
		MemberCount: len(members),
		Members:     memberViews(members, usersByID(users)),
	}, nil
}

func (s *InteractionService) AddComment(ctx context.Context, postID string, author *model.User, content string) (*CommentView, error) {
	if !model.IsValidID(postID) {
		return nil, errs.Invalid("invalid post id")
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errs.Invalid("comment content is required")
	}
	if err := checkBytes("comment", content, maxTextBytes); err != nil {
		return nil, err
	}
	c := &model.Comment{PostID: postID, UserID: author.ID, Content: content}
	if err := s.comments.Create(ctx, c); err != nil {
		return nil, err
	}
	return &CommentView{
		ID:        c.ID,
		PostID:    c.PostID,
		Content:   c.Content,
		User:      authorOf(author, false),
		CreatedAt: c.CreatedAt,
	}, nil
}
