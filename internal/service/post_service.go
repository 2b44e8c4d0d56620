package service

import (
	"context"
	"log/slog"
	"strings"

	"Social_Hub/internal/errs"
	"Social_Hub/internal/media"
	"Social_Hub/internal/model"
)

type PostService struct {
	posts       PostRepository
	communities CommunityRepository
	media       media.Store
	saver       mediaSaver
	log         *slog.Logger
}

func NewPostService(posts PostRepository, communities CommunityRepository, store media.Store, maxBytes int64, log *slog.Logger) *PostService {
	return &PostService{
		posts:       posts,
		communities: communities,
		media:       store,
		saver:       mediaSaver{store: store, maxBytes: maxBytes},
		log:         log,
	}
}

type CreatePostInput struct {
	Title       string
	Description string
	Tags        string // comma separated
	Community   string
	Media       *Upload
}

// noCommunity lists the form values clients send for a post outside any
// community.
var noCommunity = map[string]bool{"": true, "null": true, "undefined": true}

func (s *PostService) Create(ctx context.Context, author *model.User, in CreatePostInput) (*model.Post, error) {
	title, desc := strings.TrimSpace(in.Title), strings.TrimSpace(in.Description)
	if title == "" || desc == "" {
		return nil, errs.Invalid("title and description are required")
	}
	if err := checkRunes("title", title, maxTitleLen); err != nil {
		return nil, err
	}
	if err := checkBytes("description", desc, maxTextBytes); err != nil {
		return nil, err
	}
	if err := checkBytes("tags", in.Tags, maxTextBytes); err != nil {
		return nil, err
	}

	post := &model.Post{
		Title:       title,
		Description: desc,
		UserID:      author.ID,
		Tags:        splitTags(in.Tags),
	}
	if community := strings.TrimSpace(in.Community); !noCommunity[community] {
		if !model.IsValidID(community) {
			return nil, errs.Invalid("invalid community id")
		}
		if _, err := s.communities.FindByID(ctx, community); err != nil {
			return nil, err
		}
		post.CommunityID = &community
	}
	if in.Media != nil {
		url, err := s.saver.save(ctx, in.Media)
		if err != nil {
			return nil, err
		}
		post.Image = url
	}

	if err := s.posts.Create(ctx, post); err != nil {
		if post.Image != "" {
			s.dropMedia(ctx, post.Image)
		}
		return nil, err
	}
	return post, nil
}

func splitTags(raw string) []string {
	tags := []string{}
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// Delete removes the actor's own post with its reactions and comments, then
// tries to remove the stored media.
func (s *PostService) Delete(ctx context.Context, postID string, actor *model.User) error {
	if !model.IsValidID(postID) {
		return errs.Invalid("invalid post id")
	}
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.UserID != actor.ID {
		return errs.Unauthorized("only the author can delete this post")
	}
	if err := s.posts.Delete(ctx, postID); err != nil {
		return err
	}
	if post.Image != "" {
		s.dropMedia(ctx, post.Image)
	}
	return nil
}

func (s *PostService) dropMedia(ctx context.Context, url string) {
	if err := s.media.Delete(ctx, url); err != nil {
		s.log.WarnContext(ctx, "media cleanup failed", "url", url, "err", err)
	}
}
