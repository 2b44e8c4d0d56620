package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"Social_Hub/internal/errs"
	"Social_Hub/internal/model"

	"github.com/google/go-cmp/cmp"
)

func TestCreatePost(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.user(t, "Writer")
	c, err := e.communities.Create(ctx, u, CreateCommunityInput{Name: "gophers", Description: "go"})
	if err != nil {
		t.Fatal(err)
	}

	t.Run("tags and no community", func(t *testing.T) {
		for _, community := range []string{"", "null", "undefined"} {
			p, err := e.posts.Create(ctx, u, CreatePostInput{Title: " T ", Description: "D", Tags: "a, ,b,", Community: community})
			if err != nil {
				t.Fatalf("community %q: %v", community, err)
			}
			if p.Title != "T" || p.CommunityID != nil || p.Image != "" {
				t.Fatalf("post = %+v", p)
			}
			if diff := cmp.Diff([]string{"a", "b"}, []string(p.Tags)); diff != "" {
				t.Fatalf("tags (-want +got):\n%s", diff)
			}
		}
	})

	t.Run("community", func(t *testing.T) {
		p, err := e.posts.Create(ctx, u, CreatePostInput{Title: "T", Description: "D", Community: c.ID})
		if err != nil {
			t.Fatal(err)
		}
		if p.CommunityID == nil || *p.CommunityID != c.ID {
			t.Fatalf("community = %v", p.CommunityID)
		}
	})

	t.Run("rejects", func(t *testing.T) {
		cases := []struct {
			name string
			in   CreatePostInput
			kind errs.Kind
		}{
			{"no title", CreatePostInput{Description: "D"}, errs.KindInvalidInput},
			{"blank description", CreatePostInput{Title: "T", Description: "  "}, errs.KindInvalidInput},
			{"bad community", CreatePostInput{Title: "T", Description: "D", Community: "abc"}, errs.KindInvalidInput},
			{"missing community", CreatePostInput{Title: "T", Description: "D", Community: model.NewID()}, errs.KindNotFound},
			{"not media", CreatePostInput{Title: "T", Description: "D", Media: upload("a.txt", []byte("plain text"))}, errs.KindInvalidInput},
		}
		for _, tc := range cases {
			if _, err := e.posts.Create(ctx, u, tc.in); !errs.Is(err, tc.kind) {
				t.Errorf("%s: err = %v", tc.name, err)
			}
		}
	})
}

func TestCreatePostStoresMedia(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.user(t, "Writer")

	p, err := e.posts.Create(ctx, u, CreatePostInput{Title: "T", Description: "D", Media: upload("photo.png", pngBytes)})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(p.Image, "https://media.test/") || !strings.HasSuffix(p.Image, ".png") {
		t.Fatalf("image = %q", p.Image)
	}
	if !bytes.Equal(e.media.saved[p.Image], pngBytes) {
		t.Fatalf("stored %d bytes", len(e.media.saved[p.Image]))
	}
}

func TestCreatePostMediaFailures(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.user(t, "Writer")

	big := upload("big.png", pngBytes)
	big.Size = 2 << 20
	if _, err := e.posts.Create(ctx, u, CreatePostInput{Title: "T", Description: "D", Media: big}); !errs.Is(err, errs.KindInvalidInput) {
		t.Fatalf("oversize: %v", err)
	}

	e.media.saveErr = errors.New("bucket unavailable")
	_, err := e.posts.Create(ctx, u, CreatePostInput{Title: "T", Description: "D", Media: upload("photo.png", pngBytes)})
	if !errs.Is(err, errs.KindUpstreamFailure) {
		t.Fatalf("store failure: %v", err)
	}

	page, err := e.feed.ListUserPosts(ctx, u.ID, FeedQuery{})
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Posts) != 0 {
		t.Fatalf("posts after failures = %d", len(page.Posts))
	}
}

func TestDeletePostOnlyByAuthor(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	author, other := e.user(t, "Author"), e.user(t, "Other")
	p, err := e.posts.Create(ctx, author, CreatePostInput{Title: "T", Description: "D", Media: upload("photo.png", pngBytes)})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.interaction.AddComment(ctx, p.ID, other, "hi"); err != nil {
		t.Fatal(err)
	}

	if err := e.posts.Delete(ctx, p.ID, other); !errs.Is(err, errs.KindUnauthorized) {
		t.Fatalf("delete by other: %v", err)
	}
	if _, err := e.store.Posts.FindByID(ctx, p.ID); err != nil {
		t.Fatalf("post gone after rejected delete: %v", err)
	}

	if err := e.posts.Delete(ctx, p.ID, author); err != nil {
		t.Fatal(err)
	}
	if _, err := e.store.Posts.FindByID(ctx, p.ID); !errs.Is(err, errs.KindNotFound) {
		t.Fatalf("find after delete: %v", err)
	}
	comments, err := e.store.Comments.ListByPosts(ctx, []string{p.ID})
	if err != nil {
		t.Fatal(err)
	}
	if len(comments) != 0 {
		t.Fatalf("comments left = %d", len(comments))
	}
	if diff := cmp.Diff([]string{p.Image}, e.media.deleted); diff != "" {
		t.Fatalf("deleted media (-want +got):\n%s", diff)
	}

	if err := e.posts.Delete(ctx, p.ID, author); !errs.Is(err, errs.KindNotFound) {
		t.Fatalf("second delete: %v", err)
	}
}

func TestDeletePostIgnoresMediaCleanupFailure(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.user(t, "Author")
	p, err := e.posts.Create(ctx, u, CreatePostInput{Title: "T", Description: "D", Media: upload("photo.png", pngBytes)})
	if err != nil {
		t.Fatal(err)
	}
	e.media.delErr = errors.New("gone")
	if err := e.posts.Delete(ctx, p.ID, u); err != nil {
		t.Fatalf("delete: %v", err)
	}
}
