package service

import (
	"context"
	"testing"
	"time"

	"Social_Hub/internal/errs"
	"Social_Hub/internal/model"

	"github.com/google/go-cmp/cmp"
)

func TestParseFeedQuery(t *testing.T) {
	id := model.NewID()
	cases := []struct {
		name, limit, before string
		wantLimit           int
		wantCursor          *model.PostCursor
		wantErr             bool
	}{
		{name: "empty"},
		{name: "limit", limit: "20", wantLimit: 20},
		{name: "clamped", limit: "5000", wantLimit: MaxFeedLimit},
		{name: "zero", limit: "0"},
		{name: "negative", limit: "-1", wantErr: true},
		{name: "not a number", limit: "ten", wantErr: true},
		{name: "cursor", before: "1700000000000000000_" + id,
			wantCursor: &model.PostCursor{CreatedAt: time.Unix(0, 1700000000000000000).UTC(), ID: id}},
		{name: "cursor without id", before: "1700000000000000000", wantErr: true},
		{name: "cursor bad id", before: "1_abc", wantErr: true},
		{name: "cursor bad time", before: "x_" + id, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q, err := ParseFeedQuery(tc.limit, tc.before)
			if tc.wantErr {
				if !errs.Is(err, errs.KindInvalidInput) {
					t.Fatalf("err = %v, want invalid input", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if q.Limit != tc.wantLimit {
				t.Fatalf("limit = %d, want %d", q.Limit, tc.wantLimit)
			}
			if diff := cmp.Diff(tc.wantCursor, q.Before); diff != "" {
				t.Fatalf("cursor (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCursorRoundTrip(t *testing.T) {
	p := &model.Post{ID: model.NewID(), CreatedAt: time.Date(2024, 3, 1, 12, 0, 0, 123456789, time.UTC)}
	c, err := ParseCursor(FormatCursor(p))
	if err != nil {
		t.Fatal(err)
	}
	if !c.CreatedAt.Equal(p.CreatedAt) || c.ID != p.ID {
		t.Fatalf("cursor = %+v", c)
	}
}

func TestListFeedJoinsAuthorsCommentsAndCommunities(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice, bob := e.user(t, "Alice"), e.user(t, "Bob")
	c, err := e.communities.Create(ctx, alice, CreateCommunityInput{Name: "gophers", Description: "go"})
	if err != nil {
		t.Fatal(err)
	}

	plain := e.post(t, alice, "plain")
	inCommunity, err := e.posts.Create(ctx, bob, CreatePostInput{
		Title: "grouped", Description: "d", Community: c.ID, Tags: "go, news",
		Media: upload("pic.png", pngBytes),
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.interaction.AddComment(ctx, plain.ID, bob, "first"); err != nil {
		t.Fatal(err)
	}
	if _, err := e.interaction.AddComment(ctx, plain.ID, alice, "second"); err != nil {
		t.Fatal(err)
	}
	if _, err := e.interaction.ApplyReaction(ctx, plain.ID, bob.ID, model.ReactionLike); err != nil {
		t.Fatal(err)
	}

	page, err := e.feed.ListFeed(ctx, FeedQuery{})
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Posts) != 2 || page.NextCursor != "" {
		t.Fatalf("page = %d posts, cursor %q", len(page.Posts), page.NextCursor)
	}
	newest, oldest := page.Posts[0], page.Posts[1]
	if newest.ID != inCommunity.ID || oldest.ID != plain.ID {
		t.Fatalf("order = %s, %s", newest.ID, oldest.ID)
	}

	if newest.User != (AuthorView{ID: bob.ID, Name: "Bob", Email: bob.Email}) {
		t.Fatalf("author = %+v", newest.User)
	}
	if diff := cmp.Diff(&CommunityRef{ID: c.ID, Name: "gophers"}, newest.Community); diff != "" {
		t.Fatalf("community (-want +got):\n%s", diff)
	}
	if newest.MediaType != "image" || newest.Image == "" {
		t.Fatalf("media = %q %q", newest.MediaType, newest.Image)
	}
	if diff := cmp.Diff([]string{"go", "news"}, newest.Tags); diff != "" {
		t.Fatalf("tags (-want +got):\n%s", diff)
	}

	if oldest.Community != nil || oldest.MediaType != "" {
		t.Fatalf("plain post = %+v", oldest)
	}
	if diff := cmp.Diff([]string{bob.ID}, oldest.Likes); diff != "" {
		t.Fatalf("likes (-want +got):\n%s", diff)
	}
	if len(oldest.Comments) != 2 {
		t.Fatalf("comments = %+v", oldest.Comments)
	}
	first := oldest.Comments[0]
	if first.Content != "first" || first.User.ID != bob.ID || first.User.Name != "Bob" || first.User.Email != "" {
		t.Fatalf("first comment = %+v", first)
	}
	if oldest.Comments[1].Content != "second" {
		t.Fatalf("second comment = %+v", oldest.Comments[1])
	}
}

func TestListFeedPagesWithCursor(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.user(t, "Writer")
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var ids []string
	for i := range 5 {
		p := &model.Post{Title: "p", Description: "d", UserID: u.ID, CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		if err := e.store.Posts.Create(ctx, p); err != nil {
			t.Fatal(err)
		}
		ids = append([]string{p.ID}, ids...)
	}

	var got []string
	q := FeedQuery{Limit: 2}
	for range 4 {
		page, err := e.feed.ListFeed(ctx, q)
		if err != nil {
			t.Fatal(err)
		}
		for _, p := range page.Posts {
			got = append(got, p.ID)
		}
		if page.NextCursor == "" {
			break
		}
		q.Before, err = ParseCursor(page.NextCursor)
		if err != nil {
			t.Fatal(err)
		}
	}
	if diff := cmp.Diff(ids, got); diff != "" {
		t.Fatalf("paged ids (-want +got):\n%s", diff)
	}
}

func TestCommunityAndUserFeeds(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice, bob := e.user(t, "Alice"), e.user(t, "Bob")
	c, err := e.communities.Create(ctx, alice, CreateCommunityInput{Name: "gophers", Description: "go"})
	if err != nil {
		t.Fatal(err)
	}
	e.post(t, alice, "outside")
	inside, err := e.posts.Create(ctx, bob, CreatePostInput{Title: "inside", Description: "d", Community: c.ID})
	if err != nil {
		t.Fatal(err)
	}

	page, err := e.feed.ListCommunityFeed(ctx, c.ID, FeedQuery{})
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Posts) != 1 || page.Posts[0].ID != inside.ID {
		t.Fatalf("community feed = %+v", page.Posts)
	}

	page, err = e.feed.ListUserPosts(ctx, alice.ID, FeedQuery{})
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Posts) != 1 || page.Posts[0].Title != "outside" {
		t.Fatalf("user posts = %+v", page.Posts)
	}

	if _, err := e.feed.ListCommunityFeed(ctx, "bad", FeedQuery{}); !errs.Is(err, errs.KindInvalidInput) {
		t.Fatalf("bad community id: %v", err)
	}
	if _, err := e.feed.ListUserPosts(ctx, "bad", FeedQuery{}); !errs.Is(err, errs.KindInvalidInput) {
		t.Fatalf("bad user id: %v", err)
	}
}

func TestListFeedEmpty(t *testing.T) {
	e := newEnv(t)
	page, err := e.feed.ListFeed(context.Background(), FeedQuery{Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	if page.Posts == nil || len(page.Posts) != 0 || page.NextCursor != "" {
		t.Fatalf("page = %+v", page)
	}
}
