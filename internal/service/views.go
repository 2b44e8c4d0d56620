package service

import (
	"time"

	"Social_Hub/internal/model"
)

// AuthorView is the public face of a user inside other records.
type AuthorView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Image string `json:"image"`
}

type CommentView struct {
	ID        string     `json:"id"`
	PostID    string     `json:"postId"`
	Content   string     `json:"content"`
	User      AuthorView `json:"user"`
	CreatedAt time.Time  `json:"createdAt"`
}

type CommunityRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}

// PostView is a post joined with its author, comments and community.
type PostView struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Image       string        `json:"image"`
	MediaType   string        `json:"mediaType"`
	Tags        []string      `json:"tags"`
	User        AuthorView    `json:"user"`
	Likes       []string      `json:"likes"`
	Dislikes    []string      `json:"dislikes"`
	Comments    []CommentView `json:"comments"`
	Community   *CommunityRef `json:"community"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

type MemberView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

type CommunityView struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Image       string       `json:"image"`
	CreatorID   string       `json:"creatorId"`
	MemberCount int          `json:"memberCount"`
	Members     []MemberView `json:"members"`
	CreatedAt   time.Time    `json:"createdAt"`
}

type ProfileView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Image     string    `json:"image"`
	Followers []string  `json:"followers"`
	Following []string  `json:"following"`

	FollowerCount  int `json:"followerCount"`
	FollowingCount int `json:"followingCount"`

	CreatedAt time.Time `json:"createdAt"`
}

func authorOf(u *model.User, withEmail bool) AuthorView {
	v := AuthorView{ID: u.ID, Name: u.Name, Image: u.Image}
	if withEmail {
		v.Email = u.Email
	}
	return v
}

func memberOf(u *model.User) MemberView {
	return MemberView{ID: u.ID, Name: u.Name, Image: u.Image}
}

// usersByID indexes a batch lookup.
func usersByID(users []model.User) map[string]*model.User {
	m := make(map[string]*model.User, len(users))
	for i := range users {
		m[users[i].ID] = &users[i]
	}
	return m
}

// memberViews keeps the order of ids. Users that no longer exist keep their
// id with empty fields so the count still matches the member set.
func memberViews(ids []string, byID map[string]*model.User) []MemberView {
	out := make([]MemberView, len(ids))
	for i, id := range ids {
		if u, ok := byID[id]; ok {
			out[i] = memberOf(u)
		} else {
			out[i] = MemberView{ID: id}
		}
	}
	return out
}

func uniq(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
