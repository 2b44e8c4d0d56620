package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"Social_Hub/internal/config"
	"Social_Hub/internal/media"
	"Social_Hub/internal/middleware"
	"Social_Hub/internal/pkg"
	"Social_Hub/internal/repository/mysql"
	"Social_Hub/internal/repository/redis"
	"Social_Hub/internal/service"
	"Social_Hub/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp"
)

type nopMailer struct{}

func (nopMailer) Send(context.Context, string, string, string) error { return nil }

type noGoogle struct{}

func (noGoogle) Verify(context.Context, string) (*pkg.GoogleIdentity, error) {
	return nil, pkg.ErrGoogleDisabled
}

type testServer struct {
	*httptest.Server
	clock *testutil.StubClock
}

func newServer(t *testing.T, health func(context.Context) error) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := mysql.NewStore(testutil.NewSQLiteDB(t))
	mr := miniredis.RunT(t)
	rdb, err := redis.New(mr.Addr(), "", 0)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { rdb.Close() })
	mediaDir := t.TempDir()
	mediaStore, err := media.NewLocalStore(mediaDir, "/media")
	if err != nil {
		t.Fatal(err)
	}

	log := pkg.NopLogger()
	sessions := redis.NewSessionStore(rdb)
	clock := testutil.FixedClock()
	tokens := pkg.NewTokenManager("a", "r", 15*time.Minute, time.Hour, clock)
	identity := service.NewIdentityService(store.Users)
	feed := service.NewFeedService(store.Users, store.Communities, store.Posts, store.Comments)

	h := New(Deps{
		Log:    log,
		Server: config.ServerConfig{},
		Auth: &middleware.Authenticator{
			Tokens:     tokens,
			Sessions:   sessions,
			Identity:   identity,
			SessionTTL: time.Hour,
		},
		Users: service.NewUserService(service.UserDeps{
			Users:      store.Users,
			Follows:    store.Follows,
			Sessions:   sessions,
			Tokens:     tokens,
			Google:     noGoogle{},
			Email:      service.NewEmailService(redis.NewCodeStore(rdb), nopMailer{}, time.Minute),
			Feed:       feed,
			Media:      mediaStore,
			MaxUpload:  1 << 20,
			SessionTTL: time.Hour,
		}),
		Posts:       service.NewPostService(store.Posts, store.Communities, mediaStore, 1<<20, log),
		Feed:        feed,
		Interaction: service.NewInteractionService(store.Users, store.Communities, store.Posts, store.Comments, store.Follows),
		Communities: service.NewCommunityService(store.Communities, store.Users, feed),
		Search:      service.NewSearchService(store.Users, store.Communities),
		Health:      health,
		MediaDir:    mediaDir,
	})
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, clock: clock}
}

type client struct {
	t     *testing.T
	base  string
	token string
}

func (c *client) do(method, path, contentType string, body io.Reader) (int, map[string]any) {
	c.t.Helper()
	req, err := http.NewRequest(method, c.base+path, body)
	if err != nil {
		c.t.Fatal(err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		c.t.Fatal(err)
	}
	defer resp.Body.Close()
	out := map[string]any{}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		c.t.Fatalf("%s %s: decode: %v", method, path, err)
	}
	return resp.StatusCode, out
}

func (c *client) json(method, path string, body any) (int, map[string]any) {
	c.t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			c.t.Fatal(err)
		}
		r = bytes.NewReader(b)
	}
	return c.do(method, path, "application/json", r)
}

func (c *client) form(method, path string, fields map[string]string, file string, data []byte) (int, map[string]any) {
	c.t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			c.t.Fatal(err)
		}
	}
	if file != "" {
		fw, err := w.CreateFormFile("image", file)
		if err != nil {
			c.t.Fatal(err)
		}
		fw.Write(data)
	}
	w.Close()
	return c.do(method, path, w.FormDataContentType(), &buf)
}

func signUp(t *testing.T, srv *testServer, name, email string) (*client, string) {
	t.Helper()
	c := &client{t: t, base: srv.URL}
	status, body := c.json("POST", "/api/auth/register", map[string]string{"name": name, "email": email, "password": "secret1"})
	if status != http.StatusCreated {
		t.Fatalf("register %s: %d %v", email, status, body)
	}
	status, body = c.json("POST", "/api/auth/login", map[string]string{"email": email, "password": "secret1"})
	if status != http.StatusOK {
		t.Fatalf("login %s: %d %v", email, status, body)
	}
	c.token = body["token"].(string)
	return c, body["user"].(map[string]any)["id"].(string)
}

func TestPostLifecycleOverHTTP(t *testing.T) {
	srv := newServer(t, nil)
	alice, aliceID := signUp(t, srv, "Alice", "alice@example.com")
	bob, bobID := signUp(t, srv, "Bob", "bob@example.com")

	status, body := alice.form("POST", "/api/posts", map[string]string{"title": "Hello", "description": "first post", "tags": "intro"}, "", nil)
	if status != http.StatusCreated {
		t.Fatalf("create post: %d %v", status, body)
	}
	postID := body["post"].(map[string]any)["id"].(string)

	anon := &client{t: t, base: srv.URL}
	status, body = anon.json("GET", "/api/posts", nil)
	if status != http.StatusOK || body["success"] != true {
		t.Fatalf("feed: %d %v", status, body)
	}
	posts := body["posts"].([]any)
	if len(posts) != 1 {
		t.Fatalf("feed = %v", posts)
	}
	author := posts[0].(map[string]any)["user"].(map[string]any)
	if author["id"] != aliceID || author["name"] != "Alice" {
		t.Fatalf("author = %v", author)
	}

	status, body = bob.json("PUT", "/api/posts/"+postID, map[string]string{"action": "like"})
	if status != http.StatusOK || body["message"] != "post liked" {
		t.Fatalf("like: %d %v", status, body)
	}
	if diff := cmp.Diff([]any{bobID}, body["likes"]); diff != "" {
		t.Fatalf("likes (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]any{}, body["dislikes"]); diff != "" {
		t.Fatalf("dislikes (-want +got):\n%s", diff)
	}
	_, body = bob.json("PUT", "/api/posts/"+postID, map[string]string{"action": "dislike"})
	if body["message"] != "post disliked" {
		t.Fatalf("switch to dislike: %v", body)
	}
	_, body = bob.json("PUT", "/api/posts/"+postID, map[string]string{"action": "dislike"})
	if body["message"] != "reaction removed" {
		t.Fatalf("repeat dislike: %v", body)
	}
	bob.json("PUT", "/api/posts/"+postID, map[string]string{"action": "like"})
	_, body = bob.json("PUT", "/api/posts/"+postID, map[string]string{"action": "like"})
	if diff := cmp.Diff([]any{}, body["likes"]); diff != "" {
		t.Fatalf("likes after repeat (-want +got):\n%s", diff)
	}
	if body["message"] != "reaction removed" {
		t.Fatalf("repeat like message = %v", body["message"])
	}

	status, body = bob.json("POST", "/api/posts/"+postID, map[string]string{"content": "welcome"})
	if status != http.StatusOK || body["comment"].(map[string]any)["content"] != "welcome" {
		t.Fatalf("comment: %d %v", status, body)
	}

	status, body = bob.json("DELETE", "/api/posts/"+postID, nil)
	if status != http.StatusUnauthorized || body["success"] != false {
		t.Fatalf("delete by other: %d %v", status, body)
	}
	status, _ = alice.json("DELETE", "/api/posts/"+postID, nil)
	if status != http.StatusOK {
		t.Fatalf("delete by author: %d", status)
	}
	_, body = anon.json("GET", "/api/posts", nil)
	if len(body["posts"].([]any)) != 0 {
		t.Fatalf("feed after delete = %v", body["posts"])
	}
}

func TestPostWithImageIsServed(t *testing.T) {
	srv := newServer(t, nil)
	alice, _ := signUp(t, srv, "Alice", "alice@example.com")
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

	status, body := alice.form("POST", "/api/posts", map[string]string{"title": "pic", "description": "d"}, "pic.png", png)
	if status != http.StatusCreated {
		t.Fatalf("create: %d %v", status, body)
	}
	url := body["post"].(map[string]any)["image"].(string)
	resp, err := http.Get(srv.URL + url)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	got, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || !bytes.Equal(got, png) {
		t.Fatalf("GET %s: %d, %d bytes", url, resp.StatusCode, len(got))
	}

	status, body = alice.form("POST", "/api/posts", map[string]string{"title": "doc", "description": "d"}, "notes.txt", []byte("just text"))
	if status != http.StatusBadRequest {
		t.Fatalf("text upload: %d %v", status, body)
	}
}

func TestAuthRules(t *testing.T) {
	srv := newServer(t, nil)
	first, id := signUp(t, srv, "Alice", "alice@example.com")

	status, body := first.json("GET", "/api/user", nil)
	if status != http.StatusOK || body["userId"] != id {
		t.Fatalf("session user: %d %v", status, body)
	}

	anon := &client{t: t, base: srv.URL}
	status, body = anon.json("GET", "/api/user", nil)
	if status != http.StatusUnauthorized || body["success"] != false || body["message"] == "" {
		t.Fatalf("anonymous: %d %v", status, body)
	}

	// A second login replaces the first session.
	srv.clock.Advance(time.Second)
	second := &client{t: t, base: srv.URL}
	_, body = second.json("POST", "/api/auth/login", map[string]string{"email": "alice@example.com", "password": "secret1"})
	second.token = body["token"].(string)
	if status, _ := second.json("GET", "/api/user", nil); status != http.StatusOK {
		t.Fatalf("second session: %d", status)
	}
	if status, _ := first.json("GET", "/api/user", nil); status != http.StatusUnauthorized {
		t.Fatalf("replaced session: %d", status)
	}

	if status, _ := second.json("POST", "/api/auth/logout", nil); status != http.StatusOK {
		t.Fatalf("logout: %d", status)
	}
	if status, _ := second.json("GET", "/api/user", nil); status != http.StatusUnauthorized {
		t.Fatalf("after logout: %d", status)
	}

	if status, _ := anon.json("POST", "/api/auth/login", map[string]string{"email": "alice@example.com", "password": "nope!!"}); status != http.StatusUnauthorized {
		t.Fatalf("bad password: %d", status)
	}
	if status, _ := anon.json("POST", "/api/auth/register", map[string]string{"name": "A", "email": "alice@example.com", "password": "secret1"}); status != http.StatusConflict {
		t.Fatalf("duplicate register: %d", status)
	}
	if status, _ := anon.json("POST", "/api/auth/google", map[string]string{"credential": "x"}); status != http.StatusBadRequest {
		t.Fatalf("google disabled: %d", status)
	}
}

func TestCommunityFollowAndSearchOverHTTP(t *testing.T) {
	srv := newServer(t, nil)
	alice, aliceID := signUp(t, srv, "Alice", "alice@example.com")
	bob, bobID := signUp(t, srv, "Bob", "bob@example.com")

	status, body := alice.json("POST", "/api/community", map[string]string{"name": "Gophers", "description": "go"})
	if status != http.StatusCreated {
		t.Fatalf("create community: %d %v", status, body)
	}
	cid := body["community"].(map[string]any)["id"].(string)

	status, body = bob.json("PUT", "/api/community/"+cid, nil)
	if status != http.StatusOK || body["joined"] != true || body["memberCount"] != float64(2) {
		t.Fatalf("join: %d %v", status, body)
	}
	if len(body["members"].([]any)) != 2 {
		t.Fatalf("members = %v", body["members"])
	}

	if status, _ := bob.json("GET", "/api/community/not-an-id", nil); status != http.StatusBadRequest {
		t.Fatalf("malformed community id: %d", status)
	}

	status, body = bob.json("POST", "/api/users/follow", map[string]string{"userId": aliceID})
	if status != http.StatusOK || body["isFollowing"] != true {
		t.Fatalf("follow: %d %v", status, body)
	}
	status, body = bob.json("POST", "/api/users/follow", map[string]string{"userId": bobID})
	if status != http.StatusBadRequest {
		t.Fatalf("self follow: %d %v", status, body)
	}

	_, body = alice.json("GET", "/api/users/"+aliceID, nil)
	followers := body["user"].(map[string]any)["followers"].([]any)
	if diff := cmp.Diff([]any{bobID}, followers); diff != "" {
		t.Fatalf("followers (-want +got):\n%s", diff)
	}

	_, body = bob.json("GET", "/api/search?q=goph", nil)
	if len(body["communities"].([]any)) != 1 {
		t.Fatalf("search = %v", body)
	}
	_, body = bob.json("GET", "/api/search/random", nil)
	for _, u := range body["users"].([]any) {
		if u.(map[string]any)["id"] == bobID {
			t.Fatal("random suggested the viewer")
		}
	}
}

func TestHealthz(t *testing.T) {
	srv := newServer(t, nil)
	c := &client{t: t, base: srv.URL}
	if status, body := c.json("GET", "/healthz", nil); status != http.StatusOK || body["status"] != "ok" {
		t.Fatalf("healthz: %d %v", status, body)
	}

	down := newServer(t, func(context.Context) error { return errors.New("db down") })
	c = &client{t: t, base: down.URL}
	if status, _ := c.json("GET", "/healthz", nil); status != http.StatusServiceUnavailable {
		t.Fatalf("unhealthy: %d", status)
	}
}
