package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"Social_Hub/internal/media"
	"Social_Hub/internal/model"
	"Social_Hub/internal/pkg"
	"Social_Hub/internal/repository/mysql"
	"Social_Hub/internal/repository/redis"
	"Social_Hub/internal/testutil"

	"github.com/alicebob/miniredis/v2"
)

type fakeMedia struct {
	mu      sync.Mutex
	saved   map[string][]byte
	deleted []string
	saveErr error
	delErr  error
}

func (f *fakeMedia) Save(_ context.Context, obj media.Object) (string, error) {
	if f.saveErr != nil {
		return "", f.saveErr
	}
	body, err := io.ReadAll(obj.Body)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saved == nil {
		f.saved = map[string][]byte{}
	}
	url := "https://media.test/" + obj.Key
	f.saved[url] = body
	return url, nil
}

func (f *fakeMedia) Delete(_ context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, url)
	return f.delErr
}

type sentMail struct {
	to, subject, body string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (f *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMail{to, subject, body})
	return nil
}

type fakeGoogle map[string]*pkg.GoogleIdentity

func (f fakeGoogle) Verify(_ context.Context, credential string) (*pkg.GoogleIdentity, error) {
	if id, ok := f[credential]; ok {
		return id, nil
	}
	return nil, errors.New("bad token")
}

type env struct {
	store  *mysql.Store
	redis  *miniredis.Miniredis
	clock  *testutil.StubClock
	media  *fakeMedia
	mailer *fakeMailer
	google fakeGoogle
	tokens *pkg.TokenManager

	sessions    *redis.SessionStore
	identity    *IdentityService
	interaction *InteractionService
	feed        *FeedService
	posts       *PostService
	communities *CommunityService
	users       *UserService
	search      *SearchService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store := mysql.NewStore(testutil.NewSQLiteDB(t))
	mr := miniredis.RunT(t)
	rdb, err := redis.New(mr.Addr(), "", 0)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { rdb.Close() })

	e := &env{
		store:    store,
		redis:    mr,
		clock:    testutil.FixedClock(),
		media:    &fakeMedia{},
		mailer:   &fakeMailer{},
		google:   fakeGoogle{},
		sessions: redis.NewSessionStore(rdb),
	}
	e.tokens = pkg.NewTokenManager("access-secret", "refresh-secret", 15*time.Minute, 24*time.Hour, e.clock)
	log := pkg.NopLogger()

	e.identity = NewIdentityService(store.Users)
	e.interaction = NewInteractionService(store.Users, store.Communities, store.Posts, store.Comments, store.Follows)
	e.feed = NewFeedService(store.Users, store.Communities, store.Posts, store.Comments)
	e.posts = NewPostService(store.Posts, store.Communities, e.media, 1<<20, log)
	e.communities = NewCommunityService(store.Communities, store.Users, e.feed)
	e.search = NewSearchService(store.Users, store.Communities)
	e.users = NewUserService(UserDeps{
		Users:      store.Users,
		Follows:    store.Follows,
		Sessions:   e.sessions,
		Tokens:     e.tokens,
		Google:     e.google,
		Email:      NewEmailService(redis.NewCodeStore(rdb), e.mailer, 5*time.Minute),
		Feed:       e.feed,
		Media:      e.media,
		MaxUpload:  1 << 20,
		SessionTTL: 30 * time.Minute,
	})
	return e
}

// user creates an account directly in the store; registration has its own
// tests.
func (e *env) user(t *testing.T, name string) *model.User {
	t.Helper()
	u := &model.User{Name: name, Email: strings.ToLower(name) + "@example.com"}
	if err := e.store.Users.Create(context.Background(), u); err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return u
}

func (e *env) post(t *testing.T, author *model.User, title string) *model.Post {
	t.Helper()
	p, err := e.posts.Create(context.Background(), author, CreatePostInput{Title: title, Description: title + " body"})
	if err != nil {
		t.Fatalf("create post %q: %v", title, err)
	}
	return p
}

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func upload(name string, body []byte) *Upload {
	return &Upload{Name: name, Size: int64(len(body)), Body: bytes.NewReader(body)}
}
