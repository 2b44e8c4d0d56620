package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"Social_Hub/internal/errs"
	"Social_Hub/internal/media"
	"Social_Hub/internal/model"
	"Social_Hub/internal/pkg"

	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 6

// UserService covers accounts: registration, sessions, passwords and
// profiles.
type UserService struct {
	users      UserRepository
	follows    FollowRepository
	sessions   SessionStore
	tokens     *pkg.TokenManager
	google     pkg.IDTokenVerifier
	email      *EmailService
	feed       *FeedService
	saver      mediaSaver
	sessionTTL time.Duration
}

type UserDeps struct {
	Users      UserRepository
	Follows    FollowRepository
	Sessions   SessionStore
	Tokens     *pkg.TokenManager
	Google     pkg.IDTokenVerifier
	Email      *EmailService
	Feed       *FeedService
	Media      media.Store
	MaxUpload  int64
	SessionTTL time.Duration
}

func NewUserService(d UserDeps) *UserService {
	return &UserService{
		users:      d.Users,
		follows:    d.Follows,
		sessions:   d.Sessions,
		tokens:     d.Tokens,
		google:     d.Google,
		email:      d.Email,
		feed:       d.Feed,
		saver:      mediaSaver{store: d.Media, maxBytes: d.MaxUpload},
		sessionTTL: d.SessionTTL,
	}
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if name == "" || email == "" || in.Password == "" {
		return nil, errs.Invalid("name, email and password are required")
	}
	if err := checkRunes("name", name, maxNameLen); err != nil {
		return nil, err
	}
	if err := checkRunes("email", email, maxEmailLen); err != nil {
		return nil, err
	}
	if err := checkPassword(in.Password); err != nil {
		return nil, err
	}
	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &model.User{Name: name, Email: email, Password: hash}
	if err := s.users.Create(ctx, u); err != nil {
		if errs.Is(err, errs.KindConflict) {
			return nil, errs.Conflict("email is already registered")
		}
		return nil, err
	}
	return u, nil
}

// Session is what a successful login hands to the client.
type Session struct {
	User *model.User
	Pair *pkg.Pair
}

func (s *UserService) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, errs.Invalid("email and password are required")
	}
	u, err := s.users.FindByEmail(ctx, email)
	if errs.Is(err, errs.KindNotFound) {
		return nil, errs.Unauthorized("invalid email or password")
	}
	if err != nil {
		return nil, err
	}
	if !u.HasPassword() {
		return nil, errs.Invalid("this account uses Google login")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return nil, errs.Unauthorized("invalid email or password")
	}
	return s.issue(ctx, u)
}

// GoogleLogin signs in with a Google ID token, linking or creating the
// account by email.
func (s *UserService) GoogleLogin(ctx context.Context, credential string) (*Session, error) {
	if strings.TrimSpace(credential) == "" {
		return nil, errs.Invalid("credential is required")
	}
	id, err := s.google.Verify(ctx, credential)
	if errors.Is(err, pkg.ErrGoogleDisabled) {
		return nil, errs.Invalid("google login is not enabled")
	}
	if err != nil {
		return nil, errs.Unauthorized("invalid google credential")
	}
	if id.Email == "" {
		return nil, errs.Unauthorized("google account has no email")
	}

	u, err := s.users.FindByEmail(ctx, id.Email)
	switch {
	case errs.Is(err, errs.KindNotFound):
		sub := id.Subject
		u = &model.User{Email: id.Email, Name: id.Name, Image: id.Picture, GoogleID: &sub}
		if u.Name == "" {
			u.Name = strings.SplitN(id.Email, "@", 2)[0]
		}
		u.Name = clip(u.Name, maxNameLen)
		if checkRunes("image", u.Image, maxURLLen) != nil {
			u.Image = ""
		}
		if err := s.users.Create(ctx, u); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	case u.GoogleID == nil:
		sub := id.Subject
		if u, err = s.users.Update(ctx, u.ID, model.UserPatch{GoogleID: &sub}); err != nil {
			return nil, err
		}
	}
	return s.issue(ctx, u)
}

// issue signs a token pair and stores the access token as the user's only
// live session, replacing any earlier one.
func (s *UserService) issue(ctx context.Context, u *model.User) (*Session, error) {
	pair, err := s.tokens.GeneratePair(u.ID, u.Email)
	if err != nil {
		return nil, errs.Internal(err)
	}
	if err := s.sessions.Save(ctx, u.ID, pair.AccessToken, s.sessionTTL); err != nil {
		return nil, err
	}
	return &Session{User: u, Pair: pair}, nil
}

func (s *UserService) Logout(ctx context.Context, userID string) error {
	return s.sessions.Delete(ctx, userID)
}

func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*pkg.Pair, error) {
	if refreshToken == "" {
		return nil, errs.Invalid("refresh token is required")
	}
	claims, pair, err := s.tokens.Refresh(refreshToken)
	if err != nil {
		if errors.Is(err, pkg.ErrRefreshExpired) {
			return nil, errs.Unauthorized("refresh token expired")
		}
		if errors.Is(err, pkg.ErrRefreshInvalid) {
			return nil, errs.Unauthorized("invalid refresh token")
		}
		return nil, errs.Internal(err)
	}
	if err := s.sessions.Save(ctx, claims.UserRef, pair.AccessToken, s.sessionTTL); err != nil {
		return nil, err
	}
	return pair, nil
}

// SendResetCode mails a reset code. Unknown addresses get the same answer
// without a mail.
func (s *UserService) SendResetCode(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return errs.Invalid("email is required")
	}
	if _, err := s.users.FindByEmail(ctx, email); err != nil {
		if errs.Is(err, errs.KindNotFound) {
			return nil
		}
		return err
	}
	return s.email.SendResetCode(ctx, email)
}

type ResetPasswordInput struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"newPassword"`
}

func (s *UserService) ResetPassword(ctx context.Context, in ResetPasswordInput) error {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Code == "" {
		return errs.Invalid("email and code are required")
	}
	if err := checkPassword(in.NewPassword); err != nil {
		return err
	}
	ok, err := s.email.VerifyCode(ctx, ScopeReset, email, in.Code)
	if err != nil {
		return err
	}
	if !ok {
		return errs.Invalid("invalid or expired code")
	}
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if err := s.setPassword(ctx, u.ID, in.NewPassword); err != nil {
		return err
	}
	return s.sessions.Delete(ctx, u.ID)
}

// ChangePassword checks the old password and ends the current session.
func (s *UserService) ChangePassword(ctx context.Context, u *model.User, oldPassword, newPassword string) error {
	if err := checkPassword(newPassword); err != nil {
		return err
	}
	if !u.HasPassword() || bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(oldPassword)) != nil {
		return errs.Unauthorized("old password is incorrect")
	}
	if err := s.setPassword(ctx, u.ID, newPassword); err != nil {
		return err
	}
	return s.Logout(ctx, u.ID)
}

func (s *UserService) setPassword(ctx context.Context, userID, password string) error {
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	_, err = s.users.Update(ctx, userID, model.UserPatch{Password: &hash})
	return err
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errs.Internal(err)
	}
	return string(hash), nil
}

// Profile returns the user with follower and following ids.
func (s *UserService) Profile(ctx context.Context, u *model.User) (*ProfileView, error) {
	followers, err := s.follows.Followers(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	following, err := s.follows.Following(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	return &ProfileView{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Image:     u.Image,
		Followers: followers,
		Following: following,

		FollowerCount:  len(followers),
		FollowingCount: len(following),

		CreatedAt: u.CreatedAt,
	}, nil
}

type UpdateProfileInput struct {
	UserID string
	Name   *string
	Image  *Upload
}

func (s *UserService) UpdateProfile(ctx context.Context, actor *model.User, in UpdateProfileInput) (*ProfileView, error) {
	if !model.IsValidID(in.UserID) {
		return nil, errs.Invalid("invalid user id")
	}
	if in.UserID != actor.ID {
		return nil, errs.Unauthorized("you can only update your own profile")
	}
	var patch model.UserPatch
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, errs.Invalid("name cannot be empty")
		}
		if err := checkRunes("name", name, maxNameLen); err != nil {
			return nil, err
		}
		patch.Name = &name
	}
	if in.Image != nil {
		url, err := s.saver.save(ctx, in.Image)
		if err != nil {
			return nil, err
		}
		patch.Image = &url
	}
	u, err := s.users.Update(ctx, actor.ID, patch)
	if err != nil {
		return nil, err
	}
	return s.Profile(ctx, u)
}

type UserPage struct {
	User  ProfileView `json:"user"`
	Posts []PostView  `json:"posts"`
}

// UserPage is the public view of a user with their posts.
func (s *UserService) UserPage(ctx context.Context, id string) (*UserPage, error) {
	if !model.IsValidID(id) {
		return nil, errs.Invalid("invalid user id")
	}
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	profile, err := s.Profile(ctx, u)
	if err != nil {
		return nil, err
	}
	page, err := s.feed.ListUserPosts(ctx, id, FeedQuery{})
	if err != nil {
		return nil, err
	}
	return &UserPage{User: *profile, Posts: page.Posts}, nil
}
