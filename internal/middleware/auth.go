package middleware

import (
	"context"
	"errors"
	"strings"
	"time"

	"Social_Hub/internal/errs"
	"Social_Hub/internal/model"
	"Social_Hub/internal/pkg"

	"github.com/gin-gonic/gin"
)

const ContextUserKey = "user"

// Sessions is the live-session store checked on every request.
type Sessions interface {
	Get(ctx context.Context, userRef string) (string, error)
	Extend(ctx context.Context, userRef string, ttl time.Duration) error
}

// Resolver maps a session reference to a user.
type Resolver interface {
	Resolve(ctx context.Context, ref, email string) (*model.User, error)
}

// Authenticator validates bearer tokens against the session store.
type Authenticator struct {
	Tokens     *pkg.TokenManager
	Sessions   Sessions
	Identity   Resolver
	SessionTTL time.Duration
}

// Required rejects requests without a live session.
func (a *Authenticator) Required() gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := a.authenticate(c)
		if err != nil {
			c.Error(err)
			c.Abort()
			return
		}
		c.Set(ContextUserKey, u)
		c.Next()
	}
}

// Optional attaches the user when a valid session is presented and lets
// anonymous requests through.
func (a *Authenticator) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") != "" {
			if u, err := a.authenticate(c); err == nil {
				c.Set(ContextUserKey, u)
			}
		}
		c.Next()
	}
}

func (a *Authenticator) authenticate(c *gin.Context) (*model.User, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return nil, errs.Unauthorized("missing authorization header")
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || scheme != "Bearer" || token == "" {
		return nil, errs.Unauthorized("invalid authorization format")
	}

	claims, err := a.Tokens.ParseAccess(token)
	if err != nil {
		if errors.Is(err, pkg.ErrTokenExpired) {
			return nil, errs.Unauthorized("token expired")
		}
		return nil, errs.Unauthorized("invalid token")
	}

	ctx := c.Request.Context()
	live, err := a.Sessions.Get(ctx, claims.UserRef)
	if err != nil {
		return nil, err
	}
	// A newer login replaced this token.
	if live != token {
		return nil, errs.Unauthorized("account has been signed in elsewhere")
	}

	u, err := a.Identity.Resolve(ctx, claims.UserRef, claims.Email)
	if err != nil {
		if errs.Is(err, errs.KindNotFound) {
			return nil, errs.Unauthorized("user no longer exists")
		}
		return nil, err
	}
	if err := a.Sessions.Extend(ctx, claims.UserRef, a.SessionTTL); err != nil {
		return nil, err
	}
	return u, nil
}

// CurrentUser returns the authenticated user, if any.
func CurrentUser(c *gin.Context) (*model.User, bool) {
	v, ok := c.Get(ContextUserKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*model.User)
	return u, ok
}
