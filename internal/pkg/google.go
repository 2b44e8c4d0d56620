package pkg

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/api/idtoken"
)

// GoogleIdentity is the verified content of a Google ID token.
type GoogleIdentity struct {
	Subject string
	Email   string
	Name    string
	Picture string
}

// IDTokenVerifier checks a federated credential and returns who it belongs to.
type IDTokenVerifier interface {
	Verify(ctx context.Context, credential string) (*GoogleIdentity, error)
}

var ErrGoogleDisabled = errors.New("google login is not configured")

// GoogleVerifier validates Google ID tokens against the configured OAuth
// client id.
type GoogleVerifier struct {
	clientID string
}

func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{clientID: clientID}
}

func (v *GoogleVerifier) Verify(ctx context.Context, credential string) (*GoogleIdentity, error) {
	if v.clientID == "" {
		return nil, ErrGoogleDisabled
	}
	payload, err := idtoken.Validate(ctx, credential, v.clientID)
	if err != nil {
		return nil, err
	}

	claim := func(k string) string {
		s, _ := payload.Claims[k].(string)
		return s
	}
	if verified, ok := payload.Claims["email_verified"].(bool); ok && !verified {
		return nil, errors.New("google account email is not verified")
	}
	id := &GoogleIdentity{
		Subject: payload.Subject,
		Email:   strings.ToLower(claim("email")),
		Name:    claim("name"),
		Picture: claim("picture"),
	}
	if id.Email == "" {
		return nil, errors.New("google token carries no email")
	}
	return id, nil
}
