package service

import (
	"context"
	"time"

	"Social_Hub/internal/errs"
	"Social_Hub/internal/pkg"
)

const ScopeReset = "reset"

// EmailService sends one-time codes. A code is stored as pending, mailed,
// and only confirmed once the mail went out, so a code that was never
// delivered cannot be used.
type EmailService struct {
	codes  CodeStore
	mailer pkg.Mailer
	ttl    time.Duration
}

func NewEmailService(codes CodeStore, mailer pkg.Mailer, ttl time.Duration) *EmailService {
	return &EmailService{codes: codes, mailer: mailer, ttl: ttl}
}

func (s *EmailService) SendResetCode(ctx context.Context, email string) error {
	code, err := pkg.RandDigits(pkg.ResetCodeDigits)
	if err != nil {
		return errs.Internal(err)
	}
	if err := s.codes.Pending(ctx, ScopeReset, email, code, s.ttl); err != nil {
		return err
	}

	html := pkg.EmailCodeHTML("reset your password", code, s.ttl)
	if err := s.mailer.Send(ctx, email, "Your password reset code", html); err != nil {
		_ = s.codes.DropPending(ctx, ScopeReset, email)
		return errs.Upstream("could not send the email", err)
	}

	if err := s.codes.Confirm(ctx, ScopeReset, email, s.ttl); err != nil {
		_ = s.codes.DropPending(ctx, ScopeReset, email)
		return errs.Internal(err)
	}
	return nil
}

// VerifyCode checks a code and consumes it on success.
func (s *EmailService) VerifyCode(ctx context.Context, scope, email, code string) (bool, error) {
	val, err := s.codes.Confirmed(ctx, scope, email)
	if errs.Is(err, errs.KindNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if val != code {
		return false, nil
	}
	// Losing the race to another request means the code is spent.
	if err := s.codes.Consume(ctx, scope, email); err != nil {
		if errs.Is(err, errs.KindNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
