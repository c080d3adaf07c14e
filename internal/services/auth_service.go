package services

import (
	"context"
	"database/sql"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"nyumba/internal/apperr"
	"nyumba/internal/domain"
	"nyumba/internal/repos"
)

var ErrBadCreds = apperr.Unauthorized("Invalid email or password")

type AuthService struct {
	Users *repos.UserRepo
}

func (s *AuthService) Login(ctx context.Context, sid, email, password string) (*domain.User, error) {
	u, err := s.Users.ByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBadCreds
	}
	if err != nil {
		return nil, apperr.Upstream("Failed to load user", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, ErrBadCreds
	}
	if err := s.Users.BindSession(ctx, sid, u.ID); err != nil {
		return nil, apperr.Upstream("Failed to start session", err)
	}
	return u, nil
}

func (s *AuthService) Logout(ctx context.Context, sid string) error {
	return apperr.Upstream("Failed to end session", s.Users.UnbindSession(ctx, sid))
}

// CurrentUser resolves the session's user; a session without one yields nil.
func (s *AuthService) CurrentUser(ctx context.Context, sid string) (*domain.User, error) {
	u, err := s.Users.SessionUser(ctx, sid)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return u, err
}
