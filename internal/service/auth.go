package service

import (
	"context"
	"errors"
	"time"

	"github.com/sharkweb/boardsite/internal/hash"
	"github.com/sharkweb/boardsite/internal/logging"
	"github.com/sharkweb/boardsite/internal/models"
	"github.com/sharkweb/boardsite/internal/repo"
	"github.com/sharkweb/boardsite/internal/token"
)

type AuthService struct {
	Repo  *repo.GormRepo
	Codec *token.Codec
}

// TokenResult is what register and login hand back. RefreshToken is always
// empty; the field is reserved and serialized as null on the wire.
type TokenResult struct {
	AccessToken  string
	RefreshToken string
	User         *models.User
}

func (s *AuthService) Register(ctx context.Context, email, password, nickname string) (*TokenResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	exists, err := s.Repo.ExistsByEmail(ctx, email)
	if err != nil {
		l.Error("register_failed", "reason", "email lookup failed", "error", err)
		return nil, err
	}
	if exists {
		l.Warn("register_failed", "reason", "email already registered")
		return nil, repo.ErrDuplicateEmail
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		l.Error("register_failed", "reason", "cannot hash password", "error", err)
		return nil, err
	}

	user := models.User{
		Email:        email,
		PasswordHash: pwHash,
		Nickname:     nickname,
		Role:         models.RoleUser,
	}
	// The pre-check above is not atomic with this insert; the unique index
	// settles the race between concurrent registrations.
	if err := s.Repo.CreateUser(ctx, &user); err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			l.Warn("register_failed", "reason", "email already registered")
			return nil, repo.ErrDuplicateEmail
		}
		l.Error("register_failed", "reason", "cannot create user", "error", err)
		return nil, err
	}

	return s.issueFor(ctx, &user)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*TokenResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	user, err := s.Repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("login_failed", "reason", "invalid credentials")
			return nil, ErrInvalidCredentials
		}
		l.Error("login_failed", "reason", "email lookup failed", "error", err)
		return nil, err
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login_failed", "reason", "invalid credentials")
		return nil, ErrInvalidCredentials
	}

	return s.issueFor(ctx, user)
}

func (s *AuthService) issueFor(ctx context.Context, user *models.User) (*TokenResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.issue")

	accessToken, err := s.Codec.Issue(user.Email, user.Nickname, user.Authorities(), time.Now())
	if err != nil {
		l.Error("issue_failed", "error", err)
		return nil, err
	}

	return &TokenResult{AccessToken: accessToken, User: user}, nil
}
