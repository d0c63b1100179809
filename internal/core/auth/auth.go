package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ogurasousui/workforce-api/internal/core/user"
)

var (
	ErrInvalidCredentials = errors.New("auth: incorrect username or password")
	ErrInactiveUser       = errors.New("auth: inactive user")
	ErrUnauthenticated    = errors.New("auth: could not validate credentials")
	ErrForbidden          = errors.New("auth: not enough permissions")
)

// UserStore は認証に利用するユーザーストアです。
type UserStore interface {
	FindByID(ctx context.Context, id string) (*user.User, error)
	FindByUsername(ctx context.Context, username string) (*user.User, error)
}

// PasswordVerifier はハッシュと平文パスワードを照合します。
type PasswordVerifier interface {
	Verify(hash, plain string) bool
}

// TokenIssuer はアクセストークンの発行と検証を行います。
type TokenIssuer interface {
	Issue(subject, role string) (string, time.Time, error)
	Verify(token string) (subject string, role string, err error)
}

// Principal は認証済みの呼び出し元です。
type Principal struct {
	UserID string
	Role   user.Role
}

// IsAdmin は管理者かどうかを返します。
func (p Principal) IsAdmin() bool {
	return p.Role == user.RoleAdmin
}

// AccessToken はログイン結果です。
type AccessToken struct {
	Token     string
	ExpiresAt time.Time
}

// Service はログインとトークン検証を提供します。
type Service struct {
	users    UserStore
	verifier PasswordVerifier
	tokens   TokenIssuer
}

// NewService は Service を生成します。
func NewService(users UserStore, verifier PasswordVerifier, tokens TokenIssuer) *Service {
	return &Service{users: users, verifier: verifier, tokens: tokens}
}

// Login はユーザー名とパスワードを検証し、アクセストークンを発行します。
// ユーザーが存在しない場合とパスワード不一致は区別しません。
func (s *Service) Login(ctx context.Context, username, password string) (*AccessToken, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	u, err := s.users.FindByUsername(ctx, username)
	if errors.Is(err, user.ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !s.verifier.Verify(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, ErrInactiveUser
	}

	token, expiresAt, err := s.tokens.Issue(u.ID, string(u.Role))
	if err != nil {
		return nil, fmt.Errorf("auth: issue token: %w", err)
	}

	return &AccessToken{Token: token, ExpiresAt: expiresAt}, nil
}

// Authenticate はアクセストークンを検証し、有効なユーザーであれば Principal を返します。
// ロールはトークンではなく現在のユーザー情報から決定します。
func (s *Service) Authenticate(ctx context.Context, token string) (*Principal, error) {
	subject, _, err := s.tokens.Verify(token)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	u, err := s.users.FindByID(ctx, subject)
	if errors.Is(err, user.ErrUserNotFound) {
		return nil, ErrUnauthenticated
	}
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, ErrInactiveUser
	}

	return &Principal{UserID: u.ID, Role: u.Role}, nil
}
