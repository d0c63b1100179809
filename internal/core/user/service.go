package user

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// PasswordHasher はパスワードハッシュの抽象です。
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(hash, plain string) bool
}

const (
	defaultListPageSize = 50
	maxListPageSize     = 200
	maxPasswordBytes    = 72
	maxEmailLength      = 255
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]{2,49}$`)

// Service はユーザーに関するユースケースをまとめます。
type Service struct {
	repo   Repository
	hasher PasswordHasher
	clock  Clock
}

// UseCase はユーザーユースケースの公開インターフェースです。
type UseCase interface {
	CreateUser(ctx context.Context, in CreateUserInput) (*User, error)
	GetUser(ctx context.Context, in GetUserInput) (*User, error)
	ListUsers(ctx context.Context, in ListUsersInput) (*ListUsersResult, error)
}

// NewService は Service を生成します。
func NewService(repo Repository, hasher PasswordHasher, clock Clock) *Service {
	if clock == nil {
		clock = realClock{}
	}
	return &Service{repo: repo, hasher: hasher, clock: clock}
}

// CreateUserInput は管理者によるユーザー作成時の入力です。
type CreateUserInput struct {
	Username string
	Email    string
	Password string
	Role     Role
}

// GetUserInput はユーザー取得時の入力です。
type GetUserInput struct {
	ID string
}

// ListUsersInput は一覧取得時の入力です。
type ListUsersInput struct {
	PageSize  int
	PageToken string
	Role      *Role
}

// ListUsersResult は一覧取得結果を表します。
type ListUsersResult struct {
	Users         []*User
	NextPageToken string
}

// CreateUser は新しいユーザーを作成します。
func (s *Service) CreateUser(ctx context.Context, in CreateUserInput) (*User, error) {
	email, err := NormalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}

	username, err := NormalizeUsername(in.Username)
	if err != nil {
		return nil, err
	}

	if err := ValidatePassword(in.Password); err != nil {
		return nil, err
	}

	role := in.Role
	if role == "" {
		role = RoleEmployee
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	existing, err := s.repo.FindByEmailOrUsername(ctx, email, username)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}
	if existing != nil {
		if existing.Email == email {
			return nil, ErrEmailAlreadyExists
		}
		return nil, ErrUsernameAlreadyExists
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("user: hash password: %w", err)
	}

	now := s.clock.Now()
	return s.repo.Create(ctx, &User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

// GetUser は ID でユーザーを取得します。
func (s *Service) GetUser(ctx context.Context, in GetUserInput) (*User, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}
	return s.repo.FindByID(ctx, in.ID)
}

// ListUsers はユーザーの一覧を取得します。
func (s *Service) ListUsers(ctx context.Context, in ListUsersInput) (*ListUsersResult, error) {
	limit, err := normalizePageSize(in.PageSize)
	if err != nil {
		return nil, err
	}

	offset, err := parsePageToken(in.PageToken)
	if err != nil {
		return nil, err
	}

	var rolePtr *Role
	if in.Role != nil {
		if !in.Role.Valid() {
			return nil, ErrInvalidRole
		}
		role := *in.Role
		rolePtr = &role
	}

	users, nextToken, err := s.repo.List(ctx, ListUsersFilter{
		Role:   rolePtr,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, err
	}

	return &ListUsersResult{Users: users, NextPageToken: nextToken}, nil
}

// NormalizeEmail はメールアドレスを検証し、小文字化したアドレスを返します。
func NormalizeEmail(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || utf8.RuneCountInString(trimmed) > maxEmailLength {
		return "", ErrInvalidEmail
	}

	addr, err := mail.ParseAddress(trimmed)
	if err != nil || addr.Address != trimmed {
		return "", ErrInvalidEmail
	}

	return strings.ToLower(addr.Address), nil
}

// NormalizeUsername はユーザー名を検証します。
func NormalizeUsername(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if !usernamePattern.MatchString(trimmed) {
		return "", ErrInvalidUsername
	}
	return trimmed, nil
}

// ValidatePassword はパスワードが空でなく、bcrypt の上限を超えないことを検証します。
func ValidatePassword(raw string) error {
	if raw == "" || len(raw) > maxPasswordBytes {
		return ErrInvalidPassword
	}
	return nil
}

func normalizePageSize(pageSize int) (int, error) {
	if pageSize <= 0 {
		return defaultListPageSize, nil
	}
	if pageSize > maxListPageSize {
		return 0, ErrInvalidPageSize
	}
	return pageSize, nil
}

func parsePageToken(token string) (int, error) {
	if strings.TrimSpace(token) == "" {
		return 0, nil
	}

	offset, err := strconv.Atoi(token)
	if err != nil || offset < 0 {
		return 0, ErrInvalidPageToken
	}

	return offset, nil
}
