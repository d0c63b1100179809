package invitation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ogurasousui/workforce-api/internal/core/employee"
	"github.com/ogurasousui/workforce-api/internal/core/user"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

// UserStore は受諾時に参照・作成するユーザーストアです。
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*user.User, error)
	FindByUsername(ctx context.Context, username string) (*user.User, error)
	Create(ctx context.Context, u *user.User) (*user.User, error)
}

// EmployeeStore は受諾時に参照・作成する社員ストアです。
type EmployeeStore interface {
	FindByCode(ctx context.Context, employeeCode string) (*employee.Employee, error)
	Create(ctx context.Context, e *employee.Employee) (*employee.Employee, error)
}

// PasswordHasher はパスワードをハッシュ化します。
type PasswordHasher interface {
	Hash(plain string) (string, error)
}

// TokenGenerator は推測不能な招待トークンを生成します。
type TokenGenerator interface {
	NewToken() (string, error)
}

// Notifier は招待メールを送信します。失敗しても招待の作成結果には影響しません。
type Notifier interface {
	SendInvitation(ctx context.Context, email, token string) error
}

type noopNotifier struct{}

func (noopNotifier) SendInvitation(context.Context, string, string) error {
	return nil
}

const (
	defaultListPageSize = 50
	maxListPageSize     = 200
)

// Dependencies は Service の依存関係です。Repo, Users, Employees, Hasher, Tokens は必須です。
type Dependencies struct {
	Repo      Repository
	Users     UserStore
	Employees EmployeeStore
	Hasher    PasswordHasher
	Tokens    TokenGenerator
	Notifier  Notifier
	Tx        TransactionManager
	Clock     Clock
	Logger    *zap.Logger
	TTL       time.Duration
}

// Service は招待のライフサイクル (作成・検証・受諾) を管理します。
type Service struct {
	repo      Repository
	users     UserStore
	employees EmployeeStore
	hasher    PasswordHasher
	tokens    TokenGenerator
	notifier  Notifier
	tx        TransactionManager
	clock     Clock
	logger    *zap.Logger
	ttl       time.Duration
}

// UseCase は招待ユースケースの公開インターフェースです。
type UseCase interface {
	CreateInvitation(ctx context.Context, in CreateInvitationInput) (*Invitation, error)
	ValidateToken(ctx context.Context, token string) (*Summary, error)
	AcceptInvitation(ctx context.Context, in AcceptInvitationInput) (*AcceptResult, error)
	ListInvitations(ctx context.Context, in ListInvitationsInput) (*ListInvitationsResult, error)
}

// NewService は Service を生成します。
func NewService(deps Dependencies) (*Service, error) {
	switch {
	case deps.Repo == nil:
		return nil, errors.New("invitation: repository is required")
	case deps.Users == nil:
		return nil, errors.New("invitation: user store is required")
	case deps.Employees == nil:
		return nil, errors.New("invitation: employee store is required")
	case deps.Hasher == nil:
		return nil, errors.New("invitation: password hasher is required")
	case deps.Tokens == nil:
		return nil, errors.New("invitation: token generator is required")
	}

	s := &Service{
		repo:      deps.Repo,
		users:     deps.Users,
		employees: deps.Employees,
		hasher:    deps.Hasher,
		tokens:    deps.Tokens,
		notifier:  deps.Notifier,
		tx:        deps.Tx,
		clock:     deps.Clock,
		logger:    deps.Logger,
		ttl:       deps.TTL,
	}
	if s.notifier == nil {
		s.notifier = noopNotifier{}
	}
	if s.tx == nil {
		s.tx = noopTransactionManager{}
	}
	if s.clock == nil {
		s.clock = realClock{}
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.ttl <= 0 {
		s.ttl = DefaultTTL
	}
	return s, nil
}

// CreateInvitationInput は招待作成時の入力です。
type CreateInvitationInput struct {
	Email        string
	EmployeeCode string
	HireDate     time.Time
	Department   *string
	Position     *string
	BaseSalary   *decimal.Decimal
}

// AcceptInvitationInput は招待受諾時の入力です。個人情報は受諾者が入力します。
type AcceptInvitationInput struct {
	Token       string
	Username    string
	Password    string
	FirstName   string
	LastName    string
	Phone       *string
	Address     *string
	DateOfBirth *time.Time
}

// ListInvitationsInput は一覧取得時の入力です。
type ListInvitationsInput struct {
	PageSize  int
	PageToken string
	Status    *Status
}

// ListInvitationsResult は一覧取得結果を表します。
type ListInvitationsResult struct {
	Invitations   []*Invitation
	NextPageToken string
}

// CreateInvitation は pending の招待を作成し、招待メールを送信します。
// メール送信の失敗はログに記録するのみで、作成した招待は取り消しません。
func (s *Service) CreateInvitation(ctx context.Context, in CreateInvitationInput) (*Invitation, error) {
	email, err := user.NormalizeEmail(in.Email)
	if err != nil {
		return nil, ErrInvalidEmail
	}

	code, err := employee.NormalizeEmployeeCode(in.EmployeeCode)
	if err != nil {
		return nil, ErrInvalidEmployeeCode
	}

	if in.HireDate.IsZero() {
		return nil, ErrInvalidHireDate
	}
	hireDate := employee.NormalizeDate(&in.HireDate)

	if err := employee.ValidateBaseSalary(in.BaseSalary); err != nil {
		return nil, ErrInvalidBaseSalary
	}

	department, err := employee.NormalizeBoundedText(in.Department, employee.MaxDepartmentLength, ErrInvalidDepartment)
	if err != nil {
		return nil, err
	}
	position, err := employee.NormalizeBoundedText(in.Position, employee.MaxPositionLength, ErrInvalidPosition)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.NewToken()
	if err != nil {
		return nil, fmt.Errorf("invitation: generate token: %w", err)
	}

	var created *Invitation
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if err := s.ensureInvitable(txCtx, email, code); err != nil {
			return err
		}

		now := s.clock.Now()
		result, err := s.repo.Create(txCtx, &Invitation{
			Email:        email,
			Token:        token,
			Status:       StatusPending,
			EmployeeCode: code,
			HireDate:     *hireDate,
			Department:   department,
			Position:     position,
			BaseSalary:   in.BaseSalary,
			ExpiresAt:    now.Add(s.ttl),
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		if err != nil {
			return err
		}

		created = result
		return nil
	}); err != nil {
		return nil, err
	}

	if err := s.notifier.SendInvitation(ctx, created.Email, created.Token); err != nil {
		s.logger.Warn("failed to dispatch invitation email",
			zap.String("invitation_id", created.ID),
			zap.Error(err),
		)
	}

	return created, nil
}

func (s *Service) ensureInvitable(ctx context.Context, email, code string) error {
	if u, err := s.users.FindByEmail(ctx, email); err != nil && !errors.Is(err, user.ErrUserNotFound) {
		return err
	} else if u != nil {
		return ErrEmailAlreadyRegistered
	}

	if inv, err := s.repo.FindPendingByEmail(ctx, email); err != nil && !errors.Is(err, ErrInvitationNotFound) {
		return err
	} else if inv != nil {
		return ErrPendingInvitationForEmail
	}

	if emp, err := s.employees.FindByCode(ctx, code); err != nil && !errors.Is(err, employee.ErrEmployeeNotFound) {
		return err
	} else if emp != nil {
		return ErrEmployeeCodeAlreadyExists
	}

	if inv, err := s.repo.FindPendingByEmployeeCode(ctx, code); err != nil && !errors.Is(err, ErrInvitationNotFound) {
		return err
	} else if inv != nil {
		return ErrPendingInvitationForEmployeeCode
	}

	return nil
}

// ValidateToken は受諾前の招待トークンを検証し、開示可能な情報を返します。
func (s *Service) ValidateToken(ctx context.Context, token string) (*Summary, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvitationNotFound
	}

	var summary *Summary
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		inv, err := s.repo.FindByToken(txCtx, token)
		if err != nil {
			return err
		}
		if !inv.IsValid(s.clock.Now()) {
			return ErrInvitationInvalid
		}

		summary = &Summary{
			Email:        inv.Email,
			EmployeeCode: inv.EmployeeCode,
			Position:     inv.Position,
			Department:   inv.Department,
			HireDate:     inv.HireDate,
			ExpiresAt:    inv.ExpiresAt,
		}
		return nil
	}); err != nil {
		return nil, err
	}

	return summary, nil
}

// AcceptInvitation は招待を受諾し、ユーザーと社員を 1 トランザクションで作成します。
// 招待行はロックして読み込むため、同一トークンの同時受諾はどちらか一方のみが成功します。
// トークンの存在と有効性は入力の検証より先に確認します。
func (s *Service) AcceptInvitation(ctx context.Context, in AcceptInvitationInput) (*AcceptResult, error) {
	token := strings.TrimSpace(in.Token)
	if token == "" {
		return nil, ErrInvitationNotFound
	}

	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		inv, err := s.repo.FindByToken(txCtx, token)
		if err != nil {
			return err
		}
		if !inv.IsValid(s.clock.Now()) {
			return ErrInvitationInvalid
		}
		return nil
	}); err != nil {
		return nil, s.translateAcceptError(err)
	}

	username, err := user.NormalizeUsername(in.Username)
	if err != nil {
		return nil, err
	}
	if err := user.ValidatePassword(in.Password); err != nil {
		return nil, err
	}
	firstName, err := employee.NormalizeName(in.FirstName, employee.ErrInvalidFirstName)
	if err != nil {
		return nil, err
	}
	lastName, err := employee.NormalizeName(in.LastName, employee.ErrInvalidLastName)
	if err != nil {
		return nil, err
	}
	dob := employee.NormalizeDate(in.DateOfBirth)
	if err := employee.ValidateDateOfBirth(dob, s.clock.Now()); err != nil {
		return nil, err
	}
	phone, err := employee.NormalizeBoundedText(in.Phone, employee.MaxPhoneLength, employee.ErrInvalidPhone)
	if err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("invitation: hash password: %w", err)
	}

	var result *AcceptResult
	err = s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		inv, err := s.repo.FindByTokenForUpdate(txCtx, token)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		if !inv.IsValid(now) {
			return ErrInvitationInvalid
		}

		if u, err := s.users.FindByUsername(txCtx, username); err != nil && !errors.Is(err, user.ErrUserNotFound) {
			return err
		} else if u != nil {
			return ErrUsernameTaken
		}

		if u, err := s.users.FindByEmail(txCtx, inv.Email); err != nil && !errors.Is(err, user.ErrUserNotFound) {
			return err
		} else if u != nil {
			return ErrEmailAlreadyRegistered
		}

		createdUser, err := s.users.Create(txCtx, &user.User{
			Username:     username,
			Email:        inv.Email,
			PasswordHash: hash,
			Role:         user.RoleEmployee,
			IsActive:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		if err != nil {
			return err
		}

		createdEmployee, err := s.employees.Create(txCtx, &employee.Employee{
			UserID:       createdUser.ID,
			EmployeeCode: inv.EmployeeCode,
			FirstName:    firstName,
			LastName:     lastName,
			Phone:        phone,
			Address:      employee.NormalizeOptionalText(in.Address),
			DateOfBirth:  dob,
			HireDate:     inv.HireDate,
			Department:   inv.Department,
			Position:     inv.Position,
			BaseSalary:   inv.BaseSalary,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		if err != nil {
			return err
		}

		if err := s.repo.MarkAccepted(txCtx, inv.ID, now); err != nil {
			return err
		}

		result = &AcceptResult{UserID: createdUser.ID, EmployeeID: createdEmployee.ID}
		return nil
	})
	if err != nil {
		return nil, s.translateAcceptError(err)
	}

	return result, nil
}

// translateAcceptError は受諾処理中のエラーを NotFound / Invalid / Conflict / Failure に分類します。
// 列の上限に起因するエラーは入力不正としてそのまま返します。
func (s *Service) translateAcceptError(err error) error {
	switch {
	case errors.Is(err, ErrInvitationNotFound),
		errors.Is(err, ErrInvitationInvalid),
		errors.Is(err, ErrUsernameTaken),
		errors.Is(err, ErrEmailAlreadyRegistered):
		return err
	case errors.Is(err, user.ErrValueTooLong),
		errors.Is(err, employee.ErrValueTooLong),
		errors.Is(err, employee.ErrInvalidBaseSalary):
		return err
	case errors.Is(err, user.ErrUsernameAlreadyExists):
		return ErrUsernameTaken
	case errors.Is(err, user.ErrEmailAlreadyExists):
		return ErrEmailAlreadyRegistered
	case errors.Is(err, employee.ErrEmployeeCodeAlreadyExists):
		return ErrEmployeeCodeAlreadyExists
	}

	s.logger.Error("invitation acceptance failed", zap.Error(err))
	return fmt.Errorf("%w: %v", ErrAcceptFailed, err)
}

// ListInvitations は招待の一覧を取得します。
func (s *Service) ListInvitations(ctx context.Context, in ListInvitationsInput) (*ListInvitationsResult, error) {
	limit, err := normalizePageSize(in.PageSize)
	if err != nil {
		return nil, err
	}

	offset, err := parsePageToken(in.PageToken)
	if err != nil {
		return nil, err
	}

	var statusPtr *Status
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, ErrInvalidStatus
		}
		status := *in.Status
		statusPtr = &status
	}

	var (
		invitations []*Invitation
		nextToken   string
	)
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		list, token, err := s.repo.List(txCtx, ListInvitationsFilter{
			Status: statusPtr,
			Limit:  limit,
			Offset: offset,
		})
		if err != nil {
			return err
		}
		invitations = list
		nextToken = token
		return nil
	}); err != nil {
		return nil, err
	}

	return &ListInvitationsResult{Invitations: invitations, NextPageToken: nextToken}, nil
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
