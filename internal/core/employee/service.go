package employee

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
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

const (
	defaultListPageSize = 50
	maxListPageSize     = 200
	maxNameLength       = 100

	// 以下は employees テーブルの列定義に合わせた上限です。
	MaxPhoneLength      = 50
	MaxDepartmentLength = 100
	MaxPositionLength   = 100
)

// 金額列は NUMERIC(10, 2) です。
var maxMoneyAmount = decimal.New(1, 8)

var employeeCodePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,49}$`)

// Service は社員に関するユースケースをまとめます。
type Service struct {
	repo  Repository
	clock Clock
	tx    TransactionManager
}

// UseCase は社員ユースケースの公開インターフェースです。
type UseCase interface {
	GetEmployee(ctx context.Context, in GetEmployeeInput) (*Employee, error)
	GetEmployeeByUser(ctx context.Context, userID string) (*Employee, error)
	ListEmployees(ctx context.Context, in ListEmployeesInput) (*ListEmployeesResult, error)
	UpdateEmployee(ctx context.Context, in UpdateEmployeeInput) (*Employee, error)
}

// NewService は Service を生成します。
func NewService(repo Repository, clock Clock, tx TransactionManager) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	return &Service{repo: repo, clock: clock, tx: tx}
}

// UpdateEmployeeInput は社員更新時の入力です。
// 社員コードと入社日は招待時に確定するため更新できません。
type UpdateEmployeeInput struct {
	ID             string
	FirstName      *string
	LastName       *string
	Phone          *string
	PhoneSet       bool
	Address        *string
	AddressSet     bool
	DateOfBirth    *time.Time
	DateOfBirthSet bool
	Department     *string
	DepartmentSet  bool
	Position       *string
	PositionSet    bool
	BaseSalary     *decimal.Decimal
	BaseSalarySet  bool
}

// GetEmployeeInput は社員取得時の入力です。
type GetEmployeeInput struct {
	ID string
}

// ListEmployeesInput は一覧取得時の入力です。
type ListEmployeesInput struct {
	PageSize   int
	PageToken  string
	Department *string
}

// ListEmployeesResult は一覧取得結果を表します。
type ListEmployeesResult struct {
	Employees     []*Employee
	NextPageToken string
}

// UpdateEmployee は社員情報を部分更新します。指定されなかった項目は変更しません。
func (s *Service) UpdateEmployee(ctx context.Context, in UpdateEmployeeInput) (*Employee, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var updated *Employee
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByID(txCtx, in.ID)
		if err != nil {
			return err
		}

		if in.FirstName != nil {
			name, err := NormalizeName(*in.FirstName, ErrInvalidFirstName)
			if err != nil {
				return err
			}
			existing.FirstName = name
		}

		if in.LastName != nil {
			name, err := NormalizeName(*in.LastName, ErrInvalidLastName)
			if err != nil {
				return err
			}
			existing.LastName = name
		}

		if in.PhoneSet {
			phone, err := NormalizeBoundedText(in.Phone, MaxPhoneLength, ErrInvalidPhone)
			if err != nil {
				return err
			}
			existing.Phone = phone
		}
		if in.AddressSet {
			existing.Address = NormalizeOptionalText(in.Address)
		}
		if in.DepartmentSet {
			department, err := NormalizeBoundedText(in.Department, MaxDepartmentLength, ErrInvalidDepartment)
			if err != nil {
				return err
			}
			existing.Department = department
		}
		if in.PositionSet {
			position, err := NormalizeBoundedText(in.Position, MaxPositionLength, ErrInvalidPosition)
			if err != nil {
				return err
			}
			existing.Position = position
		}

		if in.DateOfBirthSet {
			dob := NormalizeDate(in.DateOfBirth)
			if err := ValidateDateOfBirth(dob, s.clock.Now()); err != nil {
				return err
			}
			existing.DateOfBirth = dob
		}

		if in.BaseSalarySet {
			if err := ValidateBaseSalary(in.BaseSalary); err != nil {
				return err
			}
			existing.BaseSalary = cloneDecimal(in.BaseSalary)
		}

		existing.UpdatedAt = s.clock.Now()

		result, err := s.repo.Update(txCtx, existing)
		if err != nil {
			return err
		}

		updated = result
		return nil
	}); err != nil {
		return nil, err
	}

	return updated, nil
}

// GetEmployee は社員を取得します。
func (s *Service) GetEmployee(ctx context.Context, in GetEmployeeInput) (*Employee, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var result *Employee
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.FindByID(txCtx, in.ID)
		if err != nil {
			return err
		}
		result = found
		return nil
	}); err != nil {
		return nil, err
	}

	return result, nil
}

// GetEmployeeByUser はユーザー ID に紐づく社員を取得します。
func (s *Service) GetEmployeeByUser(ctx context.Context, userID string) (*Employee, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("user id: %w", ErrInvalidUserID)
	}

	var result *Employee
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.FindByUserID(txCtx, userID)
		if err != nil {
			return err
		}
		result = found
		return nil
	}); err != nil {
		return nil, err
	}

	return result, nil
}

// ListEmployees は社員の一覧を取得します。
func (s *Service) ListEmployees(ctx context.Context, in ListEmployeesInput) (*ListEmployeesResult, error) {
	limit, err := normalizePageSize(in.PageSize)
	if err != nil {
		return nil, err
	}

	offset, err := parsePageToken(in.PageToken)
	if err != nil {
		return nil, err
	}

	var (
		employees []*Employee
		nextToken string
	)

	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		resultEmployees, token, err := s.repo.List(txCtx, ListEmployeesFilter{
			Department: NormalizeOptionalText(in.Department),
			Limit:      limit,
			Offset:     offset,
		})
		if err != nil {
			return err
		}
		employees = resultEmployees
		nextToken = token
		return nil
	}); err != nil {
		return nil, err
	}

	return &ListEmployeesResult{Employees: employees, NextPageToken: nextToken}, nil
}

// NormalizeEmployeeCode は社員コードの前後空白を除去して検証します。大文字小文字は保持します。
func NormalizeEmployeeCode(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if !employeeCodePattern.MatchString(trimmed) {
		return "", ErrInvalidEmployeeCode
	}
	return trimmed, nil
}

// NormalizeName は氏名を検証します。不正な場合は invalid を返します。
func NormalizeName(raw string, invalid error) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || len([]rune(trimmed)) > maxNameLength {
		return "", invalid
	}
	return trimmed, nil
}

// NormalizeOptionalText は空文字を nil として扱います。
func NormalizeOptionalText(raw *string) *string {
	if raw == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*raw)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// NormalizeBoundedText は NormalizeOptionalText に加えて文字数が maxLen 以下であることを検証します。
func NormalizeBoundedText(raw *string, maxLen int, invalid error) (*string, error) {
	normalized := NormalizeOptionalText(raw)
	if normalized != nil && utf8.RuneCountInString(*normalized) > maxLen {
		return nil, invalid
	}
	return normalized, nil
}

// NormalizeDate は時刻を UTC の日付に丸めます。
func NormalizeDate(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}

	normalized := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &normalized
}

// ValidateDateOfBirth は生年月日が未来日でないことを検証します。
func ValidateDateOfBirth(dob *time.Time, now time.Time) error {
	if dob == nil {
		return nil
	}
	if dob.After(now) {
		return ErrInvalidDateOfBirth
	}
	return nil
}

// ValidateBaseSalary は基本給が負でなく、金額列に収まることを検証します。
func ValidateBaseSalary(amount *decimal.Decimal) error {
	if amount == nil {
		return nil
	}
	if amount.IsNegative() || !FitsMoneyColumn(*amount) {
		return ErrInvalidBaseSalary
	}
	return nil
}

// FitsMoneyColumn は金額が小数点以下 2 桁以内かつ絶対値 10^8 未満であるかを返します。
func FitsMoneyColumn(amount decimal.Decimal) bool {
	if amount.Abs().GreaterThanOrEqual(maxMoneyAmount) {
		return false
	}
	// 末尾のゼロは桁数に数えない。
	return amount.Equal(amount.Truncate(2))
}

func cloneDecimal(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	clone := *d
	return &clone
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
