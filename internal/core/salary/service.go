package salary

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ogurasousui/workforce-api/internal/core/employee"
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

// EmployeeLookup は通知先と所有者の解決に使う社員ストアです。
// FindByID はユーザー情報 (UserSnapshot) を含めて返す必要があります。
type EmployeeLookup interface {
	FindByID(ctx context.Context, id string) (*employee.Employee, error)
	FindByUserID(ctx context.Context, userID string) (*employee.Employee, error)
}

// Notifier は給与更新メールを送信します。
type Notifier interface {
	SendSalaryUpdate(ctx context.Context, email string, emp *employee.Employee, record *Record) error
}

type noopNotifier struct{}

func (noopNotifier) SendSalaryUpdate(context.Context, string, *employee.Employee, *Record) error {
	return nil
}

const minYear = 2000

// Service は給与レコードのユースケースと支払い通知をまとめます。
type Service struct {
	repo      Repository
	employees EmployeeLookup
	notifier  Notifier
	tx        TransactionManager
	clock     Clock
	logger    *zap.Logger
}

// UseCase は給与ユースケースの公開インターフェースです。
type UseCase interface {
	CreateSalaryRecord(ctx context.Context, in CreateRecordInput) (*Record, error)
	UpdateSalaryRecord(ctx context.Context, in UpdateRecordInput) (*Record, error)
	ListForEmployee(ctx context.Context, employeeID string) ([]*Record, error)
	ListForUser(ctx context.Context, userID string) ([]*Record, error)
}

// Option は Service の生成オプションです。
type Option func(*Service)

// WithClock は時刻の取得元を差し替えます。
func WithClock(c Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithLogger は通知失敗を記録するロガーを指定します。
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService は Service を生成します。
func NewService(repo Repository, employees EmployeeLookup, notifier Notifier, tx TransactionManager, opts ...Option) *Service {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	s := &Service{
		repo:      repo,
		employees: employees,
		notifier:  notifier,
		tx:        tx,
		clock:     realClock{},
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateRecordInput は給与レコード作成時の入力です。
type CreateRecordInput struct {
	EmployeeID     string
	Month          int
	Year           int
	BaseAmount     decimal.Decimal
	OvertimeAmount decimal.Decimal
	Bonus          decimal.Decimal
	Deductions     decimal.Decimal
	NetAmount      decimal.Decimal
}

// UpdateRecordInput は給与レコードの部分更新です。nil の項目は変更しません。
type UpdateRecordInput struct {
	ID             string
	BaseAmount     *decimal.Decimal
	OvertimeAmount *decimal.Decimal
	Bonus          *decimal.Decimal
	Deductions     *decimal.Decimal
	NetAmount      *decimal.Decimal
	Status         *Status
	PaymentDate    *time.Time
	PaymentDateSet bool
}

// CreateSalaryRecord は pending 状態の給与レコードを作成します。
func (s *Service) CreateSalaryRecord(ctx context.Context, in CreateRecordInput) (*Record, error) {
	employeeID := strings.TrimSpace(in.EmployeeID)
	if employeeID == "" {
		return nil, ErrInvalidEmployeeID
	}
	if in.Month < 1 || in.Month > 12 || in.Year < minYear {
		return nil, ErrInvalidPeriod
	}
	for _, amount := range []decimal.Decimal{in.BaseAmount, in.OvertimeAmount, in.Bonus, in.Deductions} {
		if !validComponent(amount) {
			return nil, ErrInvalidAmount
		}
	}
	if !employee.FitsMoneyColumn(in.NetAmount) {
		return nil, ErrInvalidAmount
	}

	var created *Record
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if _, err := s.employees.FindByID(txCtx, employeeID); err != nil {
			return translateEmployeeError(err)
		}

		now := s.clock.Now()
		result, err := s.repo.Create(txCtx, &Record{
			EmployeeID:     employeeID,
			Month:          in.Month,
			Year:           in.Year,
			BaseAmount:     in.BaseAmount,
			OvertimeAmount: in.OvertimeAmount,
			Bonus:          in.Bonus,
			Deductions:     in.Deductions,
			NetAmount:      in.NetAmount,
			Status:         StatusPending,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
		if err != nil {
			return err
		}
		created = result
		return nil
	}); err != nil {
		return nil, err
	}

	return created, nil
}

// UpdateSalaryRecord はパッチを適用して給与レコードを保存します。
// 状態が paid 以外から paid に変わった場合のみ、コミット後に従業員へ通知します。
// 通知の失敗は記録するのみで、更新結果には影響しません。
func (s *Service) UpdateSalaryRecord(ctx context.Context, in UpdateRecordInput) (*Record, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}
	if in.Status != nil && !in.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	for _, amount := range []*decimal.Decimal{in.BaseAmount, in.OvertimeAmount, in.Bonus, in.Deductions} {
		if amount != nil && !validComponent(*amount) {
			return nil, ErrInvalidAmount
		}
	}
	if in.NetAmount != nil && !employee.FitsMoneyColumn(*in.NetAmount) {
		return nil, ErrInvalidAmount
	}

	var (
		updated   *Record
		oldStatus Status
	)
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByIDForUpdate(txCtx, in.ID)
		if err != nil {
			return err
		}
		oldStatus = existing.Status

		applyPatch(existing, in)
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

	if oldStatus != updated.Status && updated.Status == StatusPaid {
		s.notifyPaid(ctx, updated)
	}

	return updated, nil
}

// validComponent は支給・控除の各項目が負でなく金額列に収まるかを返します。
// 手取り額は負になりうるため範囲と桁のみを見ます。
func validComponent(amount decimal.Decimal) bool {
	return !amount.IsNegative() && employee.FitsMoneyColumn(amount)
}

func applyPatch(r *Record, in UpdateRecordInput) {
	if in.BaseAmount != nil {
		r.BaseAmount = *in.BaseAmount
	}
	if in.OvertimeAmount != nil {
		r.OvertimeAmount = *in.OvertimeAmount
	}
	if in.Bonus != nil {
		r.Bonus = *in.Bonus
	}
	if in.Deductions != nil {
		r.Deductions = *in.Deductions
	}
	if in.NetAmount != nil {
		r.NetAmount = *in.NetAmount
	}
	if in.Status != nil {
		r.Status = *in.Status
	}
	if in.PaymentDateSet {
		r.PaymentDate = employee.NormalizeDate(in.PaymentDate)
	}
}

func (s *Service) notifyPaid(ctx context.Context, record *Record) {
	log := s.logger.With(
		zap.String("salary_record_id", record.ID),
		zap.String("employee_id", record.EmployeeID),
	)

	var emp *employee.Employee
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.employees.FindByID(txCtx, record.EmployeeID)
		if err != nil {
			return err
		}
		emp = found
		return nil
	}); err != nil {
		log.Error("salary notification skipped: employee lookup failed", zap.Error(err))
		return
	}

	if emp.User == nil || emp.User.Email == "" {
		log.Error("salary notification skipped: employee has no linked user")
		return
	}

	if err := s.notifier.SendSalaryUpdate(ctx, emp.User.Email, emp, record); err != nil {
		log.Warn("failed to dispatch salary update email", zap.Error(err))
	}
}

// ListForEmployee は社員の給与レコード一覧を返します。
func (s *Service) ListForEmployee(ctx context.Context, employeeID string) ([]*Record, error) {
	employeeID = strings.TrimSpace(employeeID)
	if employeeID == "" {
		return nil, ErrInvalidEmployeeID
	}

	var records []*Record
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		if _, err := s.employees.FindByID(txCtx, employeeID); err != nil {
			return translateEmployeeError(err)
		}
		list, err := s.repo.ListByEmployee(txCtx, employeeID)
		if err != nil {
			return err
		}
		records = list
		return nil
	}); err != nil {
		return nil, err
	}

	return records, nil
}

// ListForUser はログインユーザー本人の給与レコード一覧を返します。
func (s *Service) ListForUser(ctx context.Context, userID string) ([]*Record, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrInvalidUserID
	}

	var records []*Record
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		emp, err := s.employees.FindByUserID(txCtx, userID)
		if err != nil {
			return translateEmployeeError(err)
		}
		list, err := s.repo.ListByEmployee(txCtx, emp.ID)
		if err != nil {
			return err
		}
		records = list
		return nil
	}); err != nil {
		return nil, err
	}

	return records, nil
}

func translateEmployeeError(err error) error {
	if errors.Is(err, employee.ErrEmployeeNotFound) {
		return ErrEmployeeNotFound
	}
	return err
}
