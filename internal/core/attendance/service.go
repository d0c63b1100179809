package attendance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

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

// EmployeeLookup は勤怠の所有者を解決する社員ストアです。
type EmployeeLookup interface {
	FindByID(ctx context.Context, id string) (*employee.Employee, error)
	FindByUserID(ctx context.Context, userID string) (*employee.Employee, error)
}

// Service は勤怠の打刻・申請・参照をまとめます。
type Service struct {
	repo      Repository
	employees EmployeeLookup
	clock     Clock
	tx        TransactionManager
}

// UseCase は勤怠ユースケースの公開インターフェースです。
type UseCase interface {
	CheckIn(ctx context.Context, userID string) (*Record, error)
	CheckOut(ctx context.Context, userID string) (*Record, error)
	Submit(ctx context.Context, in SubmitInput) (*Record, error)
	ListForUser(ctx context.Context, userID string, r DateRange) ([]*Record, error)
	ListForEmployee(ctx context.Context, employeeID string, r DateRange) ([]*Record, error)
	Update(ctx context.Context, in UpdateInput) (*Record, error)
}

// NewService は Service を生成します。
func NewService(repo Repository, employees EmployeeLookup, clock Clock, tx TransactionManager) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	return &Service{repo: repo, employees: employees, clock: clock, tx: tx}
}

// SubmitInput は日付を指定した勤怠申請です。
type SubmitInput struct {
	UserID     string
	Date       time.Time
	Status     Status
	CheckInAt  *time.Time
	CheckOutAt *time.Time
	Notes      *string
}

// UpdateInput は管理者による勤怠の部分更新です。
type UpdateInput struct {
	ID            string
	Status        *Status
	CheckInAt     *time.Time
	CheckInAtSet  bool
	CheckOutAt    *time.Time
	CheckOutAtSet bool
	Notes         *string
	NotesSet      bool
}

// DateRange は一覧の期間指定です。nil の端は無制限です。
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// CheckIn は本日の出勤を打刻します。
func (s *Service) CheckIn(ctx context.Context, userID string) (*Record, error) {
	var result *Record
	err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		emp, err := s.employeeForUser(txCtx, userID)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		today := truncateDate(now)

		existing, err := s.repo.FindByEmployeeAndDate(txCtx, emp.ID, today)
		if err != nil && !errors.Is(err, ErrRecordNotFound) {
			return err
		}

		if existing != nil {
			if existing.CheckInAt != nil {
				return ErrAlreadyCheckedIn
			}
			existing.CheckInAt = &now
			existing.Status = StatusPresent
			existing.UpdatedAt = now
			result, err = s.repo.Update(txCtx, existing)
			return err
		}

		result, err = s.repo.Create(txCtx, &Record{
			EmployeeID: emp.ID,
			Date:       today,
			CheckInAt:  &now,
			Status:     StatusPresent,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
		if errors.Is(err, ErrAlreadySubmitted) {
			return ErrAlreadyCheckedIn
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// CheckOut は本日の退勤を打刻します。出勤打刻が無い場合はエラーです。
func (s *Service) CheckOut(ctx context.Context, userID string) (*Record, error) {
	var result *Record
	err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		emp, err := s.employeeForUser(txCtx, userID)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		existing, err := s.repo.FindByEmployeeAndDate(txCtx, emp.ID, truncateDate(now))
		if errors.Is(err, ErrRecordNotFound) {
			return ErrNotCheckedIn
		}
		if err != nil {
			return err
		}
		if existing.CheckInAt == nil {
			return ErrNotCheckedIn
		}
		if existing.CheckOutAt != nil {
			return ErrAlreadyCheckedOut
		}

		existing.CheckOutAt = &now
		existing.UpdatedAt = now
		result, err = s.repo.Update(txCtx, existing)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Submit は指定日の勤怠を登録します。同日の勤怠が既にある場合はエラーです。
func (s *Service) Submit(ctx context.Context, in SubmitInput) (*Record, error) {
	if in.Date.IsZero() {
		return nil, ErrInvalidDate
	}
	if !in.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	if err := validateTimes(in.CheckInAt, in.CheckOutAt); err != nil {
		return nil, err
	}

	var result *Record
	err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		emp, err := s.employeeForUser(txCtx, in.UserID)
		if err != nil {
			return err
		}

		date := truncateDate(in.Date)
		if existing, err := s.repo.FindByEmployeeAndDate(txCtx, emp.ID, date); err != nil && !errors.Is(err, ErrRecordNotFound) {
			return err
		} else if existing != nil {
			return ErrAlreadySubmitted
		}

		now := s.clock.Now()
		result, err = s.repo.Create(txCtx, &Record{
			EmployeeID: emp.ID,
			Date:       date,
			CheckInAt:  in.CheckInAt,
			CheckOutAt: in.CheckOutAt,
			Status:     in.Status,
			Notes:      employee.NormalizeOptionalText(in.Notes),
			CreatedAt:  now,
			UpdatedAt:  now,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ListForUser はログインユーザー本人の勤怠を日付の降順で返します。
func (s *Service) ListForUser(ctx context.Context, userID string, r DateRange) ([]*Record, error) {
	filter, err := newListFilter(r)
	if err != nil {
		return nil, err
	}

	var records []*Record
	err = s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		emp, err := s.employeeForUser(txCtx, userID)
		if err != nil {
			return err
		}
		filter.EmployeeID = emp.ID
		records, err = s.repo.List(txCtx, filter)
		return err
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// ListForEmployee は指定社員の勤怠を日付の降順で返します。
func (s *Service) ListForEmployee(ctx context.Context, employeeID string, r DateRange) ([]*Record, error) {
	employeeID = strings.TrimSpace(employeeID)
	if employeeID == "" {
		return nil, ErrInvalidEmployeeID
	}

	filter, err := newListFilter(r)
	if err != nil {
		return nil, err
	}
	filter.EmployeeID = employeeID

	var records []*Record
	err = s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		if _, err := s.employees.FindByID(txCtx, employeeID); err != nil {
			return translateEmployeeError(err)
		}
		records, err = s.repo.List(txCtx, filter)
		return err
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Update は勤怠を部分更新します。
func (s *Service) Update(ctx context.Context, in UpdateInput) (*Record, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}
	if in.Status != nil && !in.Status.Valid() {
		return nil, ErrInvalidStatus
	}

	var result *Record
	err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByID(txCtx, in.ID)
		if err != nil {
			return err
		}

		if in.Status != nil {
			existing.Status = *in.Status
		}
		if in.CheckInAtSet {
			existing.CheckInAt = in.CheckInAt
		}
		if in.CheckOutAtSet {
			existing.CheckOutAt = in.CheckOutAt
		}
		if in.NotesSet {
			existing.Notes = employee.NormalizeOptionalText(in.Notes)
		}
		if err := validateTimes(existing.CheckInAt, existing.CheckOutAt); err != nil {
			return err
		}

		existing.UpdatedAt = s.clock.Now()
		result, err = s.repo.Update(txCtx, existing)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) employeeForUser(ctx context.Context, userID string) (*employee.Employee, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidUserID
	}
	emp, err := s.employees.FindByUserID(ctx, userID)
	if err != nil {
		return nil, translateEmployeeError(err)
	}
	return emp, nil
}

func newListFilter(r DateRange) (ListFilter, error) {
	from := employee.NormalizeDate(r.From)
	to := employee.NormalizeDate(r.To)
	if from != nil && to != nil && from.After(*to) {
		return ListFilter{}, ErrInvalidDateRange
	}
	return ListFilter{From: from, To: to}, nil
}

func validateTimes(checkIn, checkOut *time.Time) error {
	if checkIn != nil && checkOut != nil && checkOut.Before(*checkIn) {
		return ErrInvalidTimes
	}
	return nil
}

func truncateDate(t time.Time) time.Time {
	return *employee.NormalizeDate(&t)
}

func translateEmployeeError(err error) error {
	if errors.Is(err, employee.ErrEmployeeNotFound) {
		return ErrEmployeeNotFound
	}
	return err
}
