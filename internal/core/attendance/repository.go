package attendance

import (
	"context"
	"time"
)

// Repository は勤怠の永続化を行うインターフェースです。(employee_id, date) は一意です。
type Repository interface {
	Create(ctx context.Context, record *Record) (*Record, error)
	Update(ctx context.Context, record *Record) (*Record, error)
	FindByID(ctx context.Context, id string) (*Record, error)
	FindByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*Record, error)
	List(ctx context.Context, filter ListFilter) ([]*Record, error)
}

// ListFilter は一覧取得用フィルタです。From, To は両端を含みます。
type ListFilter struct {
	EmployeeID string
	From       *time.Time
	To         *time.Time
}
