package salary

import "context"

// Repository は給与レコードの永続化を行うインターフェースです。
type Repository interface {
	Create(ctx context.Context, record *Record) (*Record, error)
	Update(ctx context.Context, record *Record) (*Record, error)
	FindByID(ctx context.Context, id string) (*Record, error)
	// FindByIDForUpdate はトランザクション内で行ロックを取得して読み込みます。
	FindByIDForUpdate(ctx context.Context, id string) (*Record, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]*Record, error)
}
