package invitation

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status は招待の状態を表します。
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	// StatusExpired は保存値としては現在書き込まれません。期限切れは ExpiresAt から判定します。
	StatusExpired Status = "expired"
)

// Valid は定義済みの状態かどうかを返します。
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusExpired:
		return true
	default:
		return false
	}
}

// DefaultTTL は招待の有効期間です。
const DefaultTTL = 7 * 24 * time.Hour

// Invitation は社員招待エンティティです。
// 雇用条件は管理者が招待時に確定し、受諾時にそのまま社員へ引き継がれます。
type Invitation struct {
	ID           string
	Email        string
	Token        string
	Status       Status
	EmployeeCode string
	HireDate     time.Time
	Department   *string
	Position     *string
	BaseSalary   *decimal.Decimal
	ExpiresAt    time.Time
	AcceptedAt   *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsExpired は now が有効期限を過ぎているかを返します。
func (i *Invitation) IsExpired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

// IsValid は受諾可能かを返します。保存された Status よりもこちらが判定の基準です。
func (i *Invitation) IsValid(now time.Time) bool {
	return i.Status == StatusPending && !i.IsExpired(now)
}

// Summary は受諾前に開示してよい招待情報です。
type Summary struct {
	Email        string
	EmployeeCode string
	Position     *string
	Department   *string
	HireDate     time.Time
	ExpiresAt    time.Time
}

// AcceptResult は受諾によって作成されたユーザーと社員の ID です。
type AcceptResult struct {
	UserID     string
	EmployeeID string
}
