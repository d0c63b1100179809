package salary

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status は給与の支払い状態を表します。
type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
	StatusOverdue Status = "overdue"
)

// Valid は定義済みの状態かどうかを返します。
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusOverdue:
		return true
	default:
		return false
	}
}

// Record は月次の給与レコードです。NetAmount は呼び出し側が指定し、ここでは再計算しません。
type Record struct {
	ID             string
	EmployeeID     string
	Month          int
	Year           int
	BaseAmount     decimal.Decimal
	OvertimeAmount decimal.Decimal
	Bonus          decimal.Decimal
	Deductions     decimal.Decimal
	NetAmount      decimal.Decimal
	Status         Status
	PaymentDate    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
