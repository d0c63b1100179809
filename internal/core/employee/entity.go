package employee

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Employee は社員エンティティ (Profile) です。User と 1 対 1 で紐づきます。
type Employee struct {
	ID           string
	UserID       string
	EmployeeCode string
	FirstName    string
	LastName     string
	Phone        *string
	Address      *string
	DateOfBirth  *time.Time
	HireDate     time.Time
	Department   *string
	Position     *string
	BaseSalary   *decimal.Decimal
	CreatedAt    time.Time
	UpdatedAt    time.Time
	User         *UserSnapshot
}

// FullName は表示用の氏名を返します。
func (e *Employee) FullName() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}

// UserSnapshot は社員に紐づくユーザー情報のスナップショットです。
type UserSnapshot struct {
	ID        string
	Username  string
	Email     string
	Role      string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
