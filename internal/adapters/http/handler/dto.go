package handler

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ogurasousui/workforce-api/internal/core/attendance"
	"github.com/ogurasousui/workforce-api/internal/core/employee"
	"github.com/ogurasousui/workforce-api/internal/core/invitation"
	"github.com/ogurasousui/workforce-api/internal/core/salary"
	"github.com/ogurasousui/workforce-api/internal/core/user"
)

type userResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toUserResponse(u *user.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      string(u.Role),
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

type employeeResponse struct {
	ID           string           `json:"id"`
	UserID       string           `json:"user_id"`
	EmployeeCode string           `json:"employee_id"`
	FirstName    string           `json:"first_name"`
	LastName     string           `json:"last_name"`
	Phone        *string          `json:"phone"`
	Address      *string          `json:"address"`
	DateOfBirth  *date            `json:"date_of_birth"`
	HireDate     date             `json:"hire_date"`
	Department   *string          `json:"department"`
	Position     *string          `json:"position"`
	BaseSalary   *decimal.Decimal `json:"base_salary"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
	User         *userResponse    `json:"user,omitempty"`
}

func toEmployeeResponse(e *employee.Employee) employeeResponse {
	resp := employeeResponse{
		ID:           e.ID,
		UserID:       e.UserID,
		EmployeeCode: e.EmployeeCode,
		FirstName:    e.FirstName,
		LastName:     e.LastName,
		Phone:        e.Phone,
		Address:      e.Address,
		DateOfBirth:  toDatePtr(e.DateOfBirth),
		HireDate:     date{Time: e.HireDate},
		Department:   e.Department,
		Position:     e.Position,
		BaseSalary:   e.BaseSalary,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
	if e.User != nil {
		resp.User = &userResponse{
			ID:        e.User.ID,
			Username:  e.User.Username,
			Email:     e.User.Email,
			Role:      e.User.Role,
			IsActive:  e.User.IsActive,
			CreatedAt: e.User.CreatedAt,
			UpdatedAt: e.User.UpdatedAt,
		}
	}
	return resp
}

type invitationResponse struct {
	ID           string           `json:"id"`
	Email        string           `json:"email"`
	Status       string           `json:"status"`
	EmployeeCode string           `json:"employee_id"`
	HireDate     date             `json:"hire_date"`
	Department   *string          `json:"department"`
	Position     *string          `json:"position"`
	BaseSalary   *decimal.Decimal `json:"base_salary"`
	ExpiresAt    time.Time        `json:"expires_at"`
	AcceptedAt   *time.Time       `json:"accepted_at"`
	CreatedAt    time.Time        `json:"created_at"`
}

// toInvitationResponse はトークンを含めずに招待を返します。
func toInvitationResponse(inv *invitation.Invitation) invitationResponse {
	return invitationResponse{
		ID:           inv.ID,
		Email:        inv.Email,
		Status:       string(inv.Status),
		EmployeeCode: inv.EmployeeCode,
		HireDate:     date{Time: inv.HireDate},
		Department:   inv.Department,
		Position:     inv.Position,
		BaseSalary:   inv.BaseSalary,
		ExpiresAt:    inv.ExpiresAt,
		AcceptedAt:   inv.AcceptedAt,
		CreatedAt:    inv.CreatedAt,
	}
}

type invitationSummaryResponse struct {
	Email        string    `json:"email"`
	EmployeeCode string    `json:"employee_id"`
	Position     *string   `json:"position"`
	Department   *string   `json:"department"`
	HireDate     date      `json:"hire_date"`
	ExpiresAt    time.Time `json:"expires_at"`
}

func toInvitationSummaryResponse(s *invitation.Summary) invitationSummaryResponse {
	return invitationSummaryResponse{
		Email:        s.Email,
		EmployeeCode: s.EmployeeCode,
		Position:     s.Position,
		Department:   s.Department,
		HireDate:     date{Time: s.HireDate},
		ExpiresAt:    s.ExpiresAt,
	}
}

type salaryRecordResponse struct {
	ID             string          `json:"id"`
	EmployeeID     string          `json:"employee_id"`
	Month          int             `json:"month"`
	Year           int             `json:"year"`
	BaseAmount     decimal.Decimal `json:"base_amount"`
	OvertimeAmount decimal.Decimal `json:"overtime_amount"`
	Bonus          decimal.Decimal `json:"bonus"`
	Deductions     decimal.Decimal `json:"deductions"`
	NetAmount      decimal.Decimal `json:"net_amount"`
	Status         string          `json:"status"`
	PaymentDate    *date           `json:"payment_date"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func toSalaryRecordResponse(r *salary.Record) salaryRecordResponse {
	return salaryRecordResponse{
		ID:             r.ID,
		EmployeeID:     r.EmployeeID,
		Month:          r.Month,
		Year:           r.Year,
		BaseAmount:     r.BaseAmount,
		OvertimeAmount: r.OvertimeAmount,
		Bonus:          r.Bonus,
		Deductions:     r.Deductions,
		NetAmount:      r.NetAmount,
		Status:         string(r.Status),
		PaymentDate:    toDatePtr(r.PaymentDate),
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

type attendanceResponse struct {
	ID         string     `json:"id"`
	EmployeeID string     `json:"employee_id"`
	Date       date       `json:"date"`
	CheckInAt  *time.Time `json:"check_in"`
	CheckOutAt *time.Time `json:"check_out"`
	Status     string     `json:"status"`
	Notes      *string    `json:"notes"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func toAttendanceResponse(r *attendance.Record) attendanceResponse {
	return attendanceResponse{
		ID:         r.ID,
		EmployeeID: r.EmployeeID,
		Date:       date{Time: r.Date},
		CheckInAt:  r.CheckInAt,
		CheckOutAt: r.CheckOutAt,
		Status:     string(r.Status),
		Notes:      r.Notes,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

// mapSlice は一覧を応答用に変換します。nil でも空配列を返します。
func mapSlice[T, R any](in []*T, fn func(*T) R) []R {
	out := make([]R, 0, len(in))
	for _, v := range in {
		out = append(out, fn(v))
	}
	return out
}
