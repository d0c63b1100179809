package attendance

import "time"

// Status は勤怠区分を表します。
type Status string

const (
	StatusPresent   Status = "present"
	StatusAbsent    Status = "absent"
	StatusLeave     Status = "leave"
	StatusHoliday   Status = "holiday"
	StatusSickLeave Status = "sick_leave"
	StatusVacation  Status = "vacation"
)

// Valid は定義済みの区分かどうかを返します。
func (s Status) Valid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLeave, StatusHoliday, StatusSickLeave, StatusVacation:
		return true
	default:
		return false
	}
}

// Record は社員 1 名 1 日分の勤怠です。
type Record struct {
	ID         string
	EmployeeID string
	Date       time.Time
	CheckInAt  *time.Time
	CheckOutAt *time.Time
	Status     Status
	Notes      *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
