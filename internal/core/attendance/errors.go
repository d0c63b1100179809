package attendance

import "errors"

var (
	ErrInvalidID         = errors.New("attendance: invalid id")
	ErrInvalidUserID     = errors.New("attendance: invalid user id")
	ErrInvalidEmployeeID = errors.New("attendance: invalid employee id")
	ErrInvalidDate       = errors.New("attendance: invalid date")
	ErrInvalidDateRange  = errors.New("attendance: start date must not be after end date")
	ErrInvalidStatus     = errors.New("attendance: invalid status")
	ErrInvalidTimes      = errors.New("attendance: check-out must not be before check-in")
	ErrRecordNotFound    = errors.New("attendance: record not found")
	ErrEmployeeNotFound  = errors.New("attendance: employee record not found")
	ErrAlreadyCheckedIn  = errors.New("attendance: already checked in today")
	ErrNotCheckedIn      = errors.New("attendance: must check in first")
	ErrAlreadyCheckedOut = errors.New("attendance: already checked out today")
	ErrAlreadySubmitted  = errors.New("attendance: attendance already submitted for this date")
)
