package salary

import "errors"

var (
	ErrInvalidID           = errors.New("salary: invalid id")
	ErrInvalidEmployeeID   = errors.New("salary: invalid employee id")
	ErrInvalidUserID       = errors.New("salary: invalid user id")
	ErrInvalidPeriod       = errors.New("salary: invalid month or year")
	ErrInvalidAmount       = errors.New("salary: invalid amount")
	ErrInvalidStatus       = errors.New("salary: invalid status")
	ErrRecordNotFound      = errors.New("salary: record not found")
	ErrEmployeeNotFound    = errors.New("salary: employee not found")
	ErrRecordAlreadyExists = errors.New("salary: record already exists for this period")
)
