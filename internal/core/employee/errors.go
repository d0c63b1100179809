package employee

import "errors"

var (
	ErrInvalidID                 = errors.New("employee: invalid id")
	ErrInvalidUserID             = errors.New("employee: invalid user id")
	ErrInvalidEmployeeCode       = errors.New("employee: invalid employee code")
	ErrInvalidLastName           = errors.New("employee: invalid last name")
	ErrInvalidFirstName          = errors.New("employee: invalid first name")
	ErrInvalidHireDate           = errors.New("employee: invalid hire date")
	ErrInvalidDateOfBirth        = errors.New("employee: invalid date of birth")
	ErrInvalidBaseSalary         = errors.New("employee: invalid base salary")
	ErrInvalidPhone              = errors.New("employee: invalid phone")
	ErrInvalidDepartment         = errors.New("employee: invalid department")
	ErrInvalidPosition           = errors.New("employee: invalid position")
	ErrValueTooLong              = errors.New("employee: value exceeds column length")
	ErrInvalidPageSize           = errors.New("employee: invalid page size")
	ErrInvalidPageToken          = errors.New("employee: invalid page token")
	ErrEmployeeNotFound          = errors.New("employee: not found")
	ErrUserNotFound              = errors.New("employee: user not found")
	ErrEmployeeCodeAlreadyExists = errors.New("employee: employee code already exists")
	ErrUserAlreadyHasEmployee    = errors.New("employee: user already has an employee record")
)
