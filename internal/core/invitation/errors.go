package invitation

import "errors"

var (
	ErrInvalidID           = errors.New("invitation: invalid id")
	ErrInvalidEmail        = errors.New("invitation: invalid email")
	ErrInvalidEmployeeCode = errors.New("invitation: invalid employee code")
	ErrInvalidHireDate     = errors.New("invitation: invalid hire date")
	ErrInvalidBaseSalary   = errors.New("invitation: invalid base salary")
	ErrInvalidDepartment   = errors.New("invitation: invalid department")
	ErrInvalidPosition     = errors.New("invitation: invalid position")
	ErrValueTooLong        = errors.New("invitation: value exceeds column length")
	ErrInvalidToken        = errors.New("invitation: invalid token")
	ErrInvalidStatus       = errors.New("invitation: invalid status")
	ErrInvalidPageSize     = errors.New("invitation: invalid page size")
	ErrInvalidPageToken    = errors.New("invitation: invalid page token")

	ErrEmailAlreadyRegistered           = errors.New("invitation: user with this email already exists")
	ErrPendingInvitationForEmail        = errors.New("invitation: pending invitation already exists for this email")
	ErrEmployeeCodeAlreadyExists        = errors.New("invitation: employee id already exists")
	ErrPendingInvitationForEmployeeCode = errors.New("invitation: employee id already exists in pending invitations")
	ErrTokenAlreadyExists               = errors.New("invitation: token already exists")

	ErrInvitationNotFound = errors.New("invitation: not found")
	ErrInvitationInvalid  = errors.New("invitation: expired or already used")
	ErrUsernameTaken      = errors.New("invitation: username already exists")
	ErrAcceptFailed       = errors.New("invitation: failed to create account")
)
