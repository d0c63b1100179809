package handler

import (
	"context"
	"errors"

	"github.com/ogurasousui/workforce-api/internal/core/attendance"
	"github.com/ogurasousui/workforce-api/internal/core/auth"
	"github.com/ogurasousui/workforce-api/internal/core/employee"
	"github.com/ogurasousui/workforce-api/internal/core/invitation"
	"github.com/ogurasousui/workforce-api/internal/core/salary"
	"github.com/ogurasousui/workforce-api/internal/core/user"
)

const (
	adminToken    = "admin-token"
	employeeToken = "employee-token"
	adminUserID   = "11111111-1111-1111-1111-111111111111"
	staffUserID   = "22222222-2222-2222-2222-222222222222"
)

var errNotImplemented = errors.New("not implemented")

type fakeAuth struct {
	loginFn func(ctx context.Context, username, password string) (*auth.AccessToken, error)
}

func (f *fakeAuth) Login(ctx context.Context, username, password string) (*auth.AccessToken, error) {
	if f.loginFn == nil {
		return nil, errNotImplemented
	}
	return f.loginFn(ctx, username, password)
}

func (f *fakeAuth) Authenticate(_ context.Context, token string) (*auth.Principal, error) {
	switch token {
	case adminToken:
		return &auth.Principal{UserID: adminUserID, Role: user.RoleAdmin}, nil
	case employeeToken:
		return &auth.Principal{UserID: staffUserID, Role: user.RoleEmployee}, nil
	default:
		return nil, auth.ErrUnauthenticated
	}
}

type fakeUsers struct {
	createFn func(ctx context.Context, in user.CreateUserInput) (*user.User, error)
	listFn   func(ctx context.Context, in user.ListUsersInput) (*user.ListUsersResult, error)
}

func (f *fakeUsers) CreateUser(ctx context.Context, in user.CreateUserInput) (*user.User, error) {
	if f.createFn == nil {
		return nil, errNotImplemented
	}
	return f.createFn(ctx, in)
}

func (f *fakeUsers) GetUser(context.Context, user.GetUserInput) (*user.User, error) {
	return nil, errNotImplemented
}

func (f *fakeUsers) ListUsers(ctx context.Context, in user.ListUsersInput) (*user.ListUsersResult, error) {
	if f.listFn == nil {
		return nil, errNotImplemented
	}
	return f.listFn(ctx, in)
}

type fakeEmployees struct {
	byUserFn func(ctx context.Context, userID string) (*employee.Employee, error)
	listFn   func(ctx context.Context, in employee.ListEmployeesInput) (*employee.ListEmployeesResult, error)
	updateFn func(ctx context.Context, in employee.UpdateEmployeeInput) (*employee.Employee, error)
}

func (f *fakeEmployees) GetEmployee(context.Context, employee.GetEmployeeInput) (*employee.Employee, error) {
	return nil, errNotImplemented
}

func (f *fakeEmployees) GetEmployeeByUser(ctx context.Context, userID string) (*employee.Employee, error) {
	if f.byUserFn == nil {
		return nil, errNotImplemented
	}
	return f.byUserFn(ctx, userID)
}

func (f *fakeEmployees) ListEmployees(ctx context.Context, in employee.ListEmployeesInput) (*employee.ListEmployeesResult, error) {
	if f.listFn == nil {
		return nil, errNotImplemented
	}
	return f.listFn(ctx, in)
}

func (f *fakeEmployees) UpdateEmployee(ctx context.Context, in employee.UpdateEmployeeInput) (*employee.Employee, error) {
	if f.updateFn == nil {
		return nil, errNotImplemented
	}
	return f.updateFn(ctx, in)
}

type fakeInvitations struct {
	createFn   func(ctx context.Context, in invitation.CreateInvitationInput) (*invitation.Invitation, error)
	validateFn func(ctx context.Context, token string) (*invitation.Summary, error)
	acceptFn   func(ctx context.Context, in invitation.AcceptInvitationInput) (*invitation.AcceptResult, error)
	listFn     func(ctx context.Context, in invitation.ListInvitationsInput) (*invitation.ListInvitationsResult, error)
}

func (f *fakeInvitations) CreateInvitation(ctx context.Context, in invitation.CreateInvitationInput) (*invitation.Invitation, error) {
	if f.createFn == nil {
		return nil, errNotImplemented
	}
	return f.createFn(ctx, in)
}

func (f *fakeInvitations) ValidateToken(ctx context.Context, token string) (*invitation.Summary, error) {
	if f.validateFn == nil {
		return nil, errNotImplemented
	}
	return f.validateFn(ctx, token)
}

func (f *fakeInvitations) AcceptInvitation(ctx context.Context, in invitation.AcceptInvitationInput) (*invitation.AcceptResult, error) {
	if f.acceptFn == nil {
		return nil, errNotImplemented
	}
	return f.acceptFn(ctx, in)
}

func (f *fakeInvitations) ListInvitations(ctx context.Context, in invitation.ListInvitationsInput) (*invitation.ListInvitationsResult, error) {
	if f.listFn == nil {
		return nil, errNotImplemented
	}
	return f.listFn(ctx, in)
}

type fakeSalaries struct {
	createFn  func(ctx context.Context, in salary.CreateRecordInput) (*salary.Record, error)
	updateFn  func(ctx context.Context, in salary.UpdateRecordInput) (*salary.Record, error)
	forEmpFn  func(ctx context.Context, employeeID string) ([]*salary.Record, error)
	forUserFn func(ctx context.Context, userID string) ([]*salary.Record, error)
}

func (f *fakeSalaries) CreateSalaryRecord(ctx context.Context, in salary.CreateRecordInput) (*salary.Record, error) {
	if f.createFn == nil {
		return nil, errNotImplemented
	}
	return f.createFn(ctx, in)
}

func (f *fakeSalaries) UpdateSalaryRecord(ctx context.Context, in salary.UpdateRecordInput) (*salary.Record, error) {
	if f.updateFn == nil {
		return nil, errNotImplemented
	}
	return f.updateFn(ctx, in)
}

func (f *fakeSalaries) ListForEmployee(ctx context.Context, employeeID string) ([]*salary.Record, error) {
	if f.forEmpFn == nil {
		return nil, errNotImplemented
	}
	return f.forEmpFn(ctx, employeeID)
}

func (f *fakeSalaries) ListForUser(ctx context.Context, userID string) ([]*salary.Record, error) {
	if f.forUserFn == nil {
		return nil, errNotImplemented
	}
	return f.forUserFn(ctx, userID)
}

type fakeAttendance struct {
	checkInFn  func(ctx context.Context, userID string) (*attendance.Record, error)
	submitFn   func(ctx context.Context, in attendance.SubmitInput) (*attendance.Record, error)
	forUserFn  func(ctx context.Context, userID string, r attendance.DateRange) ([]*attendance.Record, error)
	updateFn   func(ctx context.Context, in attendance.UpdateInput) (*attendance.Record, error)
	checkOutFn func(ctx context.Context, userID string) (*attendance.Record, error)
}

func (f *fakeAttendance) CheckIn(ctx context.Context, userID string) (*attendance.Record, error) {
	if f.checkInFn == nil {
		return nil, errNotImplemented
	}
	return f.checkInFn(ctx, userID)
}

func (f *fakeAttendance) CheckOut(ctx context.Context, userID string) (*attendance.Record, error) {
	if f.checkOutFn == nil {
		return nil, errNotImplemented
	}
	return f.checkOutFn(ctx, userID)
}

func (f *fakeAttendance) Submit(ctx context.Context, in attendance.SubmitInput) (*attendance.Record, error) {
	if f.submitFn == nil {
		return nil, errNotImplemented
	}
	return f.submitFn(ctx, in)
}

func (f *fakeAttendance) ListForUser(ctx context.Context, userID string, r attendance.DateRange) ([]*attendance.Record, error) {
	if f.forUserFn == nil {
		return nil, errNotImplemented
	}
	return f.forUserFn(ctx, userID, r)
}

func (f *fakeAttendance) ListForEmployee(context.Context, string, attendance.DateRange) ([]*attendance.Record, error) {
	return nil, errNotImplemented
}

func (f *fakeAttendance) Update(ctx context.Context, in attendance.UpdateInput) (*attendance.Record, error) {
	if f.updateFn == nil {
		return nil, errNotImplemented
	}
	return f.updateFn(ctx, in)
}

type fakePinger struct {
	err error
}

func (f fakePinger) Ping(context.Context) error {
	return f.err
}
