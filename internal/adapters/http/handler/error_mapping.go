package handler

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ogurasousui/workforce-api/internal/core/attendance"
	"github.com/ogurasousui/workforce-api/internal/core/auth"
	"github.com/ogurasousui/workforce-api/internal/core/employee"
	"github.com/ogurasousui/workforce-api/internal/core/invitation"
	"github.com/ogurasousui/workforce-api/internal/core/salary"
	"github.com/ogurasousui/workforce-api/internal/core/user"
	"github.com/ogurasousui/workforce-api/internal/platform/logger"
)

// errInvalidRequest はリクエストボディやクエリの形式不正です。
var errInvalidRequest = errors.New("invalid request")

func toHTTPStatus(err error) int {
	switch {
	case errors.Is(err, errInvalidRequest),
		errors.Is(err, user.ErrInvalidEmail),
		errors.Is(err, user.ErrInvalidUsername),
		errors.Is(err, user.ErrInvalidPassword),
		errors.Is(err, user.ErrInvalidRole),
		errors.Is(err, user.ErrValueTooLong),
		errors.Is(err, user.ErrInvalidID),
		errors.Is(err, user.ErrInvalidPageSize),
		errors.Is(err, user.ErrInvalidPageToken),
		errors.Is(err, employee.ErrInvalidID),
		errors.Is(err, employee.ErrInvalidUserID),
		errors.Is(err, employee.ErrInvalidEmployeeCode),
		errors.Is(err, employee.ErrInvalidFirstName),
		errors.Is(err, employee.ErrInvalidLastName),
		errors.Is(err, employee.ErrInvalidHireDate),
		errors.Is(err, employee.ErrInvalidDateOfBirth),
		errors.Is(err, employee.ErrInvalidBaseSalary),
		errors.Is(err, employee.ErrInvalidPhone),
		errors.Is(err, employee.ErrInvalidDepartment),
		errors.Is(err, employee.ErrInvalidPosition),
		errors.Is(err, employee.ErrValueTooLong),
		errors.Is(err, employee.ErrInvalidPageSize),
		errors.Is(err, employee.ErrInvalidPageToken),
		errors.Is(err, invitation.ErrInvalidID),
		errors.Is(err, invitation.ErrInvalidEmail),
		errors.Is(err, invitation.ErrInvalidEmployeeCode),
		errors.Is(err, invitation.ErrInvalidHireDate),
		errors.Is(err, invitation.ErrInvalidBaseSalary),
		errors.Is(err, invitation.ErrInvalidDepartment),
		errors.Is(err, invitation.ErrInvalidPosition),
		errors.Is(err, invitation.ErrValueTooLong),
		errors.Is(err, invitation.ErrInvalidToken),
		errors.Is(err, invitation.ErrInvalidStatus),
		errors.Is(err, invitation.ErrInvalidPageSize),
		errors.Is(err, invitation.ErrInvalidPageToken),
		errors.Is(err, invitation.ErrInvitationInvalid),
		errors.Is(err, salary.ErrInvalidID),
		errors.Is(err, salary.ErrInvalidEmployeeID),
		errors.Is(err, salary.ErrInvalidUserID),
		errors.Is(err, salary.ErrInvalidPeriod),
		errors.Is(err, salary.ErrInvalidAmount),
		errors.Is(err, salary.ErrInvalidStatus),
		errors.Is(err, attendance.ErrInvalidID),
		errors.Is(err, attendance.ErrInvalidUserID),
		errors.Is(err, attendance.ErrInvalidEmployeeID),
		errors.Is(err, attendance.ErrInvalidDate),
		errors.Is(err, attendance.ErrInvalidDateRange),
		errors.Is(err, attendance.ErrInvalidStatus),
		errors.Is(err, attendance.ErrInvalidTimes),
		errors.Is(err, attendance.ErrAlreadyCheckedIn),
		errors.Is(err, attendance.ErrNotCheckedIn),
		errors.Is(err, attendance.ErrAlreadyCheckedOut),
		errors.Is(err, attendance.ErrAlreadySubmitted):
		return http.StatusBadRequest
	case errors.Is(err, user.ErrEmailAlreadyExists),
		errors.Is(err, user.ErrUsernameAlreadyExists),
		errors.Is(err, employee.ErrEmployeeCodeAlreadyExists),
		errors.Is(err, employee.ErrUserAlreadyHasEmployee),
		errors.Is(err, invitation.ErrEmailAlreadyRegistered),
		errors.Is(err, invitation.ErrPendingInvitationForEmail),
		errors.Is(err, invitation.ErrEmployeeCodeAlreadyExists),
		errors.Is(err, invitation.ErrPendingInvitationForEmployeeCode),
		errors.Is(err, invitation.ErrTokenAlreadyExists),
		errors.Is(err, invitation.ErrUsernameTaken),
		errors.Is(err, salary.ErrRecordAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, user.ErrUserNotFound),
		errors.Is(err, employee.ErrEmployeeNotFound),
		errors.Is(err, employee.ErrUserNotFound),
		errors.Is(err, invitation.ErrInvitationNotFound),
		errors.Is(err, salary.ErrRecordNotFound),
		errors.Is(err, salary.ErrEmployeeNotFound),
		errors.Is(err, attendance.ErrRecordNotFound),
		errors.Is(err, attendance.ErrEmployeeNotFound):
		return http.StatusNotFound
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrForbidden),
		errors.Is(err, auth.ErrInactiveUser):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// writeError はエラーをステータスコードに変換して返却します。
// 500 の場合は内部のエラー内容を応答に含めずログへ記録します。
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := toHTTPStatus(err)
	detail := err.Error()
	if code == http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error("request failed", zap.Error(err))
		detail = http.StatusText(code)
		if errors.Is(err, invitation.ErrAcceptFailed) {
			detail = invitation.ErrAcceptFailed.Error()
		}
	}
	if code == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	writeJSON(w, code, errorResponse{Detail: detail})
}

type errorResponse struct {
	Detail string `json:"detail"`
}
