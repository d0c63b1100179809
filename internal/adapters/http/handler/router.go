package handler

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ogurasousui/workforce-api/internal/core/attendance"
	"github.com/ogurasousui/workforce-api/internal/core/auth"
	"github.com/ogurasousui/workforce-api/internal/core/employee"
	"github.com/ogurasousui/workforce-api/internal/core/invitation"
	"github.com/ogurasousui/workforce-api/internal/core/salary"
	"github.com/ogurasousui/workforce-api/internal/core/user"
)

// AuthService はログインとトークン検証のユースケースです。
type AuthService interface {
	Authenticator
	Login(ctx context.Context, username, password string) (*auth.AccessToken, error)
}

// Pinger は依存先の疎通確認です。
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies は HTTP ハンドラが利用するユースケースです。
type Dependencies struct {
	Auth        AuthService
	Users       user.UseCase
	Employees   employee.UseCase
	Invitations invitation.UseCase
	Salaries    salary.UseCase
	Attendance  attendance.UseCase
	DB          Pinger
	Logger      *zap.Logger

	PublicRPS   float64
	PublicBurst int
}

// NewRouter はすべてのルートを登録した http.Handler を返します。
func NewRouter(deps Dependencies) (http.Handler, error) {
	switch {
	case deps.Auth == nil:
		return nil, errors.New("handler: auth service is required")
	case deps.Users == nil, deps.Employees == nil, deps.Invitations == nil, deps.Salaries == nil, deps.Attendance == nil:
		return nil, errors.New("handler: all use cases are required")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.PublicRPS <= 0 {
		deps.PublicRPS = 5
	}
	if deps.PublicBurst <= 0 {
		deps.PublicBurst = 10
	}

	mux := http.NewServeMux()
	authed := RequireAuth(deps.Auth)
	admin := RequireAdmin()
	public := RateLimitByIP(deps.PublicRPS, deps.PublicBurst)

	authH := &authHandler{svc: deps.Auth}
	userH := &userHandler{svc: deps.Users}
	empH := &employeeHandler{svc: deps.Employees}
	invH := &invitationHandler{svc: deps.Invitations}
	salH := &salaryHandler{svc: deps.Salaries}
	attH := &attendanceHandler{svc: deps.Attendance}

	mux.Handle("GET /health", &healthHandler{db: deps.DB})
	mux.Handle("POST /api/auth/login", Chain(http.HandlerFunc(authH.login), public))

	mux.Handle("GET /api/invitations/validate/{token}", Chain(http.HandlerFunc(invH.validate), public))
	mux.Handle("POST /api/invitations/accept", Chain(http.HandlerFunc(invH.accept), public))

	mux.Handle("GET /api/employees/me", Chain(http.HandlerFunc(empH.me), authed))
	mux.Handle("GET /api/employees/me/salary-records", Chain(http.HandlerFunc(salH.mine), authed))

	mux.Handle("POST /api/attendance/check-in", Chain(http.HandlerFunc(attH.checkIn), authed))
	mux.Handle("POST /api/attendance/check-out", Chain(http.HandlerFunc(attH.checkOut), authed))
	mux.Handle("POST /api/attendance", Chain(http.HandlerFunc(attH.submit), authed))
	mux.Handle("GET /api/attendance/my-attendance", Chain(http.HandlerFunc(attH.mine), authed))
	mux.Handle("GET /api/attendance/employee/{id}", Chain(http.HandlerFunc(attH.forEmployee), authed, admin))
	mux.Handle("PUT /api/attendance/{id}", Chain(http.HandlerFunc(attH.update), authed, admin))

	mux.Handle("POST /api/admin/users", Chain(http.HandlerFunc(userH.create), authed, admin))
	mux.Handle("GET /api/admin/users", Chain(http.HandlerFunc(userH.list), authed, admin))
	mux.Handle("GET /api/admin/employees", Chain(http.HandlerFunc(empH.list), authed, admin))
	mux.Handle("PUT /api/admin/employees/{id}", Chain(http.HandlerFunc(empH.update), authed, admin))
	mux.Handle("GET /api/admin/employees/{id}/salary-records", Chain(http.HandlerFunc(salH.forEmployee), authed, admin))
	mux.Handle("POST /api/admin/invitations", Chain(http.HandlerFunc(invH.create), authed, admin))
	mux.Handle("GET /api/admin/invitations", Chain(http.HandlerFunc(invH.list), authed, admin))
	mux.Handle("POST /api/admin/salary-records", Chain(http.HandlerFunc(salH.create), authed, admin))
	mux.Handle("PUT /api/admin/salary-records/{id}", Chain(http.HandlerFunc(salH.update), authed, admin))

	return Chain(mux, RequestLogger(deps.Logger)), nil
}

type healthHandler struct {
	db Pinger
}

func (h *healthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		if err := h.db.Ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
