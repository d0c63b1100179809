package handler

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/ogurasousui/workforce-api/internal/core/invitation"
)

type invitationHandler struct {
	svc invitation.UseCase
}

type createInvitationRequest struct {
	Email        string           `json:"email"`
	EmployeeCode string           `json:"employee_id"`
	HireDate     *date            `json:"hire_date"`
	Department   *string          `json:"department"`
	Position     *string          `json:"position"`
	BaseSalary   *decimal.Decimal `json:"base_salary"`
}

func (h *invitationHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createInvitationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	in := invitation.CreateInvitationInput{
		Email:        req.Email,
		EmployeeCode: req.EmployeeCode,
		Department:   req.Department,
		Position:     req.Position,
		BaseSalary:   req.BaseSalary,
	}
	if req.HireDate != nil {
		in.HireDate = req.HireDate.Time
	}

	created, err := h.svc.CreateInvitation(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toInvitationResponse(created))
}

func (h *invitationHandler) list(w http.ResponseWriter, r *http.Request) {
	pageSize, err := parsePageSize(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	in := invitation.ListInvitationsInput{
		PageSize:  pageSize,
		PageToken: r.URL.Query().Get("page_token"),
	}
	if raw := optionalQuery(r, "status"); raw != nil {
		st := invitation.Status(*raw)
		in.Status = &st
	}

	result, err := h.svc.ListInvitations(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	setNextPageToken(w, result.NextPageToken)
	writeJSON(w, http.StatusOK, mapSlice(result.Invitations, toInvitationResponse))
}

// validate は受諾前の招待内容を返します。
func (h *invitationHandler) validate(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.ValidateToken(r.Context(), r.PathValue("token"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toInvitationSummaryResponse(summary))
}

type acceptInvitationRequest struct {
	Token       string  `json:"token"`
	Username    string  `json:"username"`
	Password    string  `json:"password"`
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	Phone       *string `json:"phone"`
	Address     *string `json:"address"`
	DateOfBirth *date   `json:"date_of_birth"`
}

type acceptInvitationResponse struct {
	Message    string `json:"message"`
	UserID     string `json:"user_id"`
	EmployeeID string `json:"employee_id"`
}

func (h *invitationHandler) accept(w http.ResponseWriter, r *http.Request) {
	var req acceptInvitationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	result, err := h.svc.AcceptInvitation(r.Context(), invitation.AcceptInvitationInput{
		Token:       req.Token,
		Username:    req.Username,
		Password:    req.Password,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Phone:       req.Phone,
		Address:     req.Address,
		DateOfBirth: datePtr(req.DateOfBirth),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, acceptInvitationResponse{
		Message:    "Account created successfully",
		UserID:     result.UserID,
		EmployeeID: result.EmployeeID,
	})
}
