package handler

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/ogurasousui/workforce-api/internal/core/auth"
	"github.com/ogurasousui/workforce-api/internal/core/employee"
	"github.com/ogurasousui/workforce-api/internal/core/salary"
)

type salaryHandler struct {
	svc salary.UseCase
}

type createSalaryRecordRequest struct {
	EmployeeID     string          `json:"employee_id"`
	Month          int             `json:"month"`
	Year           int             `json:"year"`
	BaseAmount     decimal.Decimal `json:"base_amount"`
	OvertimeAmount decimal.Decimal `json:"overtime_amount"`
	Bonus          decimal.Decimal `json:"bonus"`
	Deductions     decimal.Decimal `json:"deductions"`
	NetAmount      decimal.Decimal `json:"net_amount"`
}

func (h *salaryHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createSalaryRecordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	created, err := h.svc.CreateSalaryRecord(r.Context(), salary.CreateRecordInput{
		EmployeeID:     req.EmployeeID,
		Month:          req.Month,
		Year:           req.Year,
		BaseAmount:     req.BaseAmount,
		OvertimeAmount: req.OvertimeAmount,
		Bonus:          req.Bonus,
		Deductions:     req.Deductions,
		NetAmount:      req.NetAmount,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toSalaryRecordResponse(created))
}

type updateSalaryRecordRequest struct {
	BaseAmount     *decimal.Decimal `json:"base_amount"`
	OvertimeAmount *decimal.Decimal `json:"overtime_amount"`
	Bonus          *decimal.Decimal `json:"bonus"`
	Deductions     *decimal.Decimal `json:"deductions"`
	NetAmount      *decimal.Decimal `json:"net_amount"`
	Status         *string          `json:"status"`
	PaymentDate    optional[date]   `json:"payment_date"`
}

// update は給与レコードを部分更新します。paid への遷移時の通知はユースケース側で行います。
func (h *salaryHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, salary.ErrRecordNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req updateSalaryRecordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	in := salary.UpdateRecordInput{
		ID:             id,
		BaseAmount:     req.BaseAmount,
		OvertimeAmount: req.OvertimeAmount,
		Bonus:          req.Bonus,
		Deductions:     req.Deductions,
		NetAmount:      req.NetAmount,
	}
	if req.Status != nil {
		st := salary.Status(*req.Status)
		in.Status = &st
	}
	in.PaymentDate, in.PaymentDateSet = optionalDate(req.PaymentDate)

	updated, err := h.svc.UpdateSalaryRecord(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toSalaryRecordResponse(updated))
}

func (h *salaryHandler) forEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, employee.ErrEmployeeNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}

	records, err := h.svc.ListForEmployee(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, mapSlice(records, toSalaryRecordResponse))
}

func (h *salaryHandler) mine(w http.ResponseWriter, r *http.Request) {
	p, ok := principalFrom(r.Context())
	if !ok {
		writeError(w, r, auth.ErrUnauthenticated)
		return
	}

	records, err := h.svc.ListForUser(r.Context(), p.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, mapSlice(records, toSalaryRecordResponse))
}
