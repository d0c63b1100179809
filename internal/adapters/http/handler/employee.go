package handler

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/ogurasousui/workforce-api/internal/core/auth"
	"github.com/ogurasousui/workforce-api/internal/core/employee"
)

type employeeHandler struct {
	svc employee.UseCase
}

// me はログインユーザー本人の社員情報を返します。
func (h *employeeHandler) me(w http.ResponseWriter, r *http.Request) {
	p, ok := principalFrom(r.Context())
	if !ok {
		writeError(w, r, auth.ErrUnauthenticated)
		return
	}

	found, err := h.svc.GetEmployeeByUser(r.Context(), p.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toEmployeeResponse(found))
}

func (h *employeeHandler) list(w http.ResponseWriter, r *http.Request) {
	pageSize, err := parsePageSize(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	result, err := h.svc.ListEmployees(r.Context(), employee.ListEmployeesInput{
		PageSize:   pageSize,
		PageToken:  r.URL.Query().Get("page_token"),
		Department: optionalQuery(r, "department"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	setNextPageToken(w, result.NextPageToken)
	writeJSON(w, http.StatusOK, mapSlice(result.Employees, toEmployeeResponse))
}

type updateEmployeeRequest struct {
	FirstName   *string                   `json:"first_name"`
	LastName    *string                   `json:"last_name"`
	Phone       optional[string]          `json:"phone"`
	Address     optional[string]          `json:"address"`
	DateOfBirth optional[date]            `json:"date_of_birth"`
	Department  optional[string]          `json:"department"`
	Position    optional[string]          `json:"position"`
	BaseSalary  optional[decimal.Decimal] `json:"base_salary"`
}

func (h *employeeHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, employee.ErrEmployeeNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req updateEmployeeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	in := employee.UpdateEmployeeInput{
		ID:         id,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		BaseSalary: req.BaseSalary.Value,
	}
	in.BaseSalarySet = req.BaseSalary.Set
	in.Phone, in.PhoneSet = optionalString(req.Phone)
	in.Address, in.AddressSet = optionalString(req.Address)
	in.Department, in.DepartmentSet = optionalString(req.Department)
	in.Position, in.PositionSet = optionalString(req.Position)
	in.DateOfBirth, in.DateOfBirthSet = optionalDate(req.DateOfBirth)

	updated, err := h.svc.UpdateEmployee(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toEmployeeResponse(updated))
}
