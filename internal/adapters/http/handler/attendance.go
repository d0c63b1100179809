package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/ogurasousui/workforce-api/internal/core/attendance"
	"github.com/ogurasousui/workforce-api/internal/core/auth"
)

type attendanceHandler struct {
	svc attendance.UseCase
}

func (h *attendanceHandler) checkIn(w http.ResponseWriter, r *http.Request) {
	h.punch(w, r, h.svc.CheckIn)
}

func (h *attendanceHandler) checkOut(w http.ResponseWriter, r *http.Request) {
	h.punch(w, r, h.svc.CheckOut)
}

func (h *attendanceHandler) punch(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, userID string) (*attendance.Record, error)) {
	p, ok := principalFrom(r.Context())
	if !ok {
		writeError(w, r, auth.ErrUnauthenticated)
		return
	}

	rec, err := fn(r.Context(), p.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toAttendanceResponse(rec))
}

type submitAttendanceRequest struct {
	Date       *date      `json:"date"`
	Status     string     `json:"status"`
	CheckInAt  *time.Time `json:"check_in"`
	CheckOutAt *time.Time `json:"check_out"`
	Notes      *string    `json:"notes"`
}

func (h *attendanceHandler) submit(w http.ResponseWriter, r *http.Request) {
	p, ok := principalFrom(r.Context())
	if !ok {
		writeError(w, r, auth.ErrUnauthenticated)
		return
	}

	var req submitAttendanceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	in := attendance.SubmitInput{
		UserID:     p.UserID,
		Status:     attendance.Status(req.Status),
		CheckInAt:  req.CheckInAt,
		CheckOutAt: req.CheckOutAt,
		Notes:      req.Notes,
	}
	if req.Date != nil {
		in.Date = req.Date.Time
	}

	rec, err := h.svc.Submit(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toAttendanceResponse(rec))
}

func (h *attendanceHandler) mine(w http.ResponseWriter, r *http.Request) {
	p, ok := principalFrom(r.Context())
	if !ok {
		writeError(w, r, auth.ErrUnauthenticated)
		return
	}

	rng, err := parseDateRange(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	records, err := h.svc.ListForUser(r.Context(), p.UserID, rng)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, mapSlice(records, toAttendanceResponse))
}

func (h *attendanceHandler) forEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, attendance.ErrEmployeeNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}

	rng, err := parseDateRange(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	records, err := h.svc.ListForEmployee(r.Context(), id, rng)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, mapSlice(records, toAttendanceResponse))
}

type updateAttendanceRequest struct {
	Status     *string             `json:"status"`
	CheckInAt  optional[time.Time] `json:"check_in"`
	CheckOutAt optional[time.Time] `json:"check_out"`
	Notes      optional[string]    `json:"notes"`
}

func (h *attendanceHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, attendance.ErrRecordNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req updateAttendanceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	in := attendance.UpdateInput{ID: id}
	if req.Status != nil {
		st := attendance.Status(*req.Status)
		in.Status = &st
	}
	in.CheckInAt, in.CheckInAtSet = optionalTime(req.CheckInAt)
	in.CheckOutAt, in.CheckOutAtSet = optionalTime(req.CheckOutAt)
	in.Notes, in.NotesSet = optionalString(req.Notes)

	rec, err := h.svc.Update(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toAttendanceResponse(rec))
}

func parseDateRange(r *http.Request) (attendance.DateRange, error) {
	from, err := parseDateQuery(r, "start_date")
	if err != nil {
		return attendance.DateRange{}, err
	}
	to, err := parseDateQuery(r, "end_date")
	if err != nil {
		return attendance.DateRange{}, err
	}
	return attendance.DateRange{From: from, To: to}, nil
}
