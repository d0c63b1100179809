package handler

import (
	"net/http"

	"github.com/ogurasousui/workforce-api/internal/core/user"
)

type userHandler struct {
	svc user.UseCase
}

type createUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (h *userHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	role := user.Role(req.Role)
	if role == "" {
		role = user.RoleEmployee
	}

	created, err := h.svc.CreateUser(r.Context(), user.CreateUserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     role,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toUserResponse(created))
}

func (h *userHandler) list(w http.ResponseWriter, r *http.Request) {
	pageSize, err := parsePageSize(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	in := user.ListUsersInput{
		PageSize:  pageSize,
		PageToken: r.URL.Query().Get("page_token"),
	}
	if raw := optionalQuery(r, "role"); raw != nil {
		role := user.Role(*raw)
		in.Role = &role
	}

	result, err := h.svc.ListUsers(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	setNextPageToken(w, result.NextPageToken)
	writeJSON(w, http.StatusOK, mapSlice(result.Users, toUserResponse))
}
