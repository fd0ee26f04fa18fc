package handlers

import (
	"net/http"

	"github.com/kevinaaaquil/bookreview/apperr"
	"github.com/kevinaaaquil/bookreview/middleware"
	"github.com/kevinaaaquil/bookreview/response"
	"github.com/kevinaaaquil/bookreview/service"
)

type AuthHandler struct {
	Auth     AuthService
	Validate *Validator
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := h.Validate.Decode(r, &req); err != nil {
		response.Error(w, r, err)
		return
	}
	user, err := h.Auth.Register(r.Context(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.Created(w, map[string]any{
		"message": "User registered successfully",
		"user":    user,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := h.Validate.Decode(r, &req); err != nil {
		response.Error(w, r, err)
		return
	}
	res, err := h.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, map[string]any{
		"message": "Login successful",
		"user":    res.User,
		"token":   res.Token,
	})
}

func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Error(w, r, apperr.Unauthorized("Authentication required"))
		return
	}
	user, err := h.Auth.Profile(r.Context(), userID)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, map[string]any{"user": user})
}
