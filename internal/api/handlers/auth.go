package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/contractiq/contractiq/internal/api"
	"github.com/contractiq/contractiq/internal/service"
)

type AuthService interface {
	Signup(ctx context.Context, input service.SignupInput) (*service.AuthResult, error)
	Login(ctx context.Context, input service.LoginInput) (*service.AuthResult, error)
}

type AuthHandler struct {
	svc AuthService
}

func NewAuthHandler(svc AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

func authToResponse(result *service.AuthResult) AuthResponse {
	return AuthResponse{
		Token: result.Token,
		User: UserResponse{
			ID:       result.User.ID,
			Username: result.User.Username,
			Email:    result.User.Email,
		},
	}
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Username == "" {
		api.Error(w, http.StatusBadRequest, "username is required")
		return
	}
	if req.Email == "" {
		api.Error(w, http.StatusBadRequest, "email is required")
		return
	}
	if req.Password == "" {
		api.Error(w, http.StatusBadRequest, "password is required")
		return
	}

	result, err := h.svc.Signup(r.Context(), service.SignupInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, authToResponse(result))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		api.Error(w, http.StatusBadRequest, "email and password are required")
		return
	}

	result, err := h.svc.Login(r.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, authToResponse(result))
}
