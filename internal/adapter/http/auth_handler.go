package http

import (
	"net/http"
	"strings"

	"github.com/YelzhanWeb/fooddelivery/internal/adapter/logger"
	"github.com/YelzhanWeb/fooddelivery/internal/interfaces"
)

type AuthHandler struct {
	service interfaces.AuthService
	logger  logger.Logger
}

func NewAuthHandler(service interfaces.AuthService, logger logger.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger,
	}
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Username    string `json:"username" validate:"required,max=255"`
	Password    string `json:"password" validate:"required,min=6,max=72"`
	PhoneNumber string `json:"phone_number" validate:"omitempty,max=50"`
	Role        string `json:"role" validate:"omitempty,oneof=user admin"`
}

// Login accepts either a JSON body or an OAuth2 style password form.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") ||
		strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		req.Username = r.FormValue("username")
		req.Password = r.FormValue("password")
		if err := validateStruct(&req); err != nil {
			writeError(w, r, h.logger, err)
			return
		}
	} else if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	token, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.logger.Debug("login_failed", "Login rejected", logger.RequestID(r.Context()),
			map[string]interface{}{"username": req.Username})
		writeError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, token)
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	user, err := h.service.Register(r.Context(), interfaces.RegisterCommand{
		Username:    req.Username,
		Password:    req.Password,
		Role:        req.Role,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, user)
}

func (h *AuthHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page, err := pageParams(r, 100)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	users, err := h.service.ListUsers(r.Context(), page)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, users)
}
