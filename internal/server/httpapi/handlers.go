package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/mbortnikov/marketauth/internal/common"
	"github.com/mbortnikov/marketauth/internal/logging"
	"github.com/mbortnikov/marketauth/internal/server/models"
	"github.com/mbortnikov/marketauth/internal/server/validation"
)

type handlers struct {
	service AccountService
	logger  logging.Logger
}

type signupResponse struct {
	ID          string             `json:"id"`
	Email       string             `json:"email"`
	Phone       string             `json:"phone"`
	AccountType models.AccountType `json:"account_type"`
	CreatedAt   time.Time          `json:"created_at"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type verifyResponse struct {
	ExpiresAt time.Time `json:"expires_at"`
}

func (h *handlers) signup(w http.ResponseWriter, r *http.Request) {
	var in validation.SignupInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	account, err := h.service.SignUp(r.Context(), in)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, signupResponse{
		ID:          account.ID,
		Email:       account.Email,
		Phone:       account.Phone,
		AccountType: account.AccountType,
		CreatedAt:   account.CreatedAt,
	})
}

func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	var in validation.LoginInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	token, err := h.service.Login(r.Context(), in)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Token: token})
}

func (h *handlers) verify(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	conf, err := h.service.RequestVerification(r.Context(), token)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusAccepted, verifyResponse{ExpiresAt: conf.ExpiresAt})
}

// Placeholder marketplace sections. Real content is served by other systems;
// these exist so clients can exercise the authenticated routing skeleton.

func (h *handlers) profile(w http.ResponseWriter, r *http.Request) {
	h.placeholder(w, r, "profile")
}

func (h *handlers) cart(w http.ResponseWriter, r *http.Request) {
	h.placeholder(w, r, "cart")
}

func (h *handlers) payment(w http.ResponseWriter, r *http.Request) {
	h.placeholder(w, r, "payment")
}

func (h *handlers) placeholder(w http.ResponseWriter, r *http.Request, section string) {
	writeJSON(w, http.StatusOK, map[string]string{
		"section": section,
		"status":  "not yet available",
	})
}

// bearerToken extracts the credential from the Authorization header.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get(common.AuthorizationHeaderName)
	if !strings.HasPrefix(header, common.BearerSchemePrefix) {
		return "", false
	}
	token := strings.TrimPrefix(header, common.BearerSchemePrefix)
	if token == "" {
		return "", false
	}
	return token, true
}

// writeServiceError maps service error kinds to HTTP statuses. Response
// bodies carry only the generic message for the kind, never internal detail.
func (h *handlers) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrorValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrorAlreadyExists):
		writeError(w, http.StatusConflict, "account already exists")
	case errors.Is(err, common.ErrorInvalidCredentials),
		errors.Is(err, common.ErrInvalidCredentialFormat):
		writeError(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrTokenExpired):
		writeError(w, http.StatusUnauthorized, "invalid or expired token")
	case errors.Is(err, common.ErrorDeliveryFailed):
		w.Header().Set("Retry-After", "30")
		writeError(w, http.StatusServiceUnavailable, "verification delivery failed, retry later")
	default:
		h.logger.Error(r.Context(), "unhandled service error", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
