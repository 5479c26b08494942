package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/mukimuddin/deadbox/internal/common"
)

const maxBodyBytes = 1 << 20

// API error codes returned in JSON { "error": "...", "code": "..." }.
const (
	ErrCodeInvalidRequest     = "invalid_request"
	ErrCodeValidation         = "validation_error"
	ErrCodeUnauthorized       = "unauthorized"
	ErrCodeInvalidCredentials = "invalid_credentials"
	ErrCodeInvalidToken       = "invalid_token"
	ErrCodeTokenExpired       = "token_expired"
	ErrCodeEmailNotVerified   = "email_not_verified"
	ErrCodeAlreadyVerified    = "email_already_verified"
	ErrCodeConflict           = "conflict"
	ErrCodeNotFound           = "not_found"
	ErrCodeLetterLocked       = "letter_locked"
	ErrCodeLetterNotSent      = "letter_not_released"
	ErrCodeInvalidFamilyKey   = "invalid_family_key"
	ErrCodeRateLimited        = "rate_limited"
	ErrCodeInternal           = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, errCode, message string) {
	writeJSON(w, code, errorResponse{Error: message, Code: errCode})
}

// writeServiceError maps service sentinels to HTTP responses. Anything
// unrecognised is logged and hidden behind a 500.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrorValidation):
		msg := strings.TrimPrefix(err.Error(), common.ErrorValidation.Error()+": ")
		writeErr(w, http.StatusBadRequest, ErrCodeValidation, msg)
	case errors.Is(err, common.ErrorAlreadyExists):
		writeErr(w, http.StatusConflict, ErrCodeConflict, "email already registered")
	case errors.Is(err, common.ErrorUnauthorized):
		writeErr(w, http.StatusUnauthorized, ErrCodeInvalidCredentials, "invalid email or password")
	case errors.Is(err, common.ErrEmailNotVerified):
		writeErr(w, http.StatusForbidden, ErrCodeEmailNotVerified, "please verify your email before logging in")
	case errors.Is(err, common.ErrEmailAlreadyVerified):
		writeErr(w, http.StatusBadRequest, ErrCodeAlreadyVerified, "email already verified")
	case errors.Is(err, common.ErrInvalidToken):
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidToken, "invalid or expired token")
	case errors.Is(err, common.ErrTokenExpired), errors.Is(err, common.ErrRefreshTokenExpired):
		writeErr(w, http.StatusBadRequest, ErrCodeTokenExpired, "invalid or expired token")
	case errors.Is(err, common.ErrorNotFound):
		writeErr(w, http.StatusNotFound, ErrCodeNotFound, "not found")
	case errors.Is(err, common.ErrLetterLocked):
		writeErr(w, http.StatusConflict, ErrCodeLetterLocked, "letter has already been sent")
	case errors.Is(err, common.ErrLetterNotSent):
		writeErr(w, http.StatusForbidden, ErrCodeLetterNotSent, "letter has not been released yet")
	case errors.Is(err, common.ErrInvalidFamilyKey):
		writeErr(w, http.StatusUnauthorized, ErrCodeInvalidFamilyKey, "invalid family key")
	default:
		s.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		writeErr(w, http.StatusInternalServerError, ErrCodeInternal, "internal error")
	}
}

// decode reads a JSON body into dst and validates it. On failure the error
// response is already written.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid body")
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeValidation, validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required", "required_if":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "email":
			msgs = append(msgs, fmt.Sprintf("%s must be a valid email address", fe.Field()))
		case "min", "max":
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return strings.Join(msgs, "; ")
}
