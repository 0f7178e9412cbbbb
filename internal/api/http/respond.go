package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/opslane/clientdesk/internal/api/domain"
	"github.com/opslane/clientdesk/internal/api/service"
	"github.com/opslane/clientdesk/internal/api/store"
	"github.com/opslane/clientdesk/pkg/httpx"
	"github.com/opslane/clientdesk/pkg/slogx"
)

// decodeJSON parses the request body into dst and writes the 400 itself on
// failure. Handlers just return when it reports false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return false
	}
	return true
}

// callerFromContext rebuilds the typed caller from the verified claims the
// authn middleware attached. Handlers behind the middleware can rely on it
// being present; the false branch is a wiring bug, not a user error.
func callerFromContext(w http.ResponseWriter, r *http.Request) (domain.Caller, bool) {
	claims, ok := httpx.ClaimsFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_token", "missing authentication")
		return domain.Caller{}, false
	}
	return domain.Caller{
		AccountID: claims.Subject,
		Email:     claims.Email,
		Username:  claims.Username,
		Role:      domain.Role(claims.Role),
		CompanyID: claims.CompanyID,
	}, true
}

// writeServiceError maps service and store errors onto the wire taxonomy:
// 401 for credential/token/OTP/invitation/role failures, 409 for scope
// conflicts, 404 for absent entities, 400 for bad payloads.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrMFARequired):
		// Distinguishable on purpose: the client should prompt for a code.
		httpx.WriteError(w, http.StatusUnauthorized, "mfa_required", err.Error())

	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidOTP),
		errors.Is(err, service.ErrInvalidRefreshToken),
		errors.Is(err, service.ErrInvalidTOTPCode),
		errors.Is(err, service.ErrNotAdmin),
		errors.Is(err, service.ErrInviteNotFound):
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", err.Error())

	case errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrInviteExists),
		errors.Is(err, service.ErrInviteMismatch),
		errors.Is(err, service.ErrCompanyExists),
		errors.Is(err, service.ErrClientContactTaken),
		errors.Is(err, store.ErrAlreadyExists):
		httpx.WriteError(w, http.StatusConflict, "conflict", err.Error())

	case errors.Is(err, store.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, "not_found", "resource not found")

	case errors.Is(err, service.ErrInvalidSignupRequest),
		errors.Is(err, service.ErrInvalidRegisterRequest),
		errors.Is(err, service.ErrInvalidInviteRequest),
		errors.Is(err, service.ErrInvalidCompanyRequest),
		errors.Is(err, service.ErrInvalidClientRequest),
		errors.Is(err, service.ErrInvalidRole),
		errors.Is(err, service.ErrInvalidCompany),
		errors.Is(err, service.ErrAlreadyVerified),
		errors.Is(err, service.ErrMFAAlreadyEnabled),
		errors.Is(err, service.ErrMFANotEnrolled),
		errors.Is(err, service.ErrMFANotEnabled):
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())

	default:
		slogx.FromContext(r.Context()).Error("request failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal server error")
	}
}
