package http

import (
	"net/http"

	"github.com/opslane/clientdesk/internal/api/service"
	"github.com/opslane/clientdesk/pkg/httpx"
)

// MFAHandler handles TOTP enrollment and lifecycle.
type MFAHandler struct {
	MFAService *service.MFAService
}

type mfaEnrollResponse struct {
	Secret  string `json:"secret"`
	URL     string `json:"url"`
	Issuer  string `json:"issuer"`
	Account string `json:"account"`
}

// HandleEnroll handles POST /v1/auth/mfa/enroll
//
//	@Summary		Start TOTP enrollment
//	@Description	Generates a TOTP secret and provisioning URI. MFA is not active until a code is verified via activate.
//	@Tags			MFA
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	mfaEnrollResponse
//	@Failure		400	{object}	httpx.ErrorResponse	"MFA already enabled"
//	@Failure		401	{object}	httpx.ErrorResponse	"Invalid or missing access token"
//	@Router			/v1/auth/mfa/enroll [post].
func (h *MFAHandler) HandleEnroll(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromContext(w, r)
	if !ok {
		return
	}

	enrollment, err := h.MFAService.Enroll(r.Context(), caller)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, mfaEnrollResponse{
		Secret:  enrollment.Secret,
		URL:     enrollment.URL,
		Issuer:  enrollment.Issuer,
		Account: enrollment.Account,
	})
}

type mfaCodeRequest struct {
	Code string `json:"code"`
}

// HandleActivate handles POST /v1/auth/mfa/activate
//
//	@Summary		Activate MFA
//	@Description	Verifies the first TOTP code and turns MFA on. Login requires a code from here on.
//	@Tags			MFA
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body	mfaCodeRequest	true	"TOTP code"
//	@Success		204
//	@Failure		400	{object}	httpx.ErrorResponse	"Not enrolled or already enabled"
//	@Failure		401	{object}	httpx.ErrorResponse	"Invalid TOTP code"
//	@Router			/v1/auth/mfa/activate [post].
func (h *MFAHandler) HandleActivate(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromContext(w, r)
	if !ok {
		return
	}

	var req mfaCodeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.MFAService.Activate(r.Context(), caller, req.Code); err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleDisable handles DELETE /v1/auth/mfa
//
//	@Summary		Disable MFA
//	@Description	Removes the TOTP requirement after verifying a current code.
//	@Tags			MFA
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body	mfaCodeRequest	true	"TOTP code"
//	@Success		204
//	@Failure		400	{object}	httpx.ErrorResponse	"MFA not enabled"
//	@Failure		401	{object}	httpx.ErrorResponse	"Invalid TOTP code"
//	@Router			/v1/auth/mfa [delete].
func (h *MFAHandler) HandleDisable(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromContext(w, r)
	if !ok {
		return
	}

	var req mfaCodeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.MFAService.Disable(r.Context(), caller, req.Code); err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
