package http

import (
	"net/http"

	"github.com/opslane/clientdesk/internal/api/service"
	"github.com/opslane/clientdesk/pkg/httpx"
)

// AuthHandler handles signup, verification, login and token refresh.
type AuthHandler struct {
	AuthService *service.AuthService
}

type signupRequest struct {
	CompanyID string `json:"company_id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Address   string `json:"address"`
}

// HandleSignup handles POST /v1/auth/signup
//
//	@Summary		Register an account
//	@Description	Creates an unverified account in an existing company and emails a verification code.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		signupRequest	true	"Signup payload"
//	@Success		201		{object}	AccountResponse
//	@Failure		400		{object}	httpx.ErrorResponse	"Malformed payload or invalid company"
//	@Failure		409		{object}	httpx.ErrorResponse	"Email or username taken in this company"
//	@Router			/v1/auth/signup [post].
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	account, err := h.AuthService.Signup(r.Context(), service.SignupRequest{
		CompanyID: req.CompanyID,
		Email:     req.Email,
		Username:  req.Username,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Address:   req.Address,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toAccountResponse(account))
}

type verifyOTPRequest struct {
	CompanyID string `json:"company_id"`
	Email     string `json:"email"`
	Code      string `json:"code"`
}

// HandleVerifyOTP handles POST /v1/auth/verify-otp
//
//	@Summary		Verify an email address
//	@Description	Confirms the one-time code sent at signup. Codes are single-use and expire after 10 minutes.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		verifyOTPRequest	true	"Verification payload"
//	@Success		200		{object}	AccountResponse
//	@Failure		401		{object}	httpx.ErrorResponse	"Unknown account, wrong or expired code"
//	@Router			/v1/auth/verify-otp [post].
func (h *AuthHandler) HandleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyOTPRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	account, err := h.AuthService.VerifyOTP(r.Context(), req.CompanyID, req.Email, req.Code)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toAccountResponse(account))
}

type resendOTPRequest struct {
	CompanyID string `json:"company_id"`
	Email     string `json:"email"`
}

// HandleResendOTP handles POST /v1/auth/resend-otp
//
//	@Summary		Resend the verification code
//	@Description	Generates a fresh code for an unverified account, invalidating the previous one.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body	resendOTPRequest	true	"Resend payload"
//	@Success		204
//	@Failure		400	{object}	httpx.ErrorResponse	"Account already verified"
//	@Failure		404	{object}	httpx.ErrorResponse	"No such account"
//	@Router			/v1/auth/resend-otp [post].
func (h *AuthHandler) HandleResendOTP(w http.ResponseWriter, r *http.Request) {
	var req resendOTPRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.AuthService.ResendOTP(r.Context(), req.CompanyID, req.Email); err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type loginRequest struct {
	CompanyID string `json:"company_id"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	TOTPCode  string `json:"totp_code,omitempty"`
}

type loginResponse struct {
	Account AccountResponse `json:"account"`
	Tokens  TokenResponse   `json:"tokens"`
}

// HandleLogin handles POST /v1/auth/login
//
//	@Summary		Log in
//	@Description	Authenticates by company, email and password. Accounts with MFA enabled must also supply a TOTP code.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		loginRequest	true	"Credentials"
//	@Success		200		{object}	loginResponse
//	@Failure		401		{object}	httpx.ErrorResponse	"Bad credentials or missing/invalid MFA code"
//	@Router			/v1/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	account, pair, err := h.AuthService.Login(r.Context(), req.CompanyID, req.Email, req.Password, req.TOTPCode)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, loginResponse{
		Account: toAccountResponse(account),
		Tokens:  toTokenResponse(pair),
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// HandleRefresh handles POST /v1/auth/refresh
//
//	@Summary		Refresh tokens
//	@Description	Exchanges a valid refresh token for a fresh access/refresh pair.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		refreshRequest	true	"Refresh token"
//	@Success		200		{object}	TokenResponse
//	@Failure		401		{object}	httpx.ErrorResponse	"Invalid or expired refresh token"
//	@Router			/v1/auth/refresh [post].
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	pair, err := h.AuthService.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, toTokenResponse(pair))
}

// HandleProfile handles GET /v1/auth/profile
//
//	@Summary	Current account profile
//	@Tags		Auth
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{object}	AccountResponse
//	@Failure	401	{object}	httpx.ErrorResponse	"Invalid or missing access token"
//	@Router		/v1/auth/profile [get].
func (h *AuthHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromContext(w, r)
	if !ok {
		return
	}

	account, err := h.AuthService.Profile(r.Context(), caller.AccountID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toAccountResponse(account))
}
