package http

import (
	"net/http"

	"github.com/opslane/clientdesk/internal/api/service"
	"github.com/opslane/clientdesk/pkg/httpx"
)

// UsersHandler handles the invitation flow: minting invites and redeeming
// them into accounts.
type UsersHandler struct {
	InviteService *service.InviteService
}

type inviteRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

type inviteResponse struct {
	Token string `json:"token"`
}

// HandleInvite handles POST /v1/users/invite
//
//	@Summary		Invite a user
//	@Description	Creates a 24-hour invitation for an email address in the caller's company and mails the link. Admin only.
//	@Tags			Users
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		inviteRequest	true	"Invite payload"
//	@Success		201		{object}	inviteResponse	"Raw invite token (shown once)"
//	@Failure		400		{object}	httpx.ErrorResponse	"Invalid role or payload"
//	@Failure		401		{object}	httpx.ErrorResponse	"Caller is not an admin"
//	@Failure		409		{object}	httpx.ErrorResponse	"Email taken or a live invitation exists"
//	@Router			/v1/users/invite [post].
func (h *UsersHandler) HandleInvite(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromContext(w, r)
	if !ok {
		return
	}

	var req inviteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	token, err := h.InviteService.Invite(r.Context(), caller, req.Email, req.Role)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusCreated, inviteResponse{Token: token})
}

type registerRequest struct {
	Token     string `json:"token"`
	Email     string `json:"email"`
	CompanyID string `json:"company_id"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Address   string `json:"address"`
}

// HandleRegister handles POST /v1/users/register
//
//	@Summary		Register via invitation
//	@Description	Redeems an invite token into an account. The invitation decides the role; the account starts verified.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			request	body		registerRequest	true	"Registration payload"
//	@Success		201		{object}	AccountResponse
//	@Failure		401		{object}	httpx.ErrorResponse	"Unknown, expired or consumed invitation"
//	@Failure		409		{object}	httpx.ErrorResponse	"Email/company mismatch or username taken"
//	@Router			/v1/users/register [post].
func (h *UsersHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	account, err := h.InviteService.Register(r.Context(), service.RegisterRequest{
		Token:     req.Token,
		Email:     req.Email,
		CompanyID: req.CompanyID,
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
