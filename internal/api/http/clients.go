package http

import (
	"net/http"

	"github.com/opslane/clientdesk/internal/api/domain"
	"github.com/opslane/clientdesk/internal/api/service"
	"github.com/opslane/clientdesk/pkg/httpx"
)

// ClientsHandler handles tenant-scoped client records. Every route sits
// behind authn + admin; the caller's company id scopes every query.
type ClientsHandler struct {
	ClientService *service.ClientService
}

type clientRequest struct {
	Name                string `json:"name"`
	PrimaryContactName  string `json:"primary_contact_name"`
	PrimaryContactEmail string `json:"primary_contact_email"`
	PrimaryContactPhone string `json:"primary_contact_phone"`
	CompanyEmail        string `json:"company_email"`
	Notes               string `json:"notes"`
}

func (req clientRequest) toService() service.ClientRequest {
	return service.ClientRequest{
		Name:                req.Name,
		PrimaryContactName:  req.PrimaryContactName,
		PrimaryContactEmail: req.PrimaryContactEmail,
		PrimaryContactPhone: req.PrimaryContactPhone,
		CompanyEmail:        req.CompanyEmail,
		Notes:               req.Notes,
	}
}

// HandleCreate handles POST /v1/clients
//
//	@Summary	Create a client record
//	@Tags		Clients
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		clientRequest	true	"Client payload"
//	@Success	201		{object}	ClientResponse
//	@Failure	400		{object}	httpx.ErrorResponse	"Missing name"
//	@Failure	409		{object}	httpx.ErrorResponse	"Contact email already in use in this company"
//	@Router		/v1/clients [post].
func (h *ClientsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromContext(w, r)
	if !ok {
		return
	}

	var req clientRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	client, err := h.ClientService.Create(r.Context(), caller, req.toService())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toClientResponse(client))
}

// HandleList handles GET /v1/clients
//
//	@Summary	List client records
//	@Tags		Clients
//	@Security	BearerAuth
//	@Produce	json
//	@Param		search					query		string	false	"Substring match on name, contact name, notes"
//	@Param		primary_contact_email	query		string	false	"Exact contact email filter"
//	@Param		primary_contact_phone	query		string	false	"Exact contact phone filter"
//	@Param		skip					query		int		false	"Offset"
//	@Param		take					query		int		false	"Page size (default 20, max 100)"
//	@Success	200						{object}	ClientListResponse
//	@Router		/v1/clients [get].
func (h *ClientsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromContext(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	filter := domain.ClientFilter{
		Search:              q.Get("search"),
		PrimaryContactEmail: q.Get("primary_contact_email"),
		PrimaryContactPhone: q.Get("primary_contact_phone"),
		Skip:                queryInt(q.Get("skip")),
		Take:                queryInt(q.Get("take")),
	}

	clients, total, err := h.ClientService.List(r.Context(), caller, filter)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := ClientListResponse{
		Clients: make([]ClientResponse, 0, len(clients)),
		Total:   total,
		Skip:    filter.Skip,
		Take:    filter.Take,
	}
	for _, c := range clients {
		resp.Clients = append(resp.Clients, toClientResponse(c))
	}

	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleGet handles GET /v1/clients/{id}
//
//	@Summary	Fetch a client record
//	@Tags		Clients
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id	path		string	true	"Client id"
//	@Success	200	{object}	ClientResponse
//	@Failure	404	{object}	httpx.ErrorResponse	"Absent, or owned by another company"
//	@Router		/v1/clients/{id} [get].
func (h *ClientsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromContext(w, r)
	if !ok {
		return
	}

	client, err := h.ClientService.GetByID(r.Context(), caller, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toClientResponse(client))
}

// HandleUpdate handles PATCH /v1/clients/{id}
//
//	@Summary	Update a client record
//	@Tags		Clients
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string			true	"Client id"
//	@Param		request	body		clientRequest	true	"Client payload"
//	@Success	200		{object}	ClientResponse
//	@Failure	404		{object}	httpx.ErrorResponse
//	@Failure	409		{object}	httpx.ErrorResponse	"Contact email already in use in this company"
//	@Router		/v1/clients/{id} [patch].
func (h *ClientsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromContext(w, r)
	if !ok {
		return
	}

	var req clientRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	client, err := h.ClientService.Update(r.Context(), caller, r.PathValue("id"), req.toService())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toClientResponse(client))
}

// HandleDelete handles DELETE /v1/clients/{id}
//
//	@Summary	Delete a client record
//	@Tags		Clients
//	@Security	BearerAuth
//	@Param		id	path	string	true	"Client id"
//	@Success	204
//	@Failure	404	{object}	httpx.ErrorResponse
//	@Router		/v1/clients/{id} [delete].
func (h *ClientsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromContext(w, r)
	if !ok {
		return
	}

	if err := h.ClientService.Delete(r.Context(), caller, r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
