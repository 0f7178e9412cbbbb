package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/opslane/clientdesk/internal/api/domain"
	"github.com/opslane/clientdesk/internal/api/service"
	"github.com/opslane/clientdesk/pkg/httpx"
)

// CompaniesHandler handles tenant registration and management.
type CompaniesHandler struct {
	CompanyService *service.CompanyService
}

type companyRequest struct {
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	Website     string     `json:"website"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone"`
	Address     string     `json:"address"`
	City        string     `json:"city"`
	State       string     `json:"state"`
	Country     string     `json:"country"`
	Logo        string     `json:"logo"`
	Description string     `json:"description"`
	Industry    string     `json:"industry"`
	Size        string     `json:"size"`
	FoundedAt   *time.Time `json:"founded_at"`
}

func (req companyRequest) toService() service.CompanyRequest {
	return service.CompanyRequest{
		Name:        req.Name,
		Slug:        req.Slug,
		Website:     req.Website,
		Email:       req.Email,
		Phone:       req.Phone,
		Address:     req.Address,
		City:        req.City,
		State:       req.State,
		Country:     req.Country,
		Logo:        req.Logo,
		Description: req.Description,
		Industry:    req.Industry,
		Size:        req.Size,
		FoundedAt:   req.FoundedAt,
	}
}

type checkSlugResponse struct {
	Slug      string `json:"slug"`
	Available bool   `json:"available"`
}

// HandleCheckSlug handles GET /v1/companies/check-slug?slug=acme
//
//	@Summary	Probe slug availability
//	@Tags		Companies
//	@Produce	json
//	@Param		slug	query		string	true	"Slug to test"
//	@Success	200		{object}	checkSlugResponse
//	@Failure	400		{object}	httpx.ErrorResponse	"Missing slug"
//	@Router		/v1/companies/check-slug [get].
func (h *CompaniesHandler) HandleCheckSlug(w http.ResponseWriter, r *http.Request) {
	slug := r.URL.Query().Get("slug")

	available, err := h.CompanyService.CheckSlug(r.Context(), slug)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, checkSlugResponse{Slug: slug, Available: available})
}

// HandleCreate handles POST /v1/companies
//
//	@Summary		Register a company
//	@Description	Creates a new tenant. This is the public entry point: register the company, then sign accounts up into it.
//	@Tags			Companies
//	@Accept			json
//	@Produce		json
//	@Param			request	body		companyRequest	true	"Company payload"
//	@Success		201		{object}	CompanyResponse
//	@Failure		400		{object}	httpx.ErrorResponse	"Missing name or slug"
//	@Failure		409		{object}	httpx.ErrorResponse	"Name or slug already taken"
//	@Router			/v1/companies [post].
func (h *CompaniesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req companyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	// Self-service registration carries no caller identity.
	createdBy := ""
	if claims, ok := httpx.ClaimsFromContext(r.Context()); ok {
		createdBy = claims.Subject
	}

	company, err := h.CompanyService.Create(r.Context(), req.toService(), createdBy)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toCompanyResponse(company))
}

// HandleList handles GET /v1/companies
//
//	@Summary	List companies
//	@Tags		Companies
//	@Security	BearerAuth
//	@Produce	json
//	@Param		search		query		string	false	"Substring match on name, description, slug"
//	@Param		industry	query		string	false	"Exact industry filter"
//	@Param		skip		query		int		false	"Offset"
//	@Param		take		query		int		false	"Page size (default 20, max 100)"
//	@Success	200			{object}	CompanyListResponse
//	@Router		/v1/companies [get].
func (h *CompaniesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.CompanyFilter{
		Search:   q.Get("search"),
		Industry: q.Get("industry"),
		Skip:     queryInt(q.Get("skip")),
		Take:     queryInt(q.Get("take")),
	}

	companies, total, err := h.CompanyService.List(r.Context(), filter)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := CompanyListResponse{
		Companies: make([]CompanyResponse, 0, len(companies)),
		Total:     total,
		Skip:      filter.Skip,
		Take:      filter.Take,
	}
	for _, c := range companies {
		resp.Companies = append(resp.Companies, toCompanyResponse(c))
	}

	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleGet handles GET /v1/companies/{id}
//
//	@Summary	Fetch a company
//	@Tags		Companies
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id	path		string	true	"Company id"
//	@Success	200	{object}	CompanyResponse
//	@Failure	404	{object}	httpx.ErrorResponse
//	@Router		/v1/companies/{id} [get].
func (h *CompaniesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	company, err := h.CompanyService.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toCompanyResponse(company))
}

// HandleUpdate handles PATCH /v1/companies/{id}
//
//	@Summary	Update a company
//	@Tags		Companies
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string			true	"Company id"
//	@Param		request	body		companyRequest	true	"Company payload"
//	@Success	200		{object}	CompanyResponse
//	@Failure	404		{object}	httpx.ErrorResponse
//	@Failure	409		{object}	httpx.ErrorResponse	"Name or slug already taken"
//	@Router		/v1/companies/{id} [patch].
func (h *CompaniesHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req companyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	company, err := h.CompanyService.Update(r.Context(), r.PathValue("id"), req.toService())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toCompanyResponse(company))
}

type companyStatusRequest struct {
	IsActive bool `json:"is_active"`
}

// HandleUpdateStatus handles PATCH /v1/companies/{id}/status
//
//	@Summary		Activate or deactivate a company
//	@Description	Inactive companies reject new signups.
//	@Tags			Companies
//	@Security		BearerAuth
//	@Accept			json
//	@Param			id		path	string					true	"Company id"
//	@Param			request	body	companyStatusRequest	true	"Status payload"
//	@Success		204
//	@Failure		404	{object}	httpx.ErrorResponse
//	@Router			/v1/companies/{id}/status [patch].
func (h *CompaniesHandler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req companyStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.CompanyService.UpdateStatus(r.Context(), r.PathValue("id"), req.IsActive); err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleDelete handles DELETE /v1/companies/{id}
//
//	@Summary	Delete a company
//	@Tags		Companies
//	@Security	BearerAuth
//	@Param		id	path	string	true	"Company id"
//	@Success	204
//	@Failure	404	{object}	httpx.ErrorResponse
//	@Router		/v1/companies/{id} [delete].
func (h *CompaniesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.CompanyService.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// queryInt parses a pagination parameter, treating junk as zero so the
// service defaults apply.
func queryInt(s string) int {
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
