package incidents

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/bissquit/incident-tracker/internal/domain"
	"github.com/bissquit/incident-tracker/internal/pkg/ctxlog"
	"github.com/bissquit/incident-tracker/internal/pkg/httputil"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// Handler handles RPC-style HTTP requests for incidents.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler creates a new incidents handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: NewValidator(),
	}
}

// RegisterRoutes registers the incident procedures under /incident.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/incident", func(r chi.Router) {
		r.Post("/getAllWithPaginationAndFilter", h.List)
		r.Post("/createIncident", h.Create)
		r.Post("/updateIncident", h.Update)
		r.Post("/deleteIncident", h.Delete)
		r.Post("/getIncident", h.Get)
		r.Get("/export", h.Export)
		r.Get("/options", h.Options)
	})
}

// IncidentFields are the client-writable incident attributes.
type IncidentFields struct {
	Title     string     `json:"title" validate:"required,max=500"`
	Service   string     `json:"service" validate:"required,max=255"`
	Severity  string     `json:"severity" validate:"required,oneof=SEV1 SEV2 SEV3 SEV4"`
	Status    string     `json:"status" validate:"required,oneof=OPEN MITIGATED RESOLVED"`
	Owner     *string    `json:"owner"`
	Summary   *string    `json:"summary"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// ToDomain converts the fields to a domain model.
func (f *IncidentFields) ToDomain() *domain.Incident {
	incident := &domain.Incident{
		Title:    f.Title,
		Service:  f.Service,
		Severity: domain.Severity(f.Severity),
		Status:   domain.Status(f.Status),
		Owner:    f.Owner,
		Summary:  f.Summary,
	}
	if f.CreatedAt != nil {
		incident.CreatedAt = *f.CreatedAt
	}
	return incident
}

// CreateIncidentRequest represents the body of createIncident.
type CreateIncidentRequest struct {
	IncidentFields
}

// UpdateIncidentRequest represents the body of updateIncident.
type UpdateIncidentRequest struct {
	ID string `json:"id" validate:"required"`
	IncidentFields
}

// IDRequest represents the body of getIncident and deleteIncident.
type IDRequest struct {
	ID string `json:"id" validate:"required"`
}

// OptionsResponse lists the enumerations a client needs to build filter and edit forms.
type OptionsResponse struct {
	Severities []domain.Option `json:"severities"`
	Statuses   []domain.Option `json:"statuses"`
	SortFields []SortField     `json:"sortFields"`
	PageSizes  []int           `json:"pageSizes"`
}

var errorMappings = []httputil.ErrorMapping{
	{Error: ErrIncidentNotFound, Status: http.StatusNotFound},
}

// List handles POST /incident/getAllWithPaginationAndFilter.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var req ListRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.service.List(r.Context(), req)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.JSON(w, http.StatusOK, result)
}

// Create handles POST /incident/createIncident.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateIncidentRequest
	if !h.decode(w, r, &req) {
		return
	}

	created, err := h.service.Create(r.Context(), req.ToDomain())
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusCreated, created)
}

// Update handles POST /incident/updateIncident.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateIncidentRequest
	if !h.decode(w, r, &req) {
		return
	}

	incident := req.ToDomain()
	incident.ID = req.ID

	updated, err := h.service.Update(r.Context(), incident)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusOK, updated)
}

// Delete handles POST /incident/deleteIncident.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	var req IDRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.service.Delete(r.Context(), req.ID)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusOK, result)
}

// Get handles POST /incident/getIncident. A missing incident yields {"data": null}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	var req IDRequest
	if !h.decode(w, r, &req) {
		return
	}

	incident, err := h.service.Get(r.Context(), req.ID)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusOK, incident)
}

// Export handles GET /incident/export with list query parameters.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	req, err := ParseListQuery(r.URL.Query())
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	data, err := h.service.Export(r.Context(), req)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	var buf bytes.Buffer
	if err := WriteWorkbook(&buf, data); err != nil {
		httputil.HandleError(r.Context(), w, err, nil)
		return
	}
	recordExport(len(data))

	ctxlog.FromContext(r.Context()).Info("incidents exported", "rows", len(data))

	filename := "incidents-" + time.Now().UTC().Format("20060102-150405") + ".xlsx"
	w.Header().Set("Content-Type", ExportContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		ctxlog.FromContext(r.Context()).Error("failed to write export", "error", err)
	}
}

// Options handles GET /incident/options.
func (h *Handler) Options(w http.ResponseWriter, _ *http.Request) {
	httputil.Success(w, http.StatusOK, OptionsResponse{
		Severities: domain.SeverityOptions(),
		Statuses:   domain.StatusOptions(),
		SortFields: SortFields,
		PageSizes:  PageSizes,
	})
}

// decode reads a JSON body into v and validates it. An empty body decodes as
// an empty object. It writes the error response and returns false on failure.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return false
	}

	if err := h.validator.Struct(v); err != nil {
		httputil.ValidationError(w, err)
		return false
	}
	return true
}
