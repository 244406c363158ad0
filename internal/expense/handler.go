package expense

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/tripsplit/pkg/middleware"
	"github.com/fkhayef/tripsplit/pkg/request"
	"github.com/fkhayef/tripsplit/pkg/response"
)

// Handler handles HTTP requests for expense operations
type Handler struct {
	service *Service
}

// NewHandler creates a new expense handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for expense endpoints, mounted at /trips/{tripId}/expenses
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{expenseId}", h.GetByID)
	r.Put("/{expenseId}", h.Update)
	r.Delete("/{expenseId}", h.Delete)

	return r
}

// Create handles POST /trips/{tripId}/expenses
// @Summary      Create a new expense
// @Description  Record an expense with pre-computed splits or participants to split among
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        tripId path int true "Trip ID"
// @Param        request body CreateExpenseRequest true "Expense creation request"
// @Success      201 {object} response.APIResponse{data=ExpenseResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Router       /trips/{tripId}/expenses [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	tripID, err := request.IDParam(r, "tripId")
	if err != nil {
		response.FromError(w, err)
		return
	}

	var req CreateExpenseRequest
	if err := request.Decode(r, &req); err != nil {
		response.FromError(w, err)
		return
	}

	created, err := h.service.Create(r.Context(), tripID, callerID, &req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, created.ToResponse())
}

// List handles GET /trips/{tripId}/expenses
// @Summary      List trip expenses
// @Description  List expenses of a trip, newest first, optionally filtered
// @Tags         expenses
// @Produce      json
// @Security     BearerAuth
// @Param        tripId path int true "Trip ID"
// @Param        category query string false "Category"
// @Param        payer_id query int false "Payer user ID"
// @Param        start_date query string false "Earliest expense date (YYYY-MM-DD)"
// @Param        end_date query string false "Latest expense date (YYYY-MM-DD)"
// @Success      200 {object} response.APIResponse{data=[]ExpenseResponse}
// @Failure      403 {object} response.APIResponse
// @Router       /trips/{tripId}/expenses [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	tripID, err := request.IDParam(r, "tripId")
	if err != nil {
		response.FromError(w, err)
		return
	}

	filter, err := ParseListFilter(r.URL.Query())
	if err != nil {
		response.FromError(w, err)
		return
	}

	expenses, err := h.service.List(r.Context(), tripID, callerID, filter)
	if err != nil {
		response.FromError(w, err)
		return
	}

	resp := make([]*ExpenseResponse, len(expenses))
	for i, e := range expenses {
		resp[i] = e.ToResponse()
	}

	response.JSON(w, http.StatusOK, resp)
}

// GetByID handles GET /trips/{tripId}/expenses/{expenseId}
// @Summary      Get expense by ID
// @Description  Get an expense with its splits
// @Tags         expenses
// @Produce      json
// @Security     BearerAuth
// @Param        tripId path int true "Trip ID"
// @Param        expenseId path int true "Expense ID"
// @Success      200 {object} response.APIResponse{data=ExpenseResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /trips/{tripId}/expenses/{expenseId} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	callerID, tripID, expenseID, ok := h.ids(w, r)
	if !ok {
		return
	}

	e, err := h.service.Get(r.Context(), tripID, expenseID, callerID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, e.ToResponse())
}

// Update handles PUT /trips/{tripId}/expenses/{expenseId}
// @Summary      Update an expense
// @Description  Replace an expense and all its splits (payer or trip admin only)
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        tripId path int true "Trip ID"
// @Param        expenseId path int true "Expense ID"
// @Param        request body UpdateExpenseRequest true "Expense update request"
// @Success      200 {object} response.APIResponse{data=ExpenseResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /trips/{tripId}/expenses/{expenseId} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	callerID, tripID, expenseID, ok := h.ids(w, r)
	if !ok {
		return
	}

	var req UpdateExpenseRequest
	if err := request.Decode(r, &req); err != nil {
		response.FromError(w, err)
		return
	}

	updated, err := h.service.Update(r.Context(), tripID, expenseID, callerID, &req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, updated.ToResponse())
}

// Delete handles DELETE /trips/{tripId}/expenses/{expenseId}
// @Summary      Delete an expense
// @Description  Delete an expense and its splits (payer or trip admin only)
// @Tags         expenses
// @Security     BearerAuth
// @Param        tripId path int true "Trip ID"
// @Param        expenseId path int true "Expense ID"
// @Success      204
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /trips/{tripId}/expenses/{expenseId} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	callerID, tripID, expenseID, ok := h.ids(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), tripID, expenseID, callerID); err != nil {
		response.FromError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ids extracts the caller and the path IDs, writing the error response when one is missing
func (h *Handler) ids(w http.ResponseWriter, r *http.Request) (callerID, tripID, expenseID int64, ok bool) {
	callerID, ok = middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return 0, 0, 0, false
	}

	tripID, err := request.IDParam(r, "tripId")
	if err != nil {
		response.FromError(w, err)
		return 0, 0, 0, false
	}

	expenseID, err = request.IDParam(r, "expenseId")
	if err != nil {
		response.FromError(w, err)
		return 0, 0, 0, false
	}

	return callerID, tripID, expenseID, true
}
