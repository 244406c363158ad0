package balance

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/tripsplit/pkg/middleware"
	"github.com/fkhayef/tripsplit/pkg/request"
	"github.com/fkhayef/tripsplit/pkg/response"
)

// Handler handles HTTP requests for trip balances
type Handler struct {
	service *Service
}

// NewHandler creates a new balance handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for balance endpoints, mounted at /trips/{tripId}/balances
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Get("/settle-up", h.SettleUp)
	r.Get("/{userId}", h.GetByUser)

	return r
}

// List handles GET /trips/{tripId}/balances
// @Summary      List trip balances
// @Description  Total paid, total owed and net balance of every trip member
// @Tags         balances
// @Produce      json
// @Security     BearerAuth
// @Param        tripId path int true "Trip ID"
// @Success      200 {object} response.APIResponse{data=[]SummaryResponse}
// @Failure      403 {object} response.APIResponse
// @Router       /trips/{tripId}/balances [get]
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

	summaries, err := h.service.TripSummaries(r.Context(), tripID, callerID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	resp := make([]*SummaryResponse, len(summaries))
	for i, s := range summaries {
		resp[i] = s.ToResponse()
	}

	response.JSON(w, http.StatusOK, resp)
}

// GetByUser handles GET /trips/{tripId}/balances/{userId}
// @Summary      Get a user's balance
// @Description  Total paid, total owed and net balance of one user within the trip
// @Tags         balances
// @Produce      json
// @Security     BearerAuth
// @Param        tripId path int true "Trip ID"
// @Param        userId path int true "User ID"
// @Success      200 {object} response.APIResponse{data=SummaryResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /trips/{tripId}/balances/{userId} [get]
func (h *Handler) GetByUser(w http.ResponseWriter, r *http.Request) {
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

	userID, err := request.IDParam(r, "userId")
	if err != nil {
		response.FromError(w, err)
		return
	}

	summary, err := h.service.Summary(r.Context(), tripID, callerID, userID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, summary.ToResponse())
}

// SettleUp handles GET /trips/{tripId}/balances/settle-up
// @Summary      Suggest settle-up payments
// @Description  Payments between members that bring every net balance to zero
// @Tags         balances
// @Produce      json
// @Security     BearerAuth
// @Param        tripId path int true "Trip ID"
// @Success      200 {object} response.APIResponse{data=[]TransferResponse}
// @Failure      403 {object} response.APIResponse
// @Router       /trips/{tripId}/balances/settle-up [get]
func (h *Handler) SettleUp(w http.ResponseWriter, r *http.Request) {
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

	transfers, err := h.service.Transfers(r.Context(), tripID, callerID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	resp := make([]*TransferResponse, len(transfers))
	for i, t := range transfers {
		resp[i] = t.ToResponse()
	}

	response.JSON(w, http.StatusOK, resp)
}
