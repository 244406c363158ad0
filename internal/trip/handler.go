package trip

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/tripsplit/pkg/middleware"
	"github.com/fkhayef/tripsplit/pkg/request"
	"github.com/fkhayef/tripsplit/pkg/response"
)

// Handler handles HTTP requests for trip operations
type Handler struct {
	service *Service
}

// NewHandler creates a new trip handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes adds the trip endpoints to a router mounted at /trips.
// Other trip-scoped features register their own routes on the same router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{tripId}", h.GetByID)
	r.Put("/{tripId}", h.Update)
	r.Delete("/{tripId}", h.Delete)

	// Member management
	r.Get("/{tripId}/members", h.GetMembers)
	r.Delete("/{tripId}/members/{userId}", h.RemoveMember)
}

// Routes returns a standalone router for trip endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

// Create handles POST /trips
// @Summary      Create a new trip
// @Description  Create a new trip and add creator as admin
// @Tags         trips
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateTripRequest true "Trip creation request"
// @Success      201 {object} response.APIResponse{data=TripResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /trips [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	creatorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req CreateTripRequest
	if err := request.Decode(r, &req); err != nil {
		response.FromError(w, err)
		return
	}

	t, err := h.service.Create(r.Context(), creatorID, &req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, t.ToResponse())
}

// GetByID handles GET /trips/{tripId}
// @Summary      Get trip by ID
// @Description  Get a trip with all its members
// @Tags         trips
// @Produce      json
// @Security     BearerAuth
// @Param        tripId path int true "Trip ID"
// @Success      200 {object} response.APIResponse{data=TripResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /trips/{tripId} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
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

	t, members, err := h.service.Get(r.Context(), tripID, callerID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	tripResp := t.ToResponse()
	tripResp.Members = make([]*MemberResponse, len(members))
	for i, m := range members {
		tripResp.Members[i] = m.ToResponse()
	}

	response.JSON(w, http.StatusOK, tripResp)
}

// List handles GET /trips
// @Summary      List my trips
// @Description  Get a paginated list of trips for the current user
// @Tags         trips
// @Produce      json
// @Security     BearerAuth
// @Param        page query int false "Page number" default(1)
// @Param        per_page query int false "Items per page" default(20)
// @Success      200 {object} response.APIResponse{data=[]TripResponse}
// @Router       /trips [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	trips, total, err := h.service.List(r.Context(), userID, page, perPage)
	if err != nil {
		response.FromError(w, err)
		return
	}

	tripResponses := make([]*TripResponse, len(trips))
	for i, t := range trips {
		tripResponses[i] = t.ToResponse()
	}

	totalPages := (total + perPage - 1) / perPage
	meta := &response.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}

	response.JSONWithMeta(w, http.StatusOK, tripResponses, meta)
}

// Update handles PUT /trips/{tripId}
// @Summary      Update a trip
// @Description  Update trip details (admin only)
// @Tags         trips
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        tripId path int true "Trip ID"
// @Param        request body UpdateTripRequest true "Trip update request"
// @Success      200 {object} response.APIResponse{data=TripResponse}
// @Failure      403 {object} response.APIResponse
// @Router       /trips/{tripId} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
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

	var req UpdateTripRequest
	if err := request.Decode(r, &req); err != nil {
		response.FromError(w, err)
		return
	}

	t, err := h.service.Update(r.Context(), tripID, callerID, &req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, t.ToResponse())
}

// Delete handles DELETE /trips/{tripId}
// @Summary      Delete a trip
// @Description  Delete a trip with all its expenses (admin only)
// @Tags         trips
// @Produce      json
// @Security     BearerAuth
// @Param        tripId path int true "Trip ID"
// @Success      200 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Router       /trips/{tripId} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
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

	if err := h.service.Delete(r.Context(), tripID, callerID); err != nil {
		response.FromError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Trip deleted successfully"})
}

// GetMembers handles GET /trips/{tripId}/members
// @Summary      List trip members
// @Tags         trips
// @Produce      json
// @Security     BearerAuth
// @Param        tripId path int true "Trip ID"
// @Success      200 {object} response.APIResponse{data=[]MemberResponse}
// @Failure      403 {object} response.APIResponse
// @Router       /trips/{tripId}/members [get]
func (h *Handler) GetMembers(w http.ResponseWriter, r *http.Request) {
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

	members, err := h.service.Members(r.Context(), tripID, callerID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	memberResponses := make([]*MemberResponse, len(members))
	for i, m := range members {
		memberResponses[i] = m.ToResponse()
	}

	response.JSON(w, http.StatusOK, memberResponses)
}

// RemoveMember handles DELETE /trips/{tripId}/members/{userId}
// @Summary      Remove a member
// @Description  Remove a member from the trip (admin only)
// @Tags         trips
// @Produce      json
// @Security     BearerAuth
// @Param        tripId path int true "Trip ID"
// @Param        userId path int true "User ID"
// @Success      200 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /trips/{tripId}/members/{userId} [delete]
func (h *Handler) RemoveMember(w http.ResponseWriter, r *http.Request) {
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

	if err := h.service.RemoveMember(r.Context(), tripID, callerID, userID); err != nil {
		response.FromError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Member removed successfully"})
}
