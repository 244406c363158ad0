package invite

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/tripsplit/pkg/middleware"
	"github.com/fkhayef/tripsplit/pkg/request"
	"github.com/fkhayef/tripsplit/pkg/response"
)

// Handler handles HTTP requests for invites
type Handler struct {
	service *Service
}

// NewHandler creates a new invite handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes adds the invite endpoints to a router mounted at /trips
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/join", h.Join)
	r.Get("/{tripId}/invite", h.Link)
	r.Post("/{tripId}/members", h.InviteByEmail)
}

// Link handles GET /trips/{tripId}/invite
// @Summary      Generate an invite link
// @Description  Create a signed join link for the trip (admin only)
// @Tags         invites
// @Produce      json
// @Security     BearerAuth
// @Param        tripId path int true "Trip ID"
// @Success      200 {object} response.APIResponse{data=Invite}
// @Failure      403 {object} response.APIResponse
// @Router       /trips/{tripId}/invite [get]
func (h *Handler) Link(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	tripID, err := request.IDParam(r, "tripId")
	if err != nil {
		response.FromError(w, err)
		return
	}

	inv, err := h.service.Issue(r.Context(), tripID, userID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, inv)
}

// Join handles POST /trips/join
// @Summary      Join a trip
// @Description  Redeem an invite token and become a member
// @Tags         invites
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body JoinRequest true "Invite token"
// @Success      200 {object} response.APIResponse{data=JoinResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /trips/join [post]
func (h *Handler) Join(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req JoinRequest
	if err := request.Decode(r, &req); err != nil {
		response.FromError(w, err)
		return
	}

	tripID, err := h.service.Redeem(r.Context(), req.Token, userID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, &JoinResponse{TripID: tripID, Message: "Successfully joined the trip"})
}

// InviteByEmail handles POST /trips/{tripId}/members
// @Summary      Invite by email
// @Description  Add a registered user to the trip, or email a join link to a new address (admin only)
// @Tags         invites
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        tripId path int true "Trip ID"
// @Param        request body InviteByEmailRequest true "Invitee email"
// @Success      200 {object} response.APIResponse{data=EmailInviteResult}
// @Success      201 {object} response.APIResponse{data=EmailInviteResult}
// @Failure      403 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /trips/{tripId}/members [post]
func (h *Handler) InviteByEmail(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	tripID, err := request.IDParam(r, "tripId")
	if err != nil {
		response.FromError(w, err)
		return
	}

	var req InviteByEmailRequest
	if err := request.Decode(r, &req); err != nil {
		response.FromError(w, err)
		return
	}

	result, err := h.service.InviteByEmail(r.Context(), tripID, userID, req.Email)
	if err != nil {
		response.FromError(w, err)
		return
	}

	status := http.StatusOK
	if result.Added {
		status = http.StatusCreated
	}
	response.JSON(w, status, result)
}
