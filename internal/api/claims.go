package api

import (
	"net/http"

	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/service"
)

// ClaimsHandler handles claim lifecycle endpoints.
type ClaimsHandler struct {
	Service *service.Service
}

type reviewRequest struct {
	Status      string `json:"status"`
	ReviewNotes string `json:"review_notes"`
}

type pickupRequest struct {
	PickupVerificationType string `json:"pickup_verification_type"`
	PickupNotes            string `json:"pickup_notes"`
}

// Create handles POST /api/claims.
func (h *ClaimsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in model.ClaimInput
	if err := decodeJSON(r, &in); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	c, err := h.Service.CreateClaim(r.Context(), identity(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, c)
}

// List handles GET /api/claims.
func (h *ClaimsHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, err := h.Service.ListClaims(r.Context(), identity(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, claims)
}

// Get handles GET /api/claims/{id}.
func (h *ClaimsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid claim id")
		return
	}

	c, err := h.Service.GetClaim(r.Context(), identity(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, c)
}

// Update handles PUT /api/claims/{id}.
func (h *ClaimsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid claim id")
		return
	}

	var patch model.ClaimPatch
	if err := decodeJSON(r, &patch); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	c, err := h.Service.UpdateClaim(r.Context(), identity(r), id, patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, c)
}

// Review handles PUT /api/claims/{id}/review.
func (h *ClaimsHandler) Review(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid claim id")
		return
	}

	var req reviewRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	c, err := h.Service.ReviewClaim(r.Context(), identity(r), id, req.Status, req.ReviewNotes)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, c)
}

// Pickup handles PUT /api/claims/{id}/pickup.
func (h *ClaimsHandler) Pickup(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid claim id")
		return
	}

	var req pickupRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	c, err := h.Service.MarkPickup(r.Context(), identity(r), id, req.PickupVerificationType, req.PickupNotes)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, c)
}

// Delete handles DELETE /api/claims/{id}.
func (h *ClaimsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid claim id")
		return
	}

	if err := h.Service.DeleteClaim(r.Context(), identity(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "claim deleted"})
}
