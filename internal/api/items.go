package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/photo"
	"github.com/erazemk/najdeno/internal/service"
)

// ItemsHandler handles found-item endpoints.
type ItemsHandler struct {
	Service *service.Service
}

// ListPublic handles GET /api/founditems.
func (h *ItemsHandler) ListPublic(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.ListPublic(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, items)
}

// GetPublic handles GET /api/founditems/{id}.
func (h *ItemsHandler) GetPublic(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid item id")
		return
	}

	item, err := h.Service.GetPublic(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// ListStaff handles GET /api/staff/founditems.
func (h *ItemsHandler) ListStaff(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.ListStaff(r.Context(), identity(r), r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, items)
}

// GetStaff handles GET /api/staff/founditems/{id}.
func (h *ItemsHandler) GetStaff(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid item id")
		return
	}

	item, err := h.Service.GetStaff(r.Context(), identity(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Create handles POST /api/founditems.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in model.ItemInput
	if err := decodeJSON(r, &in); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	item, err := h.Service.CreateItem(r.Context(), identity(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, item)
}

// Update handles PUT /api/founditems/{id}.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid item id")
		return
	}

	var patch model.ItemPatch
	if err := decodeJSON(r, &patch); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	item, err := h.Service.UpdateItem(r.Context(), identity(r), id, patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Delete handles DELETE /api/founditems/{id}.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid item id")
		return
	}

	if err := h.Service.DeleteItem(r.Context(), identity(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "item deleted"})
}

// UploadPhoto handles PUT /api/founditems/{id}/photo. The photo is sent as
// the "photo" field of a multipart form.
func (h *ItemsHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid item id")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, photo.MaxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(photo.MaxUploadBytes); err != nil {
		badRequest(w, "photo too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("photo")
	if err != nil {
		badRequest(w, "photo file required")
		return
	}
	defer file.Close()

	item, err := h.Service.SetItemPhoto(r.Context(), identity(r), id, file)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// GetPhoto handles GET /api/founditems/{id}/photo.
func (h *ItemsHandler) GetPhoto(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid item id")
		return
	}

	data, mime, err := h.Service.GetItemPhoto(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if _, err := w.Write(data); err != nil {
		slog.Warn("writing photo", "item_id", id, "error", err)
	}
}
