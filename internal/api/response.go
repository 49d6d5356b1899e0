package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/erazemk/najdeno/internal/model"
)

type errorResponse struct {
	Error string          `json:"error"`
	Code  model.ErrorKind `json:"code"`
}

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, kind model.ErrorKind, message string) {
	jsonResponse(w, status, errorResponse{Error: message, Code: kind})
}

// statusFor maps an error kind to its HTTP status.
func statusFor(kind model.ErrorKind) int {
	switch kind {
	case model.KindUnauthenticated:
		return http.StatusUnauthorized
	case model.KindForbidden:
		return http.StatusForbidden
	case model.KindNotFound:
		return http.StatusNotFound
	case model.KindInvalidState, model.KindConflict:
		return http.StatusConflict
	case model.KindValidation:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// writeError writes err as a JSON error. Unclassified errors are logged and
// reported with a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *model.AppError
	if !errors.As(err, &appErr) || appErr.Kind == model.KindStorage {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path,
			"request_id", RequestID(r.Context()), "error", err)
		jsonError(w, http.StatusInternalServerError, model.KindStorage, "internal error")
		return
	}
	jsonError(w, statusFor(appErr.Kind), appErr.Kind, appErr.Message)
}

func badRequest(w http.ResponseWriter, message string) {
	jsonError(w, http.StatusBadRequest, model.KindValidation, message)
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// pathID parses the {id} path segment.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}
