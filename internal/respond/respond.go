// Package respond writes JSON response bodies.
package respond

import (
	"encoding/json"
	"net/http"

	"github.com/PaulBabatuyi/sup-api/internal/apperr"
	"github.com/PaulBabatuyi/sup-api/internal/logger"
)

const contentType = "application/json; charset=utf-8"

// Empty is the body of responses that carry no representation.
var Empty = struct{}{}

type errorBody struct {
	Message string `json:"message"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes err as {"message": ...}. Internal failures are logged with
// their cause and answered with a generic message.
func Error(w http.ResponseWriter, r *http.Request, log *logger.Logger, err error) {
	appErr := apperr.From(err)
	if appErr.Status == http.StatusInternalServerError {
		log.LogError("request failed", err,
			"method", r.Method,
			"path", r.URL.Path)
	}
	JSON(w, appErr.Status, errorBody{Message: appErr.Message})
}
