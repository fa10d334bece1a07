package edge

import (
	"encoding/json"
	"net/http"

	"github.com/archivecast/podcaster/internal/apierr"
)

type handlers struct {
	deps *Deps
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorEnvelope is the uniform {error, message?} shape every handler
// error maps to.
type errorEnvelope struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// writeError maps any error to an HTTP status and the stable envelope.
// Detail is suppressed in production mode, per spec.md §7.
func (h *handlers) writeError(w http.ResponseWriter, err error) {
	classified, ok := apierr.As(err)
	if !ok {
		classified = apierr.Store("internal error", err)
	}

	status := apierr.StatusFor(classified.Kind)
	env := errorEnvelope{Error: string(classified.Kind)}
	if h.deps.NodeEnv != "production" {
		env.Message = classified.Error()
	}
	writeJSON(w, status, env)
}

// decodeJSONBody decodes the request body into v. Unknown fields are
// ignored rather than rejected, so older and newer clients stay
// forward-compatible on optional fields.
func decodeJSONBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apierr.Input("invalid request body", err)
	}
	return nil
}
