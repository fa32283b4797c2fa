package httpserver

import (
	"net/http"
	"strings"

	"github.com/goccy/go-json"
)

const (
	msgNotAuthorized   = "User not authorized."
	errCouldNotVerify  = "Could not validate user."
	msgUserNotCreated  = "User not created."
	errInternalFailure = "internal error"
)

// envelope is the body shape shared by every non-token response.
type envelope struct {
	Message string `json:"message"`
	Data    any    `json:"data"`
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, detail string) {
	writeJSON(w, status, envelope{Message: message, Data: []any{}, Error: detail})
}

// writeUnauthorized is the single rejection used for every authentication and
// authorization failure.
func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeError(w, http.StatusUnauthorized, msgNotAuthorized, errCouldNotVerify)
}

func writeMethodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, http.StatusMethodNotAllowed, "method not allowed", "method not allowed")
}

func decodeJSON(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}
