package response

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// JSON encodes data before touching the response, so an encoding failure
// still produces a clean 500 instead of a truncated body
func JSON(w http.ResponseWriter, status int, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		status = http.StatusInternalServerError
		body = []byte(`{"error":"INTERNAL_ERROR","message":"Internal server error"}`)
	}
	body = append(body, '\n')

	h := w.Header()
	h.Set("Content-Type", "application/json")
	h.Set("Content-Length", strconv.Itoa(len(body)))
	// Scores change live; intermediaries must not serve stale copies
	h.Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
