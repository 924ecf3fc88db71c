package webhook

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

// Problem is an RFC 7807 problem detail.
type Problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
	TraceID  string `json:"trace_id,omitempty"`
}

func (p *Problem) Error() string {
	return fmt.Sprintf("%s: %s", p.Title, p.Detail)
}

// writeProblem writes an application/problem+json response.
func writeProblem(w http.ResponseWriter, r *http.Request, status int, detail string) {
	problem := &Problem{
		Type:     fmt.Sprintf("about:blank#%d", status),
		Title:    http.StatusText(status),
		Status:   status,
		Detail:   detail,
		Instance: r.URL.Path,
		TraceID:  middleware.GetReqID(r.Context()),
	}

	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(problem)
}

// writeInternal logs err and answers 500 without exposing it.
func writeInternal(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	logger.ErrorContext(r.Context(), "internal server error", "error", err,
		"request_id", middleware.GetReqID(r.Context()))
	writeProblem(w, r, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.")
}

// reply is the body of every non-error response.
type reply struct {
	Detail   string `json:"detail"`
	OrderID  int64  `json:"order_id,omitempty"`
	Accepted int    `json:"accepted,omitempty"`
	Skipped  int    `json:"skipped,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body reply) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
