package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/teamscore/internal/api/apierr"
	"github.com/mcoot/teamscore/internal/metrics"
	"github.com/mcoot/teamscore/internal/middleware"
)

// Recovery answers handler panics with the JSON internal error body and
// counts them
func Recovery(logger *slog.Logger, recorder *metrics.Recorder) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, func(w http.ResponseWriter, _ *http.Request, _ any) {
		recorder.PanicRecovered()
		apierr.WriteError(w, apierr.NewInternalError())
	})
}
