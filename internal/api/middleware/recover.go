package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/phrazzld/taskboard-api/internal/api/shared"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
)

// Recover turns a panicking handler into a 500 error envelope and logs the
// panic with its stack. http.ErrAbortHandler is re-raised so net/http can
// abort the connection.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			logger.FromContextOrDefault(r.Context(), slog.Default()).Error("panic recovered",
				slog.Any("panic", rec),
				slog.String("stack", string(debug.Stack())))
			shared.RespondWithError(w, r, http.StatusInternalServerError, "Something went wrong!")
		}()
		next.ServeHTTP(w, r)
	})
}
