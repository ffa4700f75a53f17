package factory

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-logr/logr"
	"github.com/jonboulle/clockwork"

	"github.com/drogue-iot/octoprint-transcoder/internal/config"
)

const healthzPath = "/healthz"

// CreateServer exposes the event handler on POST / and a liveness probe.
func CreateServer(conf config.Config, handler http.Handler, logger logr.Logger) *http.Server {
	ret := &http.Server{
		Addr:        fmt.Sprintf(":%v", conf.Port),
		ReadTimeout: conf.ReadTimeout,
	}

	ret.Handler = CreateRouter(handler, logger, clockwork.NewRealClock())

	return ret
}

func CreateRouter(handler http.Handler, logger logr.Logger, clock clockwork.Clock) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(loggingMiddleware(logger, clock))
	router.Use(recoverMiddleware(logger))

	router.Get(healthzPath, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	router.Method(http.MethodPost, "/", handler)

	return router
}

func loggingMiddleware(logger logr.Logger, clock clockwork.Clock) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := clock.Now()
			wrapped := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(wrapped, r)

			logger.V(2).Info("Request completed",
				"requestID", middleware.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", wrapped.Status(),
				"duration", clock.Since(start),
			)
		})
	}
}

// recoverMiddleware answers a panic with a 400, like every other processing failure.
func recoverMiddleware(logger logr.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}

				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}

				logger.Error(fmt.Errorf("%v", rvr), "Recovered from panic", "requestID", middleware.GetReqID(r.Context()))

				w.Header().Set("Content-Type", "text/plain; charset=utf-8")
				w.WriteHeader(http.StatusBadRequest)
				_, _ = fmt.Fprintf(w, "Failed to process: %v", rvr)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
