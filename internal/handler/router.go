package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func NewRouter(tasks *TaskHandler, users *UserHandler, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"ok"}`)
	})

	r.Post("/api/users", users.Register)
	r.Post("/api/login", users.Login)

	r.Group(func(r chi.Router) {
		r.Use(users.Authenticate)

		r.Route("/api/tasks", func(r chi.Router) {
			r.Get("/", tasks.List)
			r.Post("/", tasks.Create)
			r.Get("/all", tasks.All)
			r.Get("/search", tasks.Search)
			r.Get("/lookup", tasks.Lookup)
			r.Post("/reset", tasks.Reset)
			r.Put("/{id}", tasks.Update)
			r.Delete("/{id}", tasks.Delete)
		})

		r.Get("/api/tabs/{tab}", tasks.Tab)
		r.Get("/api/due/{date}", tasks.Due)
		r.Get("/api/stats", tasks.Stats)
		r.Get("/api/report", tasks.Report)
	})

	return r
}

// RequestLogger logs one line per request through zap.
func RequestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("took", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
