package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/PMacajol/Agro-MAGU/internal/metrics"
	"github.com/PMacajol/Agro-MAGU/internal/websocket"
)

// SetupRouter mounts every endpoint on one chi router wrapped in CORS.
func SetupRouter(apiHandler *APIHandler, hub *websocket.Hub, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(instrument)

	r.Get("/health", apiHandler.HandleHealth)
	r.Handle("/metrics", promhttp.Handler())
	if hub != nil {
		r.Get("/ws", websocket.ServeWS(hub, originAllowed(allowedOrigins)))
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", apiHandler.HandleLogin)
		r.Get("/sensor/latest", apiHandler.HandleSensorLatest)
		r.Post("/recommendations", apiHandler.HandleRecommendation)

		r.Route("/monitor", func(r chi.Router) {
			r.Get("/status", apiHandler.HandleStatus)
			r.Get("/alerts", apiHandler.HandleAlerts)
			r.Get("/archive", apiHandler.HandleArchive)

			r.Group(func(r chi.Router) {
				r.Use(apiHandler.auth.Middleware)
				r.Post("/start", apiHandler.HandleStart)
				r.Post("/stop", apiHandler.HandleStop)
				r.Post("/run", apiHandler.HandleRun)
				r.Post("/test", apiHandler.HandleTest)
			})
		})
	})

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-API-Key"},
		AllowCredentials: true,
	})
	return c.Handler(r)
}

func originAllowed(allowed []string) func(string) bool {
	return func(origin string) bool {
		for _, o := range allowed {
			if o == "*" || o == origin {
				return true
			}
		}
		return false
	}
}

// instrument records request counts and latency per route pattern.
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		endpoint := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				endpoint = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.RequestsTotal.WithLabelValues(r.Method, endpoint, strconv.Itoa(status)).Inc()
		metrics.RequestDuration.WithLabelValues(r.Method, endpoint).Observe(time.Since(start).Seconds())
	})
}
