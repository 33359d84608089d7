package routes

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"TankWatch.api/internal/controller"
	"TankWatch.api/internal/middleware"
	"TankWatch.api/internal/models"
	"TankWatch.api/internal/observability"
	"TankWatch.api/internal/utils"
)

// NewRouter registers all application routes.
func NewRouter(c *controller.TankController, metrics *observability.Metrics) *mux.Router {
	router := mux.NewRouter()
	router.Use(metrics.Middleware)

	// Field device ingest and dashboard reads
	router.HandleFunc("/data", c.HandlePostData).Methods(http.MethodPost)
	router.HandleFunc("/data", c.HandleGetData).Methods(http.MethodGet)
	router.HandleFunc("/prediction/advanced", c.HandleAdvancedPrediction).Methods(http.MethodGet)

	// Dashboard actions (acknowledged only)
	router.HandleFunc("/api/tanks/{tank_id}", c.HandleUpdateTankStatus).Methods(http.MethodPatch)
	router.HandleFunc("/api/notifications", c.HandleNotification).Methods(http.MethodPost)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	}).Methods(http.MethodGet)
	if metrics != nil {
		router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	}

	// mux skips Use middleware for these, so they are wrapped explicitly.
	router.NotFoundHandler = metrics.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		utils.RespondWithError(w, models.NewAPIError(models.ErrorCodeNotFound, "Not Found", nil, http.StatusNotFound))
	}))
	router.MethodNotAllowedHandler = metrics.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		utils.RespondWithError(w, models.NewAPIError(models.ErrorCodeMethodNotAllowed, "Method Not Allowed", nil, http.StatusMethodNotAllowed))
	}))

	return router
}

// NewHandler wraps the router with request ids, CORS and access logging.
// Every origin, method and header is allowed unless origins are narrowed.
func NewHandler(router http.Handler, allowedOrigins []string, accessLog io.Writer) http.Handler {
	opts := cors.Options{
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodHead,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: true,
	}
	// Browsers reject a literal "*" alongside credentials, so a wildcard
	// echoes the request Origin instead.
	if allowsAnyOrigin(allowedOrigins) {
		opts.AllowOriginFunc = func(string) bool { return true }
	} else {
		opts.AllowedOrigins = allowedOrigins
	}

	return handlers.LoggingHandler(accessLog, cors.New(opts).Handler(middleware.RequestID(router)))
}

func allowsAnyOrigin(origins []string) bool {
	if len(origins) == 0 {
		return true
	}
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
