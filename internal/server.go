package internal

import (
	"embed"
	"log/slog"
	"net/http"

	"asset-angel-api/internal/auth"
	"asset-angel-api/internal/config"
	"asset-angel-api/internal/handlers"
	"asset-angel-api/internal/models"
	"asset-angel-api/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

//go:embed openapi
var openapiFS embed.FS

type Server struct {
	Store   *store.Store
	Gate    *auth.Gate
	Routes  *auth.RouteTable
	Router  *chi.Mux
	Metrics *Metrics
	Logger  *slog.Logger

	cfg *config.Config
}

// NewServer wires the router around an already seeded store and a gate
// that authenticates against it. A nil metrics creates a fresh registry.
func NewServer(cfg *config.Config, st *store.Store, gate *auth.Gate, logger *slog.Logger, metrics *Metrics) *Server {
	if metrics == nil {
		metrics = NewMetrics()
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		Store:   st,
		Gate:    gate,
		Routes:  auth.DefaultRoutes(),
		Router:  chi.NewRouter(),
		Metrics: metrics,
		Logger:  logger,
		cfg:     cfg,
	}

	s.Router.Use(middleware.RequestID)
	s.Router.Use(requestLogger(logger))
	s.Router.Use(middleware.Recoverer)
	if cfg.CORSOrigin != "" {
		s.Router.Use(cors.Handler(corsOptions(cfg.CORSOrigin)))
	}

	// Mount metrics if enabled
	if cfg.EnableMetrics {
		if err := s.Metrics.RegisterStore(st); err != nil {
			logger.Warn("store metrics not registered", "error", err)
		}
		s.Router.Use(s.Metrics.Middleware())
		s.Router.Get("/metrics", s.Metrics.Handler().ServeHTTP)
	}

	// Mount public routes
	s.Router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		if _, err := w.Write([]byte("ok")); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})

	// Public auth routes (no JWT required)
	s.Router.Post("/auth/login", s.loginUser)
	s.Router.With(auth.OptionalAuth(s.Gate)).Get("/auth/access", s.checkAccess)
	s.mountDocs(s.Router)

	// Create a protected route group with middleware
	s.Router.Group(func(r chi.Router) {
		// Apply middleware to this group only
		r.Use(auth.AuthMiddleware(s.Gate))

		// Mount protected routes
		s.mountProtectedRoutes(r)
	})

	return s
}

// ServeHTTP makes the server usable as an http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

// mountDocs serves the OpenAPI spec and Swagger UI
func (s *Server) mountDocs(mux *chi.Mux) {
	// Check if Swagger is enabled
	if !s.cfg.EnableSwagger {
		return
	}

	// Serve the raw YAML
	mux.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		data, err := openapiFS.ReadFile("openapi/openapi.yaml")
		if err != nil {
			http.Error(w, "Failed to read OpenAPI spec", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/x-yaml")
		if _, err := w.Write(data); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})

	mux.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`<!doctype html>
<html lang="en">
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <title>Asset Angel API - Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.9.0/swagger-ui.css">
    <style>
        body { margin: 0; background: #f8fafc; }
        .swagger-ui .topbar { background: #0f172a; border-bottom: 3px solid #6366f1; }
        .swagger-ui .topbar .download-url-wrapper { display: none; }
    </style>
</head>
<body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5.9.0/swagger-ui-bundle.js"></script>
    <script>
        window.onload = function() {
            window.ui = SwaggerUIBundle({
                url: '/openapi.yaml',
                dom_id: '#swagger-ui',
                deepLinking: true,
                presets: [SwaggerUIBundle.presets.apis],
                tryItOutEnabled: true
            });
        };
    </script>
</body>
</html>`))
	})
}

// mountProtectedRoutes mounts all routes that require a live session
func (s *Server) mountProtectedRoutes(r chi.Router) {
	// Self-service routes, any role
	r.Post("/auth/logout", s.logoutUser)
	r.Get("/auth/profile", s.getUserProfile)
	r.Put("/auth/profile", s.updateUserProfile)

	// Admin dashboard
	r.Group(func(r chi.Router) {
		r.Use(auth.MustRole(models.RoleAdmin))

		r.Get("/users", s.listUsers)
		r.Post("/users", s.createUser)
		r.Get("/users/{id}", s.getUser)
		r.Put("/users/{id}", s.updateUser)
		r.Delete("/users/{id}", s.deleteUser)

		r.Get("/assets", s.listAssets)
		r.Post("/assets", s.createAsset)
		r.Get("/assets/available", s.listAvailableAssets)
		r.Get("/assets/{id}", s.getAsset)
		r.Put("/assets/{id}", s.updateAsset)
		r.Delete("/assets/{id}", s.deleteAsset)

		r.Get("/assignments", s.listAssignments)
		r.Post("/assignments", s.createAssignment)
		r.Get("/assignments/history", s.listAssignmentHistory)
		r.Get("/assignments/{id}", s.getAssignment)
		r.Put("/assignments/{id}", s.updateAssignment)
		r.Delete("/assignments/{id}", s.deleteAssignment)
		r.Post("/assignments/{id}/return", s.returnAssignment)

		r.Get("/departments", s.listDepartments)

		r.Get("/repair-requests", s.listRepairRequests)
		r.Put("/repair-requests/{id}/status", s.updateRepairRequestStatus)

		r.Get("/dashboard/stats", s.getDashboardStats)

		// Spreadsheet import and export
		exportsHandler := handlers.NewExportsHandler(s.Store)
		r.Get("/exports/assets.xlsx", exportsHandler.ExportExcel)
		importsHandler := handlers.NewImportsHandler(s.Store)
		r.Post("/imports/assets", importsHandler.UploadExcel)
	})

	// Employee dashboard
	r.Group(func(r chi.Router) {
		r.Use(auth.MustRole(models.RoleEmployee))

		r.Get("/me/assets", s.listMyAssets)
		r.Get("/me/repair-requests", s.listMyRepairRequests)
		r.Post("/me/repair-requests", s.createMyRepairRequest)
		r.Get("/me/dashboard", s.getMyDashboard)
	})
}
