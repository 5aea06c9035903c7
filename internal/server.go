package internal

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"campus-assets-api/internal/auth"
	"campus-assets-api/internal/config"
	"campus-assets-api/internal/handlers"
	"campus-assets-api/internal/llm"
	"campus-assets-api/internal/logger"
	"campus-assets-api/internal/mailer"
	"campus-assets-api/pkg/ingest"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
)

type Server struct {
	DB         *sql.DB
	Pool       *pgxpool.Pool
	Router     *chi.Mux
	JWTManager *auth.JWTManager
	Metrics    *Metrics
	Logger     *logger.Logger
	LLM        *llm.Client
	Mailer     *mailer.Mailer
	Config     *config.Config
}

func NewServer(dsn string, cfg *config.Config, log *logger.Logger) *Server {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		log.Fatal("failed to open database connection", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		log.Fatal("database ping failed", "error", err)
	}

	// Also create a pgxpool for the ingestion writer
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		log.Fatal("failed to create pgxpool", "error", err)
	}

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTExpiry)
	if err := jwtManager.ValidateConfig(); err != nil {
		log.Fatal("JWT configuration validation failed", "error", err)
	}

	s := &Server{
		DB:         db,
		Pool:       pool,
		Router:     chi.NewRouter(),
		JWTManager: jwtManager,
		Logger:     log,
		Config:     cfg,
	}

	// Optional integrations. The API stays up without them; the features
	// that need them report unavailable.
	if m, err := mailer.New(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPEmail, cfg.SMTPPassword, cfg.MasterEmail, cfg.PublicBaseURL); err != nil {
		log.Warn("mailer disabled", "error", err)
	} else {
		s.Mailer = m
	}
	s.LLM = llm.New(cfg.GeminiAPIKey, cfg.GeminiModel)
	if s.LLM == nil {
		log.Warn("chat assistant disabled: no Gemini API key configured")
	}

	mapping := ingest.DefaultMapping()
	if cfg.MappingPath != "" {
		loaded, err := ingest.LoadMapping(cfg.MappingPath)
		if err != nil {
			log.Fatal("failed to load section mapping", "path", cfg.MappingPath, "error", err)
		}
		mapping = loaded
	}
	if cfg.DefaultDepartment != "" {
		mapping.DefaultDepartment = cfg.DefaultDepartment
	}

	// Mount public routes FIRST (no middleware)
	s.Router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		if _, err := w.Write([]byte("ok")); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
	s.Router.Get("/dbping", func(w http.ResponseWriter, r *http.Request) {
		if err := s.DB.PingContext(r.Context()); err != nil {
			http.Error(w, "db: "+err.Error(), http.StatusServiceUnavailable)
			return
		}
		if _, err := w.Write([]byte("db: ok")); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})

	// Public auth routes (no JWT required)
	s.Router.Post("/api/auth/register", s.registerUser)
	s.Router.Post("/api/auth/login", s.loginUser)
	s.Router.Get("/api/auth/verify-admin", s.verifyAdmin)

	// Mount metrics if enabled
	if cfg.EnableMetrics {
		s.Metrics = NewMetrics()
		s.Router.Use(s.Metrics.Middleware())
		s.Router.Get("/metrics", s.Metrics.Handler().ServeHTTP)
	}

	// Create a protected route group with middleware
	s.Router.Group(func(r chi.Router) {
		r.Use(auth.AuthMiddleware(s.JWTManager, sessionStore{s}))
		s.mountProtectedRoutes(r, mapping)
	})

	return s
}

// mountProtectedRoutes mounts all routes that require authentication
func (s *Server) mountProtectedRoutes(r chi.Router, mapping ingest.Mapping) {
	// Account
	r.Get("/api/auth/profile", s.getProfile)
	r.Post("/api/auth/logout", s.logoutUser)

	// Resources - write operations require the admin role
	r.Get("/api/resources", s.listResources)
	r.Get("/api/resources/stats", s.resourceStats)
	r.Get("/api/resources/search", s.searchResources)
	r.Get("/api/resources/{id}", s.getResource)
	r.Post("/api/resources", auth.MustRole("admin")(http.HandlerFunc(s.createResource)).(http.HandlerFunc))
	r.Put("/api/resources/{id}", auth.MustRole("admin")(http.HandlerFunc(s.updateResource)).(http.HandlerFunc))
	r.Delete("/api/resources/{id}", auth.MustRole("admin")(http.HandlerFunc(s.deleteResource)).(http.HandlerFunc))

	// Filter vocabularies
	r.Get("/api/departments", s.listDepartments)
	r.Get("/api/locations", s.listLocations)
	r.Get("/api/parent-departments", s.listParentDepartments)
	r.Get("/api/product-categories", s.listProductCategories)
	r.Get("/api/filter-options", s.filterOptions)

	// Dashboard
	r.Get("/api/dashboard/stats", s.dashboardStats)
	r.Get("/api/dashboard/charts", s.dashboardCharts)
	r.Get("/api/dashboard/recent-activity", s.recentActivity)

	// Exports and reporting
	r.Get("/api/export-csv", s.exportCSV)
	r.Get("/api/export-excel", s.exportExcel)
	r.Get("/api/reports/generate", s.generateReport)

	// Chat assistant
	r.Post("/api/chat", s.chatWithInventory)
	r.Get("/api/chat/history", s.chatHistory)
	r.Post("/api/natural-crud", auth.MustRole("admin")(http.HandlerFunc(s.naturalCrud)).(http.HandlerFunc))

	// Spreadsheet ingestion - admin only
	uploads := handlers.NewUploadsHandler(newResourceStore(s.Pool), mapping)
	uploads.OnResult = func(res *ingest.Result) {
		s.Metrics.RecordIngest(res)
	}
	r.Post("/api/upload-csv", auth.MustRole("admin")(http.HandlerFunc(uploads.UploadCSV)).(http.HandlerFunc))
	r.Post("/api/upload-excel", auth.MustRole("admin")(http.HandlerFunc(uploads.UploadExcel)).(http.HandlerFunc))
}

// Close properly shuts down the server and cleans up resources
func (s *Server) Close(ctx context.Context) error {
	if s.Pool != nil {
		s.Pool.Close()
	}
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}
