package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nvellek/agora/internal/config"
	"github.com/nvellek/agora/internal/handlers"
	"github.com/nvellek/agora/internal/middleware"
	"github.com/nvellek/agora/internal/repo"
	"github.com/nvellek/agora/internal/urlcheck"
)

// newRouter builds the full API router with all middleware and handlers wired.
// Separated from main so integration tests can run against a mock DB.
func newRouter(database *sql.DB, cfg config.Config) chi.Router {
	userRepo := repo.NewUserRepo(database)
	postRepo := repo.NewPostRepo(database)
	replyRepo := repo.NewReplyRepo(database)
	auditRepo := repo.NewAuditRepo(database)

	authHandler := &handlers.AuthHandler{
		UserRepo:            userRepo,
		Secret:              []byte(cfg.JWTSecret),
		ExpireHours:         cfg.JWTExpireHours,
		OnlineWindowSeconds: cfg.OnlineWindowSeconds,
	}
	postHandler := &handlers.PostHandler{Repo: postRepo, Replies: replyRepo, AuditRepo: auditRepo}
	replyHandler := &handlers.ReplyHandler{Repo: replyRepo, Posts: postRepo, AuditRepo: auditRepo}
	profileHandler := &handlers.ProfileHandler{Users: userRepo, Posts: postRepo}
	statsHandler := &handlers.StatsHandler{Users: userRepo, Posts: postRepo, Replies: replyRepo}
	auditHandler := &handlers.AuditHandler{Repo: auditRepo}
	urlCheckHandler := &handlers.URLCheckHandler{Checker: urlcheck.NewClient(cfg.VTAPIKey)}

	// Every verified request bumps last_active so the online list stays fresh.
	touchActivity := func(ctx context.Context, userID int) {
		if err := userRepo.TouchActivity(ctx, userID); err != nil {
			slog.Error("touch activity", "user_id", userID, "err", err)
		}
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.RequestLog)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Prometheus)
	r.Use(middleware.SecurityHeaders(cfg.TLSCertFile != "" && cfg.TLSKeyFile != ""))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(middleware.MaxBytes(middleware.DefaultMaxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := database.PingContext(r.Context()); err != nil {
			handlers.JSONError(w, "database unreachable", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ready"))
	})
	r.Handle("/metrics", promhttp.Handler())

	// Public
	r.Post("/register", authHandler.Register)
	r.Post("/login", authHandler.Login)
	r.Get("/online", authHandler.ListOnline)
	r.Get("/user/{username}", profileHandler.GetProfile)
	r.Get("/posts", postHandler.ListPosts)
	r.Get("/posts/{id}", postHandler.GetPost)

	// Protected
	r.Group(func(r chi.Router) {
		r.Use(middleware.JWTMiddleware([]byte(cfg.JWTSecret), touchActivity))
		r.Post("/posts", postHandler.CreatePost)
		r.Put("/posts/{id}", postHandler.UpdatePost)
		r.Delete("/posts/{id}", postHandler.DeletePost)
		r.Post("/posts/{id}/replies", replyHandler.CreateReply)
		r.Put("/replies/{id}", replyHandler.UpdateReply)
		r.Delete("/replies/{id}", replyHandler.DeleteReply)
		r.Post("/check_url", urlCheckHandler.CheckURL)
		r.Post("/command", urlCheckHandler.Command)

		// Admin
		r.Group(func(r chi.Router) {
			r.Use(middleware.AdminOnly)
			r.Get("/stats", statsHandler.GetStats)
			r.Get("/audit", auditHandler.ListAudit)
		})
	})

	return r
}
