package handler

import (
	"github.com/gorilla/mux"

	"github.com/Dan9191/bureau-service/internal/config"
	"github.com/Dan9191/bureau-service/internal/middleware"
)

// NewRouter wires the public and protected routes.
func NewRouter(h *Handler, cfg *config.Config) *mux.Router {
	r := mux.NewRouter()
	// Public routes
	r.HandleFunc("/health", h.Health).Methods("GET")
	r.HandleFunc("/token", h.Token).Methods("POST")

	// Protected routes
	authRouter := r.PathPrefix("/").Subrouter()
	authRouter.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
	authRouter.Use(middleware.AuthMiddleware(cfg))
	authRouter.HandleFunc("/bureau/{crn}/features", h.Features).Methods("GET")
	authRouter.HandleFunc("/bureau/{crn}/summary", h.Summary).Methods("GET")
	authRouter.HandleFunc("/bureau/{crn}/tradeline-features", h.TradelineFeatures).Methods("GET")
	authRouter.HandleFunc("/bureau/{crn}/findings", h.Findings).Methods("GET")
	authRouter.HandleFunc("/bureau/{crn}/exposure", h.Exposure).Methods("GET")
	authRouter.HandleFunc("/bureau/{crn}/report", h.Report).Methods("GET")
	authRouter.HandleFunc("/bureau/{crn}/report.xml", h.ReportXML).Methods("GET")
	authRouter.HandleFunc("/admin/reload", h.Reload).Methods("POST")

	return r
}
