package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"listdist/internal/analysis"
	"listdist/internal/api"
	"listdist/internal/service"
	"listdist/internal/state"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func main() {
	cfg := state.FromEnv(os.Getenv)

	// Initialize Services
	csvService := &analysis.CSVService{Header: cfg.Header}
	loader, err := service.NewColumnLoader(service.NewRouter(cfg.AWSRegion), csvService, cfg.CacheSize)
	if err != nil {
		log.Fatalf("Column cache: %v", err)
	}

	var results *service.ResultCache
	if cfg.RedisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		results, err = service.NewResultCache(ctx, cfg.RedisURL)
		cancel()
		if err != nil {
			log.Printf("Result cache disabled: %v", err)
			results = nil
		} else {
			defer results.Close()
		}
	}

	// Initialize Handler
	handler := api.NewHandler(loader, results, cfg.DataDir)

	// Router Setup
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	// CORS - Allow frontend
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Root endpoint
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("listdist is running"))
	})

	// Register all API Routes
	handler.RegisterRoutes(r)

	log.Printf("Starting listdist server on http://localhost:%s", cfg.Port)
	log.Printf("CORS enabled for: %v", cfg.CORSOrigins)
	log.Printf("Data directory: %s", cfg.DataDir)

	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
