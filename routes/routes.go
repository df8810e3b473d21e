package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Sunbridger/lixiaona/config"
	"github.com/Sunbridger/lixiaona/controllers"
	"github.com/Sunbridger/lixiaona/jobs"
	"github.com/Sunbridger/lixiaona/middleware"
	"github.com/Sunbridger/lixiaona/models"
)

func SetupRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	// CORS for the SPA origin
	origins := strings.Split(config.GetEnv("CORS_ORIGINS", "http://localhost:5173,http://127.0.0.1:5173"), ",")
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte(`{"status": "ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.APIKey)

		r.Post("/estimate", controllers.Estimate)
		r.Get("/tip", controllers.GetTip)

		r.Get("/logs", controllers.GetLogs)
		r.Get("/logs/{date}", controllers.GetLog)
		r.Put("/logs/{date}", controllers.UpsertLog)

		r.Get("/profile", controllers.GetProfile)
		r.Put("/profile", controllers.UpdateProfile)

		r.Get("/summary", controllers.GetSummary)

		r.Post("/chat", controllers.Chat)
		r.Post("/conversations", controllers.SaveConversation)
		r.Get("/conversations", controllers.GetConversations)
	})

	// Server-Sent Events for calorie estimates written back by the worker
	r.Get("/sse/estimates", EstimatesSSE)

	// Debug: manually trigger estimation for a day's log
	r.Get("/debug/estimate/{date}", func(w http.ResponseWriter, req *http.Request) {
		date := chi.URLParam(req, "date")
		if _, err := time.Parse(models.DateKeyLayout, date); err != nil {
			http.Error(w, "Date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		jobs.GetWorker().Enqueue(date)
		w.Write([]byte(`{"status": "enqueued", "date": "` + date + `"}`))
	})

	return r
}
