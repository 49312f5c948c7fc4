package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Handlers agrupa lo que monta NewRouter.
type Handlers struct {
	Auth       *AuthHandler
	Catalog    *CatalogHandler
	Books      *BookHandler
	Preference *PreferenceHandler
	Readings   *ReadingHandler
	Recommend  *RecommendHandler
	Model      *ModelHandler
}

type RouterConfig struct {
	JWTSecret   string
	CORSOrigins []string
	// AuthRateLimit: peticiones por minuto e IP en /auth (0 = sin límite).
	AuthRateLimit int
}

func NewRouter(h Handlers, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger)

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", requestIDHeader},
		ExposedHeaders:   []string{requestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		fail(w, http.StatusNotFound, CodeNotFound, "recurso no encontrado", nil)
	})

	// =============
	// Rutas públicas
	// =============
	r.Get("/health", Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/auth", func(r chi.Router) {
		if cfg.AuthRateLimit > 0 {
			r.Use(httprate.LimitByIP(cfg.AuthRateLimit, time.Minute))
		}
		r.Post("/register", h.Auth.Register)
		r.Post("/login", h.Auth.Login)
	})

	// Catálogo y libros (públicos)
	r.Get("/categories", h.Catalog.Categories)
	r.Get("/languages", h.Catalog.Languages)
	r.Get("/levels", h.Catalog.Levels)
	r.Get("/levels/{id}", h.Catalog.GetLevel)

	r.Get("/books", h.Books.Search)
	r.Get("/books/google/search", h.Books.SearchGoogle)
	r.Get("/books/{id}", h.Books.GetBook)

	// ===========================
	// Rutas protegidas con JWT
	// ===========================
	r.Group(func(r chi.Router) {
		r.Use(JWTAuth(cfg.JWTSecret))

		// ---- Endpoints /me (USER normal) ----
		r.Route("/me", func(r chi.Router) {
			r.Get("/", h.Auth.Me)

			r.Get("/preferences", h.Preference.Get)
			r.Post("/preferences", h.Preference.Create)
			r.Put("/preferences", h.Preference.Update)
			r.Delete("/preferences", h.Preference.Delete)

			r.Get("/readings", h.Readings.List)
			r.Post("/readings", h.Readings.Create)
			r.Get("/readings/stats", h.Readings.Stats)
			r.Get("/readings/{bookId}", h.Readings.Get)
			r.Put("/readings/{bookId}", h.Readings.Update)
			r.Delete("/readings/{bookId}", h.Readings.Delete)

			r.Get("/recommendations", h.Recommend.GetMyRecommendations)
			r.Get("/recommendations/cluster", h.Recommend.GetMyCluster)
			r.Get("/recommendations/history", h.Recommend.GetMyHistory)

			// WebSocket
			r.Get("/ws/recommendations", h.Recommend.GetRecommendationsWS)
		})

		// ---- Cuenta propia (el servicio valida que sea el dueño) ----
		r.Put("/users/{id}", h.Auth.UpdateUser)
		r.Delete("/users/{id}", h.Auth.DeleteUser)

		// ---- Endpoints solo ADMIN ----
		r.Group(func(r chi.Router) {
			r.Use(AdminOnly())

			r.Get("/users", h.Auth.ListUsers)
			r.Get("/users/{id}", h.Auth.GetUserByID)
			r.Put("/users/{id}/state", h.Auth.SetState)
			r.Get("/users/{id}/recommendations", h.Recommend.GetRecommendations)

			r.Route("/admin", func(r chi.Router) {
				r.Post("/categories", h.Catalog.CreateCategory)
				r.Post("/languages", h.Catalog.CreateLanguage)

				r.Post("/levels", h.Catalog.CreateLevel)
				r.Put("/levels/{id}", h.Catalog.UpdateLevel)
				r.Delete("/levels/{id}", h.Catalog.DeleteLevel)

				r.Post("/books", h.Books.Create)
				r.Put("/books/{id}", h.Books.Update)
				r.Delete("/books/{id}", h.Books.Delete)

				r.Post("/recommendations/train", h.Model.Train)
				r.Get("/recommendations/model", h.Model.Info)
			})
		})
	})

	// Swagger UI
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	return r
}
