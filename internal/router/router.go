package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/vglug/intake-backend/internal/handlers"
	"github.com/vglug/intake-backend/internal/middleware"
)

func NewRouter(deps *handlers.Deps) chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewLoggerMiddleware(deps.Log).LoggerMiddleware)

	ah := handlers.NewApplicationHandlers(deps)
	oh := handlers.NewOTPHandlers(deps)
	wh := handlers.NewWidgetHandlers(deps)
	agh := handlers.NewAgentHandlers(deps)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Public intake surface. Applicants verify their email first, then
	// submit; neither step carries a Firebase token.
	r.Mount("/applications", ah.PublicRoutes())
	r.Mount("/otp", oh.OTPRoutes())

	// Admin surface, Firebase-authenticated.
	auth := middleware.NewMiddleware(deps.Firebase)
	r.Route("/admin", func(r chi.Router) {
		r.Use(auth.FirebaseAuth)
		r.Mount("/applications", ah.AdminRoutes())
		r.Mount("/widgets", wh.WidgetRoutes())
		r.Mount("/ai", agh.AgentRoutes())
	})

	return r
}
