package http

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "roombook/docs"
	"roombook/internal/delivery/http/controllers"
	"roombook/internal/delivery/http/middleware"
	"roombook/internal/domain"
)

// RouterConfig carries everything the router wires together.
type RouterConfig struct {
	Logger         *slog.Logger
	AllowedOrigins []string
	Verifier       domain.TokenVerifier
	Limiter        *middleware.RateLimiter
	Gatherer       prometheus.Gatherer

	Users    *controllers.UserController
	Spaces   *controllers.SpaceController
	Rooms    *controllers.RoomController
	Bookings *controllers.BookingController
	Health   *controllers.HealthController
}

// NewRouter initializes the HTTP router with all application routes
func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()
	requireAuth := middleware.RequireAuth(cfg.Verifier, cfg.Logger)
	public := cfg.Limiter.Limit
	private := func(h http.HandlerFunc) http.HandlerFunc {
		return requireAuth(cfg.Limiter.Limit(h))
	}

	// Users
	mux.HandleFunc("POST /users/register", public(cfg.Users.Register))
	mux.HandleFunc("POST /users/login", public(cfg.Users.Login))
	mux.HandleFunc("POST /users/token-refresh", public(cfg.Users.RefreshToken))
	mux.HandleFunc("GET /users", private(cfg.Users.List))
	mux.HandleFunc("GET /users/{userID}", private(cfg.Users.Get))
	mux.HandleFunc("PUT /users/{userID}", private(cfg.Users.Update))
	mux.HandleFunc("DELETE /users/{userID}", private(cfg.Users.Delete))

	// Spaces
	mux.HandleFunc("GET /spaces", private(cfg.Spaces.List))
	mux.HandleFunc("POST /spaces", private(cfg.Spaces.Create))
	mux.HandleFunc("POST /spaces/join", private(cfg.Spaces.Join))
	mux.HandleFunc("GET /spaces/{spaceID}", private(cfg.Spaces.Get))
	mux.HandleFunc("PUT /spaces/{spaceID}", private(cfg.Spaces.Update))
	mux.HandleFunc("DELETE /spaces/{spaceID}", private(cfg.Spaces.Delete))
	mux.HandleFunc("POST /spaces/{spaceID}/leave", private(cfg.Spaces.Leave))
	mux.HandleFunc("POST /spaces/{spaceID}/invite-code", private(cfg.Spaces.RegenerateInviteCode))

	// Rooms
	mux.HandleFunc("GET /rooms", private(cfg.Rooms.List))
	mux.HandleFunc("POST /rooms", private(cfg.Rooms.Create))
	mux.HandleFunc("GET /rooms/{roomID}", private(cfg.Rooms.Get))
	mux.HandleFunc("PUT /rooms/{roomID}", private(cfg.Rooms.Update))
	mux.HandleFunc("DELETE /rooms/{roomID}", private(cfg.Rooms.Delete))

	// Bookings
	mux.HandleFunc("GET /bookings", private(cfg.Bookings.List))
	mux.HandleFunc("POST /bookings", private(cfg.Bookings.Create))
	mux.HandleFunc("GET /bookings/room", private(cfg.Bookings.ListPerRoom))
	mux.HandleFunc("GET /bookings/available-time-slots", private(cfg.Bookings.Availability))
	mux.HandleFunc("GET /bookings/{bookingID}", private(cfg.Bookings.Get))
	mux.HandleFunc("PUT /bookings/{bookingID}", private(cfg.Bookings.Update))
	mux.HandleFunc("DELETE /bookings/{bookingID}", private(cfg.Bookings.Delete))

	// Ops
	mux.HandleFunc("GET /health", cfg.Health.Health)
	mux.Handle("GET /metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return middleware.LoggingMiddleware(cfg.Logger, middleware.CORS(cfg.AllowedOrigins, mux))
}
