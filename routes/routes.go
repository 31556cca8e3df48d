package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/Respawn-League/citadel/handlers"
	"github.com/Respawn-League/citadel/middleware"
)

func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	authHandler *handlers.AuthHandler,
	leagueHandler *handlers.LeagueHandler,
	rosterHandler *handlers.RosterHandler,
	teamHandler *handlers.TeamHandler,
	grantHandler *handlers.GrantHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	secret := []byte(jwtSecret)

	router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	router.Post("/auth/register", authHandler.Register)
	router.Post("/auth/login", authHandler.Login)

	router.Route("/leagues", func(r chi.Router) {
		// Список лиг публичный
		r.Get("/", leagueHandler.List)

		// Просмотр лиги и заявок принимает токен опционально: право
		// на чтение заявок решает сервисный слой
		r.Group(func(r chi.Router) {
			r.Use(middleware.Optional(secret))

			r.Get("/{leagueID}", leagueHandler.Get)
			r.Get("/{leagueID}/rosters/{rosterID}", rosterHandler.Get)
		})

		// Мутации и модерация требуют токен
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(secret))

			r.Post("/", leagueHandler.Create)
			r.Patch("/{leagueID}", leagueHandler.Update)

			r.Post("/{leagueID}/rosters", rosterHandler.Create)
			r.Patch("/{leagueID}/rosters/{rosterID}", rosterHandler.Update)
			r.Get("/{leagueID}/rosters/{rosterID}/review", rosterHandler.Review)
			r.Post("/{leagueID}/rosters/{rosterID}/approve", rosterHandler.Approve)
			r.Post("/{leagueID}/rosters/{rosterID}/disband", rosterHandler.Disband)
			r.Delete("/{leagueID}/rosters/{rosterID}", rosterHandler.Destroy)
		})
	})

	router.Route("/teams", func(r chi.Router) {
		r.Get("/{teamID}", teamHandler.Get)
		r.Get("/{teamID}/members", teamHandler.Members)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(secret))

			r.Post("/", teamHandler.Create)
			r.Post("/{teamID}/members", teamHandler.AddMember)
			r.Post("/{teamID}/logo", teamHandler.UploadLogo)
		})
	})

	router.Route("/grants", func(r chi.Router) {
		r.Use(middleware.Authenticate(secret))

		r.Post("/", grantHandler.Create)
		r.Delete("/{grantID}", grantHandler.Delete)
		r.Get("/users/{userID}", grantHandler.ListByUser)
	})

	router.Get("/ws/leagues/{leagueID}", webSocketHandler.ServeLeagueRoom)
}
