// Package api wires the HTTP surface of the service.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/roomshare/roomshare-be/internal/api/handlers"
	"github.com/roomshare/roomshare-be/internal/auth"
)

// RouterDeps bundles everything the router needs.
type RouterDeps struct {
	Auth      *handlers.AuthHandler
	Groups    *handlers.GroupHandler
	Expenses  *handlers.ExpenseHandler
	Websocket *handlers.WebsocketHandler
	Tokens    *auth.Service

	AllowedOrigin string
}

// NewRouter creates the main router for the API.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{deps.AllowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/api", func(r chi.Router) {
		// Public routes.
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", deps.Auth.Signup)
			r.Post("/verify-otp", deps.Auth.VerifyOTP)
			r.Post("/login", deps.Auth.Login)
			r.Post("/forgot-password", deps.Auth.ForgotPassword)
			r.Post("/reset-password", deps.Auth.ResetPassword)
		})

		// Authenticated routes.
		r.Group(func(r chi.Router) {
			r.Use(deps.Tokens.Middleware())

			r.Route("/groups", func(r chi.Router) {
				r.Post("/", deps.Groups.Create)
				r.Get("/my-groups", deps.Groups.MyGroups)
				r.Route("/{groupId}", func(r chi.Router) {
					r.Get("/members", deps.Groups.Members)
					r.Post("/members", deps.Groups.AddMember)
					r.Delete("/members/{userId}", deps.Groups.RemoveMember)
					r.Get("/activity", deps.Groups.Activity)
				})
			})

			r.Route("/expenses", func(r chi.Router) {
				r.Post("/", deps.Expenses.Add)
				r.Get("/{expenseId}/proof", deps.Expenses.Proof)
				r.Route("/group/{groupId}", func(r chi.Router) {
					r.Get("/", deps.Expenses.ByGroup)
					r.Get("/balances", deps.Expenses.Balances)
					r.Get("/summary", deps.Expenses.MonthlySummary)
				})
			})

			r.Get("/ws/groups/{groupId}", deps.Websocket.Serve)
		})
	})

	return r
}
