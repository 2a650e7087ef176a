package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/ulule/limiter/v3"
	"go.uber.org/zap"

	"github.com/atinyakov/StockKeeper/internal/middleware"
)

// Public paths reachable without a bearer token.
const (
	PathLogin    = "/auth/login"
	PathRefresh  = "/auth/refresh"
	PathRegister = "/auth/register"
)

// NewRouter constructs and returns the HTTP handler of the StockKeeper API.
//
// Middleware chain (applied in order):
//  1. Recoverer                            turns panics into 500s
//  2. WithRequestLogging(logger)           logs every request
//  3. AllowContentType("application/json") rejects non-JSON bodies
//  4. BearerAuth(tokens)                   JWT auth except on the public auth paths
//
// POST /auth/login is additionally rate limited by loginLimiter when it is non-nil.
func NewRouter(
	authHandler *AuthHandler,
	inventoryHandler *InventoryHandler,
	tokens middleware.TokenParser,
	loginLimiter *limiter.Limiter,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.WithRequestLogging(logger))
	r.Use(chiMiddleware.AllowContentType("application/json"))
	r.Use(middleware.BearerAuth(tokens, logger, PathLogin, PathRefresh, PathRegister))

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/refresh", authHandler.Refresh)
		r.Post("/logout", authHandler.Logout)
		r.Group(func(r chi.Router) {
			if loginLimiter != nil {
				r.Use(middleware.RateLimit(loginLimiter, logger))
			}
			r.Post("/login", authHandler.Login)
		})
	})

	r.Route("/master-items", func(r chi.Router) {
		r.Get("/", inventoryHandler.ListMasterItems)
		r.Post("/", inventoryHandler.CreateMasterItem)
		r.Patch("/{id}", inventoryHandler.UpdateMasterItem)
		r.Delete("/{id}", inventoryHandler.DeleteMasterItem)
	})

	r.Route("/transactions", func(r chi.Router) {
		r.Get("/", inventoryHandler.ListTransactions)
		r.Post("/", inventoryHandler.CreateTransaction)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", inventoryHandler.GetTransaction)
			r.Patch("/", inventoryHandler.UpdateTransaction)
			r.Delete("/", inventoryHandler.DeleteTransaction)
			r.Post("/items", inventoryHandler.AddItem)
			r.Patch("/items/{itemId}", inventoryHandler.UpdateItem)
			r.Delete("/items/{itemId}", inventoryHandler.RemoveItem)
		})
	})

	r.Get("/item-types", inventoryHandler.ItemTypes)
	r.Get("/item-groups", inventoryHandler.ItemGroups)
	r.Get("/item-units", inventoryHandler.ItemUnits)
	r.Get("/item-account-groups", inventoryHandler.ItemAccountGroups)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		middleware.WriteMessage(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		middleware.WriteMessage(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}
