package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/savoro-pos/api/internal/config"
	"github.com/savoro-pos/api/internal/database"
	"github.com/savoro-pos/api/internal/enum"
	"github.com/savoro-pos/api/internal/handler"
	mw "github.com/savoro-pos/api/internal/middleware"
	"github.com/savoro-pos/api/internal/service"
	"github.com/savoro-pos/api/internal/ws"
)

// New creates a chi router with all application routes wired up. The public
// surface (QR ordering) needs no auth; the staff surface is JWT-protected
// and restaurant-scoped.
func New(cfg *config.Config, queries *database.Queries, pool *pgxpool.Pool, hub *ws.Hub) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "https://*.savoro.app"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Services over the shared pool. Stores are built per call so
	// transactional paths can rebind the same queries to a pgx.Tx.
	pricingService := service.NewPricingService(queries)
	orderService := service.NewOrderService(
		pool,
		func(db database.DBTX) service.OrderStore { return database.New(db) },
		cfg.Order.ConsumeOn,
	)
	inventoryService := service.NewInventoryService(
		pool,
		func(db database.DBTX) service.InventoryStore { return database.New(db) },
	)

	authHandler := handler.NewAuthHandler(queries, cfg.JWT.Secret)
	orderHandler := handler.NewOrderHandler(pricingService, orderService, hub)
	ingredientHandler := handler.NewIngredientHandler(queries, inventoryService)
	recipeHandler := handler.NewRecipeHandler(queries, inventoryService)
	menuHandler := handler.NewMenuHandler(queries)
	discountHandler := handler.NewDiscountHandler(queries)
	tableHandler := handler.NewTableHandler(queries)
	userHandler := handler.NewUserHandler(queries)

	// Auth routes (public)
	authHandler.RegisterRoutes(r)

	// Customer-facing routes; the table ID from the QR code is the only
	// credential.
	r.Route("/public", orderHandler.RegisterPublicRoutes)

	// WebSocket route (handles auth internally via query param)
	r.Get("/ws/restaurants/{rid}/orders", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.JWT.Secret, w, r)
	})

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWT.Secret))

		// Platform provisioning
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(enum.UserRoleAdmin))
			r.Route("/admin", userHandler.RegisterAdminRoutes)
		})

		// Restaurant-scoped routes
		r.Route("/restaurants/{rid}", func(r chi.Router) {
			r.Use(mw.RequireRestaurant)

			r.Route("/orders", orderHandler.RegisterRoutes)
			r.Route("/ingredients", ingredientHandler.RegisterRoutes)
			r.Route("/menu-items", func(r chi.Router) {
				menuHandler.RegisterRoutes(r)
				recipeHandler.RegisterRoutes(r)
			})

			// Management routes (kitchen staff keep read-only order access above)
			r.Group(func(r chi.Router) {
				r.Use(mw.RequireRole(enum.UserRoleAdmin, enum.UserRoleOwner))
				r.Route("/discounts", discountHandler.RegisterRoutes)
				r.Route("/tables", tableHandler.RegisterRoutes)
				r.Route("/users", userHandler.RegisterRoutes)
			})
		})
	})

	return r
}
