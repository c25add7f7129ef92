package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/chatventas/commerce-service/internal/api/http/handlers"
	"github.com/chatventas/commerce-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health            *handlers.HealthHandler
	Sessions          *handlers.SessionsHandler
	Chat              *handlers.ChatHandler
	Orders            *handlers.OrdersHandler
	Tickets           *handlers.TicketsHandler
	SessionMiddleware *auth.SessionMiddleware
}

// RegisterRoutes wires HTTP routes. The inbound message hook and session
// issuance are open to the chat transport; everything conversation-scoped
// requires a session token.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/sessions", cfg.Sessions.CreateSession)
	app.Post("/chat/messages", cfg.Chat.PostMessage)

	app.Get("/ws", cfg.Chat.WebsocketUpgrade, cfg.Chat.Websocket())

	protected := app.Group("", cfg.SessionMiddleware.Handle)
	protected.Get("/chat/messages", cfg.Chat.History)

	protected.Post("/orders", cfg.Orders.CreateOrder)
	protected.Get("/orders", cfg.Orders.ListOrders)
	protected.Get("/orders/:number", cfg.Orders.GetOrder)

	protected.Post("/tickets", cfg.Tickets.CreateTicket)
	protected.Get("/tickets", cfg.Tickets.ListTickets)
	protected.Get("/tickets/:number", cfg.Tickets.GetTicket)
	protected.Post("/tickets/:number/close", cfg.Tickets.CloseTicket)
}
