package router

import (
	"tavolo/internal/handlers/auth"
	"tavolo/internal/handlers/booking"
	"tavolo/internal/handlers/chat"
	"tavolo/internal/handlers/restaurant"
	"tavolo/internal/handlers/table"
	"tavolo/internal/handlers/user"

	"github.com/go-chi/chi/v5"
)

type DomainHandlers struct {
	Auth       auth.Handler
	User       user.Handler
	Restaurant restaurant.Handler
	Table      table.Handler
	Booking    booking.Handler
	Chat       chat.Handler
}

type Router struct {
	DomainHandlers DomainHandlers
}

func (r *Router) SetupRoutes(router chi.Router) {
	router.Route("/v1", func(routerGroup chi.Router) {
		r.DomainHandlers.Auth.Router(routerGroup)
		r.DomainHandlers.User.Router(routerGroup)
		r.DomainHandlers.Restaurant.Router(routerGroup)
		r.DomainHandlers.Table.Router(routerGroup)
		r.DomainHandlers.Booking.Router(routerGroup)
		r.DomainHandlers.Chat.Router(routerGroup)
	})
}

func New(domainHandlers DomainHandlers) Router {
	return Router{
		DomainHandlers: domainHandlers,
	}
}
