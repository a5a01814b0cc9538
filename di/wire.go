//go:build wireinject
// +build wireinject

package di

import (
	"tavolo/config"
	"tavolo/infras/jwt"
	"tavolo/infras/kafka"
	"tavolo/infras/otel"
	"tavolo/infras/postgres"
	"tavolo/infras/redis"
	"tavolo/permissions"
	"tavolo/shared/cache"
	"tavolo/transport/http"
	"tavolo/transport/http/middleware"
	"tavolo/transport/http/router"

	"github.com/google/wire"

	authService "tavolo/internal/domains/auth/service"
	bookingRepository "tavolo/internal/domains/booking/repository"
	bookingService "tavolo/internal/domains/booking/service"
	chatAuthz "tavolo/internal/domains/chat/authz"
	chatCoordinator "tavolo/internal/domains/chat/coordinator"
	chatRegistry "tavolo/internal/domains/chat/registry"
	chatRepository "tavolo/internal/domains/chat/repository"
	restaurantRepository "tavolo/internal/domains/restaurant/repository"
	restaurantService "tavolo/internal/domains/restaurant/service"
	tableRepository "tavolo/internal/domains/table/repository"
	tableService "tavolo/internal/domains/table/service"
	userRepository "tavolo/internal/domains/user/repository"
	userService "tavolo/internal/domains/user/service"

	authHandler "tavolo/internal/handlers/auth"
	bookingHandler "tavolo/internal/handlers/booking"
	chatHandler "tavolo/internal/handlers/chat"
	restaurantHandler "tavolo/internal/handlers/restaurant"
	tableHandler "tavolo/internal/handlers/table"
	userHandler "tavolo/internal/handlers/user"
)

var configurations = wire.NewSet(
	config.Get,
	permissions.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	otel.New,
	redis.New,
	jwt.New,
	kafka.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthRoleMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
)

var userDomain = wire.NewSet(
	userRepository.New,
	userService.New,
)

var authDomain = wire.NewSet(
	authService.New,
)

var restaurantDomain = wire.NewSet(
	restaurantRepository.New,
	restaurantService.New,
)

var tableDomain = wire.NewSet(
	tableRepository.New,
	tableService.New,
)

var bookingDomain = wire.NewSet(
	bookingRepository.New,
	bookingService.New,
)

var chatDomain = wire.NewSet(
	chatRepository.New,
	chatRegistry.New,
	chatAuthz.New,
	chatCoordinator.New,
)

var domains = wire.NewSet(
	userDomain,
	authDomain,
	restaurantDomain,
	tableDomain,
	bookingDomain,
	chatDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	authHandler.New,
	userHandler.New,
	restaurantHandler.New,
	tableHandler.New,
	bookingHandler.New,
	chatHandler.New,
	router.New,
)

func InitializeService() *http.HTTP {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		domains,
		routing,
		http.New,
	)

	return &http.HTTP{}
}
