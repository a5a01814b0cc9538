package authz

//go:generate go run go.uber.org/mock/mockgen -source=./resolver.go -destination=../mocks/resolver_mock.go -package=mocks

import (
	"context"
	"fmt"
	"sync"

	"tavolo/infras/otel"
	bookingModel "tavolo/internal/domains/booking/model"
	bookingRepo "tavolo/internal/domains/booking/repository"
	chatDto "tavolo/internal/domains/chat/model/dto"
	restaurantModel "tavolo/internal/domains/restaurant/model"
	restaurantRepo "tavolo/internal/domains/restaurant/repository"
	"tavolo/shared/constant"
	gDto "tavolo/shared/dto"
	"tavolo/shared/failure"

	"github.com/rs/zerolog/log"
)

// BookingAuthorization is the cached access-control record for one
// booking's chat room.
type BookingAuthorization struct {
	BookingID         string
	OwnerUserID       string
	RestaurantID      string
	RestaurantAdminID string
}

// Resolver answers whether a set of identity claims may join a
// booking's chat room. Lookups are served from an in-memory cache
// backed by the booking and restaurant stores; a store failure denies
// access rather than guessing.
type Resolver interface {
	Preload(ctx context.Context) error
	Resolve(ctx context.Context, bookingID string) (BookingAuthorization, error)
	Authorize(ctx context.Context, claims chatDto.JoinRequest) error
	Invalidate(bookingID string)
}

type resolverImpl struct {
	bookingRepo    bookingRepo.Booking
	restaurantRepo restaurantRepo.Restaurant
	otel           otel.Otel

	mu    sync.RWMutex
	cache map[string]BookingAuthorization
}

func New(bookingRepo bookingRepo.Booking, restaurantRepo restaurantRepo.Restaurant, otel otel.Otel) Resolver {
	return &resolverImpl{
		bookingRepo:    bookingRepo,
		restaurantRepo: restaurantRepo,
		otel:           otel,
		cache:          map[string]BookingAuthorization{},
	}
}

// Preload warms the cache with every stored booking so steady-state
// joins never touch the database.
func (r *resolverImpl) Preload(ctx context.Context) (err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ChatAuthz.Preload")
	defer scope.End()
	defer scope.TraceIfError(err)

	bookings, err := r.bookingRepo.GetAll(ctx, gDto.QueryParams{}, gDto.FilterGroup{})
	if err != nil {
		log.Error().Err(err).Msg("failed to preload bookings for chat authorization")

		return fmt.Errorf("failed to preload bookings for chat authorization: %w", err)
	}

	loaded := 0

	for _, booking := range bookings {
		auth, err := r.buildAuthorization(ctx, booking)
		if err != nil {
			log.Warn().Err(err).Str("booking_id", booking.ID).Msg("skipping booking during chat authorization preload")

			continue
		}

		r.mu.Lock()
		r.cache[booking.ID] = auth
		r.mu.Unlock()

		loaded++
	}

	log.Info().Int("bookings", loaded).Msg("Chat authorization cache preloaded")

	return nil
}

// Resolve returns the authorization record for a booking, loading and
// caching it on first use.
func (r *resolverImpl) Resolve(ctx context.Context, bookingID string) (auth BookingAuthorization, err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ChatAuthz.Resolve")
	defer scope.End()
	defer scope.TraceIfError(err)

	r.mu.RLock()
	cached, found := r.cache[bookingID]
	r.mu.RUnlock()

	if found {
		return cached, nil
	}

	filter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{
				Field:    bookingModel.FieldID,
				Operator: gDto.FilterOperatorEq,
				Value:    bookingID,
				Table:    bookingModel.TableName,
			},
		},
	}

	booking, err := r.bookingRepo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Str("booking_id", bookingID).Msg("failed to resolve booking for chat authorization")

		return BookingAuthorization{}, fmt.Errorf("failed to resolve booking for chat authorization: %w", err)
	}

	if booking.ID == constant.Empty {
		return BookingAuthorization{}, failure.NotFound("booking not found") // nolint:wrapcheck
	}

	auth, err = r.buildAuthorization(ctx, booking)
	if err != nil {
		return BookingAuthorization{}, err
	}

	r.mu.Lock()
	r.cache[bookingID] = auth
	r.mu.Unlock()

	return auth, nil
}

// Authorize checks the claims against the booking's authorization
// record. Room owners join with role user, the restaurant's admin with
// role admin; anyone else is denied.
// nolint:wrapcheck
func (r *resolverImpl) Authorize(ctx context.Context, claims chatDto.JoinRequest) (err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ChatAuthz.Authorize")
	defer scope.End()
	defer scope.TraceIfError(err)

	auth, err := r.Resolve(ctx, claims.BookingID)
	if err != nil {
		return failure.Forbidden("access to this chat room is denied")
	}

	switch claims.Role {
	case constant.RoleUser:
		if claims.UserID != auth.OwnerUserID {
			return failure.Forbidden("access to this chat room is denied")
		}
	case constant.RoleAdmin:
		if claims.UserID != auth.RestaurantAdminID {
			return failure.Forbidden("access to this chat room is denied")
		}

		if claims.RestaurantUserID != auth.RestaurantAdminID {
			return failure.Forbidden("access to this chat room is denied")
		}
	default:
		return failure.Forbidden("access to this chat room is denied")
	}

	return nil
}

// Invalidate drops a booking's cached record so the next join reloads
// it from the store.
func (r *resolverImpl) Invalidate(bookingID string) {
	r.mu.Lock()
	delete(r.cache, bookingID)
	r.mu.Unlock()
}

func (r *resolverImpl) buildAuthorization(ctx context.Context, booking bookingModel.Booking) (BookingAuthorization, error) {
	filter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{
				Field:    restaurantModel.FieldID,
				Operator: gDto.FilterOperatorEq,
				Value:    booking.RestaurantID,
				Table:    restaurantModel.TableName,
			},
		},
	}

	restaurant, err := r.restaurantRepo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Str("restaurant_id", booking.RestaurantID).Msg("failed to resolve restaurant for chat authorization")

		return BookingAuthorization{}, fmt.Errorf("failed to resolve restaurant for chat authorization: %w", err)
	}

	if restaurant.ID == constant.Empty {
		return BookingAuthorization{}, failure.NotFound("restaurant not found") // nolint:wrapcheck
	}

	return BookingAuthorization{
		BookingID:         booking.ID,
		OwnerUserID:       booking.UserID,
		RestaurantID:      restaurant.ID,
		RestaurantAdminID: restaurant.AdminUserID,
	}, nil
}
