package restaurant

import (
	"net/http"
	"tavolo/infras/otel"
	"tavolo/internal/domains/restaurant/model"
	"tavolo/internal/domains/restaurant/model/dto"
	"tavolo/internal/domains/restaurant/service"
	"tavolo/shared/constant"
	gDto "tavolo/shared/dto"
	"tavolo/shared/validator"
	"tavolo/transport/http/response"

	"github.com/go-chi/chi/v5"

	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Restaurant
	otel    otel.Otel
}

func New(service service.Restaurant, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/restaurants", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateRestaurant)
		routerGroup.Get("/", handler.GetRestaurants)
		routerGroup.Get("/{id}", handler.GetRestaurantByID)
		routerGroup.Patch("/{id}", handler.UpdateRestaurant)
		routerGroup.Delete("/{id}", handler.DeleteRestaurant)
	})
}

// CreateRestaurant handles the creation of a new restaurant.
// @Summary Create a new restaurant
// @Description Create a new restaurant with the provided details.
// @Tags Restaurant
// @Accept json
// @Produce json
// @Param request body dto.CreateRestaurantRequest true "Create Restaurant Request"
// @Success 201 {object} response.Message "Restaurant created successfully"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/restaurants [post]
// @Security BearerAuth
func (handler *Handler) CreateRestaurant(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateRestaurant")
	defer scope.End()

	req := dto.CreateRestaurantRequest{}

	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(writer, err)

		return
	}

	if err := handler.service.Create(ctx, req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create restaurant")

		response.WithError(writer, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Restaurant created successfully by user " + user)

	response.WithMessage(writer, http.StatusCreated, "Restaurant created successfully")
}

// GetRestaurants retrieves all restaurants based on query parameters.
// @Summary Get all restaurants
// @Description Retrieve all restaurants with optional filtering and pagination.
// @Tags Restaurant
// @Accept json
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param cuisine query string false "Filter by cuisine"
// @Param location query string false "Filter by location"
// @Success 200 {object} response.Data[dto.RestaurantResponse] "List of restaurants"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/restaurants [get]
// @Security BearerAuth
func (handler *Handler) GetRestaurants(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetRestaurants")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	cuisine := r.URL.Query().Get(model.FieldCuisine)
	location := r.URL.Query().Get(model.FieldLocation)

	filterGroup := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters:  []any{},
	}

	if cuisine != "" {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldCuisine,
			Operator: gDto.FilterOperatorEq,
			Value:    cuisine,
			Table:    model.TableName,
		})
	}

	if location != "" {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldLocation,
			Operator: gDto.FilterOperatorLike,
			Value:    "%" + location + "%",
			Table:    model.TableName,
		})
	}

	restaurants, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get restaurants")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Restaurants retrieved successfully")

	response.WithJSON(w, http.StatusOK, restaurants)
}

// GetRestaurantByID retrieves a restaurant by its ID.
// @Summary Get a restaurant by ID
// @Description Retrieve a restaurant by its unique identifier.
// @Tags Restaurant
// @Accept json
// @Produce json
// @Param id path string true "Restaurant ID"
// @Success 200 {object} response.Data[dto.RestaurantResponse] "Restaurant details"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/restaurants/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetRestaurantByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetRestaurantByID")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	restaurant, err := handler.service.Get(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get restaurant by ID")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Restaurant retrieved successfully")

	response.WithJSON(w, http.StatusOK, restaurant)
}

// UpdateRestaurant updates an existing restaurant by its ID.
// @Summary Update a restaurant by ID
// @Description Update the details of an existing restaurant.
// @Tags Restaurant
// @Accept json
// @Produce json
// @Param id path string true "Restaurant ID"
// @Param request body dto.UpdateRestaurantRequest true "Update Restaurant Request"
// @Success 200 {object} response.Message "Restaurant updated successfully"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/restaurants/{id} [patch]
// @Security BearerAuth
func (handler *Handler) UpdateRestaurant(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateRestaurant")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	req := dto.UpdateRestaurantRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	if err := handler.service.Update(ctx, req, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update restaurant")

		response.WithError(w, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Restaurant updated successfully by user " + user)

	response.WithMessage(w, http.StatusOK, "Restaurant updated successfully")
}

// DeleteRestaurant deletes a restaurant by its ID.
// @Summary Delete a restaurant by ID
// @Description Delete a restaurant using its unique identifier.
// @Tags Restaurant
// @Accept json
// @Produce json
// @Param id path string true "Restaurant ID"
// @Success 200 {object} response.Message "Restaurant deleted successfully"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/restaurants/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteRestaurant(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteRestaurant")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	if err := handler.service.Delete(ctx, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to delete restaurant")

		response.WithError(w, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Restaurant deleted successfully by user " + user)

	response.WithMessage(w, http.StatusOK, "Restaurant deleted successfully")
}
