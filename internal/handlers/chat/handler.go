package chat

import (
	"context"
	"net/http"
	"time"

	"tavolo/config"
	"tavolo/infras/otel"
	"tavolo/internal/domains/chat/coordinator"
	"tavolo/internal/domains/chat/model/dto"
	"tavolo/internal/domains/chat/registry"
	"tavolo/shared/constant"
	"tavolo/shared/failure"
	"tavolo/shared/validator"
	"tavolo/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/rs/zerolog/log"
)

type Handler struct {
	coordinator coordinator.Coordinator
	cfg         *config.Config
	otel        otel.Otel
	upgrader    websocket.Upgrader
}

func New(coord coordinator.Coordinator, cfg *config.Config, otel otel.Otel) Handler {
	return Handler{
		coordinator: coord,
		cfg:         cfg,
		otel:        otel,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/chat", func(routerGroup chi.Router) {
		routerGroup.Get("/ws", handler.ServeWebsocket)
		routerGroup.Delete("/bookings/{id}/messages", handler.ClearHistory)
	})
}

// ServeWebsocket upgrades the connection and attaches it to the
// booking's chat room.
// @Summary Join a booking's chat room
// @Description Upgrade to a websocket and join the chat room for a booking. Identity claims are passed on the query string, matched against the bearer token, and checked against the booking before any frame is exchanged.
// @Tags Chat
// @Param bookingId query string true "Booking ID"
// @Param userId query string true "User ID of the joining participant"
// @Param username query string true "Display name of the joining participant"
// @Param role query string true "Role of the joining participant (admin or user)"
// @Param restaurantUserId query string false "Restaurant admin user ID, required for role admin"
// @Success 101 "Switching protocols"
// @Failure 400 {object} response.Error
// @Failure 401 {object} response.Error
// @Failure 403 {object} response.Error
// @Router /v1/chat/ws [get]
// @Security BearerAuth
func (handler *Handler) ServeWebsocket(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ServeWebsocket")
	defer scope.End()

	query := request.URL.Query()

	claims := dto.JoinRequest{
		BookingID:        query.Get(constant.RequestParamBookingID),
		UserID:           query.Get(constant.RequestParamChatUserID),
		Username:         query.Get(constant.RequestParamChatUsername),
		Role:             query.Get(constant.RequestParamChatRole),
		RestaurantUserID: query.Get(constant.RequestParamRestaurantUserID),
	}

	if err := validator.ValidateStruct(&claims); err != nil {
		scope.TraceError(err)
		log.Warn().Err(err).Msg("invalid chat join request")

		response.WithError(writer, err)

		return
	}

	tokenUserID, ok := ctx.Value(constant.ContextKeyUserID).(string)
	if !ok || tokenUserID != claims.UserID {
		log.Warn().Str("claimed_user_id", claims.UserID).Msg("chat join identity does not match the token")

		response.WithError(writer, failure.Forbidden("chat identity does not match the authenticated user"))

		return
	}

	conn, err := handler.upgrader.Upgrade(writer, request, nil)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to upgrade chat websocket")

		return
	}

	session := &registry.Session{
		ID:        uuid.New().String(),
		BookingID: claims.BookingID,
		UserID:    claims.UserID,
		Username:  claims.Username,
		Role:      claims.Role,
		JoinedAt:  time.Now().UTC(),
		Send:      make(chan dto.Event, handler.cfg.Chat.SendBufferSize),
	}

	if err := handler.coordinator.Join(ctx, claims, session); err != nil {
		scope.TraceError(err)

		handler.closeWithDenial(conn, err)

		return
	}

	scope.AddEvent("Chat session joined for booking " + claims.BookingID)

	// The pumps outlive this handler, so they must not inherit the
	// request's cancellation.
	client := coordinator.NewClient(handler.cfg, conn, session, handler.coordinator)
	client.Start(context.WithoutCancel(ctx))
}

// ClearHistory wipes every stored message for a booking's chat room.
// @Summary Clear a booking's chat history
// @Description Delete all persisted chat messages for a booking. Only the restaurant's admin may clear history.
// @Tags Chat
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Message "Chat history cleared successfully"
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/chat/bookings/{id}/messages [delete]
// @Security BearerAuth
func (handler *Handler) ClearHistory(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ClearHistory")
	defer scope.End()

	bookingID := chi.URLParam(request, constant.RequestParamID)

	if err := validator.ValidateVar(bookingID, "required,uuid4"); err != nil {
		scope.TraceError(err)

		response.WithError(writer, err)

		return
	}

	adminID, ok := ctx.Value(constant.ContextKeyUserID).(string)
	if !ok || adminID == "" {
		log.Error().Msg("failed to get user ID from context")
		response.WithError(writer, failure.Unauthorized("unauthorized"))

		return
	}

	if _, err := handler.coordinator.ClearHistory(ctx, bookingID, adminID); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to clear chat history")

		response.WithError(writer, err)

		return
	}

	scope.AddEvent("Chat history cleared for booking " + bookingID + " by user " + adminID)

	response.WithMessage(writer, http.StatusOK, "Chat history cleared successfully")
}

// closeWithDenial reports an authorization failure over the already
// upgraded socket before closing it, since HTTP status codes are gone
// after the upgrade.
func (handler *Handler) closeWithDenial(conn *websocket.Conn, err error) {
	denied, encodeErr := dto.NewEvent(dto.EventTypeAccessDenied, dto.ErrorPayload{Message: err.Error()})
	if encodeErr == nil {
		_ = conn.WriteJSON(denied)
	}

	generic, encodeErr := dto.NewEvent(dto.EventTypeError, dto.ErrorPayload{Message: "access denied"})
	if encodeErr == nil {
		_ = conn.WriteJSON(generic)
	}

	deadline := time.Now().Add(time.Duration(handler.cfg.Chat.WriteWaitSeconds) * time.Second)
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "access denied"), deadline)
	_ = conn.Close()
}
