package coordinator

//go:generate go run go.uber.org/mock/mockgen -source=./coordinator.go -destination=../mocks/coordinator_mock.go -package=mocks

import (
	"context"
	"strings"
	"sync"
	"time"

	"tavolo/config"
	"tavolo/infras/kafka"
	"tavolo/infras/otel"
	"tavolo/internal/domains/chat/authz"
	"tavolo/internal/domains/chat/model"
	"tavolo/internal/domains/chat/model/dto"
	"tavolo/internal/domains/chat/registry"
	"tavolo/internal/domains/chat/repository"
	"tavolo/shared/constant"
	"tavolo/shared/failure"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

var errQueueFull = errors.New("chat session queue is full")

// Coordinator routes chat traffic between websocket sessions and the
// message store. Every booking gets its own room goroutine, so message
// order is total within a booking and a slow store call for one
// booking never stalls another.
type Coordinator interface {
	Join(ctx context.Context, claims dto.JoinRequest, session *registry.Session) error
	Leave(ctx context.Context, session *registry.Session)
	Send(ctx context.Context, session *registry.Session, payload dto.SendMessagePayload)
	ClearHistory(ctx context.Context, bookingID, adminID string) (bool, error)
	Shutdown(ctx context.Context) error
}

type eventKind int

const (
	eventJoin eventKind = iota
	eventLeave
	eventSend
	eventClear
	eventStop
)

type roomEvent struct {
	kind    eventKind
	ctx     context.Context
	session *registry.Session
	body    string
	reply   chan error
}

type coordinatorImpl struct {
	cfg      *config.Config
	repo     repository.Message
	resolver authz.Resolver
	registry registry.Registry
	kafka    kafka.Client
	otel     otel.Otel

	mu       sync.Mutex
	rooms    map[string]*room
	draining bool
	wg       sync.WaitGroup
}

func New(
	cfg *config.Config,
	repo repository.Message,
	resolver authz.Resolver,
	reg registry.Registry,
	kafkaClient kafka.Client,
	otel otel.Otel,
) Coordinator {
	return &coordinatorImpl{
		cfg:      cfg,
		repo:     repo,
		resolver: resolver,
		registry: reg,
		kafka:    kafkaClient,
		otel:     otel,
		rooms:    map[string]*room{},
	}
}

// Join authorizes the claims and hands the session to the booking's
// room. The room replies once the session is registered and its
// history snapshot is queued, so a successful Join means the client
// will receive history before any later message.
func (c *coordinatorImpl) Join(ctx context.Context, claims dto.JoinRequest, session *registry.Session) (err error) {
	ctx, scope := c.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ChatCoordinator.Join")
	defer scope.End()
	defer scope.TraceIfError(err)

	if err := c.resolver.Authorize(ctx, claims); err != nil {
		log.Warn().
			Str("booking_id", claims.BookingID).
			Str("user_id", claims.UserID).
			Str("role", claims.Role).
			Msg("chat join denied")

		return err // nolint:wrapcheck
	}

	reply := make(chan error, 1)

	if err := c.dispatch(roomEvent{kind: eventJoin, ctx: ctx, session: session, reply: reply}, session.BookingID); err != nil {
		return err
	}

	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return failure.InternalError(ctx.Err()) // nolint:wrapcheck
	}
}

// Leave detaches the session from its room. Safe to call for sessions
// that never completed a Join.
func (c *coordinatorImpl) Leave(ctx context.Context, session *registry.Session) {
	ctx, scope := c.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ChatCoordinator.Leave")
	defer scope.End()

	if err := c.dispatch(roomEvent{kind: eventLeave, ctx: ctx, session: session}, session.BookingID); err != nil {
		log.Error().Err(err).Str("booking_id", session.BookingID).Msg("failed to dispatch chat leave")
	}
}

// Send queues an inbound message for the session's room. Delivery
// outcomes (including validation and persistence failures) are
// reported back on the session's own queue as error events.
func (c *coordinatorImpl) Send(ctx context.Context, session *registry.Session, payload dto.SendMessagePayload) {
	ctx, scope := c.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ChatCoordinator.Send")
	defer scope.End()

	if payload.BookingID != session.BookingID {
		log.Warn().
			Str("session_id", session.ID).
			Str("claimed_booking_id", payload.BookingID).
			Str("booking_id", session.BookingID).
			Msg("chat message addressed to another booking, dropping")

		c.notifyError(session, "message does not belong to this chat room")

		return
	}

	if err := c.dispatch(roomEvent{kind: eventSend, ctx: ctx, session: session, body: payload.Body}, session.BookingID); err != nil {
		c.notifyError(session, "message could not be accepted, try again")
	}
}

// ClearHistory wipes a booking's persisted messages. Only the
// restaurant's admin may clear; the reported bool tells whether a
// purge happened. Live rooms clear through their event loop so in
// flight messages are not lost half way.
func (c *coordinatorImpl) ClearHistory(ctx context.Context, bookingID, adminID string) (cleared bool, err error) {
	ctx, scope := c.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ChatCoordinator.ClearHistory")
	defer scope.End()
	defer scope.TraceIfError(err)

	claims := dto.JoinRequest{
		BookingID:        bookingID,
		UserID:           adminID,
		Role:             constant.RoleAdmin,
		RestaurantUserID: adminID,
	}

	if err := c.resolver.Authorize(ctx, claims); err != nil {
		log.Warn().Str("booking_id", bookingID).Str("user_id", adminID).Msg("chat history clear denied")

		return false, err // nolint:wrapcheck
	}

	c.mu.Lock()
	activeRoom, active := c.rooms[bookingID]

	if active && !activeRoom.closed {
		reply := make(chan error, 1)
		ev := roomEvent{kind: eventClear, ctx: ctx, reply: reply}

		select {
		case activeRoom.events <- ev:
			c.mu.Unlock()

			select {
			case err := <-reply:
				if err != nil {
					return false, err
				}

				return true, nil
			case <-ctx.Done():
				return false, failure.InternalError(ctx.Err()) // nolint:wrapcheck
			}
		default:
			c.mu.Unlock()

			return false, failure.Conflict("chat room is busy, try again") // nolint:wrapcheck
		}
	}

	c.mu.Unlock()

	// No live room; purge the store directly.
	if err := c.repo.DeleteByBooking(ctx, bookingID); err != nil {
		return false, err // nolint:wrapcheck
	}

	return true, nil
}

// Shutdown stops every room loop. New joins are rejected from the
// moment it is called.
func (c *coordinatorImpl) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	c.draining = true

	for _, activeRoom := range c.rooms {
		select {
		case activeRoom.events <- roomEvent{kind: eventStop, ctx: ctx}:
		default:
			activeRoom.closed = true
		}
	}
	c.mu.Unlock()

	done := make(chan struct{})

	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Info().Msg("Chat coordinator stopped")

		return nil
	case <-ctx.Done():
		return ctx.Err() // nolint:wrapcheck
	}
}

// dispatch enqueues an event on the booking's room, starting the room
// goroutine when none is live. The queue is never blocked on while the
// coordinator lock is held; a saturated room rejects instead.
func (c *coordinatorImpl) dispatch(ev roomEvent, bookingID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.draining {
		return failure.Conflict("chat is shutting down") // nolint:wrapcheck
	}

	activeRoom, found := c.rooms[bookingID]
	if !found || activeRoom.closed {
		activeRoom = newRoom(c, bookingID)
		c.rooms[bookingID] = activeRoom

		c.wg.Add(1)

		go activeRoom.run()
	}

	select {
	case activeRoom.events <- ev:
		return nil
	default:
		return failure.Conflict("chat room is busy, try again") // nolint:wrapcheck
	}
}

func (c *coordinatorImpl) notifyError(session *registry.Session, message string) {
	event, err := dto.NewEvent(dto.EventTypeError, dto.ErrorPayload{Message: message})
	if err != nil {
		log.Error().Err(err).Msg("failed to encode chat error event")

		return
	}

	select {
	case session.Send <- event:
	default:
		log.Warn().Str("session_id", session.ID).Msg("chat session queue full, dropping error event")
	}
}

// retire removes the room from the index. Called by the room goroutine
// itself once its queue is empty and no members remain; re-checks the
// queue under the lock because dispatch may have raced a new join in.
func (c *coordinatorImpl) retire(r *room) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(r.events) > 0 {
		return false
	}

	r.closed = true
	delete(c.rooms, r.bookingID)

	return true
}

// room is the single writer for one booking's chat state. It owns the
// in-memory history cache and the per-booking sequence counter.
type room struct {
	c         *coordinatorImpl
	bookingID string
	events    chan roomEvent

	// closed is guarded by the coordinator mutex.
	closed bool

	history  []model.ChatMessage
	hydrated bool
	nextSeq  int64
}

func newRoom(c *coordinatorImpl, bookingID string) *room {
	return &room{
		c:         c,
		bookingID: bookingID,
		events:    make(chan roomEvent, c.cfg.Chat.RoomBufferSize),
	}
}

func (r *room) run() {
	defer r.c.wg.Done()

	for ev := range r.events {
		switch ev.kind {
		case eventJoin:
			r.handleJoin(ev)
		case eventLeave:
			r.handleLeave(ev)

			if r.c.registry.CountByBooking(r.bookingID) == 0 && r.c.retire(r) {
				return
			}
		case eventSend:
			r.handleSend(ev)
		case eventClear:
			r.handleClear(ev)
		case eventStop:
			r.c.retire(r)

			return
		}
	}
}

func (r *room) handleJoin(ev roomEvent) {
	if err := r.hydrate(ev.ctx); err != nil {
		ev.reply <- failure.InternalError(err)

		return
	}

	r.c.registry.Add(ev.session)

	historyPayload := dto.HistoryPayload{}
	historyPayload.FromModels(r.bookingID, r.history)

	historyEvent, err := dto.NewEvent(dto.EventTypeHistory, historyPayload)
	if err != nil {
		log.Error().Err(err).Str("booking_id", r.bookingID).Msg("failed to encode chat history event")
		r.c.registry.Remove(ev.session.ID)
		ev.reply <- failure.InternalError(err)

		return
	}

	select {
	case ev.session.Send <- historyEvent:
	default:
		r.c.registry.Remove(ev.session.ID)
		ev.reply <- failure.InternalError(errQueueFull)

		return
	}

	r.broadcast(dto.EventTypeUserJoined, dto.PresencePayload{
		BookingID: r.bookingID,
		UserID:    ev.session.UserID,
		Username:  ev.session.Username,
		Timestamp: time.Now().UTC(),
	}, ev.session.ID)

	ev.reply <- nil
}

func (r *room) handleLeave(ev roomEvent) {
	if _, found := r.c.registry.Remove(ev.session.ID); !found {
		return
	}

	r.broadcast(dto.EventTypeUserLeft, dto.PresencePayload{
		BookingID: r.bookingID,
		UserID:    ev.session.UserID,
		Username:  ev.session.Username,
		Timestamp: time.Now().UTC(),
	}, ev.session.ID)
}

func (r *room) handleSend(ev roomEvent) {
	body := strings.TrimSpace(ev.body)

	if body == "" {
		r.c.notifyError(ev.session, "message body must not be empty")

		return
	}

	if len([]rune(body)) > r.c.cfg.Chat.MaxMessageRuneSize {
		r.c.notifyError(ev.session, "message body is too long")

		return
	}

	if err := r.hydrate(ev.ctx); err != nil {
		r.c.notifyError(ev.session, "message could not be stored, try again")

		return
	}

	auth, err := r.c.resolver.Resolve(ev.ctx, r.bookingID)
	if err != nil {
		r.c.notifyError(ev.session, "message could not be stored, try again")

		return
	}

	message := model.ChatMessage{
		ID:           uuid.New().String(),
		BookingID:    r.bookingID,
		RestaurantID: auth.RestaurantID,
		SenderID:     ev.session.UserID,
		SenderName:   ev.session.Username,
		Body:         body,
		Seq:          r.nextSeq,
		SentAt:       time.Now().UTC(),
	}

	// Persist before fan-out so every broadcast message survives a
	// replay. A failed write drops the message and tells the sender.
	persistCtx := context.WithoutCancel(ev.ctx)

	if err := r.c.repo.Insert(persistCtx, message); err != nil {
		log.Error().Err(err).Str("booking_id", r.bookingID).Msg("failed to persist chat message")
		r.c.notifyError(ev.session, "message could not be stored, try again")

		return
	}

	r.nextSeq++
	r.history = append(r.history, message)

	messageResponse := dto.ChatMessageResponse{}
	messageResponse.FromModel(message)

	r.broadcast(dto.EventTypeMessage, messageResponse, "")

	go func() {
		publishCtx := context.WithoutCancel(ev.ctx)

		kafkaMessage := kafka.Message{Key: message.BookingID, Value: messageResponse}
		if err := r.c.kafka.SendMessages(publishCtx, r.c.cfg.Kafka.Topics.ChatMessages, kafkaMessage); err != nil {
			log.Error().Err(err).Str("booking_id", message.BookingID).Msg("failed to publish chat message event")
		}
	}()
}

func (r *room) handleClear(ev roomEvent) {
	clearCtx := context.WithoutCancel(ev.ctx)

	if err := r.c.repo.DeleteByBooking(clearCtx, r.bookingID); err != nil {
		log.Error().Err(err).Str("booking_id", r.bookingID).Msg("failed to clear chat history")
		ev.reply <- err

		return
	}

	r.history = nil
	r.hydrated = true

	historyPayload := dto.HistoryPayload{}
	historyPayload.FromModels(r.bookingID, nil)

	r.broadcast(dto.EventTypeHistory, historyPayload, "")

	ev.reply <- nil
}

// hydrate loads the booking's history once per room lifetime. A fresh
// room after an idle period re-reads the store, so replays always
// reflect cleared or migrated data.
func (r *room) hydrate(ctx context.Context) error {
	if r.hydrated {
		return nil
	}

	messages, err := r.c.repo.ListByBooking(ctx, r.bookingID)
	if err != nil {
		log.Error().Err(err).Str("booking_id", r.bookingID).Msg("failed to load chat history")

		return err
	}

	r.history = messages
	r.hydrated = true

	if len(messages) > 0 {
		r.nextSeq = messages[len(messages)-1].Seq + 1
	}

	return nil
}

func (r *room) broadcast(eventType string, payload any, exceptSessionID string) {
	event, err := dto.NewEvent(eventType, payload)
	if err != nil {
		log.Error().Err(err).Str("booking_id", r.bookingID).Msg("failed to encode chat event")

		return
	}

	for _, session := range r.c.registry.ListByBooking(r.bookingID) {
		if session.ID == exceptSessionID {
			continue
		}

		select {
		case session.Send <- event:
		default:
			// A full session queue drops the event rather than stalling
			// the room. The client resynchronizes from the history
			// snapshot on its next join.
			log.Warn().
				Str("session_id", session.ID).
				Str("booking_id", r.bookingID).
				Msg("chat session queue full, dropping event")
		}
	}
}
