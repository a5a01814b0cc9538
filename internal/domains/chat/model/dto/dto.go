package dto

import (
	"encoding/json"
	"time"

	"tavolo/internal/domains/chat/model"
)

// Event types sent to connected chat clients.
const (
	EventTypeHistory      = "history"
	EventTypeMessage      = "message"
	EventTypeUserJoined   = "userJoined"
	EventTypeUserLeft     = "userLeft"
	EventTypeError        = "error"
	EventTypeAccessDenied = "accessDenied"
)

// Event types received from chat clients.
const (
	EventTypeSendMessage = "sendMessage"
)

// Event is the envelope for every frame on a chat websocket, in both
// directions.
type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

func NewEvent(eventType string, data any) (Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Event{}, err
	}

	return Event{Type: eventType, Data: raw}, nil
}

// JoinRequest carries the identity claims presented on the websocket
// handshake query string.
type JoinRequest struct {
	BookingID        string `json:"booking_id"         validate:"required,uuid4"`
	UserID           string `json:"user_id"            validate:"required,uuid4"`
	Username         string `json:"username"           validate:"required,max=100"`
	Role             string `json:"role"               validate:"required,oneof=admin user"`
	RestaurantUserID string `json:"restaurant_user_id" validate:"omitempty,uuid4"`
}

// SendMessagePayload is the inbound message frame. The booking id must
// match the session's room; sender fields are informational only, the
// stored identity always comes from the authenticated session.
type SendMessagePayload struct {
	BookingID string `json:"booking_id"`
	SenderID  string `json:"sender_id,omitempty"`
	Sender    string `json:"sender,omitempty"`
	Body      string `json:"body"`
}

type ChatMessageResponse struct {
	ID           string    `json:"id"`
	BookingID    string    `json:"booking_id"`
	RestaurantID string    `json:"restaurant_id"`
	SenderID     string    `json:"sender_id"`
	SenderName   string    `json:"sender_name"`
	Body         string    `json:"body"`
	Seq          int64     `json:"seq"`
	SentAt       time.Time `json:"sent_at"`
}

func (c *ChatMessageResponse) FromModel(message model.ChatMessage) {
	c.ID = message.ID
	c.BookingID = message.BookingID
	c.RestaurantID = message.RestaurantID
	c.SenderID = message.SenderID
	c.SenderName = message.SenderName
	c.Body = message.Body
	c.Seq = message.Seq
	c.SentAt = message.SentAt
}

type HistoryPayload struct {
	BookingID string                `json:"booking_id"`
	Messages  []ChatMessageResponse `json:"messages"`
}

func (h *HistoryPayload) FromModels(bookingID string, messages []model.ChatMessage) {
	h.BookingID = bookingID
	h.Messages = make([]ChatMessageResponse, 0, len(messages))

	for _, message := range messages {
		resp := ChatMessageResponse{}
		resp.FromModel(message)
		h.Messages = append(h.Messages, resp)
	}
}

type PresencePayload struct {
	BookingID string    `json:"booking_id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Timestamp time.Time `json:"timestamp"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
