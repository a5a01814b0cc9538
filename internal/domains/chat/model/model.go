package model

import (
	"time"
)

const (
	TableName  = "chat_messages"
	EntityName = "chat_message"

	FieldID           = "id"
	FieldBookingID    = "booking_id"
	FieldRestaurantID = "restaurant_id"
	FieldSenderID     = "sender_id"
	FieldSenderName   = "sender_name"
	FieldBody         = "body"
	FieldSeq          = "seq"
	FieldSentAt       = "sent_at"
)

// ChatMessage is a single persisted message in a booking's chat room.
// Seq is assigned per booking in send order, so ordering by it alone
// reproduces the room's message order on replay.
type ChatMessage struct {
	ID           string    `db:"id"`
	BookingID    string    `db:"booking_id"`
	RestaurantID string    `db:"restaurant_id"`
	SenderID     string    `db:"sender_id"`
	SenderName   string    `db:"sender_name"`
	Body         string    `db:"body"`
	Seq          int64     `db:"seq"`
	SentAt       time.Time `db:"sent_at"`
}
