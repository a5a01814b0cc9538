package model

import (
	"tavolo/shared/model"
	"time"
)

const (
	TableName  = "bookings"
	EntityName = "booking"

	FieldID           = "id"
	FieldUserID       = "user_id"
	FieldRestaurantID = "restaurant_id"
	FieldTableID      = "table_id"
	FieldBookingDate  = "booking_date"
	FieldStartTime    = "start_time"
	FieldEndTime      = "end_time"
	FieldGuestCount   = "guest_count"
	FieldStatus       = "status"
)

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

type Booking struct {
	ID           string    `db:"id"`
	UserID       string    `db:"user_id"`
	RestaurantID string    `db:"restaurant_id"`
	TableID      *string   `db:"table_id"`
	BookingDate  time.Time `db:"booking_date"`
	StartTime    time.Time `db:"start_time"`
	EndTime      time.Time `db:"end_time"`
	GuestCount   int       `db:"guest_count"`
	Status       string    `db:"status"`
	model.Metadata
}
