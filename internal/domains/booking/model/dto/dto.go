package dto

import (
	"time"

	"github.com/google/uuid"
	"tavolo/internal/domains/booking/model"
	"tavolo/shared"
	gDto "tavolo/shared/dto"
	gModel "tavolo/shared/model"
	"tavolo/shared/timezone"
)

type CreateBookingRequest struct {
	RestaurantID string  `json:"restaurant_id" validate:"required,uuid4"`
	TableID      *string `json:"table_id"      validate:"omitempty,uuid4"`
	BookingDate  string  `json:"booking_date"  validate:"required"`
	StartTime    string  `json:"start_time"    validate:"required"`
	EndTime      string  `json:"end_time"      validate:"required"`
	GuestCount   int     `json:"guest_count"   validate:"required,min=1,max=50"`
	Status       string  `json:"status"        validate:"omitempty,oneof=pending confirmed cancelled"`
}

func (c *CreateBookingRequest) ToModel(user string) (model.Booking, error) {
	bookingDate, err := time.Parse("2006-01-02", c.BookingDate)
	if err != nil {
		return model.Booking{}, err
	}

	startTime, err := time.Parse("15:04", c.StartTime)
	if err != nil {
		return model.Booking{}, err
	}

	endTime, err := time.Parse("15:04", c.EndTime)
	if err != nil {
		return model.Booking{}, err
	}

	status := model.StatusPending
	if c.Status != "" {
		status = c.Status
	}

	return model.Booking{
		ID:           uuid.NewString(),
		UserID:       user,
		RestaurantID: c.RestaurantID,
		TableID:      c.TableID,
		BookingDate:  bookingDate,
		StartTime:    startTime,
		EndTime:      endTime,
		GuestCount:   c.GuestCount,
		Status:       status,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  user,
			ModifiedBy: user,
		},
	}, nil
}

type UpdateBookingRequest struct {
	TableID     *string `db:"table_id"     json:"table_id"     validate:"omitempty,uuid4"`
	BookingDate string  `json:"booking_date" validate:"omitempty"`
	StartTime   string  `json:"start_time"   validate:"omitempty"`
	EndTime     string  `json:"end_time"     validate:"omitempty"`
	GuestCount  *int    `db:"guest_count"  json:"guest_count"  validate:"omitempty,min=1,max=50"`
	Status      string  `db:"status"       json:"status"       validate:"omitempty,oneof=pending confirmed cancelled"`
}

type UpdateBookingStatusRequest struct {
	Status string `db:"status" json:"status" validate:"required,oneof=pending confirmed cancelled"`
}

type BookingResponse struct {
	ID           string  `json:"id"`
	UserID       string  `json:"user_id"`
	RestaurantID string  `json:"restaurant_id"`
	TableID      *string `json:"table_id,omitempty"`
	BookingDate  string  `json:"booking_date"`
	StartTime    string  `json:"start_time"`
	EndTime      string  `json:"end_time"`
	GuestCount   int     `json:"guest_count"`
	Status       string  `json:"status"`
	gDto.Metadata
}

func (r *BookingResponse) FromModel(model model.Booking) {
	r.ID = model.ID
	r.UserID = model.UserID
	r.RestaurantID = model.RestaurantID
	r.TableID = model.TableID
	r.BookingDate = model.BookingDate.Format("2006-01-02")
	r.StartTime = model.StartTime.Format("15:04")
	r.EndTime = model.EndTime.Format("15:04")
	r.GuestCount = model.GuestCount
	r.Status = model.Status
	r.Metadata.FromModel(model.Metadata)
}

type GetBookingsResponse struct {
	Bookings  []BookingResponse `json:"bookings"`
	TotalPage int               `json:"total_page"`
	TotalData int               `json:"total_data"`
}

func (r *GetBookingsResponse) FromModels(models []model.Booking, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Bookings = make([]BookingResponse, len(models))
	for i, mod := range models {
		r.Bookings[i].FromModel(mod)
	}
}

// BookingStatusEvent is the payload published to Kafka when a booking's
// status transitions.
type BookingStatusEvent struct {
	BookingID    string `json:"booking_id"`
	RestaurantID string `json:"restaurant_id"`
	UserID       string `json:"user_id"`
	OldStatus    string `json:"old_status"`
	NewStatus    string `json:"new_status"`
	ChangedBy    string `json:"changed_by"`
	ChangedAt    string `json:"changed_at"`
}
