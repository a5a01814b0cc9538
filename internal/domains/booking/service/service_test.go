package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"tavolo/config"
	"tavolo/infras/kafka"
	kafkaMocks "tavolo/infras/kafka/mocks"
	"tavolo/infras/otel/mocks"
	bookingMocks "tavolo/internal/domains/booking/mocks"
	"tavolo/internal/domains/booking/model"
	"tavolo/internal/domains/booking/model/dto"
	"tavolo/internal/domains/booking/service"
	chatMocks "tavolo/internal/domains/chat/mocks"
	restaurantMocks "tavolo/internal/domains/restaurant/mocks"
	tableMocks "tavolo/internal/domains/table/mocks"
	cacheMocks "tavolo/shared/cache/mocks"
	"tavolo/shared/constant"
	gModel "tavolo/shared/model"
	"tavolo/shared/timezone"
)

const (
	testRestaurantID = "7b9de42e-30b4-4591-a84f-24b017f0a53c"
	testTableID      = "a2f713a4-5f93-49cc-a2a5-3f2ab4f9f01d"
	testBookingID    = "c1a9b0d2-8f44-4a0a-9c36-0d1f54b0e7aa"
	testUserID       = "d4e5f6a7-b8c9-4d0e-9f1a-2b3c4d5e6f70"
)

// awaitSignals waits for n completions of the async cache-invalidation
// goroutine so mock calls never outlive the test.
func awaitSignals(t *testing.T, ch <-chan struct{}, n int) {
	t.Helper()

	for i := 0; i < n; i++ {
		select {
		case <-ch:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for async cache invalidation")
		}
	}
}

func TestBookingService_Create(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := bookingMocks.NewMockBooking(ctrl)
	mockRestaurantRepo := restaurantMocks.NewMockRestaurant(ctrl)
	mockTableRepo := tableMocks.NewMockTable(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	mockKafka := kafkaMocks.NewMockClient(ctrl)
	mockResolver := chatMocks.NewMockResolver(ctrl)
	mockOtel := mocks.NewOtel()

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600

	svc := service.New(mockRepo, mockRestaurantRepo, mockTableRepo, cfg, mockCache, mockKafka, mockResolver, mockOtel)

	tableID := testTableID

	validReq := dto.CreateBookingRequest{
		RestaurantID: testRestaurantID,
		BookingDate:  "2026-09-15",
		StartTime:    "19:00",
		EndTime:      "21:00",
		GuestCount:   4,
	}

	// Clear is called once per invalidated prefix after a successful insert.
	expectInvalidation := func() <-chan struct{} {
		cleared := make(chan struct{}, 2)

		mockCache.EXPECT().
			Clear(gomock.Any(), gomock.Any()).
			DoAndReturn(func(context.Context, string) error {
				cleared <- struct{}{}

				return nil
			}).
			Times(2)

		return cleared
	}

	tests := []struct {
		name      string
		req       dto.CreateBookingRequest
		setupMock func() <-chan struct{}
		wantErr   bool
	}{
		{
			name: "successful booking without table",
			req:  validReq,
			setupMock: func() <-chan struct{} {
				mockRestaurantRepo.EXPECT().
					Exist(gomock.Any(), gomock.Any()).
					Return(true, nil)

				mockRepo.EXPECT().
					Insert(gomock.Any(), gomock.Any()).
					Return(nil)

				return expectInvalidation()
			},
			wantErr: false,
		},
		{
			name: "successful booking with table",
			req: func() dto.CreateBookingRequest {
				req := validReq
				req.TableID = &tableID

				return req
			}(),
			setupMock: func() <-chan struct{} {
				mockRestaurantRepo.EXPECT().
					Exist(gomock.Any(), gomock.Any()).
					Return(true, nil)

				mockTableRepo.EXPECT().
					Exist(gomock.Any(), gomock.Any()).
					Return(true, nil)

				mockRepo.EXPECT().
					Insert(gomock.Any(), gomock.Any()).
					Return(nil)

				return expectInvalidation()
			},
			wantErr: false,
		},
		{
			name: "restaurant lookup error",
			req:  validReq,
			setupMock: func() <-chan struct{} {
				mockRestaurantRepo.EXPECT().
					Exist(gomock.Any(), gomock.Any()).
					Return(false, errors.New("db error"))

				return nil
			},
			wantErr: true,
		},
		{
			name: "restaurant does not exist",
			req:  validReq,
			setupMock: func() <-chan struct{} {
				mockRestaurantRepo.EXPECT().
					Exist(gomock.Any(), gomock.Any()).
					Return(false, nil)

				return nil
			},
			wantErr: true,
		},
		{
			name: "table does not belong to restaurant",
			req: func() dto.CreateBookingRequest {
				req := validReq
				req.TableID = &tableID

				return req
			}(),
			setupMock: func() <-chan struct{} {
				mockRestaurantRepo.EXPECT().
					Exist(gomock.Any(), gomock.Any()).
					Return(true, nil)

				mockTableRepo.EXPECT().
					Exist(gomock.Any(), gomock.Any()).
					Return(false, nil)

				return nil
			},
			wantErr: true,
		},
		{
			name: "invalid booking date format",
			req: func() dto.CreateBookingRequest {
				req := validReq
				req.BookingDate = "15/09/2026"

				return req
			}(),
			setupMock: func() <-chan struct{} {
				mockRestaurantRepo.EXPECT().
					Exist(gomock.Any(), gomock.Any()).
					Return(true, nil)

				return nil
			},
			wantErr: true,
		},
		{
			name: "insert error",
			req:  validReq,
			setupMock: func() <-chan struct{} {
				mockRestaurantRepo.EXPECT().
					Exist(gomock.Any(), gomock.Any()).
					Return(true, nil)

				mockRepo.EXPECT().
					Insert(gomock.Any(), gomock.Any()).
					Return(errors.New("insert error"))

				return nil
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			done := tt.setupMock()

			ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, testUserID)
			err := svc.Create(ctx, tt.req)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}

			if done != nil {
				awaitSignals(t, done, 2)
			}
		})
	}
}

func TestBookingService_UpdateStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := bookingMocks.NewMockBooking(ctrl)
	mockRestaurantRepo := restaurantMocks.NewMockRestaurant(ctrl)
	mockTableRepo := tableMocks.NewMockTable(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	mockKafka := kafkaMocks.NewMockClient(ctrl)
	mockResolver := chatMocks.NewMockResolver(ctrl)
	mockOtel := mocks.NewOtel()

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600
	cfg.Kafka.Topics.BookingStatus = "booking.status"

	svc := service.New(mockRepo, mockRestaurantRepo, mockTableRepo, cfg, mockCache, mockKafka, mockResolver, mockOtel)

	pendingBooking := model.Booking{
		ID:           testBookingID,
		UserID:       testUserID,
		RestaurantID: testRestaurantID,
		BookingDate:  timezone.Now(),
		StartTime:    timezone.Now(),
		EndTime:      timezone.Now(),
		GuestCount:   4,
		Status:       model.StatusPending,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  testUserID,
			ModifiedBy: testUserID,
		},
	}

	tests := []struct {
		name      string
		req       dto.UpdateBookingStatusRequest
		setupMock func() (<-chan struct{}, <-chan kafka.Message)
		wantErr   bool
	}{
		{
			name: "booking lookup error",
			req:  dto.UpdateBookingStatusRequest{Status: model.StatusConfirmed},
			setupMock: func() (<-chan struct{}, <-chan kafka.Message) {
				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(model.Booking{}, errors.New("db error"))

				return nil, nil
			},
			wantErr: true,
		},
		{
			name: "booking not found",
			req:  dto.UpdateBookingStatusRequest{Status: model.StatusConfirmed},
			setupMock: func() (<-chan struct{}, <-chan kafka.Message) {
				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(model.Booking{}, nil)

				return nil, nil
			},
			wantErr: true,
		},
		{
			name: "unchanged status is a no-op",
			req:  dto.UpdateBookingStatusRequest{Status: model.StatusPending},
			setupMock: func() (<-chan struct{}, <-chan kafka.Message) {
				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(pendingBooking, nil)

				return nil, nil
			},
			wantErr: false,
		},
		{
			name: "update error",
			req:  dto.UpdateBookingStatusRequest{Status: model.StatusConfirmed},
			setupMock: func() (<-chan struct{}, <-chan kafka.Message) {
				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(pendingBooking, nil)

				mockRepo.EXPECT().
					Update(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(errors.New("update error"))

				return nil, nil
			},
			wantErr: true,
		},
		{
			name: "successful status change publishes event",
			req:  dto.UpdateBookingStatusRequest{Status: model.StatusConfirmed},
			setupMock: func() (<-chan struct{}, <-chan kafka.Message) {
				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(pendingBooking, nil)

				mockRepo.EXPECT().
					Update(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil)

				published := make(chan kafka.Message, 1)

				mockKafka.EXPECT().
					SendMessages(gomock.Any(), "booking.status", gomock.Any()).
					DoAndReturn(func(_ context.Context, _ string, messages ...kafka.Message) error {
						published <- messages[0]

						return nil
					})

				mockCache.EXPECT().
					Delete(gomock.Any(), gomock.Any()).
					Return(nil)

				cleared := make(chan struct{}, 2)

				mockCache.EXPECT().
					Clear(gomock.Any(), gomock.Any()).
					DoAndReturn(func(context.Context, string) error {
						cleared <- struct{}{}

						return nil
					}).
					Times(2)

				return cleared, published
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			done, published := tt.setupMock()

			ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, testUserID)
			err := svc.UpdateStatus(ctx, tt.req, testBookingID)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}

			if published != nil {
				select {
				case msg := <-published:
					event, ok := msg.Value.(dto.BookingStatusEvent)
					require.True(t, ok)

					assert.Equal(t, testBookingID, msg.Key)
					assert.Equal(t, testBookingID, event.BookingID)
					assert.Equal(t, testRestaurantID, event.RestaurantID)
					assert.Equal(t, model.StatusPending, event.OldStatus)
					assert.Equal(t, model.StatusConfirmed, event.NewStatus)
					assert.Equal(t, testUserID, event.ChangedBy)
					assert.NotEmpty(t, event.ChangedAt)
				case <-time.After(2 * time.Second):
					t.Fatal("timed out waiting for booking status event")
				}
			}

			if done != nil {
				awaitSignals(t, done, 2)
			}
		})
	}
}

func TestBookingService_Delete(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := bookingMocks.NewMockBooking(ctrl)
	mockRestaurantRepo := restaurantMocks.NewMockRestaurant(ctrl)
	mockTableRepo := tableMocks.NewMockTable(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	mockKafka := kafkaMocks.NewMockClient(ctrl)
	mockResolver := chatMocks.NewMockResolver(ctrl)
	mockOtel := mocks.NewOtel()

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600

	svc := service.New(mockRepo, mockRestaurantRepo, mockTableRepo, cfg, mockCache, mockKafka, mockResolver, mockOtel)

	tests := []struct {
		name      string
		setupMock func() <-chan struct{}
		wantErr   bool
	}{
		{
			name: "successful delete",
			setupMock: func() <-chan struct{} {
				mockRepo.EXPECT().
					Exist(gomock.Any(), gomock.Any()).
					Return(true, nil)

				mockRepo.EXPECT().
					Delete(gomock.Any(), gomock.Any()).
					Return(nil)

				// The chat access cache must forget the booking.
				mockResolver.EXPECT().Invalidate(testBookingID)

				mockCache.EXPECT().
					Delete(gomock.Any(), gomock.Any()).
					Return(nil)

				cleared := make(chan struct{}, 2)

				mockCache.EXPECT().
					Clear(gomock.Any(), gomock.Any()).
					DoAndReturn(func(context.Context, string) error {
						cleared <- struct{}{}

						return nil
					}).
					Times(2)

				return cleared
			},
			wantErr: false,
		},
		{
			name: "booking not found",
			setupMock: func() <-chan struct{} {
				mockRepo.EXPECT().
					Exist(gomock.Any(), gomock.Any()).
					Return(false, nil)

				return nil
			},
			wantErr: true,
		},
		{
			name: "existence check error",
			setupMock: func() <-chan struct{} {
				mockRepo.EXPECT().
					Exist(gomock.Any(), gomock.Any()).
					Return(false, errors.New("db error"))

				return nil
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			done := tt.setupMock()

			err := svc.Delete(context.Background(), testBookingID)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}

			if done != nil {
				awaitSignals(t, done, 2)
			}
		})
	}
}
