package authz_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"tavolo/infras/otel/mocks"
	bookingMocks "tavolo/internal/domains/booking/mocks"
	bookingModel "tavolo/internal/domains/booking/model"
	"tavolo/internal/domains/chat/authz"
	chatDto "tavolo/internal/domains/chat/model/dto"
	restaurantMocks "tavolo/internal/domains/restaurant/mocks"
	restaurantModel "tavolo/internal/domains/restaurant/model"
)

const (
	testBookingID = "b69cbef1-6ab4-4f55-9c8e-ef3a2b1f7e51"
	testOwnerID   = "7cf8a3fe-2b3f-42d1-90ba-01c7a0c3f9ad"
	testAdminID   = "3f0b5f90-99bc-4f0e-b2c2-dfd2c2e5c302"
	testOtherID   = "19d5f41c-72d2-4a40-b6b0-74a1a6a9609e"
	testRestoID   = "5e9a7c41-4b07-4ca8-a2e7-dd9f2b9e01b7"
)

func testBooking() bookingModel.Booking {
	return bookingModel.Booking{
		ID:           testBookingID,
		UserID:       testOwnerID,
		RestaurantID: testRestoID,
	}
}

func testRestaurant() restaurantModel.Restaurant {
	return restaurantModel.Restaurant{
		ID:          testRestoID,
		AdminUserID: testAdminID,
	}
}

func TestResolverAuthorize(t *testing.T) {
	tests := []struct {
		name      string
		claims    chatDto.JoinRequest
		setupMock func(bookingRepo *bookingMocks.MockBooking, restaurantRepo *restaurantMocks.MockRestaurant)
		wantErr   bool
	}{
		{
			name: "booking owner is allowed",
			claims: chatDto.JoinRequest{
				BookingID: testBookingID,
				UserID:    testOwnerID,
				Role:      "user",
			},
			setupMock: func(bookingRepo *bookingMocks.MockBooking, restaurantRepo *restaurantMocks.MockRestaurant) {
				bookingRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(testBooking(), nil)
				restaurantRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(testRestaurant(), nil)
			},
			wantErr: false,
		},
		{
			name: "restaurant admin is allowed",
			claims: chatDto.JoinRequest{
				BookingID:        testBookingID,
				UserID:           testAdminID,
				Role:             "admin",
				RestaurantUserID: testAdminID,
			},
			setupMock: func(bookingRepo *bookingMocks.MockBooking, restaurantRepo *restaurantMocks.MockRestaurant) {
				bookingRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(testBooking(), nil)
				restaurantRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(testRestaurant(), nil)
			},
			wantErr: false,
		},
		{
			name: "stranger with user role is denied",
			claims: chatDto.JoinRequest{
				BookingID: testBookingID,
				UserID:    testOtherID,
				Role:      "user",
			},
			setupMock: func(bookingRepo *bookingMocks.MockBooking, restaurantRepo *restaurantMocks.MockRestaurant) {
				bookingRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(testBooking(), nil)
				restaurantRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(testRestaurant(), nil)
			},
			wantErr: true,
		},
		{
			name: "owner claiming admin role is denied",
			claims: chatDto.JoinRequest{
				BookingID:        testBookingID,
				UserID:           testOwnerID,
				Role:             "admin",
				RestaurantUserID: testOwnerID,
			},
			setupMock: func(bookingRepo *bookingMocks.MockBooking, restaurantRepo *restaurantMocks.MockRestaurant) {
				bookingRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(testBooking(), nil)
				restaurantRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(testRestaurant(), nil)
			},
			wantErr: true,
		},
		{
			name: "admin with mismatched restaurant user claim is denied",
			claims: chatDto.JoinRequest{
				BookingID:        testBookingID,
				UserID:           testAdminID,
				Role:             "admin",
				RestaurantUserID: testOtherID,
			},
			setupMock: func(bookingRepo *bookingMocks.MockBooking, restaurantRepo *restaurantMocks.MockRestaurant) {
				bookingRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(testBooking(), nil)
				restaurantRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(testRestaurant(), nil)
			},
			wantErr: true,
		},
		{
			name: "unknown role is denied",
			claims: chatDto.JoinRequest{
				BookingID: testBookingID,
				UserID:    testOwnerID,
				Role:      "superuser",
			},
			setupMock: func(bookingRepo *bookingMocks.MockBooking, restaurantRepo *restaurantMocks.MockRestaurant) {
				bookingRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(testBooking(), nil)
				restaurantRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(testRestaurant(), nil)
			},
			wantErr: true,
		},
		{
			name: "unknown booking denies access",
			claims: chatDto.JoinRequest{
				BookingID: testBookingID,
				UserID:    testOwnerID,
				Role:      "user",
			},
			setupMock: func(bookingRepo *bookingMocks.MockBooking, restaurantRepo *restaurantMocks.MockRestaurant) {
				bookingRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(bookingModel.Booking{}, nil)
			},
			wantErr: true,
		},
		{
			name: "booking whose restaurant is gone denies access",
			claims: chatDto.JoinRequest{
				BookingID: testBookingID,
				UserID:    testOwnerID,
				Role:      "user",
			},
			setupMock: func(bookingRepo *bookingMocks.MockBooking, restaurantRepo *restaurantMocks.MockRestaurant) {
				bookingRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(testBooking(), nil)
				restaurantRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(restaurantModel.Restaurant{}, nil)
			},
			wantErr: true,
		},
		{
			name: "booking store failure denies access",
			claims: chatDto.JoinRequest{
				BookingID: testBookingID,
				UserID:    testOwnerID,
				Role:      "user",
			},
			setupMock: func(bookingRepo *bookingMocks.MockBooking, restaurantRepo *restaurantMocks.MockRestaurant) {
				bookingRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(bookingModel.Booking{}, errors.New("database error"))
			},
			wantErr: true,
		},
		{
			name: "restaurant store failure denies access",
			claims: chatDto.JoinRequest{
				BookingID: testBookingID,
				UserID:    testOwnerID,
				Role:      "user",
			},
			setupMock: func(bookingRepo *bookingMocks.MockBooking, restaurantRepo *restaurantMocks.MockRestaurant) {
				bookingRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(testBooking(), nil)
				restaurantRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(restaurantModel.Restaurant{}, errors.New("database error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockBookingRepo := bookingMocks.NewMockBooking(ctrl)
			mockRestaurantRepo := restaurantMocks.NewMockRestaurant(ctrl)
			mockOtel := mocks.NewOtel()

			tt.setupMock(mockBookingRepo, mockRestaurantRepo)

			resolver := authz.New(mockBookingRepo, mockRestaurantRepo, mockOtel)

			err := resolver.Authorize(context.Background(), tt.claims)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestResolverCachesResolvedBookings(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockBookingRepo := bookingMocks.NewMockBooking(ctrl)
	mockRestaurantRepo := restaurantMocks.NewMockRestaurant(ctrl)
	mockOtel := mocks.NewOtel()

	// A single store round-trip serves every later authorization.
	mockBookingRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(testBooking(), nil).Times(1)
	mockRestaurantRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(testRestaurant(), nil).Times(1)

	resolver := authz.New(mockBookingRepo, mockRestaurantRepo, mockOtel)

	ctx := context.Background()

	for range 3 {
		auth, err := resolver.Resolve(ctx, testBookingID)
		assert.NoError(t, err)
		assert.Equal(t, testOwnerID, auth.OwnerUserID)
		assert.Equal(t, testAdminID, auth.RestaurantAdminID)
	}
}

func TestResolverInvalidateForcesReload(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockBookingRepo := bookingMocks.NewMockBooking(ctrl)
	mockRestaurantRepo := restaurantMocks.NewMockRestaurant(ctrl)
	mockOtel := mocks.NewOtel()

	mockBookingRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(testBooking(), nil).Times(2)
	mockRestaurantRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(testRestaurant(), nil).Times(2)

	resolver := authz.New(mockBookingRepo, mockRestaurantRepo, mockOtel)

	ctx := context.Background()

	_, err := resolver.Resolve(ctx, testBookingID)
	assert.NoError(t, err)

	resolver.Invalidate(testBookingID)

	_, err = resolver.Resolve(ctx, testBookingID)
	assert.NoError(t, err)
}

func TestResolverPreload(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockBookingRepo := bookingMocks.NewMockBooking(ctrl)
	mockRestaurantRepo := restaurantMocks.NewMockRestaurant(ctrl)
	mockOtel := mocks.NewOtel()

	mockBookingRepo.EXPECT().
		GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]bookingModel.Booking{testBooking()}, nil)
	mockRestaurantRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(testRestaurant(), nil)

	resolver := authz.New(mockBookingRepo, mockRestaurantRepo, mockOtel)

	err := resolver.Preload(context.Background())
	assert.NoError(t, err)

	// Preloaded bookings authorize without further store access.
	err = resolver.Authorize(context.Background(), chatDto.JoinRequest{
		BookingID: testBookingID,
		UserID:    testOwnerID,
		Role:      "user",
	})
	assert.NoError(t, err)
}
