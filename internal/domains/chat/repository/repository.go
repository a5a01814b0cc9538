package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"tavolo/infras/otel"
	"tavolo/infras/postgres"
	"tavolo/internal/domains/chat/model"
	gDto "tavolo/shared/dto"
	gRepo "tavolo/shared/repository"
)

type Message interface {
	Insert(ctx context.Context, model model.ChatMessage) error
	ListByBooking(ctx context.Context, bookingID string) ([]model.ChatMessage, error)
	DeleteByBooking(ctx context.Context, bookingID string) error
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.ChatMessage]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Message {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.ChatMessage](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

func (repo *repositoryImpl) ListByBooking(ctx context.Context, bookingID string) ([]model.ChatMessage, error) {
	params := gDto.QueryParams{
		SortBy:  model.FieldSeq,
		SortDir: gDto.SortDirAsc,
	}

	filter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldBookingID,
				Operator: gDto.FilterOperatorEq,
				Value:    bookingID,
				Table:    model.TableName,
			},
		},
	}

	return repo.GetAll(ctx, params, filter)
}

func (repo *repositoryImpl) DeleteByBooking(ctx context.Context, bookingID string) error {
	filter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldBookingID,
				Operator: gDto.FilterOperatorEq,
				Value:    bookingID,
				Table:    model.TableName,
			},
		},
	}

	return repo.Delete(ctx, filter)
}
