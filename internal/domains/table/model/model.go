package model

import "tavolo/shared/model"

const (
	TableName  = "restaurant_tables"
	EntityName = "table"

	FieldID           = "id"
	FieldRestaurantID = "restaurant_id"
	FieldLabel        = "label"
	FieldCapacity     = "capacity"
	FieldActive       = "active"
)

type Table struct {
	ID           string `db:"id"`
	RestaurantID string `db:"restaurant_id"`
	Label        string `db:"label"`
	Capacity     int    `db:"capacity"`
	Active       bool   `db:"active"`
	model.Metadata
}
