package model

import "tavolo/shared/model"

const (
	TableName  = "restaurants"
	EntityName = "restaurant"

	FieldID          = "id"
	FieldName        = "name"
	FieldLocation    = "location"
	FieldCuisine     = "cuisine"
	FieldAdminUserID = "admin_user_id"
	FieldActive      = "active"
)

type Restaurant struct {
	ID          string `db:"id"`
	Name        string `db:"name"`
	Location    string `db:"location"`
	Cuisine     string `db:"cuisine"`
	AdminUserID string `db:"admin_user_id"`
	Active      bool   `db:"active"`
	model.Metadata
}
