package dto

import (
	"tavolo/internal/domains/table/model"
	"tavolo/shared"
	gDto "tavolo/shared/dto"
	gModel "tavolo/shared/model"
	"tavolo/shared/timezone"

	"github.com/google/uuid"
)

type CreateTableRequest struct {
	RestaurantID string `json:"restaurant_id" validate:"required,uuid4"`
	Label        string `json:"label"         validate:"required,max=50"`
	Capacity     int    `json:"capacity"      validate:"required,min=1"`
	Active       *bool  `json:"active"        validate:"omitempty"`
}

func (c *CreateTableRequest) ToModel(user string) model.Table {
	active := true
	if c.Active != nil {
		active = *c.Active
	}

	return model.Table{
		ID:           uuid.NewString(),
		RestaurantID: c.RestaurantID,
		Label:        c.Label,
		Capacity:     c.Capacity,
		Active:       active,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  user,
			ModifiedBy: user,
		},
	}
}

type UpdateTableRequest struct {
	Label    string `db:"label"    json:"label"    validate:"omitempty,max=50"`
	Capacity *int   `db:"capacity" json:"capacity" validate:"omitempty,min=1"`
	Active   *bool  `db:"active"   json:"active"   validate:"omitempty"`
}

type TableResponse struct {
	ID           string `json:"id"`
	RestaurantID string `json:"restaurant_id"`
	Label        string `json:"label"`
	Capacity     int    `json:"capacity"`
	Active       bool   `json:"active"`
	gDto.Metadata
}

func (r *TableResponse) FromModel(model model.Table) {
	r.ID = model.ID
	r.RestaurantID = model.RestaurantID
	r.Label = model.Label
	r.Capacity = model.Capacity
	r.Active = model.Active
	r.Metadata.FromModel(model.Metadata)
}

type GetTablesResponse struct {
	Tables    []TableResponse `json:"tables"`
	TotalPage int             `json:"total_page"`
	TotalData int             `json:"total_data"`
}

func (r *GetTablesResponse) FromModels(models []model.Table, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Tables = make([]TableResponse, len(models))
	for i, mod := range models {
		r.Tables[i].FromModel(mod)
	}
}
