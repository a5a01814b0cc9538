package dto

import (
	"tavolo/internal/domains/restaurant/model"
	"tavolo/shared"
	gDto "tavolo/shared/dto"
	gModel "tavolo/shared/model"
	"tavolo/shared/timezone"

	"github.com/google/uuid"
)

type CreateRestaurantRequest struct {
	Name        string `json:"name"          validate:"required,max=100"`
	Location    string `json:"location"      validate:"omitempty,max=100"`
	Cuisine     string `json:"cuisine"       validate:"omitempty,max=50"`
	AdminUserID string `json:"admin_user_id" validate:"required,uuid4"`
	Active      *bool  `json:"active"        validate:"omitempty"`
}

func (c *CreateRestaurantRequest) ToModel(user string) model.Restaurant {
	active := true
	if c.Active != nil {
		active = *c.Active
	}

	return model.Restaurant{
		ID:          uuid.NewString(),
		Name:        c.Name,
		Location:    c.Location,
		Cuisine:     c.Cuisine,
		AdminUserID: c.AdminUserID,
		Active:      active,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  user,
			ModifiedBy: user,
		},
	}
}

type UpdateRestaurantRequest struct {
	Name        string `db:"name"          json:"name"          validate:"omitempty,max=100"`
	Location    string `db:"location"      json:"location"      validate:"omitempty,max=100"`
	Cuisine     string `db:"cuisine"       json:"cuisine"       validate:"omitempty,max=50"`
	AdminUserID string `db:"admin_user_id" json:"admin_user_id" validate:"omitempty,uuid4"`
	Active      *bool  `db:"active"        json:"active"        validate:"omitempty"`
}

type RestaurantResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Location    string `json:"location"`
	Cuisine     string `json:"cuisine"`
	AdminUserID string `json:"admin_user_id"`
	Active      bool   `json:"active"`
	gDto.Metadata
}

func (r *RestaurantResponse) FromModel(model model.Restaurant) {
	r.ID = model.ID
	r.Name = model.Name
	r.Location = model.Location
	r.Cuisine = model.Cuisine
	r.AdminUserID = model.AdminUserID
	r.Active = model.Active
	r.Metadata.FromModel(model.Metadata)
}

type GetRestaurantsResponse struct {
	Restaurants []RestaurantResponse `json:"restaurants"`
	TotalPage   int                  `json:"total_page"`
	TotalData   int                  `json:"total_data"`
}

func (r *GetRestaurantsResponse) FromModels(models []model.Restaurant, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Restaurants = make([]RestaurantResponse, len(models))
	for i, mod := range models {
		r.Restaurants[i].FromModel(mod)
	}
}
