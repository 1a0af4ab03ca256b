package transport

import "time"

type CreateBuildingRequest struct {
	Name         string  `json:"name" validate:"required,min=1,max=200"`
	AddressLine1 string  `json:"addressLine1" validate:"required,max=200"`
	AddressLine2 *string `json:"addressLine2" validate:"omitempty,max=200"`
	PostalCode   string  `json:"postalCode" validate:"required,max=20"`
	City         string  `json:"city" validate:"required,max=100"`
	Country      string  `json:"country" validate:"required,len=2"`
}

type UpdateBuildingRequest = CreateBuildingRequest

type BuildingResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	AddressLine1 string    `json:"addressLine1"`
	AddressLine2 *string   `json:"addressLine2,omitempty"`
	PostalCode   string    `json:"postalCode"`
	City         string    `json:"city"`
	Country      string    `json:"country"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type ListBuildingsQuery struct {
	Search   string `form:"search"`
	Page     int    `form:"page"`
	PageSize int    `form:"pageSize"`
}

type ListBuildingsResponse struct {
	Buildings  []BuildingResponse `json:"buildings"`
	Total      int                `json:"total"`
	Page       int                `json:"page"`
	PageSize   int                `json:"pageSize"`
	TotalPages int                `json:"totalPages"`
}

type CreateLotRequest struct {
	Reference string   `json:"reference" validate:"required,max=50"`
	Floor     *int     `json:"floor" validate:"omitempty,gte=-5,lte=200"`
	SurfaceM2 *float64 `json:"surfaceM2" validate:"omitempty,gt=0"`
	RoomCount *int     `json:"roomCount" validate:"omitempty,gt=0"`
}

type UpdateLotRequest = CreateLotRequest

type LotResponse struct {
	ID         string    `json:"id"`
	BuildingID string    `json:"buildingId"`
	Reference  string    `json:"reference"`
	Floor      *int      `json:"floor,omitempty"`
	SurfaceM2  *float64  `json:"surfaceM2,omitempty"`
	RoomCount  *int      `json:"roomCount,omitempty"`
	Occupied   bool      `json:"occupied"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
