package transport

import "time"

type CreateLeaseRequest struct {
	LotID        string     `json:"lotId" validate:"required,uuid"`
	TenantID     string     `json:"tenantId" validate:"required,uuid"`
	StartDate    time.Time  `json:"startDate" validate:"required"`
	EndDate      *time.Time `json:"endDate"`
	RentCents    int64      `json:"rentCents" validate:"required,gt=0"`
	ChargesCents int64      `json:"chargesCents" validate:"gte=0"`
	DepositCents int64      `json:"depositCents" validate:"gte=0"`
}

type UpdateLeaseRequest struct {
	StartDate    time.Time  `json:"startDate" validate:"required"`
	EndDate      *time.Time `json:"endDate"`
	RentCents    int64      `json:"rentCents" validate:"required,gt=0"`
	ChargesCents int64      `json:"chargesCents" validate:"gte=0"`
	DepositCents int64      `json:"depositCents" validate:"gte=0"`
}

type LeaseResponse struct {
	ID           string     `json:"id"`
	LotID        string     `json:"lotId"`
	TenantID     string     `json:"tenantId"`
	StartDate    time.Time  `json:"startDate"`
	EndDate      *time.Time `json:"endDate,omitempty"`
	RentCents    int64      `json:"rentCents"`
	ChargesCents int64      `json:"chargesCents"`
	DepositCents int64      `json:"depositCents"`
	Status       string     `json:"status"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

type ListLeasesQuery struct {
	LotID    string `form:"lotId"`
	TenantID string `form:"tenantId"`
}
