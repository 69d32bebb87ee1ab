package delivery

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusDelayed   Status = "delayed"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusShipped, StatusDelivered, StatusDelayed:
		return true
	default:
		return false
	}
}

type Delivery struct {
	ID            string     `json:"id"`
	ItemName      string     `json:"itemName"`
	Supplier      string     `json:"supplier"`
	ExpectedDate  time.Time  `json:"expectedDate"`
	DeliveredDate *time.Time `json:"deliveredDate,omitempty"`
	Status        Status     `json:"status"`
	Notes         string     `json:"notes"`
	ProjectID     string     `json:"projectId"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

type CreateDeliveryRequest struct {
	ItemName     string    `json:"itemName" binding:"required"`
	Supplier     string    `json:"supplier" binding:"required"`
	ExpectedDate time.Time `json:"expectedDate" binding:"required"`
	Notes        string    `json:"notes"`
	ProjectID    string    `json:"projectId" binding:"required,uuid"`
}

type UpdateDeliveryRequest struct {
	ExpectedDate  *time.Time `json:"expectedDate"`
	DeliveredDate *time.Time `json:"deliveredDate"`
	Status        *Status    `json:"status" binding:"omitempty,oneof=pending shipped delivered delayed"`
	Notes         *string    `json:"notes"`
}

func NewFromCreateRequest(req CreateDeliveryRequest) Delivery {
	now := time.Now().UTC()

	return Delivery{
		ID:           uuid.NewString(),
		ItemName:     req.ItemName,
		Supplier:     req.Supplier,
		ExpectedDate: req.ExpectedDate,
		Status:       StatusPending,
		Notes:        req.Notes,
		ProjectID:    req.ProjectID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
