package project

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPlanning   Status = "planning"
	StatusInProgress Status = "in_progress"
	StatusOnHold     Status = "on_hold"
	StatusCompleted  Status = "completed"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPlanning, StatusInProgress, StatusOnHold, StatusCompleted:
		return true
	default:
		return false
	}
}

// Package is the renovation service tier sold to the client.
type Package string

const (
	PackageBasic    Package = "basic"
	PackageStandard Package = "standard"
	PackagePremium  Package = "premium"
)

func (p Package) IsValid() bool {
	switch p {
	case PackageBasic, PackageStandard, PackagePremium:
		return true
	default:
		return false
	}
}

type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Address     string    `json:"address"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	Package     Package   `json:"package"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
	ClientID    string    `json:"clientId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type CreateProjectRequest struct {
	Name        string    `json:"name" binding:"required"`
	Address     string    `json:"address" binding:"required"`
	Description string    `json:"description"`
	Status      Status    `json:"status" binding:"omitempty,oneof=planning in_progress on_hold completed"`
	Package     Package   `json:"package" binding:"required,oneof=basic standard premium"`
	StartDate   time.Time `json:"startDate" binding:"required"`
	EndDate     time.Time `json:"endDate" binding:"required"`
	ClientID    string    `json:"clientId" binding:"required,uuid"`
}

type UpdateProjectRequest struct {
	Name        *string    `json:"name"`
	Address     *string    `json:"address"`
	Description *string    `json:"description"`
	Status      *Status    `json:"status" binding:"omitempty,oneof=planning in_progress on_hold completed"`
	Package     *Package   `json:"package" binding:"omitempty,oneof=basic standard premium"`
	StartDate   *time.Time `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
}

func NewFromCreateRequest(req CreateProjectRequest) Project {
	now := time.Now().UTC()

	status := req.Status

	if status == "" {
		status = StatusPlanning
	}

	return Project{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Address:     req.Address,
		Description: req.Description,
		Status:      status,
		Package:     req.Package,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		ClientID:    req.ClientID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
