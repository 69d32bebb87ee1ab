package defect

import (
	"time"

	"github.com/google/uuid"
)

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

func (s Severity) IsValid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return true
	default:
		return false
	}
}

type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusFixed      Status = "fixed"
	StatusApproved   Status = "approved"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusFixed, StatusApproved:
		return true
	default:
		return false
	}
}

type Defect struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Location    string     `json:"location"`
	Severity    Severity   `json:"severity"`
	Status      Status     `json:"status"`
	ReportedAt  time.Time  `json:"reportedAt"`
	FixedAt     *time.Time `json:"fixedAt,omitempty"`
	ApprovedAt  *time.Time `json:"approvedAt,omitempty"`
	ProjectID   string     `json:"projectId"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type CreateDefectRequest struct {
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description" binding:"required"`
	Location    string   `json:"location" binding:"required"`
	Severity    Severity `json:"severity" binding:"required,oneof=low medium high"`
	ProjectID   string   `json:"projectId" binding:"required,uuid"`
}

type UpdateDefectRequest struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Location    *string   `json:"location"`
	Severity    *Severity `json:"severity" binding:"omitempty,oneof=low medium high"`
	Status      *Status   `json:"status" binding:"omitempty,oneof=open in_progress fixed approved"`
}

func NewFromCreateRequest(req CreateDefectRequest) Defect {
	now := time.Now().UTC()

	return Defect{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Severity:    req.Severity,
		Status:      StatusOpen,
		ReportedAt:  now,
		ProjectID:   req.ProjectID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
