package milestone

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	default:
		return false
	}
}

type Milestone struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DueDate     time.Time `json:"dueDate"`
	Status      Status    `json:"status"`
	SortOrder   int       `json:"order"`
	ProjectID   string    `json:"projectId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type CreateMilestoneRequest struct {
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description"`
	DueDate     time.Time `json:"dueDate" binding:"required"`
	Status      Status    `json:"status" binding:"omitempty,oneof=pending in_progress completed"`
	SortOrder   int       `json:"order" binding:"required,min=1"`
	ProjectID   string    `json:"projectId" binding:"required,uuid"`
}

type UpdateMilestoneRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	DueDate     *time.Time `json:"dueDate"`
	Status      *Status    `json:"status" binding:"omitempty,oneof=pending in_progress completed"`
	SortOrder   *int       `json:"order" binding:"omitempty,min=1"`
}

func NewFromCreateRequest(req CreateMilestoneRequest) Milestone {
	now := time.Now().UTC()

	status := req.Status

	if status == "" {
		status = StatusPending
	}

	return Milestone{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Status:      status,
		SortOrder:   req.SortOrder,
		ProjectID:   req.ProjectID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
