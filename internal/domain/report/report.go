package report

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeProgress Type = "progress"
	TypeFinal    Type = "final"
)

func (t Type) IsValid() bool {
	switch t {
	case TypeProgress, TypeFinal:
		return true
	default:
		return false
	}
}

// Report content is stored as raw JSON; the portal renders it, we only
// carry it around.
type Report struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Content   json.RawMessage `json:"content"`
	Type      Type            `json:"reportType"`
	ProjectID string          `json:"projectId"`
	CreatedAt time.Time       `json:"createdAt"`
}

type CreateReportRequest struct {
	Title     string          `json:"title" binding:"required"`
	Content   json.RawMessage `json:"content" binding:"required"`
	Type      Type            `json:"reportType" binding:"required,oneof=progress final"`
	ProjectID string          `json:"projectId" binding:"required,uuid"`
}

func NewFromCreateRequest(req CreateReportRequest) Report {
	return Report{
		ID:        uuid.NewString(),
		Title:     req.Title,
		Content:   req.Content,
		Type:      req.Type,
		ProjectID: req.ProjectID,
		CreatedAt: time.Now().UTC(),
	}
}
