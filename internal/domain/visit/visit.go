package visit

import (
	"time"

	"github.com/google/uuid"
)

// SiteVisit is an inspector's on-site check-in on a project.
type SiteVisit struct {
	ID          string    `json:"id"`
	VisitDate   time.Time `json:"visitDate"`
	Notes       string    `json:"notes"`
	ProjectID   string    `json:"projectId"`
	InspectorID string    `json:"inspectorId"`
	CreatedAt   time.Time `json:"createdAt"`
}

type CreateSiteVisitRequest struct {
	VisitDate time.Time `json:"visitDate" binding:"required"`
	Notes     string    `json:"notes" binding:"required"`
	ProjectID string    `json:"projectId" binding:"required,uuid"`
}

func NewFromCreateRequest(req CreateSiteVisitRequest, inspectorID string) SiteVisit {
	return SiteVisit{
		ID:          uuid.NewString(),
		VisitDate:   req.VisitDate,
		Notes:       req.Notes,
		ProjectID:   req.ProjectID,
		InspectorID: inspectorID,
		CreatedAt:   time.Now().UTC(),
	}
}
