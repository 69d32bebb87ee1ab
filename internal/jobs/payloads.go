package jobs

import "github.com/mk-ui-dev/renovation-concierge/internal/domain/defect"

// Payloads stay minimal and ID-based; the worker loads anything else it
// needs from the store.

// NotifyDefectStatusPayload tells the client their defect moved.
type NotifyDefectStatusPayload struct {
	DefectID    string        `json:"defectId"`
	ProjectID   string        `json:"projectId"`
	Title       string        `json:"title"`
	Status      defect.Status `json:"status"`
	ClientEmail string        `json:"clientEmail"`
	ClientName  string        `json:"clientName"`
	RequestID   string        `json:"requestId,omitempty"` // correlation
}

// NotifyReportReadyPayload tells the client a new report was published.
type NotifyReportReadyPayload struct {
	ReportID    string `json:"reportId"`
	ProjectID   string `json:"projectId"`
	Title       string `json:"title"`
	ClientEmail string `json:"clientEmail"`
	ClientName  string `json:"clientName"`
	RequestID   string `json:"requestId,omitempty"`
}
