package notifications

import (
	"context"

	"github.com/mk-ui-dev/renovation-concierge/internal/domain/defect"
)

type DefectStatusInput struct {
	Email    string
	Name     string
	DefectID string
	Title    string
	Status   defect.Status
}

type ReportReadyInput struct {
	Email    string
	Name     string
	ReportID string
	Title    string
}

// Notifier delivers client-facing messages. The portal only ever talks
// to this interface; the concrete provider is a deployment concern.
type Notifier interface {
	SendDefectStatus(ctx context.Context, input DefectStatusInput) error
	SendReportReady(ctx context.Context, input ReportReadyInput) error
}
