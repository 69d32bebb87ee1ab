package notifications

import (
	"context"
	"log/slog"
)

// LogNotifier is the default delivery backend: it writes the message to
// the log. Good enough for dev and staging; production swaps in a real
// provider behind the same interface.
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) SendDefectStatus(ctx context.Context, in DefectStatusInput) error {
	n.log.InfoContext(ctx, "notification.defect_status",
		"email", in.Email,
		"name", in.Name,
		"defect", in.DefectID,
		"title", in.Title,
		"status", in.Status,
	)
	return nil
}

func (n *LogNotifier) SendReportReady(ctx context.Context, in ReportReadyInput) error {
	n.log.InfoContext(ctx, "notification.report_ready",
		"email", in.Email,
		"name", in.Name,
		"report", in.ReportID,
		"title", in.Title,
	)
	return nil
}
