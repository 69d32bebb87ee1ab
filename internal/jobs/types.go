package jobs

type JobType string

const (
	JobNotifyDefectStatus JobType = "notify_defect_status"
	JobNotifyReportReady  JobType = "notify_report_ready"
)

// check to see if the job type is a known constant

func (t JobType) IsValid() bool {
	switch t {
	case JobNotifyDefectStatus, JobNotifyReportReady:
		return true
	default:
		return false
	}
}
