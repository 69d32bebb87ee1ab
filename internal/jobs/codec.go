package jobs

import (
	"encoding/json"
	"fmt"
)

// EncodePayload marshals a typed payload after checking it matches the
// job type; a mismatch is a programming error we want to catch at
// enqueue time, not in the worker.
func EncodePayload(t JobType, payload any) ([]byte, error) {
	if !t.IsValid() {
		return nil, ErrInvalidJobType
	}

	switch t {
	case JobNotifyDefectStatus:
		if !isPayload[NotifyDefectStatusPayload](payload) {
			return nil, ErrPayloadTypeMismatch
		}

	case JobNotifyReportReady:
		if !isPayload[NotifyReportReadyPayload](payload) {
			return nil, ErrPayloadTypeMismatch
		}
	}

	b, err := json.Marshal(payload)

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJobPayload, err)
	}

	return b, nil
}

// DecodePayload unmarshals job.Payload into the correct typed payload struct.
func DecodePayload(j Job) (any, error) {
	if !j.Type.IsValid() {
		return nil, ErrInvalidJobType
	}
	if len(j.Payload) == 0 {
		return nil, ErrInvalidJobPayload
	}

	switch j.Type {
	case JobNotifyDefectStatus:
		var p NotifyDefectStatusPayload
		if err := json.Unmarshal(j.Payload, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidJobPayload, err)
		}
		return p, nil

	case JobNotifyReportReady:
		var p NotifyReportReadyPayload
		if err := json.Unmarshal(j.Payload, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidJobPayload, err)
		}
		return p, nil

	default:
		return nil, ErrInvalidJobType
	}
}

func isPayload[T any](payload any) bool {
	switch payload.(type) {
	case T, *T:
		return true
	default:
		return false
	}
}
