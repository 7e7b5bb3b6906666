package lmstfy

import (
	"encoding/json"
	"fmt"
)

// Job is the standard job envelope shared by every producer and consumer.
type Job struct {
	Payload *JobPayload `json:"payload"`
}

// JobPayload wraps the job data.
type JobPayload struct {
	Data *JobPayloadData `json:"data"`
}

// JobPayloadData carries routing metadata plus the business data.
type JobPayloadData struct {
	RequestID  string `json:"request_id"`
	OrgID      string `json:"org_id"`
	ActionType string `json:"action_type"`
	ID         string `json:"id"`

	Data interface{} `json:"data"`

	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// Meta is the routing metadata of a job.
type Meta struct {
	RequestID  string
	OrgID      string
	ActionType string
	ID         string
}

// NewJob wraps data in the envelope.
func NewJob(meta Meta, data interface{}) *Job {
	return &Job{
		Payload: &JobPayload{
			Data: &JobPayloadData{
				RequestID:  meta.RequestID,
				OrgID:      meta.OrgID,
				ActionType: meta.ActionType,
				ID:         meta.ID,
				Data:       data,
			},
		},
	}
}

type rawJob struct {
	Payload *struct {
		Data *struct {
			RequestID  string          `json:"request_id"`
			OrgID      string          `json:"org_id"`
			ActionType string          `json:"action_type"`
			ID         string          `json:"id"`
			Data       json.RawMessage `json:"data"`
		} `json:"data"`
	} `json:"payload"`
}

// DecodeJob unwraps body and decodes its business data into out.
func DecodeJob(body []byte, out interface{}) (Meta, error) {
	var raw rawJob
	if err := json.Unmarshal(body, &raw); err != nil {
		return Meta{}, fmt.Errorf("decode job envelope: %w", err)
	}
	if raw.Payload == nil || raw.Payload.Data == nil {
		return Meta{}, fmt.Errorf("job envelope has no payload data")
	}

	d := raw.Payload.Data
	meta := Meta{
		RequestID:  d.RequestID,
		OrgID:      d.OrgID,
		ActionType: d.ActionType,
		ID:         d.ID,
	}
	if len(d.Data) == 0 {
		return meta, fmt.Errorf("job %s has no data", meta.RequestID)
	}
	if err := json.Unmarshal(d.Data, out); err != nil {
		return meta, fmt.Errorf("decode job data: %w", err)
	}
	return meta, nil
}
