// Package scheduler runs the periodic geocode backfill over asynq.
package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskGeocodeBackfill = "toilets.geocode.backfill"

type GeocodeBackfillPayload struct {
	BatchSize int `json:"batchSize"`
}

func NewGeocodeBackfillTask(payload GeocodeBackfillPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskGeocodeBackfill, data), nil
}

func ParseGeocodeBackfillPayload(task *asynq.Task) (GeocodeBackfillPayload, error) {
	var payload GeocodeBackfillPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return GeocodeBackfillPayload{}, err
	}
	return payload, nil
}
