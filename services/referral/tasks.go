package referral

import (
	"encoding/json"

	"mountify/models"

	"github.com/hibiken/asynq"
)

const TypeRecordUsage = "referral:record-usage"

// NewRecordUsageTask queues a usage recording for the background worker.
// Recording is idempotent per booking reference, so asynq retrying the task
// after a transient failure is safe.
func NewRecordUsageTask(payload models.UsagePayload) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeRecordUsage, b)
	opts := []asynq.Option{asynq.MaxRetry(10)}

	return task, opts, nil
}
