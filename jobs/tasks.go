package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendEmail is the task type for sending transactional emails.
	TaskTypeSendEmail = "mail:send"
	// TaskTypePortfolioSnapshot triggers the nightly portfolio valuation
	// snapshot.
	TaskTypePortfolioSnapshot = "portfolio:snapshot"
)

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

// PortfolioSnapshotPayload carries scheduling metadata.
type PortfolioSnapshotPayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewPortfolioSnapshotTask constructs an Asynq task for the valuation
// snapshot.
func NewPortfolioSnapshotTask(at time.Time) (*asynq.Task, error) {
	data, err := json.Marshal(PortfolioSnapshotPayload{ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypePortfolioSnapshot, data, asynq.Queue(QueueDefault)), nil
}
