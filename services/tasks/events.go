package tasks

import (
	"encoding/json"
	"time"

	"staybridge/models"

	"github.com/hibiken/asynq"
)

const TypeBookingEvent = "booking:event"

// NewBookingEventTask wraps a booking event for asynchronous delivery.
func NewBookingEventTask(event models.NotificationEvent) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(event)
	if err != nil {
		return nil, nil, err
	}
	opts := []asynq.Option{
		asynq.MaxRetry(5),
		asynq.Timeout(30 * time.Second),
	}
	return asynq.NewTask(TypeBookingEvent, b), opts, nil
}
