package stepRepo

import "staybridge/models"

// StepRepository defines the interface for the append-only step ledger.
type StepRepository interface {
	// Append inserts a ledger entry. Entries are never updated or deleted.
	Append(step *models.Step) error
	// FindReplay returns the successful entry for (flowID, step, key), or
	// nil when no such attempt completed. Used for idempotent replay.
	FindReplay(flowID, step, key string) (*models.Step, error)
	ListByFlow(flowID string) ([]models.Step, error)
}
