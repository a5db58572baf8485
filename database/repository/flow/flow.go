package flowRepo

import (
	"errors"

	"staybridge/models"
)

// ErrStatusConflict is returned by UpdateWithStatus when the stored flow is
// no longer in the expected status (a concurrent transition won).
var ErrStatusConflict = errors.New("flow status changed concurrently")

// FlowRepository defines the interface for flow saga persistence.
type FlowRepository interface {
	Create(flow *models.Flow) error
	Update(flow *models.Flow) error
	// UpdateWithStatus persists the flow only if its stored status still
	// equals expected. Guards against double-submitted transitions racing
	// past the ledger dedup.
	UpdateWithStatus(flow *models.Flow, expected string) error
	GetByID(id string) (*models.Flow, error)
	GetByUser(userID string, limit int64) ([]models.Flow, error)
}
