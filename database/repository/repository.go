package repository

import (
	flowRepo "staybridge/database/repository/flow"
	stepRepo "staybridge/database/repository/step"
)

// Re-export the FlowRepository interface and constructor.
type FlowRepository = flowRepo.FlowRepository

var NewMongoFlowRepo = flowRepo.NewMongoFlowRepo

// Re-export the StepRepository interface and constructor.
type StepRepository = stepRepo.StepRepository

var NewMongoStepRepo = stepRepo.NewMongoStepRepo
