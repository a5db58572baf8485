package stepRepo

import (
	"context"
	"fmt"
	"time"

	"staybridge/database"
	"staybridge/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStepRepo implements StepRepository using MongoDB.
type MongoStepRepo struct {
	coll *mongo.Collection
}

// NewMongoStepRepo creates a new instance of StepRepository using MongoDB.
func NewMongoStepRepo() StepRepository {
	coll := database.MongoClient.Database("staybridge").Collection("steps")
	repo := &MongoStepRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create step indexes: %v\n", err)
	}
	return repo
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoStepRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	// One successful attempt per (flow, step, idempotency key). Failed
	// attempts are kept outside the unique constraint so retries can append.
	indexModels := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "flow_id", Value: 1},
				{Key: "step", Value: 1},
				{Key: "idempotency_key", Value: 1},
			},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"success": true}),
		},
		{Keys: bson.D{{Key: "flow_id", Value: 1}, {Key: "created_at", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (r *MongoStepRepo) Append(step *models.Step) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, step); err != nil {
		return fmt.Errorf("failed to append step %s/%s: %w", step.FlowID, step.Step, err)
	}
	return nil
}

func (r *MongoStepRepo) FindReplay(flowID, step, key string) (*models.Step, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{
		"flow_id":         flowID,
		"step":            step,
		"idempotency_key": key,
		"success":         true,
	}
	var entry models.Step
	if err := r.coll.FindOne(ctx, filter).Decode(&entry); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up step replay: %w", err)
	}
	return &entry, nil
}

func (r *MongoStepRepo) ListByFlow(flowID string) ([]models.Step, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{"flow_id": flowID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list steps for flow %s: %w", flowID, err)
	}
	defer cursor.Close(ctx)

	var steps []models.Step
	for cursor.Next(ctx) {
		var s models.Step
		if err := cursor.Decode(&s); err != nil {
			return nil, fmt.Errorf("failed to decode step: %w", err)
		}
		steps = append(steps, s)
	}
	return steps, nil
}
