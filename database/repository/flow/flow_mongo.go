package flowRepo

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

// MongoFlowRepo implements FlowRepository using MongoDB.
type MongoFlowRepo struct {
	coll *mongo.Collection
}

// NewMongoFlowRepo creates a new instance of FlowRepository using MongoDB.
func NewMongoFlowRepo() FlowRepository {
	coll := database.MongoClient.Database("staybridge").Collection("flows")
	repo := &MongoFlowRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create flow indexes: %v\n", err)
	}
	return repo
}

// newContext creates a context with the given timeout.
func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoFlowRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (r *MongoFlowRepo) Create(flow *models.Flow) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, flow); err != nil {
		return fmt.Errorf("failed to insert flow %s: %w", flow.ID, err)
	}
	return nil
}

func (r *MongoFlowRepo) Update(flow *models.Flow) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	res, err := r.coll.ReplaceOne(ctx, bson.M{"id": flow.ID}, flow)
	if err != nil {
		return fmt.Errorf("failed to update flow %s: %w", flow.ID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("flow %s not found", flow.ID)
	}
	return nil
}

func (r *MongoFlowRepo) UpdateWithStatus(flow *models.Flow, expected string) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	res, err := r.coll.ReplaceOne(ctx, bson.M{"id": flow.ID, "status": expected}, flow)
	if err != nil {
		return fmt.Errorf("failed to update flow %s: %w", flow.ID, err)
	}
	if res.MatchedCount == 0 {
		return ErrStatusConflict
	}
	return nil
}

func (r *MongoFlowRepo) GetByID(id string) (*models.Flow, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var flow models.Flow
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&flow); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch flow %s: %w", id, err)
	}
	return &flow, nil
}

func (r *MongoFlowRepo) GetByUser(userID string, limit int64) ([]models.Flow, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cursor, err := r.coll.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list flows for user %s: %w", userID, err)
	}
	defer cursor.Close(ctx)

	var flows []models.Flow
	for cursor.Next(ctx) {
		var f models.Flow
		if err := cursor.Decode(&f); err != nil {
			return nil, fmt.Errorf("failed to decode flow: %w", err)
		}
		flows = append(flows, f)
	}
	return flows, nil
}
