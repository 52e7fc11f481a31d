package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/otel/attribute"

	"github.com/instatodoist/instant-todos-server/internal/domain"
	"github.com/instatodoist/instant-todos-server/internal/query"
	"github.com/instatodoist/instant-todos-server/internal/shared"
)

// LabelRepository reads and writes the per-user label collection.
type LabelRepository struct {
	labels  *mongo.Collection
	metrics *shared.AppMetrics
}

func NewLabelRepository(db *mongo.Database, metrics *shared.AppMetrics) *LabelRepository {
	return &LabelRepository{
		labels:  db.Collection(query.LabelsCollection),
		metrics: metrics,
	}
}

func (r *LabelRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Label, error) {
	if r.metrics != nil {
		r.metrics.RecordStoreOperation(ctx, "find", query.LabelsCollection)
	}

	labels := make([]domain.Label, 0)

	err := shared.SpanWrapper(ctx, "repository.label.ListByUser", []attribute.KeyValue{
		attribute.String("db.collection", query.LabelsCollection),
		attribute.String("db.operation", "find"),
	}, func(ctx context.Context) error {
		cursor, err := r.labels.Find(ctx, bson.D{{Key: "user", Value: userID}})
		if err != nil {
			return fmt.Errorf("find labels: %w", err)
		}
		defer cursor.Close(ctx)

		if err := cursor.All(ctx, &labels); err != nil {
			return fmt.Errorf("decode labels: %w", err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return labels, nil
}

func (r *LabelRepository) Insert(ctx context.Context, label domain.Label) error {
	if r.metrics != nil {
		r.metrics.RecordStoreOperation(ctx, "insert", query.LabelsCollection)
	}

	return shared.SpanWrapper(ctx, "repository.label.Insert", []attribute.KeyValue{
		attribute.String("db.collection", query.LabelsCollection),
		attribute.String("db.operation", "insert"),
	}, func(ctx context.Context) error {
		if _, err := r.labels.InsertOne(ctx, label); err != nil {
			return fmt.Errorf("insert label: %w", err)
		}

		return nil
	})
}
