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

// TodoRepository executes todo reads and conditional writes against the
// todos collection.
type TodoRepository struct {
	todos   *mongo.Collection
	metrics *shared.AppMetrics
}

func NewTodoRepository(db *mongo.Database, metrics *shared.AppMetrics) *TodoRepository {
	return &TodoRepository{
		todos:   db.Collection(TodosCollection),
		metrics: metrics,
	}
}

// List runs the whole listing aggregation in one round trip: the page view
// and the count view come from the same facet, so they never drift apart.
func (r *TodoRepository) List(ctx context.Context, userID primitive.ObjectID, f *query.Filter, sort []query.SortField, page query.Page, asOf query.DateParts) (query.TodoConnection, error) {
	ctx, span := shared.CreateChildSpan(ctx, "repository.todo.List", []attribute.KeyValue{
		attribute.String("db.collection", TodosCollection),
		attribute.String("db.operation", "aggregate"),
		attribute.String("user.id", userID.Hex()),
		attribute.Int64("page.skip", page.Skip),
		attribute.Int64("page.limit", page.Limit),
	})
	defer span.End()

	r.recordOp(ctx, "aggregate")

	pipeline := query.BuildListPipeline(userID, f, sort, page, asOf)

	cursor, err := r.todos.Aggregate(ctx, pipeline)
	if err != nil {
		shared.AddSpanError(span, err)
		return query.TodoConnection{}, fmt.Errorf("aggregate todos: %w", err)
	}
	defer cursor.Close(ctx)

	var results []query.ListResult
	if err := cursor.All(ctx, &results); err != nil {
		shared.AddSpanError(span, err)
		return query.TodoConnection{}, fmt.Errorf("decode todo listing: %w", err)
	}

	if len(results) == 0 {
		// $facet always emits one document, but an empty result set still
		// normalizes to an empty page.
		return query.TodoConnection{Data: []query.NormalizedTodo{}}, nil
	}

	connection, err := query.Normalize(results[0])
	if err != nil {
		shared.AddSpanError(span, err)
		return query.TodoConnection{}, err
	}

	span.SetAttributes(
		attribute.Int("db.rows_returned", len(connection.Data)),
		attribute.Int64("todo.total_count", connection.TotalCount),
	)

	return connection, nil
}

func (r *TodoRepository) Insert(ctx context.Context, todo domain.Todo) error {
	r.recordOp(ctx, "insert")

	if _, err := r.todos.InsertOne(ctx, todo); err != nil {
		return fmt.Errorf("insert todo: %w", err)
	}

	return nil
}

// Update applies the patch to the single document matching id, owner and
// the mutability predicates. Zero matches means the todo does not exist,
// is deleted, is locked, or belongs to someone else; callers get one
// undistinguishable error for all four.
func (r *TodoRepository) Update(ctx context.Context, userID, todoID primitive.ObjectID, patch domain.TodoPatch) error {
	r.recordOp(ctx, "update")

	set := bson.D{}
	if patch.Title != nil {
		set = append(set, bson.E{Key: "title", Value: *patch.Title})
	}
	if patch.Description != nil {
		set = append(set, bson.E{Key: "description", Value: *patch.Description})
	}
	if patch.Label != nil {
		set = append(set, bson.E{Key: "label", Value: *patch.Label})
	}
	if patch.IsCompleted != nil {
		set = append(set, bson.E{Key: "isCompleted", Value: *patch.IsCompleted})
	}
	if patch.IsInProgress != nil {
		set = append(set, bson.E{Key: "isInProgress", Value: *patch.IsInProgress})
	}
	if patch.Priority != nil {
		set = append(set, bson.E{Key: "priority", Value: *patch.Priority})
	}

	result, err := r.todos.UpdateOne(ctx,
		mutablePredicate(userID, todoID),
		bson.D{
			{Key: "$set", Value: set},
			{Key: "$currentDate", Value: bson.D{{Key: "updatedAt", Value: true}}},
		},
	)

	if err != nil {
		return fmt.Errorf("update todo: %w", err)
	}

	if result.MatchedCount == 0 {
		return domain.ErrNotFoundOrForbidden
	}

	return nil
}

// SoftDelete flips the isDeleted flag; documents are never erased.
func (r *TodoRepository) SoftDelete(ctx context.Context, userID, todoID primitive.ObjectID) error {
	r.recordOp(ctx, "soft_delete")

	result, err := r.todos.UpdateOne(ctx,
		mutablePredicate(userID, todoID),
		bson.D{
			{Key: "$set", Value: bson.D{{Key: "isDeleted", Value: true}}},
			{Key: "$currentDate", Value: bson.D{{Key: "updatedAt", Value: true}}},
		},
	)

	if err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}

	if result.MatchedCount == 0 {
		return domain.ErrNotFoundOrForbidden
	}

	return nil
}

func (r *TodoRepository) AddComment(ctx context.Context, userID, todoID primitive.ObjectID, description string) error {
	r.recordOp(ctx, "add_comment")

	comment := domain.Comment{ID: primitive.NewObjectID(), Description: description}

	result, err := r.todos.UpdateOne(ctx,
		bson.D{
			{Key: "user", Value: userID},
			{Key: "isDeleted", Value: false},
			{Key: "_id", Value: todoID},
		},
		bson.D{
			{Key: "$push", Value: bson.D{{Key: "comments", Value: comment}}},
			{Key: "$currentDate", Value: bson.D{{Key: "updatedAt", Value: true}}},
		},
	)

	if err != nil {
		return fmt.Errorf("add comment: %w", err)
	}

	if result.MatchedCount == 0 {
		return domain.ErrNotFoundOrForbidden
	}

	return nil
}

// UpdateComment edits one comment in place via the positional operator.
func (r *TodoRepository) UpdateComment(ctx context.Context, userID, todoID, commentID primitive.ObjectID, description string) error {
	r.recordOp(ctx, "update_comment")

	result, err := r.todos.UpdateOne(ctx,
		bson.D{
			{Key: "user", Value: userID},
			{Key: "isDeleted", Value: false},
			{Key: "_id", Value: todoID},
			{Key: "comments._id", Value: commentID},
		},
		bson.D{
			{Key: "$set", Value: bson.D{{Key: "comments.$.description", Value: description}}},
			{Key: "$currentDate", Value: bson.D{{Key: "updatedAt", Value: true}}},
		},
	)

	if err != nil {
		return fmt.Errorf("update comment: %w", err)
	}

	if result.MatchedCount == 0 {
		return domain.ErrNotFoundOrForbidden
	}

	return nil
}

// mutablePredicate scopes a write to the owner's live, unlocked document.
func mutablePredicate(userID, todoID primitive.ObjectID) bson.D {
	return bson.D{
		{Key: "user", Value: userID},
		{Key: "isDeleted", Value: false},
		{Key: "status", Value: true},
		{Key: "_id", Value: todoID},
	}
}

func (r *TodoRepository) recordOp(ctx context.Context, operation string) {
	if r.metrics != nil {
		r.metrics.RecordStoreOperation(ctx, operation, TodosCollection)
	}
}
