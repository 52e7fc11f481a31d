package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/instatodoist/instant-todos-server/internal/domain"
	"github.com/instatodoist/instant-todos-server/internal/query"
	"github.com/instatodoist/instant-todos-server/internal/shared"
)

// LabelStore is the slice of the document store the label service needs.
type LabelStore interface {
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Label, error)
	Insert(ctx context.Context, label domain.Label) error
}

// LabelService manages per-user labels.
type LabelService struct {
	store   LabelStore
	clock   query.Clock
	metrics *shared.AppMetrics
}

func NewLabelService(store LabelStore, clock query.Clock, metrics *shared.AppMetrics) *LabelService {
	if clock == nil {
		clock = query.SystemClock()
	}

	return &LabelService{store: store, clock: clock, metrics: metrics}
}

func (s *LabelService) List(ctx context.Context, userID primitive.ObjectID) ([]domain.Label, error) {
	s.recordOp(ctx, "list")
	return s.store.ListByUser(ctx, userID)
}

func (s *LabelService) Add(ctx context.Context, userID primitive.ObjectID, name string) (OpResult, error) {
	s.recordOp(ctx, "add")

	now := s.clock.Now()

	label := domain.Label{
		Name:      name,
		User:      userID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.Insert(ctx, label); err != nil {
		return OpResult{}, err
	}

	return OpResult{OK: true, Message: "Todo label has been successfully added"}, nil
}

func (s *LabelService) recordOp(ctx context.Context, operation string) {
	if s.metrics != nil {
		s.metrics.RecordLabelOperation(ctx, operation)
	}
}
