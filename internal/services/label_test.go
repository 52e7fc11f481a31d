package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/instatodoist/instant-todos-server/internal/domain"
	"github.com/instatodoist/instant-todos-server/internal/factories"
	"github.com/instatodoist/instant-todos-server/internal/query"
)

type fakeLabelStore struct {
	labels   []domain.Label
	inserted []domain.Label
}

func (f *fakeLabelStore) ListByUser(_ context.Context, userID primitive.ObjectID) ([]domain.Label, error) {
	out := make([]domain.Label, 0)
	for _, l := range f.labels {
		if l.User == userID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeLabelStore) Insert(_ context.Context, label domain.Label) error {
	f.inserted = append(f.inserted, label)
	return nil
}

func TestLabelServiceAdd(t *testing.T) {
	store := &fakeLabelStore{}
	now := time.Date(2024, 3, 5, 9, 30, 0, 0, time.UTC)
	service := NewLabelService(store, query.FixedClock{T: now}, nil)
	userID := primitive.NewObjectID()

	res, err := service.Add(context.Background(), userID, "work")

	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Equal(t, "Todo label has been successfully added", res.Message)
	require.Len(t, store.inserted, 1)
	assert.Equal(t, "work", store.inserted[0].Name)
	assert.Equal(t, userID, store.inserted[0].User)
	assert.Equal(t, now, store.inserted[0].CreatedAt)
	assert.Equal(t, now, store.inserted[0].UpdatedAt)
}

func TestLabelServiceListScopedToUser(t *testing.T) {
	mine := primitive.NewObjectID()
	theirs := primitive.NewObjectID()

	store := &fakeLabelStore{labels: []domain.Label{
		factories.New[domain.Label](map[string]any{"Name": "work", "User": mine}),
		factories.New[domain.Label](map[string]any{"Name": "home", "User": mine}),
		factories.New[domain.Label](map[string]any{"Name": "secret", "User": theirs}),
	}}
	service := NewLabelService(store, nil, nil)

	labels, err := service.List(context.Background(), mine)

	require.NoError(t, err)
	require.Len(t, labels, 2)
	for _, l := range labels {
		assert.Equal(t, mine, l.User)
	}
}
