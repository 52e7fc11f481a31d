package query_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/instatodoist/instant-todos-server/internal/domain"
	. "github.com/instatodoist/instant-todos-server/internal/query"
)

func listRow(user []JoinedUser, label []JoinedLabel) ListRow {
	return ListRow{
		ID:        primitive.NewObjectID(),
		Title:     "write report",
		User:      user,
		Label:     label,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func TestNormalize_FlattensOwnerAndLabel(t *testing.T) {
	owner := []JoinedUser{{ID: primitive.NewObjectID(), Email: "user@example.com"}}
	label := []JoinedLabel{{ID: primitive.NewObjectID(), Name: "work"}}

	conn, err := Normalize(ListResult{
		Todos:      []ListRow{listRow(owner, label)},
		TodosCount: []struct{ Count int64 `bson:"count"` }{{Count: 1}},
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), conn.TotalCount)
	require.Len(t, conn.Data, 1)
	assert.Equal(t, "user@example.com", conn.Data[0].User.Email)
	require.NotNil(t, conn.Data[0].Label.Name)
	assert.Equal(t, "work", *conn.Data[0].Label.Name)
}

func TestNormalize_MissingLabelYieldsNullName(t *testing.T) {
	owner := []JoinedUser{{ID: primitive.NewObjectID(), Email: "user@example.com"}}

	conn, err := Normalize(ListResult{Todos: []ListRow{listRow(owner, nil)}})

	require.NoError(t, err)
	assert.Nil(t, conn.Data[0].Label.Name)
}

func TestNormalize_MissingOwnerIsIntegrityError(t *testing.T) {
	_, err := Normalize(ListResult{Todos: []ListRow{listRow(nil, nil)}})

	assert.ErrorIs(t, err, domain.ErrMissingOwner)
}

func TestNormalize_EmptyCountDefaultsToZero(t *testing.T) {
	conn, err := Normalize(ListResult{})

	require.NoError(t, err)
	assert.Equal(t, int64(0), conn.TotalCount)
	assert.NotNil(t, conn.Data)
	assert.Empty(t, conn.Data)
}
