package query_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"

	. "github.com/instatodoist/instant-todos-server/internal/query"
)

func TestCompileSort_DefaultIsNewestFirst(t *testing.T) {
	assert.Equal(t, bson.D{{Key: "createdAt", Value: -1}}, CompileSort(nil))
	assert.Equal(t, bson.D{{Key: "createdAt", Value: -1}}, CompileSort([]SortField{}))
}

func TestCompileSort_Directions(t *testing.T) {
	order := CompileSort([]SortField{
		{Field: "priority", Direction: DirectionAsc},
		{Field: "updatedAt", Direction: DirectionDesc},
	})

	assert.Equal(t, bson.D{
		{Key: "priority", Value: 1},
		{Key: "updatedAt", Value: -1},
	}, order)
}

func TestCompileSort_UnrecognizedDirectionContributesNoKey(t *testing.T) {
	order := CompileSort([]SortField{
		{Field: "priority", Direction: "SIDEWAYS"},
		{Field: "createdAt", Direction: DirectionAsc},
	})

	assert.Equal(t, bson.D{{Key: "createdAt", Value: 1}}, order)
}

func TestCompileSort_AllUnrecognizedFallsBackToDefault(t *testing.T) {
	order := CompileSort([]SortField{{Field: "priority", Direction: "sideways"}})

	assert.Equal(t, bson.D{{Key: "createdAt", Value: -1}}, order)
}

func TestCompileSort_PreservesEntryOrder(t *testing.T) {
	order := CompileSort([]SortField{
		{Field: "b", Direction: DirectionDesc},
		{Field: "a", Direction: DirectionAsc},
	})

	assert.Equal(t, "b", order[0].Key)
	assert.Equal(t, "a", order[1].Key)
}
