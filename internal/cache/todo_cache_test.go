package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/instatodoist/instant-todos-server/internal/query"
)

func TestListKey_Deterministic(t *testing.T) {
	userID := primitive.NewObjectID()
	asOf := query.DateParts{Year: 2024, Month: 3, Day: 5}
	page := query.Page{Skip: 50, Limit: 50}

	a := ListKey(userID, asOf, nil, nil, page)
	b := ListKey(userID, asOf, nil, nil, page)

	assert.Equal(t, a, b)
	assert.Contains(t, a, userID.Hex())
	assert.Contains(t, a, "2024-03-05")
}

func TestListKey_VariesWithQueryShape(t *testing.T) {
	userID := primitive.NewObjectID()
	asOf := query.DateParts{Year: 2024, Month: 3, Day: 5}
	page := query.Page{Skip: 0, Limit: 50}

	title := "Report"
	labelID := primitive.NewObjectID()

	base := ListKey(userID, asOf, nil, nil, page)
	withTitle := ListKey(userID, asOf, &query.Filter{TitleContains: &title}, nil, page)
	withLabel := ListKey(userID, asOf, &query.Filter{Label: &labelID}, nil, page)
	withSort := ListKey(userID, asOf, nil, []query.SortField{{Field: "priority", Direction: query.DirectionAsc}}, page)
	otherPage := ListKey(userID, asOf, nil, nil, query.Page{Skip: 50, Limit: 50})

	keys := []string{base, withTitle, withLabel, withSort, otherPage}
	for i := range keys {
		for j := range keys {
			if i != j {
				assert.NotEqual(t, keys[i], keys[j])
			}
		}
	}
}

func TestListKey_DayScoped(t *testing.T) {
	userID := primitive.NewObjectID()
	page := query.Page{Skip: 0, Limit: 50}

	today := ListKey(userID, query.DateParts{Year: 2024, Month: 3, Day: 5}, nil, nil, page)
	tomorrow := ListKey(userID, query.DateParts{Year: 2024, Month: 3, Day: 6}, nil, nil, page)

	assert.NotEqual(t, today, tomorrow)
}
