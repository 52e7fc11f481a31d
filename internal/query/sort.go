package query

import "go.mongodb.org/mongo-driver/bson"

// Direction is a sort direction keyword. Anything other than ASC or DESC
// contributes no order key.
type Direction string

const (
	DirectionAsc  Direction = "ASC"
	DirectionDesc Direction = "DESC"
)

// SortField pairs a field name with a direction. Entries apply in slice
// order; ties beyond the given keys fall back to store-native record order,
// which is not guaranteed stable across pages.
type SortField struct {
	Field     string
	Direction Direction
}

// CompileSort builds the $sort specification. No usable entry yields the
// default of newest first.
func CompileSort(fields []SortField) bson.D {
	order := bson.D{}

	for _, f := range fields {
		switch f.Direction {
		case DirectionAsc:
			order = append(order, bson.E{Key: f.Field, Value: 1})
		case DirectionDesc:
			order = append(order, bson.E{Key: f.Field, Value: -1})
		}
	}

	if len(order) == 0 {
		return bson.D{{Key: "createdAt", Value: -1}}
	}

	return order
}
