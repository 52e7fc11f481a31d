package query

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Filter enumerates the recognized listing filter keys. A typed struct
// rather than a loose map, so unrecognized keys cannot reach the store.
type Filter struct {
	// TitleContains matches todos whose title contains the substring,
	// case-insensitively.
	TitleContains *string
	// Label matches todos referencing exactly this label id.
	Label *primitive.ObjectID
}

// CompileFilter turns the filter into the match conditions of the listing
// pipeline. Ownership and the soft-delete flag always apply; the optional
// clauses combine with them conjunctively.
func CompileFilter(userID primitive.ObjectID, f *Filter) bson.D {
	conditions := bson.D{
		{Key: "isDeleted", Value: false},
		{Key: "user", Value: userID},
	}

	if f == nil {
		return conditions
	}

	if f.TitleContains != nil && *f.TitleContains != "" {
		conditions = append(conditions, bson.E{
			Key:   "title",
			Value: primitive.Regex{Pattern: *f.TitleContains, Options: "i"},
		})
	}

	if f.Label != nil {
		conditions = append(conditions, bson.E{Key: "label", Value: *f.Label})
	}

	return conditions
}
