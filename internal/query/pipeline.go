package query

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Collection names joined by the listing pipeline.
const (
	UsersCollection  = "users"
	LabelsCollection = "todolabels"
)

// displayProjection lists the fields exposed on a result row.
var displayProjection = bson.D{
	{Key: "title", Value: 1},
	{Key: "label", Value: 1},
	{Key: "isCompleted", Value: 1},
	{Key: "isInProgress", Value: 1},
	{Key: "createdAt", Value: 1},
	{Key: "updatedAt", Value: 1},
	{Key: "user", Value: 1},
	{Key: "comments", Value: 1},
	{Key: "priority", Value: 1},
}

// BuildListPipeline assembles the whole listing aggregation:
//
//  1. match ownership, soft-delete flag and caller filter;
//  2. derive month/day/year from createdAt;
//  3. keep only records created on the asOf calendar day;
//  4. join the owning user and the referenced label (arrays of at most one);
//  5. fan out into the paginated page view and the pre-pagination count.
//
// Both facet views run in the one invocation, so the page and its total
// observe the same matched set.
func BuildListPipeline(userID primitive.ObjectID, f *Filter, sort []SortField, page Page, asOf DateParts) mongo.Pipeline {
	match := bson.D{{Key: "$match", Value: CompileFilter(userID, f)}}

	deriveDateParts := bson.D{{Key: "$project", Value: append(
		append(bson.D{}, displayProjection...),
		bson.E{Key: "month", Value: bson.D{{Key: "$month", Value: "$createdAt"}}},
		bson.E{Key: "day", Value: bson.D{{Key: "$dayOfMonth", Value: "$createdAt"}}},
		bson.E{Key: "year", Value: bson.D{{Key: "$year", Value: "$createdAt"}}},
	)}}

	matchToday := bson.D{{Key: "$match", Value: bson.D{
		{Key: "month", Value: asOf.Month},
		{Key: "day", Value: asOf.Day},
		{Key: "year", Value: asOf.Year},
	}}}

	joinUser := bson.D{{Key: "$lookup", Value: bson.D{
		{Key: "from", Value: UsersCollection},
		{Key: "localField", Value: "user"},
		{Key: "foreignField", Value: "_id"},
		{Key: "as", Value: "user"},
	}}}

	joinLabel := bson.D{{Key: "$lookup", Value: bson.D{
		{Key: "from", Value: LabelsCollection},
		{Key: "localField", Value: "label"},
		{Key: "foreignField", Value: "_id"},
		{Key: "as", Value: "label"},
	}}}

	facet := bson.D{{Key: "$facet", Value: bson.D{
		{Key: "todos", Value: bson.A{
			bson.D{{Key: "$project", Value: displayProjection}},
			bson.D{{Key: "$sort", Value: CompileSort(sort)}},
			bson.D{{Key: "$skip", Value: page.Skip}},
			bson.D{{Key: "$limit", Value: page.Limit}},
		}},
		{Key: "todosCount", Value: bson.A{
			bson.D{{Key: "$group", Value: bson.D{
				{Key: "_id", Value: nil},
				{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
			}}},
		}},
	}}}

	return mongo.Pipeline{match, deriveDateParts, matchToday, joinUser, joinLabel, facet}
}
