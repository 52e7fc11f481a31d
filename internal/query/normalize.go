package query

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/instatodoist/instant-todos-server/internal/domain"
)

// JoinedUser is a user record as attached by the $lookup stage.
type JoinedUser struct {
	ID    primitive.ObjectID `bson:"_id"`
	Email string             `bson:"email"`
}

// JoinedLabel is a label record as attached by the $lookup stage.
type JoinedLabel struct {
	ID   primitive.ObjectID `bson:"_id"`
	Name string             `bson:"name"`
}

// ListRow is one page-view row before normalization: user and label are
// still arrays of zero or one joined record.
type ListRow struct {
	ID           primitive.ObjectID `bson:"_id"`
	Title        string             `bson:"title"`
	Label        []JoinedLabel      `bson:"label"`
	IsCompleted  bool               `bson:"isCompleted"`
	IsInProgress bool               `bson:"isInProgress"`
	CreatedAt    time.Time          `bson:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"`
	User         []JoinedUser       `bson:"user"`
	Comments     []domain.Comment   `bson:"comments"`
	Priority     string             `bson:"priority"`
}

// ListResult is the single document the facet stage emits.
type ListResult struct {
	Todos      []ListRow `bson:"todos"`
	TodosCount []struct {
		Count int64 `bson:"count"`
	} `bson:"todosCount"`
}

// TodoOwner is the public owner shape: the join exposes the email and
// nothing else.
type TodoOwner struct {
	Email string `json:"email"`
}

// TodoLabel is the public label shape. Name is null when the todo carries
// no label.
type TodoLabel struct {
	Name *string `json:"name"`
}

// NormalizedTodo is one row of the public result envelope.
type NormalizedTodo struct {
	ID           primitive.ObjectID `json:"id"`
	Title        string             `json:"title"`
	Label        TodoLabel          `json:"label"`
	IsCompleted  bool               `json:"isCompleted"`
	IsInProgress bool               `json:"isInProgress"`
	CreatedAt    time.Time          `json:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt"`
	User         TodoOwner          `json:"user"`
	Comments     []domain.Comment   `json:"comments"`
	Priority     string             `json:"priority,omitempty"`
}

// TodoConnection is the listing envelope: the total across all pages plus
// the requested page.
type TodoConnection struct {
	TotalCount int64            `json:"totalCount"`
	Data       []NormalizedTodo `json:"data"`
}

// Normalize flattens the joined arrays into singular nested objects. A row
// without a resolvable owner is corrupt data and fails the whole listing;
// a missing label is legitimate and normalizes to a null name. An empty
// count facet means zero matches, not an error.
func Normalize(res ListResult) (TodoConnection, error) {
	data := make([]NormalizedTodo, 0, len(res.Todos))

	for _, row := range res.Todos {
		if len(row.User) == 0 {
			return TodoConnection{}, fmt.Errorf("%w: todo %s", domain.ErrMissingOwner, row.ID.Hex())
		}

		var labelName *string
		if len(row.Label) > 0 {
			name := row.Label[0].Name
			labelName = &name
		}

		data = append(data, NormalizedTodo{
			ID:           row.ID,
			Title:        row.Title,
			Label:        TodoLabel{Name: labelName},
			IsCompleted:  row.IsCompleted,
			IsInProgress: row.IsInProgress,
			CreatedAt:    row.CreatedAt,
			UpdatedAt:    row.UpdatedAt,
			User:         TodoOwner{Email: row.User[0].Email},
			Comments:     row.Comments,
			Priority:     row.Priority,
		})
	}

	var total int64
	if len(res.TodosCount) > 0 {
		total = res.TodosCount[0].Count
	}

	return TodoConnection{TotalCount: total, Data: data}, nil
}
