package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment lives inside its parent todo's comments array. It is addressed
// by id for edits and is never removed in place.
type Comment struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Description string             `bson:"description" json:"description"`
}

// Todo is the stored document shape. Label and User are weak references
// (ids only); the listing query joins them in.
type Todo struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Title        string              `bson:"title" json:"title"`
	Description  string              `bson:"description,omitempty" json:"description,omitempty"`
	Label        *primitive.ObjectID `bson:"label,omitempty" json:"label,omitempty"`
	IsCompleted  bool                `bson:"isCompleted" json:"isCompleted"`
	IsInProgress bool                `bson:"isInProgress" json:"isInProgress"`
	Priority     string              `bson:"priority,omitempty" json:"priority,omitempty"`
	Comments     []Comment           `bson:"comments" json:"comments"`
	User         primitive.ObjectID  `bson:"user" json:"user"`
	IsDeleted    bool                `bson:"isDeleted" json:"isDeleted"`
	Status       bool                `bson:"status" json:"status"`
	CreatedAt    time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// TodoPatch carries the mutable fields of an update. Nil means "leave as is".
type TodoPatch struct {
	Title        *string             `json:"title,omitempty"`
	Description  *string             `json:"description,omitempty"`
	Label        *primitive.ObjectID `json:"label,omitempty"`
	IsCompleted  *bool               `json:"isCompleted,omitempty"`
	IsInProgress *bool               `json:"isInProgress,omitempty"`
	Priority     *string             `json:"priority,omitempty"`
}

// IsEmpty reports whether the patch carries no field at all.
func (p TodoPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Label == nil &&
		p.IsCompleted == nil && p.IsInProgress == nil && p.Priority == nil
}
