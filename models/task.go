package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Task is a top-level document. Status holds the slug of the column the task
// currently sits in on its board; the board keeps the mirror side of that
// link in Column.TaskIDs.
type Task struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Status      string             `bson:"status" json:"status"`
	BoardID     primitive.ObjectID `bson:"boardId" json:"boardId"`
	CreatedBy   string             `bson:"createdBy" json:"createdBy"`
	UpdatedBy   string             `bson:"updatedBy" json:"updatedBy"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// TaskRef is the projection embedded in a populated board response.
type TaskRef struct {
	ID    primitive.ObjectID `json:"id"`
	Title string             `json:"title"`
}
