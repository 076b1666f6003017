package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/danielstephany/kanban-api/utils"
)

// ConflictPolicy decides what happens when two column titles slug to the
// same id on one board.
type ConflictPolicy string

const (
	// ConflictReject fails the operation with a 409.
	ConflictReject ConflictPolicy = "reject"
	// ConflictSuffix disambiguates with a numeric suffix: todo, todo-2, ...
	ConflictSuffix ConflictPolicy = "suffix"
)

type Column struct {
	ColumnID string   `bson:"columnId" json:"columnId"`
	Title    string   `bson:"title" json:"title"`
	TaskIDs  []string `bson:"taskIds" json:"taskIds"`
}

// Board owns its columns. Columns and ColumnOrder must always cover the same
// id set, and every Column.TaskIDs entry must match the set of tasks whose
// status equals that column id. Version backs optimistic concurrency: the
// store only replaces a board when the stored version still matches.
type Board struct {
	ID              primitive.ObjectID            `bson:"_id,omitempty" json:"id"`
	Owner           primitive.ObjectID            `bson:"owner" json:"owner"`
	Title           string                        `bson:"title" json:"title"`
	Columns         map[string]Column             `bson:"columns" json:"columns"`
	ColumnOrder     []string                      `bson:"columnOrder" json:"columnOrder"`
	Tasks           map[string]primitive.ObjectID `bson:"tasks" json:"tasks"`
	UsersWithAccess []string                      `bson:"usersWithAccess" json:"usersWithAccess"`
	Version         int64                         `bson:"version" json:"-"`
	CreatedAt       time.Time                     `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time                     `bson:"updatedAt" json:"updatedAt"`
}

// BoardNavItem is the minimal shape for the nav-list endpoint.
type BoardNavItem struct {
	ID    primitive.ObjectID `bson:"_id" json:"id"`
	Title string             `bson:"title" json:"title"`
}

// BoardView is a board with its task index populated with task titles.
type BoardView struct {
	Board
	Tasks map[string]TaskRef `json:"tasks"`
}

// BoardQuery carries the pagination parameters for the board list endpoint.
type BoardQuery struct {
	Page        int
	Limit       int
	SortBy      string
	Direction   string
	SearchBy    string
	SearchValue string
}

// BoardPage is the paginated list envelope.
type BoardPage struct {
	Data  []Board `json:"data"`
	Page  int     `json:"page"`
	Limit int     `json:"limit"`
	Total int64   `json:"total"`
}

// ColumnUpdate is a client-proposed replacement list for one column, used by
// the move-task operation.
type ColumnUpdate struct {
	ColumnID string   `json:"columnId"`
	TaskIDs  []string `json:"taskIds"`
}

// HasColumn reports whether the board has a column with the given id.
func (b *Board) HasColumn(columnID string) bool {
	_, ok := b.Columns[columnID]
	return ok
}

// ResolveColumn maps a client-supplied status to the canonical column id. It
// accepts either the slug itself or a display title that slugs to one.
func (b *Board) ResolveColumn(status string) (string, bool) {
	if b.HasColumn(status) {
		return status, true
	}
	slug := utils.KebabCase(status)
	if b.HasColumn(slug) {
		return slug, true
	}
	return "", false
}

// AddColumn slugs the title into a column id, applies the conflict policy,
// and appends the new column to the tail of the order.
func (b *Board) AddColumn(title string, policy ConflictPolicy) (string, error) {
	columnID := utils.KebabCase(title)
	if columnID == "" {
		return "", InvalidInput("column title is required")
	}
	if b.HasColumn(columnID) {
		if policy != ConflictSuffix {
			return "", Conflict(fmt.Sprintf("column %q already exists on this board", columnID))
		}
		base := columnID
		for n := 2; ; n++ {
			columnID = fmt.Sprintf("%s-%d", base, n)
			if !b.HasColumn(columnID) {
				break
			}
		}
	}
	if b.Columns == nil {
		b.Columns = make(map[string]Column)
	}
	b.Columns[columnID] = Column{ColumnID: columnID, Title: title, TaskIDs: []string{}}
	b.ColumnOrder = append(b.ColumnOrder, columnID)
	return columnID, nil
}

// RenameColumn re-slugs the column under its new title, moving the map entry
// and the order slot to the new id. Task relabeling is the caller's half of
// the operation. Returns the new column id.
func (b *Board) RenameColumn(columnID, newTitle string) (string, error) {
	column, ok := b.Columns[columnID]
	if !ok {
		return "", NotFound(fmt.Sprintf("column %q not found on this board", columnID))
	}
	newID := utils.KebabCase(newTitle)
	if newID == "" {
		return "", InvalidInput("new column title is required")
	}
	if newID == columnID {
		column.Title = newTitle
		b.Columns[columnID] = column
		return newID, nil
	}
	if b.HasColumn(newID) {
		return "", Conflict(fmt.Sprintf("column %q already exists on this board", newID))
	}
	delete(b.Columns, columnID)
	column.ColumnID = newID
	column.Title = newTitle
	b.Columns[newID] = column
	for i, id := range b.ColumnOrder {
		if id == columnID {
			b.ColumnOrder[i] = newID
		}
	}
	return newID, nil
}

// RemoveColumn drops the column from the map and the order, and clears its
// tasks from the board task index. Deleting the task rows themselves is the
// caller's half of the operation.
func (b *Board) RemoveColumn(columnID string) error {
	column, ok := b.Columns[columnID]
	if !ok {
		return NotFound(fmt.Sprintf("column %q not found on this board", columnID))
	}
	for _, taskID := range column.TaskIDs {
		delete(b.Tasks, taskID)
	}
	delete(b.Columns, columnID)
	order := b.ColumnOrder[:0]
	for _, id := range b.ColumnOrder {
		if id != columnID {
			order = append(order, id)
		}
	}
	b.ColumnOrder = order
	return nil
}

// SetColumnOrder replaces the order wholesale. The new order must be a
// permutation of the existing column ids.
func (b *Board) SetColumnOrder(order []string) error {
	if len(order) != len(b.Columns) {
		return InvalidInput("columnOrder must include every column exactly once")
	}
	seen := make(map[string]bool, len(order))
	for _, id := range order {
		if !b.HasColumn(id) || seen[id] {
			return InvalidInput("columnOrder must include every column exactly once")
		}
		seen[id] = true
	}
	b.ColumnOrder = append([]string(nil), order...)
	return nil
}

// AttachTask appends the task to the column's list and records it in the
// board task index. A task already present is left in place.
func (b *Board) AttachTask(columnID string, taskID primitive.ObjectID) error {
	column, ok := b.Columns[columnID]
	if !ok {
		return NotFound(fmt.Sprintf("column %q not found on this board", columnID))
	}
	hex := taskID.Hex()
	if !containsString(column.TaskIDs, hex) {
		column.TaskIDs = append(column.TaskIDs, hex)
		b.Columns[columnID] = column
	}
	if b.Tasks == nil {
		b.Tasks = make(map[string]primitive.ObjectID)
	}
	b.Tasks[hex] = taskID
	return nil
}

// DetachTask removes the task from the column's list and from the board task
// index.
func (b *Board) DetachTask(columnID string, taskID primitive.ObjectID) error {
	column, ok := b.Columns[columnID]
	if !ok {
		return NotFound(fmt.Sprintf("column %q not found on this board", columnID))
	}
	column.TaskIDs = removeString(column.TaskIDs, taskID.Hex())
	b.Columns[columnID] = column
	delete(b.Tasks, taskID.Hex())
	return nil
}

// ApplyMove validates the client-proposed replacement lists against the
// stored columns before accepting them: the task must currently sit in the
// source column, the proposed source list must be the stored one minus the
// task, and the proposed destination list must be the stored one plus the
// task. When source and destination name the same column the move is a
// reorder: the destination list must be a permutation of the stored column
// and it alone lands. Ordering within each list is the client's to choose.
func (b *Board) ApplyMove(source, dest ColumnUpdate, taskID, newStatus string) error {
	if taskID == "" || source.ColumnID == "" || dest.ColumnID == "" ||
		source.TaskIDs == nil || dest.TaskIDs == nil {
		return InvalidInput("boardId, sourceColumn, destColumn, taskId and taskStatus are required")
	}
	if source.ColumnID == dest.ColumnID {
		stored, ok := b.Columns[dest.ColumnID]
		if !ok {
			return NotFound(fmt.Sprintf("column %q not found on this board", dest.ColumnID))
		}
		if newStatus != dest.ColumnID {
			return InvalidInput("taskStatus must match the destination column")
		}
		if !containsString(dest.TaskIDs, taskID) {
			return InvalidInput("task is not in the destination column")
		}
		if !sameIDSet(dest.TaskIDs, stored.TaskIDs) {
			return InvalidInput("destColumn.taskIds must be a reordering of the stored column")
		}
		stored.TaskIDs = append([]string(nil), dest.TaskIDs...)
		b.Columns[dest.ColumnID] = stored
		return nil
	}
	storedSource, ok := b.Columns[source.ColumnID]
	if !ok {
		return NotFound(fmt.Sprintf("column %q not found on this board", source.ColumnID))
	}
	storedDest, ok := b.Columns[dest.ColumnID]
	if !ok {
		return NotFound(fmt.Sprintf("column %q not found on this board", dest.ColumnID))
	}
	if newStatus != dest.ColumnID {
		return InvalidInput("taskStatus must match the destination column")
	}
	if !containsString(storedSource.TaskIDs, taskID) {
		return InvalidInput("task is not in the source column")
	}
	if !sameIDSet(source.TaskIDs, removeString(append([]string(nil), storedSource.TaskIDs...), taskID)) {
		return InvalidInput("sourceColumn.taskIds does not match the stored column without the moved task")
	}
	if !sameIDSet(dest.TaskIDs, append(append([]string(nil), storedDest.TaskIDs...), taskID)) {
		return InvalidInput("destColumn.taskIds does not match the stored column with the moved task")
	}
	storedSource.TaskIDs = append([]string(nil), source.TaskIDs...)
	storedDest.TaskIDs = append([]string(nil), dest.TaskIDs...)
	b.Columns[source.ColumnID] = storedSource
	b.Columns[dest.ColumnID] = storedDest
	return nil
}

// GrantAccess appends user ids not already present.
func (b *Board) GrantAccess(userIDs []string) {
	present := make(map[string]bool, len(b.UsersWithAccess))
	for _, id := range b.UsersWithAccess {
		present[id] = true
	}
	for _, id := range userIDs {
		if id != "" && !present[id] {
			b.UsersWithAccess = append(b.UsersWithAccess, id)
			present[id] = true
		}
	}
}

func containsString(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}

func removeString(list []string, value string) []string {
	out := list[:0]
	for _, item := range list {
		if item != value {
			out = append(out, item)
		}
	}
	return out
}

// sameIDSet treats both lists as sets and requires each entry to appear
// exactly once on both sides.
func sameIDSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	counts := make(map[string]int, len(a))
	for _, id := range a {
		counts[id]++
		if counts[id] > 1 {
			return false
		}
	}
	for _, id := range b {
		counts[id]--
		if counts[id] != 0 {
			return false
		}
	}
	return true
}
