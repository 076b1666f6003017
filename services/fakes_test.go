package services

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/danielstephany/kanban-api/models"
	"github.com/danielstephany/kanban-api/store"
)

// The fakes mirror the Mongo stores' semantics closely enough for the
// consistency manager: reads hand out copies, and Replace only lands when
// the version still matches, bumping it on success.

func cloneBoard(b *models.Board) *models.Board {
	clone := *b
	clone.Columns = make(map[string]models.Column, len(b.Columns))
	for id, column := range b.Columns {
		column.TaskIDs = append([]string(nil), column.TaskIDs...)
		clone.Columns[id] = column
	}
	clone.ColumnOrder = append([]string(nil), b.ColumnOrder...)
	clone.Tasks = make(map[string]primitive.ObjectID, len(b.Tasks))
	for hex, id := range b.Tasks {
		clone.Tasks[hex] = id
	}
	clone.UsersWithAccess = append([]string(nil), b.UsersWithAccess...)
	return &clone
}

type fakeBoardStore struct {
	boards map[primitive.ObjectID]*models.Board

	replaceConflicts int // next N Replace calls lose the version race
	insertErr        error
	replaceErr       error
}

func newFakeBoardStore() *fakeBoardStore {
	return &fakeBoardStore{boards: map[primitive.ObjectID]*models.Board{}}
}

func (f *fakeBoardStore) Insert(ctx context.Context, board *models.Board) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.boards[board.ID] = cloneBoard(board)
	return nil
}

func (f *fakeBoardStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Board, error) {
	board, ok := f.boards[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return cloneBoard(board), nil
}

func (f *fakeBoardStore) GetForUser(ctx context.Context, id primitive.ObjectID, userID string) (*models.Board, error) {
	board, ok := f.boards[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	for _, access := range board.UsersWithAccess {
		if access == userID {
			return cloneBoard(board), nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeBoardStore) Replace(ctx context.Context, board *models.Board) error {
	if f.replaceConflicts > 0 {
		f.replaceConflicts--
		return store.ErrVersionConflict
	}
	if f.replaceErr != nil {
		return f.replaceErr
	}
	stored, ok := f.boards[board.ID]
	if !ok || stored.Version != board.Version {
		return store.ErrVersionConflict
	}
	board.Version++
	board.UpdatedAt = time.Now().UTC()
	f.boards[board.ID] = cloneBoard(board)
	return nil
}

func (f *fakeBoardStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, ok := f.boards[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.boards, id)
	return nil
}

func (f *fakeBoardStore) FindOwnedBy(ctx context.Context, owner primitive.ObjectID) ([]models.Board, error) {
	boards := []models.Board{}
	for _, board := range f.boards {
		if board.Owner == owner {
			boards = append(boards, *cloneBoard(board))
		}
	}
	return boards, nil
}

func (f *fakeBoardStore) FindForUser(ctx context.Context, userID string) ([]models.Board, error) {
	boards := []models.Board{}
	for _, board := range f.boards {
		for _, access := range board.UsersWithAccess {
			if access == userID {
				boards = append(boards, *cloneBoard(board))
				break
			}
		}
	}
	return boards, nil
}

func (f *fakeBoardStore) NavList(ctx context.Context, userID string) ([]models.BoardNavItem, error) {
	boards, err := f.FindForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	items := []models.BoardNavItem{}
	for _, board := range boards {
		items = append(items, models.BoardNavItem{ID: board.ID, Title: board.Title})
	}
	return items, nil
}

func (f *fakeBoardStore) Page(ctx context.Context, userID string, query models.BoardQuery) (*models.BoardPage, error) {
	boards, err := f.FindForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if query.SearchBy == "title" && query.SearchValue != "" {
		filtered := boards[:0]
		for _, board := range boards {
			if strings.Contains(strings.ToLower(board.Title), strings.ToLower(query.SearchValue)) {
				filtered = append(filtered, board)
			}
		}
		boards = filtered
	}
	return &models.BoardPage{Data: boards, Page: query.Page, Limit: query.Limit, Total: int64(len(boards))}, nil
}

type fakeTaskStore struct {
	tasks map[primitive.ObjectID]*models.Task

	insertErr  error
	updateErr  error
	deleteErr  error
	relabelErr error
}

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{tasks: map[primitive.ObjectID]*models.Task{}}
}

func (f *fakeTaskStore) Insert(ctx context.Context, task *models.Task) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	clone := *task
	f.tasks[task.ID] = &clone
	return nil
}

func (f *fakeTaskStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Task, error) {
	task, ok := f.tasks[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	clone := *task
	return &clone, nil
}

func (f *fakeTaskStore) Update(ctx context.Context, task *models.Task) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.tasks[task.ID]; !ok {
		return store.ErrNotFound
	}
	clone := *task
	f.tasks[task.ID] = &clone
	return nil
}

func (f *fakeTaskStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.tasks[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.tasks, id)
	return nil
}

func (f *fakeTaskStore) FindByBoard(ctx context.Context, boardID primitive.ObjectID) ([]models.Task, error) {
	tasks := []models.Task{}
	for _, task := range f.tasks {
		if task.BoardID == boardID {
			tasks = append(tasks, *task)
		}
	}
	return tasks, nil
}

func (f *fakeTaskStore) TitlesByIDs(ctx context.Context, ids []primitive.ObjectID) (map[string]models.TaskRef, error) {
	refs := map[string]models.TaskRef{}
	for _, id := range ids {
		if task, ok := f.tasks[id]; ok {
			refs[id.Hex()] = models.TaskRef{ID: id, Title: task.Title}
		}
	}
	return refs, nil
}

func (f *fakeTaskStore) RelabelStatus(ctx context.Context, boardID primitive.ObjectID, oldStatus, newStatus string) (int64, error) {
	if f.relabelErr != nil {
		return 0, f.relabelErr
	}
	var modified int64
	for _, task := range f.tasks {
		if task.BoardID == boardID && task.Status == oldStatus {
			task.Status = newStatus
			modified++
		}
	}
	return modified, nil
}

func (f *fakeTaskStore) DeleteByStatus(ctx context.Context, boardID primitive.ObjectID, status string) (int64, error) {
	var deleted int64
	for id, task := range f.tasks {
		if task.BoardID == boardID && task.Status == status {
			delete(f.tasks, id)
			deleted++
		}
	}
	return deleted, nil
}

func (f *fakeTaskStore) DeleteByBoard(ctx context.Context, boardID primitive.ObjectID) (int64, error) {
	var deleted int64
	for id, task := range f.tasks {
		if task.BoardID == boardID {
			delete(f.tasks, id)
			deleted++
		}
	}
	return deleted, nil
}

type fakeUserStore struct {
	users map[primitive.ObjectID]*models.User

	insertErr error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[primitive.ObjectID]*models.User{}}
}

func (f *fakeUserStore) Insert(ctx context.Context, user *models.User) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeUserStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (f *fakeUserStore) CountByIDs(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	var count int64
	for _, id := range ids {
		if _, ok := f.users[id]; ok {
			count++
		}
	}
	return count, nil
}
