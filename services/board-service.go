package services

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/danielstephany/kanban-api/logging"
	"github.com/danielstephany/kanban-api/models"
	"github.com/danielstephany/kanban-api/store"
)

// maxReplaceRetries bounds how often a mutation is replayed after losing a
// version race on the board document.
const maxReplaceRetries = 3

var (
	allowedSortFields = map[string]bool{"title": true, "createdAt": true, "updatedAt": true}
	allowedSearchBy   = map[string]bool{"title": true}
)

// BoardService is the board half of the consistency manager: every mutation
// of board structure goes through a read-mutate-replace cycle against the
// board's version field, so concurrent writers replay instead of clobbering
// each other.
type BoardService struct {
	boards         store.BoardStore
	tasks          store.TaskStore
	users          store.UserStore
	conflictPolicy models.ConflictPolicy
}

func NewBoardService(boards store.BoardStore, tasks store.TaskStore, users store.UserStore, conflictPolicy models.ConflictPolicy) *BoardService {
	return &BoardService{boards: boards, tasks: tasks, users: users, conflictPolicy: conflictPolicy}
}

// mutateBoard loads the board, applies fn, and persists conditionally on the
// version read. On a version conflict the cycle replays against a fresh
// read, so fn must be safe to run more than once.
func mutateBoard(ctx context.Context, boards store.BoardStore, id primitive.ObjectID, fn func(*models.Board) error) (*models.Board, error) {
	for attempt := 0; attempt < maxReplaceRetries; attempt++ {
		board, err := boards.GetByID(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return nil, models.NotFound("board not found")
		}
		if err != nil {
			return nil, err
		}

		if err := fn(board); err != nil {
			return nil, err
		}

		err = boards.Replace(ctx, board)
		if errors.Is(err, store.ErrVersionConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return board, nil
	}
	return nil, models.Conflict("board was modified concurrently, please retry")
}

func parseBoardID(boardID string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(boardID)
	if err != nil {
		return primitive.NilObjectID, models.InvalidInput("invalid board id")
	}
	return id, nil
}

func (s *BoardService) CreateBoard(ctx context.Context, ownerID, title string, columnTitles []string, extraUserIDs []string) (*models.Board, error) {
	if title == "" || len(columnTitles) == 0 {
		return nil, models.InvalidInput("title and columns are required")
	}
	owner, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return nil, models.Unauthorized("Not Authorized")
	}

	board := &models.Board{
		ID:      primitive.NewObjectID(),
		Owner:   owner,
		Title:   title,
		Columns: make(map[string]models.Column, len(columnTitles)),
		Tasks:   make(map[string]primitive.ObjectID),
		Version: 1,
	}
	for _, columnTitle := range columnTitles {
		if _, err := board.AddColumn(columnTitle, s.conflictPolicy); err != nil {
			return nil, err
		}
	}

	board.UsersWithAccess = []string{ownerID}
	board.GrantAccess(extraUserIDs)

	if err := s.boards.Insert(ctx, board); err != nil {
		return nil, err
	}

	logging.Logger.Infof("Event ID: BOARD_CREATED, Description: Created board %s with %d columns", board.ID.Hex(), len(board.ColumnOrder))
	return board, nil
}

func (s *BoardService) CreateColumn(ctx context.Context, boardID, title string) (*models.Board, error) {
	if title == "" {
		return nil, models.InvalidInput("title is required")
	}
	id, err := parseBoardID(boardID)
	if err != nil {
		return nil, err
	}
	return mutateBoard(ctx, s.boards, id, func(board *models.Board) error {
		_, err := board.AddColumn(title, s.conflictPolicy)
		return err
	})
}

// RenameColumn moves the column to its new slug and relabels every task that
// carried the old status. The board document is the atomicity anchor: its
// conditional replace lands first, then the task relabel; a relabel failure
// rolls the column back so neither half is left visible alone.
func (s *BoardService) RenameColumn(ctx context.Context, boardID, columnID, newTitle string) (*models.Board, error) {
	if columnID == "" || newTitle == "" {
		return nil, models.InvalidInput("boardId, columnId and newTitle are required")
	}
	id, err := parseBoardID(boardID)
	if err != nil {
		return nil, err
	}

	var newID string
	var oldTitle string
	board, err := mutateBoard(ctx, s.boards, id, func(board *models.Board) error {
		column, ok := board.Columns[columnID]
		if !ok {
			return models.NotFound("column not found on this board")
		}
		oldTitle = column.Title
		newID, err = board.RenameColumn(columnID, newTitle)
		return err
	})
	if err != nil {
		return nil, err
	}

	if newID == columnID {
		return board, nil
	}

	if _, err := s.tasks.RelabelStatus(ctx, id, columnID, newID); err != nil {
		logging.Logger.Errorf("Event ID: COLUMN_RENAME_RELABEL_FAILED, Description: Failed to relabel tasks from %q to %q on board %s: %v", columnID, newID, id.Hex(), err)
		if _, revertErr := mutateBoard(ctx, s.boards, id, func(board *models.Board) error {
			_, err := board.RenameColumn(newID, oldTitle)
			return err
		}); revertErr != nil {
			logging.Logger.Errorf("Event ID: COLUMN_RENAME_REVERT_FAILED, Description: Failed to revert column rename on board %s: %v", id.Hex(), revertErr)
		}
		return nil, models.Internal("failed to rename column")
	}

	return board, nil
}

// DeleteColumn removes the column and deletes every task that sat in it.
func (s *BoardService) DeleteColumn(ctx context.Context, boardID, columnID string) (*models.Board, error) {
	if columnID == "" {
		return nil, models.InvalidInput("boardId and columnId are required")
	}
	id, err := parseBoardID(boardID)
	if err != nil {
		return nil, err
	}

	board, err := mutateBoard(ctx, s.boards, id, func(board *models.Board) error {
		return board.RemoveColumn(columnID)
	})
	if err != nil {
		return nil, err
	}

	deleted, err := s.tasks.DeleteByStatus(ctx, id, columnID)
	if err != nil {
		logging.Logger.Errorf("Event ID: COLUMN_DELETE_TASKS_FAILED, Description: Column %q removed from board %s but task cleanup failed: %v", columnID, id.Hex(), err)
		return nil, models.Internal("failed to delete tasks for column")
	}
	logging.Logger.Infof("Event ID: COLUMN_DELETED, Description: Removed column %q and %d tasks from board %s", columnID, deleted, id.Hex())

	return board, nil
}

func (s *BoardService) MoveColumn(ctx context.Context, boardID string, columnOrder []string) (*models.Board, error) {
	if len(columnOrder) == 0 {
		return nil, models.InvalidInput("boardId and columnOrder are required")
	}
	id, err := parseBoardID(boardID)
	if err != nil {
		return nil, err
	}
	return mutateBoard(ctx, s.boards, id, func(board *models.Board) error {
		return board.SetColumnOrder(columnOrder)
	})
}

func (s *BoardService) RenameBoard(ctx context.Context, boardID, title string) (*models.Board, error) {
	if title == "" {
		return nil, models.InvalidInput("boardId and title are required")
	}
	id, err := parseBoardID(boardID)
	if err != nil {
		return nil, err
	}
	return mutateBoard(ctx, s.boards, id, func(board *models.Board) error {
		board.Title = title
		return nil
	})
}

// MoveTask accepts the client's replacement lists for the source and
// destination columns after revalidating them against the stored board, then
// points the task row at its new column. The row is fetched before the board
// is touched so a missing row aborts with no mutation; if the row write fails
// after the board landed, the move is reverted so the column lists never
// disagree with the task status.
func (s *BoardService) MoveTask(ctx context.Context, boardID string, source, dest models.ColumnUpdate, taskID, newStatus, userID string) (*models.BoardView, error) {
	id, err := parseBoardID(boardID)
	if err != nil {
		return nil, err
	}
	taskObjectID, err := primitive.ObjectIDFromHex(taskID)
	if err != nil {
		return nil, models.InvalidInput("invalid task id")
	}

	task, err := s.tasks.GetByID(ctx, taskObjectID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, models.NotFound("task not found")
	}
	if err != nil {
		return nil, err
	}

	board, err := mutateBoard(ctx, s.boards, id, func(board *models.Board) error {
		return board.ApplyMove(source, dest, taskID, newStatus)
	})
	if err != nil {
		return nil, err
	}

	task.Status = newStatus
	task.UpdatedBy = userID
	if err := s.tasks.Update(ctx, task); err != nil {
		logging.Logger.Errorf("Event ID: MOVE_TASK_STATUS_FAILED, Description: Board %s columns updated but task %s status update failed: %v", id.Hex(), taskID, err)
		if source.ColumnID != dest.ColumnID {
			if _, revertErr := mutateBoard(ctx, s.boards, id, func(board *models.Board) error {
				if board.HasColumn(dest.ColumnID) {
					if err := board.DetachTask(dest.ColumnID, taskObjectID); err != nil {
						return err
					}
				}
				if !board.HasColumn(source.ColumnID) {
					return models.NotFound("column not found on this board")
				}
				return board.AttachTask(source.ColumnID, taskObjectID)
			}); revertErr != nil {
				logging.Logger.Errorf("Event ID: MOVE_TASK_REVERT_FAILED, Description: Failed to revert move of task %s on board %s: %v", taskID, id.Hex(), revertErr)
			}
		}
		return nil, models.Internal("failed to update task status")
	}

	return s.populate(ctx, board)
}

// AddUsers grants board access to each listed user after checking they all
// exist.
func (s *BoardService) AddUsers(ctx context.Context, boardID string, userIDs []string) (*models.Board, error) {
	if len(userIDs) == 0 {
		return nil, models.InvalidInput("expected valid array of users")
	}
	id, err := parseBoardID(boardID)
	if err != nil {
		return nil, err
	}

	unique := make([]primitive.ObjectID, 0, len(userIDs))
	seen := make(map[string]bool, len(userIDs))
	for _, userID := range userIDs {
		objectID, err := primitive.ObjectIDFromHex(userID)
		if err != nil {
			return nil, models.InvalidInput("expected valid array of users")
		}
		if !seen[userID] {
			seen[userID] = true
			unique = append(unique, objectID)
		}
	}

	count, err := s.users.CountByIDs(ctx, unique)
	if err != nil {
		return nil, err
	}
	if count != int64(len(unique)) {
		return nil, models.InvalidInput("expected valid array of users")
	}

	return mutateBoard(ctx, s.boards, id, func(board *models.Board) error {
		board.GrantAccess(userIDs)
		return nil
	})
}

// DeleteBoard removes the board and every task on it. Owner only.
func (s *BoardService) DeleteBoard(ctx context.Context, boardID, userID string) error {
	id, err := parseBoardID(boardID)
	if err != nil {
		return err
	}

	board, err := s.boards.GetByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return models.NotFound("board not found")
	}
	if err != nil {
		return err
	}
	if board.Owner.Hex() != userID {
		return models.Unauthorized("only the board owner can delete this board")
	}

	deleted, err := s.tasks.DeleteByBoard(ctx, id)
	if err != nil {
		return err
	}
	if err := s.boards.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.NotFound("board not found")
		}
		return err
	}

	logging.Logger.Infof("Event ID: BOARD_DELETED, Description: Deleted board %s and %d tasks", id.Hex(), deleted)
	return nil
}

// GetBoard fetches a board the user has access to, with its task index
// populated with task titles.
func (s *BoardService) GetBoard(ctx context.Context, boardID, userID string) (*models.BoardView, error) {
	id, err := parseBoardID(boardID)
	if err != nil {
		return nil, err
	}
	board, err := s.boards.GetForUser(ctx, id, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, models.NotFound("board not found")
	}
	if err != nil {
		return nil, err
	}
	return s.populate(ctx, board)
}

func (s *BoardService) populate(ctx context.Context, board *models.Board) (*models.BoardView, error) {
	ids := make([]primitive.ObjectID, 0, len(board.Tasks))
	for _, taskID := range board.Tasks {
		ids = append(ids, taskID)
	}
	refs, err := s.tasks.TitlesByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return &models.BoardView{Board: *board, Tasks: refs}, nil
}

func (s *BoardService) OwnedByUser(ctx context.Context, userID string) ([]models.Board, error) {
	owner, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, models.Unauthorized("Not Authorized")
	}
	return s.boards.FindOwnedBy(ctx, owner)
}

func (s *BoardService) ForUsersWithAccess(ctx context.Context, userID string) ([]models.Board, error) {
	return s.boards.FindForUser(ctx, userID)
}

func (s *BoardService) NavList(ctx context.Context, userID string) ([]models.BoardNavItem, error) {
	return s.boards.NavList(ctx, userID)
}

// ListBoards serves the paginated board list. Sort and search fields are
// allow-listed before they reach the store.
func (s *BoardService) ListBoards(ctx context.Context, userID string, query models.BoardQuery) (*models.BoardPage, error) {
	if query.Page < 0 {
		return nil, models.InvalidInput("page must not be negative")
	}
	if query.Limit <= 0 {
		query.Limit = 10
	}
	if query.Limit > 100 {
		return nil, models.InvalidInput("limit must be 100 or less")
	}
	if query.SortBy == "" {
		query.SortBy = "updatedAt"
	}
	if !allowedSortFields[query.SortBy] {
		return nil, models.InvalidInput("sortBy must be one of title, createdAt, updatedAt")
	}
	if query.Direction != "" && query.Direction != "asc" && query.Direction != "desc" {
		return nil, models.InvalidInput("direction must be asc or desc")
	}
	if query.SearchBy != "" && !allowedSearchBy[query.SearchBy] {
		return nil, models.InvalidInput("searchBy must be title")
	}
	return s.boards.Page(ctx, userID, query)
}
