package services

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/danielstephany/kanban-api/logging"
	"github.com/danielstephany/kanban-api/models"
	"github.com/danielstephany/kanban-api/store"
)

// TaskService is the task half of the consistency manager: task rows and the
// column lists that mirror them always change as one operation.
type TaskService struct {
	tasks  store.TaskStore
	boards store.BoardStore
}

func NewTaskService(tasks store.TaskStore, boards store.BoardStore) *TaskService {
	return &TaskService{tasks: tasks, boards: boards}
}

// CreateTask inserts the task row, then attaches it to the named column and
// the board task index. If the board attach ultimately fails the row is
// deleted again so no task exists outside a column.
func (s *TaskService) CreateTask(ctx context.Context, boardID, title, description, status, authorID string) (*models.Task, error) {
	if title == "" || status == "" || boardID == "" {
		return nil, models.InvalidInput("title, status and boardId are required")
	}
	id, err := parseBoardID(boardID)
	if err != nil {
		return nil, err
	}

	board, err := s.boards.GetByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, models.NotFound("board not found")
	}
	if err != nil {
		return nil, err
	}
	columnID, ok := board.ResolveColumn(status)
	if !ok {
		return nil, models.NotFound("column not found on this board")
	}

	now := time.Now().UTC()
	task := &models.Task{
		ID:          primitive.NewObjectID(),
		Title:       title,
		Description: description,
		Status:      columnID,
		BoardID:     id,
		CreatedBy:   authorID,
		UpdatedBy:   authorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.tasks.Insert(ctx, task); err != nil {
		return nil, err
	}

	_, err = mutateBoard(ctx, s.boards, id, func(board *models.Board) error {
		columnID, ok := board.ResolveColumn(status)
		if !ok {
			return models.NotFound("column not found on this board")
		}
		task.Status = columnID
		return board.AttachTask(columnID, task.ID)
	})
	if err != nil {
		if deleteErr := s.tasks.Delete(ctx, task.ID); deleteErr != nil {
			logging.Logger.Errorf("Event ID: CREATE_TASK_CLEANUP_FAILED, Description: Failed to remove task %s after board attach failed: %v", task.ID.Hex(), deleteErr)
		}
		return nil, err
	}

	return task, nil
}

func (s *TaskService) GetTask(ctx context.Context, taskID string) (*models.Task, error) {
	id, err := primitive.ObjectIDFromHex(taskID)
	if err != nil {
		return nil, models.InvalidInput("invalid task id")
	}
	task, err := s.tasks.GetByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, models.NotFound("task not found")
	}
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) ListForBoard(ctx context.Context, boardID string) ([]models.Task, error) {
	id, err := parseBoardID(boardID)
	if err != nil {
		return nil, err
	}
	return s.tasks.FindByBoard(ctx, id)
}

// UpdateTask edits the task row. When the status changes, the task is moved
// out of its old column list and into the new one before the row is
// rewritten, so the board never points at a task under two statuses; a
// failed row write moves the task back to its old column.
func (s *TaskService) UpdateTask(ctx context.Context, taskID, title, description, status, userID string) (*models.Task, error) {
	if title == "" || status == "" {
		return nil, models.InvalidInput("title and status are required")
	}
	id, err := primitive.ObjectIDFromHex(taskID)
	if err != nil {
		return nil, models.InvalidInput("invalid task id")
	}

	task, err := s.tasks.GetByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, models.NotFound("task not found")
	}
	if err != nil {
		return nil, err
	}

	oldStatus := task.Status
	newStatus := task.Status
	if _, err := mutateBoard(ctx, s.boards, task.BoardID, func(board *models.Board) error {
		columnID, ok := board.ResolveColumn(status)
		if !ok {
			return models.NotFound("column not found on this board")
		}
		newStatus = columnID
		if columnID == task.Status {
			return nil
		}
		if board.HasColumn(task.Status) {
			if err := board.DetachTask(task.Status, task.ID); err != nil {
				return err
			}
		}
		return board.AttachTask(columnID, task.ID)
	}); err != nil {
		return nil, err
	}

	task.Title = title
	task.Description = description
	task.Status = newStatus
	task.UpdatedBy = userID
	task.UpdatedAt = time.Now().UTC()
	if err := s.tasks.Update(ctx, task); err != nil {
		logging.Logger.Errorf("Event ID: UPDATE_TASK_ROW_FAILED, Description: Board %s columns updated but task %s row update failed: %v", task.BoardID.Hex(), task.ID.Hex(), err)
		if newStatus != oldStatus {
			if _, revertErr := mutateBoard(ctx, s.boards, task.BoardID, func(board *models.Board) error {
				if board.HasColumn(newStatus) {
					if err := board.DetachTask(newStatus, task.ID); err != nil {
						return err
					}
				}
				if !board.HasColumn(oldStatus) {
					return models.NotFound("column not found on this board")
				}
				return board.AttachTask(oldStatus, task.ID)
			}); revertErr != nil {
				logging.Logger.Errorf("Event ID: UPDATE_TASK_REVERT_FAILED, Description: Failed to move task %s back to column %q on board %s: %v", task.ID.Hex(), oldStatus, task.BoardID.Hex(), revertErr)
			}
		}
		return nil, models.Internal("failed to update task")
	}

	return task, nil
}

// DeleteTask detaches the task from its board first and only then deletes
// the row. A failed board lookup aborts before anything is removed.
func (s *TaskService) DeleteTask(ctx context.Context, taskID string) error {
	id, err := primitive.ObjectIDFromHex(taskID)
	if err != nil {
		return models.InvalidInput("invalid task id")
	}

	task, err := s.tasks.GetByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return models.NotFound("task not found")
	}
	if err != nil {
		return err
	}

	if _, err := mutateBoard(ctx, s.boards, task.BoardID, func(board *models.Board) error {
		if !board.HasColumn(task.Status) {
			return models.NotFound("column not found on this board")
		}
		return board.DetachTask(task.Status, task.ID)
	}); err != nil {
		return err
	}

	if err := s.tasks.Delete(ctx, id); err != nil && !errors.Is(err, store.ErrNotFound) {
		logging.Logger.Errorf("Event ID: DELETE_TASK_ROW_FAILED, Description: Task %s detached from board %s but row delete failed: %v", id.Hex(), task.BoardID.Hex(), err)
		return models.Internal("failed to delete task")
	}
	return nil
}
