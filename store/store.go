package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/danielstephany/kanban-api/models"
)

// ErrNotFound is returned when a lookup matches no document.
var ErrNotFound = errors.New("not found")

// ErrVersionConflict is returned by Replace when the board was modified
// since it was read.
var ErrVersionConflict = errors.New("version conflict")

type UserStore interface {
	Insert(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	CountByIDs(ctx context.Context, ids []primitive.ObjectID) (int64, error)
}

type BoardStore interface {
	Insert(ctx context.Context, board *models.Board) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Board, error)
	// GetForUser fetches the board only when the user has access to it.
	GetForUser(ctx context.Context, id primitive.ObjectID, userID string) (*models.Board, error)
	// Replace persists the board conditionally on its version field and
	// bumps the version on success.
	Replace(ctx context.Context, board *models.Board) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	FindOwnedBy(ctx context.Context, owner primitive.ObjectID) ([]models.Board, error)
	FindForUser(ctx context.Context, userID string) ([]models.Board, error)
	NavList(ctx context.Context, userID string) ([]models.BoardNavItem, error)
	Page(ctx context.Context, userID string, query models.BoardQuery) (*models.BoardPage, error)
}

type TaskStore interface {
	Insert(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	FindByBoard(ctx context.Context, boardID primitive.ObjectID) ([]models.Task, error)
	TitlesByIDs(ctx context.Context, ids []primitive.ObjectID) (map[string]models.TaskRef, error)
	// RelabelStatus rewrites the status of every task on the board that
	// currently carries oldStatus.
	RelabelStatus(ctx context.Context, boardID primitive.ObjectID, oldStatus, newStatus string) (int64, error)
	DeleteByStatus(ctx context.Context, boardID primitive.ObjectID, status string) (int64, error)
	DeleteByBoard(ctx context.Context, boardID primitive.ObjectID) (int64, error)
}
