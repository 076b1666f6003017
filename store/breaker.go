package store

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/danielstephany/kanban-api/logging"
	"github.com/danielstephany/kanban-api/models"
)

// NewBreaker builds the circuit breaker guarding store access. Lookup misses
// and version conflicts are expected outcomes, not store failures, so they
// never trip the breaker.
func NewBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     2 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, ErrVersionConflict)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Logger.Infof("Event ID: CIRCUIT_BREAKER_STATE_CHANGE, Description: Circuit Breaker '%s' changed from '%s' to '%s'", name, from.String(), to.String())
		},
	})
}

// BreakerUserStore wraps a UserStore with a circuit breaker.
type BreakerUserStore struct {
	inner UserStore
	cb    *gobreaker.CircuitBreaker
}

func NewBreakerUserStore(inner UserStore, cb *gobreaker.CircuitBreaker) *BreakerUserStore {
	return &BreakerUserStore{inner: inner, cb: cb}
}

func (s *BreakerUserStore) Insert(ctx context.Context, user *models.User) error {
	_, err := s.cb.Execute(func() (interface{}, error) {
		return nil, s.inner.Insert(ctx, user)
	})
	return err
}

func (s *BreakerUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	v, err := s.cb.Execute(func() (interface{}, error) {
		return s.inner.GetByEmail(ctx, email)
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.User), nil
}

func (s *BreakerUserStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	v, err := s.cb.Execute(func() (interface{}, error) {
		return s.inner.GetByID(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.User), nil
}

func (s *BreakerUserStore) CountByIDs(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	v, err := s.cb.Execute(func() (interface{}, error) {
		return s.inner.CountByIDs(ctx, ids)
	})
	if err != nil {
		return 0, err
	}
	return v.(int64), nil
}

// BreakerBoardStore wraps a BoardStore with a circuit breaker.
type BreakerBoardStore struct {
	inner BoardStore
	cb    *gobreaker.CircuitBreaker
}

func NewBreakerBoardStore(inner BoardStore, cb *gobreaker.CircuitBreaker) *BreakerBoardStore {
	return &BreakerBoardStore{inner: inner, cb: cb}
}

func (s *BreakerBoardStore) Insert(ctx context.Context, board *models.Board) error {
	_, err := s.cb.Execute(func() (interface{}, error) {
		return nil, s.inner.Insert(ctx, board)
	})
	return err
}

func (s *BreakerBoardStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Board, error) {
	v, err := s.cb.Execute(func() (interface{}, error) {
		return s.inner.GetByID(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Board), nil
}

func (s *BreakerBoardStore) GetForUser(ctx context.Context, id primitive.ObjectID, userID string) (*models.Board, error) {
	v, err := s.cb.Execute(func() (interface{}, error) {
		return s.inner.GetForUser(ctx, id, userID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Board), nil
}

func (s *BreakerBoardStore) Replace(ctx context.Context, board *models.Board) error {
	_, err := s.cb.Execute(func() (interface{}, error) {
		return nil, s.inner.Replace(ctx, board)
	})
	return err
}

func (s *BreakerBoardStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.cb.Execute(func() (interface{}, error) {
		return nil, s.inner.Delete(ctx, id)
	})
	return err
}

func (s *BreakerBoardStore) FindOwnedBy(ctx context.Context, owner primitive.ObjectID) ([]models.Board, error) {
	v, err := s.cb.Execute(func() (interface{}, error) {
		return s.inner.FindOwnedBy(ctx, owner)
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.Board), nil
}

func (s *BreakerBoardStore) FindForUser(ctx context.Context, userID string) ([]models.Board, error) {
	v, err := s.cb.Execute(func() (interface{}, error) {
		return s.inner.FindForUser(ctx, userID)
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.Board), nil
}

func (s *BreakerBoardStore) NavList(ctx context.Context, userID string) ([]models.BoardNavItem, error) {
	v, err := s.cb.Execute(func() (interface{}, error) {
		return s.inner.NavList(ctx, userID)
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.BoardNavItem), nil
}

func (s *BreakerBoardStore) Page(ctx context.Context, userID string, query models.BoardQuery) (*models.BoardPage, error) {
	v, err := s.cb.Execute(func() (interface{}, error) {
		return s.inner.Page(ctx, userID, query)
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.BoardPage), nil
}

// BreakerTaskStore wraps a TaskStore with a circuit breaker.
type BreakerTaskStore struct {
	inner TaskStore
	cb    *gobreaker.CircuitBreaker
}

func NewBreakerTaskStore(inner TaskStore, cb *gobreaker.CircuitBreaker) *BreakerTaskStore {
	return &BreakerTaskStore{inner: inner, cb: cb}
}

func (s *BreakerTaskStore) Insert(ctx context.Context, task *models.Task) error {
	_, err := s.cb.Execute(func() (interface{}, error) {
		return nil, s.inner.Insert(ctx, task)
	})
	return err
}

func (s *BreakerTaskStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Task, error) {
	v, err := s.cb.Execute(func() (interface{}, error) {
		return s.inner.GetByID(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Task), nil
}

func (s *BreakerTaskStore) Update(ctx context.Context, task *models.Task) error {
	_, err := s.cb.Execute(func() (interface{}, error) {
		return nil, s.inner.Update(ctx, task)
	})
	return err
}

func (s *BreakerTaskStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.cb.Execute(func() (interface{}, error) {
		return nil, s.inner.Delete(ctx, id)
	})
	return err
}

func (s *BreakerTaskStore) FindByBoard(ctx context.Context, boardID primitive.ObjectID) ([]models.Task, error) {
	v, err := s.cb.Execute(func() (interface{}, error) {
		return s.inner.FindByBoard(ctx, boardID)
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.Task), nil
}

func (s *BreakerTaskStore) TitlesByIDs(ctx context.Context, ids []primitive.ObjectID) (map[string]models.TaskRef, error) {
	v, err := s.cb.Execute(func() (interface{}, error) {
		return s.inner.TitlesByIDs(ctx, ids)
	})
	if err != nil {
		return nil, err
	}
	return v.(map[string]models.TaskRef), nil
}

func (s *BreakerTaskStore) RelabelStatus(ctx context.Context, boardID primitive.ObjectID, oldStatus, newStatus string) (int64, error) {
	v, err := s.cb.Execute(func() (interface{}, error) {
		return s.inner.RelabelStatus(ctx, boardID, oldStatus, newStatus)
	})
	if err != nil {
		return 0, err
	}
	return v.(int64), nil
}

func (s *BreakerTaskStore) DeleteByStatus(ctx context.Context, boardID primitive.ObjectID, status string) (int64, error) {
	v, err := s.cb.Execute(func() (interface{}, error) {
		return s.inner.DeleteByStatus(ctx, boardID, status)
	})
	if err != nil {
		return 0, err
	}
	return v.(int64), nil
}

func (s *BreakerTaskStore) DeleteByBoard(ctx context.Context, boardID primitive.ObjectID) (int64, error) {
	v, err := s.cb.Execute(func() (interface{}, error) {
		return s.inner.DeleteByBoard(ctx, boardID)
	})
	if err != nil {
		return 0, err
	}
	return v.(int64), nil
}
