package store

import (
	"context"
	"errors"
	"testing"

	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/danielstephany/kanban-api/models"
)

// flakyUserStore fails every call with err until it is cleared.
type flakyUserStore struct {
	err error
}

func (f *flakyUserStore) Insert(ctx context.Context, user *models.User) error { return f.err }

func (f *flakyUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.User{Email: email}, nil
}

func (f *flakyUserStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.User{ID: id}, nil
}

func (f *flakyUserStore) CountByIDs(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	return int64(len(ids)), nil
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	inner := &flakyUserStore{err: errors.New("connection reset")}
	users := NewBreakerUserStore(inner, NewBreaker("test-cb"))
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		if _, err := users.GetByEmail(ctx, "a@b.c"); err == nil {
			t.Fatalf("call %d: expected failure", i)
		}
	}

	// fifth call must be rejected without reaching the store
	inner.err = nil
	if _, err := users.GetByEmail(ctx, "a@b.c"); !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("expected open breaker, got %v", err)
	}
}

func TestBreakerIgnoresExpectedErrors(t *testing.T) {
	inner := &flakyUserStore{err: ErrNotFound}
	users := NewBreakerUserStore(inner, NewBreaker("test-cb"))
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		if _, err := users.GetByEmail(ctx, "a@b.c"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("call %d: got %v, want ErrNotFound", i, err)
		}
	}
}

func TestBreakerPassesThroughWhenHealthy(t *testing.T) {
	users := NewBreakerUserStore(&flakyUserStore{}, NewBreaker("test-cb"))

	user, err := users.GetByEmail(context.Background(), "a@b.c")
	if err != nil || user.Email != "a@b.c" {
		t.Fatalf("healthy call failed: %v %+v", err, user)
	}

	count, err := users.CountByIDs(context.Background(), []primitive.ObjectID{primitive.NewObjectID()})
	if err != nil || count != 1 {
		t.Fatalf("count: %v %d", err, count)
	}
}
