package services

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/danielstephany/kanban-api/logging"
	"github.com/danielstephany/kanban-api/models"
	"github.com/danielstephany/kanban-api/store"
	"github.com/danielstephany/kanban-api/utils"
)

// UserService handles signup, login and token verification.
type UserService struct {
	users     store.UserStore
	tokens    *utils.TokenManager
	blackList map[string]bool
}

func NewUserService(users store.UserStore, tokens *utils.TokenManager, blackList map[string]bool) *UserService {
	return &UserService{users: users, tokens: tokens, blackList: blackList}
}

func (s *UserService) Register(ctx context.Context, firstName, lastName, email, password, password2 string) (*models.User, string, error) {
	if password != password2 {
		return nil, "", models.InvalidInput("passwords do not match")
	}
	if firstName == "" || lastName == "" || email == "" || password == "" {
		return nil, "", models.InvalidInput("all fields are required")
	}
	if s.blackList[password] {
		return nil, "", models.InvalidInput("password is too common, please choose another")
	}

	_, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return nil, "", models.Conflict("user with submitted email already exists")
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:        primitive.NewObjectID(),
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		Password:  string(hash),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.Insert(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.tokens.GenerateToken(user.ID.Hex())
	if err != nil {
		return nil, "", err
	}

	logging.Logger.Infof("Event ID: USER_REGISTERED, Description: Created user %s", user.ID.Hex())
	return user, token, nil
}

func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	if email == "" || password == "" {
		return nil, "", models.InvalidInput("email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, "", models.Unauthorized("wrong password or email")
	}
	if err != nil {
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", models.Unauthorized("wrong password or email")
	}

	token, err := s.tokens.GenerateToken(user.ID.Hex())
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// GetByID backs the verify-token endpoint: the middleware already proved the
// token, this resolves it to a user record.
func (s *UserService) GetByID(ctx context.Context, userID string) (*models.User, error) {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, models.Unauthorized("Not Authorized")
	}
	user, err := s.users.GetByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, models.Unauthorized("Not Authorized")
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
