package store

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/danielstephany/kanban-api/models"
)

type MongoUserStore struct {
	collection *mongo.Collection
}

func NewMongoUserStore(db *mongo.Database) *MongoUserStore {
	return &MongoUserStore{collection: db.Collection("users")}
}

func (s *MongoUserStore) Insert(ctx context.Context, user *models.User) error {
	_, err := s.collection.InsertOne(ctx, user)
	return err
}

func (s *MongoUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *MongoUserStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *MongoUserStore) CountByIDs(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return s.collection.CountDocuments(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

type MongoBoardStore struct {
	collection *mongo.Collection
}

func NewMongoBoardStore(db *mongo.Database) *MongoBoardStore {
	return &MongoBoardStore{collection: db.Collection("boards")}
}

func (s *MongoBoardStore) Insert(ctx context.Context, board *models.Board) error {
	_, err := s.collection.InsertOne(ctx, board)
	return err
}

func (s *MongoBoardStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Board, error) {
	var board models.Board
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&board)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &board, nil
}

func (s *MongoBoardStore) GetForUser(ctx context.Context, id primitive.ObjectID, userID string) (*models.Board, error) {
	var board models.Board
	err := s.collection.FindOne(ctx, bson.M{"_id": id, "usersWithAccess": userID}).Decode(&board)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &board, nil
}

// Replace is the board's single serialization point: it only matches when
// the stored version equals the one the board was read at.
func (s *MongoBoardStore) Replace(ctx context.Context, board *models.Board) error {
	readVersion := board.Version
	board.Version = readVersion + 1
	board.UpdatedAt = time.Now().UTC()

	result, err := s.collection.ReplaceOne(ctx, bson.M{"_id": board.ID, "version": readVersion}, board)
	if err != nil {
		board.Version = readVersion
		return err
	}
	if result.MatchedCount == 0 {
		board.Version = readVersion
		return ErrVersionConflict
	}
	return nil
}

func (s *MongoBoardStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := s.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoBoardStore) FindOwnedBy(ctx context.Context, owner primitive.ObjectID) ([]models.Board, error) {
	return s.findBoards(ctx, bson.M{"owner": owner}, nil)
}

func (s *MongoBoardStore) FindForUser(ctx context.Context, userID string) ([]models.Board, error) {
	return s.findBoards(ctx, bson.M{"usersWithAccess": userID}, nil)
}

func (s *MongoBoardStore) NavList(ctx context.Context, userID string) ([]models.BoardNavItem, error) {
	opts := options.Find().SetProjection(bson.M{"title": 1})
	cursor, err := s.collection.Find(ctx, bson.M{"usersWithAccess": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := []models.BoardNavItem{}
	for cursor.Next(ctx) {
		var item models.BoardNavItem
		if err := cursor.Decode(&item); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, cursor.Err()
}

func (s *MongoBoardStore) Page(ctx context.Context, userID string, query models.BoardQuery) (*models.BoardPage, error) {
	filter := bson.M{"usersWithAccess": userID}
	if query.SearchBy != "" && query.SearchValue != "" {
		filter[query.SearchBy] = bson.M{"$regex": primitive.Regex{
			Pattern: regexp.QuoteMeta(query.SearchValue),
			Options: "i",
		}}
	}

	direction := -1
	if query.Direction == "asc" {
		direction = 1
	}
	opts := options.Find().
		SetSort(bson.D{{Key: query.SortBy, Value: direction}}).
		SetSkip(int64(query.Page * query.Limit)).
		SetLimit(int64(query.Limit))

	boards, err := s.findBoards(ctx, filter, opts)
	if err != nil {
		return nil, err
	}

	total, err := s.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &models.BoardPage{Data: boards, Page: query.Page, Limit: query.Limit, Total: total}, nil
}

func (s *MongoBoardStore) findBoards(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Board, error) {
	var cursor *mongo.Cursor
	var err error
	if opts != nil {
		cursor, err = s.collection.Find(ctx, filter, opts)
	} else {
		cursor, err = s.collection.Find(ctx, filter)
	}
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	boards := []models.Board{}
	for cursor.Next(ctx) {
		var board models.Board
		if err := cursor.Decode(&board); err != nil {
			return nil, err
		}
		boards = append(boards, board)
	}
	return boards, cursor.Err()
}

type MongoTaskStore struct {
	collection *mongo.Collection
}

func NewMongoTaskStore(db *mongo.Database) *MongoTaskStore {
	return &MongoTaskStore{collection: db.Collection("tasks")}
}

func (s *MongoTaskStore) Insert(ctx context.Context, task *models.Task) error {
	_, err := s.collection.InsertOne(ctx, task)
	return err
}

func (s *MongoTaskStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Task, error) {
	var task models.Task
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&task)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *MongoTaskStore) Update(ctx context.Context, task *models.Task) error {
	result, err := s.collection.ReplaceOne(ctx, bson.M{"_id": task.ID}, task)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoTaskStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := s.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoTaskStore) FindByBoard(ctx context.Context, boardID primitive.ObjectID) ([]models.Task, error) {
	cursor, err := s.collection.Find(ctx, bson.M{"boardId": boardID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	tasks := []models.Task{}
	for cursor.Next(ctx) {
		var task models.Task
		if err := cursor.Decode(&task); err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, cursor.Err()
}

func (s *MongoTaskStore) TitlesByIDs(ctx context.Context, ids []primitive.ObjectID) (map[string]models.TaskRef, error) {
	refs := map[string]models.TaskRef{}
	if len(ids) == 0 {
		return refs, nil
	}

	opts := options.Find().SetProjection(bson.M{"title": 1})
	cursor, err := s.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var ref struct {
			ID    primitive.ObjectID `bson:"_id"`
			Title string             `bson:"title"`
		}
		if err := cursor.Decode(&ref); err != nil {
			return nil, err
		}
		refs[ref.ID.Hex()] = models.TaskRef{ID: ref.ID, Title: ref.Title}
	}
	return refs, cursor.Err()
}

func (s *MongoTaskStore) RelabelStatus(ctx context.Context, boardID primitive.ObjectID, oldStatus, newStatus string) (int64, error) {
	update := bson.M{"$set": bson.M{"status": newStatus, "updatedAt": time.Now().UTC()}}
	result, err := s.collection.UpdateMany(ctx, bson.M{"boardId": boardID, "status": oldStatus}, update)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

func (s *MongoTaskStore) DeleteByStatus(ctx context.Context, boardID primitive.ObjectID, status string) (int64, error) {
	result, err := s.collection.DeleteMany(ctx, bson.M{"boardId": boardID, "status": status})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

func (s *MongoTaskStore) DeleteByBoard(ctx context.Context, boardID primitive.ObjectID) (int64, error) {
	result, err := s.collection.DeleteMany(ctx, bson.M{"boardId": boardID})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}
