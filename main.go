package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/danielstephany/kanban-api/handlers"
	"github.com/danielstephany/kanban-api/logging"
	"github.com/danielstephany/kanban-api/middleware"
	"github.com/danielstephany/kanban-api/services"
	"github.com/danielstephany/kanban-api/store"
	"github.com/danielstephany/kanban-api/utils"
)

func main() {
	logging.InitLogger()
	logging.Logger.Info("Event ID: SERVICE_START, Description: Starting Kanban API...")

	cfg := loadConfig()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logging.Logger.Fatalf("Event ID: DB_CONNECTION_FAILED, Description: Database connection for MongoDB failed: %v", err)
	}
	defer client.Disconnect(ctx)

	if err := client.Ping(ctx, nil); err != nil {
		logging.Logger.Fatalf("Event ID: DB_PING_FAILED, Description: MongoDB connection ping error: %v", err)
	}
	logging.Logger.Infof("Event ID: DB_CONNECTED, Description: Successfully connected to MongoDB at %s.", cfg.MongoURI)

	db := client.Database(cfg.MongoDBName)

	mongoBreaker := store.NewBreaker("mongo-cb")
	userStore := store.NewBreakerUserStore(store.NewMongoUserStore(db), mongoBreaker)
	boardStore := store.NewBreakerBoardStore(store.NewMongoBoardStore(db), mongoBreaker)
	taskStore := store.NewBreakerTaskStore(store.NewMongoTaskStore(db), mongoBreaker)

	var blackList map[string]bool
	if cfg.PasswordBlacklist != "" {
		blackList, err = services.LoadBlackList(cfg.PasswordBlacklist)
		if err != nil {
			logging.Logger.Fatalf("Event ID: BLACKLIST_LOAD_FAILED, Description: Failed to load password blacklist from %s: %v", cfg.PasswordBlacklist, err)
		}
		logging.Logger.Infof("Event ID: BLACKLIST_LOADED, Description: Loaded %d blacklisted passwords", len(blackList))
	}

	tokens := utils.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiry)

	userService := services.NewUserService(userStore, tokens, blackList)
	boardService := services.NewBoardService(boardStore, taskStore, userStore, cfg.ColumnConflictPolicy)
	taskService := services.NewTaskService(taskStore, boardStore)

	authHandler := handlers.NewAuthHandler(userService)
	boardHandler := handlers.NewBoardHandler(boardService)
	taskHandler := handlers.NewTaskHandler(taskService)

	auth := middleware.JWTAuth(tokens)

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		utils.RespondMessage(w, http.StatusNotFound, "This route does not exist, spooky.")
	})

	r.HandleFunc("/auth/signup", authHandler.Signup).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)
	r.Handle("/auth/verify-token", auth(http.HandlerFunc(authHandler.VerifyToken))).Methods(http.MethodGet)

	// column maintenance routes stay unauthenticated to match the existing
	// client contract
	r.HandleFunc("/boards/delete-column", boardHandler.DeleteColumn).Methods(http.MethodPatch)
	r.HandleFunc("/boards/rename-column", boardHandler.RenameColumn).Methods(http.MethodPatch)
	r.HandleFunc("/boards/move-column", boardHandler.MoveColumn).Methods(http.MethodPatch)
	r.HandleFunc("/boards/create-column", boardHandler.CreateColumn).Methods(http.MethodPatch)
	r.HandleFunc("/boards/title", boardHandler.RenameBoard).Methods(http.MethodPatch)

	r.Handle("/boards/move-task", auth(http.HandlerFunc(boardHandler.MoveTask))).Methods(http.MethodPost)
	r.Handle("/boards/owned-by-user", auth(http.HandlerFunc(boardHandler.OwnedByUser))).Methods(http.MethodGet)
	r.Handle("/boards/for-users-with-access", auth(http.HandlerFunc(boardHandler.ForUsersWithAccess))).Methods(http.MethodGet)
	r.Handle("/boards/nav-list", auth(http.HandlerFunc(boardHandler.NavList))).Methods(http.MethodGet)
	r.Handle("/boards/{id}/add-user", auth(http.HandlerFunc(boardHandler.AddUsers))).Methods(http.MethodGet)
	r.Handle("/boards/{id}", auth(http.HandlerFunc(boardHandler.GetBoardByID))).Methods(http.MethodGet)
	r.Handle("/boards/{id}", auth(http.HandlerFunc(boardHandler.DeleteBoard))).Methods(http.MethodDelete)
	r.Handle("/boards", auth(http.HandlerFunc(boardHandler.CreateBoard))).Methods(http.MethodPost)
	r.Handle("/boards", auth(http.HandlerFunc(boardHandler.GetBoards))).Methods(http.MethodGet)

	r.Handle("/tasks", auth(http.HandlerFunc(taskHandler.CreateTask))).Methods(http.MethodPost)
	r.Handle("/tasks/for-board/{boardId}", auth(http.HandlerFunc(taskHandler.GetTasksForBoard))).Methods(http.MethodGet)
	r.Handle("/tasks/{id}/delete-task-and-remove-from-board", auth(http.HandlerFunc(taskHandler.DeleteTask))).Methods(http.MethodDelete)
	r.Handle("/tasks/{id}", auth(http.HandlerFunc(taskHandler.GetTask))).Methods(http.MethodGet)
	r.Handle("/tasks/{id}", auth(http.HandlerFunc(taskHandler.UpdateTask))).Methods(http.MethodPut)

	serverAddress := fmt.Sprintf(":%s", cfg.Port)
	logging.Logger.Infof("Event ID: SERVER_START_INFO, Description: Server running on http://localhost%s", serverAddress)

	if err := http.ListenAndServe(serverAddress, middleware.CORS(r)); err != nil {
		logging.Logger.Fatalf("Event ID: SERVER_FATAL_ERROR, Description: Server failed to start: %v", err)
	}
}
