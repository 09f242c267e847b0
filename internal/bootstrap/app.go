package bootstrap

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/locvowork/todo_sync_sample/internal/config"
	"github.com/locvowork/todo_sync_sample/internal/database"
	"github.com/locvowork/todo_sync_sample/internal/handler"
	"github.com/locvowork/todo_sync_sample/internal/jobs"
	"github.com/locvowork/todo_sync_sample/internal/logger"
	"github.com/locvowork/todo_sync_sample/internal/progress"
	"github.com/locvowork/todo_sync_sample/internal/remote"
	"github.com/locvowork/todo_sync_sample/internal/repository"
	"github.com/locvowork/todo_sync_sample/internal/service"
	"github.com/locvowork/todo_sync_sample/internal/sync"
)

type App struct {
	Echo *echo.Echo
	DB   *sql.DB
	Hub  *progress.Hub
}

func NewApp() *App {
	return &App{
		Echo: echo.New(),
	}
}

func (a *App) Initialize(ctx context.Context) error {
	// Load environment configuration
	if err := config.LoadEnvConfig(); err != nil {
		return fmt.Errorf("failed to load env config: %w", err)
	}

	// Initialize logging
	logger.InitLogging(config.DefaultEnvConfig.LOG_FILE_PATH)
	logger.SetLevel(config.DefaultEnvConfig.LOG_LEVEL)
	logger.InfoLog(ctx, "Environment variables loaded successfully")

	// Initialize database connection
	dbConfig := database.Config{
		Host:            config.DefaultEnvConfig.DB_HOST,
		Port:            config.DefaultEnvConfig.DB_PORT,
		User:            config.DefaultEnvConfig.DB_USER,
		Password:        config.DefaultEnvConfig.DB_PASSWORD,
		DBName:          config.DefaultEnvConfig.DB_NAME,
		SSLMode:         config.DefaultEnvConfig.DB_SSL_MODE,
		MaxOpenConns:    config.DefaultEnvConfig.DB_MAX_OPEN_CONNS,
		MaxIdleConns:    config.DefaultEnvConfig.DB_MAX_IDLE_CONNS,
		ConnMaxLifetime: config.DefaultEnvConfig.DB_CONN_MAX_LIFETIME,
	}

	db, err := database.NewPostgresDB(ctx, dbConfig)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	a.DB = db

	if err := database.Migrate(ctx, db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// Initialize dependencies
	repo := repository.NewTodoRepository(db)
	todoSvc := service.NewTodoService(repo)

	remoteClient := remote.NewClient(remote.Config{
		BaseURL:    config.DefaultEnvConfig.REMOTE_API_BASE_URL,
		Timeout:    config.DefaultEnvConfig.REMOTE_API_TIMEOUT,
		RetryCount: config.DefaultEnvConfig.REMOTE_API_RETRY_COUNT,
		RetryDelay: config.DefaultEnvConfig.REMOTE_API_RETRY_DELAY,
	})

	syncSvc := sync.NewService(sync.NewEngine(repo, remoteClient))

	a.Hub = progress.NewHub()
	jobRunner := jobs.NewRunner(repo, a.Hub, config.DefaultEnvConfig.JOB_WORKER_COUNT, config.DefaultEnvConfig.JOB_QUEUE_SIZE)

	todoHandler := handler.NewTodoHandler(todoSvc)
	syncHandler := handler.NewSyncHandler(syncSvc, a.Hub)
	jobHandler := handler.NewJobHandler(jobRunner)
	exportHandler := handler.NewExportHandler(todoSvc, config.DefaultEnvConfig.EXPORT_CONFIG_PATH)

	// Register Middlewares
	a.RegisterMiddlewares()

	// Register Routes
	a.RegisterRoutes(todoHandler, syncHandler, jobHandler, exportHandler)

	return nil
}

func (a *App) RegisterMiddlewares() {
	a.Echo.Use(middleware.Logger())
	a.Echo.Use(middleware.Recover())
	a.Echo.Use(middleware.CORS())
}

func (a *App) RegisterRoutes(todoHandler *handler.TodoHandler, syncHandler *handler.SyncHandler, jobHandler *handler.JobHandler, exportHandler *handler.ExportHandler) {
	a.Echo.GET("/todo-lists", todoHandler.ListTodoLists)
	a.Echo.POST("/todo-lists", todoHandler.CreateTodoList)
	a.Echo.GET("/todo-lists/:id", todoHandler.GetTodoList)
	a.Echo.PUT("/todo-lists/:id", todoHandler.UpdateTodoList)
	a.Echo.DELETE("/todo-lists/:id", todoHandler.DeleteTodoList)

	a.Echo.POST("/todo-lists/:id/items", todoHandler.CreateTodoItem)
	a.Echo.GET("/todo-lists/:id/items/:itemId", todoHandler.GetTodoItem)
	a.Echo.PATCH("/todo-lists/:id/items/:itemId", todoHandler.UpdateTodoItem)
	a.Echo.DELETE("/todo-lists/:id/items/:itemId", todoHandler.DeleteTodoItem)

	syncGroup := a.Echo.Group("/sync")
	syncGroup.POST("/pull", syncHandler.Pull)
	syncGroup.POST("/push", syncHandler.Push)
	syncGroup.POST("/full", syncHandler.Full)

	a.Echo.POST("/todo-lists/:id/complete-all", jobHandler.CompleteAll)
	a.Echo.GET("/jobs/:id", jobHandler.GetJob)

	a.Echo.GET("/export/todo-lists", exportHandler.ExportTodoLists)

	a.Echo.GET("/ws/progress", func(c echo.Context) error {
		return a.Hub.ServeWS(c.Response(), c.Request())
	})
}

func (a *App) Run() error {
	defer a.DB.Close()
	return a.Echo.Start(":" + config.DefaultEnvConfig.APP_PORT)
}
