package app

import (
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/templui/bookshelf/internal/config"
	"github.com/templui/bookshelf/internal/db"
	"github.com/templui/bookshelf/internal/repository"
	"github.com/templui/bookshelf/internal/service"
	"github.com/templui/bookshelf/internal/storage"
)

type App struct {
	Cfg          *config.Config
	DB           *sqlx.DB
	Storage      storage.Storage
	AuthService  *service.AuthService
	AssetService *service.AssetService
	BookService  *service.BookService
}

func New(cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %v", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to run migrations: %v", err)
	}

	// Staging directory for incoming uploads
	err = os.MkdirAll(cfg.UploadDir, 0o755)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to create upload dir: %v", err)
	}

	// Repositories
	userRepository := repository.NewUserRepository(database)
	bookRepository := repository.NewBookRepository(database)

	// Storage
	assetStorage, err := storage.New(cfg)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to initialize storage: %v", err)
	}

	// Services
	authService := service.NewAuthService(userRepository, cfg.JWTSecret)
	assetService := service.NewAssetService(assetStorage)
	bookService := service.NewBookService(bookRepository, assetService)

	return &App{
		Cfg:          cfg,
		DB:           database,
		Storage:      assetStorage,
		AuthService:  authService,
		AssetService: assetService,
		BookService:  bookService,
	}, nil
}

func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
