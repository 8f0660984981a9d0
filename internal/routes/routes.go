package routes

import (
	"net/http"

	"github.com/templui/bookshelf/internal/app"
	"github.com/templui/bookshelf/internal/handler"
	"github.com/templui/bookshelf/internal/middleware"
	"github.com/templui/bookshelf/internal/storage"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	home := handler.NewHomeHandler()
	users := handler.NewUserHandler(app.AuthService)
	books := handler.NewBookHandler(app.BookService, app.Cfg.UploadDir, app.Cfg.MaxUploadBytes)

	requireToken := middleware.RequireToken(app.AuthService)

	mux := http.NewServeMux()

	// ============================================================================
	// PUBLIC ROUTES
	// ============================================================================

	mux.HandleFunc("GET /{$}", home.Home)

	// Locally stored assets (development storage driver)
	if local, ok := app.Storage.(*storage.LocalStorage); ok {
		mux.Handle("GET "+storage.LocalURLPrefix+"/", http.StripPrefix(storage.LocalURLPrefix+"/", http.FileServer(http.Dir(local.Root()))))
	}

	// Users
	mux.HandleFunc("POST /api/users", users.Register)
	mux.HandleFunc("POST /api/users/register", users.Register)
	mux.HandleFunc("POST /api/users/login", users.Login)

	// Books
	mux.HandleFunc("GET /api/books", books.List)
	mux.HandleFunc("GET /api/books/{bookId}", books.Get)

	// ============================================================================
	// PROTECTED ROUTES (bearer token)
	// ============================================================================

	mux.Handle("POST /api/books", middleware.Use(books.Create, requireToken))
	mux.Handle("POST /api/books/{bookId}", middleware.Use(books.Update, requireToken))
	mux.Handle("DELETE /api/books/{bookId}", middleware.Use(books.Delete, requireToken))

	// ============================================================================
	// FALLBACK
	// ============================================================================

	// 404
	mux.HandleFunc("/{path...}", home.NotFound)

	// Global middleware - executed in order (top to bottom)
	handler := middleware.Chain(
		mux,
		middleware.Recovery,
		middleware.RequestLogging,
		middleware.CORS(app.Cfg.FrontendDomain),
	)

	return handler
}
