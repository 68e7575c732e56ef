// Package figcms is the content-management backend for the Fig.1
// marketing site: admin auth, blog post CRUD, a media library, and the
// authoring pipeline's server half, exposed as a JSON API with a
// {"success": ...} envelope.
package figcms

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// App is the central figcms application. It wires together the store,
// media library, cache, mailer, handlers, and middleware.
type App struct {
	Config Config
	Echo   *echo.Echo
	Store  *Store
	Media  *MediaLibrary
	Cache  *PostCache
	Mailer Mailer

	loginLimiter *LoginLimiter
	customRoutes []func(*App)
}

// New creates a figcms App with the given configuration.
func New(cfg Config, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Start initializes the database, cache, middleware, and routes, then
// starts the server.
func (a *App) Start() error {
	if a.Config.JWTSecret == "" {
		return fmt.Errorf("figcms: JWTSecret is required")
	}

	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("figcms: init store: %w", err)
	}
	a.Store = store

	a.Media = NewMediaLibrary(store, a.Config.UploadsDir)
	a.Cache = NewPostCache(store, a.Config.PostCacheTTL)
	a.loginLimiter = NewLoginLimiter(5, time.Minute)

	if a.Mailer == nil {
		if a.Config.SMTPAddr != "" {
			a.Mailer = &SMTPMailer{
				Addr:       a.Config.SMTPAddr,
				Username:   a.Config.SMTPUsername,
				Password:   a.Config.SMTPPassword,
				From:       a.Config.FromEmail,
				FromName:   a.Config.FromName,
				AdminEmail: a.Config.AdminEmail,
			}
		} else {
			a.Mailer = LogMailer{}
		}
	}

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}

	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.Static("/uploads", a.Config.UploadsDir)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)

	api := e.Group("/api")

	api.GET("/posts", a.handleListPosts)
	api.POST("/posts", a.handleCreatePost)
	api.GET("/posts/:id", a.handleGetPost)
	api.PUT("/posts/:id", a.handleUpdatePost)
	api.DELETE("/posts/:id", a.handleDeletePost)
	api.GET("/posts/slug/:slug", a.handleGetPostBySlug)

	api.GET("/media", a.handleListMedia)
	api.POST("/media/upload", a.handleUploadMedia)
	api.PUT("/media", a.handleUpdateMedia)
	api.DELETE("/media", a.handleDeleteMedia)

	api.POST("/auth/login", a.handleLogin)
	api.POST("/auth/verify", a.handleVerify)
	api.POST("/auth/forgot-password", a.handleForgotPassword)
	api.POST("/auth/reset-password", a.handleResetPassword)
	api.POST("/auth/create-admin", a.handleCreateAdmin)

	api.POST("/contact", a.handleContact)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
