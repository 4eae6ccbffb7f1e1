// Package rest exposes the server over a JSON HTTP API consumed by the web
// front end.
package rest

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrijs2005/snapster/internal/logging"
	"github.com/dmitrijs2005/snapster/internal/server/models"
	"github.com/dmitrijs2005/snapster/internal/server/services"
)

const shutdownTimeout = 10 * time.Second

// UserAPI is implemented by services.UserService.
type UserAPI interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.User, *services.TokenPair, error)
	Login(ctx context.Context, email, password string) (*models.User, *services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	Me(ctx context.Context, userID string) (*models.User, error)
	UserIDFromAccessToken(token string) (string, error)
}

// FileAPI is implemented by services.FileService.
type FileAPI interface {
	List(ctx context.Context, userID string) ([]services.FileView, error)
	Get(ctx context.Context, userID, id string) (*services.FileView, error)
	Upload(ctx context.Context, userID, filename, mediaType string, data []byte) (*services.FileView, error)
	Open(ctx context.Context, userID, id string) (io.ReadCloser, *models.File, error)
	Delete(ctx context.Context, userID, id string) error
}

// AlbumAPI is implemented by services.AlbumService.
type AlbumAPI interface {
	Create(ctx context.Context, userID, name string) (*models.Album, error)
	List(ctx context.Context, userID string) ([]services.AlbumPreview, error)
	Get(ctx context.Context, userID, id string) (*services.AlbumDetail, error)
	Delete(ctx context.Context, userID, id string) error
	AddFile(ctx context.Context, userID, albumID, fileID string) error
	RemoveFile(ctx context.Context, userID, albumID, fileID string) error
}

// Options configure the HTTP server.
type Options struct {
	Address       string
	FrontendURL   string
	CookieDomain  string
	CookieSecure  bool
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	MaxUploadSize int64

	// Registerer receives request metrics; Gatherer backs GET /metrics.
	// Either may be nil.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

type HTTPServer struct {
	opts    Options
	logger  logging.Logger
	users   UserAPI
	files   FileAPI
	albums  AlbumAPI
	engine  *gin.Engine
	metrics *requestMetrics
}

func NewHTTPServer(opts Options, l logging.Logger, us UserAPI, fs FileAPI, as AlbumAPI) (*HTTPServer, error) {
	s := &HTTPServer{
		opts:   opts,
		logger: l.With("module", "http_server"),
		users:  us,
		files:  fs,
		albums: as,
	}

	if opts.Registerer != nil {
		m, err := newRequestMetrics(opts.Registerer)
		if err != nil {
			return nil, err
		}
		s.metrics = m
	}

	s.engine = s.routes()
	return s, nil
}

// Handler returns the router, mainly for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.engine
}

func (s *HTTPServer) routes() *gin.Engine {
	r := gin.New()
	r.Use(s.recovery(), s.requestLogger())

	if s.opts.FrontendURL != "" {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     []string{s.opts.FrontendURL},
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if s.opts.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{})))
	}

	a := r.Group("/auth")
	a.POST("/register", s.register)
	a.POST("/login", s.login)
	a.POST("/refresh", s.refresh)
	a.POST("/logout", s.authRequired(), s.logout)
	a.GET("/me", s.authRequired(), s.me)

	f := r.Group("/files", s.authRequired())
	f.GET("", s.listFiles)
	f.POST("", s.uploadFile)
	f.GET("/:id", s.getFile)
	f.GET("/:id/content", s.fileContent)
	f.DELETE("/:id", s.deleteFile)

	al := r.Group("/albums", s.authRequired())
	al.GET("", s.listAlbums)
	al.POST("", s.createAlbum)
	al.GET("/:id", s.getAlbum)
	al.DELETE("/:id", s.deleteAlbum)
	al.POST("/:id/files", s.addAlbumFile)
	al.DELETE("/:id/files/:fileId", s.removeAlbumFile)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, errorResponse{Error: "not found"})
	})

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Address,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP server shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.opts.Address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
