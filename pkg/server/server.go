package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/duynguyendang/maya/internal/manager"
	"github.com/duynguyendang/maya/internal/metrics"
	"github.com/duynguyendang/maya/pkg/common/errors"
	"github.com/duynguyendang/maya/pkg/github"
	"github.com/duynguyendang/maya/pkg/service/ai"
	"github.com/duynguyendang/maya/pkg/speech"
	"github.com/duynguyendang/maya/pkg/syntax"
)

// Speaker turns reply text into audio.
type Speaker interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
	ListVoices(ctx context.Context) ([]speech.Voice, error)
}

// Deps are the collaborators the API serves.
type Deps struct {
	Sessions        *manager.SessionManager
	Chat            *ai.ChatService
	Speaker         Speaker
	GitHub          *github.Client
	Checker         *syntax.Checker
	MaxAttachmentMB int
	Logger          zerolog.Logger
}

// Server holds the state for the REST API server.
type Server struct {
	sessions        *manager.SessionManager
	chat            *ai.ChatService
	speaker         Speaker
	github          *github.Client
	checker         *syntax.Checker
	maxAttachmentMB int
	logger          zerolog.Logger
	router          *gin.Engine
}

// NewServer creates a new Server instance.
func NewServer(d Deps) *Server {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	logger := d.Logger.With().Str("component", "http").Logger()
	r.Use(gin.Recovery(), requestLogger(logger))

	checker := d.Checker
	if checker == nil {
		checker = syntax.NewChecker()
	}
	s := &Server{
		sessions:        d.Sessions,
		chat:            d.Chat,
		speaker:         d.Speaker,
		github:          d.GitHub,
		checker:         checker,
		maxAttachmentMB: d.MaxAttachmentMB,
		logger:          logger,
		router:          r,
	}
	s.setupRoutes()
	return s
}

// Handler exposes the router, e.g. for http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run starts the server on the specified address and stops when ctx is done.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.router, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := s.router.Group("/v1")

	v1.POST("/sessions", s.handleCreateSession)
	v1.DELETE("/sessions/:id", s.handleDeleteSession)
	v1.POST("/sessions/:id/reset", s.handleResetSession)
	v1.GET("/sessions/:id/history", s.handleHistory)
	v1.POST("/sessions/:id/messages", s.handleMessage)

	v1.POST("/extract", s.handleExtract)
	v1.POST("/download", s.handleDownload)
	v1.POST("/export/zip", s.handleZip)

	v1.POST("/speak", s.handleSpeak)
	v1.GET("/voices", s.handleVoices)

	gh := v1.Group("/github")
	gh.GET("/token", s.handleTokenStatus)
	gh.PUT("/token", s.handleSetToken)
	gh.DELETE("/token", s.handleClearToken)
	gh.GET("/repos", s.handleListRepos)
	gh.POST("/repos", s.handleCreateRepo)
	gh.GET("/repos/:repo", s.handleGetRepo)
	gh.GET("/repos/:repo/tree", s.handleTree)
	gh.GET("/repos/:repo/contents/*path", s.handleFileContent)
	gh.POST("/repos/:repo/upload", s.handleUpload)
	gh.GET("/repos/:repo/issues", s.handleListIssues)
	gh.POST("/repos/:repo/issues", s.handleCreateIssue)
	gh.POST("/forks", s.handleFork)
}

// Health check
func (s *Server) healthCheck(c *gin.Context) {
	c.Status(http.StatusOK)
}

func handleError(c *gin.Context, err error) {
	appErr := errors.MapError(err)
	c.JSON(appErr.Code, gin.H{"error": appErr.Message, "detail": err.Error()})
}

func badRequest(c *gin.Context, err error) {
	handleError(c, errors.NewAppError(http.StatusBadRequest, "Invalid request body", err))
}

func requestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		evt := logger.Info()
		if status >= http.StatusInternalServerError {
			evt = logger.Error()
		} else if status >= http.StatusBadRequest {
			evt = logger.Warn()
		}
		evt.Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", status).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	}
}
