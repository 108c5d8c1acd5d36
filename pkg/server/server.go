// Package server exposes the analysis pipeline as the remote REST service
// the forwarding tier calls into.
package server

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/xerrors"
	"k8s.io/utils/clock"

	"github.com/jarscope/jarscope/pkg/analyzer"
	"github.com/jarscope/jarscope/pkg/fileutil"
	"github.com/jarscope/jarscope/pkg/maven"
	"github.com/jarscope/jarscope/pkg/pom"
	"github.com/jarscope/jarscope/pkg/types"
)

const (
	serviceName    = "jarscope-analyzer"
	serviceVersion = "1.0.0"
)

type Server struct {
	analyzer *analyzer.Analyzer
	clock    clock.Clock
	started  time.Time
}

func New(a *analyzer.Analyzer) *Server {
	c := clock.RealClock{}
	return &Server{
		analyzer: a,
		clock:    c,
		started:  c.Now(),
	}
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/", s.info)
	r.GET("/health", s.health)

	api := r.Group("/api")
	api.POST("/analyze", s.analyze)
	api.POST("/decompile", s.decompile)
	api.POST("/find-and-decompile", s.findAndDecompile)
	api.DELETE("/cleanup/*workdir", s.cleanup)

	return r
}

// Run blocks serving HTTP on addr.
func (s *Server) Run(addr string) error {
	slog.Info("Starting analyzer server", slog.String("addr", addr))
	if err := s.Router().Run(addr); err != nil {
		return xerrors.Errorf("server error: %w", err)
	}
	return nil
}

func (s *Server) info(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": serviceName,
		"version": serviceVersion,
		"status":  "running",
	})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "healthy",
		"started_at":     s.started.UTC().Format(time.RFC3339),
		"uptime_seconds": int64(s.clock.Since(s.started).Seconds()),
	})
}

func (s *Server) analyze(c *gin.Context) {
	var req types.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	result, err := s.analyzer.Analyze(c.Request.Context(), req)
	if err != nil {
		abortWithPipelineError(c, err)
		return
	}

	// The resolver succeeding with nothing to hand over is reported
	// distinctly from a resolver crash.
	if len(result.JarFiles) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "no jar files downloaded", "work_dir": result.WorkDir})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) decompile(c *gin.Context) {
	var req types.DecompileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	if _, err := os.Stat(req.JarPath); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "jar file not found: " + req.JarPath})
		return
	}

	// Disassembler failures come back inline in decompiled_code.
	c.JSON(http.StatusOK, s.analyzer.Decompile(req))
}

func (s *Server) findAndDecompile(c *gin.Context) {
	var req types.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	result, err := s.analyzer.FindAndDecompile(c.Request.Context(), req)
	if err != nil {
		abortWithPipelineError(c, err)
		return
	}

	if len(result.JarFiles) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "no jar files downloaded", "work_dir": result.WorkDir})
		return
	}

	c.JSON(http.StatusOK, result)
}

// cleanup deletes a work directory recursively. Deleting an absent path is
// idempotent, not an error.
func (s *Server) cleanup(c *gin.Context) {
	workDir := c.Param("workdir")

	existed, err := fileutil.RemoveDir(workDir)
	if err != nil {
		slog.Error("Cleanup failed", slog.String("work_dir", workDir), slog.Any("err", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !existed {
		c.JSON(http.StatusOK, gin.H{"status": "not_found", "message": "directory not found: " + workDir})
		return
	}
	slog.Info("Work directory cleaned", slog.String("path", workDir))
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "cleaned up " + workDir})
}

func abortWithPipelineError(c *gin.Context, err error) {
	var vErr *pom.ValidationError
	if xerrors.As(err, &vErr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Error()})
		return
	}

	var rErr *maven.ResolutionError
	if xerrors.As(err, &rErr) {
		slog.Error("Resolution failed", slog.Int("exit_code", rErr.ExitCode))
		c.JSON(http.StatusBadGateway, gin.H{"error": rErr.Error()})
		return
	}

	slog.Error("Analysis failed", slog.Any("err", err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
