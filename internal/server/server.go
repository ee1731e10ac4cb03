// Package server exposes the screening pipeline over HTTP for web-app
// integration: upload a video, receive the full screening report.
package server

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/joysa21/auticareai/internal/config"
	"github.com/joysa21/auticareai/internal/report"
	"github.com/joysa21/auticareai/internal/screening"
	"github.com/joysa21/auticareai/internal/store"
	"github.com/joysa21/auticareai/internal/video"
	"github.com/joysa21/auticareai/pkg/util"
)

// Screener is the server's view of the pipeline
type Screener interface {
	Screen(ctx context.Context, input string) (*report.Report, error)
	ExtractMetrics(ctx context.Context, input string) (screening.BehavioralMetrics, error)
}

// Server wires the screening pipeline to HTTP endpoints
type Server struct {
	logger   zerolog.Logger
	cfg      config.ServerConfig
	screener Screener
	store    *store.Store
	router   *gin.Engine
}

// New creates a server. The store is optional; when nil, report lookup
// endpoints are not registered.
func New(logger zerolog.Logger, cfg config.ServerConfig, screener Screener, st *store.Store) *Server {
	s := &Server{
		logger:   logger.With().Str("component", "server").Logger(),
		cfg:      cfg,
		screener: screener,
		store:    st,
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.Default())

	router.GET("/", s.handleRoot)
	router.GET("/health", s.handleHealth)
	router.POST("/api/screen", s.handleScreen)
	router.POST("/api/metrics", s.handleMetrics)
	router.GET("/api/baselines", s.handleBaselines)
	router.POST("/api/batch-screen", s.handleBatchScreen)

	if st != nil {
		router.GET("/api/reports/:id", s.handleGetReport)
	}

	s.router = router
	return s
}

// Run blocks serving HTTP on the configured address
func (s *Server) Run() error {
	if err := util.EnsureDir(s.cfg.UploadDir); err != nil {
		return fmt.Errorf("failed to create upload dir: %w", err)
	}
	s.logger.Info().Str("addr", s.cfg.Addr).Msg("http api listening")
	return s.router.Run(s.cfg.Addr)
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "AutiCare AI Screening API",
		"version": "1.0.0",
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "healthy",
		"store_active": s.store != nil,
		"endpoints": gin.H{
			"screening": "/api/screen",
			"metrics":   "/api/metrics",
		},
	})
}

func (s *Server) handleScreen(c *gin.Context) {
	path, cleanup, ok := s.saveUpload(c, "video")
	if !ok {
		return
	}
	defer cleanup()

	rep, err := s.screener.Screen(c.Request.Context(), path)
	if err != nil {
		s.respondScreeningError(c, err)
		return
	}

	if s.store != nil {
		if err := s.store.Save(c.Request.Context(), rep); err != nil {
			s.logger.Error().Err(err).Str("report", rep.ID).Msg("failed to persist report")
		}
	}

	c.JSON(http.StatusOK, rep)
}

func (s *Server) handleMetrics(c *gin.Context) {
	path, cleanup, ok := s.saveUpload(c, "video")
	if !ok {
		return
	}
	defer cleanup()

	metrics, err := s.screener.ExtractMetrics(c.Request.Context(), path)
	if err != nil {
		s.respondScreeningError(c, err)
		return
	}

	c.JSON(http.StatusOK, report.RenderMetrics(metrics))
}

func (s *Server) handleBaselines(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"eye_contact_duration": gin.H{
			"baseline":    screening.EyeContactBaseline,
			"unit":        "percentage",
			"description": "Percentage of time making eye contact with camera",
		},
		"attention_shifts": gin.H{
			"baseline":    screening.AttentionShiftsBaseline,
			"unit":        "per_minute",
			"description": "Number of gaze direction changes per minute",
		},
		"gesture_frequency": gin.H{
			"baseline":    screening.GestureFrequencyBaseline,
			"unit":        "per_minute",
			"description": "Communicative gestures per minute",
		},
		"social_gaze": gin.H{
			"baseline":    screening.SocialGazeBaseline,
			"unit":        "percentage",
			"description": "Percentage of time engaged in social gaze",
		},
		"response_latency": gin.H{
			"baseline":    screening.ResponseLatencyBaseline,
			"unit":        "seconds",
			"description": "Average time to respond to stimuli",
		},
	})
}

func (s *Server) handleBatchScreen(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form", "details": err.Error()})
		return
	}

	files := form.File["videos"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no videos provided"})
		return
	}

	results := make([]gin.H, 0, len(files))
	for _, file := range files {
		results = append(results, s.screenUpload(c, file))
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}

// screenUpload processes one file of a batch; failures are reported per file
// and never abort the rest of the batch.
func (s *Server) screenUpload(c *gin.Context, file *multipart.FileHeader) gin.H {
	if !util.IsVideoFile(file.Filename) {
		return gin.H{"filename": file.Filename, "error": "invalid file format"}
	}

	path := s.uploadPath(file.Filename)
	if err := c.SaveUploadedFile(file, path); err != nil {
		return gin.H{"filename": file.Filename, "error": err.Error()}
	}
	defer os.Remove(path)

	rep, err := s.screener.Screen(c.Request.Context(), path)
	if err != nil {
		return gin.H{"filename": file.Filename, "error": err.Error()}
	}

	if s.store != nil {
		if err := s.store.Save(c.Request.Context(), rep); err != nil {
			s.logger.Error().Err(err).Str("report", rep.ID).Msg("failed to persist report")
		}
	}

	return gin.H{
		"filename":   file.Filename,
		"risk_level": rep.RiskAssessment.Level,
		"confidence": rep.RiskAssessment.Confidence,
		"report":     rep,
	}
}

func (s *Server) handleGetReport(c *gin.Context) {
	rep, err := s.store.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "screening not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rep)
}

// saveUpload stores the uploaded video under the configured upload dir,
// returning its temp path and a cleanup func. On failure it writes the HTTP
// error response itself.
func (s *Server) saveUpload(c *gin.Context, field string) (string, func(), bool) {
	file, err := c.FormFile(field)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing video file", "details": err.Error()})
		return "", nil, false
	}

	if !util.IsVideoFile(file.Filename) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid file format, please upload MP4, AVI, or MOV video",
		})
		return "", nil, false
	}

	path := s.uploadPath(file.Filename)
	if err := c.SaveUploadedFile(file, path); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store upload", "details": err.Error()})
		return "", nil, false
	}

	return path, func() { os.Remove(path) }, true
}

func (s *Server) uploadPath(filename string) string {
	return filepath.Join(s.cfg.UploadDir, fmt.Sprintf("%s_%s", uuid.NewString(), filepath.Base(filename)))
}

func (s *Server) respondScreeningError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, video.ErrSourceUnavailable):
		c.JSON(http.StatusBadRequest, gin.H{"error": "video could not be decoded", "details": err.Error()})
	case errors.Is(err, screening.ErrEmptyInput):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "no usable frames in video", "details": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "processing error", "details": err.Error()})
	}
}
