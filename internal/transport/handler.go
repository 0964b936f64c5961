package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/sirupsen/logrus"

	"go-ecg-digitizer/internal/config"
	apperrors "go-ecg-digitizer/internal/errors"
	"go-ecg-digitizer/internal/logger"
	"go-ecg-digitizer/internal/service"
	"go-ecg-digitizer/pkg/export"
	"go-ecg-digitizer/pkg/models"
)

// uploadField is the multipart field carrying the ECG image
const uploadField = "file"

const version = "1.0.0"

type handler struct {
	svc service.ECGService
	cfg *config.Config
}

func NewHandler(svc service.ECGService, cfg *config.Config) http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Add middleware
	r.Use(
		gin.Recovery(),
		requestLogger(),
		cors.New(corsConfig(cfg.CORSAllowedOrigins)),
		requestSizeLimiter(cfg.MaxRequestBodySize),
		errorHandler(),
	)

	h := &handler{svc: svc, cfg: cfg}

	// Configure routes
	r.GET("/health", healthCheck)
	r.GET("/stats", h.stats)
	r.POST("/extract-ecg-features/", h.extractFeatures)

	api := r.Group("/api/v1")
	{
		api.POST("/digitize", h.digitizeUpload)
		api.POST("/digitize/url", h.digitizeURL)
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	return cfg
}

// extractFeatures returns the bare record list for an uploaded sheet
func (h *handler) extractFeatures(c *gin.Context) {
	resp, ok := h.runUpload(c)
	if !ok {
		return
	}
	if wantsCSV(c) {
		writeCSV(c, resp.Records)
		return
	}
	c.JSON(http.StatusOK, resp.Records)
}

// digitizeUpload returns the full analysis of an uploaded sheet
func (h *handler) digitizeUpload(c *gin.Context) {
	resp, ok := h.runUpload(c)
	if !ok {
		return
	}
	if wantsCSV(c) {
		writeCSV(c, resp.Records)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handler) digitizeURL(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.RequestTimeout)
	defer cancel()

	var req models.DigitizeURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request format", err)
		return
	}

	logger.WithFields(logrus.Fields{
		"url": req.URL,
		"ip":  c.ClientIP(),
	}).Debug("Digitizing remote ECG image")

	resp, err := h.svc.DigitizeURL(ctx, req)
	if err != nil {
		respondError(c, apperrors.GetStatusCode(err), "digitization failed", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handler) runUpload(c *gin.Context) (*models.DigitizeResponse, bool) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.RequestTimeout)
	defer cancel()

	data, filename, err := readUpload(c)
	if err != nil {
		respondError(c, uploadStatus(err), "invalid upload", err)
		return nil, false
	}

	var opts models.DigitizeOptionsRequest
	if err := c.ShouldBindWith(&opts, binding.Form); err != nil {
		respondError(c, http.StatusBadRequest, "invalid digitization options", err)
		return nil, false
	}

	resp, err := h.svc.DigitizeUpload(ctx, filename, data, &opts)
	if err != nil {
		respondError(c, apperrors.GetStatusCode(err), "digitization failed", err)
		return nil, false
	}

	logger.WithFields(logrus.Fields{
		"analysis_id":        resp.ID,
		"file":               filename,
		"processing_time_ms": int64(resp.ProcessingTimeSec * 1000),
		"warnings":           len(resp.Warnings),
	}).Info("ECG digitization request completed")

	return resp, true
}

func readUpload(c *gin.Context) ([]byte, string, error) {
	fh, err := c.FormFile(uploadField)
	if err != nil {
		return nil, "", fmt.Errorf("multipart field %q: %w", uploadField, err)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, "", fmt.Errorf("read upload: %w", err)
	}
	return data, fh.Filename, nil
}

func uploadStatus(err error) int {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

func wantsCSV(c *gin.Context) bool {
	return c.Query("format") == "csv"
}

func writeCSV(c *gin.Context, records []models.FeatureRecord) {
	var buf bytes.Buffer
	if err := export.WriteFeatureCSV(&buf, records); err != nil {
		respondError(c, http.StatusInternalServerError, "csv export failed", err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="ecg_features.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (h *handler) stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Stats())
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// Middleware and helper functions
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.WithFields(logrus.Fields{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status_code": c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
			"ip":          c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
		}).Debug("Request handled")
	}
}

func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			err := c.Errors.Last()
			respondError(c, determineStatusCode(err.Err), "request processing failed", err.Err)
		}
	}
}

func determineStatusCode(err error) int {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, code int, message string, err error) {
	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"message":     message,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	resp := models.ErrorResponse{
		Error:   http.StatusText(code),
		Message: fmt.Sprintf("%s: %v", message, err),
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		resp.Message = appErr.Message
		resp.Details = appErr.Details
		if appErr.Cause != nil && resp.Details == "" {
			resp.Details = appErr.Cause.Error()
		}
	}
	c.AbortWithStatusJSON(code, resp)
}
