package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/landing-sop/contact-api/internal/auth"
	"github.com/landing-sop/contact-api/internal/submission"
)

const (
	healthMessage = "Contact form API is running correctly"

	defaultListLimit = 50
	maxListLimit     = 200
)

var errMissingSubmissionService = errors.New("submission service dependency required")

// Dependencies wires the HTTP layer to the domain services. AdminValidator is
// optional; when nil the admin endpoints are not registered.
type Dependencies struct {
	Submissions    *submission.Service
	AdminValidator *auth.TokenValidator
	Clock          func() time.Time
	Logger         *zap.Logger
}

// NewHTTPHandler builds the gin router serving the contact-form API.
func NewHTTPHandler(deps Dependencies) (http.Handler, error) {
	if deps.Submissions == nil {
		return nil, errMissingSubmissionService
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	router := gin.New()
	router.Use(gin.Recovery())
	// The form is posted cross-origin from a static site; mirror the original
	// endpoint's fully permissive headers. Preflight OPTIONS is answered by
	// the middleware.
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"Content-Type"},
		MaxAge:       12 * time.Hour,
	}))

	handler := &httpHandler{
		submissions: deps.Submissions,
		validator:   deps.AdminValidator,
		clock:       clock,
		logger:      logger,
	}

	router.GET("/", handler.handleHealth)
	router.POST("/", handler.handleSubmit)

	if deps.AdminValidator != nil {
		admin := router.Group("/admin")
		admin.Use(handler.authorizeAdmin)
		admin.GET("/submissions", handler.handleListSubmissions)
		admin.GET("/suspicious", handler.handleListSuspicious)
	}

	return router, nil
}

type httpHandler struct {
	submissions *submission.Service
	validator   *auth.TokenValidator
	clock       func() time.Time
	logger      *zap.Logger
}

// submitResponse is the body of every POST / reply. Rejections ride on
// HTTP 200 with success=false; the original endpoint's callers cannot observe
// status codes, so the verdict lives in the body.
type submitResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func (h *httpHandler) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "working",
		"timestamp": h.clock().UTC().Format(time.RFC3339),
		"message":   healthMessage,
	})
}

func (h *httpHandler) handleSubmit(c *gin.Context) {
	if !strings.HasPrefix(c.ContentType(), "application/json") {
		h.respondRejected(c, "Invalid content type")
		return
	}

	var payload submission.Payload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.respondRejected(c, "Ошибка сервера: некорректное тело запроса")
		return
	}

	_, err := h.submissions.Submit(c.Request.Context(), payload, c.ClientIP())
	if err != nil {
		if errors.Is(err, submission.ErrBotDetected) {
			h.logger.Warn("submission rejected by abuse check", zap.String("caller_ip", c.ClientIP()))
		} else {
			h.logger.Info("submission rejected", zap.Error(err))
		}
		h.respondRejected(c, submission.UserMessage(err))
		return
	}

	c.JSON(http.StatusOK, submitResponse{Success: true})
}

func (h *httpHandler) respondRejected(c *gin.Context, message string) {
	c.JSON(http.StatusOK, submitResponse{Success: false, Error: message})
}

func (h *httpHandler) authorizeAdmin(c *gin.Context) {
	subject, err := h.validator.ValidateRequest(c.Request)
	if err != nil {
		h.logger.Warn("admin token validation failed", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	h.logger.Debug("admin request authorized", zap.String("subject", subject))
	c.Next()
}

type storedSubmissionPayload struct {
	ID          int64  `json:"id"`
	SubmittedAt int64  `json:"submitted_at_s"`
	ReceivedAt  int64  `json:"received_at_s"`
	Name        string `json:"name"`
	Farm        string `json:"farm"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	FarmType    string `json:"farm-type"`
	FarmSize    string `json:"farm-size"`
	Message     string `json:"message"`
}

func (h *httpHandler) handleListSubmissions(c *gin.Context) {
	limit, offset := listParams(c)
	records, err := h.submissions.ListRecords(c.Request.Context(), limit, offset)
	if err != nil {
		h.logger.Error("failed to list submissions", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query_failed"})
		return
	}

	payloads := make([]storedSubmissionPayload, 0, len(records))
	for _, record := range records {
		payloads = append(payloads, storedSubmissionPayload{
			ID:          record.ID,
			SubmittedAt: record.SubmittedAtSeconds,
			ReceivedAt:  record.ReceivedAtSeconds,
			Name:        record.Name,
			Farm:        record.Farm,
			Email:       record.Email,
			Phone:       record.Phone,
			FarmType:    record.FarmType,
			FarmSize:    record.FarmSize,
			Message:     record.Message,
		})
	}
	c.JSON(http.StatusOK, gin.H{"submissions": payloads})
}

type suspiciousActivityPayload struct {
	ID         string `json:"id"`
	ObservedAt int64  `json:"observed_at_s"`
	Reason     string `json:"reason"`
	Payload    string `json:"payload_json"`
	CallerID   string `json:"caller_id"`
}

func (h *httpHandler) handleListSuspicious(c *gin.Context) {
	limit, offset := listParams(c)
	entries, err := h.submissions.ListSuspicious(c.Request.Context(), limit, offset)
	if err != nil {
		h.logger.Error("failed to list suspicious activity", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query_failed"})
		return
	}

	payloads := make([]suspiciousActivityPayload, 0, len(entries))
	for _, entry := range entries {
		payloads = append(payloads, suspiciousActivityPayload{
			ID:         entry.ID,
			ObservedAt: entry.ObservedAtSeconds,
			Reason:     entry.Reason,
			Payload:    entry.PayloadJSON,
			CallerID:   entry.CallerID,
		})
	}
	c.JSON(http.StatusOK, gin.H{"entries": payloads})
}

func listParams(c *gin.Context) (limit, offset int) {
	limit = defaultListLimit
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if raw := c.Query("offset"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 0 {
			offset = parsed
		}
	}
	return limit, offset
}
