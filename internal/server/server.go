package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"chatrelay/internal/config"
	"chatrelay/internal/invoker"
	"chatrelay/internal/logger"
	"chatrelay/internal/metrics"
	"chatrelay/internal/models"
	"chatrelay/internal/validator"
)

// Server wires the validator and invoker behind the HTTP boundary.
type Server struct {
	cfg       *config.Config
	validator *validator.Validator
	invoker   *invoker.Invoker
	metrics   *metrics.Metrics
	logger    *logger.Logger
}

// New creates a Server.
func New(cfg *config.Config, inv *invoker.Invoker, m *metrics.Metrics) *Server {
	return &Server{
		cfg:       cfg,
		validator: validator.New(cfg.Limits.MaxMessageChars),
		invoker:   inv,
		metrics:   m,
		logger:    logger.GetLogger().WithComponent("server"),
	}
}

// Router builds the gin engine with all routes and middleware attached.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.requestID())
	r.Use(s.cors())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if s.metrics != nil {
		r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	chat := r.Group("/v1")
	if s.cfg.APIKey != "" {
		chat.Use(s.auth())
	}
	chat.POST("/chat", s.handleChat)

	return r
}

// requestID tags every request with a UUID, returned in X-Request-ID.
func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.NewString()
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// cors sets CORS headers on every response and answers preflight requests
// before any backend cost is incurred.
func (s *Server) cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", s.cfg.AllowedOrigin)
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Header("Access-Control-Allow-Methods", "OPTIONS,POST")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// auth checks the relay's own API key.
func (s *Server) auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") != s.cfg.APIKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
				Error:   "unauthorized",
				Message: "invalid or missing API key",
			})
			return
		}
		c.Next()
	}
}

func (s *Server) handleChat(c *gin.Context) {
	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.metrics.ObserveRequest(string(validator.KindMissingField))
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   string(validator.KindMissingField),
			Message: "request body must be valid JSON with a 'message' field",
		})
		return
	}

	prompt, err := s.validator.Validate(&req)
	if err != nil {
		s.writeError(c, err)
		return
	}

	result, err := s.invoker.Invoke(c.Request.Context(), prompt, &req)
	if err != nil {
		s.writeError(c, err)
		return
	}

	s.metrics.ObserveRequest("ok")
	c.JSON(http.StatusOK, result)
}

// writeError maps classified errors onto HTTP statuses. Backend detail never
// leaks to the client.
func (s *Server) writeError(c *gin.Context, err error) {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		s.metrics.ObserveRequest(string(valErr.Kind))
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   string(valErr.Kind),
			Message: valErr.Message,
		})
		return
	}

	var invErr *invoker.InvocationError
	if errors.As(err, &invErr) {
		s.metrics.ObserveRequest(string(invErr.Kind))
		switch invErr.Kind {
		case invoker.KindThrottled:
			c.Header("Retry-After", "1")
			c.JSON(http.StatusTooManyRequests, models.ErrorResponse{
				Error:   string(invErr.Kind),
				Message: "rate limit exceeded, retry later",
			})
		case invoker.KindTimeout:
			c.JSON(http.StatusGatewayTimeout, models.ErrorResponse{
				Error:   string(invErr.Kind),
				Message: "backend did not respond in time",
			})
		default:
			c.JSON(http.StatusBadGateway, models.ErrorResponse{
				Error:   string(invErr.Kind),
				Message: "backend request failed",
			})
		}
		return
	}

	// Defensive catch-all for unexpected faults
	s.logger.Error("unexpected error: %v", err)
	s.metrics.ObserveRequest("internal")
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error:   "internal",
		Message: "internal server error",
	})
}
