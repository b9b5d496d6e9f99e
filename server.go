package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/buildsmart/erp_backend/config"
	"github.com/buildsmart/erp_backend/middlewares"
	"github.com/buildsmart/erp_backend/models"
	"github.com/buildsmart/erp_backend/models/reports"
	"github.com/buildsmart/erp_backend/utils"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
)

const defaultPort = "8080"

var tracer = otel.Tracer("buildsmart-erp")

// RateLimiter throttles requests per client IP using redis counters.
type RateLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func loginHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
			return
		}
		if !utils.IsValidEmail(req.Email) {
			c.JSON(http.StatusBadRequest, gin.H{"error": map[string]string{"email": "must be a valid email address"}})
			return
		}

		result, err := models.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			switch {
			case errors.Is(err, utils.ErrorUserNotFound):
				c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			case errors.Is(err, utils.ErrorInvalidPassword):
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid password"})
			default:
				respondStoreError(c, "loginHandler", err)
			}
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

func projectsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracer.Start(c.Request.Context(), "projects.list")
		defer span.End()

		projects, err := models.GetAllProjects(ctx)
		if err != nil {
			respondError(c, "projectsHandler", err)
			return
		}
		c.JSON(http.StatusOK, projects)
	}
}

func invoicesGetHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		invoices, err := models.GetAllInvoices(c.Request.Context())
		if err != nil {
			respondError(c, "invoicesGetHandler", err)
			return
		}
		c.JSON(http.StatusOK, invoices)
	}
}

func invoicesPostHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewInvoice
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
			return
		}

		invoice, err := models.CreateInvoice(c.Request.Context(), &input)
		if err != nil {
			respondError(c, "invoicesPostHandler", err)
			return
		}
		c.JSON(http.StatusOK, invoice)
	}
}

func transactionsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		transactions, err := models.GetAllTransactions(c.Request.Context())
		if err != nil {
			respondError(c, "transactionsHandler", err)
			return
		}
		c.JSON(http.StatusOK, transactions)
	}
}

func usersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := models.GetAllUsers(c.Request.Context())
		if err != nil {
			respondError(c, "usersHandler", err)
			return
		}
		c.JSON(http.StatusOK, users)
	}
}

func auditLogsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		logs, err := models.GetAllAuditLogs(c.Request.Context())
		if err != nil {
			respondError(c, "auditLogsHandler", err)
			return
		}
		c.JSON(http.StatusOK, logs)
	}
}

func cashflowHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		forecast, err := reports.GetCashFlowForecast(c.Request.Context())
		if err != nil {
			respondError(c, "cashflowHandler", err)
			return
		}
		c.JSON(http.StatusOK, forecast)
	}
}

func exportHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracer.Start(c.Request.Context(), "finance.export")
		defer span.End()
		reports.ExportFinanceExcel(c.Writer, c.Request.WithContext(ctx))
	}
}

// respondError maps the error taxonomy to HTTP statuses. Validation and
// not-found reasons are safe to surface; anything else is a store failure
// and goes out as a generic message so internals never leak.
func respondError(c *gin.Context, funcName string, err error) {
	switch {
	case errors.Is(err, utils.ErrorValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, utils.ErrorRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		respondStoreError(c, funcName, err)
	}
}

func respondStoreError(c *gin.Context, funcName string, err error) {
	logger := config.GetLogger()
	config.LogError(logger, "server.go", funcName, c.Request.URL.Path, nil, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

func customNotFoundHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
}

func main() {
	port := os.Getenv("API_PORT")
	if port == "" {
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = defaultPort
	}

	logger := config.GetLogger()

	// Signing key misconfiguration should kill the process now, not on the
	// first login.
	config.GetJwtSecret()

	// Shutdown coordination: handle SIGTERM for graceful drain.
	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	// Start the HTTP server ASAP so the platform considers the container
	// healthy. Until the DB is ready, app endpoints return 503.
	r := gin.New()

	// Correlation IDs: generate once per request and attach to context.
	r.Use(func(c *gin.Context) {
		cid := c.GetHeader("x-correlation-id")
		if cid == "" {
			cid = uuid.NewString()
		}
		c.Request = c.Request.WithContext(utils.SetCorrelationIdInContext(c.Request.Context(), cid))
		c.Next()
	})
	r.Use(func(c *gin.Context) {
		// Always allow the startup probe.
		if c.Request.URL.Path == "/healthz" {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}
		// Gate app endpoints on DB readiness.
		if config.GetDB() == nil {
			c.AbortWithStatus(http.StatusServiceUnavailable)
			return
		}
		c.Next()
	})

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	corsConfig := cors.DefaultConfig()
	// Production-safe CORS:
	// - In production, require explicit allowlist via CORS_ALLOWED_ORIGINS (comma-separated).
	// - In non-production, allow all (developer convenience).
	allowedOrigins := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production") {
		if allowedOrigins == "" {
			// Safer default: deny all if not configured in production.
			corsConfig.AllowOrigins = []string{}
		} else {
			corsConfig.AllowOrigins = splitAndTrim(allowedOrigins)
		}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "PUT", "DELETE", "OPTIONS")
	corsConfig.AddAllowHeaders("Origin", "Content-Type", "Authorization")
	corsConfig.AddExposeHeaders("Content-Length", "Content-Disposition")
	corsConfig.AllowCredentials = true
	r.Use(cors.New(corsConfig))

	// Optional rate limiting (recommended for production).
	// Env:
	// - RATE_LIMIT_ENABLED=true
	// - RATE_LIMIT_WINDOW_SECONDS=60
	// - RATE_LIMIT_MAX_REQUESTS=600
	if strings.EqualFold(strings.TrimSpace(os.Getenv("RATE_LIMIT_ENABLED")), "true") {
		config.ConnectRedis()
		if client := config.GetRedisDB(); client != nil {
			limit := int64(600)
			if v := strings.TrimSpace(os.Getenv("RATE_LIMIT_MAX_REQUESTS")); v != "" {
				if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
					limit = n
				}
			}
			windowSec := int64(60)
			if v := strings.TrimSpace(os.Getenv("RATE_LIMIT_WINDOW_SECONDS")); v != "" {
				if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
					windowSec = n
				}
			}
			rateLimiter := NewRateLimiter(client, limit, time.Duration(windowSec)*time.Second)
			r.Use(rateLimiter.RateLimitMiddleware)
		} else {
			logger.WithFields(logrus.Fields{"field": "rate_limit"}).Warn("rate limiting enabled but redis is not reachable; continuing without it")
		}
	}

	r.Use(customErrorLogger(logger))
	r.Use(gin.Recovery())

	r.POST("/api/login", loginHandler())

	// Every data route sits behind the bearer-token gate.
	api := r.Group("/api", middlewares.AuthMiddleware())
	api.GET("/projects", projectsHandler())
	api.GET("/finance/invoices", invoicesGetHandler())
	api.POST("/finance/invoices", invoicesPostHandler())
	api.GET("/finance/transactions", transactionsHandler())
	api.GET("/finance/export", exportHandler())
	api.GET("/admin/users", usersHandler())
	api.GET("/admin/logs", auditLogsHandler())
	api.GET("/dashboard/cashflow", cashflowHandler())

	r.NoRoute(customNotFoundHandler)

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		// ListenAndServe returns http.ErrServerClosed on graceful shutdown.
		serverErrCh <- srv.ListenAndServe()
	}()

	// Connect dependencies after the port is open.
	config.ConnectDatabaseWithRetry()

	db := config.GetDB()
	sqlDB, _ := db.DB()
	defer func() {
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	}()
	// AutoMigrate can run DDL that blocks tables; allow disabling migrations
	// on startup and running them as a separate job instead.
	if !strings.EqualFold(strings.TrimSpace(os.Getenv("SKIP_MIGRATIONS")), "true") {
		models.MigrateTable()
	} else {
		logger.WithFields(logrus.Fields{"field": "migrations"}).Warn("SKIP_MIGRATIONS=true; skipping AutoMigrate on startup")
	}

	logger.WithFields(logrus.Fields{
		"info": "Connection Established",
	}).Info("listening on http://localhost:", port)
	log.Println("Server started successfully")

	// Block until shutdown or server error.
	select {
	case <-sigCtx.Done():
		// graceful shutdown below
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithFields(logrus.Fields{"field": "http"}).Error("server stopped unexpectedly: " + err.Error())
		}
	}

	// Drain HTTP requests.
	shutdownTimeout := 30 * time.Second
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithFields(logrus.Fields{"field": "http"}).Error("graceful shutdown failed: " + err.Error())
	}

	// Close Redis (best-effort).
	if rdb := config.GetRedisDB(); rdb != nil {
		_ = rdb.Close()
	}
}

// customErrorLogger is a custom Gin middleware that logs only errors
func customErrorLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Only log when there are errors
		if len(c.Errors) > 0 {
			logger.Error(c.Errors.String())
		}
	}
}

// Initialize a new RateLimiter instance.
func NewRateLimiter(client *redis.Client, limit int64, window time.Duration) *RateLimiter {
	return &RateLimiter{
		client: client,
		limit:  limit,
		window: window,
	}
}

// Middleware function to check rate limits.
func (rl *RateLimiter) RateLimitMiddleware(c *gin.Context) {
	key := c.ClientIP()

	exists, err := rl.client.Exists(c.Request.Context(), key).Result()
	if err != nil {
		c.AbortWithError(http.StatusInternalServerError, err)
		return
	}

	// If the key doesn't exist, create it and set expiry.
	if exists == 0 {
		err := rl.client.Set(c.Request.Context(), key, 1, rl.window).Err()
		if err != nil {
			c.AbortWithError(http.StatusInternalServerError, err)
			return
		}
		c.Next()
		return
	}

	count, err := rl.client.Incr(c.Request.Context(), key).Result()
	if err != nil {
		c.AbortWithError(http.StatusInternalServerError, err)
		return
	}

	if count > rl.limit {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error": fmt.Sprintf("Rate limit exceeded. Try again in %d seconds", int(rl.window.Seconds())),
		})
		return
	}

	c.Next()
}

func splitAndTrim(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
