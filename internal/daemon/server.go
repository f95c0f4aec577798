// Package daemon provides the HTTP server for the Lebrely backend: the
// auth endpoints delegating to the hosted identity provider and the local
// user CRUD surface.
package daemon

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/lebrely-io/backend/internal/auth"
	"github.com/lebrely-io/backend/internal/config"
	"github.com/lebrely-io/backend/internal/store"
)

const apiBasePath = "/api/v1"

// Server represents the web service handling API requests.
type Server struct {
	Config        *config.Config
	Auth          *auth.Service
	Users         *store.Users
	DB            *gorm.DB
	StartTime     time.Time
	TotalRequests int64

	server *http.Server
}

func NewServer(cfg *config.Config, authService *auth.Service, users *store.Users, db *gorm.DB) *Server {
	return &Server{
		Config:    cfg,
		Auth:      authService,
		Users:     users,
		DB:        db,
		StartTime: time.Now().UTC(),
	}
}

// Start initializes and starts the web service
func (s *Server) Start() error {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	router.Use(gin.Logger())
	router.Use(gin.CustomRecovery(
		func(c *gin.Context, err any) {
			if foundError, ok := err.(error); ok {
				logrus.WithError(foundError).Error("Recovered from panic")
			} else {
				logrus.WithField("panic", err).Error("Recovered from panic")
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		},
	))
	router.Use(s.requestCounterMiddleware())
	router.Use(CorrelationMiddleware())

	if origins := s.Config.Server.AllowedOrigins; len(origins) > 0 {
		logrus.WithFields(logrus.Fields{
			"allowedOrigins": origins,
		}).Debugln("CORS configuration")

		router.Use(cors.New(cors.Config{
			AllowOrigins: origins,
			AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders: []string{
				"Origin",
				"Content-Length",
				"Content-Type",
				"Authorization",
				"Accept",
				"X-Requested-With",
			},
			AllowCredentials: true,
		}))
	}

	s.setupRoutes(router)

	addr := s.Config.Server.Addr()

	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  s.Config.Server.Limits.ReadTimeout,
		WriteTimeout: s.Config.Server.Limits.WriteTimeout,
		IdleTimeout:  s.Config.Server.Limits.IdleTimeout,
	}

	// Store server reference for shutdown
	s.server = server

	// Channel to capture startup errors
	errChan := make(chan error, 1)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	// Wait a moment to see if the server fails to start
	select {
	case err := <-errChan:
		return fmt.Errorf("failed to start server: %w", err)
	case <-time.After(100 * time.Millisecond):
		logrus.WithField("addr", addr).Infoln("Web service started")
		return nil
	}
}

func (s *Server) Stop() {
	if s.server == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		logrus.WithError(err).Warnln("Server shutdown failed")
	}
	logrus.Infoln("Server exiting")
}

// requestCounterMiddleware increments the request counter
func (s *Server) requestCounterMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		atomic.AddInt64(&s.TotalRequests, 1)
		c.Next()
	}
}

// setupRoutes configures all the HTTP routes
func (s *Server) setupRoutes(router *gin.Engine) {
	router.GET("/", s.getIndex)
	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readyHandler)

	api := router.Group(apiBasePath)

	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/signup", s.postSignUp)
		authRoutes.POST("/signin", s.postSignIn)
		authRoutes.POST("/refresh", s.postRefresh)
		authRoutes.POST("/reset-password", s.postResetPassword)

		protected := authRoutes.Group("")
		protected.Use(s.RequireAuth())
		{
			protected.POST("/signout", s.postSignOut)
			protected.GET("/me", s.getMe)
			protected.GET("/me/profile", s.getMeProfile)
		}
	}

	users := api.Group("/users")
	{
		users.GET("", s.listUsers)
		users.GET("/:id", s.getUserByID)
		users.POST("", s.createUser)
		users.PUT("/:id", s.updateUser)
		users.DELETE("/:id", s.deleteUser)
	}
}

func (s *Server) getIndex(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Welcome to the Lebrely backend!"})
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"uptime": time.Since(s.StartTime).String(),
	})
}

// readyHandler also verifies the database is reachable, so a broken
// storage layer takes the instance out of rotation.
func (s *Server) readyHandler(c *gin.Context) {
	sqlDB, err := s.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		logrus.WithError(err).Warnln("Readiness check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
