package server

import (
	"context"
	"net/http"

	"github.com/yihhan/coaching-calendar-app-sub000/internal/auth"
	"github.com/yihhan/coaching-calendar-app-sub000/internal/booking"
	"github.com/yihhan/coaching-calendar-app-sub000/internal/config"
	"github.com/yihhan/coaching-calendar-app-sub000/internal/email"
	"github.com/yihhan/coaching-calendar-app-sub000/internal/session"
	"github.com/yihhan/coaching-calendar-app-sub000/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type Server struct {
	router *gin.Engine
	http   *http.Server
	db     *sqlx.DB
	config *config.Config
}

func New(db *sqlx.DB, cfg *config.Config, emailService *email.Service) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(RateLimitMiddleware(20, 40))

	userRepo := user.NewRepository(db)
	sessionRepo := session.NewRepository(db)
	bookingRepo := booking.NewRepository(db)

	userService := user.NewService(userRepo, cfg.JWTSecret)
	sessionService := session.NewService(sessionRepo)
	bookingService := booking.NewService(bookingRepo, sessionRepo, userRepo, emailService)

	userHandler := user.NewHandler(userService)
	sessionHandler := session.NewHandler(sessionService)
	bookingHandler := booking.NewHandler(bookingService)

	public := router.Group("/auth")
	{
		public.POST("/register", userHandler.Register)
		public.POST("/login", userHandler.Login)
		public.POST("/refresh", userHandler.Refresh)
	}

	authMiddleware := auth.AuthMiddleware(cfg.JWTSecret)
	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", userHandler.GetMe)
		protected.GET("/sessions", sessionHandler.DiscoverSessions)
		protected.GET("/sessions/:sessionID", sessionHandler.GetSession)
	}

	studentOnly := router.Group("/")
	studentOnly.Use(authMiddleware, auth.RequireRole(auth.RoleStudent))
	{
		studentOnly.POST("/sessions/:sessionID/book", bookingHandler.RequestBooking)
		studentOnly.POST("/bookings/:bookingID/cancel", bookingHandler.CancelBooking)
		studentOnly.GET("/bookings", bookingHandler.ListMyBookings)
	}

	coachOnly := router.Group("/coach")
	coachOnly.Use(authMiddleware, auth.RequireRole(auth.RoleCoach))
	{
		coachOnly.POST("/sessions", sessionHandler.CreateSessions)
		coachOnly.GET("/sessions", sessionHandler.ListMySessions)
		coachOnly.DELETE("/sessions/:sessionID", sessionHandler.DeleteSession)
		coachOnly.GET("/sessions/:sessionID/bookings", bookingHandler.ListSessionBookings)
		coachOnly.POST("/bookings/:bookingID/approve", bookingHandler.ApproveBooking)
		coachOnly.POST("/bookings/:bookingID/reject", bookingHandler.RejectBooking)
	}

	router.GET("/health", Health)
	router.GET("/metrics", Metrics())
	SetupSwagger(router)

	return &Server{
		router: router,
		db:     db,
		config: cfg,
	}
}

func (s *Server) Start(port string) error {
	s.http = &http.Server{
		Addr:    ":" + port,
		Handler: s.router,
	}
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

// Router exposes the underlying engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
