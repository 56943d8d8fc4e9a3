package rest

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Server assembles the gin router for the public booking surface and the
// authenticated management API.
type Server struct {
	accounts   *AccountsHandler
	scheduling *SchedulingHandler
	tokens     tokenVerifier
	log        *slog.Logger

	frontendOrigin string
}

func NewServer(accounts *AccountsHandler, scheduling *SchedulingHandler, tokens tokenVerifier, frontendOrigin string, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		accounts:       accounts,
		scheduling:     scheduling,
		tokens:         tokens,
		log:            log.With(slog.String("component", "rest")),
		frontendOrigin: frontendOrigin,
	}
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(s.corsConfig()))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC().Format(time.RFC3339)})
	})

	api := r.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", s.accounts.Register)
	auth.POST("/login", s.accounts.Login)

	public := api.Group("/public")
	public.GET("/event-types/:id", s.scheduling.PublicEventType)
	public.GET("/event-types/:id/slots", s.scheduling.ListSlots)
	public.GET("/event-types/:id/bookings", s.scheduling.PublicBookings)
	public.POST("/event-types/:id/bookings", s.scheduling.CreateBooking)

	authed := api.Group("", requireAuth(s.tokens))

	eventTypes := authed.Group("/event-types")
	eventTypes.POST("", s.scheduling.CreateEventType)
	eventTypes.GET("", s.scheduling.ListEventTypes)
	eventTypes.GET("/:id", s.scheduling.GetEventType)
	eventTypes.PUT("/:id", s.scheduling.UpdateEventType)
	eventTypes.DELETE("/:id", s.scheduling.DeleteEventType)

	availability := authed.Group("/availability")
	availability.POST("", s.scheduling.CreateAvailability)
	availability.GET("", s.scheduling.ListAvailability)
	availability.PUT("/:id", s.scheduling.UpdateAvailability)
	availability.DELETE("/:id", s.scheduling.DeleteAvailability)

	bookings := authed.Group("/bookings")
	bookings.GET("", s.scheduling.ListBookings)
	bookings.GET("/:id", s.scheduling.GetBooking)
	bookings.PATCH("/:id", s.scheduling.UpdateBooking)
	bookings.DELETE("/:id", s.scheduling.DeleteBooking)

	settings := authed.Group("/settings")
	settings.GET("", s.accounts.GetSettings)
	settings.PATCH("", s.accounts.UpdateSettings)
	settings.POST("/display-picture", s.accounts.UploadDisplayPicture)
	settings.DELETE("/display-picture", s.accounts.RemoveDisplayPicture)
	settings.POST("/banner", s.accounts.UploadBanner)
	settings.DELETE("/banner", s.accounts.RemoveBanner)

	return r
}

func (s *Server) corsConfig() cors.Config {
	origins := []string{"http://localhost:3000", "http://localhost:5173"}
	if s.frontendOrigin != "" {
		origins = append(origins, s.frontendOrigin)
	}
	return cors.Config{
		AllowOrigins: origins,
		AllowMethods: []string{
			http.MethodOptions, http.MethodHead, http.MethodGet,
			http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete,
		},
		AllowHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}
}
