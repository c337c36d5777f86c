package api

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

type Controller struct {
	Handler *Handler
	router  *gin.Engine

	mu     sync.Mutex
	server *http.Server
}

// NewController регистрирует маршруты в корне и под /api. liveFeed и limiter необязательны.
func NewController(handler *Handler, liveFeed http.Handler, limiter *RateLimiter) *Controller {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	router.GET("/health", handler.Health)
	if liveFeed != nil {
		router.GET("/ws/locations", gin.WrapH(liveFeed))
	}

	var middleware []gin.HandlerFunc
	if limiter != nil {
		middleware = append(middleware, limiter.Middleware())
	}

	register(router.Group("/", middleware...), handler)
	register(router.Group("/api", middleware...), handler)

	return &Controller{Handler: handler, router: router}
}

func register(root *gin.RouterGroup, handler *Handler) {
	locations := root.Group("/locations")
	{
		locations.GET("/users", handler.GetUserLocations)
		locations.GET("/history/:userId", handler.GetUserHistory)
		locations.PUT("/:userId", handler.UpdateUserLocation)
		locations.PUT("/:userId/offline", handler.MarkUserOffline)
	}

	root.POST("/users", handler.RegisterUser)

	devices := root.Group("/devices")
	{
		devices.GET("", handler.GetDevices)
		devices.POST("/add", handler.AddDevice)
		devices.GET("/all-locations", handler.GetDeviceLocations)
		devices.PUT("/:deviceId/location", handler.UpdateDeviceLocation)
		devices.PUT("/:deviceId/offline", handler.MarkDeviceOffline)
		devices.GET("/:deviceId/history", handler.GetDeviceHistory)
	}

	qrcodes := root.Group("/qrcodes")
	{
		qrcodes.POST("/generate", handler.GenerateCodes)
		qrcodes.POST("/:qrCode", handler.LookupCode)
		qrcodes.POST("/:qrCode/location", handler.UpdateCodeLocation)
		qrcodes.GET("/:qrCode/history", handler.GetCodeHistory)
		qrcodes.PUT("/:qrCode/fix-location-names", handler.FixLocationNames)
	}
}

func (c *Controller) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c.router.ServeHTTP(w, r)
}

// Run блокирует до остановки сервера через Shutdown.
func (c *Controller) Run(addr string) error {
	server := &http.Server{Addr: addr, Handler: c.router}
	c.mu.Lock()
	c.server = server
	c.mu.Unlock()

	log.Infof("Запуск API на %s", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (c *Controller) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	server := c.server
	c.mu.Unlock()

	if server == nil {
		return nil
	}
	return server.Shutdown(ctx)
}
