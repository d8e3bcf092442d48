package bootstrap

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/aviatio/flightdeck/api"
	"github.com/aviatio/flightdeck/internal/auth"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

type Handlers struct {
	Flights  *api.FlightHandler
	Bookings *api.BookingHandler
	Miles    *api.MilesHandler
}

// requestID tags every request so log lines from one request can be pulled
// together.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		c.Header("X-Request-Id", id)
		c.Set("request_id", id)
		c.Next()
	}
}

func NewRouter(handlers Handlers, verifier *auth.Verifier) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestID())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/flights/search", handlers.Flights.Search)
		v1.GET("/flights/:id", handlers.Flights.GetByID)
		v1.GET("/airports", handlers.Flights.ListAirports)
		v1.GET("/airlines", handlers.Flights.ListAirlines)
		v1.GET("/miles/member/:memberNumber", handlers.Miles.GetMember)
		v1.GET("/miles/member-by-user/:userId", handlers.Miles.GetMemberByUser)

		authed := v1.Group("", auth.Middleware(verifier))
		{
			authed.POST("/flights", auth.RequireAdmin(), handlers.Flights.Create)
			authed.POST("/flights/:id/book", handlers.Bookings.Book)
			authed.GET("/bookings", handlers.Bookings.List)
			authed.POST("/miles/add", handlers.Miles.Add)
		}
	}
	return router
}

// Run serves HTTP until ctx is cancelled, then drains in-flight requests.
func Run(ctx context.Context, addr string, router *gin.Engine, logger *zap.Logger) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
