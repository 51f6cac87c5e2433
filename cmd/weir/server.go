package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/grove-social/weir/ratelimit/accountstore"
	"github.com/grove-social/weir/ratelimit/contentstore"
	"github.com/grove-social/weir/ratelimit/engine"
	"github.com/grove-social/weir/ratelimit/overridestore"
	"github.com/grove-social/weir/ratelimit/policy"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	slogecho "github.com/samber/slog-echo"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

type Server struct {
	logger   *slog.Logger
	echo     *echo.Echo
	httpd    *http.Server
	engine   *engine.Engine
	accounts accountstore.AccountStore
}

type Config struct {
	Logger   *slog.Logger
	Policies policy.Set
	CheckQPS float64
}

func NewServer(db *gorm.DB, config Config) (*Server, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}

	samples := policy.SampleSizes(config.Policies.Policies)

	eng := &engine.Engine{
		Logger:    logger,
		Policies:  config.Policies,
		Content:   contentstore.NewGormContentStore(db),
		Overrides: overridestore.NewGormOverrideStore(db),
	}

	s := &Server{
		logger:   logger,
		engine:   eng,
		accounts: accountstore.NewGormAccountStore(db, samples),
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(slogecho.New(logger))
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("64K"))

	e.GET("/_health", s.HandleHealthCheck)

	checks := e.Group("/check")
	if config.CheckQPS > 0 {
		checks.Use(shedLoad(rate.NewLimiter(rate.Limit(config.CheckQPS), checkBurst(config.CheckQPS))))
	}
	checks.POST("/post", s.HandleCheckPost)
	checks.POST("/comment", s.HandleCheckComment)

	s.echo = e
	s.httpd = &http.Server{
		Handler:        e,
		ReadTimeout:    time.Minute,
		WriteTimeout:   time.Minute,
		MaxHeaderBytes: 1 * 1024 * 1024,
	}

	return s, nil
}

// Burst for the check limiter. A fractional QPS below 1 would truncate to
// a zero burst and reject everything; the limiter always admits at least
// one request.
func checkBurst(qps float64) int {
	burst := int(qps)
	if burst < 1 {
		burst = 1
	}
	return burst
}

// Protective limit on the check endpoints themselves. This guards the
// service, not the forum users; user-level limits are the engine's job.
func shedLoad(lim *rate.Limiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !lim.Allow() {
				requestsShed.Inc()
				return echo.NewHTTPError(http.StatusTooManyRequests, "check rate exceeded, try again shortly")
			}
			return next(c)
		}
	}
}

func (s *Server) Run(bind string) error {
	s.httpd.Addr = bind
	s.logger.Info("starting server", "bind", bind)
	go func() {
		if err := s.httpd.ListenAndServe(); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				s.logger.Error("HTTP server shutting down unexpectedly", "err", err)
			}
		}
	}()

	quit := make(chan struct{})
	exitSignals := make(chan os.Signal, 1)
	signal.Notify(exitSignals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-exitSignals
		s.logger.Info("received OS exit signal", "signal", sig)
		if err := s.Shutdown(); err != nil {
			s.logger.Error("HTTP server shutdown error", "err", err)
		}
		close(quit)
	}()
	<-quit
	s.logger.Info("graceful shutdown complete")
	return nil
}

func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.httpd.Shutdown(ctx)
}

func (s *Server) RunMetrics(listen string) error {
	http.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(listen, nil)
}

type GenericStatus struct {
	Daemon  string `json:"daemon"`
	Status  string `json:"status"`
	Message string `json:"msg,omitempty"`
}

func (s *Server) HandleHealthCheck(c echo.Context) error {
	return c.JSON(200, GenericStatus{Status: "ok", Daemon: "weir"})
}
