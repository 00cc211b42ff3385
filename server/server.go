// Package server exposes the dashboard over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/vench/salesdash"
	"github.com/vench/salesdash/view"
)

const dateFormat = "2006-01-02"

// Pinger checks warehouse connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Config struct {
	Parameters salesdash.ParameterSource
	Loader     salesdash.Loader
	Pinger     Pinger
	// Gatherer backs /metrics, nil uses the default registry.
	Gatherer prometheus.Gatherer
	Logger   *zap.Logger
}

type Server struct {
	echo *echo.Echo

	params salesdash.ParameterSource
	loader salesdash.Loader
	pinger Pinger
	logger *zap.Logger
}

func New(cfg Config) (*Server, error) {
	s := &Server{
		echo:   echo.New(),
		params: cfg.Parameters,
		loader: cfg.Loader,
		pinger: cfg.Pinger,
		logger: cfg.Logger,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}

	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	renderer, err := newRenderer()
	if err != nil {
		return nil, err
	}

	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.Renderer = renderer
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			s.logger.Info("request", fields...)
			return nil
		},
	}))

	s.echo.GET("/", s.index)
	s.echo.GET("/healthz", s.health)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	api := s.echo.Group("/api")
	api.GET("/parameters", s.parameters)
	api.GET("/dashboard", s.dashboard)

	return s, nil
}

// ServeHTTP makes the server usable as an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Start listens on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.logger.Info("start http server", zap.String("addr", addr))

	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) index(c echo.Context) error {
	params, err := s.params.Parameters(c.Request().Context())
	if err != nil {
		s.logger.Error("failed to resolve parameters", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load filter parameters")
	}

	return c.Render(http.StatusOK, indexTemplate, params)
}

func (s *Server) health(c echo.Context) error {
	if err := s.pinger.Ping(c.Request().Context()); err != nil {
		s.logger.Error("warehouse ping failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusServiceUnavailable, "warehouse unavailable")
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) parameters(c echo.Context) error {
	params, err := s.params.Parameters(c.Request().Context())
	if err != nil {
		s.logger.Error("failed to resolve parameters", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load filter parameters")
	}

	return c.JSON(http.StatusOK, params)
}

func (s *Server) dashboard(c echo.Context) error {
	sel, err := selectionFromQuery(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	page, err := view.Render(c.Request().Context(), s.loader, sel)
	if err != nil {
		s.logger.Error("failed to load dashboard", zap.Error(err), zap.Strings("regions", sel.Regions))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load dashboard")
	}

	return c.JSON(http.StatusOK, page)
}

func selectionFromQuery(c echo.Context) (view.Selection, error) {
	sel := view.Selection{
		Regions: c.QueryParams()["region"],
	}

	var err error
	if sel.Start, err = parseDateParam(c, "start"); err != nil {
		return sel, err
	}
	if sel.End, err = parseDateParam(c, "end"); err != nil {
		return sel, err
	}

	return sel, nil
}

func parseDateParam(c echo.Context, name string) (time.Time, error) {
	v := c.QueryParam(name)
	if v == "" {
		return time.Time{}, nil
	}

	t, err := time.Parse(dateFormat, v)
	if err != nil {
		return time.Time{}, errors.New("invalid " + name + " date, expected YYYY-MM-DD")
	}

	return t, nil
}
