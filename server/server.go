// Package server exposes the login UI contract and the published accessories
// over HTTP.
package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jrsteele09/smartrent-bridge/accessories"
	"github.com/jrsteele09/smartrent-bridge/auth"
	"github.com/jrsteele09/smartrent-bridge/internal/config"
	"github.com/jrsteele09/smartrent-bridge/internal/errors"
)

// SessionService is the session lifecycle used by the UI routes.
type SessionService interface {
	Login(ctx context.Context, creds auth.Credentials) (string, error)
	Logout() error
	HasStoredSession() (bool, error)
	RequiresTwoFactor() bool
}

// AccessoryService is the accessory registry used by the accessory routes.
type AccessoryService interface {
	List() []accessories.Accessory
	Get(id uuid.UUID) (accessories.Accessory, error)
	GetValue(ctx context.Context, id uuid.UUID, characteristic string) (int, error)
	SetValue(ctx context.Context, id uuid.UUID, characteristic string, value int) error
	Reconcile(ctx context.Context) (accessories.Reconciliation, error)
}

type Server struct {
	env         string // Environment (e.g., "DEV", "PROD")
	mux         *http.ServeMux
	routes      []string
	config      config.Config
	logger      zerolog.Logger
	routeOutput io.Writer

	sessions    SessionService
	accessories AccessoryService

	// background carries work started by a request past the request's lifetime.
	background context.Context
}

type Option func(*Server)

// WithAccessories enables the accessory routes, and rediscovery after a
// successful UI login.
func WithAccessories(svc AccessoryService) Option {
	return func(s *Server) {
		s.accessories = svc
	}
}

// WithBackgroundContext bounds work started after a request completes.
func WithBackgroundContext(ctx context.Context) Option {
	return func(s *Server) {
		s.background = ctx
	}
}

// WithRouteOutput sets where registered routes are printed in DEV.
func WithRouteOutput(w io.Writer) Option {
	return func(s *Server) {
		s.routeOutput = w
	}
}

func New(cfg config.Config, sessions SessionService, logger zerolog.Logger, options ...Option) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("[Server New] config is required")
	}
	if sessions == nil {
		return nil, errors.New("[Server New] session service is required")
	}

	s := &Server{
		env:         cfg.GetEnv(),
		mux:         http.NewServeMux(),
		config:      cfg,
		logger:      logger.With().Str("component", "server").Logger(),
		routeOutput: os.Stdout,
		sessions:    sessions,
		background:  context.Background(),
	}
	for _, opt := range options {
		opt(s)
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			s.logRoute(parts[0], parts[1])
		} else {
			s.logRoute("", parts[0])
		}
	}
}

func (s *Server) logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	fmt.Fprintf(s.routeOutput, "[%-19s] %s\n", displayMethod, path)
}
