package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-admin-console/apiclient"
	"github.com/jrsteele09/go-admin-console/auth"
	"github.com/jrsteele09/go-admin-console/gate"
	"github.com/jrsteele09/go-admin-console/internal/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

type Server struct {
	env     string // Environment (e.g., "DEV", "PROD")
	appName string
	mux     *http.ServeMux
	routes  []string
	config  config.Config

	ctrl     *auth.Controller
	api      *apiclient.Client
	gate     *gate.Gate
	gatherer prometheus.Gatherer
}

// New builds the web console around an already wired controller and client.
// gatherer backs /metrics; nil means the default registry.
func New(config config.Config, ctrl *auth.Controller, api *apiclient.Client, gatherer prometheus.Gatherer) (*Server, error) {
	if ctrl == nil || api == nil {
		return nil, fmt.Errorf("[Server New] controller and api client are required")
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	s := &Server{
		env:      config.GetEnv(),
		appName:  config.GetAppName(),
		mux:      http.NewServeMux(),
		config:   config,
		ctrl:     ctrl,
		api:      api,
		gate:     gate.New(ctrl, RouteLogin),
		gatherer: gatherer,
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

// Routes lists the registered patterns in registration order
func (s *Server) Routes() []string {
	return append([]string(nil), s.routes...)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	log.Info().Msgf("[%-19s] %s", colourMethod(method), path)
}

func colourMethod(method string) string {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		return color + paddedMethod + ResetColor
	}
	return Gray + paddedMethod + ResetColor
}
