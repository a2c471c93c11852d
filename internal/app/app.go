// Package app wires the session store, request pipeline, auth controller and
// web console together. The CLI commands and the server share it.
package app

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jrsteele09/go-admin-console/apiclient"
	"github.com/jrsteele09/go-admin-console/auth"
	"github.com/jrsteele09/go-admin-console/internal/config"
	"github.com/jrsteele09/go-admin-console/server"
	"github.com/jrsteele09/go-admin-console/sessions"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
)

type App struct {
	Config      config.Config
	Store       *sessions.Store
	Registry    *prometheus.Registry
	Coordinator *apiclient.Coordinator
	Client      *apiclient.Client
	Controller  *auth.Controller

	closeKV    func() error
	unregister func()
	stopWatch  func()
}

type options struct {
	kv      sessions.KV
	baseURL string
}

type Option func(*options)

// WithKV replaces the storage medium named by the config
func WithKV(kv sessions.KV) Option {
	return func(o *options) { o.kv = kv }
}

// WithBaseURL points the client at baseURL instead of the configured backend
func WithBaseURL(baseURL string) Option {
	return func(o *options) { o.baseURL = baseURL }
}

// New builds the object graph: Store, Coordinator, Client, Controller, with the
// controller registered to follow refreshes and forced logouts.
func New(cfg config.Config, opts ...Option) (*App, error) {
	o := options{baseURL: cfg.GetAPIBaseURL()}
	for _, opt := range opts {
		opt(&o)
	}

	closeKV := func() error { return nil }
	if o.kv == nil {
		kv, closer, err := OpenKV(cfg)
		if err != nil {
			return nil, fmt.Errorf("[App New] %w", err)
		}
		o.kv, closeKV = kv, closer
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := apiclient.NewMetrics(reg)

	store := sessions.NewStore(o.kv)
	coord := apiclient.NewCoordinator(store, metrics)
	client := apiclient.New(o.baseURL, coord,
		apiclient.WithTimeout(cfg.GetRequestTimeout()),
		apiclient.WithMetrics(metrics),
	)
	ctrl := auth.NewController(client, store)

	return &App{
		Config:      cfg,
		Store:       store,
		Registry:    reg,
		Coordinator: coord,
		Client:      client,
		Controller:  ctrl,
		closeKV:     closeKV,
		unregister:  coord.Register(ctrl),
		stopWatch:   watchSession(ctrl, reg),
	}, nil
}

// Server builds the web console on top of the app
func (a *App) Server() (*server.Server, error) {
	return server.New(a.Config, a.Controller, a.Client, a.Registry)
}

func (a *App) Close() error {
	a.stopWatch()
	a.unregister()
	if err := a.closeKV(); err != nil {
		return fmt.Errorf("[App Close] %w", err)
	}
	return nil
}

// OpenKV opens the storage medium named by the config. The returned func
// releases it.
func OpenKV(cfg config.StorageConfig) (sessions.KV, func() error, error) {
	noop := func() error { return nil }
	path := cfg.GetStoragePath()

	switch cfg.GetStorageBackend() {
	case config.StorageBackendMemory:
		return sessions.NewMemoryKV(), noop, nil
	case config.StorageBackendFile, "":
		kv, err := sessions.NewFileKV(path)
		if err != nil {
			return nil, nil, fmt.Errorf("[OpenKV] file %s: %w", path, err)
		}
		log.Debug().Str("path", kv.Path()).Msg("session storage: file")
		return kv, noop, nil
	case config.StorageBackendSQLite:
		if filepath.Ext(path) == ".json" {
			path = strings.TrimSuffix(path, ".json") + ".db"
		}
		kv, err := sessions.NewSQLiteKV(path)
		if err != nil {
			return nil, nil, fmt.Errorf("[OpenKV] sqlite %s: %w", path, err)
		}
		log.Debug().Str("path", path).Msg("session storage: sqlite")
		return kv, kv.Close, nil
	default:
		return nil, nil, fmt.Errorf("[OpenKV] unknown storage backend %q", cfg.GetStorageBackend())
	}
}
