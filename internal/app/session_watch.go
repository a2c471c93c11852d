package app

import (
	"github.com/jrsteele09/go-admin-console/auth"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
)

// watchSession follows the controller's state into a gauge that reads 1 while a
// session is held, and logs when the session starts or ends. stop waits for the
// watcher to exit.
func watchSession(ctrl *auth.Controller, reg prometheus.Registerer) (stop func()) {
	held := promauto.With(reg).NewGauge(prometheus.GaugeOpts{
		Namespace: "admin_console",
		Name:      "session_authenticated",
		Help:      "1 while the console holds an authenticated session",
	})

	states, cancel := ctrl.Subscribe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		first := true
		var was bool
		for s := range states {
			now := s.Authenticated()
			if now {
				held.Set(1)
			} else {
				held.Set(0)
			}
			if !first && now != was {
				if now {
					log.Info().Msg("session started")
				} else {
					log.Info().Msg("session ended")
				}
			}
			first, was = false, now
		}
	}()

	return func() {
		cancel()
		<-done
	}
}
