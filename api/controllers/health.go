package controllers

import (
	"context"
	"net/http"

	"github.com/kapilraj10/pos-storefront/api/responses"
	"github.com/kapilraj10/pos-storefront/pkg/config"
	pkgerrors "github.com/kapilraj10/pos-storefront/pkg/errors"
	"github.com/kapilraj10/pos-storefront/pkg/logger"
)

type pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Storefront-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady checks Redis and the POS backend before reporting ready.
func HealthReady(cfg *config.Config, logg *logger.Logger, redisPinger, backendPinger pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Storefront-Env", cfg.App.Env)

		checks := map[string]pinger{
			"redis":   redisPinger,
			"backend": backendPinger,
		}
		for name, p := range checks {
			if p == nil {
				continue
			}
			if err := p.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, name+" unavailable"))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
