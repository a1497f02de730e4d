package app

import (
	"net/http"
	"time"

	"github.com/arnabmitra/index-symbols/internal/handler"
	"github.com/arnabmitra/index-symbols/internal/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (a *App) loadRoutes(symbols *handler.SymbolsHandler) {
	a.router.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	a.router.Handle("GET /metrics", promhttp.Handler())

	a.router.HandleFunc("GET /exchanges", symbols.ListExchanges)
	a.router.HandleFunc("GET /symbols", symbols.GetSymbols)
	a.router.HandleFunc("GET /runs/latest", symbols.LatestRun)

	var acquire http.Handler = http.HandlerFunc(symbols.Acquire)
	if a.rdb != nil {
		ratelimiter := middleware.RateLimiter{
			Period:  time.Minute,
			MaxRate: 2,
			Store:   a.rdb,
			Logger:  a.logger,
		}
		acquire = ratelimiter.Middleware(acquire)
	}
	a.router.Handle("POST /acquire", acquire)
}
