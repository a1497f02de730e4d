package app

import (
	"net/http/pprof"
)

// loadProfilingRoutes exposes pprof when ENABLE_PPROF is set. goroutine and block are the
// useful ones while a slow source holds fetch workers.
func (a *App) loadProfilingRoutes() {
	a.router.HandleFunc("GET /debug/pprof/", pprof.Index)
	a.router.HandleFunc("GET /debug/pprof/cmdline", pprof.Cmdline)
	a.router.HandleFunc("GET /debug/pprof/profile", pprof.Profile)
	a.router.HandleFunc("GET /debug/pprof/symbol", pprof.Symbol)
	a.router.HandleFunc("GET /debug/pprof/trace", pprof.Trace)
	for _, name := range []string{"goroutine", "heap", "block", "mutex"} {
		a.router.Handle("GET /debug/pprof/"+name, pprof.Handler(name))
	}
}
