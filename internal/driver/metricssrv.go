package driver

import (
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"github.com/gc-research/tracebench/internal/cmn/nlog"
)

// MetricsServer is the optional debug HTTP endpoint a long simulate/trace
// run can expose, serving /metrics in Prometheus exposition format.
type MetricsServer struct {
	srv  *fasthttp.Server
	addr string
}

// NewMetricsServer builds a server exposing m's registry at addr; call
// Serve to start it (it blocks, so run it in its own goroutine).
func NewMetricsServer(addr string, m *Metrics) *MetricsServer {
	metricsHandler := fasthttpadaptor.NewFastHTTPHandler(
		promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}),
	)
	handler := func(ctx *fasthttp.RequestCtx) {
		switch string(ctx.Path()) {
		case "/metrics":
			metricsHandler(ctx)
		default:
			ctx.SetStatusCode(fasthttp.StatusNotFound)
		}
	}
	return &MetricsServer{srv: &fasthttp.Server{Handler: handler}, addr: addr}
}

// Serve blocks until the server is shut down or fails to bind.
func (s *MetricsServer) Serve() error {
	nlog.Infof("driver: metrics server listening on %s", s.addr)
	return s.srv.ListenAndServe(s.addr)
}

// Shutdown stops the server gracefully.
func (s *MetricsServer) Shutdown() error {
	return s.srv.Shutdown()
}
