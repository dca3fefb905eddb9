package httpinterface

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-escrow/pkg/stats"
	"go.uber.org/ratelimit"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Hijack is required to upgrade event stream connections to websockets.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	if r.status == 0 {
		r.status = http.StatusSwitchingProtocols
	}
	return hijacker.Hijack()
}

// logAndMeasure logs every request and records the prometheus http metrics,
// labeled by route template to keep cardinality bounded.
func logAndMeasure(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}

		next.ServeHTTP(rec, req)

		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		route := req.URL.Path
		if r := mux.CurrentRoute(req); r != nil {
			if tpl, err := r.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		elapsed := time.Since(start)

		stats.HTTPRequests.WithLabelValues(
			route, req.Method, strconv.Itoa(rec.status),
		).Inc()
		stats.HTTPRequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())

		log.WithFields(log.Fields{
			"method":   req.Method,
			"route":    route,
			"status":   rec.status,
			"duration": elapsed,
		}).Debug("http: request served")
	})
}

// rateLimit paces the incoming requests to at most rps per second. Zero
// disables it.
func rateLimit(rps int) mux.MiddlewareFunc {
	if rps <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	limiter := ratelimit.New(rps)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			limiter.Take()
			next.ServeHTTP(w, req)
		})
	}
}
