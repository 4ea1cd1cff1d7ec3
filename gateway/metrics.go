package gateway

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Kodjaoglanian/blockvent/lib/util"
)

var requests = promauto.NewCounterVec(prometheus.CounterOpts{ //nolint:gochecknoglobals // prometheus collector
	Namespace: "blockvent",
	Subsystem: "http",
	Name:      "requests_total",
	Help:      "HTTP requests served, by route and status code.",
}, []string{"route", "code"})

// statusRecorder keeps the status code written to the client.
type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.code = code
	s.ResponseWriter.WriteHeader(code)
}

// instrument counts the requests served by next. Static files share the route label "static" and unknown API paths
// the label "unknown".
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: rw, code: http.StatusOK}
		next.ServeHTTP(rec, r)

		requests.WithLabelValues(route(r.URL.Path), strconv.Itoa(rec.code)).Inc()
	})
}

func route(p string) string {
	switch {
	case util.In(apiPrefixes, p):
		return p
	case util.HasAnyPrefix(p, apiPrefixes):
		return "unknown"
	default:
		return "static"
	}
}
