package middlewares

import (
	"strconv"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "notely"

// normalizeRoutePath returns the route template to prevent high cardinality
// in metrics labels. Returns the actual path for unmatched routes (404s).
// The result is copied: Prometheus keeps label values past the request.
func normalizeRoutePath(c *fiber.Ctx) string {
	if route := c.Route(); route != nil {
		return utils.CopyString(route.Path)
	}
	return utils.CopyString(c.Path())
}

// normalizeStatus buckets a status code: 2xx, 4xx or 5xx.
func normalizeStatus(status int) string {
	switch {
	case status >= 200 && status < 300:
		return "2xx"
	case status >= 400 && status < 500:
		return "4xx"
	case status >= 500 && status < 600:
		return "5xx"
	}
	return strconv.Itoa(status)
}

// AttachMetrics gives the app its own Prometheus registry and wires a
// /metrics endpoint plus request-timing middleware. Responses with 402 are
// also counted as entitlement denials, so quota pressure is visible per route.
func AttachMetrics(app *fiber.App) *prometheus.Registry {
	reg := prometheus.NewRegistry()

	reqDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
	reqTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	denials := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "entitlement_denials_total",
			Help:      "Requests refused because of the note quota or a locked feature",
		},
		[]string{"path"},
	)

	reg.MustRegister(
		reqDuration, reqTotal, denials,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	app.Use(func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		if err != nil {
			// Run the error handler now so the recorded status is the real one.
			if herr := app.ErrorHandler(c, err); herr != nil {
				return herr
			}
			err = nil
		}
		dur := time.Since(start).Seconds()

		code := c.Response().StatusCode()
		method := utils.CopyString(c.Method())
		path := normalizeRoutePath(c)
		status := normalizeStatus(code)

		reqDuration.WithLabelValues(method, path, status).Observe(dur)
		reqTotal.WithLabelValues(method, path, status).Inc()
		if code == fiber.StatusPaymentRequired {
			denials.WithLabelValues(path).Inc()
		}
		return err
	})

	app.Get("/metrics", adaptor.HTTPHandler(
		promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
	)

	return reg
}
