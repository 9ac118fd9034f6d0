// Package metrics collects and exposes Prometheus metrics.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	apperrors "blogapi/internal/errors"
)

// Recorder is the domain-event side of metrics, used by the service layer.
type Recorder interface {
	UserRegistered()
	LoginAttempt(success bool)
	PostCreated()
	TagCreated()
	SoftDeleted(entity string)
}

// Noop discards every event.
type Noop struct{}

func (Noop) UserRegistered()    {}
func (Noop) LoginAttempt(bool)  {}
func (Noop) PostCreated()       {}
func (Noop) TagCreated()        {}
func (Noop) SoftDeleted(string) {}

// Collector is the Prometheus implementation of Recorder plus HTTP request metrics.
type Collector struct {
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	usersRegistered prometheus.Counter
	logins          *prometheus.CounterVec
	postsCreated    prometheus.Counter
	tagsCreated     prometheus.Counter
	softDeletes     *prometheus.CounterVec
}

var _ Recorder = (*Collector)(nil)

// NewCollector creates the metrics and registers them with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blog_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "blog_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		usersRegistered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "blog_users_registered_total",
			Help: "Successful registrations.",
		}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blog_logins_total",
			Help: "Login attempts by result.",
		}, []string{"result"}),
		postsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "blog_posts_created_total",
			Help: "Posts created.",
		}),
		tagsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "blog_tags_created_total",
			Help: "Tags created.",
		}),
		softDeletes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blog_soft_deletes_total",
			Help: "Soft deletes by entity type.",
		}, []string{"entity"}),
	}

	reg.MustRegister(
		c.requests,
		c.requestDuration,
		c.usersRegistered,
		c.logins,
		c.postsCreated,
		c.tagsCreated,
		c.softDeletes,
	)

	return c
}

// UserRegistered records a registration.
func (c *Collector) UserRegistered() { c.usersRegistered.Inc() }

// LoginAttempt records a login by outcome.
func (c *Collector) LoginAttempt(success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	c.logins.WithLabelValues(result).Inc()
}

// PostCreated records a new post.
func (c *Collector) PostCreated() { c.postsCreated.Inc() }

// TagCreated records a new tag.
func (c *Collector) TagCreated() { c.tagsCreated.Inc() }

// SoftDeleted records a soft delete of the given entity type.
func (c *Collector) SoftDeleted(entity string) { c.softDeletes.WithLabelValues(entity).Inc() }

// Middleware records count and latency per route template, so ids do not explode label cardinality.
func (c *Collector) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			start := time.Now()
			err := next(ctx)

			status := ctx.Response().Status
			if err != nil && !ctx.Response().Committed {
				var he *echo.HTTPError
				if errors.As(err, &he) {
					status = he.Code
				} else {
					status = apperrors.MapErrorToHTTP(err).StatusCode
				}
			}

			route := ctx.Path()
			if route == "" {
				route = "unmatched"
			}
			method := ctx.Request().Method
			c.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
			c.requestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// Handler returns the Prometheus scrape handler.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
